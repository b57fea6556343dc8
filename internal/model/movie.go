package model

import "time"

// Movie represents a catalog entry as stored in the `movies` table.
// Premium titles are hidden from viewers without a premium plan; the
// flag is applied as a query-time predicate in the repository layer.
//
// Fields:
//  ID          – primary key identifier.
//  Title       – movie title.
//  Genre       – free-form genre string (comma separated words).
//  ReleaseYear – calendar year of release.
//  Rating      – average rating 0–10 (nullable).
//  Director    – director name.
//  Duration    – runtime in minutes, always positive.
//  Description – synopsis, at most 1000 characters.
//  Premium     – whether a premium subscription is required to view.
//  PosterURL   – JPEG/PNG poster location (nullable).
//  BannerURL   – JPEG/PNG banner location (nullable).
type Movie struct {
	ID          uint64     `json:"id"`
	Title       string     `json:"title"`
	Genre       string     `json:"genre"`
	ReleaseYear int        `json:"release_year"`
	Rating      *float64   `json:"rating,omitempty"`
	Director    string     `json:"director"`
	Duration    int        `json:"duration"`
	Description string     `json:"description"`
	Premium     bool       `json:"premium"`
	PosterURL   *string    `json:"poster_url,omitempty"`
	BannerURL   *string    `json:"banner_url,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
