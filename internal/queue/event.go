// Package queue defines message payloads exchanged over the message broker.
package queue

// MovieCreatedQueue is the durable queue new-movie events are published to.
const MovieCreatedQueue = "movie.created"

// MovieCreatedEvent is published when a supervisor adds a movie to the
// catalog. It contains enough information for downstream consumers to
// log, notify, or trigger analytics without querying the primary
// database.
type MovieCreatedEvent struct {
	MovieID     uint64 `json:"movie_id"`
	Title       string `json:"title"`
	Genre       string `json:"genre"`
	ReleaseYear int    `json:"release_year"`
	Premium     bool   `json:"premium"`
	CreatedAt   string `json:"created_at"`
}
