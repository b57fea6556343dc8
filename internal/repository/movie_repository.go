package repository

import (
	"context"
	"database/sql"
	"regexp"
	"strings"

	"github.com/movieexplorer/movie-explorer-api/internal/model"
)

// MovieRepo provides catalog persistence. Visibility is enforced at
// query time: every read meant for a viewer carries the premium
// predicate as a bound parameter, so hidden titles never leave the
// database in the first place.
type MovieRepo struct{ DB *sql.DB }

func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{DB: db} }

const movieColumns = "id,title,genre,release_year,rating,director,duration_minutes,description,premium,poster_url,banner_url,created_at,updated_at"

// MovieQuery defines filters & pagination for listing the catalog.
// PremiumViewer is true when the caller holds a premium plan and may
// see premium titles.
type MovieQuery struct {
	Title         string
	Genre         string
	PremiumViewer bool
	Page          int
	PerPage       int
}

// List returns the page of movies visible to the viewer together with
// the total count of matches. Title search is a case-insensitive
// substring match; genre search matches a whole word inside the genre
// string. The search term is regex-escaped before being bound so user
// input can never change the pattern's structure.
func (r *MovieRepo) List(ctx context.Context, q MovieQuery) ([]model.Movie, int64, error) {
	where := []string{"(premium = FALSE OR ? = TRUE)"}
	args := []any{q.PremiumViewer}

	if q.Title != "" {
		where = append(where, "LOWER(title) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Title)+"%")
	}
	if q.Genre != "" {
		where = append(where, "genre REGEXP ?")
		args = append(args, `\b`+regexp.QuoteMeta(q.Genre)+`\b`)
	}
	cond := strings.Join(where, " AND ")

	var total int64
	countSQL := "SELECT COUNT(*) FROM movies WHERE " + cond
	if err := r.DB.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := q.PerPage
	offset := (q.Page - 1) * q.PerPage

	dataSQL := "SELECT " + movieColumns + " FROM movies WHERE " + cond +
		" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.DB.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Movie, 0, limit)
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// GetVisible fetches a movie by id with the visibility predicate
// applied. A premium title requested by a non-premium viewer yields
// ErrMovieNotFound, indistinguishable from true absence.
func (r *MovieRepo) GetVisible(ctx context.Context, id uint64, premiumViewer bool) (model.Movie, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+movieColumns+" FROM movies WHERE id=? AND (premium = FALSE OR ? = TRUE) LIMIT 1",
		id, premiumViewer)
	return scanMovieRow(row)
}

// GetByID fetches a movie without the visibility predicate. Reserved
// for supervisor paths and internal checks.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (model.Movie, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+movieColumns+" FROM movies WHERE id=? LIMIT 1", id)
	return scanMovieRow(row)
}

// Create inserts a movie and returns the stored record.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO movies (title, genre, release_year, rating, director, duration_minutes, description, premium, poster_url, banner_url) VALUES (?,?,?,?,?,?,?,?,?,?)",
		m.Title, m.Genre, m.ReleaseYear, m.Rating, m.Director, m.Duration,
		m.Description, m.Premium, m.PosterURL, m.BannerURL)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// Update overwrites all mutable fields of an existing movie.
func (r *MovieRepo) Update(ctx context.Context, m *model.Movie) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE movies SET title=?, genre=?, release_year=?, rating=?, director=?, duration_minutes=?, description=?, premium=?, poster_url=?, banner_url=? WHERE id=?",
		m.Title, m.Genre, m.ReleaseYear, m.Rating, m.Director, m.Duration,
		m.Description, m.Premium, m.PosterURL, m.BannerURL, m.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Either the row is gone or nothing changed; callers check
		// existence first, so treat this as success.
		return nil
	}
	return nil
}

// Delete removes a movie. Wishlist entries cascade via the foreign key.
func (r *MovieRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM movies WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMovieNotFound
	}
	return nil
}

// scanner matches both *sql.Row and *sql.Rows.
type scanner interface{ Scan(dest ...any) error }

func scanMovie(s scanner) (model.Movie, error) {
	var m model.Movie
	err := s.Scan(&m.ID, &m.Title, &m.Genre, &m.ReleaseYear, &m.Rating,
		&m.Director, &m.Duration, &m.Description, &m.Premium,
		&m.PosterURL, &m.BannerURL, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func scanMovieRow(row *sql.Row) (model.Movie, error) {
	m, err := scanMovie(row)
	if err == sql.ErrNoRows {
		return model.Movie{}, ErrMovieNotFound
	}
	return m, err
}
