package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/movieexplorer/movie-explorer-api/internal/model"
)

// WishlistRepo persists per-user wishlists. Uniqueness of the
// (user, movie) pair is enforced by a unique index, so a concurrent
// duplicate add surfaces as ErrAlreadyInWishlist rather than a second
// row.
type WishlistRepo struct{ DB *sql.DB }

func NewWishlistRepo(db *sql.DB) *WishlistRepo { return &WishlistRepo{DB: db} }

// Add inserts a wishlist entry for the user.
func (r *WishlistRepo) Add(ctx context.Context, userID, movieID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO wishlists (user_id, movie_id) VALUES (?,?)", userID, movieID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrAlreadyInWishlist
		}
		return err
	}
	return nil
}

// ListMovies returns the wishlisted movies that are still visible to
// the viewer. A basic subscriber who wishlisted a title while premium
// simply stops seeing it until they upgrade again.
func (r *WishlistRepo) ListMovies(ctx context.Context, userID uint64, premiumViewer bool) ([]model.Movie, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT m.id,m.title,m.genre,m.release_year,m.rating,m.director,m.duration_minutes,m.description,m.premium,m.poster_url,m.banner_url,m.created_at,m.updated_at
		FROM wishlists w
		JOIN movies m ON m.id = w.movie_id
		WHERE w.user_id = ? AND (m.premium = FALSE OR ? = TRUE)
		ORDER BY w.created_at DESC`,
		userID, premiumViewer)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Movie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Remove deletes the user's wishlist entry for the movie.
func (r *WishlistRepo) Remove(ctx context.Context, userID, movieID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM wishlists WHERE user_id=? AND movie_id=?", userID, movieID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrWishlistNotFound
	}
	return nil
}
