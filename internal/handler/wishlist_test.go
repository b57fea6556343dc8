package handler

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movieexplorer/movie-explorer-api/internal/model"
	"github.com/movieexplorer/movie-explorer-api/internal/repository"
)

func wishlistTestEnv(t *testing.T) (*WishlistHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	h := &WishlistHandler{
		Wishlists: repository.NewWishlistRepo(db),
		Movies:    repository.NewMovieRepo(db),
		Subs:      repository.NewSubscriptionRepo(db),
	}
	return h, mock
}

func TestWishlistListEmpty(t *testing.T) {
	h, mock := wishlistTestEnv(t)

	expectPlan(mock, 3, model.PlanBasic)
	mock.ExpectQuery("FROM wishlists w").WithArgs(uint64(3), false).
		WillReturnRows(movieListRows())

	c, rec := newCtx(http.MethodGet, "/v1/wishlists", "")
	asRegular(c, 3)

	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "your wishlist is empty")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWishlistAddPremiumMovieAsBasic(t *testing.T) {
	h, mock := wishlistTestEnv(t)
	now := time.Now()

	// GetByID is unfiltered so the premium row is visible here; the
	// access check afterwards is what rejects the caller.
	mock.ExpectQuery("FROM movies").WithArgs(uint64(5)).
		WillReturnRows(movieListRows().
			AddRow(5, "Gated", "Drama", 2020, nil, "Someone", 100, "x", true, nil, nil, now, now))
	expectPlan(mock, 3, model.PlanBasic)

	c, rec := newCtx(http.MethodPost, "/v1/wishlists", `{"movie_id":5}`)
	asRegular(c, 3)

	require.NoError(t, h.Add(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "not accessible to your subscription")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWishlistAddDuplicateEntry(t *testing.T) {
	h, mock := wishlistTestEnv(t)
	now := time.Now()

	mock.ExpectQuery("FROM movies").WithArgs(uint64(2)).
		WillReturnRows(movieListRows().
			AddRow(2, "Free", "Drama", 2001, nil, "Someone", 100, "plain", false, nil, nil, now, now))
	expectPlan(mock, 3, model.PlanBasic)
	mock.ExpectExec("INSERT INTO wishlists").WithArgs(uint64(3), uint64(2)).
		WillReturnError(errors.New("Error 1062: Duplicate entry"))

	c, rec := newCtx(http.MethodPost, "/v1/wishlists", `{"movie_id":2}`)
	asRegular(c, 3)

	require.NoError(t, h.Add(c))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWishlistAddMissingMovieID(t *testing.T) {
	h, _ := wishlistTestEnv(t)

	c, rec := newCtx(http.MethodPost, "/v1/wishlists", `{}`)
	asRegular(c, 3)

	require.NoError(t, h.Add(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "movie_id is required")
}

func TestWishlistRemoveAbsent(t *testing.T) {
	h, mock := wishlistTestEnv(t)

	mock.ExpectExec("DELETE FROM wishlists").WithArgs(uint64(3), uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	c, rec := newCtx(http.MethodDelete, "/v1/wishlists/7", "")
	c.SetParamNames("id")
	c.SetParamValues("7")
	asRegular(c, 3)

	require.NoError(t, h.Remove(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not found in your wishlist")
	assert.NoError(t, mock.ExpectationsWereMet())
}
