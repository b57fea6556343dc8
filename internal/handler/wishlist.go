package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/movieexplorer/movie-explorer-api/internal/access"
	"github.com/movieexplorer/movie-explorer-api/internal/middleware"
	"github.com/movieexplorer/movie-explorer-api/internal/repository"
)

// WishlistHandler serves the per-user wishlist endpoints. All routes
// require authentication; the movie must additionally be visible to
// the caller's subscription to be added.
type WishlistHandler struct {
	Wishlists *repository.WishlistRepo
	Movies    *repository.MovieRepo
	Subs      *repository.SubscriptionRepo
}

func NewWishlistHandler(w *repository.WishlistRepo, m *repository.MovieRepo, s *repository.SubscriptionRepo) *WishlistHandler {
	return &WishlistHandler{Wishlists: w, Movies: m, Subs: s}
}

type wishlistAddReq struct {
	MovieID uint64 `json:"movie_id"`
}

// List handles GET /v1/wishlists. An empty wishlist is a 200 with an
// empty array, not an error.
func (h *WishlistHandler) List(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	viewer := viewerFrom(ctx, c, h.Subs)
	movies, err := h.Wishlists.ListMovies(ctx, uid, viewer.Premium)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if len(movies) == 0 {
		return c.JSON(http.StatusOK, echo.Map{"message": "your wishlist is empty", "data": []any{}})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "wishlist retrieved successfully", "data": movies})
}

// Add handles POST /v1/wishlists. Errors distinguish a missing movie
// id (400), an absent movie (404), a movie the caller's subscription
// cannot access (403) and a duplicate entry (422).
func (h *WishlistHandler) Add(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req wishlistAddReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.MovieID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": []string{"movie_id is required"}})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	movie, err := h.Movies.GetByID(ctx, req.MovieID)
	if err != nil {
		if err == repository.ErrMovieNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"errors": []string{"movie not found"}})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	viewer := viewerFrom(ctx, c, h.Subs)
	if !access.IsVisible(viewer, movie.Premium) {
		return c.JSON(http.StatusForbidden, echo.Map{"errors": []string{"movie is not accessible to your subscription"}})
	}

	if err := h.Wishlists.Add(ctx, uid, req.MovieID); err != nil {
		if err == repository.ErrAlreadyInWishlist {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": []string{err.Error()}})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not add to wishlist"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "movie added to wishlist", "data": movie})
}

// Remove handles DELETE /v1/wishlists/:id where :id is the movie id.
func (h *WishlistHandler) Remove(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	movieID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Wishlists.Remove(ctx, uid, movieID); err != nil {
		if err == repository.ErrWishlistNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found in your wishlist"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not remove from wishlist"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "movie removed from wishlist"})
}
