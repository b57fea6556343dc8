package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/movieexplorer/movie-explorer-api/internal/access"
	"github.com/movieexplorer/movie-explorer-api/internal/model"
	"github.com/movieexplorer/movie-explorer-api/internal/queue"
	"github.com/movieexplorer/movie-explorer-api/internal/repository"
	"github.com/movieexplorer/movie-explorer-api/internal/service"
	"github.com/movieexplorer/movie-explorer-api/internal/validate"
)

// MovieHandler serves the catalog endpoints. Reads apply the viewer's
// visibility predicate; mutations are supervisor-only. Notifier may be
// nil when push is not configured; queue publication is likewise
// optional and both are isolated from the request outcome.
type MovieHandler struct {
	Movies   *repository.MovieRepo
	Subs     *repository.SubscriptionRepo
	Notifier *service.Notifier
	// PublishEvent sends the movie.created event; defaults to the
	// RabbitMQ publisher and is swappable in tests.
	PublishEvent func(ctx context.Context, ev queue.MovieCreatedEvent) error
}

func NewMovieHandler(m *repository.MovieRepo, s *repository.SubscriptionRepo, n *service.Notifier) *MovieHandler {
	return &MovieHandler{Movies: m, Subs: s, Notifier: n, PublishEvent: service.PublishMovieCreated}
}

type movieReq struct {
	Title       string   `json:"title"`
	Genre       string   `json:"genre"`
	ReleaseYear int      `json:"release_year"`
	Rating      *float64 `json:"rating"`
	Director    string   `json:"director"`
	Duration    int      `json:"duration"`
	Description string   `json:"description"`
	Premium     bool     `json:"premium"`
	PosterURL   *string  `json:"poster_url"`
	BannerURL   *string  `json:"banner_url"`
}

func (r movieReq) input() validate.MovieInput {
	return validate.MovieInput{
		Title:       r.Title,
		Genre:       r.Genre,
		ReleaseYear: r.ReleaseYear,
		Rating:      r.Rating,
		Director:    r.Director,
		Duration:    r.Duration,
		Description: r.Description,
		PosterURL:   r.PosterURL,
		BannerURL:   r.BannerURL,
	}
}

func (r movieReq) apply(m *model.Movie) {
	m.Title = strings.TrimSpace(r.Title)
	m.Genre = strings.TrimSpace(r.Genre)
	m.ReleaseYear = r.ReleaseYear
	m.Rating = r.Rating
	m.Director = strings.TrimSpace(r.Director)
	m.Duration = r.Duration
	m.Description = r.Description
	m.Premium = r.Premium
	m.PosterURL = r.PosterURL
	m.BannerURL = r.BannerURL
}

// moviePatch mirrors movieReq with pointer fields so an update can
// tell an omitted field from a zero value. Absent fields keep their
// stored value; the merged record is validated as a whole.
type moviePatch struct {
	Title       *string  `json:"title"`
	Genre       *string  `json:"genre"`
	ReleaseYear *int     `json:"release_year"`
	Rating      *float64 `json:"rating"`
	Director    *string  `json:"director"`
	Duration    *int     `json:"duration"`
	Description *string  `json:"description"`
	Premium     *bool    `json:"premium"`
	PosterURL   *string  `json:"poster_url"`
	BannerURL   *string  `json:"banner_url"`
}

func (p moviePatch) apply(m *model.Movie) {
	if p.Title != nil {
		m.Title = strings.TrimSpace(*p.Title)
	}
	if p.Genre != nil {
		m.Genre = strings.TrimSpace(*p.Genre)
	}
	if p.ReleaseYear != nil {
		m.ReleaseYear = *p.ReleaseYear
	}
	if p.Rating != nil {
		m.Rating = p.Rating
	}
	if p.Director != nil {
		m.Director = strings.TrimSpace(*p.Director)
	}
	if p.Duration != nil {
		m.Duration = *p.Duration
	}
	if p.Description != nil {
		m.Description = *p.Description
	}
	if p.Premium != nil {
		m.Premium = *p.Premium
	}
	if p.PosterURL != nil {
		m.PosterURL = p.PosterURL
	}
	if p.BannerURL != nil {
		m.BannerURL = p.BannerURL
	}
}

func movieInputFrom(m model.Movie) validate.MovieInput {
	return validate.MovieInput{
		Title:       m.Title,
		Genre:       m.Genre,
		ReleaseYear: m.ReleaseYear,
		Rating:      m.Rating,
		Director:    m.Director,
		Duration:    m.Duration,
		Description: m.Description,
		PosterURL:   m.PosterURL,
		BannerURL:   m.BannerURL,
	}
}

type paginationPart struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalCount  int64 `json:"total_count"`
	PerPage     int   `json:"per_page"`
}

// List handles GET /v1/movies. Title filters by case-insensitive
// substring, genre by whole word. The empty page contract follows the
// catalog's original behavior: no matches at all is a 404.
func (h *MovieHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	viewer := viewerFrom(ctx, c, h.Subs)

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.QueryParam("per_page"))
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	q := repository.MovieQuery{
		Title:         strings.TrimSpace(c.QueryParam("title")),
		Genre:         strings.TrimSpace(c.QueryParam("genre")),
		PremiumViewer: viewer.Premium,
		Page:          page,
		PerPage:       perPage,
	}
	movies, total, err := h.Movies.List(ctx, q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if len(movies) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no movies found"})
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	return c.JSON(http.StatusOK, echo.Map{
		"movies": movies,
		"pagination": paginationPart{
			CurrentPage: page,
			TotalPages:  totalPages,
			TotalCount:  total,
			PerPage:     perPage,
		},
	})
}

// Get handles GET /v1/movies/:id. A premium title requested without a
// premium plan is reported as not found, deliberately indistinguishable
// from true absence.
func (h *MovieHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	viewer := viewerFrom(ctx, c, h.Subs)
	m, err := h.Movies.GetVisible(ctx, id, viewer.Premium)
	if err != nil {
		if err == repository.ErrMovieNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found or access denied"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, m)
}

// Create handles POST /v1/movies. The route is already gated by
// RequireRole; the explicit guard keeps the rule enforced even if the
// handler is ever wired without it.
func (h *MovieHandler) Create(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	viewer := viewerFrom(ctx, c, h.Subs)
	if !access.CanMutateCatalog(viewer) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden: supervisor access required"})
	}

	var req movieReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if fe := validate.Movie(req.input()); fe.Any() {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": fe})
	}

	var m model.Movie
	req.apply(&m)
	if err := h.Movies.Create(ctx, &m); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create movie failed"})
	}

	// Persisted: from here on the response is fixed at 201. Push and
	// queue fan-out are best-effort and their failures stay internal.
	if h.Notifier != nil {
		_ = h.Notifier.MovieCreated(ctx, m)
	}
	if h.PublishEvent != nil {
		_ = h.PublishEvent(ctx, queue.MovieCreatedEvent{
			MovieID:     m.ID,
			Title:       m.Title,
			Genre:       m.Genre,
			ReleaseYear: m.ReleaseYear,
			Premium:     m.Premium,
			CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "movie added successfully", "movie": m})
}

// Update handles PATCH/PUT /v1/movies/:id. Supplied fields overwrite
// the stored ones, omitted fields are untouched, and the merged record
// must still pass full validation.
func (h *MovieHandler) Update(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	viewer := viewerFrom(ctx, c, h.Subs)
	if !access.CanMutateCatalog(viewer) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden: supervisor access required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	m, err := h.Movies.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrMovieNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	var patch moviePatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	patch.apply(&m)
	if fe := validate.Movie(movieInputFrom(m)); fe.Any() {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": fe})
	}

	if err := h.Movies.Update(ctx, &m); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, m)
}

// Delete handles DELETE /v1/movies/:id.
func (h *MovieHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	viewer := viewerFrom(ctx, c, h.Subs)
	if !access.CanMutateCatalog(viewer) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden: supervisor access required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Movies.Delete(ctx, id); err != nil {
		if err == repository.ErrMovieNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
