package handler

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/movieexplorer/movie-explorer-api/internal/access"
	"github.com/movieexplorer/movie-explorer-api/internal/middleware"
	"github.com/movieexplorer/movie-explorer-api/internal/repository"
)

// viewerFrom resolves the caller's access.Viewer. Anonymous requests
// yield the zero viewer; authenticated ones carry the role set by the
// auth middleware plus the premium flag looked up from the caller's
// subscription. A subscription lookup failure degrades to non-premium
// rather than failing the request.
func viewerFrom(ctx context.Context, c echo.Context, subs *repository.SubscriptionRepo) access.Viewer {
	uid, ok := middleware.UserID(c)
	if !ok {
		return access.Anonymous
	}
	v := access.Viewer{Authenticated: true, UserID: uid}
	if role, ok := c.Get(middleware.CtxRole).(string); ok {
		v.Role = role
	}
	premium, err := subs.HasPremium(ctx, uid)
	if err == nil {
		v.Premium = premium
	}
	return v
}
