package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/movieexplorer/movie-explorer-api/internal/handler"
	"github.com/movieexplorer/movie-explorer-api/internal/middleware"
	"github.com/movieexplorer/movie-explorer-api/internal/model"
)

// Handlers bundles every handler the router needs to wire.
type Handlers struct {
	Auth         *handler.AuthHandler
	Movie        *handler.MovieHandler
	Wishlist     *handler.WishlistHandler
	Subscription *handler.SubscriptionHandler
}

// Register wires all application routes. Three auth tiers exist:
// public (register, login, browse with optional token), authenticated
// (account, wishlist, logout) and supervisor (catalog mutation).
func Register(e *echo.Echo, h Handlers, auth *middleware.Authenticator) {
	// Health check for load balancers and monitoring.
	e.GET("/healthz", handler.Health)

	// Account creation and session issue need no existing session.
	ag := e.Group("/v1/auth")
	ag.POST("/register", h.Auth.Register)
	ag.POST("/login", h.Auth.Login)

	// Catalog reads accept an optional bearer token: anonymous callers
	// see the non-premium catalog, premium subscribers the full one.
	pub := e.Group("/v1")
	pub.Use(middleware.OptionalJWTAuth(auth))
	pub.GET("/movies", h.Movie.List)
	pub.GET("/movies/:id", h.Movie.Get)

	// Everything below requires a valid, non-revoked token.
	priv := e.Group("/v1")
	priv.Use(middleware.JWTAuth(auth))
	priv.POST("/logout", h.Auth.Logout)
	priv.GET("/current_user", h.Auth.CurrentUser)
	priv.POST("/update_device_token", h.Auth.UpdateDeviceToken)
	priv.PATCH("/toggle_notifications", h.Auth.ToggleNotifications)
	priv.GET("/subscription", h.Subscription.Get)
	priv.PATCH("/subscription", h.Subscription.UpdatePlan)
	priv.GET("/wishlists", h.Wishlist.List)
	priv.POST("/wishlists", h.Wishlist.Add)
	priv.DELETE("/wishlists/:id", h.Wishlist.Remove)

	// Catalog mutation is reserved for supervisors.
	sup := e.Group("/v1")
	sup.Use(middleware.JWTAuth(auth))
	sup.Use(middleware.RequireRole(model.RoleSupervisor))
	sup.POST("/movies", h.Movie.Create)
	sup.PATCH("/movies/:id", h.Movie.Update)
	sup.PUT("/movies/:id", h.Movie.Update)
	sup.DELETE("/movies/:id", h.Movie.Delete)
}
