package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/movieexplorer/movie-explorer-api/internal/middleware"
	"github.com/movieexplorer/movie-explorer-api/internal/model"
	"github.com/movieexplorer/movie-explorer-api/internal/repository"
)

// SubscriptionHandler serves the caller's billing state: the current
// plan and the plan switch that unlocks or drops premium access.
type SubscriptionHandler struct {
	Subs *repository.SubscriptionRepo
}

func NewSubscriptionHandler(s *repository.SubscriptionRepo) *SubscriptionHandler {
	return &SubscriptionHandler{Subs: s}
}

type planReq struct {
	PlanType string `json:"plan_type"`
}

type subscriptionPart struct {
	PlanType  string     `json:"plan_type"`
	Status    string     `json:"status"`
	Premium   bool       `json:"premium"`
	ExpiresAt *time.Time `json:"expires_at"`
}

func subscriptionPartFrom(s model.Subscription) subscriptionPart {
	return subscriptionPart{
		PlanType:  s.PlanType,
		Status:    s.Status,
		Premium:   s.IsPremium(),
		ExpiresAt: s.ExpiresAt,
	}
}

// Get handles GET /v1/subscription.
func (h *SubscriptionHandler) Get(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Subs.GetByUserID(ctx, uid)
	if err != nil {
		if err == repository.ErrSubscriptionNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "subscription not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, subscriptionPartFrom(s))
}

// UpdatePlan handles PATCH /v1/subscription. Switching to premium is
// the upgrade path; switching back to basic drops premium visibility
// on the next read, since the catalog predicate consults the stored
// plan per request.
func (h *SubscriptionHandler) UpdatePlan(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req planReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	plan := strings.ToLower(strings.TrimSpace(req.PlanType))
	if plan != model.PlanBasic && plan != model.PlanPremium {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": echo.Map{"plan_type": []string{"must be basic or premium"}}})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Subs.SetPlan(ctx, uid, plan, model.SubscriptionActive); err != nil {
		if err == repository.ErrSubscriptionNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "subscription not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	s, err := h.Subs.GetByUserID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":      "subscription updated",
		"subscription": subscriptionPartFrom(s),
	})
}
