package handler

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/movieexplorer/movie-explorer-api/internal/config"
	"github.com/movieexplorer/movie-explorer-api/internal/middleware"
	"github.com/movieexplorer/movie-explorer-api/internal/model"
	"github.com/movieexplorer/movie-explorer-api/internal/repository"
	"github.com/movieexplorer/movie-explorer-api/internal/service"
	"github.com/movieexplorer/movie-explorer-api/internal/utils"
	"github.com/movieexplorer/movie-explorer-api/internal/validate"
)

// AuthHandler bundles dependencies for account and session endpoints.
// Billing may be nil when no provider key is configured; registration
// then provisions the local subscription without an external customer.
type AuthHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Subs     *repository.SubscriptionRepo
	Denylist *repository.DenylistRepo
	Billing  service.BillingClient
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, s *repository.SubscriptionRepo, d *repository.DenylistRepo, b service.BillingClient) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Subs: s, Denylist: d, Billing: b}
}

// ----- DTOs -----

type registerReq struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobile_number"`
	Password     string `json:"password"`
	Role         string `json:"role"` // regular | supervisor, defaults to regular
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type deviceTokenReq struct {
	DeviceToken string `json:"device_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID           uint64 `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobile_number"`
	Role         string `json:"role"`
}
type authResp struct {
	User   userPart  `json:"user"`
	Access tokenPart `json:"access"`
}

// Register creates an account, provisions its default subscription and
// returns a token immediately. The billing call is best-effort: when
// the provider is unreachable the subscription is created without an
// external reference and registration still succeeds.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	req.MobileNumber = strings.TrimSpace(req.MobileNumber)

	if fe := validate.Registration(req.Name, req.Email, req.MobileNumber, req.Password); fe.Any() {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": fe})
	}
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role != model.RoleSupervisor {
		role = model.RoleRegular
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Name, req.Email, req.MobileNumber, req.Password, role, h.Cfg.BcryptCost)
	if err != nil {
		switch err {
		case repository.ErrEmailExists:
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": echo.Map{"email": []string{"already exists"}}})
		case repository.ErrMobileExists:
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": echo.Map{"mobile_number": []string{"already exists"}}})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	var customerID *string
	if h.Billing != nil {
		if id, err := h.Billing.CreateCustomer(ctx, req.Email); err != nil {
			log.Printf("auth: billing customer creation failed, continuing without: %v", err)
		} else {
			customerID = &id
		}
	}
	if err := h.Subs.CreateDefault(ctx, uid, customerID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "provision subscription failed"})
	}

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, u.JTI, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}

	return c.JSON(http.StatusCreated, authResp{
		User:   userPart{ID: u.ID, Name: u.Name, Email: u.Email, MobileNumber: u.MobileNumber, Role: u.Role},
		Access: tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Login verifies credentials and returns a fresh access token carrying
// the user's current rotation identifier.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, u.JTI, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}

	return c.JSON(http.StatusOK, authResp{
		User:   userPart{ID: u.ID, Name: u.Name, Email: u.Email, MobileNumber: u.MobileNumber, Role: u.Role},
		Access: tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Logout ends every session of the caller: the identifier carried by
// outstanding tokens is denylisted for its remaining lifetime, and the
// stored identifier is rotated so the next login issues tokens under a
// clean one instead of the revoked value.
func (h *AuthHandler) Logout(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	jti, ok := c.Get(middleware.CtxJTI).(string)
	if !ok || jti == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Denylist.Revoke(ctx, jti, middleware.TokenTTL(c)); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	if _, err := h.Users.RotateJTI(ctx, uid); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// CurrentUser returns the authenticated principal's summary.
func (h *AuthHandler) CurrentUser(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusOK, userPart{
		ID: u.ID, Name: u.Name, Email: u.Email, MobileNumber: u.MobileNumber, Role: u.Role,
	})
}

// UpdateDeviceToken overwrites the caller's push registration token.
func (h *AuthHandler) UpdateDeviceToken(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req deviceTokenReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	token := strings.TrimSpace(req.DeviceToken)
	if token == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": echo.Map{"device_token": []string{"is required"}}})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.UpdateDeviceToken(ctx, uid, token); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "device token updated successfully"})
}

// ToggleNotifications flips the caller's push opt-in flag and reports
// the new value.
func (h *AuthHandler) ToggleNotifications(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	enabled, err := h.Users.ToggleNotifications(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":               "notifications preference updated",
		"notifications_enabled": enabled,
	})
}
