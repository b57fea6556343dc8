package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/movieexplorer/movie-explorer-api/internal/repository"
	"github.com/movieexplorer/movie-explorer-api/internal/utils"
)

// Context keys set by the auth middleware for downstream handlers.
const (
	CtxUserID = "user_id" // uint64 subject of the validated token
	CtxRole   = "role"    // string role loaded from the database
	CtxJTI    = "jti"     // rotation identifier carried by the token
	CtxExp    = "exp"     // time.Time expiry of the token
)

// Authenticator validates bearer tokens against signature, expiry,
// the Redis denylist and the user's current rotation identifier. The
// same pipeline backs both the required and the optional middleware.
type Authenticator struct {
	Secret   string
	Users    *repository.UserRepo
	Denylist *repository.DenylistRepo
}

func NewAuthenticator(secret string, users *repository.UserRepo, denylist *repository.DenylistRepo) *Authenticator {
	return &Authenticator{Secret: secret, Users: users, Denylist: denylist}
}

// Validate runs the full check and returns the decoded claims. The
// error is one of the utils token sentinels so callers can map each
// cause to a message.
func (a *Authenticator) Validate(ctx context.Context, raw string) (utils.AccessClaims, error) {
	claims, err := utils.ParseAccessToken(a.Secret, raw)
	if err != nil {
		return utils.AccessClaims{}, err
	}
	revoked, err := a.Denylist.IsRevoked(ctx, claims.JTI)
	if err != nil {
		return utils.AccessClaims{}, err
	}
	if revoked {
		return utils.AccessClaims{}, utils.ErrTokenRevoked
	}
	u, err := a.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return utils.AccessClaims{}, utils.ErrTokenRevoked
		}
		return utils.AccessClaims{}, err
	}
	// A rotated identifier means every token issued before the
	// rotation is dead, even though each one still verifies.
	if u.JTI != claims.JTI {
		return utils.AccessClaims{}, utils.ErrTokenRevoked
	}
	claims.Role = u.Role // the database is authoritative for the role
	return claims, nil
}

// JWTAuth returns an Echo middleware that requires a valid bearer
// token and injects the caller's identity into the request context.
func JWTAuth(a *Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			claims, err := a.Validate(c.Request().Context(), raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": authErrorMessage(err)})
			}
			setIdentity(c, claims)
			return next(c)
		}
	}
}

// OptionalJWTAuth validates a bearer token when one is supplied and
// otherwise lets the request through as anonymous. A token that is
// present but invalid is still rejected with 401: silently downgrading
// a premium caller to anonymous would hide their own catalog from
// them.
func OptionalJWTAuth(a *Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c)
			if !ok {
				return next(c)
			}
			claims, err := a.Validate(c.Request().Context(), raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": authErrorMessage(err)})
			}
			setIdentity(c, claims)
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) (string, bool) {
	auth := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	return raw, raw != ""
}

func setIdentity(c echo.Context, claims utils.AccessClaims) {
	c.Set(CtxUserID, claims.UserID)
	c.Set(CtxRole, claims.Role)
	c.Set(CtxJTI, claims.JTI)
	c.Set(CtxExp, claims.Exp)
}

func authErrorMessage(err error) string {
	switch err {
	case utils.ErrTokenExpired:
		return "token expired"
	case utils.ErrTokenRevoked:
		return "token revoked"
	default:
		return "invalid token"
	}
}

// TokenTTL returns how long the token in context remains valid, used
// to bound the denylist entry written on logout.
func TokenTTL(c echo.Context) time.Duration {
	exp, ok := c.Get(CtxExp).(time.Time)
	if !ok {
		return 0
	}
	return time.Until(exp)
}
