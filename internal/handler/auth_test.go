package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movieexplorer/movie-explorer-api/internal/config"
	"github.com/movieexplorer/movie-explorer-api/internal/middleware"
	"github.com/movieexplorer/movie-explorer-api/internal/repository"
	"github.com/movieexplorer/movie-explorer-api/internal/utils"
)

type stubBilling struct {
	id  string
	err error
}

func (s *stubBilling) CreateCustomer(context.Context, string) (string, error) {
	return s.id, s.err
}

func authTestEnv(t *testing.T, billing *stubBilling) (*AuthHandler, sqlmock.Sqlmock, *repository.DenylistRepo) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	denylist := repository.NewDenylistRepo(rdb)
	cfg := config.Config{JWTSecret: "test-secret", AccessTTLMin: 15, BcryptCost: 4}
	h := NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewSubscriptionRepo(db), denylist, nil)
	if billing != nil {
		h.Billing = billing
	}
	return h, mock, denylist
}

func userRowsFor(id uint64, jti string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "name", "email", "mobile_number", "password_hash", "role",
		"jti", "device_token", "notifications_enabled", "created_at", "updated_at",
	}).AddRow(id, "Jordan Lee", "jordan@example.com", "+15550001111", "hash", "regular",
		jti, nil, true, now, now)
}

const registerBody = `{"name":"Jordan Lee","email":"jordan@example.com","mobile_number":"+15550001111","password":"Sup3r$ecret"}`

func TestRegisterHappyPath(t *testing.T) {
	h, mock, _ := authTestEnv(t, &stubBilling{id: "cus_123"})

	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectExec("INSERT INTO subscriptions").
		WithArgs(uint64(9), "basic", "active", "cus_123").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("FROM users").WithArgs(uint64(9)).
		WillReturnRows(userRowsFor(9, "jti-9"))

	c, rec := newCtx(http.MethodPost, "/v1/auth/register", registerBody)
	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		User struct {
			ID    uint64 `json:"id"`
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
		Access struct {
			Token string `json:"token"`
		} `json:"access"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.EqualValues(t, 9, resp.User.ID)
	assert.Equal(t, "regular", resp.User.Role)
	assert.NotEmpty(t, resp.Access.Token)

	// The issued token carries the stored rotation identifier.
	claims, err := utils.ParseAccessToken("test-secret", resp.Access.Token)
	require.NoError(t, err)
	assert.Equal(t, "jti-9", claims.JTI)
}

func TestRegisterSurvivesBillingOutage(t *testing.T) {
	h, mock, _ := authTestEnv(t, &stubBilling{err: errors.New("stripe timeout")})

	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(9, 1))
	// Subscription row is provisioned without an external customer.
	mock.ExpectExec("INSERT INTO subscriptions").
		WithArgs(uint64(9), "basic", "active", nil).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("FROM users").WithArgs(uint64(9)).
		WillReturnRows(userRowsFor(9, "jti-9"))

	c, rec := newCtx(http.MethodPost, "/v1/auth/register", registerBody)
	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h, mock, _ := authTestEnv(t, nil)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("Error 1062: Duplicate entry 'jordan@example.com' for key 'users.index_users_on_email'"))

	c, rec := newCtx(http.MethodPost, "/v1/auth/register", registerBody)
	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "email")
}

func TestRegisterFieldErrors(t *testing.T) {
	h, _, _ := authTestEnv(t, nil)

	body := `{"name":"Jo","email":"not-an-email","mobile_number":"12","password":"weak"}`
	c, rec := newCtx(http.MethodPost, "/v1/auth/register", body)
	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp struct {
		Errors map[string][]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Errors, "name")
	assert.Contains(t, resp.Errors, "email")
	assert.Contains(t, resp.Errors, "mobile_number")
	assert.Contains(t, resp.Errors, "password")
}

func TestLoginWrongPassword(t *testing.T) {
	h, mock, _ := authTestEnv(t, nil)

	hash, err := utils.HashPassword("Correct1!pass", 4)
	require.NoError(t, err)
	now := time.Now()
	mock.ExpectQuery("FROM users").WithArgs("jordan@example.com").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "email", "mobile_number", "password_hash", "role",
			"jti", "device_token", "notifications_enabled", "created_at", "updated_at",
		}).AddRow(9, "Jordan Lee", "jordan@example.com", "+15550001111", hash, "regular",
			"jti-9", nil, true, now, now))

	c, rec := newCtx(http.MethodPost, "/v1/auth/login", `{"email":"jordan@example.com","password":"Wrong1!pass"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid credentials")
}

func TestLoginUnknownEmail(t *testing.T) {
	h, mock, _ := authTestEnv(t, nil)

	mock.ExpectQuery("FROM users").WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	c, rec := newCtx(http.MethodPost, "/v1/auth/login", `{"email":"ghost@example.com","password":"Whatever1!"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutDenylistsAndRotates(t *testing.T) {
	h, mock, denylist := authTestEnv(t, nil)

	// The stored identifier must move on so the next login does not
	// issue tokens under the value just denylisted.
	mock.ExpectExec("UPDATE users SET jti").
		WithArgs(sqlmock.AnyArg(), uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := newCtx(http.MethodPost, "/v1/logout", "")
	c.Set(middleware.CtxUserID, uint64(9))
	c.Set(middleware.CtxJTI, "jti-out")
	c.Set(middleware.CtxExp, time.Now().Add(10*time.Minute))

	require.NoError(t, h.Logout(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	revoked, err := denylist.IsRevoked(context.Background(), "jti-out")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginAfterLogoutIssuesValidToken(t *testing.T) {
	h, mock, denylist := authTestEnv(t, nil)

	// Session 1 logs out: old identifier denylisted, stored one rotated.
	mock.ExpectExec("UPDATE users SET jti").
		WithArgs(sqlmock.AnyArg(), uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	c, rec := newCtx(http.MethodPost, "/v1/logout", "")
	c.Set(middleware.CtxUserID, uint64(9))
	c.Set(middleware.CtxJTI, "jti-old")
	c.Set(middleware.CtxExp, time.Now().Add(10*time.Minute))
	require.NoError(t, h.Logout(c))
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Login reads the rotated identifier from the row and embeds it in
	// the fresh token.
	hash, err := utils.HashPassword("Correct1!pass", 4)
	require.NoError(t, err)
	now := time.Now()
	mock.ExpectQuery("FROM users").WithArgs("jordan@example.com").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "email", "mobile_number", "password_hash", "role",
			"jti", "device_token", "notifications_enabled", "created_at", "updated_at",
		}).AddRow(9, "Jordan Lee", "jordan@example.com", "+15550001111", hash, "regular",
			"jti-new", nil, true, now, now))

	c, rec = newCtx(http.MethodPost, "/v1/auth/login", `{"email":"jordan@example.com","password":"Correct1!pass"}`)
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Access struct {
			Token string `json:"token"`
		} `json:"access"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	claims, err := utils.ParseAccessToken("test-secret", resp.Access.Token)
	require.NoError(t, err)
	assert.Equal(t, "jti-new", claims.JTI)

	// The fresh session passes both revocation checks.
	revoked, err := denylist.IsRevoked(context.Background(), claims.JTI)
	require.NoError(t, err)
	assert.False(t, revoked, "fresh session must not inherit the revoked identifier")
}

func TestUpdateDeviceTokenRequiresValue(t *testing.T) {
	h, _, _ := authTestEnv(t, nil)

	c, rec := newCtx(http.MethodPost, "/v1/update_device_token", `{"device_token":"  "}`)
	c.Set(middleware.CtxUserID, uint64(9))

	require.NoError(t, h.UpdateDeviceToken(c))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "device_token")
}

func TestToggleNotifications(t *testing.T) {
	h, mock, _ := authTestEnv(t, nil)

	mock.ExpectExec("UPDATE users SET notifications_enabled").WithArgs(uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT notifications_enabled").WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"notifications_enabled"}).AddRow(false))

	c, rec := newCtx(http.MethodPatch, "/v1/toggle_notifications", "")
	c.Set(middleware.CtxUserID, uint64(9))

	require.NoError(t, h.ToggleNotifications(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"notifications_enabled":false`)
	assert.NoError(t, mock.ExpectationsWereMet())
}
