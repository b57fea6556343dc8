package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movieexplorer/movie-explorer-api/internal/config"
)

func cacheTestConfig() config.CacheConfig {
	return config.CacheConfig{
		Enabled:     true,
		Methods:     map[string]bool{"GET": true},
		TTL:         30 * time.Second,
		KeyStrategy: "route_query_user",
		Prefix:      "cache",
	}
}

func TestCacheServesAnonymousHits(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	e := echo.New()
	e.Use(NewRedisCache(cacheTestConfig(), rdb))
	hits := 0
	e.GET("/v1/movies", func(c echo.Context) error {
		hits++
		return c.JSON(http.StatusOK, echo.Map{"hits": hits})
	})

	first := httptest.NewRecorder()
	e.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/v1/movies", nil))
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := httptest.NewRecorder()
	e.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/v1/movies", nil))
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, 1, hits)
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestCacheSkipsBearerRequests(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	e := echo.New()
	e.Use(NewRedisCache(cacheTestConfig(), rdb))
	hits := 0
	e.GET("/v1/current_user", func(c echo.Context) error {
		hits++
		return c.JSON(http.StatusOK, echo.Map{"hits": hits})
	})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/v1/current_user", nil)
		req.Header.Set("Authorization", "Bearer some-token")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-Cache"))
	}
	// Both requests reached the handler and nothing was stored.
	assert.Equal(t, 2, hits)
	assert.Empty(t, mr.Keys())
}

// Revocation must bite immediately even with the cache in front of the
// auth middleware, the way the server wires them.
func TestCacheDoesNotMaskRevocation(t *testing.T) {
	env := newAuthEnv(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	e := echo.New()
	e.Use(NewRedisCache(cacheTestConfig(), rdb))
	g := e.Group("/v1")
	g.Use(JWTAuth(env.auth))
	g.GET("/current_user", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	})

	token := issueToken(t, 1, "regular", "jti-1")
	env.expectUser(1, "regular", "jti-1")

	req := httptest.NewRequest(http.MethodGet, "/v1/current_user", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, env.auth.Denylist.Revoke(context.Background(), "jti-1", time.Hour))

	req = httptest.NewRequest(http.MethodGet, "/v1/current_user", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "token revoked")
}
