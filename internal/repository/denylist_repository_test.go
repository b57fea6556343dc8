package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDenylist(t *testing.T) (*DenylistRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewDenylistRepo(rdb), mr
}

func TestDenylistRevoke(t *testing.T) {
	repo, mr := newDenylist(t)
	ctx := context.Background()

	revoked, err := repo.IsRevoked(ctx, "abc123")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, repo.Revoke(ctx, "abc123", 10*time.Minute))

	revoked, err = repo.IsRevoked(ctx, "abc123")
	require.NoError(t, err)
	assert.True(t, revoked)

	// Entries lapse with the token itself.
	mr.FastForward(11 * time.Minute)
	revoked, err = repo.IsRevoked(ctx, "abc123")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestDenylistRevokeNonPositiveTTL(t *testing.T) {
	repo, mr := newDenylist(t)
	ctx := context.Background()

	// An already-expired token still gets a brief entry so it cannot
	// slip through the check mid-expiry.
	require.NoError(t, repo.Revoke(ctx, "race", -1))

	revoked, err := repo.IsRevoked(ctx, "race")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Minute)
	revoked, err = repo.IsRevoked(ctx, "race")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestDenylistReset(t *testing.T) {
	repo, mr := newDenylist(t)
	ctx := context.Background()

	require.NoError(t, repo.Revoke(ctx, "one", time.Hour))
	require.NoError(t, repo.Revoke(ctx, "two", time.Hour))
	mr.Set("other:key", "keep")

	require.NoError(t, repo.Reset(ctx))

	for _, jti := range []string{"one", "two"} {
		revoked, err := repo.IsRevoked(ctx, jti)
		require.NoError(t, err)
		assert.False(t, revoked)
	}
	// Keys outside the namespace survive a reset.
	assert.True(t, mr.Exists("other:key"))
}
