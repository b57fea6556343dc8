package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// DenylistRepo records revoked rotation identifiers in Redis so a
// logged-out token is rejected on every instance immediately, without
// waiting for its natural expiry. Entries carry a TTL equal to the
// remaining token lifetime; after that the token is dead on its own
// and the entry can lapse.
type DenylistRepo struct {
	RDB    *redis.Client
	Prefix string
}

func NewDenylistRepo(rdb *redis.Client) *DenylistRepo {
	return &DenylistRepo{RDB: rdb, Prefix: "denylist"}
}

func (r *DenylistRepo) key(jti string) string { return r.Prefix + ":" + jti }

// Revoke adds the identifier until ttl elapses. A non-positive ttl
// still writes a short-lived entry so a just-expiring token cannot
// race past the check.
func (r *DenylistRepo) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return r.RDB.Set(ctx, r.key(jti), 1, ttl).Err()
}

// IsRevoked reports whether the identifier has been denylisted.
func (r *DenylistRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.RDB.Exists(ctx, r.key(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Reset clears every denylist entry. Used by administrative resets and
// tests.
func (r *DenylistRepo) Reset(ctx context.Context) error {
	iter := r.RDB.Scan(ctx, 0, r.Prefix+":*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.RDB.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
