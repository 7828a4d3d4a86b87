package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/nomvote/nomvote/internal/model"
)

const (
	sessionKeyPrefix = "session:"
	revokedKeyPrefix = "session:revoked:"
)

// SessionStore caches resolved sessions keyed by a token digest.
// The raw token is never written to the cache.
type SessionStore interface {
	GetSession(ctx context.Context, digest string) (*model.AuthContext, error)
	SetSession(ctx context.Context, digest string, auth *model.AuthContext) error
	RevokeSession(ctx context.Context, digest string) error
}

var (
	_ SessionStore = (*Cache)(nil)
	_ SessionStore = Noop{}
)

// setSessionScript fills a session unless the digest carries a revocation
// marker. KEYS[1] session, KEYS[2] marker; ARGV user_id, email, ttl ms.
var setSessionScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[2]) == 1 then
	return 0
end
redis.call("HSET", KEYS[1], "user_id", ARGV[1], "email", ARGV[2])
redis.call("PEXPIRE", KEYS[1], ARGV[3])
return 1
`)

// GetSession returns the cached principal for a token digest.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetSession(ctx context.Context, digest string) (*model.AuthContext, error) {
	result, err := c.client.HGetAll(ctx, sessionKeyPrefix+digest).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall failed: %w", err)
	}

	if len(result) == 0 || result["user_id"] == "" {
		return nil, ErrCacheMiss
	}

	return &model.AuthContext{
		UserID: result["user_id"],
		Email:  result["email"],
	}, nil
}

// SetSession caches a principal. A digest revoked within the last session
// TTL is never cached again, so a fill racing a logout cannot resurrect it.
func (c *Cache) SetSession(ctx context.Context, digest string, auth *model.AuthContext) error {
	keys := []string{sessionKeyPrefix + digest, revokedKeyPrefix + digest}
	err := setSessionScript.Run(ctx, c.client, keys,
		auth.UserID, auth.Email, c.sessionTTL.Milliseconds()).Err()
	if err != nil {
		return fmt.Errorf("failed to cache session: %w", err)
	}
	return nil
}

// RevokeSession evicts a cached session and marks the digest revoked for
// one session TTL.
func (c *Cache) RevokeSession(ctx context.Context, digest string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, revokedKeyPrefix+digest, 1, c.sessionTTL)
		pipe.Del(ctx, sessionKeyPrefix+digest)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to revoke cached session: %w", err)
	}
	return nil
}
