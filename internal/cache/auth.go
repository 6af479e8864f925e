package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"kassa/internal/models"
)

// AuthCache keeps (email, password hash) -> identity mappings in Redis so
// the hot auth path skips the database. Entries expire so deactivated
// accounts fall back to the database within the TTL.
type AuthCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

type Identity struct {
	UserID int64
	Role   models.UserRole
}

func NewAuthCache(client redis.UniversalClient, ttl time.Duration) *AuthCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &AuthCache{client: client, ttl: ttl}
}

func authKey(email, passwordHash string) string {
	return fmt.Sprintf("auth:%s:%s", email, passwordHash)
}

// GetIdentity returns the cached identity for the credentials, or redis.Nil
// when absent.
func (c *AuthCache) GetIdentity(ctx context.Context, email, passwordHash string) (*Identity, error) {
	val, err := c.client.Get(ctx, authKey(email, passwordHash)).Result()
	if err != nil {
		return nil, err
	}
	id, role, ok := strings.Cut(val, ":")
	if !ok {
		return nil, fmt.Errorf("malformed auth cache entry %q", val)
	}
	userID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed auth cache entry %q: %w", val, err)
	}
	return &Identity{UserID: userID, Role: models.UserRole(role)}, nil
}

func (c *AuthCache) StoreIdentity(ctx context.Context, email, passwordHash string, identity Identity) error {
	val := strconv.FormatInt(identity.UserID, 10) + ":" + string(identity.Role)
	return c.client.Set(ctx, authKey(email, passwordHash), val, c.ttl).Err()
}

// Invalidate drops one credential mapping, used when an account is
// deactivated or a password changes.
func (c *AuthCache) Invalidate(ctx context.Context, email, passwordHash string) error {
	return c.client.Del(ctx, authKey(email, passwordHash)).Err()
}
