package auth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/instamunch/instamunch-api/internal/authz"
	"github.com/instamunch/instamunch-api/internal/platform/cache"
)

const (
	identityKeyPrefix = "auth:identity:"
	versionKeyPrefix  = "auth:identity-version:"
	versionTTL        = 24 * time.Hour
)

type cachedIdentity struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// IdentityCache keeps resolved identities in Redis for a short TTL.
type IdentityCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewIdentityCache constructs an IdentityCache.
func NewIdentityCache(client redis.Cmdable, ttl time.Duration) *IdentityCache {
	return &IdentityCache{client: client, ttl: ttl}
}

// Get returns the cached identity and whether it was present.
func (c *IdentityCache) Get(ctx context.Context, userID string) (authz.Identity, bool, error) {
	got, err := cache.GetJSON[cachedIdentity](ctx, c.client, identityKeyPrefix+userID)
	if errors.Is(err, cache.ErrMiss) {
		return authz.Identity{}, false, nil
	}
	if err != nil {
		return authz.Identity{}, false, err
	}
	return authz.Identity{UserID: got.UserID, Email: got.Email, Role: authz.Role(got.Role)}, true, nil
}

// Version returns the invalidation counter for userID. Read it before loading
// the identity and pass it to Put.
func (c *IdentityCache) Version(ctx context.Context, userID string) (int64, error) {
	return cache.Version(ctx, c.client, versionKeyPrefix+userID)
}

// Put stores id until the TTL elapses, unless the user was invalidated after
// version was read. It reports whether the identity was stored.
func (c *IdentityCache) Put(ctx context.Context, id authz.Identity, version int64) (bool, error) {
	return cache.SetJSONAtVersion(ctx, c.client, identityKeyPrefix+id.UserID, versionKeyPrefix+id.UserID, version, cachedIdentity{
		UserID: id.UserID,
		Email:  id.Email,
		Role:   id.Role.String(),
	}, c.ttl)
}

// Invalidate drops the cached identity of userID and fences off lookups that
// started before the call.
func (c *IdentityCache) Invalidate(ctx context.Context, userID string) error {
	return cache.Invalidate(ctx, c.client, identityKeyPrefix+userID, versionKeyPrefix+userID, versionTTL)
}
