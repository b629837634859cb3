package auth

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/instamunch/instamunch-api/internal/authz"
	"github.com/instamunch/instamunch-api/internal/shared"
)

// IdentitySource loads the stored identity of a user.
type IdentitySource interface {
	Identity(ctx context.Context, userID string) (authz.Identity, error)
}

// Resolver looks up caller identities, consulting the cache first and
// collapsing concurrent lookups for the same user into one.
type Resolver struct {
	source IdentitySource
	cache  *IdentityCache
	logger *slog.Logger
	group  singleflight.Group
}

// NewResolver builds a Resolver. cache may be nil.
func NewResolver(source IdentitySource, cache *IdentityCache, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{source: source, cache: cache, logger: logger}
}

// Resolve returns the identity for userID, or nil when the user no longer
// exists. A stored role outside the known set is kept verbatim so the
// authorization check denies it.
func (r *Resolver) Resolve(ctx context.Context, userID string) (*authz.Identity, error) {
	if r.cache != nil {
		id, ok, err := r.cache.Get(ctx, userID)
		if err != nil {
			r.logger.Warn("identity cache read failed", slog.String("user_id", userID), slog.Any("error", err))
		} else if ok {
			return &id, nil
		}
	}

	v, err, _ := r.group.Do(userID, func() (interface{}, error) {
		var version int64
		cacheable := r.cache != nil
		if cacheable {
			var verr error
			if version, verr = r.cache.Version(ctx, userID); verr != nil {
				r.logger.Warn("identity cache version read failed", slog.String("user_id", userID), slog.Any("error", verr))
				cacheable = false
			}
		}
		id, err := r.source.Identity(ctx, userID)
		if err != nil {
			return nil, err
		}
		if role, perr := authz.ParseRole(id.Role.String()); perr == nil {
			id.Role = role
		}
		if cacheable {
			stored, err := r.cache.Put(ctx, id, version)
			if err != nil {
				r.logger.Warn("identity cache write failed", slog.String("user_id", userID), slog.Any("error", err))
			} else if !stored {
				r.logger.Debug("identity changed during lookup, not cached", slog.String("user_id", userID))
			}
		}
		return id, nil
	})
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	id := v.(authz.Identity)
	return &id, nil
}
