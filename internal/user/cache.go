package user

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arXiv/arxiv-admin-console-sub000/internal/audit"
)

const cacheKeyPrefix = "arxiv:admin:identity:"

// CachedResolver decorates a resolver with a redis TTL cache. Audit log pages
// name the same handful of admins over and over; caching keeps the read path
// from hammering tapir_users.
//
// Cache failures degrade to the inner resolver, never to an error: identity
// resolution is best-effort by contract.
type CachedResolver struct {
	inner  audit.Resolver
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedResolver(inner audit.Resolver, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedResolver {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedResolver{inner: inner, client: client, ttl: ttl, logger: logger}
}

// LookupUser implements audit.Resolver.
func (r *CachedResolver) LookupUser(ctx context.Context, userID string) (audit.Identity, error) {
	key := cacheKeyPrefix + userID

	if r.client != nil {
		cached, err := r.client.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var identity audit.Identity
			if jsonErr := json.Unmarshal(cached, &identity); jsonErr == nil {
				return identity, nil
			}
			// Corrupt entry: fall through to the inner resolver and rewrite it.
		case err != redis.Nil:
			if r.logger != nil {
				r.logger.WarnContext(ctx, "identity cache read failed", "user_id", userID, "error", err)
			}
		}
	}

	identity, err := r.inner.LookupUser(ctx, userID)
	if err != nil {
		return audit.Identity{}, err
	}

	if r.client != nil {
		if payload, jsonErr := json.Marshal(identity); jsonErr == nil {
			if setErr := r.client.Set(ctx, key, payload, r.ttl).Err(); setErr != nil && r.logger != nil {
				r.logger.WarnContext(ctx, "identity cache write failed", "user_id", userID, "error", setErr)
			}
		}
	}
	return identity, nil
}

// Invalidate drops a cached identity, e.g. after a change-email action.
func (r *CachedResolver) Invalidate(ctx context.Context, userID string) error {
	if r.client == nil {
		return nil
	}
	return r.client.Del(ctx, cacheKeyPrefix+userID).Err()
}
