package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/KrishnaSriTarun/wanderlust/internal/domain"
	pkgredis "github.com/KrishnaSriTarun/wanderlust/pkg/redis"
	"github.com/KrishnaSriTarun/wanderlust/pkg/telemetry"
)

// RedisListingCache is a read-through cache in front of a
// ListingRepository. Listings are read-only to the reservation core, so
// cached entries only go stale when the listing service changes a rate;
// a short TTL bounds that window. Cache failures degrade to the inner
// repository, never to a request failure.
type RedisListingCache struct {
	inner  ListingRepository
	client *redis.Client
	ttl    time.Duration
}

// RedisListingCacheConfig contains configuration for the listing cache.
type RedisListingCacheConfig struct {
	TTL time.Duration
}

// NewRedisListingCache wraps a ListingRepository with a Redis cache.
func NewRedisListingCache(inner ListingRepository, client *pkgredis.Client, cfg *RedisListingCacheConfig) *RedisListingCache {
	ttl := 5 * time.Minute
	if cfg != nil && cfg.TTL > 0 {
		ttl = cfg.TTL
	}
	return &RedisListingCache{
		inner:  inner,
		client: client.Client(),
		ttl:    ttl,
	}
}

func listingCacheKey(id string) string {
	return fmt.Sprintf("listing:%s", id)
}

// GetByID returns the cached listing, falling back to the inner
// repository on miss or cache error.
func (c *RedisListingCache) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.listing_cache.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("listing_id", id))

	key := listingCacheKey(id)
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		listing := &domain.Listing{}
		if err := json.Unmarshal(raw, listing); err == nil {
			span.SetAttributes(attribute.Bool("cache_hit", true))
			span.SetStatus(codes.Ok, "")
			return listing, nil
		}
		// Corrupt entry: drop it and fall through to the source.
		_ = c.client.Del(ctx, key).Err()
	} else if !errors.Is(err, redis.Nil) {
		span.RecordError(err)
	}

	span.SetAttributes(attribute.Bool("cache_hit", false))

	listing, err := c.inner.GetByID(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if raw, err := json.Marshal(listing); err == nil {
		_ = c.client.Set(ctx, key, raw, c.ttl).Err()
	}

	span.SetStatus(codes.Ok, "")
	return listing, nil
}

// Ensure RedisListingCache implements ListingRepository
var _ ListingRepository = (*RedisListingCache)(nil)
