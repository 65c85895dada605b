// README: Redis-backed cache for geocoding results keyed by region and query.
package geocoding

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"vtcride/internal/maps"
)

const cachePrefix = "vtc:geocode:"

// Cache stores candidate lists. A miss is reported as (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]maps.PlaceCandidate, bool, error)
	Set(ctx context.Context, key string, candidates []maps.PlaceCandidate) error
}

type RedisCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{redis: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]maps.PlaceCandidate, bool, error) {
	raw, err := c.redis.Get(ctx, cachePrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var out []maps.PlaceCandidate
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, candidates []maps.PlaceCandidate) error {
	raw, err := json.Marshal(candidates)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, cachePrefix+key, raw, c.ttl).Err()
}

// cacheKey normalizes the query and folds in the provider and region so a
// config change never serves stale scoping.
func cacheKey(provider string, region maps.Region, query string) string {
	h := sha1.New()
	h.Write([]byte(provider))
	h.Write([]byte{0})
	h.Write([]byte(region.Country + "|" + region.BBox.String() + "|" + region.Proximity.LngLat() + "|" +
		strings.Join(region.Types, ",") + "|" + region.Language))
	h.Write([]byte{0})
	h.Write([]byte(normalizeQuery(query)))
	return hex.EncodeToString(h.Sum(nil))
}

func normalizeQuery(q string) string {
	return strings.ToLower(strings.Join(strings.Fields(q), " "))
}
