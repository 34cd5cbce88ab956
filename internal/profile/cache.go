package profile

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cached wraps a Lookup with a Redis read-through cache keyed by
// region and UID. Cache errors are logged and treated as misses so a
// flaky Redis never breaks the lookup path.
type Cached struct {
	Next Lookup
	RDB  *redis.Client
	TTL  time.Duration
}

func NewCached(next Lookup, rdb *redis.Client, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cached{Next: next, RDB: rdb, TTL: ttl}
}

func cacheKey(uid, region string) string {
	return "profile:" + strings.ToUpper(strings.TrimSpace(region)) + ":" + uid
}

func (c *Cached) Fetch(ctx context.Context, uid, region string) (Profile, error) {
	key := cacheKey(uid, region)

	raw, err := c.RDB.Get(ctx, key).Result()
	if err == nil {
		var p Profile
		if jsonErr := json.Unmarshal([]byte(raw), &p); jsonErr == nil {
			return p, nil
		}
		// Poisoned entry, drop it and refetch.
		_ = c.RDB.Del(ctx, key).Err()
	} else if err != redis.Nil {
		log.Printf("profile cache get: %v", err)
	}

	p, err := c.Next.Fetch(ctx, uid, region)
	if err != nil {
		return Profile{}, err
	}

	if data, jsonErr := json.Marshal(p); jsonErr == nil {
		if setErr := c.RDB.Set(ctx, key, data, c.TTL).Err(); setErr != nil {
			log.Printf("profile cache set: %v", setErr)
		}
	}
	return p, nil
}
