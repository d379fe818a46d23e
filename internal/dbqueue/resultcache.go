package dbqueue

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ResultCache memoizes read-only query results for a Cache-tier child
// queue. It is intentionally narrow: callers decide
// what is cacheable, the cache itself only stores and retrieves.
type ResultCache interface {
	Get(ctx context.Context, designator, sql string, params ParameterList) (QueryResult, bool)
	Put(ctx context.Context, designator, sql string, params ParameterList, result QueryResult, ttl time.Duration)
}

// RedisResultCache backs a ResultCache with a shared Redis instance so
// every Cache-tier worker, across every lead queue, sees the same
// memoized results.
type RedisResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisResultCache dials addr lazily; go-redis connects on first use.
func NewRedisResultCache(addr string, defaultTTL time.Duration) *RedisResultCache {
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Second
	}
	return &RedisResultCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    defaultTTL,
	}
}

func cacheKey(designator, sql string, params ParameterList) string {
	h := sha256.New()
	h.Write([]byte(designator))
	h.Write([]byte{0})
	h.Write([]byte(sql))
	for _, p := range params {
		h.Write([]byte{0})
		h.Write([]byte(p.Name))
		h.Write([]byte{0})
		h.Write([]byte(strings.TrimSpace(p.Type)))
		h.Write([]byte{0})
		h.Write([]byte(fmtParamValue(p.Value)))
	}
	return "hydrogend:dbqueue:cache:" + hex.EncodeToString(h.Sum(nil))
}

func fmtParamValue(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// Get returns a memoized result, if one is present and unexpired.
func (c *RedisResultCache) Get(ctx context.Context, designator, sql string, params ParameterList) (QueryResult, bool) {
	raw, err := c.client.Get(ctx, cacheKey(designator, sql, params)).Bytes()
	if err != nil {
		return QueryResult{}, false
	}
	var result QueryResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return QueryResult{}, false
	}
	return result, true
}

// Put memoizes result under ttl, or the cache's default if ttl <= 0.
func (c *RedisResultCache) Put(ctx context.Context, designator, sql string, params ParameterList, result QueryResult, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, cacheKey(designator, sql, params), raw, ttl).Err()
}

// Close releases the underlying connection pool.
func (c *RedisResultCache) Close() error {
	return c.client.Close()
}
