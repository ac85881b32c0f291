// Package cache owns the Redis key layout of cached dashboard responses and
// drops entries when the data behind them changes.
package cache

import (
	"context"
	"crypto/sha1"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Key returns the Redis key of a cached response. Keys are grouped by path
// so every variant of a page (query string) can be dropped together, and
// carry the generation that was current when the request started.
func Key(prefix, path string, gen int64, rawQuery string) string {
	sum := sha1.Sum([]byte(rawQuery))
	return fmt.Sprintf("%s:path:%s:g%d:%x", prefix, path, gen, sum[:])
}

func generationKey(prefix string) string { return prefix + ":gen" }

// Generation returns the number of invalidations prefix has seen. A response
// computed under an older generation is never looked up again, even if it
// is stored after the invalidation ran.
func Generation(ctx context.Context, rdb *redis.Client, prefix string) (int64, error) {
	n, err := rdb.Get(ctx, generationKey(prefix)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// pathPattern matches every cached key whose path starts with path.
func pathPattern(prefix, path string) string {
	return prefix + ":path:" + escapeGlob(path) + "*"
}

func escapeGlob(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)
	return r.Replace(s)
}

// RedisInvalidator deletes cached responses by path prefix.
type RedisInvalidator struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisInvalidator(rdb *redis.Client, prefix string) *RedisInvalidator {
	return &RedisInvalidator{rdb: rdb, prefix: prefix}
}

// Invalidate bumps the generation, then removes the cached views of every
// path and the paths below it.
func (i *RedisInvalidator) Invalidate(ctx context.Context, paths ...string) error {
	if i == nil || i.rdb == nil {
		return nil
	}
	if err := i.rdb.Incr(ctx, generationKey(i.prefix)).Err(); err != nil {
		return fmt.Errorf("bump generation: %w", err)
	}
	for _, p := range paths {
		var cursor uint64
		for {
			keys, next, err := i.rdb.Scan(ctx, cursor, pathPattern(i.prefix, p), 100).Result()
			if err != nil {
				return fmt.Errorf("scan %s: %w", p, err)
			}
			if len(keys) > 0 {
				if err := i.rdb.Del(ctx, keys...).Err(); err != nil {
					return fmt.Errorf("del %s: %w", p, err)
				}
			}
			cursor = next
			if cursor == 0 {
				break
			}
		}
	}
	return nil
}
