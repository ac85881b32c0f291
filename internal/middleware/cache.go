package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/invoice-dashboard/internal/cache"
	"github.com/iliyamo/invoice-dashboard/internal/config"
)

// recorder copies what a handler writes so it can be stored afterwards.
// Bodies over limit are marked oversized and never stored.
type recorder struct {
	http.ResponseWriter
	status    int
	body      bytes.Buffer
	limit     int
	oversized bool
}

func (r *recorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	if !r.oversized {
		if r.limit > 0 && r.body.Len()+len(b) > r.limit {
			r.oversized = true
			r.body.Reset()
		} else {
			r.body.Write(b)
		}
	}
	return r.ResponseWriter.Write(b)
}

// cachedResponse is the Redis value of a cached view.
type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// cacheKey keys by request path and generation; the query string is
// included unless the strategy is "path".
func cacheKey(cfg config.CacheConfig, c echo.Context, gen int64) string {
	r := c.Request()
	query := r.URL.RawQuery
	if strings.EqualFold(cfg.KeyStrategy, "path") {
		query = ""
	}
	return cache.Key(cfg.Prefix, r.URL.Path, gen, query)
}

func lookup(ctx context.Context, rdb *redis.Client, key string) (cachedResponse, bool) {
	bs, err := rdb.Get(ctx, key).Bytes()
	if err != nil {
		return cachedResponse{}, false
	}
	var cr cachedResponse
	if err := json.Unmarshal(bs, &cr); err != nil || cr.Status == 0 {
		return cachedResponse{}, false
	}
	return cr, true
}

func passthrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

// NewRedisCache serves repeated reads of dashboard views from Redis. Only
// 200 responses are stored; mutations drop entries through
// cache.RedisInvalidator.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passthrough
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return next(c)
			}
			ctx := c.Request().Context()
			gen, err := cache.Generation(ctx, rdb, cfg.Prefix)
			if err != nil {
				log.Printf("cache: read generation: %v", err)
				return next(c)
			}
			key := cacheKey(cfg, c, gen)

			if cr, ok := lookup(ctx, rdb, key); ok {
				c.Response().Header().Set("X-Cache", "HIT")
				return c.Blob(cr.Status, cr.ContentType, cr.Body)
			}

			rec := &recorder{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
			c.Response().Writer = rec
			c.Response().Header().Set("X-Cache", "MISS")
			if err := next(c); err != nil {
				return err
			}
			if rec.status != http.StatusOK || rec.oversized {
				return nil
			}

			bs, err := json.Marshal(cachedResponse{
				Status:      rec.status,
				ContentType: c.Response().Header().Get(echo.HeaderContentType),
				Body:        rec.body.Bytes(),
			})
			if err != nil {
				return nil
			}
			if err := rdb.Set(context.WithoutCancel(ctx), key, bs, ttl).Err(); err != nil {
				log.Printf("cache: store %s failed: %v", key, err)
			}
			return nil
		}
	}
}
