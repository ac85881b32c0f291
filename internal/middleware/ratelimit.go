package middleware

import (
	"context"
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/invoice-dashboard/internal/config"
)

// takeTokenScript refills the bucket in whole intervals, then tries to take
// one token. Returns {allowed, tokens_left, wait_ms}.
var takeTokenScript = redis.NewScript(`
local capacity = tonumber(ARGV[2])
local per_tick = tonumber(ARGV[3])
local tick_ms = tonumber(ARGV[4])
local now = tonumber(ARGV[1])

local tokens = tonumber(redis.call('HGET', KEYS[1], 'tokens'))
local since = tonumber(redis.call('HGET', KEYS[1], 'since'))
if not tokens or not since then
	tokens, since = capacity, now
end

local ticks = math.floor(math.max(0, now - since) / tick_ms)
if ticks > 0 then
	tokens = math.min(capacity, tokens + ticks * per_tick)
	since = since + ticks * tick_ms
end

local allowed, wait = 0, 0
if tokens >= 1 then
	allowed, tokens = 1, tokens - 1
else
	wait = math.max(0, tick_ms - (now - since))
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'since', since)
redis.call('EXPIRE', KEYS[1], tonumber(ARGV[5]))
return { allowed, tokens, wait }
`)

type bucketDecision struct {
	allowed bool
	left    int64
	wait    time.Duration
}

// take spends one token of key's bucket.
func take(ctx context.Context, rdb *redis.Client, cfg config.RateLimitConfig, key string) (bucketDecision, error) {
	res, err := takeTokenScript.Run(ctx, rdb, []string{key},
		time.Now().UnixMilli(),
		cfg.Capacity,
		cfg.RefillTokens,
		cfg.RefillInterval.Milliseconds(),
		int64(cfg.TTL/time.Second),
	).Int64Slice()
	if err != nil {
		return bucketDecision{}, err
	}
	if len(res) != 3 {
		return bucketDecision{}, fmt.Errorf("unexpected bucket reply %v", res)
	}
	return bucketDecision{
		allowed: res[0] == 1,
		left:    res[1],
		wait:    time.Duration(res[2]) * time.Millisecond,
	}, nil
}

// NewTokenBucket throttles sign-in attempts with a Redis token bucket keyed
// by loginKey. Redis failures let the attempt through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passthrough
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := loginKey(cfg, c)
			d, err := take(c.Request().Context(), rdb, cfg, key)
			if err != nil {
				if cfg.Debug {
					log.Printf("ratelimit: %s: %v", key, err)
				}
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(d.left, 10))
			if d.allowed {
				return next(c)
			}

			secs := int(math.Ceil(d.wait.Seconds()))
			h.Set("Retry-After", strconv.Itoa(secs))
			if cfg.Debug {
				log.Printf("ratelimit: blocked %s for %s", key, d.wait)
			}
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"error":       "Too many sign-in attempts. Try again later.",
				"retry_after": secs,
			})
		}
	}
}

// loginKey names the bucket of an attempt: "ip", "email" or, by default,
// both, so one client cannot lock out an account for everybody.
func loginKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	email := strings.ToLower(strings.TrimSpace(c.FormValue("email")))
	if email == "" {
		email = "none"
	}

	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		return cfg.Prefix + ":login:ip:" + ip
	case "email":
		return cfg.Prefix + ":login:email:" + email
	default:
		return cfg.Prefix + ":login:ip:" + ip + ":email:" + email
	}
}
