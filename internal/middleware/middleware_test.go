package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/invoice-dashboard/internal/cache"
	"github.com/iliyamo/invoice-dashboard/internal/config"
	"github.com/iliyamo/invoice-dashboard/internal/utils"
)

const testSecret = "test-secret"

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func do(e *echo.Echo, method, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, secret string, ttl time.Duration) *http.Cookie {
	t.Helper()
	tok, err := utils.NewSessionToken(secret, "410544b2-4001-4271-9855-fec4b6a6442a", "User", "user@nextmail.com", ttl)
	require.NoError(t, err)
	return &http.Cookie{Name: SessionCookie, Value: tok.Token}
}

func unsignedCookie(t *testing.T) *http.Cookie {
	t.Helper()
	claims := utils.SessionClaims{
		Email:            "user@nextmail.com",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "410544b2-4001-4271-9855-fec4b6a6442a"},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	return &http.Cookie{Name: SessionCookie, Value: raw}
}

func gatedEcho() *echo.Echo {
	e := echo.New()
	e.Use(Session(testSecret), Authorized())
	ok := func(c echo.Context) error {
		if claims, signedIn := CurrentUser(c); signedIn {
			return c.String(http.StatusOK, claims.Subject)
		}
		return c.String(http.StatusOK, "guest")
	}
	e.GET("/dashboard", ok)
	e.GET("/dashboard/invoices", ok)
	e.GET("/dashboardish", ok)
	e.GET("/login", ok)
	e.GET("/healthz", ok)
	return e
}

func TestAuthorized_AnonymousIsSentToLogin(t *testing.T) {
	e := gatedEcho()

	for _, p := range []string{"/dashboard", "/dashboard/invoices"} {
		rec := do(e, http.MethodGet, p)
		assert.Equal(t, http.StatusSeeOther, rec.Code, p)
		assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation), p)
	}

	for _, p := range []string{"/login", "/healthz", "/dashboardish"} {
		rec := do(e, http.MethodGet, p)
		assert.Equal(t, http.StatusOK, rec.Code, p)
		assert.Equal(t, "guest", rec.Body.String(), p)
	}
}

func TestAuthorized_SignedInUser(t *testing.T) {
	e := gatedEcho()
	cookie := sessionCookie(t, testSecret, time.Hour)

	rec := do(e, http.MethodGet, "/dashboard/invoices", cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "410544b2-4001-4271-9855-fec4b6a6442a", rec.Body.String())

	rec = do(e, http.MethodGet, "/login", cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get(echo.HeaderLocation))
}

func TestSession_StoresVerifiedClaims(t *testing.T) {
	e := echo.New()
	e.Use(Session(testSecret))
	e.GET("/me", func(c echo.Context) error {
		claims, ok := CurrentUser(c)
		if !ok {
			return c.NoContent(http.StatusUnauthorized)
		}
		return c.String(http.StatusOK, claims.Email)
	})

	rec := do(e, http.MethodGet, "/me", sessionCookie(t, testSecret, time.Hour))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user@nextmail.com", rec.Body.String())

	rec = do(e, http.MethodGet, "/me")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSession_BadCookiesAreAnonymous(t *testing.T) {
	e := gatedEcho()

	for name, cookie := range map[string]*http.Cookie{
		"wrong secret": sessionCookie(t, "other-secret", time.Hour),
		"expired":      sessionCookie(t, testSecret, -time.Minute),
		"garbage":      {Name: SessionCookie, Value: "not.a.jwt"},
		"unsigned":     unsignedCookie(t),
	} {
		rec := do(e, http.MethodGet, "/dashboard", cookie)
		assert.Equal(t, http.StatusSeeOther, rec.Code, name)

		rec = do(e, http.MethodGet, "/login", cookie)
		assert.Equal(t, http.StatusOK, rec.Code, name)
	}
}

func cacheConfig() config.CacheConfig {
	return config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{http.MethodGet: true},
		TTL:          time.Minute,
		KeyStrategy:  "path_query",
		Prefix:       "dash",
		MaxBodyBytes: 1 << 20,
	}
}

func TestRedisCache_HitMissAndInvalidate(t *testing.T) {
	rdb := newRedis(t)
	calls := 0

	e := echo.New()
	e.Use(NewRedisCache(cacheConfig(), rdb))
	e.GET("/dashboard/invoices", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, echo.Map{"calls": calls})
	})
	e.POST("/dashboard/invoices", func(c echo.Context) error {
		calls++
		return c.NoContent(http.StatusNoContent)
	})

	first := do(e, http.MethodGet, "/dashboard/invoices?page=1")
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := do(e, http.MethodGet, "/dashboard/invoices?page=1")
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, echo.MIMEApplicationJSON, second.Header().Get(echo.HeaderContentType))
	assert.Equal(t, 1, calls)

	other := do(e, http.MethodGet, "/dashboard/invoices?page=2")
	assert.Equal(t, "MISS", other.Header().Get("X-Cache"))
	assert.Equal(t, 2, calls)

	do(e, http.MethodPost, "/dashboard/invoices")
	assert.Equal(t, 3, calls)

	require.NoError(t, cache.NewRedisInvalidator(rdb, "dash").Invalidate(context.Background(), "/dashboard"))
	again := do(e, http.MethodGet, "/dashboard/invoices?page=1")
	assert.Equal(t, "MISS", again.Header().Get("X-Cache"))
	assert.Equal(t, 4, calls)
}

func TestRedisCache_InvalidationDuringRequest(t *testing.T) {
	rdb := newRedis(t)
	inv := cache.NewRedisInvalidator(rdb, "dash")
	calls := 0

	e := echo.New()
	e.Use(NewRedisCache(cacheConfig(), rdb))
	e.GET("/dashboard/invoices", func(c echo.Context) error {
		calls++
		if calls == 1 {
			// An invoice changes after this view read its rows but before
			// the response is stored.
			require.NoError(t, inv.Invalidate(context.Background(), "/dashboard/invoices", "/dashboard"))
		}
		return c.JSON(http.StatusOK, echo.Map{"calls": calls})
	})

	first := do(e, http.MethodGet, "/dashboard/invoices")
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := do(e, http.MethodGet, "/dashboard/invoices")
	assert.Equal(t, "MISS", second.Header().Get("X-Cache"))
	assert.Equal(t, 2, calls)

	third := do(e, http.MethodGet, "/dashboard/invoices")
	assert.Equal(t, "HIT", third.Header().Get("X-Cache"))
	assert.Equal(t, second.Body.String(), third.Body.String())
	assert.Equal(t, 2, calls)
}

func TestRedisCache_SkipsErrors(t *testing.T) {
	rdb := newRedis(t)
	calls := 0

	e := echo.New()
	e.Use(NewRedisCache(cacheConfig(), rdb))
	e.GET("/dashboard/cards", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch card data"})
	})

	do(e, http.MethodGet, "/dashboard/cards")
	rec := do(e, http.MethodGet, "/dashboard/cards")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, 2, calls)
}

func TestRedisCache_DisabledWithoutClient(t *testing.T) {
	calls := 0
	e := echo.New()
	e.Use(NewRedisCache(cacheConfig(), nil))
	e.GET("/dashboard", func(c echo.Context) error {
		calls++
		return c.String(http.StatusOK, "ok")
	})

	do(e, http.MethodGet, "/dashboard")
	rec := do(e, http.MethodGet, "/dashboard")
	assert.Empty(t, rec.Header().Get("X-Cache"))
	assert.Equal(t, 2, calls)
}

func TestRecorder_Oversized(t *testing.T) {
	rec := &recorder{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK, limit: 4}
	_, _ = rec.Write([]byte("abc"))
	assert.False(t, rec.oversized)
	_, _ = rec.Write([]byte("de"))
	assert.True(t, rec.oversized)
	assert.Zero(t, rec.body.Len())
}

func TestRedisCache_SkipsOversizedBodies(t *testing.T) {
	rdb := newRedis(t)
	cfg := cacheConfig()
	cfg.MaxBodyBytes = 8
	calls := 0

	e := echo.New()
	e.Use(NewRedisCache(cfg, rdb))
	e.GET("/dashboard/customers", func(c echo.Context) error {
		calls++
		return c.String(http.StatusOK, "a body longer than eight bytes")
	})

	do(e, http.MethodGet, "/dashboard/customers")
	rec := do(e, http.MethodGet, "/dashboard/customers")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, 2, calls)
}

func loginAttempt(e *echo.Echo, email string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(url.Values{"email": {email}}.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestTokenBucket(t *testing.T) {
	rdb := newRedis(t)
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            10 * time.Minute,
		KeyStrategy:    "ip_email",
		Prefix:         "rl",
	}

	e := echo.New()
	e.POST("/login", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, NewTokenBucket(cfg, rdb))

	assert.Equal(t, http.StatusNoContent, loginAttempt(e, "user@nextmail.com").Code)
	second := loginAttempt(e, "USER@nextmail.com ")
	assert.Equal(t, http.StatusNoContent, second.Code)
	assert.Equal(t, "0", second.Header().Get("X-RateLimit-Remaining"))

	blocked := loginAttempt(e, "user@nextmail.com")
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Equal(t, "60", blocked.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusNoContent, loginAttempt(e, "other@nextmail.com").Code)
}

func TestLoginKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("email=A%40b.com"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.RemoteAddr = "10.0.0.7:5555"
	c := e.NewContext(req, httptest.NewRecorder())

	assert.Equal(t, "rl:login:ip:10.0.0.7", loginKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip"}, c))
	assert.Equal(t, "rl:login:email:a@b.com", loginKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "email"}, c))
	assert.Equal(t, "rl:login:ip:10.0.0.7:email:a@b.com", loginKey(config.RateLimitConfig{Prefix: "rl"}, c))
}

func TestTokenBucket_DisabledWithoutClient(t *testing.T) {
	e := echo.New()
	e.POST("/login", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) },
		NewTokenBucket(config.RateLimitConfig{Enabled: true, Capacity: 1}, nil))

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusNoContent, do(e, http.MethodPost, "/login").Code)
	}
}
