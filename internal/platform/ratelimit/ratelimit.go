package ratelimit

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	metrics "github.com/formrelay/relay/internal/metrics"
)

// Policy defines a simple fixed-window rate limit: Limit requests within
// Window per derived key.
type Policy struct {
	// Name is a short identifier for the limited endpoint, used for logging/metrics (e.g. "inquiry:send").
	Name   string
	Window time.Duration
	Limit  int
	// Key builds the bucket key for this request.
	// Example: func(c echo.Context) string { return "inquiry:" + c.RealIP() }
	Key func(echo.Context) string
}

// Store abstracts a shared counter store (e.g., Redis) for fixed-window limiting.
type Store interface {
	// Allow increments the counter for the key in the given window and returns whether the request is allowed.
	// If not allowed, retryAfterSec indicates seconds until the window resets.
	Allow(ctx echo.Context, key string, limit int, window time.Duration) (allowed bool, retryAfterSec int, err error)
}

// Middleware returns an Echo middleware enforcing the provided Policy using an
// in-memory fixed window. Process-local; multi-instance deployments should use
// MiddlewareWithStore.
func Middleware(p Policy) echo.MiddlewareFunc {
	normalize(&p)

	type bucket struct {
		start time.Time
		count int
	}
	var (
		mu      sync.Mutex
		buckets = make(map[string]*bucket)
	)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := keyFor(p, c)
			now := time.Now()

			mu.Lock()
			b, ok := buckets[key]
			if !ok || now.Sub(b.start) >= p.Window {
				buckets[key] = &bucket{start: now, count: 1}
				mu.Unlock()
				return next(c)
			}
			if b.count < p.Limit {
				b.count++
				mu.Unlock()
				return next(c)
			}
			retryAfter := int(p.Window-now.Sub(b.start)) / int(time.Second)
			mu.Unlock()

			return reject(c, p, retryAfter)
		}
	}
}

// MiddlewareWithStore uses a shared Store (e.g., Redis) for distributed rate limiting.
func MiddlewareWithStore(p Policy, s Store) echo.MiddlewareFunc {
	normalize(&p)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := keyFor(p, c)
			allowed, retryAfter, err := s.Allow(c, key, p.Limit, p.Window)
			if err != nil {
				// Fail-open on store errors: a broken counter must not take
				// the public endpoint down with it.
				return next(c)
			}
			if allowed {
				return next(c)
			}
			return reject(c, p, retryAfter)
		}
	}
}

func normalize(p *Policy) {
	if p.Window <= 0 {
		p.Window = time.Minute
	}
	if p.Limit <= 0 {
		p.Limit = 60
	}
}

func keyFor(p Policy, c echo.Context) string {
	if p.Key != nil {
		return p.Key(c)
	}
	return "global"
}

func reject(c echo.Context, p Policy, retryAfter int) error {
	metrics.IncRateLimitExceeded(p.Name)
	c.Logger().Warnf("rate limit exceeded: endpoint=%s limit=%d window=%s retry_after=%ds", p.Name, p.Limit, p.Window.String(), retryAfter)
	if retryAfter > 0 {
		c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
	}
	return c.JSON(429, map[string]string{"error": "rate limit exceeded"})
}

// KeyIdentifierOrIP buckets by the submitted landing page identifier, falling
// back to the caller's IP. The identifier travels in the JSON body, so it is
// peeked non-destructively (read and restored) before binding runs. Prefix
// separates endpoints sharing a store.
func KeyIdentifierOrIP(prefix string) func(echo.Context) string {
	return func(c echo.Context) string {
		id := c.QueryParam("landingPageId")
		if id == "" && strings.Contains(strings.ToLower(c.Request().Header.Get(echo.HeaderContentType)), echo.MIMEApplicationJSON) {
			if c.Request().Body != nil {
				buf, _ := io.ReadAll(c.Request().Body)
				c.Request().Body = io.NopCloser(bytes.NewReader(buf))
				var tmp struct {
					LandingPageID string `json:"landingPageId"`
				}
				// Best-effort parse; malformed bodies key by IP.
				_ = json.Unmarshal(buf, &tmp)
				id = tmp.LandingPageID
			}
		}
		if id == "" {
			return prefix + ":ip:" + c.RealIP()
		}
		return prefix + ":page:" + id
	}
}
