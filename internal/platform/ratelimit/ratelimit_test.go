package ratelimit

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func doRequest(e *echo.Echo, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/limited", nil)
	req.Header.Set("X-Real-Ip", ip)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func newApp(mw echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.POST("/limited", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, mw)
	return e
}

func TestMiddleware_EnforcesLimit(t *testing.T) {
	e := newApp(Middleware(Policy{
		Name:   "test",
		Window: time.Minute,
		Limit:  2,
		Key:    func(c echo.Context) string { return c.RealIP() },
	}))

	if rec := doRequest(e, "1.2.3.4"); rec.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", rec.Code)
	}
	if rec := doRequest(e, "1.2.3.4"); rec.Code != http.StatusOK {
		t.Fatalf("second request: expected 200, got %d", rec.Code)
	}
	rec := doRequest(e, "1.2.3.4")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request: expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header on 429")
	}

	// A different key has its own bucket.
	if rec := doRequest(e, "5.6.7.8"); rec.Code != http.StatusOK {
		t.Fatalf("different ip: expected 200, got %d", rec.Code)
	}
}

func TestMiddleware_WindowResets(t *testing.T) {
	e := newApp(Middleware(Policy{
		Name:   "test",
		Window: 30 * time.Millisecond,
		Limit:  1,
		Key:    func(c echo.Context) string { return c.RealIP() },
	}))

	if rec := doRequest(e, "1.2.3.4"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := doRequest(e, "1.2.3.4"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}

	time.Sleep(40 * time.Millisecond)
	if rec := doRequest(e, "1.2.3.4"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 after window reset, got %d", rec.Code)
	}
}

type erroringStore struct{}

func (erroringStore) Allow(ctx echo.Context, key string, limit int, window time.Duration) (bool, int, error) {
	return false, 0, errors.New("store down")
}

type denyingStore struct{ retryAfter int }

func (s denyingStore) Allow(ctx echo.Context, key string, limit int, window time.Duration) (bool, int, error) {
	return false, s.retryAfter, nil
}

func TestMiddlewareWithStore_FailOpenOnStoreError(t *testing.T) {
	e := newApp(MiddlewareWithStore(Policy{Name: "test", Window: time.Minute, Limit: 1}, erroringStore{}))

	for i := 0; i < 5; i++ {
		if rec := doRequest(e, "1.2.3.4"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected fail-open 200, got %d", i, rec.Code)
		}
	}
}

func TestMiddlewareWithStore_DenySetsRetryAfter(t *testing.T) {
	e := newApp(MiddlewareWithStore(Policy{Name: "test", Window: time.Minute, Limit: 1}, denyingStore{retryAfter: 17}))

	rec := doRequest(e, "1.2.3.4")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "17" {
		t.Fatalf("expected Retry-After 17, got %q", got)
	}
}

func TestKeyIdentifierOrIP(t *testing.T) {
	e := echo.New()
	keyFn := KeyIdentifierOrIP("inquiry")

	newCtx := func(body string, contentType string) echo.Context {
		var r *http.Request
		if body == "" {
			r = httptest.NewRequest(http.MethodPost, "/api/send-inquiry", nil)
		} else {
			r = httptest.NewRequest(http.MethodPost, "/api/send-inquiry", strings.NewReader(body))
		}
		if contentType != "" {
			r.Header.Set(echo.HeaderContentType, contentType)
		}
		r.Header.Set("X-Real-Ip", "1.2.3.4")
		return e.NewContext(r, httptest.NewRecorder())
	}

	// No body: key by IP.
	if key := keyFn(newCtx("", "")); key != "inquiry:ip:1.2.3.4" {
		t.Fatalf("expected ip key, got %q", key)
	}

	// JSON body carrying the identifier: key per landing page.
	c := newCtx(`{"landingPageId":"acme-landing","formData":{"email":"a@b.c"}}`, echo.MIMEApplicationJSON)
	if key := keyFn(c); key != "inquiry:page:acme-landing" {
		t.Fatalf("expected per-identifier key, got %q", key)
	}

	// The peek must not consume the body: binding downstream still sees it.
	rest, err := io.ReadAll(c.Request().Body)
	if err != nil {
		t.Fatalf("re-reading body: %v", err)
	}
	if !strings.Contains(string(rest), "acme-landing") {
		t.Fatalf("body not restored after key derivation: %q", rest)
	}

	// Malformed JSON falls back to IP.
	if key := keyFn(newCtx(`{"landingPageId":`, echo.MIMEApplicationJSON)); key != "inquiry:ip:1.2.3.4" {
		t.Fatalf("expected ip fallback for malformed body, got %q", key)
	}

	// Non-JSON content types are not peeked.
	if key := keyFn(newCtx("landingPageId=acme-landing", echo.MIMEApplicationForm)); key != "inquiry:ip:1.2.3.4" {
		t.Fatalf("expected ip key for form body, got %q", key)
	}
}
