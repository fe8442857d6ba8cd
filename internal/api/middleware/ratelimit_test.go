package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/haripriya/clinic-backend/internal/core/domain"
)

func TestIPRateLimiter_PerIPBuckets(t *testing.T) {
	l := NewIPRateLimiter(1, 2)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	if !l.Allow("10.0.0.1") || !l.Allow("10.0.0.1") {
		t.Fatalf("expected burst of 2 to pass")
	}
	if l.Allow("10.0.0.1") {
		t.Fatalf("expected third request to be limited")
	}
	if !l.Allow("10.0.0.2") {
		t.Fatalf("other IPs must have their own bucket")
	}

	now = now.Add(time.Second)
	if !l.Allow("10.0.0.1") {
		t.Fatalf("expected bucket to refill after a second")
	}
}

func TestIPRateLimiter_PrunesIdleBuckets(t *testing.T) {
	l := NewIPRateLimiter(1, 1)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.Allow("10.0.0.1")
	now = now.Add(bucketTTL + 2*pruneInterval)
	l.Allow("10.0.0.2")

	if _, ok := l.buckets["10.0.0.1"]; ok {
		t.Fatalf("expected idle bucket to be pruned")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	e := echo.New()
	mw := RateLimit(NewIPRateLimiter(0.001, 1))
	handler := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	call := func() error {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		return handler(e.NewContext(req, httptest.NewRecorder()))
	}

	if err := call(); err != nil {
		t.Fatalf("first request: %v", err)
	}
	if err := call(); !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected too many attempts, got %v", err)
	}
}
