package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestThrottle(t *testing.T, maxFailures int, lockout time.Duration) (*LoginThrottle, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLoginThrottle(client, maxFailures, lockout), mr
}

func recordFailures(t *testing.T, th *LoginThrottle, email string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := th.RecordFailure(context.Background(), email); err != nil {
			t.Fatalf("record failure %d: %v", i+1, err)
		}
	}
}

func assertBlocked(t *testing.T, th *LoginThrottle, email string, want bool) {
	t.Helper()
	got, err := th.Blocked(context.Background(), email)
	if err != nil {
		t.Fatalf("blocked: %v", err)
	}
	if got != want {
		t.Fatalf("expected blocked=%v for %s, got %v", want, email, got)
	}
}

func TestNewLoginThrottle_Defaults(t *testing.T) {
	th := NewLoginThrottle(nil, 0, 0)
	if th.maxFailures != 5 {
		t.Fatalf("expected default max failures 5, got %d", th.maxFailures)
	}
	if th.lockout != 15*time.Minute {
		t.Fatalf("expected default lockout 15m, got %s", th.lockout)
	}

	th = NewLoginThrottle(nil, 3, time.Minute)
	if th.maxFailures != 3 || th.lockout != time.Minute {
		t.Fatalf("expected configured limits, got %d/%s", th.maxFailures, th.lockout)
	}
}

func TestThrottleKey(t *testing.T) {
	if got := throttleKey("a@x.com"); got != "login:failures:a@x.com" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestLoginThrottle_BlocksAtThreshold(t *testing.T) {
	th, _ := newTestThrottle(t, 3, time.Minute)

	assertBlocked(t, th, "a@x.com", false)
	recordFailures(t, th, "a@x.com", 2)
	assertBlocked(t, th, "a@x.com", false)
	recordFailures(t, th, "a@x.com", 1)
	assertBlocked(t, th, "a@x.com", true)

	assertBlocked(t, th, "b@x.com", false)
}

func TestLoginThrottle_EveryCounterHasTTL(t *testing.T) {
	th, mr := newTestThrottle(t, 3, time.Minute)

	recordFailures(t, th, "a@x.com", 1)
	if ttl := mr.TTL(throttleKey("a@x.com")); ttl != time.Minute {
		t.Fatalf("expected TTL of 1m after first failure, got %s", ttl)
	}

	mr.FastForward(20 * time.Second)
	recordFailures(t, th, "a@x.com", 1)
	if ttl := mr.TTL(throttleKey("a@x.com")); ttl != 40*time.Second {
		t.Fatalf("later failures must not extend the window, got TTL %s", ttl)
	}
}

func TestLoginThrottle_WindowExpiryLiftsBlock(t *testing.T) {
	th, mr := newTestThrottle(t, 2, time.Minute)

	recordFailures(t, th, "a@x.com", 2)
	assertBlocked(t, th, "a@x.com", true)

	mr.FastForward(time.Minute + time.Second)
	assertBlocked(t, th, "a@x.com", false)
}

func TestLoginThrottle_ResetClearsCounter(t *testing.T) {
	th, mr := newTestThrottle(t, 2, time.Minute)

	recordFailures(t, th, "a@x.com", 2)
	assertBlocked(t, th, "a@x.com", true)

	if err := th.Reset(context.Background(), "a@x.com"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	assertBlocked(t, th, "a@x.com", false)
	if mr.Exists(throttleKey("a@x.com")) {
		t.Fatalf("expected counter key deleted")
	}
}

func TestLoginThrottle_RedisDown(t *testing.T) {
	th, mr := newTestThrottle(t, 2, time.Minute)
	mr.Close()

	if _, err := th.Blocked(context.Background(), "a@x.com"); err == nil {
		t.Fatalf("expected error from Blocked when redis is unreachable")
	}
	if err := th.RecordFailure(context.Background(), "a@x.com"); err == nil {
		t.Fatalf("expected error from RecordFailure when redis is unreachable")
	}
}
