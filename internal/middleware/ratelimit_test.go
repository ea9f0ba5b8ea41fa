package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"tubedash-backend/internal/models"
)

func newTestLimiter(limit int, window time.Duration) (*RateLimiter, *time.Time) {
	rl := NewRateLimiter(limit, window)
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }
	return rl, &clock
}

func TestRateLimiterFixedWindow(t *testing.T) {
	rl, clock := newTestLimiter(3, time.Minute)
	start := *clock

	for i := 0; i < 3; i++ {
		res := rl.Check("user:a")
		if !res.Allowed {
			t.Fatalf("Request %d should be allowed", i+1)
		}
		if res.Remaining != 3-(i+1) {
			t.Errorf("Request %d: remaining = %d, want %d", i+1, res.Remaining, 3-(i+1))
		}
	}

	res := rl.Check("user:a")
	if res.Allowed {
		t.Fatal("Request over the limit should be denied")
	}
	if res.Remaining != 0 {
		t.Errorf("Denied request: remaining = %d, want 0", res.Remaining)
	}
	if want := start.Add(time.Minute); !res.ResetTime.Equal(want) {
		t.Errorf("ResetTime = %v, want %v", res.ResetTime, want)
	}
}

func TestRateLimiterWindowRollover(t *testing.T) {
	rl, clock := newTestLimiter(2, time.Minute)
	start := *clock

	rl.Check("user:a")
	rl.Check("user:a")

	// One second before the boundary: still the same window.
	*clock = start.Add(59 * time.Second)
	if res := rl.Check("user:a"); res.Allowed {
		t.Fatal("Request before window boundary should be denied")
	}

	// At the boundary a fresh window opens, anchored to this request.
	*clock = start.Add(time.Minute)
	res := rl.Check("user:a")
	if !res.Allowed {
		t.Fatal("Request at window boundary should be allowed")
	}
	if res.Remaining != 1 {
		t.Errorf("Fresh window remaining = %d, want 1", res.Remaining)
	}
	if want := clock.Add(time.Minute); !res.ResetTime.Equal(want) {
		t.Errorf("Fresh window ResetTime = %v, want %v", res.ResetTime, want)
	}
}

func TestRateLimiterDenialDoesNotExtendWindow(t *testing.T) {
	rl, clock := newTestLimiter(1, time.Minute)
	start := *clock

	rl.Check("user:a")
	for i := 0; i < 5; i++ {
		*clock = clock.Add(5 * time.Second)
		rl.Check("user:a")
	}

	// Denied requests must not have reset the counter or moved the start.
	*clock = start.Add(59 * time.Second)
	if res := rl.Check("user:a"); res.Allowed {
		t.Fatal("Window start must stay anchored to the first admitted request")
	}
	*clock = start.Add(61 * time.Second)
	if res := rl.Check("user:a"); !res.Allowed {
		t.Fatal("Request after the window should be allowed")
	}
}

func TestRateLimiterSeparateClients(t *testing.T) {
	rl, _ := newTestLimiter(1, time.Minute)

	if res := rl.Check("user:a"); !res.Allowed {
		t.Fatal("First client's first request should be allowed")
	}
	if res := rl.Check("user:b"); !res.Allowed {
		t.Fatal("Counters must be independent per client")
	}
	if res := rl.Check("user:a"); res.Allowed {
		t.Fatal("First client should now be over the limit")
	}
}

func TestClientIdentifier(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "198.51.100.9:52011"

	userID := uuid.New()
	if got, want := ClientIdentifier(req, userID), "user:"+userID.String(); got != want {
		t.Errorf("ClientIdentifier = %q, want %q", got, want)
	}

	// Anonymous callers key on the network address, so two different
	// users behind the same address never share a counter with each
	// other but anonymous traffic from that address does.
	if got, want := ClientIdentifier(req, uuid.Nil), "ip:198.51.100.9"; got != want {
		t.Errorf("ClientIdentifier = %q, want %q", got, want)
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl, _ := newTestLimiter(1, time.Minute)

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos/abc/comments", nil)
	req.RemoteAddr = "198.51.100.9:52011"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("First request: status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("Second request: status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("X-RateLimit-Limit") != "1" {
		t.Errorf("X-RateLimit-Limit = %q, want 1", rec.Header().Get("X-RateLimit-Limit"))
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("X-RateLimit-Remaining = %q, want 0", rec.Header().Get("X-RateLimit-Remaining"))
	}
	if rec.Header().Get("X-RateLimit-Reset") == "" {
		t.Error("X-RateLimit-Reset header missing on 429")
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header missing on 429")
	}

	var resp models.Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode 429 body: %v", err)
	}
	if resp.Success {
		t.Error("429 body should have success=false")
	}
	if resp.Error == "" {
		t.Error("429 body should carry an error message")
	}
}
