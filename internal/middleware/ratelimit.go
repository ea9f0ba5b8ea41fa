package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"tubedash-backend/internal/models"
	"tubedash-backend/internal/services"
)

// Result is the outcome of one rate-limit check.
type Result struct {
	Allowed   bool
	Remaining int
	ResetTime time.Time
}

type clientWindow struct {
	count int
	start time.Time
}

// RateLimiter is a fixed-window counter keyed by client identity. It
// guards write-type actions locally, independent of any quota the
// upstream platform enforces. Counters live for the life of the
// process; a restart clears them.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientWindow
	limit   int
	window  time.Duration
	now     func() time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*clientWindow),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}

	// Cleanup goroutine
	go func() {
		for {
			time.Sleep(window)
			rl.mu.Lock()
			cutoff := rl.now()
			for id, cw := range rl.clients {
				if cutoff.Sub(cw.start) > rl.window {
					delete(rl.clients, id)
				}
			}
			rl.mu.Unlock()
		}
	}()

	return rl
}

// Check performs an atomic check-and-increment for the client. A new
// window starts exactly one window length after the previous window's
// start, with the admitted call counted as 1.
func (rl *RateLimiter) Check(clientID string) Result {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cw, ok := rl.clients[clientID]
	if !ok || now.Sub(cw.start) >= rl.window {
		cw = &clientWindow{count: 0, start: now}
		rl.clients[clientID] = cw
	}

	reset := cw.start.Add(rl.window)
	if cw.count >= rl.limit {
		return Result{Allowed: false, Remaining: 0, ResetTime: reset}
	}
	cw.count++
	return Result{Allowed: true, Remaining: rl.limit - cw.count, ResetTime: reset}
}

// ClientIdentifier resolves the counter key: the authenticated user id
// when present, otherwise the network address, so the two populations
// never share a counter.
func ClientIdentifier(r *http.Request, userID uuid.UUID) string {
	if userID != uuid.Nil {
		return "user:" + userID.String()
	}
	return "ip:" + services.ClientIP(r)
}

// Middleware guards a write route. Exceeding the limit is a local
// policy decision, surfaced with the window reset time so clients can
// retry after it.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := ClientIdentifier(r, GetUserID(r.Context()))

		res := rl.Check(clientID)
		if !res.Allowed {
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetTime.Unix(), 10))
			w.Header().Set("Retry-After", strconv.Itoa(int(time.Until(res.ResetTime)/time.Second)+1))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(models.Response{
				Success: false,
				Error:   fmt.Sprintf("Too many actions. Try again after %s.", res.ResetTime.UTC().Format(time.RFC3339)),
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
