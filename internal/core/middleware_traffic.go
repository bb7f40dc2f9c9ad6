package core

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"sitewizard/internal/types"
)

// RateLimitPolicy is the per-client request budget.
type RateLimitPolicy struct {
	Limit  int
	Window time.Duration
}

// DefaultRateLimitPolicy allows 300 requests per client IP per minute. A
// wizard session dispatches one action per user interaction, so this is
// far above a human's pace.
func DefaultRateLimitPolicy() RateLimitPolicy {
	return RateLimitPolicy{Limit: 300, Window: time.Minute}
}

// RateLimitMiddleware enforces s.RateLimit per client IP. Without a store,
// or for /health, requests pass through. Store failures fail open.
//
// Every limited response carries X-RateLimit-Limit, X-RateLimit-Remaining
// and X-RateLimit-Reset; a rejected one also carries Retry-After.
func (s *Server) RateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.RateLimitStore == nil || s.RateLimit.Limit <= 0 || r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		ip := extractClientIP(r)
		result, err := s.RateLimitStore.IncrementAndCheck(r.Context(), "ip:"+ip, s.RateLimit.Limit, s.RateLimit.Window)
		if err != nil {
			s.Logger.Error("rate limit store error",
				slog.String("client_ip", ip),
				slog.String("error", err.Error()),
			)
			next.ServeHTTP(w, r)
			return
		}

		h := w.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(s.RateLimit.Limit))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			retryAfter := int(time.Until(result.ResetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			h.Set("Retry-After", strconv.Itoa(retryAfter))
			s.Logger.Warn("rate limit exceeded",
				slog.String("client_ip", ip),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)
			Error(w, r, types.NewAppError(types.ErrCodeRateLimited,
				"rate limit exceeded, retry after the reset time", nil))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// extractClientIP returns the first X-Forwarded-For entry (set by the load
// balancer), falling back to RemoteAddr without its port.
func extractClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// --- Redis store ---

// RedisRateLimitStore keeps fixed-window counters in Redis so every API
// instance shares one budget per client.
type RedisRateLimitStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisRateLimitStore creates a store writing keys under "ratelimit:".
func NewRedisRateLimitStore(client redis.UniversalClient) *RedisRateLimitStore {
	return &RedisRateLimitStore{client: client, prefix: "ratelimit:"}
}

// IncrementAndCheck runs INCR and, for the first hit of a window, sets the
// expiry. The window resets when the key expires.
func (s *RedisRateLimitStore) IncrementAndCheck(ctx context.Context, key string, limit int, window time.Duration) (RateLimitResult, error) {
	k := s.prefix + key

	count, err := s.client.Incr(ctx, k).Result()
	if err != nil {
		return RateLimitResult{}, fmt.Errorf("rate limit increment %s: %w", key, err)
	}
	if count == 1 {
		if err := s.client.PExpire(ctx, k, window).Err(); err != nil {
			return RateLimitResult{}, fmt.Errorf("rate limit expire %s: %w", key, err)
		}
	}

	ttl, err := s.client.PTTL(ctx, k).Result()
	if err != nil {
		return RateLimitResult{}, fmt.Errorf("rate limit ttl %s: %w", key, err)
	}
	if ttl <= 0 {
		// Repair a key left without expiry between INCR and PEXPIRE.
		_ = s.client.PExpire(ctx, k, window).Err()
		ttl = window
	}
	return newRateLimitResult(int(count), limit, time.Now().Add(ttl)), nil
}

// --- Memory store ---

type memoryWindow struct {
	count   int
	resetAt time.Time
}

// MemoryRateLimitStore keeps fixed-window counters in process memory. It is
// used when no Redis is configured (APP_ENV=local).
type MemoryRateLimitStore struct {
	mu      sync.Mutex
	windows map[string]memoryWindow
	now     func() time.Time
}

// NewMemoryRateLimitStore creates an empty in-memory store.
func NewMemoryRateLimitStore() *MemoryRateLimitStore {
	return &MemoryRateLimitStore{windows: make(map[string]memoryWindow), now: time.Now}
}

// IncrementAndCheck counts one request for key in its current window.
// Expired windows are dropped on access.
func (s *MemoryRateLimitStore) IncrementAndCheck(_ context.Context, key string, limit int, window time.Duration) (RateLimitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	w, ok := s.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = memoryWindow{resetAt: now.Add(window)}
	}
	w.count++
	s.windows[key] = w

	return newRateLimitResult(w.count, limit, w.resetAt), nil
}

func newRateLimitResult(count, limit int, resetAt time.Time) RateLimitResult {
	return RateLimitResult{
		Allowed:   count <= limit,
		Remaining: max(limit-count, 0),
		ResetAt:   resetAt,
	}
}
