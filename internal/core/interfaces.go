package core

import (
	"context"
	"time"
)

// RateLimitStore counts requests per key in fixed windows. Production uses
// Redis so that every API instance shares the counters; local runs and tests
// use MemoryRateLimitStore.
type RateLimitStore interface {
	// IncrementAndCheck atomically counts one request for key and reports
	// whether it is within limit for the current window.
	IncrementAndCheck(ctx context.Context, key string, limit int, window time.Duration) (RateLimitResult, error)
}

// RateLimitResult contains the outcome of a rate limit check.
type RateLimitResult struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// HealthProbe checks one dependency the service cannot work without.
type HealthProbe interface {
	Name() string
	Check(ctx context.Context) error
}
