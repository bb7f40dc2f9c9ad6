// Package availability answers whether a subdomain can be claimed. Checks
// are keyed by caller (one wizard session): a newer check for the same key
// cancels the older one, so a slow answer for an outdated candidate can
// never overwrite the answer for what the user typed last.
package availability

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"sitewizard/internal/types"
)

// ErrSuperseded is returned by Check when a newer check for the same key
// started before this one completed. Callers must discard the result.
var ErrSuperseded = errors.New("availability check superseded")

// lookupTimeout bounds a registry lookup that outlives its first caller.
const lookupTimeout = 5 * time.Second

// Registry reports whether a subdomain is already claimed.
type Registry interface {
	IsTaken(ctx context.Context, subdomain string) (bool, error)
}

// Metrics receives availability counters.
type Metrics interface {
	Count(ctx context.Context, metric string, dims map[string]string)
}

type inflight struct {
	token  uint64
	cancel context.CancelFunc
}

// Checker runs debounced, supersedable availability checks. Concurrent
// lookups of the same candidate from different keys share one registry
// query.
type Checker struct {
	registry Registry
	debounce time.Duration
	metrics  Metrics
	logger   *slog.Logger

	group singleflight.Group

	mu      sync.Mutex
	seq     uint64
	pending map[string]inflight
}

// NewChecker creates a Checker that waits debounce before querying the
// registry.
func NewChecker(registry Registry, debounce time.Duration, metrics Metrics, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{
		registry: registry,
		debounce: debounce,
		metrics:  metrics,
		logger:   logger,
		pending:  make(map[string]inflight),
	}
}

// Check validates candidate and looks it up. Format failures are answered
// immediately with StatusInvalid and a reason. A check overtaken by a newer
// one for the same key returns ErrSuperseded.
func (c *Checker) Check(ctx context.Context, key, candidate string) (*types.AvailabilityResult, error) {
	name := types.NormalizeSubdomain(candidate)

	ctx, token, cancel := c.begin(ctx, key)
	defer cancel()
	defer c.end(key, token)

	if reason := types.ValidateSubdomain(name); reason != "" {
		return c.result(ctx, name, types.AvailabilityInvalid, reason), nil
	}

	if c.debounce > 0 {
		timer := time.NewTimer(c.debounce)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, c.abandoned(ctx, key, token)
		}
	}

	ch := c.group.DoChan(name, func() (any, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lookupTimeout)
		defer cancel()
		return c.registry.IsTaken(lookupCtx, name)
	})

	select {
	case <-ctx.Done():
		return nil, c.abandoned(ctx, key, token)
	case res := <-ch:
		if !c.isLatest(key, token) {
			return nil, ErrSuperseded
		}
		if res.Err != nil {
			c.logger.ErrorContext(ctx, "subdomain lookup failed", "subdomain", name, "error", res.Err)
			return nil, res.Err
		}
		if res.Val.(bool) {
			return c.result(ctx, name, types.AvailabilityTaken, "is already taken"), nil
		}
		return c.result(ctx, name, types.AvailabilityAvailable, ""), nil
	}
}

func (c *Checker) result(ctx context.Context, name string, status types.AvailabilityStatus, reason string) *types.AvailabilityResult {
	if c.metrics != nil {
		c.metrics.Count(ctx, types.MetricAvailabilityCheck, map[string]string{types.DimStatus: string(status)})
	}
	return &types.AvailabilityResult{Subdomain: name, Status: status, Reason: reason}
}

// begin registers a new check for key and cancels the one it replaces.
func (c *Checker) begin(parent context.Context, key string) (context.Context, uint64, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	if prev, ok := c.pending[key]; ok {
		prev.cancel()
	}
	c.pending[key] = inflight{token: c.seq, cancel: cancel}
	return ctx, c.seq, cancel
}

func (c *Checker) end(key string, token uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.pending[key]; ok && p.token == token {
		delete(c.pending, key)
	}
}

func (c *Checker) isLatest(key string, token uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pending[key]
	return ok && p.token == token
}

// abandoned explains why a check stopped early: replaced by a newer check,
// or cancelled by the caller.
func (c *Checker) abandoned(ctx context.Context, key string, token uint64) error {
	if !c.isLatest(key, token) {
		return ErrSuperseded
	}
	return ctx.Err()
}
