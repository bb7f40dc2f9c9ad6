// Package external adapts third-party vendors (Stripe, S3) to the wizard's
// boundary interfaces. Outbound HTTP goes through BaseClient, which adds
// circuit breaking, bounded retries and AppError mapping.
package external

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/sony/gobreaker/v2"

	"sitewizard/internal/types"
)

const userAgent = "SiteWizard/1.0"

// errRetryable marks a response the breaker counts as a failure.
var errRetryable = errors.New("retryable upstream status")

// RetryPolicy bounds the retry loop of a BaseClient.
type RetryPolicy struct {
	MaxRetries int
	MinWait    time.Duration
	MaxWait    time.Duration
}

// DefaultRetryPolicy is used by the production clients.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 2, MinWait: 250 * time.Millisecond, MaxWait: 5 * time.Second}
}

// wait returns the delay before retry number attempt (0-based). A Retry-After
// header wins when present; otherwise full jitter over an exponential ceiling.
func (p RetryPolicy) wait(attempt int, resp *http.Response) time.Duration {
	if d, ok := retryAfter(resp); ok {
		return min(max(d, p.MinWait), p.MaxWait)
	}
	ceiling := math.Min(float64(p.MinWait)*math.Pow(2, float64(attempt)), float64(p.MaxWait))
	floor := float64(p.MinWait)
	if ceiling <= floor {
		return p.MinWait
	}
	return time.Duration(floor + rand.Float64()*(ceiling-floor))
}

func retryAfter(resp *http.Response) (time.Duration, bool) {
	if resp == nil {
		return 0, false
	}
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second, true
	}
	if t, err := http.ParseTime(v); err == nil {
		return time.Until(t), true
	}
	return 0, false
}

// BaseClient executes requests through a circuit breaker, retrying 429 and
// 5xx responses.
type BaseClient struct {
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*http.Response]
	policy  RetryPolicy
	sleep   func(time.Duration)
}

// BaseClientOption customises a BaseClient.
type BaseClientOption func(*BaseClient)

// WithSleepFunc replaces time.Sleep between attempts. Tests use it to skip
// the backoff.
func WithSleepFunc(fn func(time.Duration)) BaseClientOption {
	return func(c *BaseClient) { c.sleep = fn }
}

// WithBreaker shares a caller-owned breaker.
func WithBreaker(cb *gobreaker.CircuitBreaker[*http.Response]) BaseClientOption {
	return func(c *BaseClient) { c.breaker = cb }
}

// NewBaseClient builds a client whose breaker trips after five consecutive
// failed attempts and half-opens after 30s.
func NewBaseClient(httpClient *http.Client, name string, policy RetryPolicy, opts ...BaseClientOption) *BaseClient {
	c := &BaseClient{
		http:   httpClient,
		policy: policy,
		sleep:  time.Sleep,
		breaker: gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= 5 },
		}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do sends req, replaying its body across attempts. Any response other than
// 429/5xx is returned to the caller, who must close the body. Exhausted
// retries and an open breaker come back as upstream AppErrors.
func (c *BaseClient) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", userAgent)
	if id := types.GetRequestID(req.Context()); id != "" {
		req.Header.Set("X-Request-Id", id)
	}

	var body []byte
	if req.Body != nil {
		b, err := io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "failed to buffer request body", err)
		}
		body = b
	}

	var (
		last    *http.Response
		lastErr error
	)
	for attempt := 0; attempt <= c.policy.MaxRetries; attempt++ {
		if attempt > 0 {
			c.sleep(c.policy.wait(attempt-1, last))
			if last != nil {
				last.Body.Close()
				last = nil
			}
		}
		if body != nil {
			req.Body = io.NopCloser(bytes.NewReader(body))
			req.ContentLength = int64(len(body))
		}

		resp, err := c.breaker.Execute(func() (*http.Response, error) {
			r, err := c.http.Do(req)
			if err != nil {
				return nil, err
			}
			if r.StatusCode == http.StatusTooManyRequests || r.StatusCode >= 500 {
				return r, fmt.Errorf("%w: %d", errRetryable, r.StatusCode)
			}
			return r, nil
		})
		if err == nil {
			return resp, nil
		}
		last, lastErr = resp, err
		if breakerOpen(err) || req.Context().Err() != nil {
			break
		}
	}
	if last != nil {
		last.Body.Close()
	}
	return nil, mapTransportError(last, lastErr)
}

func breakerOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func mapTransportError(resp *http.Response, err error) *types.AppError {
	switch {
	case breakerOpen(err):
		return types.NewAppError(types.ErrCodeUpstreamUnavailable, "upstream circuit open", err)
	case resp != nil && resp.StatusCode == http.StatusTooManyRequests:
		return types.NewAppError(types.ErrCodeUpstreamRateLimited, "upstream rate limit exceeded", err)
	case resp != nil:
		return types.NewAppError(types.ErrCodeUpstreamUnavailable,
			fmt.Sprintf("upstream returned %d after retries", resp.StatusCode), err)
	default:
		return types.NewAppError(types.ErrCodeUpstreamUnavailable, "upstream request failed", err)
	}
}
