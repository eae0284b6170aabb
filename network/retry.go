package network

import (
	"context"
	"errors"
	"math"
	"net"
	"net/http"
	"time"

	"github.com/vidlink-cli/vidlink/log"
)

// Backoff controls retry behavior for idempotent requests.
type Backoff struct {
	MaxRetries  int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultBackoff is used for discovery GETs.
var DefaultBackoff = Backoff{
	MaxRetries:  2,
	InitialWait: 300 * time.Millisecond,
	MaxWait:     5 * time.Second,
	Multiplier:  2.0,
}

// wait returns the delay before retry number attempt (zero based).
func (b Backoff) wait(attempt int) time.Duration {
	d := time.Duration(float64(b.InitialWait) * math.Pow(b.Multiplier, float64(attempt)))
	if d > b.MaxWait {
		d = b.MaxWait
	}
	return d
}

// Retry calls fn until it succeeds, fails with a non-transient error,
// the retries are used up, or ctx is done.
func Retry[T any](ctx context.Context, b Backoff, fn func() (T, error)) (T, error) {
	var (
		zero    T
		lastErr error
	)

	for attempt := 0; attempt <= b.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !transient(err) {
			return zero, err
		}

		if attempt < b.MaxRetries {
			d := b.wait(attempt)
			log.Debugf("retrying in %s (attempt %d): %s", d, attempt+1, err)
			select {
			case <-time.After(d):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}
	}

	return zero, lastErr
}

// Get performs a GET through client with retries on transient failures.
// Only use it for idempotent requests.
func Get(ctx context.Context, client Doer, b Backoff, req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet && req.Method != "" {
		return nil, errors.New("network: refusing to retry non-GET request")
	}

	return Retry(ctx, b, func() (*http.Response, error) {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		if retryableStatus(resp.StatusCode) {
			_ = resp.Body.Close()
			return nil, &StatusError{Code: resp.StatusCode}
		}
		return resp, nil
	})
}

// StatusError reports an unexpected HTTP status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return "unexpected status: " + http.StatusText(e.Code)
}

func transient(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return retryableStatus(statusErr.Code)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	return false
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
