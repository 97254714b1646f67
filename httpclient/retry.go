package httpclient

import (
	"math"
	"math/rand/v2"
	"time"
)

// DelayFunc computes the wait before a retry. attempt is 1-based: the delay
// before the first retry is Delay(1, err). Non-positive results skip the wait.
type DelayFunc func(attempt int, err *ClientError) time.Duration

// RetryPredicate reports whether a failed attempt is worth retrying.
type RetryPredicate func(err *ClientError) bool

// RetryPolicy is the caller-supplied rule set governing whether and how a
// failed attempt is retried. The zero value never retries: the client makes
// exactly one attempt. The pipeline itself hard-codes no retryable statuses;
// that policy is entirely ShouldRetry's.
type RetryPolicy struct {
	// MaxRetries bounds retries; total attempts never exceed MaxRetries+1
	MaxRetries int
	// Delay computes the inter-attempt wait; nil means no wait
	Delay DelayFunc
	// ShouldRetry gates each retry; nil means never retry
	ShouldRetry RetryPredicate
}

// RetryTransient is a predicate retrying transport failures (excluding
// cancellation), 429 and 5xx responses.
func RetryTransient(err *ClientError) bool {
	if err == nil {
		return false
	}
	switch err.Type() {
	case NetworkError, TimeoutError:
		return true
	case HTTPError:
		return err.Status == 429 || err.Status >= 500
	default:
		return false
	}
}

// ConstantBackoff waits the same duration before every retry.
func ConstantBackoff(d time.Duration) DelayFunc {
	return func(int, *ClientError) time.Duration {
		return d
	}
}

// LinearBackoff waits base on the first retry, 2*base on the second and so
// on, capped at maxDelay.
func LinearBackoff(base, maxDelay time.Duration) DelayFunc {
	return func(attempt int, _ *ClientError) time.Duration {
		return capDelay(time.Duration(attempt)*base, maxDelay)
	}
}

// ExponentialBackoff grows the wait by factor per retry, starting at base and
// capped at maxDelay. With jitter enabled each wait is drawn uniformly from
// (0, computed] to decorrelate concurrent retriers.
func ExponentialBackoff(base, maxDelay time.Duration, factor float64, jitter bool) DelayFunc {
	if factor <= 1 {
		factor = 2.0
	}
	return func(attempt int, _ *ClientError) time.Duration {
		d := capDelay(time.Duration(float64(base)*math.Pow(factor, float64(attempt-1))), maxDelay)
		if jitter && d > 0 {
			d = time.Duration(rand.Float64() * float64(d))
		}
		return d
	}
}

func capDelay(d, maxDelay time.Duration) time.Duration {
	if maxDelay > 0 && d > maxDelay {
		return maxDelay
	}
	return d
}
