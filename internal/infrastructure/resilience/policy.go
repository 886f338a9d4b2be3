package resilience

import "time"

// Defaults favour the search path: an embed or vector call sits in front of
// every semantic query, so retries stay short and a dead provider opens the
// breaker quickly.
const (
	defaultRetryMaxAttempts    = 3
	defaultRetryInitialBackoff = 50 * time.Millisecond
	defaultRetryMaxBackoff     = 500 * time.Millisecond
	defaultRetryMultiplier     = 2.0

	defaultBreakerMinRequests      = 5
	defaultBreakerFailureRatio     = 0.5
	defaultBreakerOpenTimeout      = 15 * time.Second
	defaultBreakerHalfOpenMaxCalls = 1
)

type Config struct {
	RetryMaxAttempts    int
	RetryInitialBackoff time.Duration
	RetryMaxBackoff     time.Duration
	RetryMultiplier     float64

	BreakerEnabled          bool
	BreakerMinRequests      uint32
	BreakerFailureRatio     float64
	BreakerOpenTimeout      time.Duration
	BreakerHalfOpenMaxCalls uint32
}

func DefaultConfig() Config {
	return Config{
		RetryMaxAttempts:    defaultRetryMaxAttempts,
		RetryInitialBackoff: defaultRetryInitialBackoff,
		RetryMaxBackoff:     defaultRetryMaxBackoff,
		RetryMultiplier:     defaultRetryMultiplier,

		BreakerEnabled:          true,
		BreakerMinRequests:      defaultBreakerMinRequests,
		BreakerFailureRatio:     defaultBreakerFailureRatio,
		BreakerOpenTimeout:      defaultBreakerOpenTimeout,
		BreakerHalfOpenMaxCalls: defaultBreakerHalfOpenMaxCalls,
	}
}

// normalize replaces unset or out-of-range fields with the defaults.
func (c Config) normalize() Config {
	out := c
	out.RetryMaxAttempts = positiveOr(out.RetryMaxAttempts, defaultRetryMaxAttempts)
	out.RetryInitialBackoff = positiveOr(out.RetryInitialBackoff, defaultRetryInitialBackoff)
	out.RetryMaxBackoff = max(positiveOr(out.RetryMaxBackoff, defaultRetryMaxBackoff), out.RetryInitialBackoff)
	if out.RetryMultiplier < 1 {
		out.RetryMultiplier = defaultRetryMultiplier
	}

	out.BreakerMinRequests = positiveOr(out.BreakerMinRequests, defaultBreakerMinRequests)
	if out.BreakerFailureRatio <= 0 || out.BreakerFailureRatio > 1 {
		out.BreakerFailureRatio = defaultBreakerFailureRatio
	}
	out.BreakerOpenTimeout = positiveOr(out.BreakerOpenTimeout, defaultBreakerOpenTimeout)
	out.BreakerHalfOpenMaxCalls = positiveOr(out.BreakerHalfOpenMaxCalls, defaultBreakerHalfOpenMaxCalls)
	return out
}

func positiveOr[T int | uint32 | time.Duration](v, fallback T) T {
	if v <= 0 {
		return fallback
	}
	return v
}

// Transient marks a failure worth retrying that also counts against the breaker.
func Transient() ErrorClassification {
	return ErrorClassification{Retryable: true, RecordFailure: true}
}

// Permanent marks a provider failure that retrying cannot fix.
func Permanent() ErrorClassification {
	return ErrorClassification{Retryable: false, RecordFailure: true}
}

// Ignored marks caller-side outcomes (cancellation, bad input) that say
// nothing about provider health.
func Ignored() ErrorClassification {
	return ErrorClassification{}
}
