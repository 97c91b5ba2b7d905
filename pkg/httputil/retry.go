package httputil

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/matzehuels/composer-lsp/pkg/errors"
)

// RetryableError marks a failure as transient. Only errors wrapped in it
// are retried.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Policy controls retries. The zero Policy runs the operation once.
type Policy struct {
	Attempts int
	Delay    time.Duration // before the second attempt, doubled afterwards
	MaxDelay time.Duration // caps any single wait, 0 for no cap
}

// DefaultPolicy is what registry clients use unless told otherwise.
var DefaultPolicy = Policy{Attempts: 3, Delay: time.Second, MaxDelay: 10 * time.Second}

// Do runs fn until it succeeds, fails with an error that is not a
// [RetryableError], or runs out of attempts; the last error is returned.
// When a failure carries a [pkgerrors.RateLimitedError] whose Retry-After is
// longer than the current delay, that is waited for instead.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	delay := p.Delay
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil || !isRetryable(err) || attempt >= p.Attempts {
			return err
		}

		wait := max(delay, retryAfter(err))
		if p.MaxDelay > 0 {
			wait = min(wait, p.MaxDelay)
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
}

// Retry runs fn under Policy{Attempts: attempts, Delay: delay}.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	return Policy{Attempts: attempts, Delay: delay}.Do(ctx, fn)
}

func isRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

func retryAfter(err error) time.Duration {
	var rl *pkgerrors.RateLimitedError
	if errors.As(err, &rl) {
		return time.Duration(rl.RetryAfter) * time.Second
	}
	return 0
}
