// Package httputil provides HTTP utilities for the registry client.
//
// # Retry
//
// [Policy.Do] wraps registry requests with automatic retry for transient failures:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// Only errors wrapped in [RetryableError] are retried; anything else (a 404
// for an unknown package, a decode error) is returned on the first attempt.
// The delay doubles after every failed attempt, and a 429 waits for its
// Retry-After when that is longer:
//
//	err := httputil.DefaultPolicy.Do(ctx, func() error {
//	    return client.Get(ctx, url, &resp)
//	})
//
// # Defaults
//
//   - Attempts: 3
//   - Initial backoff: 1 second
//   - Longest single wait: 10 seconds
//
// A [Policy] with different values can be passed to the registry client, which
// is how tests keep failing lookups fast.
package httputil
