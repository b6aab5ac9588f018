// Package authlockout throttles brute-force login attempts. Consecutive
// failures for an email are counted within a sliding window; past the
// threshold further attempts are rejected until the window expires.
package authlockout

import (
	"context"
	"time"
)

// Store counts failures per key with automatic expiry.
type Store interface {
	// Count returns the current failure count for the key.
	Count(ctx context.Context, key string) (int, error)
	// Increment bumps the failure count, starting the expiry window on
	// the first failure, and returns the new count.
	Increment(ctx context.Context, key string, window time.Duration) (int, error)
	// Reset clears the failure count.
	Reset(ctx context.Context, key string) error
}
