package domain

import "time"

// RetryPolicy bounds a retried operation: attempt count and fixed delay
// between attempts are configuration, not inline control flow.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// Delay is the fixed pause between consecutive attempts.
	Delay time.Duration
}

// DefaultPublishRetry is the broker delivery policy: up to 10 attempts
// with a 10-second pause, after which the failure is logged and swallowed.
var DefaultPublishRetry = RetryPolicy{MaxAttempts: 10, Delay: 10 * time.Second}
