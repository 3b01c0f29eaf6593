package config

import (
	"time"

	"gallery-go/internal/retry"
)

// Policy converts the retry settings into a retry.Policy, filling defaults
// for unset values.
func (c RetryConfig) Policy() retry.Policy {
	p := retry.DefaultPolicy()
	if c.MaxAttempts > 0 {
		p.MaxAttempts = c.MaxAttempts
	}
	if c.BaseDelayMs > 0 {
		p.BaseDelay = time.Duration(c.BaseDelayMs) * time.Millisecond
	}
	if c.MaxDelayMs > 0 {
		p.MaxDelay = time.Duration(c.MaxDelayMs) * time.Millisecond
	}
	return p
}
