package send

import "time"

// RetryPolicy governs automatic redelivery of invoice emails. Attempts past
// MaxAttempts, or past Deadline from first dispatch, mark the invoice's send
// permanently failed; only a manual resend restarts the cycle.
type RetryPolicy struct {
	MaxAttempts    int
	Backoff        []time.Duration
	AttemptTimeout time.Duration
	Deadline       time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		Backoff:        []time.Duration{time.Minute, 5 * time.Minute, 15 * time.Minute},
		AttemptTimeout: 2 * time.Minute,
		Deadline:       24 * time.Hour,
	}
}

// BackoffFor returns the delay before the next attempt, given the attempt
// number that just failed. Attempts beyond the table reuse the last entry.
func (p RetryPolicy) BackoffFor(attempt int) time.Duration {
	if len(p.Backoff) == 0 {
		return time.Minute
	}
	if attempt < 1 {
		attempt = 1
	}
	if attempt > len(p.Backoff) {
		attempt = len(p.Backoff)
	}
	return p.Backoff[attempt-1]
}
