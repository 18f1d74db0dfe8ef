package clock

import (
	"context"
	"time"

	"go.uber.org/fx"
)

type Clock interface {
	Now(ctx context.Context) time.Time
}

// New returns the system clock used by all production wiring.
func New() Clock {
	return SystemClock{}
}

// Today truncates the clock reading to a UTC calendar date.
func Today(ctx context.Context, c Clock) time.Time {
	now := c.Now(ctx)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

var Module = fx.Module("clock",
	fx.Provide(New),
)
