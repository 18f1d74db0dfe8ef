package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fibrewavelabs/fibrewave/internal/clock"
	"github.com/fibrewavelabs/fibrewave/internal/config"
	invoicedomain "github.com/fibrewavelabs/fibrewave/internal/invoice/domain"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeInvoiceService struct {
	invoicedomain.Service

	recurringCalls int
	autoSendCalls  int
	overdueCalls   int
	retryCalls     int
	retryLookback  time.Duration
	err            error
}

func (f *fakeInvoiceService) GenerateRecurringInvoices(ctx context.Context) (int, error) {
	f.recurringCalls++
	return 3, f.err
}

func (f *fakeInvoiceService) SendAutomaticInvoices(ctx context.Context) (int, error) {
	f.autoSendCalls++
	return 2, f.err
}

func (f *fakeInvoiceService) MarkOverdueInvoices(ctx context.Context) (int64, error) {
	f.overdueCalls++
	return 1, f.err
}

func (f *fakeInvoiceService) RetryFailedInvoices(ctx context.Context, lookback time.Duration) (int, error) {
	f.retryCalls++
	f.retryLookback = lookback
	return 1, f.err
}

func newTestScheduler(t *testing.T) (*Scheduler, *fakeInvoiceService) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc := &fakeInvoiceService{}
	cfg := config.Config{
		Scheduler: config.SchedulerConfig{
			RecurringSpec: "@daily",
			AutoSendSpec:  "@daily",
			OverdueSpec:   "@daily",
			RetrySpec:     "@hourly",
			RetryLookback: 24 * time.Hour,
		},
	}
	clk := clock.NewFixed(time.Date(2025, time.January, 20, 10, 0, 0, 0, time.UTC))

	s := New(Params{
		Log:        zap.NewNop(),
		Clock:      clk,
		Config:     cfg,
		Redis:      client,
		InvoiceSvc: svc,
	})
	return s, svc
}

func TestJobsDelegateToInvoiceService(t *testing.T) {
	s, svc := newTestScheduler(t)
	ctx := context.Background()

	require.NoError(t, s.RunGenerateRecurring(ctx))
	require.NoError(t, s.RunAutoSend(ctx))
	require.NoError(t, s.RunMarkOverdue(ctx))
	require.NoError(t, s.RunRetryFailed(ctx))

	require.Equal(t, 1, svc.recurringCalls)
	require.Equal(t, 1, svc.autoSendCalls)
	require.Equal(t, 1, svc.overdueCalls)
	require.Equal(t, 1, svc.retryCalls)
	require.Equal(t, 24*time.Hour, svc.retryLookback)
}

func TestJobErrorPropagates(t *testing.T) {
	s, svc := newTestScheduler(t)
	svc.err = errors.New("sweep broke")

	err := s.RunGenerateRecurring(context.Background())
	require.EqualError(t, err, "sweep broke")
}

func TestWithLockSingleWinner(t *testing.T) {
	s, _ := newTestScheduler(t)
	ctx := context.Background()

	runs := 0
	job := func(context.Context) error {
		runs++
		return nil
	}

	require.NoError(t, s.withLock(ctx, "generate_recurring", job))
	require.Equal(t, 1, runs)

	// Second invocation finds the lock held and skips the job.
	require.NoError(t, s.withLock(ctx, "generate_recurring", job))
	require.Equal(t, 1, runs)

	// A different job name takes its own lock.
	require.NoError(t, s.withLock(ctx, "mark_overdue", job))
	require.Equal(t, 2, runs)
}

func TestStartRegistersJobsAndStops(t *testing.T) {
	s, _ := newTestScheduler(t)

	require.NoError(t, s.Start(context.Background()))
	require.Len(t, s.cron.Entries(), 4)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}
