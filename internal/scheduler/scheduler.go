package scheduler

import (
	"context"
	"time"

	"github.com/fibrewavelabs/fibrewave/internal/clock"
	"github.com/fibrewavelabs/fibrewave/internal/config"
	invoicedomain "github.com/fibrewavelabs/fibrewave/internal/invoice/domain"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log        *zap.Logger
	Clock      clock.Clock
	Config     config.Config
	Redis      *redis.Client
	InvoiceSvc invoicedomain.Service
}

// Scheduler runs the periodic billing sweeps. Every job takes a redis lock
// keyed by job name, so running multiple scheduler replicas is safe.
type Scheduler struct {
	log        *zap.Logger
	clock      clock.Clock
	cfg        config.SchedulerConfig
	redis      *redis.Client
	invoiceSvc invoicedomain.Service
	cron       *cron.Cron
}

func New(p Params) *Scheduler {
	return &Scheduler{
		log:        p.Log.Named("scheduler"),
		clock:      p.Clock,
		cfg:        p.Config.Scheduler,
		redis:      p.Redis,
		invoiceSvc: p.InvoiceSvc,
		cron:       cron.New(),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	jobs := []struct {
		name string
		spec string
		run  func(context.Context) error
	}{
		{"generate_recurring", s.cfg.RecurringSpec, s.RunGenerateRecurring},
		{"auto_send", s.cfg.AutoSendSpec, s.RunAutoSend},
		{"mark_overdue", s.cfg.OverdueSpec, s.RunMarkOverdue},
		{"retry_failed", s.cfg.RetrySpec, s.RunRetryFailed},
	}

	for _, job := range jobs {
		job := job
		if _, err := s.cron.AddFunc(job.spec, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
			defer cancel()
			if err := s.withLock(jobCtx, job.name, job.run); err != nil {
				s.log.Error("scheduled job failed", zap.String("job", job.name), zap.Error(err))
			}
		}); err != nil {
			return err
		}
		s.log.Info("job scheduled", zap.String("job", job.name), zap.String("spec", job.spec))
	}

	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop(ctx context.Context) error {
	stopped := s.cron.Stop()
	select {
	case <-stopped.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

const lockTTL = 25 * time.Minute

// withLock runs fn only if this instance wins the job's redis lock. The lock
// is left to expire rather than released.
func (s *Scheduler) withLock(ctx context.Context, name string, fn func(context.Context) error) error {
	key := "scheduler:lock:" + name
	ok, err := s.redis.SetNX(ctx, key, s.clock.Now(ctx).Format(time.RFC3339), lockTTL).Result()
	if err != nil {
		return err
	}
	if !ok {
		s.log.Debug("job lock held elsewhere", zap.String("job", name))
		return nil
	}
	return fn(ctx)
}
