package scheduler

import (
	"context"

	"go.uber.org/zap"
)

func (s *Scheduler) RunGenerateRecurring(ctx context.Context) error {
	generated, err := s.invoiceSvc.GenerateRecurringInvoices(ctx)
	if err != nil {
		return err
	}
	s.log.Info("recurring sweep finished", zap.Int("generated", generated))
	return nil
}

func (s *Scheduler) RunAutoSend(ctx context.Context) error {
	dispatched, err := s.invoiceSvc.SendAutomaticInvoices(ctx)
	if err != nil {
		return err
	}
	s.log.Info("auto send sweep finished", zap.Int("dispatched", dispatched))
	return nil
}

func (s *Scheduler) RunMarkOverdue(ctx context.Context) error {
	marked, err := s.invoiceSvc.MarkOverdueInvoices(ctx)
	if err != nil {
		return err
	}
	s.log.Info("overdue sweep finished", zap.Int64("marked", marked))
	return nil
}

func (s *Scheduler) RunRetryFailed(ctx context.Context) error {
	dispatched, err := s.invoiceSvc.RetryFailedInvoices(ctx, s.cfg.RetryLookback)
	if err != nil {
		return err
	}
	s.log.Info("retry sweep finished", zap.Int("dispatched", dispatched))
	return nil
}
