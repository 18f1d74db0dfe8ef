package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/fibrewavelabs/fibrewave/internal/clock"
	"go.uber.org/zap"
)

// SendInvoice hands a single invoice to the async sender. The returned
// boolean reports acceptance for delivery; manual sends bypass the
// already-sent suppression downstream.
func (s *Service) SendInvoice(ctx context.Context, id snowflake.ID, manual bool) (bool, error) {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return s.sender.Send(ctx, inv, manual)
}

// SendAutomaticInvoices dispatches every active pending invoice whose billing
// date is today. Dispatch failures are logged per invoice and do not stop the
// sweep.
func (s *Service) SendAutomaticInvoices(ctx context.Context) (int, error) {
	today := clock.Today(ctx, s.clock)
	due, err := s.repo.ListDueForSending(ctx, s.db, today)
	if err != nil {
		return 0, err
	}

	dispatched := 0
	for i := range due {
		ok, err := s.sender.Send(ctx, &due[i], false)
		if err != nil {
			s.log.Error("automatic send dispatch failed",
				zap.String("invoice_number", due[i].InvoiceNumber),
				zap.Error(err),
			)
			continue
		}
		if ok {
			dispatched++
		}
	}

	if dispatched > 0 {
		s.log.Info("automatic invoices dispatched",
			zap.Int("dispatched", dispatched),
			zap.Int("due", len(due)),
		)
	}
	return dispatched, nil
}

// RetryFailedInvoices re-dispatches invoices with a failed send attempt in
// the lookback window and no delivery on record. Dispatch runs in manual mode
// like an operator resend; invoices that were delivered after a failed attempt
// are excluded up front. Permanently failed attempts stay excluded too, those
// need an explicit manual resend.
func (s *Service) RetryFailedInvoices(ctx context.Context, lookback time.Duration) (int, error) {
	since := s.clock.Now(ctx).Add(-lookback)
	ids, err := s.repo.ListFailedInvoiceIDs(ctx, s.db, since)
	if err != nil {
		return 0, err
	}

	dispatched := 0
	for _, id := range ids {
		ok, err := s.SendInvoice(ctx, id, true)
		if err != nil {
			s.log.Error("retry dispatch failed",
				zap.Int64("invoice_id", int64(id)),
				zap.Error(err),
			)
			continue
		}
		if ok {
			dispatched++
		}
	}

	if dispatched > 0 {
		s.log.Info("failed invoices re-dispatched", zap.Int("dispatched", dispatched))
	}
	return dispatched, nil
}

// MarkOverdueInvoices flips active sent or pending invoices past their due
// date to overdue. The update is a single guarded statement, so repeated
// sweeps are harmless.
func (s *Service) MarkOverdueInvoices(ctx context.Context) (int64, error) {
	today := clock.Today(ctx, s.clock)
	marked, err := s.repo.MarkOverdue(ctx, s.db, today, s.clock.Now(ctx))
	if err != nil {
		return 0, err
	}
	if marked > 0 {
		s.metrics.OverdueMarked.Add(float64(marked))
		s.log.Info("invoices marked overdue", zap.Int64("count", marked))
	}
	return marked, nil
}
