package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/fibrewavelabs/fibrewave/internal/catalog/domain"
	"github.com/fibrewavelabs/fibrewave/internal/clock"
	"github.com/fibrewavelabs/fibrewave/internal/invoice/domain"
	registrationdomain "github.com/fibrewavelabs/fibrewave/internal/registration/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GenerateRecurringInvoices sweeps active recurring invoices whose next
// billing date has arrived and creates their successors. Each predecessor is
// handled in its own transaction, so one bad row never blocks the rest of the
// sweep; the successor insert and the predecessor's next_billing_date clear
// commit together.
func (s *Service) GenerateRecurringInvoices(ctx context.Context) (int, error) {
	today := clock.Today(ctx, s.clock)
	generated := 0

	for {
		due, err := s.fetchDueForRecurrence(ctx, today)
		if err != nil {
			return generated, err
		}
		if len(due) == 0 {
			break
		}

		progressed := 0
		for i := range due {
			ok, err := s.generateSuccessor(ctx, due[i].ID, today)
			if err != nil {
				s.log.Error("recurring generation failed",
					zap.String("invoice_number", due[i].InvoiceNumber),
					zap.Error(err),
				)
				continue
			}
			if ok {
				generated++
				progressed++
				s.metrics.RecurringGenerated.Inc()
			}
		}

		// Skipped rows keep their next_billing_date and would be refetched;
		// without forward progress another pass would spin on them.
		if progressed == 0 || len(due) < s.batchSize {
			break
		}
	}

	if generated > 0 {
		s.log.Info("recurring invoices generated", zap.Int("count", generated))
	}
	return generated, nil
}

func (s *Service) fetchDueForRecurrence(ctx context.Context, today time.Time) ([]domain.Invoice, error) {
	var due []domain.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		due, err = s.repo.ListDueForRecurrence(ctx, tx, today, s.batchSize)
		return err
	})
	return due, err
}

// generateSuccessor locks and re-checks the predecessor inside its own
// transaction. A concurrent run that already generated the successor has
// cleared next_billing_date by the time the lock is granted, so this call
// becomes a no-op instead of a second successor.
func (s *Service) generateSuccessor(ctx context.Context, predecessorID snowflake.ID, today time.Time) (bool, error) {
	var created *domain.Invoice

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pred, err := s.repo.FindByIDForUpdate(ctx, tx, predecessorID)
		if err != nil {
			return err
		}
		if pred == nil || !pred.IsRecurring || !pred.IsActive {
			return nil
		}
		if pred.NextBillingDate == nil || pred.NextBillingDate.After(today) {
			return nil
		}

		reg, err := s.regRepo.FindByID(ctx, tx, pred.RegistrationID)
		if err != nil {
			return err
		}
		if reg == nil || reg.Status != registrationdomain.StatusProcessed {
			s.log.Warn("skipping recurrence for unprocessed registration",
				zap.String("invoice_number", pred.InvoiceNumber),
				zap.Int64("registration_id", int64(pred.RegistrationID)),
			)
			return nil
		}

		price, err := s.catalogSvc.ResolvePrice(ctx, pred.ServiceType, pred.Package)
		if err != nil {
			if errors.Is(err, catalogdomain.ErrPackagePriceNotFound) {
				return domain.ErrMissingPricing
			}
			return err
		}

		number, err := s.repo.NextInvoiceNumber(ctx, tx, s.prefix, s.clock.Now(ctx))
		if err != nil {
			return err
		}

		billingDate := *pred.NextBillingDate
		now := s.clock.Now(ctx)
		created = &domain.Invoice{
			ID:              s.genID.Generate(),
			RegistrationID:  reg.ID,
			CustomerName:    reg.FullName(),
			CustomerEmail:   reg.Email,
			CustomerPhone:   reg.Phone,
			CustomerAddress: reg.Address,
			InvoiceNumber:   number,
			PackagePriceID:  packagePriceRef(price),
			ServiceType:     price.ServiceType,
			Package:         price.Package,
			InvoiceType:     domain.TypeMain,
			Description:     fmt.Sprintf("%s (%s) - monthly service", price.ServiceType, price.Package),
			Amount:          price.Price,
			PaymentPeriod:   pred.PaymentPeriod,
			BillingDate:     billingDate,
			DueDate:         MainDueDate(billingDate),
			NextBillingDate: CalculateNextBillingDate(billingDate, pred.PaymentPeriod),
			Status:          domain.StatusPending,
			IsActive:        true,
			IsRecurring:     true,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.repo.Insert(ctx, tx, created); err != nil {
			return err
		}
		return s.repo.ClearNextBillingDate(ctx, tx, pred.ID, now)
	})
	if err != nil {
		return false, err
	}
	return created != nil, nil
}
