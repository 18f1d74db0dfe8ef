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
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreateInitialInvoice applies the deposit policy when a registration is
// processed.
//
// "pay later": one combined main invoice carrying the full deposit, left
// inactive for the activation gate. Any other deposit method: an immediately
// active deposit invoice for half the deposit due in 7 days, plus an inactive
// main invoice carrying the other half.
//
// All writes go through tx; the caller owns commit and rollback.
func (s *Service) CreateInitialInvoice(ctx context.Context, tx *gorm.DB, reg *registrationdomain.Registration) (*domain.CreationResult, error) {
	if reg == nil {
		return nil, domain.ErrRegistrationNotFound
	}

	price, err := s.catalogSvc.ResolvePrice(ctx, reg.ServiceType, reg.Package)
	if err != nil {
		if errors.Is(err, catalogdomain.ErrPackagePriceNotFound) {
			return nil, domain.ErrMissingPricing
		}
		return nil, err
	}

	today := clock.Today(ctx, s.clock)

	if reg.PaysDepositLater() {
		amount := price.Price.Add(s.fullDeposit)
		description := fmt.Sprintf("%s (%s) - including installation deposit of %s",
			price.ServiceType, price.Package, s.fullDeposit.StringFixed(2))

		main, err := s.insertMainInvoice(ctx, tx, reg, price, amount, description, today)
		if err != nil {
			return nil, err
		}

		s.log.Info("pay later invoice created",
			zap.Int64("registration_id", int64(reg.ID)),
			zap.String("invoice_number", main.InvoiceNumber),
			zap.String("amount", main.Amount.String()),
		)
		return &domain.CreationResult{Main: main}, nil
	}

	deposit, err := s.insertDepositInvoice(ctx, tx, reg, price, today)
	if err != nil {
		return nil, err
	}

	amount := price.Price.Add(s.halfDeposit)
	description := fmt.Sprintf("%s (%s) - including partial installation deposit of %s",
		price.ServiceType, price.Package, s.halfDeposit.StringFixed(2))
	main, err := s.insertMainInvoice(ctx, tx, reg, price, amount, description, today)
	if err != nil {
		return nil, err
	}

	s.log.Info("split deposit invoices created",
		zap.Int64("registration_id", int64(reg.ID)),
		zap.String("deposit_invoice", deposit.InvoiceNumber),
		zap.String("main_invoice", main.InvoiceNumber),
		zap.String("deposit_method", reg.DepositPayment),
	)
	return &domain.CreationResult{Deposit: deposit, Main: main}, nil
}

func (s *Service) insertDepositInvoice(ctx context.Context, tx *gorm.DB, reg *registrationdomain.Registration, price *catalogdomain.PackagePrice, today time.Time) (*domain.Invoice, error) {
	number, err := s.repo.NextInvoiceNumber(ctx, tx, s.prefix, s.clock.Now(ctx))
	if err != nil {
		return nil, err
	}

	now := s.clock.Now(ctx)
	inv := &domain.Invoice{
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
		InvoiceType:     domain.TypeDeposit,
		Description:     fmt.Sprintf("installation deposit - %s (%s)", price.ServiceType, price.Package),
		Amount:          s.halfDeposit,
		PaymentPeriod:   registrationdomain.PaymentPeriodOneTime,
		BillingDate:     today,
		DueDate:         DepositDueDate(today),
		Status:          domain.StatusPending,
		IsActive:        true,
		IsRecurring:     false,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Insert(ctx, tx, inv); err != nil {
		return nil, err
	}
	s.metrics.InvoicesCreated.WithLabelValues(string(domain.TypeDeposit)).Inc()
	return inv, nil
}

func (s *Service) insertMainInvoice(ctx context.Context, tx *gorm.DB, reg *registrationdomain.Registration, price *catalogdomain.PackagePrice, amount decimal.Decimal, description string, today time.Time) (*domain.Invoice, error) {
	number, err := s.repo.NextInvoiceNumber(ctx, tx, s.prefix, s.clock.Now(ctx))
	if err != nil {
		return nil, err
	}

	billingDate := CalculateBillingDate(reg.PaymentPeriod, today)
	now := s.clock.Now(ctx)
	inv := &domain.Invoice{
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
		Description:     description,
		Amount:          amount,
		PaymentPeriod:   reg.PaymentPeriod,
		BillingDate:     billingDate,
		DueDate:         MainDueDate(billingDate),
		NextBillingDate: CalculateNextBillingDate(billingDate, reg.PaymentPeriod),
		Status:          domain.StatusPending,
		IsActive:        false,
		IsRecurring:     true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Insert(ctx, tx, inv); err != nil {
		return nil, err
	}
	s.metrics.InvoicesCreated.WithLabelValues(string(domain.TypeMain)).Inc()
	return inv, nil
}

func packagePriceRef(price *catalogdomain.PackagePrice) *snowflake.ID {
	id := price.ID
	return &id
}
