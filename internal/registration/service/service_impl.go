package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/fibrewavelabs/fibrewave/internal/catalog/domain"
	"github.com/fibrewavelabs/fibrewave/internal/clock"
	invoicedomain "github.com/fibrewavelabs/fibrewave/internal/invoice/domain"
	"github.com/fibrewavelabs/fibrewave/internal/registration/domain"
	"github.com/fibrewavelabs/fibrewave/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       domain.Repository
	CatalogSvc catalogdomain.Service
	InvoiceSvc invoicedomain.Service
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	catalogSvc catalogdomain.Service
	invoiceSvc invoicedomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("registration.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		catalogSvc: p.CatalogSvc,
		invoiceSvc: p.InvoiceSvc,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRegistrationRequest) (*domain.Registration, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Surname = strings.TrimSpace(req.Surname)
	req.Email = domain.NormalizeEmail(req.Email)
	req.Phone = domain.NormalizePhone(req.Phone)
	req.AlternativePhone = domain.NormalizePhone(req.AlternativePhone)

	if req.Name == "" || req.Surname == "" || req.Email == "" ||
		req.ServiceType == "" || req.Package == "" ||
		req.PaymentPeriod == "" || req.DepositPayment == "" {
		return nil, domain.ErrInvalidRegistration
	}

	price, err := s.catalogSvc.ResolvePrice(ctx, req.ServiceType, req.Package)
	if err != nil {
		if errors.Is(err, catalogdomain.ErrPackagePriceNotFound) {
			return nil, domain.ErrUnknownPackage
		}
		return nil, err
	}

	now := s.clock.Now(ctx)
	priceID := price.ID
	reg := &domain.Registration{
		ID:               s.genID.Generate(),
		Name:             req.Name,
		Surname:          req.Surname,
		Phone:            req.Phone,
		AlternativePhone: req.AlternativePhone,
		Email:            req.Email,
		Location:         strings.TrimSpace(req.Location),
		Address:          strings.TrimSpace(req.Address),
		ServiceType:      price.ServiceType,
		Package:          price.Package,
		PackagePriceID:   &priceID,
		InstallationDate: req.InstallationDate,
		PaymentPeriod:    req.PaymentPeriod,
		DepositPayment:   req.DepositPayment,
		HowDidYouKnow:    strings.TrimSpace(req.HowDidYouKnow),
		Comments:         strings.TrimSpace(req.Comments),
		Status:           domain.StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Insert(ctx, s.db, reg); err != nil {
		return nil, err
	}

	s.log.Info("registration created",
		zap.Int64("registration_id", int64(reg.ID)),
		zap.String("service_type", reg.ServiceType),
		zap.String("package", reg.Package),
	)
	return reg, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.Registration, error) {
	reg, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, domain.ErrRegistrationNotFound
	}
	return reg, nil
}

func (s *Service) List(ctx context.Context, filter domain.ListFilter, page pagination.Pagination) ([]*domain.Registration, error) {
	return s.repo.List(ctx, s.db, filter, page)
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateRegistrationRequest) (*domain.Registration, error) {
	reg, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Phone != nil {
		reg.Phone = domain.NormalizePhone(*req.Phone)
	}
	if req.AlternativePhone != nil {
		reg.AlternativePhone = domain.NormalizePhone(*req.AlternativePhone)
	}
	if req.Email != nil {
		email := domain.NormalizeEmail(*req.Email)
		if email == "" {
			return nil, domain.ErrInvalidRegistration
		}
		reg.Email = email
	}
	if req.Location != nil {
		reg.Location = strings.TrimSpace(*req.Location)
	}
	if req.Address != nil {
		reg.Address = strings.TrimSpace(*req.Address)
	}
	if req.InstallationDate != nil {
		reg.InstallationDate = req.InstallationDate
	}
	if req.Comments != nil {
		reg.Comments = strings.TrimSpace(*req.Comments)
	}
	reg.UpdatedAt = s.clock.Now(ctx)

	if err := s.repo.UpdateContact(ctx, s.db, reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// UpdateStatus drives the registration state machine. Cancelled is terminal,
// and processed can only be entered once; the transition into processed
// creates the initial invoices in the same transaction so a failed creation
// rolls the status change back too.
func (s *Service) UpdateStatus(ctx context.Context, id snowflake.ID, status domain.RegistrationStatus) (*domain.Registration, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	if status == domain.StatusProcessed {
		return s.process(ctx, id)
	}

	reg, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if reg.Status == domain.StatusCancelled {
		return nil, domain.ErrRegistrationTerminal
	}
	if reg.Status == domain.StatusProcessed && status != domain.StatusCancelled {
		return nil, domain.ErrAlreadyProcessed
	}
	if reg.Status == status {
		return reg, nil
	}

	now := s.clock.Now(ctx)
	if err := s.repo.UpdateStatus(ctx, s.db, id, status, nil, now); err != nil {
		return nil, err
	}
	reg.Status = status
	reg.UpdatedAt = now

	s.log.Info("registration status updated",
		zap.Int64("registration_id", int64(id)),
		zap.String("status", string(status)),
	)
	return reg, nil
}

// process moves a registration into processed and applies the deposit policy.
// The row is locked for the duration of the transaction, so two concurrent
// processing calls cannot both generate invoices.
func (s *Service) process(ctx context.Context, id snowflake.ID) (*domain.Registration, error) {
	var (
		reg    *domain.Registration
		result *invoicedomain.CreationResult
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		reg, err = s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if reg == nil {
			return domain.ErrRegistrationNotFound
		}
		if reg.Status == domain.StatusCancelled {
			return domain.ErrRegistrationTerminal
		}
		if reg.Status == domain.StatusProcessed {
			return domain.ErrAlreadyProcessed
		}

		now := s.clock.Now(ctx)
		if err := s.repo.UpdateStatus(ctx, tx, id, domain.StatusProcessed, &now, now); err != nil {
			return err
		}
		reg.Status = domain.StatusProcessed
		reg.ProcessedAt = &now
		reg.UpdatedAt = now

		result, err = s.invoiceSvc.CreateInitialInvoice(ctx, tx, reg)
		return err
	})
	if err != nil {
		return nil, err
	}

	// The activation gate opens once the transaction has committed; main
	// invoices flip active only for a registration that really is processed.
	if _, err := s.invoiceSvc.ActivateMainInvoices(ctx, id); err != nil {
		s.log.Error("main invoice activation failed",
			zap.Int64("registration_id", int64(id)),
			zap.Error(err),
		)
	}

	// The deposit invoice goes out immediately; it gates installation, so it
	// does not wait for the daily send sweep. Should the sweep dispatch it
	// again the same day, the worker drops whichever task runs second once a
	// delivery is on record.
	if result != nil && result.Deposit != nil {
		if _, err := s.invoiceSvc.SendInvoice(ctx, result.Deposit.ID, false); err != nil {
			s.log.Error("deposit invoice dispatch failed",
				zap.String("invoice_number", result.Deposit.InvoiceNumber),
				zap.Error(err),
			)
		}
	}

	s.log.Info("registration processed", zap.Int64("registration_id", int64(id)))
	return reg, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, s.db, id)
}

func (s *Service) Stats(ctx context.Context) (domain.StatusCounts, error) {
	return s.repo.CountByStatus(ctx, s.db)
}
