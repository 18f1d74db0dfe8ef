package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/fibrewavelabs/fibrewave/internal/catalog/domain"
	"github.com/fibrewavelabs/fibrewave/internal/clock"
	"github.com/fibrewavelabs/fibrewave/internal/config"
	"github.com/fibrewavelabs/fibrewave/internal/invoice/domain"
	"github.com/fibrewavelabs/fibrewave/internal/observability"
	registrationdomain "github.com/fibrewavelabs/fibrewave/internal/registration/domain"
	"github.com/fibrewavelabs/fibrewave/pkg/db/pagination"
	"github.com/shopspring/decimal"
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
	Config     config.Config
	Repo       domain.Repository
	RegRepo    registrationdomain.Repository
	CatalogSvc catalogdomain.Service
	Sender     domain.Sender
	Metrics    *observability.Metrics
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	regRepo    registrationdomain.Repository
	catalogSvc catalogdomain.Service
	sender     domain.Sender
	metrics    *observability.Metrics

	prefix      string
	batchSize   int
	fullDeposit decimal.Decimal
	halfDeposit decimal.Decimal
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("invoice.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		regRepo:     p.RegRepo,
		catalogSvc:  p.CatalogSvc,
		sender:      p.Sender,
		metrics:     p.Metrics,
		prefix:      p.Config.Billing.InvoicePrefix,
		batchSize:   p.Config.Scheduler.BatchSize,
		fullDeposit: p.Config.Billing.FullDeposit,
		halfDeposit: p.Config.Billing.HalfDeposit,
	}
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.Invoice, error) {
	inv, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrInvoiceNotFound
	}
	return inv, nil
}

func (s *Service) List(ctx context.Context, filter domain.ListFilter, page pagination.Pagination) ([]*domain.Invoice, error) {
	return s.repo.List(ctx, s.db, filter, page)
}

func (s *Service) ByRegistration(ctx context.Context, registrationID snowflake.ID) (domain.RegistrationInvoices, error) {
	items, err := s.repo.FindByRegistration(ctx, s.db, registrationID)
	if err != nil {
		return domain.RegistrationInvoices{}, err
	}
	out := domain.RegistrationInvoices{
		Active:   make([]domain.Invoice, 0, len(items)),
		Inactive: make([]domain.Invoice, 0),
	}
	for _, inv := range items {
		if inv.IsActive {
			out.Active = append(out.Active, inv)
		} else {
			out.Inactive = append(out.Inactive, inv)
		}
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateInvoiceRequest) (*domain.Invoice, error) {
	if !req.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if req.InvoiceType != domain.TypeMain && req.InvoiceType != domain.TypeDeposit {
		return nil, domain.ErrInvalidTransition
	}

	reg, err := s.regRepo.FindByID(ctx, s.db, req.RegistrationID)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, domain.ErrRegistrationNotFound
	}

	now := s.clock.Now(ctx)
	today := clock.Today(ctx, s.clock)

	billingDate := today
	if req.BillingDate != nil {
		billingDate = *req.BillingDate
	}
	dueDate := MainDueDate(billingDate)
	if req.InvoiceType == domain.TypeDeposit {
		dueDate = DepositDueDate(today)
	}
	if req.DueDate != nil {
		dueDate = *req.DueDate
	}

	var created *domain.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.repo.NextInvoiceNumber(ctx, tx, s.prefix, now)
		if err != nil {
			return err
		}
		created = &domain.Invoice{
			ID:              s.genID.Generate(),
			RegistrationID:  reg.ID,
			CustomerName:    reg.FullName(),
			CustomerEmail:   reg.Email,
			CustomerPhone:   reg.Phone,
			CustomerAddress: reg.Address,
			InvoiceNumber:   number,
			PackagePriceID:  reg.PackagePriceID,
			ServiceType:     reg.ServiceType,
			Package:         reg.Package,
			InvoiceType:     req.InvoiceType,
			Description:     strings.TrimSpace(req.Description),
			Amount:          req.Amount,
			PaymentPeriod:   reg.PaymentPeriod,
			BillingDate:     billingDate,
			DueDate:         dueDate,
			Status:          domain.StatusPending,
			IsActive:        req.IsActive,
			IsRecurring:     false,
			Notes:           strings.TrimSpace(req.Notes),
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		return s.repo.Insert(ctx, tx, created)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.InvoicesCreated.WithLabelValues(string(req.InvoiceType)).Inc()
	s.log.Info("manual invoice created",
		zap.String("invoice_number", created.InvoiceNumber),
		zap.Int64("registration_id", int64(reg.ID)),
		zap.String("amount", created.Amount.String()),
	)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateInvoiceRequest) (*domain.Invoice, error) {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.Description != nil {
		fields["description"] = strings.TrimSpace(*req.Description)
	}
	if req.DueDate != nil {
		fields["due_date"] = *req.DueDate
	}
	if req.Notes != nil {
		fields["notes"] = strings.TrimSpace(*req.Notes)
	}
	if len(fields) == 0 {
		return inv, nil
	}
	fields["updated_at"] = s.clock.Now(ctx)

	if err := s.repo.UpdateFields(ctx, s.db, id, fields); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Activate(ctx context.Context, id snowflake.ID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.SetActive(ctx, s.db, id, true, s.clock.Now(ctx))
}

func (s *Service) ActivateMainInvoices(ctx context.Context, registrationID snowflake.ID) (int64, error) {
	activated, err := s.repo.ActivateMain(ctx, s.db, registrationID, s.clock.Now(ctx))
	if err != nil {
		return 0, err
	}
	if activated > 0 {
		s.log.Info("main invoices activated",
			zap.Int64("registration_id", int64(registrationID)),
			zap.Int64("activated", activated),
		)
	}
	return activated, nil
}

func (s *Service) MarkPaid(ctx context.Context, id snowflake.ID) error {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	ok, err := s.repo.MarkPaid(ctx, s.db, id, s.clock.Now(ctx))
	if err != nil {
		return err
	}
	if !ok {
		if inv.Status.Terminal() {
			return domain.ErrInvoiceTerminal
		}
		return domain.ErrInvalidTransition
	}
	s.log.Info("invoice paid", zap.String("invoice_number", inv.InvoiceNumber))
	return nil
}

func (s *Service) Cancel(ctx context.Context, id snowflake.ID) error {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	ok, err := s.repo.Cancel(ctx, s.db, id, s.clock.Now(ctx))
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrInvoiceTerminal
	}
	s.log.Info("invoice cancelled", zap.String("invoice_number", inv.InvoiceNumber))
	return nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, s.db, id)
}

func (s *Service) EmailLogs(ctx context.Context, id snowflake.ID) ([]domain.InvoiceEmailLog, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListEmailLogs(ctx, s.db, id)
}

func (s *Service) Stats(ctx context.Context) (domain.Stats, error) {
	return s.repo.Stats(ctx, s.db)
}
