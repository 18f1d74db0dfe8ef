package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/fibrewavelabs/fibrewave/internal/catalog/domain"
	catalogrepository "github.com/fibrewavelabs/fibrewave/internal/catalog/repository"
	catalogservice "github.com/fibrewavelabs/fibrewave/internal/catalog/service"
	"github.com/fibrewavelabs/fibrewave/internal/clock"
	"github.com/fibrewavelabs/fibrewave/internal/config"
	"github.com/fibrewavelabs/fibrewave/internal/invoice/domain"
	"github.com/fibrewavelabs/fibrewave/internal/invoice/repository"
	"github.com/fibrewavelabs/fibrewave/internal/observability"
	registrationdomain "github.com/fibrewavelabs/fibrewave/internal/registration/domain"
	registrationrepository "github.com/fibrewavelabs/fibrewave/internal/registration/repository"
	settingsdomain "github.com/fibrewavelabs/fibrewave/internal/settings/domain"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func decimalFromInt(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

type sentCall struct {
	InvoiceID snowflake.ID
	Manual    bool
}

type fakeSender struct {
	mu    sync.Mutex
	calls []sentCall
	err   error
}

func (f *fakeSender) Send(_ context.Context, inv *domain.Invoice, manual bool) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	f.calls = append(f.calls, sentCall{InvoiceID: inv.ID, Manual: manual})
	return true, nil
}

func (f *fakeSender) sent() []sentCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentCall, len(f.calls))
	copy(out, f.calls)
	return out
}

type harness struct {
	db         *gorm.DB
	node       *snowflake.Node
	clk        *clock.Fixed
	repo       domain.Repository
	regRepo    registrationdomain.Repository
	catalogSvc catalogdomain.Service
	sender     *fakeSender
	svc        *Service
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&registrationdomain.Registration{},
		&catalogdomain.PackagePrice{},
		&domain.Invoice{},
		&domain.InvoiceEmailLog{},
		&domain.InvoiceSequence{},
		&settingsdomain.CompanySetting{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFixed(time.Date(2025, time.January, 20, 10, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	catalogSvc := catalogservice.New(catalogservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: clk,
		Repo:  catalogrepository.Provide(),
	})

	cfg := config.Config{}
	cfg.Billing.FullDeposit = decimal.NewFromInt(950)
	cfg.Billing.HalfDeposit = decimal.NewFromInt(475)
	cfg.Billing.InvoicePrefix = "INV"
	cfg.Scheduler.BatchSize = 50

	sender := &fakeSender{}
	svc := New(Params{
		DB:         db,
		Log:        log,
		GenID:      node,
		Clock:      clk,
		Config:     cfg,
		Repo:       repository.Provide(),
		RegRepo:    registrationrepository.Provide(),
		CatalogSvc: catalogSvc,
		Sender:     sender,
		Metrics:    observability.NewMetrics(),
	}).(*Service)

	return &harness{
		db:         db,
		node:       node,
		clk:        clk,
		repo:       svc.repo,
		regRepo:    svc.regRepo,
		catalogSvc: catalogSvc,
		sender:     sender,
		svc:        svc,
	}
}

func (h *harness) seedPrice(t *testing.T, serviceType, pkg string, price int64) *catalogdomain.PackagePrice {
	t.Helper()
	created, err := h.catalogSvc.Create(context.Background(), catalogdomain.CreatePackagePriceRequest{
		ServiceType: serviceType,
		Package:     pkg,
		Price:       decimal.NewFromInt(price),
	})
	require.NoError(t, err)
	return created
}

func (h *harness) seedRegistration(t *testing.T, paymentPeriod, depositPayment string, status registrationdomain.RegistrationStatus) *registrationdomain.Registration {
	t.Helper()
	now := h.clk.Now(context.Background())
	reg := &registrationdomain.Registration{
		ID:             h.node.Generate(),
		Name:           "Thandi",
		Surname:        "Mokoena",
		Phone:          "+27821234567",
		Email:          "thandi@example.com",
		Address:        "12 Protea Rd",
		ServiceType:    "Fibre",
		Package:        "100Mbps",
		PaymentPeriod:  paymentPeriod,
		DepositPayment: depositPayment,
		Status:         status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if status == registrationdomain.StatusProcessed {
		reg.ProcessedAt = &now
	}
	require.NoError(t, h.regRepo.Insert(context.Background(), h.db, reg))
	return reg
}

func (h *harness) createInitial(t *testing.T, reg *registrationdomain.Registration) *domain.CreationResult {
	t.Helper()
	var result *domain.CreationResult
	err := h.db.Transaction(func(tx *gorm.DB) error {
		var err error
		result, err = h.svc.CreateInitialInvoice(context.Background(), tx, reg)
		return err
	})
	require.NoError(t, err)
	return result
}
