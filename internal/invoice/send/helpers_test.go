package send

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bwmarrin/snowflake"
	"github.com/fibrewavelabs/fibrewave/internal/clock"
	"github.com/fibrewavelabs/fibrewave/internal/config"
	"github.com/fibrewavelabs/fibrewave/internal/invoice/domain"
	"github.com/fibrewavelabs/fibrewave/internal/invoice/render"
	"github.com/fibrewavelabs/fibrewave/internal/invoice/repository"
	"github.com/fibrewavelabs/fibrewave/internal/mailer"
	"github.com/fibrewavelabs/fibrewave/internal/observability"
	settingsdomain "github.com/fibrewavelabs/fibrewave/internal/settings/domain"
	"github.com/glebarez/sqlite"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeMailer struct {
	mu       sync.Mutex
	messages []mailer.Message
	err      error
}

func (f *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeMailer) delivered() []mailer.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]mailer.Message, len(f.messages))
	copy(out, f.messages)
	return out
}

// staticSettings satisfies the settings provider without a database.
type staticSettings map[string]string

func (s staticSettings) Get(_ context.Context, key, fallback string) (string, error) {
	if v, ok := s[key]; ok {
		return v, nil
	}
	return fallback, nil
}

func (s staticSettings) All(_ context.Context) (map[string]string, error) {
	return s, nil
}

func (s staticSettings) List(_ context.Context) ([]settingsdomain.CompanySetting, error) {
	return nil, nil
}

func (s staticSettings) Set(_ context.Context, _, _ string) (*settingsdomain.CompanySetting, error) {
	return nil, nil
}

func (s staticSettings) Delete(_ context.Context, _ string) error {
	return nil
}

type sendHarness struct {
	db      *gorm.DB
	node    *snowflake.Node
	clk     *clock.Fixed
	repo    domain.Repository
	queue   *Queue
	mailer  *fakeMailer
	worker  *Worker
	sender  domain.Sender
	metrics *observability.Metrics
}

func newSendHarness(t *testing.T) *sendHarness {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Invoice{}, &domain.InvoiceEmailLog{}))

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFixed(time.Date(2025, time.January, 20, 10, 0, 0, 0, time.UTC))
	log := zap.NewNop()
	metrics := observability.NewMetrics()
	repo := repository.Provide()
	queue := NewQueue(client)
	mail := &fakeMailer{}

	settings := staticSettings{
		settingsdomain.KeyCompanyName:    "FibreWave",
		settingsdomain.KeyCurrencySymbol: "R",
	}

	worker := NewWorker(WorkerParams{
		DB:       db,
		Log:      log,
		GenID:    node,
		Clock:    clk,
		Config:   config.Config{},
		Queue:    queue,
		Repo:     repo,
		Renderer: render.New(settings),
		Mailer:   mail,
		Metrics:  metrics,
	})

	sender := NewOrchestrator(OrchestratorParams{
		DB:      db,
		Log:     log,
		GenID:   node,
		Clock:   clk,
		Queue:   queue,
		Repo:    repo,
		Metrics: metrics,
	})

	return &sendHarness{
		db:      db,
		node:    node,
		clk:     clk,
		repo:    repo,
		queue:   queue,
		mailer:  mail,
		worker:  worker,
		sender:  sender,
		metrics: metrics,
	}
}

func (h *sendHarness) seedInvoice(t *testing.T, invoiceType domain.InvoiceType, email string) *domain.Invoice {
	t.Helper()
	now := h.clk.Now(context.Background())
	id := h.node.Generate()
	inv := &domain.Invoice{
		ID:             id,
		RegistrationID: h.node.Generate(),
		CustomerName:   "Thandi Mokoena",
		CustomerEmail:  email,
		InvoiceNumber:  "INV-202501-" + id.String(),
		InvoiceType:    invoiceType,
		Description:    "Fibre (100Mbps)",
		Amount:         decimal.NewFromInt(475),
		BillingDate:    now,
		DueDate:        now.AddDate(0, 0, 7),
		Status:         domain.StatusPending,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, h.repo.Insert(context.Background(), h.db, inv))
	return inv
}

func (h *sendHarness) emailLogs(t *testing.T, invoiceID snowflake.ID) []domain.InvoiceEmailLog {
	t.Helper()
	logs, err := h.repo.ListEmailLogs(context.Background(), h.db, invoiceID)
	require.NoError(t, err)
	return logs
}
