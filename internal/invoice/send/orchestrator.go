package send

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/fibrewavelabs/fibrewave/internal/clock"
	"github.com/fibrewavelabs/fibrewave/internal/invoice/domain"
	"github.com/fibrewavelabs/fibrewave/internal/observability"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type OrchestratorParams struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Queue   *Queue
	Repo    domain.Repository
	Metrics *observability.Metrics
}

// Orchestrator accepts invoices for asynchronous delivery. It validates the
// recipient, picks the lane and records dispatch failures; the worker does
// the actual rendering and transport.
type Orchestrator struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	queue   *Queue
	repo    domain.Repository
	metrics *observability.Metrics
	policy  RetryPolicy
}

func NewOrchestrator(p OrchestratorParams) domain.Sender {
	return &Orchestrator{
		db:      p.DB,
		log:     p.Log.Named("invoice.send"),
		genID:   p.GenID,
		clock:   p.Clock,
		queue:   p.Queue,
		repo:    p.Repo,
		metrics: p.Metrics,
		policy:  DefaultRetryPolicy(),
	}
}

func (o *Orchestrator) Send(ctx context.Context, inv *domain.Invoice, manual bool) (bool, error) {
	if inv == nil {
		return false, domain.ErrInvoiceNotFound
	}

	// Automatic sends are one-shot per invoice; only a manual resend goes
	// out again after a successful delivery.
	if inv.SentAt != nil && !manual {
		return false, nil
	}

	if strings.TrimSpace(inv.CustomerEmail) == "" {
		o.recordDispatchFailure(ctx, inv, manual, "no recipient email on invoice")
		return false, domain.ErrMissingRecipient
	}

	now := o.clock.Now(ctx)
	task := Task{
		InvoiceID: inv.ID,
		Attempt:   1,
		Manual:    manual,
		Lane:      laneFor(inv),
		Deadline:  now.Add(o.policy.Deadline),
	}
	if err := o.queue.Enqueue(ctx, task); err != nil {
		o.recordDispatchFailure(ctx, inv, manual, err.Error())
		return false, err
	}

	o.metrics.EmailsDispatched.WithLabelValues(task.Lane).Inc()
	o.log.Info("invoice send dispatched",
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("lane", task.Lane),
		zap.Bool("manual", manual),
	)
	return true, nil
}

// laneFor routes deposit invoices to the high lane; they gate installation,
// so they jump the main-invoice backlog.
func laneFor(inv *domain.Invoice) string {
	if inv.InvoiceType == domain.TypeDeposit {
		return LaneHigh
	}
	return LaneDefault
}

func (o *Orchestrator) recordDispatchFailure(ctx context.Context, inv *domain.Invoice, manual bool, message string) {
	now := o.clock.Now(ctx)
	entry := &domain.InvoiceEmailLog{
		ID:            o.genID.Generate(),
		InvoiceID:     inv.ID,
		Email:         inv.CustomerEmail,
		AttemptNumber: 1,
		IsManual:      manual,
		Status:        domain.EmailStatusDispatchFailed,
		ErrorMessage:  message,
		StartedAt:     now,
		CompletedAt:   &now,
		CreatedAt:     now,
	}
	if err := o.repo.AppendEmailLog(ctx, o.db, entry); err != nil {
		o.log.Error("failed to record dispatch failure",
			zap.String("invoice_number", inv.InvoiceNumber),
			zap.Error(err),
		)
	}
}
