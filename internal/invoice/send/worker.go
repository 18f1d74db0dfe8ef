package send

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/fibrewavelabs/fibrewave/internal/clock"
	"github.com/fibrewavelabs/fibrewave/internal/config"
	"github.com/fibrewavelabs/fibrewave/internal/invoice/domain"
	"github.com/fibrewavelabs/fibrewave/internal/invoice/render"
	"github.com/fibrewavelabs/fibrewave/internal/mailer"
	"github.com/fibrewavelabs/fibrewave/internal/observability"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type WorkerParams struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Config   config.Config
	Queue    *Queue
	Repo     domain.Repository
	Renderer *render.Renderer
	Mailer   mailer.Mailer
	Metrics  *observability.Metrics
}

// Worker drains the send queue, renders invoices and pushes them through the
// mail transport. Failed attempts are parked in the delayed set and promoted
// back when their backoff elapses.
type Worker struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	queue    *Queue
	repo     domain.Repository
	renderer *render.Renderer
	mailer   mailer.Mailer
	metrics  *observability.Metrics
	policy   RetryPolicy

	concurrency  int
	pollInterval time.Duration
}

func NewWorker(p WorkerParams) *Worker {
	policy := DefaultRetryPolicy()
	if p.Config.Worker.AttemptTimeout > 0 {
		policy.AttemptTimeout = p.Config.Worker.AttemptTimeout
	}
	concurrency := p.Config.Worker.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	pollInterval := p.Config.Worker.PollInterval
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	return &Worker{
		db:           p.DB,
		log:          p.Log.Named("invoice.send.worker"),
		genID:        p.GenID,
		clock:        p.Clock,
		queue:        p.Queue,
		repo:         p.Repo,
		renderer:     p.Renderer,
		mailer:       p.Mailer,
		metrics:      p.Metrics,
		policy:       policy,
		concurrency:  concurrency,
		pollInterval: pollInterval,
	}
}

// Run blocks until ctx is cancelled. One goroutine promotes delayed retries;
// the rest consume tasks.
func (w *Worker) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		w.promoteLoop(ctx)
	}()

	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.consumeLoop(ctx)
		}()
	}

	wg.Wait()
	return ctx.Err()
}

func (w *Worker) promoteLoop(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			promoted, err := w.queue.PromoteDue(ctx, w.clock.Now(ctx))
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				w.log.Error("delayed promotion failed", zap.Error(err))
				continue
			}
			if promoted > 0 {
				w.log.Debug("delayed tasks promoted", zap.Int("count", promoted))
			}
		}
	}
}

func (w *Worker) consumeLoop(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		task, err := w.queue.Dequeue(ctx, w.pollInterval)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.log.Error("dequeue failed", zap.Error(err))
			continue
		}
		if task == nil {
			continue
		}
		w.Process(ctx, *task)
	}
}

// Process runs one delivery attempt to completion, including scheduling the
// retry or recording the terminal failure.
func (w *Worker) Process(ctx context.Context, task Task) {
	inv, err := w.repo.FindByID(ctx, w.db, task.InvoiceID)
	if err != nil {
		w.log.Error("invoice lookup failed", zap.Int64("invoice_id", int64(task.InvoiceID)), zap.Error(err))
		return
	}
	if inv == nil {
		// Deleted between dispatch and delivery; nothing to do.
		w.log.Warn("dropping send for missing invoice", zap.Int64("invoice_id", int64(task.InvoiceID)))
		return
	}
	if !task.Manual {
		// Suppression keys on the delivery log, not sent_at: an invoice that
		// left pending before delivery (marked overdue, say) gets a sent log
		// entry but never a sent_at.
		prior, err := w.repo.LatestSentLog(ctx, w.db, inv.ID)
		if err != nil {
			w.log.Error("sent log lookup failed", zap.String("invoice_number", inv.InvoiceNumber), zap.Error(err))
			return
		}
		if prior != nil {
			w.log.Debug("suppressing duplicate automatic send", zap.String("invoice_number", inv.InvoiceNumber))
			return
		}
	}

	now := w.clock.Now(ctx)
	if now.After(task.Deadline) {
		w.recordExpired(ctx, inv, task, now)
		return
	}

	entry := &domain.InvoiceEmailLog{
		ID:            w.genID.Generate(),
		InvoiceID:     inv.ID,
		Email:         inv.CustomerEmail,
		AttemptNumber: task.Attempt,
		IsManual:      task.Manual,
		Status:        domain.EmailStatusAttempting,
		StartedAt:     now,
		CreatedAt:     now,
	}
	if err := w.repo.AppendEmailLog(ctx, w.db, entry); err != nil {
		w.log.Error("failed to open attempt log", zap.String("invoice_number", inv.InvoiceNumber), zap.Error(err))
		return
	}

	sendErr := w.deliver(ctx, inv)
	completedAt := w.clock.Now(ctx)

	if sendErr == nil {
		if err := w.repo.CompleteEmailLog(ctx, w.db, entry.ID, domain.EmailStatusSent, "", completedAt); err != nil {
			w.log.Error("failed to close attempt log", zap.Error(err))
		}
		if err := w.repo.MarkSent(ctx, w.db, inv.ID, completedAt); err != nil {
			w.log.Error("failed to mark invoice sent", zap.String("invoice_number", inv.InvoiceNumber), zap.Error(err))
		}
		w.metrics.EmailsSent.Inc()
		w.log.Info("invoice email sent",
			zap.String("invoice_number", inv.InvoiceNumber),
			zap.Int("attempt", task.Attempt),
		)
		return
	}

	w.handleFailure(ctx, inv, task, entry.ID, sendErr, completedAt)
}

func (w *Worker) deliver(ctx context.Context, inv *domain.Invoice) error {
	attemptCtx, cancel := context.WithTimeout(ctx, w.policy.AttemptTimeout)
	defer cancel()

	html, err := w.renderer.HTML(attemptCtx, inv)
	if err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	pdf, err := w.renderer.PDF(attemptCtx, inv)
	if err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}

	subject := fmt.Sprintf("Invoice %s", inv.InvoiceNumber)
	if inv.InvoiceType == domain.TypeDeposit {
		subject = fmt.Sprintf("Installation deposit invoice %s", inv.InvoiceNumber)
	}
	return w.mailer.Send(attemptCtx, mailer.Message{
		To:             inv.CustomerEmail,
		Subject:        subject,
		HTMLBody:       html,
		AttachmentName: inv.InvoiceNumber + ".pdf",
		Attachment:     pdf,
	})
}

func (w *Worker) handleFailure(ctx context.Context, inv *domain.Invoice, task Task, logID snowflake.ID, sendErr error, at time.Time) {
	retryAt := at.Add(w.policy.BackoffFor(task.Attempt))
	canRetry := task.Attempt < w.policy.MaxAttempts && retryAt.Before(task.Deadline)

	if canRetry {
		if err := w.repo.CompleteEmailLog(ctx, w.db, logID, domain.EmailStatusFailed, sendErr.Error(), at); err != nil {
			w.log.Error("failed to close attempt log", zap.Error(err))
		}
		next := task
		next.Attempt++
		if err := w.queue.EnqueueDelayed(ctx, next, retryAt); err != nil {
			w.log.Error("failed to schedule retry",
				zap.String("invoice_number", inv.InvoiceNumber),
				zap.Error(err),
			)
		}
		w.metrics.EmailsFailed.WithLabelValues("false").Inc()
		w.log.Warn("invoice email attempt failed",
			zap.String("invoice_number", inv.InvoiceNumber),
			zap.Int("attempt", task.Attempt),
			zap.Time("retry_at", retryAt),
			zap.Error(sendErr),
		)
		return
	}

	message := fmt.Sprintf("failed after %d attempts: %v", task.Attempt, sendErr)
	if err := w.repo.CompleteEmailLog(ctx, w.db, logID, domain.EmailStatusPermanentlyFailed, message, at); err != nil {
		w.log.Error("failed to close attempt log", zap.Error(err))
	}
	w.metrics.EmailsFailed.WithLabelValues("true").Inc()
	w.log.Error("invoice email permanently failed",
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.Int("attempts", task.Attempt),
		zap.Error(sendErr),
	)
}

func (w *Worker) recordExpired(ctx context.Context, inv *domain.Invoice, task Task, now time.Time) {
	entry := &domain.InvoiceEmailLog{
		ID:            w.genID.Generate(),
		InvoiceID:     inv.ID,
		Email:         inv.CustomerEmail,
		AttemptNumber: task.Attempt,
		IsManual:      task.Manual,
		Status:        domain.EmailStatusPermanentlyFailed,
		ErrorMessage:  "retry deadline exceeded",
		StartedAt:     now,
		CompletedAt:   &now,
		CreatedAt:     now,
	}
	if err := w.repo.AppendEmailLog(ctx, w.db, entry); err != nil {
		w.log.Error("failed to record expired send", zap.Error(err))
	}
	w.metrics.EmailsFailed.WithLabelValues("true").Inc()
	w.log.Error("invoice email expired before delivery",
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.Int("attempt", task.Attempt),
	)
}
