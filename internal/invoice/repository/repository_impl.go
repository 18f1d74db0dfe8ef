package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/fibrewavelabs/fibrewave/internal/invoice/domain"
	"github.com/fibrewavelabs/fibrewave/pkg/db/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() invoicedomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, inv *invoicedomain.Invoice) error {
	return db.WithContext(ctx).Create(inv).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*invoicedomain.Invoice, error) {
	var inv invoicedomain.Invoice
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&inv).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

func (r *repo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*invoicedomain.Invoice, error) {
	query := tx.WithContext(ctx)
	if tx.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var inv invoicedomain.Invoice
	err := query.Where("id = ?", id).First(&inv).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

func (r *repo) FindByRegistration(ctx context.Context, db *gorm.DB, registrationID snowflake.ID) ([]invoicedomain.Invoice, error) {
	var items []invoicedomain.Invoice
	err := db.WithContext(ctx).
		Where("registration_id = ?", registrationID).
		Order("created_at DESC, id DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter invoicedomain.ListFilter, page pagination.Pagination) ([]*invoicedomain.Invoice, error) {
	query := db.WithContext(ctx).Model(&invoicedomain.Invoice{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.InvoiceType != "" {
		query = query.Where("invoice_type = ?", filter.InvoiceType)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.RegistrationID != 0 {
		query = query.Where("registration_id = ?", filter.RegistrationID)
	}
	if filter.CustomerEmail != "" {
		query = query.Where("customer_email LIKE ?", "%"+filter.CustomerEmail+"%")
	}
	if filter.CustomerName != "" {
		query = query.Where("customer_name LIKE ?", "%"+filter.CustomerName+"%")
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("invoice_number LIKE ? OR customer_name LIKE ? OR customer_email LIKE ?", like, like, like)
	}
	if filter.DueBefore != nil {
		query = query.Where("due_date < ?", *filter.DueBefore)
	}
	if filter.DueAfter != nil {
		query = query.Where("due_date >= ?", *filter.DueAfter)
	}

	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return nil, err
		}
		createdAt, err := time.Parse(time.RFC3339Nano, cursor.CreatedAt)
		if err != nil {
			return nil, pagination.ErrInvalidPageToken
		}
		id, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return nil, pagination.ErrInvalidPageToken
		}
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", createdAt, createdAt, id)
	}

	query = query.Order("created_at DESC, id DESC")
	if page.PageSize > 0 {
		query = query.Limit(page.PageSize + 1)
	}

	var items []*invoicedomain.Invoice
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// NextInvoiceNumber upserts the month bucket's sequence row and reads back
// the incremented value in the same statement, so two creators inside
// concurrent transactions can never take the same number.
func (r *repo) NextInvoiceNumber(ctx context.Context, db *gorm.DB, prefix string, now time.Time) (string, error) {
	period := now.Format("200601")

	var lastValue int64
	err := db.WithContext(ctx).Raw(
		`INSERT INTO invoice_sequences (period, last_value) VALUES (?, 1)
		 ON CONFLICT (period) DO UPDATE SET last_value = invoice_sequences.last_value + 1
		 RETURNING last_value`,
		period,
	).Scan(&lastValue).Error
	if err != nil {
		return "", fmt.Errorf("reserve invoice number: %w", err)
	}

	return fmt.Sprintf("%s-%s-%04d", strings.TrimSpace(prefix), period, lastValue), nil
}

func (r *repo) MarkSent(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error {
	// Only a pending invoice moves to sent, and sent_at is first-write-wins.
	// Anything else (already sent, paid meanwhile) is a benign no-op.
	return db.WithContext(ctx).Exec(
		`UPDATE invoices SET status = ?, sent_at = ?, updated_at = ?
		 WHERE id = ? AND status = ? AND sent_at IS NULL AND deleted_at IS NULL`,
		invoicedomain.StatusSent, at, at,
		id, invoicedomain.StatusPending,
	).Error
}

func (r *repo) MarkPaid(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE invoices SET status = ?, paid_at = ?, updated_at = ?
		 WHERE id = ? AND status IN (?, ?, ?) AND paid_at IS NULL AND deleted_at IS NULL`,
		invoicedomain.StatusPaid, at, at,
		id,
		invoicedomain.StatusPending, invoicedomain.StatusSent, invoicedomain.StatusOverdue,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) Cancel(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE invoices SET status = ?, updated_at = ?
		 WHERE id = ? AND status NOT IN (?, ?) AND deleted_at IS NULL`,
		invoicedomain.StatusCancelled, at,
		id,
		invoicedomain.StatusPaid, invoicedomain.StatusCancelled,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) SetActive(ctx context.Context, db *gorm.DB, id snowflake.ID, active bool, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE invoices SET is_active = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		active, at, id,
	).Error
}

func (r *repo) ActivateMain(ctx context.Context, db *gorm.DB, registrationID snowflake.ID, at time.Time) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE invoices SET is_active = ?, updated_at = ?
		 WHERE registration_id = ? AND invoice_type = ? AND is_active = ? AND deleted_at IS NULL`,
		true, at,
		registrationID, invoicedomain.TypeMain, false,
	)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repo) ClearNextBillingDate(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE invoices SET next_billing_date = NULL, updated_at = ? WHERE id = ?`,
		at, id,
	).Error
}

func (r *repo) UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Model(&invoicedomain.Invoice{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *repo) SoftDelete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&invoicedomain.Invoice{}).Error
}

func (r *repo) ListDueForRecurrence(ctx context.Context, tx *gorm.DB, day time.Time, limit int) ([]invoicedomain.Invoice, error) {
	if limit <= 0 {
		limit = 200
	}
	_, dayEnd := dayBounds(day)

	// Anything due on or before day is picked up, so a sweep that was down
	// for a few days still drains its backlog. No row locks here; the
	// per-item transaction re-locks each predecessor before writing.
	var items []invoicedomain.Invoice
	err := tx.WithContext(ctx).Raw(
		`SELECT * FROM invoices
		 WHERE next_billing_date < ?
		   AND is_recurring = ? AND is_active = ?
		   AND invoice_type = ? AND status <> ?
		   AND deleted_at IS NULL
		 ORDER BY id
		 LIMIT ?`,
		dayEnd,
		true, true,
		invoicedomain.TypeMain, invoicedomain.StatusCancelled,
		limit,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListDueForSending(ctx context.Context, db *gorm.DB, day time.Time) ([]invoicedomain.Invoice, error) {
	dayStart, dayEnd := dayBounds(day)
	var items []invoicedomain.Invoice
	err := db.WithContext(ctx).
		Where("billing_date >= ? AND billing_date < ?", dayStart, dayEnd).
		Where("status = ?", invoicedomain.StatusPending).
		Where("is_active = ?", true).
		Order("id").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) MarkOverdue(ctx context.Context, db *gorm.DB, day time.Time, at time.Time) (int64, error) {
	dayStart, _ := dayBounds(day)
	res := db.WithContext(ctx).Exec(
		`UPDATE invoices SET status = ?, updated_at = ?
		 WHERE due_date < ? AND status IN (?, ?) AND deleted_at IS NULL`,
		invoicedomain.StatusOverdue, at,
		dayStart,
		invoicedomain.StatusSent, invoicedomain.StatusPending,
	)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repo) AppendEmailLog(ctx context.Context, db *gorm.DB, log *invoicedomain.InvoiceEmailLog) error {
	return db.WithContext(ctx).Create(log).Error
}

func (r *repo) CompleteEmailLog(ctx context.Context, db *gorm.DB, id snowflake.ID, status invoicedomain.EmailLogStatus, errorMessage string, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE invoice_email_logs SET status = ?, error_message = ?, completed_at = ? WHERE id = ?`,
		status, errorMessage, at, id,
	).Error
}

func (r *repo) LatestSentLog(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) (*invoicedomain.InvoiceEmailLog, error) {
	var log invoicedomain.InvoiceEmailLog
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM invoice_email_logs
		 WHERE invoice_id = ? AND status = ?
		 ORDER BY started_at DESC, id DESC LIMIT 1`,
		invoiceID, invoicedomain.EmailStatusSent,
	).Scan(&log).Error
	if err != nil {
		return nil, err
	}
	if log.ID == 0 {
		return nil, nil
	}
	return &log, nil
}

func (r *repo) ListEmailLogs(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]invoicedomain.InvoiceEmailLog, error) {
	var logs []invoicedomain.InvoiceEmailLog
	err := db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("started_at DESC, id DESC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *repo) ListFailedInvoiceIDs(ctx context.Context, db *gorm.DB, since time.Time) ([]snowflake.ID, error) {
	// Invoices with any delivery on record are excluded; only ones that
	// failed and never went out qualify for the retry sweep.
	var ids []snowflake.ID
	err := db.WithContext(ctx).Raw(
		`SELECT DISTINCT invoice_id FROM invoice_email_logs
		 WHERE status = ? AND started_at >= ?
		   AND invoice_id NOT IN (
			SELECT invoice_id FROM invoice_email_logs WHERE status = ?
		   )`,
		invoicedomain.EmailStatusFailed, since,
		invoicedomain.EmailStatusSent,
	).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repo) Stats(ctx context.Context, db *gorm.DB) (invoicedomain.Stats, error) {
	var stats invoicedomain.Stats
	err := db.WithContext(ctx).Raw(
		`SELECT
			COUNT(*) AS total_invoices,
			COALESCE(SUM(CASE WHEN invoice_type = 'main' THEN 1 ELSE 0 END), 0) AS main_invoices,
			COALESCE(SUM(CASE WHEN invoice_type = 'deposit' THEN 1 ELSE 0 END), 0) AS deposit_invoices,
			COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0) AS pending_invoices,
			COALESCE(SUM(CASE WHEN status = 'sent' THEN 1 ELSE 0 END), 0) AS sent_invoices,
			COALESCE(SUM(CASE WHEN status = 'paid' THEN 1 ELSE 0 END), 0) AS paid_invoices,
			COALESCE(SUM(CASE WHEN status = 'overdue' THEN 1 ELSE 0 END), 0) AS overdue_invoices,
			COALESCE(SUM(CASE WHEN status = 'paid' THEN amount ELSE 0 END), 0) AS total_revenue,
			COALESCE(SUM(CASE WHEN status IN ('pending', 'sent') THEN amount ELSE 0 END), 0) AS pending_revenue,
			COALESCE(SUM(CASE WHEN status = 'overdue' THEN amount ELSE 0 END), 0) AS overdue_revenue,
			COALESCE(SUM(CASE WHEN invoice_type = 'deposit' AND status = 'paid' THEN amount ELSE 0 END), 0) AS deposit_revenue,
			COALESCE(SUM(CASE WHEN invoice_type = 'main' AND status = 'paid' THEN amount ELSE 0 END), 0) AS service_revenue
		 FROM invoices
		 WHERE deleted_at IS NULL`,
	).Scan(&stats).Error
	if err != nil {
		return invoicedomain.Stats{}, err
	}
	return stats, nil
}

func dayBounds(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}
