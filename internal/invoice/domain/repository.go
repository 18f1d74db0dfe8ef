package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/fibrewavelabs/fibrewave/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, inv *Invoice) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invoice, error)
	// FindByIDForUpdate locks the row on postgres for the duration of the
	// caller's transaction.
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*Invoice, error)
	FindByRegistration(ctx context.Context, db *gorm.DB, registrationID snowflake.ID) ([]Invoice, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]*Invoice, error)

	// NextInvoiceNumber reserves the next sequence value for the month bucket
	// of now, atomically. Safe under concurrent creators.
	NextInvoiceNumber(ctx context.Context, db *gorm.DB, prefix string, now time.Time) (string, error)

	// Targeted field updates. Whole-record writes are forbidden for status and
	// activation so concurrent writers cannot clobber each other.
	MarkSent(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error
	MarkPaid(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) (bool, error)
	Cancel(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) (bool, error)
	SetActive(ctx context.Context, db *gorm.DB, id snowflake.ID, active bool, at time.Time) error
	ActivateMain(ctx context.Context, db *gorm.DB, registrationID snowflake.ID, at time.Time) (int64, error)
	ClearNextBillingDate(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error
	UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
	SoftDelete(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	// ListDueForRecurrence selects recurrence predecessors due on or before
	// the given day. The selection takes no row locks; each per-item
	// transaction locks its predecessor before writing.
	ListDueForRecurrence(ctx context.Context, tx *gorm.DB, day time.Time, limit int) ([]Invoice, error)
	ListDueForSending(ctx context.Context, db *gorm.DB, day time.Time) ([]Invoice, error)
	MarkOverdue(ctx context.Context, db *gorm.DB, day time.Time, at time.Time) (int64, error)

	AppendEmailLog(ctx context.Context, db *gorm.DB, log *InvoiceEmailLog) error
	CompleteEmailLog(ctx context.Context, db *gorm.DB, id snowflake.ID, status EmailLogStatus, errorMessage string, at time.Time) error
	LatestSentLog(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) (*InvoiceEmailLog, error)
	ListEmailLogs(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]InvoiceEmailLog, error)
	ListFailedInvoiceIDs(ctx context.Context, db *gorm.DB, since time.Time) ([]snowflake.ID, error)

	Stats(ctx context.Context, db *gorm.DB) (Stats, error)
}
