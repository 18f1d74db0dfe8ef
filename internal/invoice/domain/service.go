package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	registrationdomain "github.com/fibrewavelabs/fibrewave/internal/registration/domain"
	"github.com/fibrewavelabs/fibrewave/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreationResult is what initial invoice creation yields: a single combined
// main invoice for pay-later registrations, or a deposit/main pair otherwise.
type CreationResult struct {
	Deposit *Invoice `json:"deposit_invoice,omitempty"`
	Main    *Invoice `json:"main_invoice"`
}

type CreateInvoiceRequest struct {
	RegistrationID snowflake.ID     `json:"registration_id"`
	InvoiceType    InvoiceType      `json:"invoice_type"`
	Amount         decimal.Decimal  `json:"amount"`
	Description    string           `json:"description"`
	BillingDate    *time.Time       `json:"billing_date"`
	DueDate        *time.Time       `json:"due_date"`
	IsActive       bool             `json:"is_active"`
	Notes          string           `json:"notes"`
}

type UpdateInvoiceRequest struct {
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Notes       *string    `json:"notes"`
}

type RegistrationInvoices struct {
	Active   []Invoice `json:"active_invoices"`
	Inactive []Invoice `json:"inactive_invoices"`
}

// Sender dispatches an invoice email asynchronously. The boolean reports
// whether the task was accepted for delivery, not whether delivery succeeded.
type Sender interface {
	Send(ctx context.Context, inv *Invoice, manual bool) (bool, error)
}

type Service interface {
	// CreateInitialInvoice applies the deposit policy for a processed
	// registration. It writes through the supplied transaction; the caller
	// owns commit/rollback so creation stays all-or-nothing.
	CreateInitialInvoice(ctx context.Context, tx *gorm.DB, reg *registrationdomain.Registration) (*CreationResult, error)

	ActivateMainInvoices(ctx context.Context, registrationID snowflake.ID) (int64, error)
	GenerateRecurringInvoices(ctx context.Context) (int, error)
	SendInvoice(ctx context.Context, id snowflake.ID, manual bool) (bool, error)
	SendAutomaticInvoices(ctx context.Context) (int, error)
	RetryFailedInvoices(ctx context.Context, lookback time.Duration) (int, error)
	MarkOverdueInvoices(ctx context.Context) (int64, error)

	Create(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateInvoiceRequest) (*Invoice, error)
	Get(ctx context.Context, id snowflake.ID) (*Invoice, error)
	List(ctx context.Context, filter ListFilter, page pagination.Pagination) ([]*Invoice, error)
	ByRegistration(ctx context.Context, registrationID snowflake.ID) (RegistrationInvoices, error)
	Activate(ctx context.Context, id snowflake.ID) error
	MarkPaid(ctx context.Context, id snowflake.ID) error
	Cancel(ctx context.Context, id snowflake.ID) error
	Delete(ctx context.Context, id snowflake.ID) error
	EmailLogs(ctx context.Context, id snowflake.ID) ([]InvoiceEmailLog, error)

	Stats(ctx context.Context) (Stats, error)
}
