package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InvoiceType string

const (
	TypeMain    InvoiceType = "main"
	TypeDeposit InvoiceType = "deposit"
)

type InvoiceStatus string

const (
	StatusPending   InvoiceStatus = "pending"
	StatusSent      InvoiceStatus = "sent"
	StatusPaid      InvoiceStatus = "paid"
	StatusOverdue   InvoiceStatus = "overdue"
	StatusCancelled InvoiceStatus = "cancelled"
)

// Terminal reports whether no further automatic transition applies.
func (s InvoiceStatus) Terminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

// Invoice is the central billing entity. Customer fields are a snapshot taken
// at creation time; they are never refreshed from the registration, so the
// invoice stays historically accurate even if the customer record changes.
type Invoice struct {
	ID             snowflake.ID `json:"id" gorm:"primaryKey"`
	RegistrationID snowflake.ID `json:"registration_id" gorm:"not null;index"`

	CustomerName    string `json:"customer_name" gorm:"type:text;not null"`
	CustomerEmail   string `json:"customer_email" gorm:"type:text"`
	CustomerPhone   string `json:"customer_phone" gorm:"type:text"`
	CustomerAddress string `json:"customer_address" gorm:"type:text"`

	InvoiceNumber  string        `json:"invoice_number" gorm:"type:text;not null;uniqueIndex"`
	PackagePriceID *snowflake.ID `json:"package_price_id" gorm:"index"`
	ServiceType    string        `json:"service_type" gorm:"type:text"`
	Package        string        `json:"package" gorm:"type:text"`
	InvoiceType    InvoiceType   `json:"invoice_type" gorm:"type:text;not null;index"`
	Description    string        `json:"description" gorm:"type:text"`

	Amount        decimal.Decimal `json:"amount" gorm:"type:numeric(12,2);not null"`
	PaymentPeriod string          `json:"payment_period" gorm:"type:text"`

	BillingDate     time.Time  `json:"billing_date" gorm:"not null;index"`
	DueDate         time.Time  `json:"due_date" gorm:"not null;index"`
	NextBillingDate *time.Time `json:"next_billing_date" gorm:"index"`

	Status      InvoiceStatus `json:"status" gorm:"type:text;not null;default:'pending';index"`
	IsActive    bool          `json:"is_active" gorm:"not null;default:false"`
	IsRecurring bool          `json:"is_recurring" gorm:"not null;default:false"`

	SentAt *time.Time `json:"sent_at"`
	PaidAt *time.Time `json:"paid_at"`
	Notes  string     `json:"notes" gorm:"type:text"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Invoice) TableName() string { return "invoices" }

type EmailLogStatus string

const (
	EmailStatusAttempting        EmailLogStatus = "attempting"
	EmailStatusSent              EmailLogStatus = "sent"
	EmailStatusFailed            EmailLogStatus = "failed"
	EmailStatusPermanentlyFailed EmailLogStatus = "permanently_failed"
	EmailStatusDispatchFailed    EmailLogStatus = "dispatch_failed"
)

// InvoiceEmailLog is the append-only audit trail of send attempts. The most
// recent entry for an invoice reflects its current send state; a sent entry
// suppresses further automatic sends.
type InvoiceEmailLog struct {
	ID            snowflake.ID   `json:"id" gorm:"primaryKey"`
	InvoiceID     snowflake.ID   `json:"invoice_id" gorm:"not null;index"`
	Email         string         `json:"email" gorm:"type:text"`
	AttemptNumber int            `json:"attempt_number" gorm:"not null;default:1"`
	IsManual      bool           `json:"is_manual" gorm:"not null;default:false"`
	Status        EmailLogStatus `json:"status" gorm:"type:text;not null;index"`
	ErrorMessage  string         `json:"error_message" gorm:"type:text"`
	StartedAt     time.Time      `json:"started_at" gorm:"not null"`
	CompletedAt   *time.Time     `json:"completed_at"`
	CreatedAt     time.Time      `json:"created_at"`
}

func (InvoiceEmailLog) TableName() string { return "invoice_email_logs" }

// InvoiceSequence serializes invoice numbering per calendar month. The row is
// upserted atomically, so concurrent creators never observe the same value.
type InvoiceSequence struct {
	Period    string `gorm:"primaryKey;type:text"`
	LastValue int64  `gorm:"not null"`
}

func (InvoiceSequence) TableName() string { return "invoice_sequences" }

// Stats is the aggregate reporting payload returned to admin callers.
type Stats struct {
	TotalInvoices   int64 `json:"total_invoices"`
	MainInvoices    int64 `json:"main_invoices"`
	DepositInvoices int64 `json:"deposit_invoices"`
	PendingInvoices int64 `json:"pending_invoices"`
	SentInvoices    int64 `json:"sent_invoices"`
	PaidInvoices    int64 `json:"paid_invoices"`
	OverdueInvoices int64 `json:"overdue_invoices"`

	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	PendingRevenue decimal.Decimal `json:"pending_revenue"`
	OverdueRevenue decimal.Decimal `json:"overdue_revenue"`
	DepositRevenue decimal.Decimal `json:"deposit_revenue"`
	ServiceRevenue decimal.Decimal `json:"service_revenue"`
}

// ListFilter is the explicit filter-criteria struct consumed by the single
// parameterized list query.
type ListFilter struct {
	Status         InvoiceStatus `form:"status"`
	InvoiceType    InvoiceType   `form:"invoice_type"`
	IsActive       *bool         `form:"is_active"`
	RegistrationID snowflake.ID  `form:"-"`
	CustomerEmail  string        `form:"customer_email"`
	CustomerName   string        `form:"customer_name"`
	Search         string        `form:"search"`
	DueBefore      *time.Time    `form:"-"`
	DueAfter       *time.Time    `form:"-"`
}
