package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type RegistrationStatus string

const (
	StatusPending    RegistrationStatus = "pending"
	StatusConfirmed  RegistrationStatus = "confirmed"
	StatusInProgress RegistrationStatus = "in_progress"
	StatusProcessed  RegistrationStatus = "processed"
	StatusCancelled  RegistrationStatus = "cancelled"
)

func (s RegistrationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusProcessed, StatusCancelled:
		return true
	}
	return false
}

const (
	PaymentPeriodFirst     = "1st of every month"
	PaymentPeriodFifteenth = "15th of every month"
	PaymentPeriodOneTime   = "one-time"

	DepositPayLater = "pay later"
)

// Registration is a customer's service order. Invoices may only be generated
// once it reaches processed.
type Registration struct {
	ID snowflake.ID `json:"id" gorm:"primaryKey"`

	Name             string `json:"name" gorm:"type:text;not null"`
	Surname          string `json:"surname" gorm:"type:text;not null"`
	Phone            string `json:"phone" gorm:"type:text"`
	AlternativePhone string `json:"alternative_phone" gorm:"type:text"`
	Email            string `json:"email" gorm:"type:text;not null;index"`
	Location         string `json:"location" gorm:"type:text"`
	Address          string `json:"address" gorm:"type:text"`

	ServiceType    string        `json:"service_type" gorm:"type:text;not null"`
	Package        string        `json:"package" gorm:"type:text;not null"`
	PackagePriceID *snowflake.ID `json:"package_price_id" gorm:"index"`

	InstallationDate *time.Time `json:"installation_date"`
	PaymentPeriod    string     `json:"payment_period" gorm:"type:text;not null"`
	DepositPayment   string     `json:"deposit_payment" gorm:"type:text;not null"`

	HowDidYouKnow string `json:"how_did_you_know" gorm:"type:text"`
	Comments      string `json:"comments" gorm:"type:text"`

	Status      RegistrationStatus `json:"status" gorm:"type:text;not null;default:'pending';index"`
	ProcessedAt *time.Time         `json:"processed_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Registration) TableName() string { return "registrations" }

func (r *Registration) FullName() string {
	return strings.TrimSpace(r.Name + " " + r.Surname)
}

// PaysDepositLater reports whether the whole installation deposit rides on
// the first main invoice instead of a separate upfront deposit invoice.
func (r *Registration) PaysDepositLater() bool {
	return strings.EqualFold(strings.TrimSpace(r.DepositPayment), DepositPayLater)
}

var phoneJunk = regexp.MustCompile(`[^\d+]`)

// NormalizeEmail lowercases and trims an address before persistence.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizePhone strips everything except digits and a leading plus.
func NormalizePhone(phone string) string {
	return phoneJunk.ReplaceAllString(strings.TrimSpace(phone), "")
}

var (
	ErrRegistrationNotFound = errors.New("registration_not_found")
	ErrInvalidRegistration  = errors.New("invalid_registration")
	ErrInvalidStatus        = errors.New("invalid_registration_status")
	ErrAlreadyProcessed     = errors.New("registration_already_processed")
	ErrRegistrationTerminal = errors.New("registration_cancelled")
	ErrUnknownPackage       = errors.New("unknown_service_package")
)
