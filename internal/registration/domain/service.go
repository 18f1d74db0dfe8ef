package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/fibrewavelabs/fibrewave/pkg/db/pagination"
)

type CreateRegistrationRequest struct {
	Name             string     `json:"name"`
	Surname          string     `json:"surname"`
	Phone            string     `json:"phone"`
	AlternativePhone string     `json:"alternative_phone"`
	Email            string     `json:"email"`
	Location         string     `json:"location"`
	Address          string     `json:"address"`
	ServiceType      string     `json:"service_type"`
	Package          string     `json:"package"`
	InstallationDate *time.Time `json:"installation_date"`
	PaymentPeriod    string     `json:"payment_period"`
	DepositPayment   string     `json:"deposit_payment"`
	HowDidYouKnow    string     `json:"how_did_you_know"`
	Comments         string     `json:"comments"`
}

type UpdateRegistrationRequest struct {
	Phone            *string    `json:"phone"`
	AlternativePhone *string    `json:"alternative_phone"`
	Email            *string    `json:"email"`
	Location         *string    `json:"location"`
	Address          *string    `json:"address"`
	InstallationDate *time.Time `json:"installation_date"`
	Comments         *string    `json:"comments"`
}

type Service interface {
	Create(ctx context.Context, req CreateRegistrationRequest) (*Registration, error)
	Get(ctx context.Context, id snowflake.ID) (*Registration, error)
	List(ctx context.Context, filter ListFilter, page pagination.Pagination) ([]*Registration, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateRegistrationRequest) (*Registration, error)

	// UpdateStatus moves a registration through its lifecycle. The transition
	// into processed creates the initial invoices in the same transaction and
	// activates main invoices once the transaction has committed.
	UpdateStatus(ctx context.Context, id snowflake.ID, status RegistrationStatus) (*Registration, error)

	Delete(ctx context.Context, id snowflake.ID) error
	Stats(ctx context.Context) (StatusCounts, error)
}
