package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// PackagePrice is a catalog entry keyed by (service_type, package).
// Prices are copied into invoices at creation time; editing a catalog entry
// never changes an existing invoice.
type PackagePrice struct {
	ID          snowflake.ID    `json:"id" gorm:"primaryKey"`
	ServiceType string          `json:"service_type" gorm:"type:text;not null;uniqueIndex:idx_package_prices_key,priority:1"`
	Package     string          `json:"package" gorm:"type:text;not null;uniqueIndex:idx_package_prices_key,priority:2"`
	Description string          `json:"description" gorm:"type:text"`
	Price       decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (PackagePrice) TableName() string { return "package_prices" }

var (
	ErrPackagePriceNotFound = errors.New("package_price_not_found")
	ErrDuplicatePackage     = errors.New("duplicate_package")
	ErrInvalidPackagePrice  = errors.New("invalid_package_price")
)
