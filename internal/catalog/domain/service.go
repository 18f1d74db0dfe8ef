package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type CreatePackagePriceRequest struct {
	ServiceType string          `json:"service_type"`
	Package     string          `json:"package"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

type UpdatePackagePriceRequest struct {
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
}

type Service interface {
	// ResolvePrice returns the current catalog price for a service/package
	// pair, reading through an in-process cache.
	ResolvePrice(ctx context.Context, serviceType, pkg string) (*PackagePrice, error)

	Create(ctx context.Context, req CreatePackagePriceRequest) (*PackagePrice, error)
	Update(ctx context.Context, id snowflake.ID, req UpdatePackagePriceRequest) (*PackagePrice, error)
	Delete(ctx context.Context, id snowflake.ID) error
	Get(ctx context.Context, id snowflake.ID) (*PackagePrice, error)
	List(ctx context.Context) ([]PackagePrice, error)
	ListServiceTypes(ctx context.Context) ([]string, error)
	ListPackages(ctx context.Context, serviceType string) ([]PackagePrice, error)
}
