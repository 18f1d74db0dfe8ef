package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, p *PackagePrice) error
	Update(ctx context.Context, db *gorm.DB, p *PackagePrice) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*PackagePrice, error)
	FindByServiceAndPackage(ctx context.Context, db *gorm.DB, serviceType, pkg string) (*PackagePrice, error)
	List(ctx context.Context, db *gorm.DB) ([]PackagePrice, error)
	ListServiceTypes(ctx context.Context, db *gorm.DB) ([]string, error)
	ListPackages(ctx context.Context, db *gorm.DB, serviceType string) ([]PackagePrice, error)
}
