package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/fibrewavelabs/fibrewave/internal/catalog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() catalogdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, p *catalogdomain.PackagePrice) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO package_prices (id, service_type, package, description, price, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.ServiceType,
		p.Package,
		p.Description,
		p.Price,
		p.CreatedAt,
		p.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, p *catalogdomain.PackagePrice) error {
	return db.WithContext(ctx).Exec(
		`UPDATE package_prices SET description = ?, price = ?, updated_at = ? WHERE id = ?`,
		p.Description,
		p.Price,
		p.UpdatedAt,
		p.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM package_prices WHERE id = ?`, id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*catalogdomain.PackagePrice, error) {
	var p catalogdomain.PackagePrice
	err := db.WithContext(ctx).Raw(
		`SELECT id, service_type, package, description, price, created_at, updated_at
		 FROM package_prices WHERE id = ?`,
		id,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) FindByServiceAndPackage(ctx context.Context, db *gorm.DB, serviceType, pkg string) (*catalogdomain.PackagePrice, error) {
	var p catalogdomain.PackagePrice
	err := db.WithContext(ctx).Raw(
		`SELECT id, service_type, package, description, price, created_at, updated_at
		 FROM package_prices WHERE service_type = ? AND package = ? LIMIT 1`,
		serviceType,
		pkg,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]catalogdomain.PackagePrice, error) {
	var items []catalogdomain.PackagePrice
	err := db.WithContext(ctx).
		Model(&catalogdomain.PackagePrice{}).
		Order("service_type ASC, package ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListServiceTypes(ctx context.Context, db *gorm.DB) ([]string, error) {
	var types []string
	err := db.WithContext(ctx).Raw(
		`SELECT DISTINCT service_type FROM package_prices ORDER BY service_type`,
	).Scan(&types).Error
	if err != nil {
		return nil, err
	}
	return types, nil
}

func (r *repo) ListPackages(ctx context.Context, db *gorm.DB, serviceType string) ([]catalogdomain.PackagePrice, error) {
	var items []catalogdomain.PackagePrice
	err := db.WithContext(ctx).
		Model(&catalogdomain.PackagePrice{}).
		Where("service_type = ?", serviceType).
		Order("package ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
