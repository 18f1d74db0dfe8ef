package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	registrationdomain "github.com/fibrewavelabs/fibrewave/internal/registration/domain"
	"github.com/fibrewavelabs/fibrewave/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() registrationdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, reg *registrationdomain.Registration) error {
	return db.WithContext(ctx).Create(reg).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*registrationdomain.Registration, error) {
	var reg registrationdomain.Registration
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&reg).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &reg, nil
}

func (r *repo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*registrationdomain.Registration, error) {
	lock := ""
	if tx.Dialector.Name() == "postgres" {
		lock = " FOR UPDATE"
	}

	var reg registrationdomain.Registration
	err := tx.WithContext(ctx).Raw(
		`SELECT * FROM registrations WHERE id = ? AND deleted_at IS NULL`+lock,
		id,
	).Scan(&reg).Error
	if err != nil {
		return nil, err
	}
	if reg.ID == 0 {
		return nil, nil
	}
	return &reg, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter registrationdomain.ListFilter, page pagination.Pagination) ([]*registrationdomain.Registration, error) {
	query := db.WithContext(ctx).Model(&registrationdomain.Registration{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ServiceType != "" {
		query = query.Where("service_type = ?", filter.ServiceType)
	}
	if filter.Package != "" {
		query = query.Where("package = ?", filter.Package)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR surname LIKE ? OR email LIKE ? OR phone LIKE ?", like, like, like, like)
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

	var items []*registrationdomain.Registration
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) UpdateContact(ctx context.Context, db *gorm.DB, reg *registrationdomain.Registration) error {
	return db.WithContext(ctx).Exec(
		`UPDATE registrations
		 SET phone = ?, alternative_phone = ?, email = ?, location = ?, address = ?,
		     installation_date = ?, comments = ?, updated_at = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		reg.Phone,
		reg.AlternativePhone,
		reg.Email,
		reg.Location,
		reg.Address,
		reg.InstallationDate,
		reg.Comments,
		reg.UpdatedAt,
		reg.ID,
	).Error
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status registrationdomain.RegistrationStatus, processedAt *time.Time, at time.Time) error {
	if processedAt != nil {
		return db.WithContext(ctx).Exec(
			`UPDATE registrations SET status = ?, processed_at = ?, updated_at = ?
			 WHERE id = ? AND deleted_at IS NULL`,
			status, processedAt, at, id,
		).Error
	}
	return db.WithContext(ctx).Exec(
		`UPDATE registrations SET status = ?, updated_at = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		status, at, id,
	).Error
}

func (r *repo) SoftDelete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&registrationdomain.Registration{}).Error
}

func (r *repo) CountByStatus(ctx context.Context, db *gorm.DB) (registrationdomain.StatusCounts, error) {
	var counts registrationdomain.StatusCounts
	err := db.WithContext(ctx).Raw(
		`SELECT
		   COUNT(*) AS total,
		   COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0) AS pending,
		   COALESCE(SUM(CASE WHEN status = 'confirmed' THEN 1 ELSE 0 END), 0) AS confirmed,
		   COALESCE(SUM(CASE WHEN status = 'in_progress' THEN 1 ELSE 0 END), 0) AS in_progress,
		   COALESCE(SUM(CASE WHEN status = 'processed' THEN 1 ELSE 0 END), 0) AS processed,
		   COALESCE(SUM(CASE WHEN status = 'cancelled' THEN 1 ELSE 0 END), 0) AS cancelled
		 FROM registrations WHERE deleted_at IS NULL`,
	).Scan(&counts).Error
	return counts, err
}
