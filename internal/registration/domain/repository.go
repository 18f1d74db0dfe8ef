package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/fibrewavelabs/fibrewave/pkg/db/pagination"
	"gorm.io/gorm"
)

// ListFilter is the explicit filter-criteria struct for registration queries.
type ListFilter struct {
	Status      RegistrationStatus `form:"status"`
	ServiceType string             `form:"service_type"`
	Package     string             `form:"package"`
	Search      string             `form:"search"`
}

// StatusCounts backs the admin dashboard.
type StatusCounts struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	Confirmed  int64 `json:"confirmed"`
	InProgress int64 `json:"in_progress"`
	Processed  int64 `json:"processed"`
	Cancelled  int64 `json:"cancelled"`
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, reg *Registration) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Registration, error)
	// FindByIDForUpdate locks the row on postgres so concurrent processing
	// attempts serialize.
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*Registration, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]*Registration, error)
	UpdateContact(ctx context.Context, db *gorm.DB, reg *Registration) error
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status RegistrationStatus, processedAt *time.Time, at time.Time) error
	SoftDelete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	CountByStatus(ctx context.Context, db *gorm.DB) (StatusCounts, error)
}
