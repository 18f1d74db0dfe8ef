package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// CompanySetting is a key/value configuration row consumed by the invoice
// renderer (company name, bank details, terms text).
type CompanySetting struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	Key         string       `json:"key" gorm:"type:text;not null;uniqueIndex"`
	Value       string       `json:"value" gorm:"type:text"`
	Type        string       `json:"type" gorm:"type:text;default:'text'"`
	Group       string       `json:"group" gorm:"column:group_name;type:text"`
	Label       string       `json:"label" gorm:"type:text"`
	Description string       `json:"description" gorm:"type:text"`
	IsRequired  bool         `json:"is_required"`
	SortOrder   int          `json:"sort_order"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (CompanySetting) TableName() string { return "company_settings" }

var ErrSettingNotFound = errors.New("setting_not_found")
