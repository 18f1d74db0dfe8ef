package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/fibrewavelabs/fibrewave/internal/cache"
	"github.com/fibrewavelabs/fibrewave/internal/clock"
	"github.com/fibrewavelabs/fibrewave/internal/settings/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const settingCacheTTL = time.Hour

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
}

type Provider struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock

	values *cache.TTLCache[string, string]
}

func New(p Params) domain.Provider {
	return &Provider{
		db:     p.DB,
		log:    p.Log.Named("settings.provider"),
		genID:  p.GenID,
		clock:  p.Clock,
		values: cache.NewTTLCache[string, string](),
	}
}

func (p *Provider) Get(ctx context.Context, key, fallback string) (string, error) {
	key = strings.TrimSpace(key)
	if cached, ok := p.values.Get(key); ok {
		return cached, nil
	}

	var setting domain.CompanySetting
	err := p.db.WithContext(ctx).Raw(
		`SELECT id, key, value FROM company_settings WHERE key = ? LIMIT 1`, key,
	).Scan(&setting).Error
	if err != nil {
		return "", err
	}
	if setting.ID == 0 {
		return fallback, nil
	}

	p.values.Set(key, setting.Value, settingCacheTTL)
	return setting.Value, nil
}

func (p *Provider) All(ctx context.Context) (map[string]string, error) {
	items, err := p.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(items))
	for _, item := range items {
		out[item.Key] = item.Value
	}
	return out, nil
}

func (p *Provider) List(ctx context.Context) ([]domain.CompanySetting, error) {
	var items []domain.CompanySetting
	err := p.db.WithContext(ctx).
		Model(&domain.CompanySetting{}).
		Order("sort_order ASC, key ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (p *Provider) Set(ctx context.Context, key, value string) (*domain.CompanySetting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, domain.ErrSettingNotFound
	}
	now := p.clock.Now(ctx)

	var existing domain.CompanySetting
	err := p.db.WithContext(ctx).Raw(
		`SELECT id, key, value, type, group_name, label, description, is_required, sort_order, created_at, updated_at
		 FROM company_settings WHERE key = ? LIMIT 1`, key,
	).Scan(&existing).Error
	if err != nil {
		return nil, err
	}

	if existing.ID == 0 {
		existing = domain.CompanySetting{
			ID:        p.genID.Generate(),
			Key:       key,
			Value:     value,
			Type:      "text",
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := p.db.WithContext(ctx).Exec(
			`INSERT INTO company_settings (id, key, value, type, group_name, label, description, is_required, sort_order, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			existing.ID, existing.Key, existing.Value, existing.Type,
			existing.Group, existing.Label, existing.Description,
			existing.IsRequired, existing.SortOrder, existing.CreatedAt, existing.UpdatedAt,
		).Error; err != nil {
			return nil, err
		}
	} else {
		existing.Value = value
		existing.UpdatedAt = now
		if err := p.db.WithContext(ctx).Exec(
			`UPDATE company_settings SET value = ?, updated_at = ? WHERE key = ?`,
			value, now, key,
		).Error; err != nil {
			return nil, err
		}
	}

	p.values.Delete(key)
	p.log.Info("company setting updated", zap.String("key", key))
	return &existing, nil
}

func (p *Provider) Delete(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	res := p.db.WithContext(ctx).Exec(`DELETE FROM company_settings WHERE key = ?`, key)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrSettingNotFound
	}
	p.values.Delete(key)
	return nil
}
