package migration

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/fibrewavelabs/fibrewave/internal/catalog/domain"
	invoicedomain "github.com/fibrewavelabs/fibrewave/internal/invoice/domain"
	registrationdomain "github.com/fibrewavelabs/fibrewave/internal/registration/domain"
	settingsdomain "github.com/fibrewavelabs/fibrewave/internal/settings/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Run migrates the schema and seeds baseline data. It must be invoked
// explicitly by the migrate entrypoint before any serving process starts.
func Run(db *gorm.DB, genID *snowflake.Node, log *zap.Logger) error {
	log = log.Named("migration")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if db.Dialector.Name() == "postgres" {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		unlock, err := acquireAdvisoryLock(ctx, sqlDB)
		if err != nil {
			return err
		}
		defer func() {
			_ = unlock(context.Background())
		}()
	}

	log.Info("migrating schema")
	if err := db.WithContext(ctx).AutoMigrate(
		&registrationdomain.Registration{},
		&catalogdomain.PackagePrice{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceEmailLog{},
		&invoicedomain.InvoiceSequence{},
		&settingsdomain.CompanySetting{},
	); err != nil {
		return err
	}

	if err := seedSettings(ctx, db, genID, log); err != nil {
		return err
	}
	log.Info("migration complete")
	return nil
}

// seedSettings inserts the settings the invoice renderer expects, without
// overwriting values an operator has already changed.
func seedSettings(ctx context.Context, db *gorm.DB, genID *snowflake.Node, log *zap.Logger) error {
	defaults := []settingsdomain.CompanySetting{
		{Key: settingsdomain.KeyCompanyName, Value: "FibreWave", Group: "company", Label: "Company name", IsRequired: true, SortOrder: 1},
		{Key: settingsdomain.KeyCompanyAddress, Value: "", Group: "company", Label: "Company address", SortOrder: 2},
		{Key: settingsdomain.KeyCompanyPhone, Value: "", Group: "company", Label: "Company phone", SortOrder: 3},
		{Key: settingsdomain.KeyCompanyEmail, Value: "billing@fibrewave.net", Group: "company", Label: "Billing email", SortOrder: 4},
		{Key: settingsdomain.KeyBankName, Value: "", Group: "banking", Label: "Bank name", SortOrder: 10},
		{Key: settingsdomain.KeyBankAccount, Value: "", Group: "banking", Label: "Account number", SortOrder: 11},
		{Key: settingsdomain.KeyBankBranch, Value: "", Group: "banking", Label: "Branch code", SortOrder: 12},
		{Key: settingsdomain.KeyPaymentTerms, Value: "Payment due by the due date shown.", Group: "invoice", Label: "Payment terms", SortOrder: 20},
		{Key: settingsdomain.KeyInvoiceFooter, Value: "", Group: "invoice", Label: "Invoice footer", SortOrder: 21},
		{Key: settingsdomain.KeyCurrencySymbol, Value: "R", Group: "invoice", Label: "Currency symbol", SortOrder: 22},
	}

	now := time.Now().UTC()
	seeded := 0
	for _, setting := range defaults {
		var count int64
		if err := db.WithContext(ctx).
			Model(&settingsdomain.CompanySetting{}).
			Where("key = ?", setting.Key).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		setting.ID = genID.Generate()
		setting.Type = "text"
		setting.CreatedAt = now
		setting.UpdatedAt = now
		if err := db.WithContext(ctx).Create(&setting).Error; err != nil {
			return err
		}
		seeded++
	}
	if seeded > 0 {
		log.Info("seeded company settings", zap.Int("count", seeded))
	}
	return nil
}
