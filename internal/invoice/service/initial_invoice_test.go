package service

import (
	"context"
	"testing"
	"time"

	"github.com/fibrewavelabs/fibrewave/internal/invoice/domain"
	registrationdomain "github.com/fibrewavelabs/fibrewave/internal/registration/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreateInitialInvoiceSplitDeposit(t *testing.T) {
	h := newHarness(t)
	h.seedPrice(t, "Fibre", "100Mbps", 500)
	reg := h.seedRegistration(t, registrationdomain.PaymentPeriodFirst, "eft", registrationdomain.StatusProcessed)

	result := h.createInitial(t, reg)

	require.NotNil(t, result.Deposit)
	require.NotNil(t, result.Main)

	deposit := result.Deposit
	require.Equal(t, domain.TypeDeposit, deposit.InvoiceType)
	require.True(t, deposit.Amount.Equal(decimalFromInt(475)))
	require.True(t, deposit.IsActive)
	require.False(t, deposit.IsRecurring)
	require.Equal(t, registrationdomain.PaymentPeriodOneTime, deposit.PaymentPeriod)
	require.Equal(t, date(2025, time.January, 20), deposit.BillingDate)
	require.Equal(t, date(2025, time.January, 27), deposit.DueDate)
	require.Nil(t, deposit.NextBillingDate)

	main := result.Main
	require.Equal(t, domain.TypeMain, main.InvoiceType)
	require.True(t, main.Amount.Equal(decimalFromInt(975)), "package price plus the deferred half deposit")
	require.False(t, main.IsActive)
	require.True(t, main.IsRecurring)
	require.Equal(t, date(2025, time.February, 1), main.BillingDate)
	require.Equal(t, date(2025, time.March, 3), main.DueDate)
	require.NotNil(t, main.NextBillingDate)
	require.Equal(t, date(2025, time.March, 1), *main.NextBillingDate)

	// Numbers come from the same monthly sequence.
	require.Equal(t, "INV-202501-0001", deposit.InvoiceNumber)
	require.Equal(t, "INV-202501-0002", main.InvoiceNumber)

	// Customer snapshot is taken at creation time.
	require.Equal(t, "Thandi Mokoena", main.CustomerName)
	require.Equal(t, "thandi@example.com", main.CustomerEmail)
}

func TestCreateInitialInvoicePayLater(t *testing.T) {
	h := newHarness(t)
	h.seedPrice(t, "Fibre", "100Mbps", 500)
	reg := h.seedRegistration(t, registrationdomain.PaymentPeriodFirst, "Pay Later", registrationdomain.StatusProcessed)

	result := h.createInitial(t, reg)

	require.Nil(t, result.Deposit, "pay later produces no separate deposit invoice")
	require.NotNil(t, result.Main)
	require.True(t, result.Main.Amount.Equal(decimalFromInt(1450)), "package price plus the full deposit")
	require.False(t, result.Main.IsActive)
	require.True(t, result.Main.IsRecurring)

	var count int64
	require.NoError(t, h.db.Model(&domain.Invoice{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestCreateInitialInvoiceFifteenthPeriod(t *testing.T) {
	h := newHarness(t)
	h.seedPrice(t, "Fibre", "100Mbps", 500)
	reg := h.seedRegistration(t, registrationdomain.PaymentPeriodFifteenth, "cash", registrationdomain.StatusProcessed)

	result := h.createInitial(t, reg)

	// Anchor 2025-01-20 is past the 15th, so billing rolls to February 15.
	require.Equal(t, date(2025, time.February, 15), result.Main.BillingDate)
	require.NotNil(t, result.Main.NextBillingDate)
	require.Equal(t, date(2025, time.March, 15), *result.Main.NextBillingDate)
}

func TestCreateInitialInvoiceMissingPricingRollsBack(t *testing.T) {
	h := newHarness(t)
	reg := h.seedRegistration(t, registrationdomain.PaymentPeriodFirst, "eft", registrationdomain.StatusProcessed)

	err := h.db.Transaction(func(tx *gorm.DB) error {
		_, err := h.svc.CreateInitialInvoice(context.Background(), tx, reg)
		return err
	})
	require.ErrorIs(t, err, domain.ErrMissingPricing)

	var count int64
	require.NoError(t, h.db.Model(&domain.Invoice{}).Count(&count).Error)
	require.Zero(t, count, "nothing persists when pricing is missing")
}
