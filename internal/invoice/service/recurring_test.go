package service

import (
	"context"
	"testing"
	"time"

	"github.com/fibrewavelabs/fibrewave/internal/invoice/domain"
	registrationdomain "github.com/fibrewavelabs/fibrewave/internal/registration/domain"
	"github.com/stretchr/testify/require"
)

func TestGenerateRecurringInvoices(t *testing.T) {
	h := newHarness(t)
	h.seedPrice(t, "Fibre", "100Mbps", 500)
	reg := h.seedRegistration(t, registrationdomain.PaymentPeriodFirst, "eft", registrationdomain.StatusProcessed)
	result := h.createInitial(t, reg)

	ctx := context.Background()
	_, err := h.svc.ActivateMainInvoices(ctx, reg.ID)
	require.NoError(t, err)

	// Main invoice bills 2025-02-01 with next billing 2025-03-01.
	h.clk.Set(time.Date(2025, time.March, 1, 6, 0, 0, 0, time.UTC))

	generated, err := h.svc.GenerateRecurringInvoices(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, generated)

	var successor domain.Invoice
	require.NoError(t, h.db.Where("billing_date = ?", date(2025, time.March, 1)).First(&successor).Error)
	require.Equal(t, domain.TypeMain, successor.InvoiceType)
	require.True(t, successor.Amount.Equal(decimalFromInt(500)), "successor carries the package price only, no deposit")
	require.True(t, successor.IsActive)
	require.True(t, successor.IsRecurring)
	require.Equal(t, domain.StatusPending, successor.Status)
	require.Equal(t, date(2025, time.March, 31), successor.DueDate)
	require.NotNil(t, successor.NextBillingDate)
	require.Equal(t, date(2025, time.April, 1), *successor.NextBillingDate)

	// The predecessor hands over its recurrence pointer.
	pred, err := h.repo.FindByID(ctx, h.db, result.Main.ID)
	require.NoError(t, err)
	require.Nil(t, pred.NextBillingDate)

	// Running the sweep again generates nothing new.
	generated, err = h.svc.GenerateRecurringInvoices(ctx)
	require.NoError(t, err)
	require.Zero(t, generated)
}

func TestGenerateRecurringSkipsUnprocessedRegistration(t *testing.T) {
	h := newHarness(t)
	h.seedPrice(t, "Fibre", "100Mbps", 500)
	reg := h.seedRegistration(t, registrationdomain.PaymentPeriodFirst, "eft", registrationdomain.StatusProcessed)
	result := h.createInitial(t, reg)

	ctx := context.Background()
	_, err := h.svc.ActivateMainInvoices(ctx, reg.ID)
	require.NoError(t, err)

	// The registration is cancelled after processing; its line stops billing.
	now := h.clk.Now(ctx)
	require.NoError(t, h.regRepo.UpdateStatus(ctx, h.db, reg.ID, registrationdomain.StatusCancelled, nil, now))

	h.clk.Set(time.Date(2025, time.March, 1, 6, 0, 0, 0, time.UTC))
	generated, err := h.svc.GenerateRecurringInvoices(ctx)
	require.NoError(t, err)
	require.Zero(t, generated)

	// The pointer is kept, so reinstating the registration resumes billing.
	pred, err := h.repo.FindByID(ctx, h.db, result.Main.ID)
	require.NoError(t, err)
	require.NotNil(t, pred.NextBillingDate)
}

func TestGenerateRecurringPicksUpBacklog(t *testing.T) {
	h := newHarness(t)
	h.seedPrice(t, "Fibre", "100Mbps", 500)
	reg := h.seedRegistration(t, registrationdomain.PaymentPeriodFirst, "eft", registrationdomain.StatusProcessed)
	h.createInitial(t, reg)

	ctx := context.Background()
	_, err := h.svc.ActivateMainInvoices(ctx, reg.ID)
	require.NoError(t, err)

	// Sweep runs three days late; the due successor is still generated.
	h.clk.Set(time.Date(2025, time.March, 4, 6, 0, 0, 0, time.UTC))
	generated, err := h.svc.GenerateRecurringInvoices(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, generated)
}

func TestGenerateSuccessorNoOpsWhenChainClosed(t *testing.T) {
	h := newHarness(t)
	h.seedPrice(t, "Fibre", "100Mbps", 500)
	reg := h.seedRegistration(t, registrationdomain.PaymentPeriodFirst, "eft", registrationdomain.StatusProcessed)
	result := h.createInitial(t, reg)

	ctx := context.Background()
	_, err := h.svc.ActivateMainInvoices(ctx, reg.ID)
	require.NoError(t, err)

	today := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	h.clk.Set(today.Add(6 * time.Hour))

	// The pointer was cleared between selection and processing, as happens
	// when another run got to the row first.
	require.NoError(t, h.repo.ClearNextBillingDate(ctx, h.db, result.Main.ID, h.clk.Now(ctx)))

	generated, err := h.svc.generateSuccessor(ctx, result.Main.ID, today)
	require.NoError(t, err)
	require.False(t, generated)

	var count int64
	require.NoError(t, h.db.Model(&domain.Invoice{}).Count(&count).Error)
	require.EqualValues(t, 2, count, "no successor beyond the initial pair")
}

func TestMarkOverdueInvoices(t *testing.T) {
	h := newHarness(t)
	h.seedPrice(t, "Fibre", "100Mbps", 500)
	reg := h.seedRegistration(t, registrationdomain.PaymentPeriodFirst, "eft", registrationdomain.StatusProcessed)
	result := h.createInitial(t, reg)

	ctx := context.Background()
	_, err := h.svc.ActivateMainInvoices(ctx, reg.ID)
	require.NoError(t, err)

	// Deposit due 2025-01-27, main due 2025-03-03. A month later both are
	// unpaid and past due.
	h.clk.Set(time.Date(2025, time.April, 10, 0, 0, 0, 0, time.UTC))

	marked, err := h.svc.MarkOverdueInvoices(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, marked)

	for _, id := range []int64{int64(result.Deposit.ID), int64(result.Main.ID)} {
		var status string
		require.NoError(t, h.db.Raw(`SELECT status FROM invoices WHERE id = ?`, id).Scan(&status).Error)
		require.Equal(t, string(domain.StatusOverdue), status)
	}

	// The sweep is idempotent.
	marked, err = h.svc.MarkOverdueInvoices(ctx)
	require.NoError(t, err)
	require.Zero(t, marked)
}

func TestMarkOverdueLeavesPaidAlone(t *testing.T) {
	h := newHarness(t)
	h.seedPrice(t, "Fibre", "100Mbps", 500)
	reg := h.seedRegistration(t, registrationdomain.PaymentPeriodFirst, "eft", registrationdomain.StatusProcessed)
	result := h.createInitial(t, reg)

	ctx := context.Background()
	require.NoError(t, h.svc.MarkPaid(ctx, result.Deposit.ID))

	h.clk.Set(time.Date(2025, time.April, 10, 0, 0, 0, 0, time.UTC))
	marked, err := h.svc.MarkOverdueInvoices(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, marked, "only the unpaid main invoice flips")

	paid, err := h.repo.FindByID(ctx, h.db, result.Deposit.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPaid, paid.Status)
}
