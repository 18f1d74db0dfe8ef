package send

import (
	"context"
	"testing"
	"time"

	"github.com/fibrewavelabs/fibrewave/internal/invoice/domain"
	"github.com/stretchr/testify/require"
)

func TestOrchestratorRoutesByInvoiceType(t *testing.T) {
	h := newSendHarness(t)
	ctx := context.Background()

	deposit := h.seedInvoice(t, domain.TypeDeposit, "thandi@example.com")
	main := h.seedInvoice(t, domain.TypeMain, "thandi@example.com")

	accepted, err := h.sender.Send(ctx, deposit, false)
	require.NoError(t, err)
	require.True(t, accepted)

	accepted, err = h.sender.Send(ctx, main, false)
	require.NoError(t, err)
	require.True(t, accepted)

	high, def, _, err := h.queue.Depth(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, high, "deposit invoices jump the queue")
	require.EqualValues(t, 1, def)

	task, err := h.queue.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.Equal(t, deposit.ID, task.InvoiceID)
	require.Equal(t, 1, task.Attempt)
	require.False(t, task.Manual)

	// The delivery deadline is pinned at dispatch time.
	require.True(t, task.Deadline.Equal(h.clk.Now(ctx).Add(24*time.Hour)))
}

func TestOrchestratorSuppressesDeliveredInvoices(t *testing.T) {
	h := newSendHarness(t)
	ctx := context.Background()

	inv := h.seedInvoice(t, domain.TypeMain, "thandi@example.com")
	sentAt := h.clk.Now(ctx)
	inv.SentAt = &sentAt

	accepted, err := h.sender.Send(ctx, inv, false)
	require.NoError(t, err)
	require.False(t, accepted)

	high, def, _, err := h.queue.Depth(ctx)
	require.NoError(t, err)
	require.Zero(t, high+def)

	// A manual resend goes out regardless.
	accepted, err = h.sender.Send(ctx, inv, true)
	require.NoError(t, err)
	require.True(t, accepted)

	task, err := h.queue.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.True(t, task.Manual)
}

func TestOrchestratorMissingRecipient(t *testing.T) {
	h := newSendHarness(t)
	ctx := context.Background()

	inv := h.seedInvoice(t, domain.TypeMain, "")

	accepted, err := h.sender.Send(ctx, inv, false)
	require.ErrorIs(t, err, domain.ErrMissingRecipient)
	require.False(t, accepted)

	high, def, _, err := h.queue.Depth(ctx)
	require.NoError(t, err)
	require.Zero(t, high+def)

	// The failure is visible in the audit trail.
	logs := h.emailLogs(t, inv.ID)
	require.Len(t, logs, 1)
	require.Equal(t, domain.EmailStatusDispatchFailed, logs[0].Status)
	require.Contains(t, logs[0].ErrorMessage, "no recipient")
}

func TestOrchestratorNilInvoice(t *testing.T) {
	h := newSendHarness(t)

	_, err := h.sender.Send(context.Background(), nil, false)
	require.ErrorIs(t, err, domain.ErrInvoiceNotFound)
}
