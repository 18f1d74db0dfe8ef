package repository

import (
	"context"
	"testing"
	"time"

	"github.com/fibrewavelabs/fibrewave/internal/invoice/domain"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.InvoiceSequence{}))
	return db
}

func TestNextInvoiceNumberSequential(t *testing.T) {
	db := newDB(t)
	r := Provide()
	ctx := context.Background()
	january := time.Date(2025, time.January, 20, 10, 0, 0, 0, time.UTC)

	first, err := r.NextInvoiceNumber(ctx, db, "INV", january)
	require.NoError(t, err)
	require.Equal(t, "INV-202501-0001", first)

	second, err := r.NextInvoiceNumber(ctx, db, "INV", january)
	require.NoError(t, err)
	require.Equal(t, "INV-202501-0002", second)

	third, err := r.NextInvoiceNumber(ctx, db, "INV", january)
	require.NoError(t, err)
	require.Equal(t, "INV-202501-0003", third)
}

func TestNextInvoiceNumberResetsPerMonth(t *testing.T) {
	db := newDB(t)
	r := Provide()
	ctx := context.Background()

	january := time.Date(2025, time.January, 31, 23, 59, 0, 0, time.UTC)
	february := time.Date(2025, time.February, 1, 0, 1, 0, 0, time.UTC)

	got, err := r.NextInvoiceNumber(ctx, db, "INV", january)
	require.NoError(t, err)
	require.Equal(t, "INV-202501-0001", got)

	got, err = r.NextInvoiceNumber(ctx, db, "INV", february)
	require.NoError(t, err)
	require.Equal(t, "INV-202502-0001", got)

	// The January bucket is unaffected by February's counter.
	got, err = r.NextInvoiceNumber(ctx, db, "INV", january)
	require.NoError(t, err)
	require.Equal(t, "INV-202501-0002", got)
}

func TestNextInvoiceNumberTrimsPrefix(t *testing.T) {
	db := newDB(t)
	r := Provide()

	got, err := r.NextInvoiceNumber(context.Background(), db, " FW ", time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, "FW-202503-0001", got)
}
