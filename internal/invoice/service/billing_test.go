package service

import (
	"testing"
	"time"

	registrationdomain "github.com/fibrewavelabs/fibrewave/internal/registration/domain"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCalculateBillingDateFirstOfMonth(t *testing.T) {
	tests := []struct {
		name   string
		anchor time.Time
		want   time.Time
	}{
		{"mid month rolls to next first", date(2025, time.January, 20), date(2025, time.February, 1)},
		{"already the first stays", date(2025, time.February, 1), date(2025, time.February, 1)},
		{"second of month rolls forward", date(2025, time.March, 2), date(2025, time.April, 1)},
		{"december rolls into next year", date(2025, time.December, 15), date(2026, time.January, 1)},
		{"time of day is ignored", time.Date(2025, time.January, 20, 17, 45, 3, 0, time.UTC), date(2025, time.February, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateBillingDate(registrationdomain.PaymentPeriodFirst, tt.anchor)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestCalculateBillingDateFifteenth(t *testing.T) {
	tests := []struct {
		name   string
		anchor time.Time
		want   time.Time
	}{
		{"before the 15th uses this month", date(2025, time.January, 10), date(2025, time.January, 15)},
		{"on the 15th stays", date(2025, time.January, 15), date(2025, time.January, 15)},
		{"after the 15th rolls forward", date(2025, time.January, 20), date(2025, time.February, 15)},
		{"december rolls into next year", date(2025, time.December, 20), date(2026, time.January, 15)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateBillingDate(registrationdomain.PaymentPeriodFifteenth, tt.anchor)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestCalculateBillingDateOneTime(t *testing.T) {
	anchor := date(2025, time.January, 20)
	require.Equal(t, anchor, CalculateBillingDate(registrationdomain.PaymentPeriodOneTime, anchor))
}

func TestCalculateNextBillingDate(t *testing.T) {
	next := CalculateNextBillingDate(date(2025, time.February, 1), registrationdomain.PaymentPeriodFirst)
	require.NotNil(t, next)
	require.Equal(t, date(2025, time.March, 1), *next)

	next = CalculateNextBillingDate(date(2025, time.December, 1), registrationdomain.PaymentPeriodFirst)
	require.NotNil(t, next)
	require.Equal(t, date(2026, time.January, 1), *next)

	next = CalculateNextBillingDate(date(2025, time.January, 15), registrationdomain.PaymentPeriodFifteenth)
	require.NotNil(t, next)
	require.Equal(t, date(2025, time.February, 15), *next)

	// January 31 plus one month would normalize to March; the 15th rule pins
	// the day so every successor lands on a real 15th.
	next = CalculateNextBillingDate(date(2025, time.January, 31), registrationdomain.PaymentPeriodFifteenth)
	require.NotNil(t, next)
	require.Equal(t, date(2025, time.February, 15), *next)

	require.Nil(t, CalculateNextBillingDate(date(2025, time.January, 1), registrationdomain.PaymentPeriodOneTime))
	require.Nil(t, CalculateNextBillingDate(date(2025, time.January, 1), "unknown"))
}

func TestNextBillingDateComposesWithBillingDate(t *testing.T) {
	// Rolling a billing date forward must land where a fresh calculation
	// anchored past the old date would land.
	for _, period := range []string{registrationdomain.PaymentPeriodFirst, registrationdomain.PaymentPeriodFifteenth} {
		billing := CalculateBillingDate(period, date(2025, time.January, 20))
		for i := 0; i < 24; i++ {
			next := CalculateNextBillingDate(billing, period)
			require.NotNil(t, next)
			require.True(t, next.After(billing), "period %q iteration %d", period, i)
			require.Equal(t, CalculateBillingDate(period, next.AddDate(0, 0, -1)), *next)
			billing = *next
		}
	}
}

func TestDueDates(t *testing.T) {
	require.Equal(t, date(2025, time.March, 3), MainDueDate(date(2025, time.February, 1)))
	require.Equal(t, date(2025, time.January, 27), DepositDueDate(date(2025, time.January, 20)))
}
