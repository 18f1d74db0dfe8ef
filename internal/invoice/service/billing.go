package service

import (
	"time"

	registrationdomain "github.com/fibrewavelabs/fibrewave/internal/registration/domain"
)

const (
	mainDueDays    = 30
	depositDueDays = 7
)

// CalculateBillingDate maps a payment-period preference and an anchor date to
// the invoice's billing date.
//
// "1st of every month": the first day of the month following the anchor,
// unless the anchor already is the 1st. "15th of every month": the 15th of
// the anchor's month when the anchor falls on or before the 15th, otherwise
// the 15th of the next month. Unrecognized periods bill on the anchor itself.
func CalculateBillingDate(paymentPeriod string, anchor time.Time) time.Time {
	anchor = dateOnly(anchor)

	switch paymentPeriod {
	case registrationdomain.PaymentPeriodFirst:
		if anchor.Day() == 1 {
			return anchor
		}
		return time.Date(anchor.Year(), anchor.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	case registrationdomain.PaymentPeriodFifteenth:
		if anchor.Day() <= 15 {
			return time.Date(anchor.Year(), anchor.Month(), 15, 0, 0, 0, 0, time.UTC)
		}
		return time.Date(anchor.Year(), anchor.Month()+1, 15, 0, 0, 0, 0, time.UTC)
	}
	return anchor
}

// CalculateNextBillingDate rolls a billing date one period forward, or
// returns nil for non-recurring payment periods.
//
// The 15th-of-month rule always lands on the literal 15th; every month has
// one, so no month-end clamping is involved.
func CalculateNextBillingDate(current time.Time, paymentPeriod string) *time.Time {
	current = dateOnly(current)

	switch paymentPeriod {
	case registrationdomain.PaymentPeriodFirst:
		next := time.Date(current.Year(), current.Month()+1, 1, 0, 0, 0, 0, time.UTC)
		return &next
	case registrationdomain.PaymentPeriodFifteenth:
		next := time.Date(current.Year(), current.Month()+1, 15, 0, 0, 0, 0, time.UTC)
		return &next
	}
	return nil
}

// MainDueDate is billing date + 30 days.
func MainDueDate(billingDate time.Time) time.Time {
	return dateOnly(billingDate).AddDate(0, 0, mainDueDays)
}

// DepositDueDate is today + 7 days.
func DepositDueDate(today time.Time) time.Time {
	return dateOnly(today).AddDate(0, 0, depositDueDays)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
