package domain

import (
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/pautanglog/pautanglog/pkg/errors"
)

// ScheduleEntry is one planned installment before persistence.
type ScheduleEntry struct {
	Sequence  int             `json:"sequence"`
	DueDate   time.Time       `json:"due_date"`
	AmountDue decimal.Decimal `json:"amount_due"`
}

// durationInDays converts a loan duration to days using the same fixed
// calendar factors as the interest calculator.
func durationInDays(duration int, durationUnit string) (int, error) {
	switch durationUnit {
	case DurationUnitDays:
		return duration, nil
	case DurationUnitWeeks:
		return duration * 7, nil
	case DurationUnitMonths:
		return duration * 30, nil
	}
	return 0, apperrors.ErrInvalidDurationUnit
}

// NumberOfPayments returns how many installments a loan's schedule has.
// Partial periods count as a full installment.
func NumberOfPayments(frequency string, duration int, durationUnit string) (int, error) {
	days, err := durationInDays(duration, durationUnit)
	if err != nil {
		return 0, err
	}

	switch frequency {
	case FrequencyDaily:
		return days, nil
	case FrequencyWeekly:
		return ceilDiv(days, 7), nil
	case FrequencyTwiceMonthly:
		return ceilDiv(days, 15), nil
	case FrequencyMonthly:
		return ceilDiv(days, 30), nil
	}
	return 0, apperrors.ErrInvalidFrequency
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// GenerateSchedule produces the ordered installment plan for a loan. The
// total amount is divided equally across installments; due dates advance
// from firstDueDate by the frequency interval, except twice_monthly, which
// falls on day 1 and day 16 of the month, advancing the month every two
// installments.
//
// It does not persist anything; the caller turns the plan into installment
// rows, each starting as pending.
func GenerateSchedule(totalAmount decimal.Decimal, firstDueDate time.Time, frequency string, duration int, durationUnit string) ([]ScheduleEntry, error) {
	n, err := NumberOfPayments(frequency, duration, durationUnit)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, apperrors.ErrEmptySchedule
	}

	amount := totalAmount.Div(decimal.NewFromInt(int64(n)))

	entries := make([]ScheduleEntry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, ScheduleEntry{
			Sequence:  i + 1,
			DueDate:   installmentDueDate(firstDueDate, frequency, i),
			AmountDue: amount,
		})
	}
	return entries, nil
}

func installmentDueDate(first time.Time, frequency string, index int) time.Time {
	switch frequency {
	case FrequencyDaily:
		return first.AddDate(0, 0, index)
	case FrequencyWeekly:
		return first.AddDate(0, 0, 7*index)
	case FrequencyMonthly:
		return first.AddDate(0, index, 0)
	case FrequencyTwiceMonthly:
		return twiceMonthlyDueDate(first, index)
	}
	return first
}

// twiceMonthlyDueDate alternates between day 1 and day 16. When the first
// due date falls on or after the 16th, the cycle starts on the 16th.
func twiceMonthlyDueDate(first time.Time, index int) time.Time {
	k := index
	if first.Day() >= 16 {
		k++
	}

	day := 1
	if k%2 == 1 {
		day = 16
	}
	// time.Date normalizes month overflow, so month arithmetic stays exact
	// even when the anchor sits near the end of a month.
	return time.Date(first.Year(), first.Month()+time.Month(k/2), day, 0, 0, 0, 0, first.Location())
}
