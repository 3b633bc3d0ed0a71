package domain

import (
	"github.com/shopspring/decimal"

	apperrors "github.com/pautanglog/pautanglog/pkg/errors"
)

// Fixed calendar conversion factors used for interest accrual:
// a week is 7 days, a month is 30 days on the day basis and 4 weeks on the
// week basis.
var (
	daysPerWeek   = decimal.NewFromInt(7)
	daysPerMonth  = decimal.NewFromInt(30)
	weeksPerMonth = decimal.NewFromInt(4)
	hundred       = decimal.NewFromInt(100)
)

// ComputeInterest returns the total interest owed for a loan. With a "total"
// period basis the interest is one-shot; otherwise it accrues once per
// period, with the duration converted into the period's unit.
//
// No rounding happens here. Callers round to two decimal places at the
// persistence and response boundaries only.
func ComputeInterest(principal decimal.Decimal, interestType string, interestValue decimal.Decimal, interestPeriod string, duration int, durationUnit string) (decimal.Decimal, error) {
	switch interestType {
	case InterestTypeFixed, InterestTypePercentage:
	default:
		return decimal.Zero, apperrors.ErrInvalidInterestType
	}

	if interestPeriod == InterestPeriodTotal {
		if interestType == InterestTypeFixed {
			return interestValue, nil
		}
		return principal.Mul(interestValue).Div(hundred), nil
	}

	periods, err := interestPeriods(duration, durationUnit, interestPeriod)
	if err != nil {
		return decimal.Zero, err
	}

	if interestType == InterestTypeFixed {
		return interestValue.Mul(periods), nil
	}
	return principal.Mul(interestValue).Mul(periods).Div(hundred), nil
}

// interestPeriods converts a loan duration into the number of interest
// periods it spans.
func interestPeriods(duration int, durationUnit, interestPeriod string) (decimal.Decimal, error) {
	d := decimal.NewFromInt(int64(duration))

	switch interestPeriod {
	case InterestPeriodPerDay:
		switch durationUnit {
		case DurationUnitDays:
			return d, nil
		case DurationUnitWeeks:
			return d.Mul(daysPerWeek), nil
		case DurationUnitMonths:
			return d.Mul(daysPerMonth), nil
		}
	case InterestPeriodPerWeek:
		switch durationUnit {
		case DurationUnitDays:
			return d.Div(daysPerWeek), nil
		case DurationUnitWeeks:
			return d, nil
		case DurationUnitMonths:
			return d.Mul(weeksPerMonth), nil
		}
	case InterestPeriodPerMonth:
		switch durationUnit {
		case DurationUnitDays:
			return d.Div(daysPerMonth), nil
		case DurationUnitWeeks:
			return d.Div(weeksPerMonth), nil
		case DurationUnitMonths:
			return d, nil
		}
	default:
		return decimal.Zero, apperrors.ErrInvalidInterestPeriod
	}

	return decimal.Zero, apperrors.ErrInvalidDurationUnit
}
