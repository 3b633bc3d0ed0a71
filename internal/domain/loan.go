package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	LoanStatusActive    = "active"
	LoanStatusCompleted = "completed"
	LoanStatusVoided    = "voided"
	LoanStatusDefaulted = "defaulted"
)

const (
	InterestTypeFixed      = "fixed"
	InterestTypePercentage = "percentage"
)

const (
	InterestPeriodTotal    = "total"
	InterestPeriodPerDay   = "per_day"
	InterestPeriodPerWeek  = "per_week"
	InterestPeriodPerMonth = "per_month"
)

const (
	DurationUnitDays   = "days"
	DurationUnitWeeks  = "weeks"
	DurationUnitMonths = "months"
)

const (
	FrequencyDaily        = "daily"
	FrequencyWeekly       = "weekly"
	FrequencyTwiceMonthly = "twice_monthly"
	FrequencyMonthly      = "monthly"
)

// Loan represents a single loan extended by a lender to a borrower.
// Interest, total amount and remaining balance are never stored; they are
// recomputed from the stored parameters and the installment ledger.
type Loan struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	LenderID        uuid.UUID       `json:"lender_id" db:"lender_id"`
	BorrowerID      uuid.UUID       `json:"borrower_id" db:"borrower_id"`
	Principal       decimal.Decimal `json:"principal" db:"principal"`
	InterestType    string          `json:"interest_type" db:"interest_type"`
	InterestValue   decimal.Decimal `json:"interest_value" db:"interest_value"`
	InterestPeriod  string          `json:"interest_period" db:"interest_period"`
	Duration        int             `json:"duration" db:"duration"`
	DurationUnit    string          `json:"duration_unit" db:"duration_unit"`
	Frequency       string          `json:"frequency" db:"frequency"`
	TransactionDate time.Time       `json:"transaction_date" db:"transaction_date"`
	Status          string          `json:"status" db:"status"`
	IsVoided        bool            `json:"is_voided" db:"is_voided"`
	VoidReason      string          `json:"void_reason,omitempty" db:"void_reason"`
	VoidedAt        *time.Time      `json:"voided_at,omitempty" db:"voided_at"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// InterestAmount computes the total interest owed on this loan from its
// stored parameters.
func (l *Loan) InterestAmount() (decimal.Decimal, error) {
	return ComputeInterest(l.Principal, l.InterestType, l.InterestValue, l.InterestPeriod, l.Duration, l.DurationUnit)
}

// TotalAmount is principal plus interest, before penalties and rebates.
func (l *Loan) TotalAmount() (decimal.Decimal, error) {
	interest, err := l.InterestAmount()
	if err != nil {
		return decimal.Zero, err
	}
	return l.Principal.Add(interest), nil
}

// DTOs for requests and responses

type CreateLoanRequest struct {
	BorrowerID      uuid.UUID              `json:"borrower_id" validate:"required"`
	Principal       decimal.Decimal        `json:"principal" validate:"required,gt=0"`
	InterestType    string                 `json:"interest_type" validate:"required,oneof=fixed percentage"`
	InterestValue   decimal.Decimal        `json:"interest_value" validate:"gte=0"`
	InterestPeriod  string                 `json:"interest_period" validate:"required,oneof=total per_day per_week per_month"`
	Duration        int                    `json:"duration" validate:"required,gt=0"`
	DurationUnit    string                 `json:"duration_unit" validate:"required,oneof=days weeks months"`
	Frequency       string                 `json:"frequency" validate:"required,oneof=daily weekly twice_monthly monthly"`
	TransactionDate time.Time              `json:"transaction_date" validate:"required"`
	FirstDueDate    time.Time              `json:"first_due_date" validate:"required"`
	Schedule        []ScheduleEntryRequest `json:"schedule,omitempty" validate:"omitempty,min=1,dive"`
}

// ScheduleEntryRequest lets the caller supply an explicit schedule instead
// of having one generated.
type ScheduleEntryRequest struct {
	DueDate   time.Time       `json:"due_date" validate:"required"`
	AmountDue decimal.Decimal `json:"amount_due" validate:"required,gt=0"`
}

type VoidLoanRequest struct {
	Reason string `json:"reason" validate:"required,min=1,max=1000"`
}

type CreateLoanResponse struct {
	Loan         *Loan          `json:"loan"`
	Installments []*Installment `json:"installments"`
}

type LoanResponse struct {
	Loan             *Loan              `json:"loan"`
	InterestAmount   decimal.Decimal    `json:"interest_amount"`
	TotalAmount      decimal.Decimal    `json:"total_amount"`
	TotalPenalties   decimal.Decimal    `json:"total_penalties"`
	TotalRebates     decimal.Decimal    `json:"total_rebates"`
	TotalPaid        decimal.Decimal    `json:"total_paid"`
	RemainingBalance decimal.Decimal    `json:"remaining_balance"`
	Installments     []*InstallmentView `json:"installments,omitempty"`
}

// PromissoryNoteData carries the computed figures a note renderer needs.
// Number-to-words formatting happens outside this service.
type PromissoryNoteData struct {
	LoanID            uuid.UUID       `json:"loan_id"`
	Principal         decimal.Decimal `json:"principal"`
	InterestAmount    decimal.Decimal `json:"interest_amount"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	InstallmentAmount decimal.Decimal `json:"installment_amount"`
	NumberOfPayments  int             `json:"number_of_payments"`
	Frequency         string          `json:"frequency"`
	FirstDueDate      time.Time       `json:"first_due_date"`
	LastDueDate       time.Time       `json:"last_due_date"`
	TransactionDate   time.Time       `json:"transaction_date"`
}
