package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	InstallmentStatusPending = "pending"
	InstallmentStatusPartial = "partial"
	InstallmentStatusPaid    = "paid"

	// InstallmentStatusOverdue is derived at read time and never stored.
	InstallmentStatusOverdue = "overdue"
)

// Installment is one scheduled due amount within a loan's payment schedule.
// Installments are created in bulk at loan creation and never deleted.
type Installment struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	LoanID         uuid.UUID       `json:"loan_id" db:"loan_id"`
	Sequence       int             `json:"sequence" db:"sequence"`
	DueDate        time.Time       `json:"due_date" db:"due_date"`
	AmountDue      decimal.Decimal `json:"amount_due" db:"amount_due"`
	PenaltyAmount  decimal.Decimal `json:"penalty_amount" db:"penalty_amount"`
	PenaltyRemarks string          `json:"penalty_remarks,omitempty" db:"penalty_remarks"`
	RebateAmount   decimal.Decimal `json:"rebate_amount" db:"rebate_amount"`
	RebateRemarks  string          `json:"rebate_remarks,omitempty" db:"rebate_remarks"`
	Status         string          `json:"status" db:"status"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// TotalDue is the installment amount after penalty and rebate adjustment.
func (i *Installment) TotalDue() decimal.Decimal {
	return i.AmountDue.Sub(i.RebateAmount).Add(i.PenaltyAmount)
}

// DeriveInstallmentStatus maps ledger totals to a stored installment status.
// It is a pure function of the totals and never guards a write; deleting the
// last payment against a paid installment demotes it back to pending.
func DeriveInstallmentStatus(totalPaid, totalDue decimal.Decimal) string {
	switch {
	case totalPaid.GreaterThanOrEqual(totalDue):
		return InstallmentStatusPaid
	case totalPaid.GreaterThan(decimal.Zero):
		return InstallmentStatusPartial
	default:
		return InstallmentStatusPending
	}
}

// DisplayStatus returns the presentation status: a pending installment whose
// due date has passed reads as overdue. The stored status is untouched.
func (i *Installment) DisplayStatus(now time.Time) string {
	if i.Status == InstallmentStatusPending && i.DueDate.Before(now) {
		return InstallmentStatusOverdue
	}
	return i.Status
}

// InstallmentView is the read-side shape of an installment with its ledger
// totals and derived figures attached.
type InstallmentView struct {
	Installment   *Installment    `json:"installment"`
	TotalDue      decimal.Decimal `json:"total_due"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
	Remaining     decimal.Decimal `json:"remaining"`
	DisplayStatus string          `json:"display_status"`
}

type PenaltyRequest struct {
	Amount  decimal.Decimal `json:"amount" validate:"gte=0"`
	Remarks string          `json:"remarks" validate:"max=500"`
}

type RebateRequest struct {
	Amount  decimal.Decimal `json:"amount" validate:"gte=0"`
	Remarks string          `json:"remarks" validate:"max=500"`
}
