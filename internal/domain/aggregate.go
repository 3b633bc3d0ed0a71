package domain

import (
	"github.com/shopspring/decimal"
)

// LoanBalance is the rolled-up financial state of a loan. It is always
// derived, never stored.
type LoanBalance struct {
	InterestAmount   decimal.Decimal `json:"interest_amount"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	TotalPenalties   decimal.Decimal `json:"total_penalties"`
	TotalRebates     decimal.Decimal `json:"total_rebates"`
	AdjustedTotal    decimal.Decimal `json:"adjusted_total"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

// AggregateLoan rolls a loan's installments and ledger total up into its
// balance. Interest comes from the stored loan parameters, not from the
// schedule. The remaining balance is floored at zero.
func AggregateLoan(loan *Loan, installments []*Installment, totalPaid decimal.Decimal) (*LoanBalance, error) {
	interest, err := loan.InterestAmount()
	if err != nil {
		return nil, err
	}

	totalAmount := loan.Principal.Add(interest)

	var penalties, rebates decimal.Decimal
	for _, inst := range installments {
		penalties = penalties.Add(inst.PenaltyAmount)
		rebates = rebates.Add(inst.RebateAmount)
	}

	adjusted := totalAmount.Add(penalties).Sub(rebates)

	remaining := adjusted.Sub(totalPaid)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	return &LoanBalance{
		InterestAmount:   interest,
		TotalAmount:      totalAmount,
		TotalPenalties:   penalties,
		TotalRebates:     rebates,
		AdjustedTotal:    adjusted,
		TotalPaid:        totalPaid,
		RemainingBalance: remaining,
	}, nil
}

// Settled reports whether the adjusted total has been fully paid.
func (b *LoanBalance) Settled() bool {
	return b.RemainingBalance.LessThanOrEqual(decimal.Zero)
}
