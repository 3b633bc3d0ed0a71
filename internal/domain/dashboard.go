package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PortfolioSummary is the loan-book rollup a lender's dashboard shows.
type PortfolioSummary struct {
	ActiveLoans        int             `json:"active_loans"`
	CompletedLoans     int             `json:"completed_loans"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
	TotalPenalties     decimal.Decimal `json:"total_penalties"`
	TotalRebates       decimal.Decimal `json:"total_rebates"`
}

// DashboardSummary combines the portfolio rollup with the collections of a
// date range.
type DashboardSummary struct {
	From           time.Time        `json:"from"`
	To             time.Time        `json:"to"`
	TotalCollected decimal.Decimal  `json:"total_collected"`
	Portfolio      PortfolioSummary `json:"portfolio"`
}
