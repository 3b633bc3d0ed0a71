package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/pautanglog/pautanglog/internal/domain"
	"github.com/pautanglog/pautanglog/internal/repository"
	customError "github.com/pautanglog/pautanglog/pkg/errors"
)

// recomputeLoanAggregate derives a loan's balance from its installments and
// ledger totals and applies the completion transition. Completion is
// one-directional: a settled loan becomes completed, but a later payment
// reversal never demotes it back to active. Voided loans are never touched.
//
// Callers run this inside the same transaction as the mutation that made the
// recompute necessary.
func recomputeLoanAggregate(
	ctx context.Context,
	loanRepo repository.LoanRepository,
	installmentRepo repository.InstallmentRepository,
	paymentRepo repository.PaymentRepository,
	loan *domain.Loan,
) (*domain.LoanBalance, error) {
	installments, err := installmentRepo.ListByLoan(ctx, loan.ID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	totalPaid, err := paymentRepo.TotalPaidByLoan(ctx, loan.ID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	balance, err := domain.AggregateLoan(loan, installments, totalPaid)
	if err != nil {
		return nil, err
	}

	if loan.IsVoided {
		return balance, nil
	}

	if balance.Settled() && loan.Status != domain.LoanStatusCompleted {
		if err := loanRepo.UpdateStatus(ctx, loan.ID, domain.LoanStatusCompleted); err != nil {
			return nil, customError.WrapDatabaseError(err)
		}
		loan.Status = domain.LoanStatusCompleted
	}

	return balance, nil
}

func dashboardCacheKey(lenderID uuid.UUID) string {
	return fmt.Sprintf("dashboard:portfolio:%s", lenderID)
}

// invalidateDashboardCache drops a lender's cached portfolio summary. Cache
// misses are harmless, so failures are swallowed; the client may be nil in
// tests.
func invalidateDashboardCache(ctx context.Context, client *redis.Client, lenderID uuid.UUID) {
	if client == nil {
		return
	}
	client.Del(ctx, dashboardCacheKey(lenderID))
}
