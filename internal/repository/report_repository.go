package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/pautanglog/pautanglog/internal/domain"
)

type reportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) TotalCollected(ctx context.Context, lenderID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(p.amount_paid), 0)
		FROM payments p
		JOIN installments i ON i.id = p.installment_id
		JOIN loans l ON l.id = i.loan_id
		WHERE l.lender_id = $1 AND p.payment_date >= $2 AND p.payment_date <= $3
	`

	var total decimal.Decimal
	if err := sqlx.GetContext(ctx, queryer(ctx, r.db), &total, query, lenderID, from, to); err != nil {
		return decimal.Zero, err
	}

	return total, nil
}

func (r *reportRepository) CountOverdueInstallments(ctx context.Context, asOf time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM installments i
		JOIN loans l ON l.id = i.loan_id
		WHERE i.status = $1 AND i.due_date < $2 AND l.status = $3
	`

	var count int
	if err := sqlx.GetContext(ctx, queryer(ctx, r.db), &count, query,
		domain.InstallmentStatusPending, asOf, domain.LoanStatusActive); err != nil {
		return 0, err
	}

	return count, nil
}

func (r *reportRepository) ListLenderIDs(ctx context.Context) ([]uuid.UUID, error) {
	query := `SELECT DISTINCT lender_id FROM loans`

	var ids []uuid.UUID
	if err := sqlx.SelectContext(ctx, queryer(ctx, r.db), &ids, query); err != nil {
		return nil, err
	}

	return ids, nil
}
