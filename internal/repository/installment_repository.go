package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/pautanglog/pautanglog/internal/domain"
)

type installmentRepository struct {
	db *sqlx.DB
}

func NewInstallmentRepository(db *sqlx.DB) InstallmentRepository {
	return &installmentRepository{db: db}
}

const installmentColumns = `id, loan_id, sequence, due_date, amount_due, penalty_amount, penalty_remarks,
	rebate_amount, rebate_remarks, status, created_at, updated_at`

func (r *installmentRepository) CreateBatch(ctx context.Context, installments []*domain.Installment) error {
	query := `
		INSERT INTO installments (` + installmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	q := queryer(ctx, r.db)
	for _, inst := range installments {
		_, err := q.ExecContext(ctx, query,
			inst.ID,
			inst.LoanID,
			inst.Sequence,
			inst.DueDate,
			inst.AmountDue,
			inst.PenaltyAmount,
			inst.PenaltyRemarks,
			inst.RebateAmount,
			inst.RebateRemarks,
			inst.Status,
			inst.CreatedAt,
			inst.UpdatedAt,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

func (r *installmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Installment, error) {
	query := `
		SELECT ` + installmentColumns + `
		FROM installments
		WHERE id = $1
	`

	var inst domain.Installment
	if err := sqlx.GetContext(ctx, queryer(ctx, r.db), &inst, query, id); err != nil {
		return nil, err
	}

	return &inst, nil
}

// GetByIDForUpdate locks the installment row so concurrent payments against
// the same installment serialize on the overpayment check.
func (r *installmentRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Installment, error) {
	query := `
		SELECT ` + installmentColumns + `
		FROM installments
		WHERE id = $1
		FOR UPDATE
	`

	var inst domain.Installment
	if err := sqlx.GetContext(ctx, queryer(ctx, r.db), &inst, query, id); err != nil {
		return nil, err
	}

	return &inst, nil
}

func (r *installmentRepository) ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.Installment, error) {
	query := `
		SELECT ` + installmentColumns + `
		FROM installments
		WHERE loan_id = $1
		ORDER BY sequence
	`

	var installments []*domain.Installment
	if err := sqlx.SelectContext(ctx, queryer(ctx, r.db), &installments, query, loanID); err != nil {
		return nil, err
	}

	return installments, nil
}

func (r *installmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `
		UPDATE installments
		SET status = $2, updated_at = $3
		WHERE id = $1
	`

	_, err := queryer(ctx, r.db).ExecContext(ctx, query, id, status, time.Now())
	return err
}

func (r *installmentRepository) UpdatePenalty(ctx context.Context, id uuid.UUID, amount decimal.Decimal, remarks string) error {
	query := `
		UPDATE installments
		SET penalty_amount = $2, penalty_remarks = $3, updated_at = $4
		WHERE id = $1
	`

	_, err := queryer(ctx, r.db).ExecContext(ctx, query, id, amount, remarks, time.Now())
	return err
}

func (r *installmentRepository) UpdateRebate(ctx context.Context, id uuid.UUID, amount decimal.Decimal, remarks string) error {
	query := `
		UPDATE installments
		SET rebate_amount = $2, rebate_remarks = $3, updated_at = $4
		WHERE id = $1
	`

	_, err := queryer(ctx, r.db).ExecContext(ctx, query, id, amount, remarks, time.Now())
	return err
}
