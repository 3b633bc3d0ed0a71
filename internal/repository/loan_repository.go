package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/pautanglog/pautanglog/internal/domain"
)

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (id, lender_id, borrower_id, principal, interest_type, interest_value, interest_period,
			duration, duration_unit, frequency, transaction_date, status, is_voided, void_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := queryer(ctx, r.db).ExecContext(ctx, query,
		loan.ID,
		loan.LenderID,
		loan.BorrowerID,
		loan.Principal,
		loan.InterestType,
		loan.InterestValue,
		loan.InterestPeriod,
		loan.Duration,
		loan.DurationUnit,
		loan.Frequency,
		loan.TransactionDate,
		loan.Status,
		loan.IsVoided,
		loan.VoidReason,
		loan.CreatedAt,
		loan.UpdatedAt,
	)

	return err
}

func (r *loanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	query := `
		SELECT id, lender_id, borrower_id, principal, interest_type, interest_value, interest_period,
			duration, duration_unit, frequency, transaction_date, status, is_voided, void_reason, voided_at,
			created_at, updated_at
		FROM loans
		WHERE id = $1
	`

	var loan domain.Loan
	if err := sqlx.GetContext(ctx, queryer(ctx, r.db), &loan, query, id); err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) ListByLender(ctx context.Context, lenderID uuid.UUID) ([]*domain.Loan, error) {
	query := `
		SELECT id, lender_id, borrower_id, principal, interest_type, interest_value, interest_period,
			duration, duration_unit, frequency, transaction_date, status, is_voided, void_reason, voided_at,
			created_at, updated_at
		FROM loans
		WHERE lender_id = $1
		ORDER BY transaction_date DESC, created_at DESC
	`

	var loans []*domain.Loan
	if err := sqlx.SelectContext(ctx, queryer(ctx, r.db), &loans, query, lenderID); err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *loanRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `
		UPDATE loans
		SET status = $2, updated_at = $3
		WHERE id = $1
	`

	_, err := queryer(ctx, r.db).ExecContext(ctx, query, id, status, time.Now())
	return err
}

func (r *loanRepository) MarkVoided(ctx context.Context, id uuid.UUID, reason string, voidedAt time.Time) error {
	query := `
		UPDATE loans
		SET status = $2, is_voided = TRUE, void_reason = $3, voided_at = $4, updated_at = $4
		WHERE id = $1
	`

	_, err := queryer(ctx, r.db).ExecContext(ctx, query, id, domain.LoanStatusVoided, reason, voidedAt)
	return err
}
