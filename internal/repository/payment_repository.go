package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/pautanglog/pautanglog/internal/domain"
)

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

const paymentColumns = `id, installment_id, amount_paid, method, reference_number, receipt_number,
	payment_date, created_at, updated_at`

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := queryer(ctx, r.db).ExecContext(ctx, query,
		payment.ID,
		payment.InstallmentID,
		payment.AmountPaid,
		payment.Method,
		payment.ReferenceNumber,
		payment.ReceiptNumber,
		payment.PaymentDate,
		payment.CreatedAt,
		payment.UpdatedAt,
	)

	return err
}

func (r *paymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE id = $1
	`

	var payment domain.Payment
	if err := sqlx.GetContext(ctx, queryer(ctx, r.db), &payment, query, id); err != nil {
		return nil, err
	}

	return &payment, nil
}

func (r *paymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	query := `
		UPDATE payments
		SET amount_paid = $2, method = $3, reference_number = $4, receipt_number = $5, payment_date = $6, updated_at = $7
		WHERE id = $1
	`

	_, err := queryer(ctx, r.db).ExecContext(ctx, query,
		payment.ID,
		payment.AmountPaid,
		payment.Method,
		payment.ReferenceNumber,
		payment.ReceiptNumber,
		payment.PaymentDate,
		time.Now(),
	)

	return err
}

func (r *paymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM payments WHERE id = $1`

	_, err := queryer(ctx, r.db).ExecContext(ctx, query, id)
	return err
}

func (r *paymentRepository) ListByInstallment(ctx context.Context, installmentID uuid.UUID) ([]*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE installment_id = $1
		ORDER BY payment_date, created_at
	`

	var payments []*domain.Payment
	if err := sqlx.SelectContext(ctx, queryer(ctx, r.db), &payments, query, installmentID); err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *paymentRepository) TotalPaidByInstallment(ctx context.Context, installmentID uuid.UUID) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount_paid), 0)
		FROM payments
		WHERE installment_id = $1
	`

	var total decimal.Decimal
	if err := sqlx.GetContext(ctx, queryer(ctx, r.db), &total, query, installmentID); err != nil {
		return decimal.Zero, err
	}

	return total, nil
}

func (r *paymentRepository) TotalPaidByLoan(ctx context.Context, loanID uuid.UUID) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(p.amount_paid), 0)
		FROM payments p
		JOIN installments i ON i.id = p.installment_id
		WHERE i.loan_id = $1
	`

	var total decimal.Decimal
	if err := sqlx.GetContext(ctx, queryer(ctx, r.db), &total, query, loanID); err != nil {
		return decimal.Zero, err
	}

	return total, nil
}
