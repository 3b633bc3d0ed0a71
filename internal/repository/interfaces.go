package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pautanglog/pautanglog/internal/domain"
)

// LoanRepository defines the interface for loan data operations
type LoanRepository interface {
	// Create creates a new loan
	Create(ctx context.Context, loan *domain.Loan) error

	// GetByID retrieves a loan by id
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error)

	// ListByLender retrieves all loans owned by a lender
	ListByLender(ctx context.Context, lenderID uuid.UUID) ([]*domain.Loan, error)

	// UpdateStatus updates a loan's status
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error

	// MarkVoided stores the terminal void state of a loan
	MarkVoided(ctx context.Context, id uuid.UUID, reason string, voidedAt time.Time) error
}

// InstallmentRepository defines the interface for installment data operations
type InstallmentRepository interface {
	// CreateBatch inserts all installments of a loan's schedule
	CreateBatch(ctx context.Context, installments []*domain.Installment) error

	// GetByID retrieves an installment by id
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Installment, error)

	// GetByIDForUpdate retrieves an installment and row-locks it for the
	// duration of the surrounding transaction
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Installment, error)

	// ListByLoan retrieves a loan's installments ordered by sequence
	ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.Installment, error)

	// UpdateStatus updates a single installment's status
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error

	// UpdatePenalty sets an installment's penalty amount and remarks
	UpdatePenalty(ctx context.Context, id uuid.UUID, amount decimal.Decimal, remarks string) error

	// UpdateRebate sets an installment's rebate amount and remarks
	UpdateRebate(ctx context.Context, id uuid.UUID, amount decimal.Decimal, remarks string) error
}

// PaymentRepository defines the interface for payment ledger operations
type PaymentRepository interface {
	// Create appends a payment record
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByID retrieves a payment by id
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)

	// Update overwrites a payment's mutable fields
	Update(ctx context.Context, payment *domain.Payment) error

	// Delete removes a payment record
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByInstallment retrieves an installment's ledger ordered by payment date
	ListByInstallment(ctx context.Context, installmentID uuid.UUID) ([]*domain.Payment, error)

	// TotalPaidByInstallment sums the ledger of one installment
	TotalPaidByInstallment(ctx context.Context, installmentID uuid.UUID) (decimal.Decimal, error)

	// TotalPaidByLoan sums the ledgers of all installments of a loan
	TotalPaidByLoan(ctx context.Context, loanID uuid.UUID) (decimal.Decimal, error)
}

// BorrowerRepository defines the interface for borrower data operations
type BorrowerRepository interface {
	Create(ctx context.Context, borrower *domain.Borrower) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Borrower, error)
	ListByLender(ctx context.Context, lenderID uuid.UUID) ([]*domain.Borrower, error)
}

// ReportRepository serves the read-only reporting queries
type ReportRepository interface {
	// TotalCollected sums payments received by a lender within a date range
	TotalCollected(ctx context.Context, lenderID uuid.UUID, from, to time.Time) (decimal.Decimal, error)

	// CountOverdueInstallments counts pending installments past due across
	// all active loans
	CountOverdueInstallments(ctx context.Context, asOf time.Time) (int, error)

	// ListLenderIDs returns every lender that owns at least one loan
	ListLenderIDs(ctx context.Context) ([]uuid.UUID, error)
}
