package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/pautanglog/pautanglog/internal/domain"
)

type borrowerRepository struct {
	db *sqlx.DB
}

func NewBorrowerRepository(db *sqlx.DB) BorrowerRepository {
	return &borrowerRepository{db: db}
}

func (r *borrowerRepository) Create(ctx context.Context, borrower *domain.Borrower) error {
	query := `
		INSERT INTO borrowers (id, lender_id, name, contact_number, address, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := queryer(ctx, r.db).ExecContext(ctx, query,
		borrower.ID,
		borrower.LenderID,
		borrower.Name,
		borrower.ContactNumber,
		borrower.Address,
		borrower.Notes,
		borrower.CreatedAt,
		borrower.UpdatedAt,
	)

	return err
}

func (r *borrowerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Borrower, error) {
	query := `
		SELECT id, lender_id, name, contact_number, address, notes, created_at, updated_at
		FROM borrowers
		WHERE id = $1
	`

	var borrower domain.Borrower
	if err := sqlx.GetContext(ctx, queryer(ctx, r.db), &borrower, query, id); err != nil {
		return nil, err
	}

	return &borrower, nil
}

func (r *borrowerRepository) ListByLender(ctx context.Context, lenderID uuid.UUID) ([]*domain.Borrower, error) {
	query := `
		SELECT id, lender_id, name, contact_number, address, notes, created_at, updated_at
		FROM borrowers
		WHERE lender_id = $1
		ORDER BY name
	`

	var borrowers []*domain.Borrower
	if err := sqlx.SelectContext(ctx, queryer(ctx, r.db), &borrowers, query, lenderID); err != nil {
		return nil, err
	}

	return borrowers, nil
}
