package domain

import (
	"time"

	"github.com/google/uuid"
)

// Borrower identifies who a loan was extended to. Borrowers belong to the
// lender who registered them.
type Borrower struct {
	ID            uuid.UUID `json:"id" db:"id"`
	LenderID      uuid.UUID `json:"lender_id" db:"lender_id"`
	Name          string    `json:"name" db:"name"`
	ContactNumber string    `json:"contact_number,omitempty" db:"contact_number"`
	Address       string    `json:"address,omitempty" db:"address"`
	Notes         string    `json:"notes,omitempty" db:"notes"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

type CreateBorrowerRequest struct {
	Name          string `json:"name" validate:"required,min=1,max=255"`
	ContactNumber string `json:"contact_number" validate:"max=50"`
	Address       string `json:"address" validate:"max=500"`
	Notes         string `json:"notes" validate:"max=1000"`
}
