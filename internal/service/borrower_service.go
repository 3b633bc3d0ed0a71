package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pautanglog/pautanglog/internal/domain"
	"github.com/pautanglog/pautanglog/internal/repository"
	customError "github.com/pautanglog/pautanglog/pkg/errors"
)

// BorrowerService keeps the borrower registry. Borrowers only matter to the
// ledger as loan owners, so this stays identifier-level.
type BorrowerService struct {
	BorrowerRepo repository.BorrowerRepository
}

func NewBorrowerService(borrowerRepo repository.BorrowerRepository) *BorrowerService {
	return &BorrowerService{BorrowerRepo: borrowerRepo}
}

func (s *BorrowerService) CreateBorrower(ctx context.Context, ownerID uuid.UUID, request *domain.CreateBorrowerRequest) (*domain.Borrower, error) {
	now := time.Now()
	borrower := &domain.Borrower{
		ID:            uuid.New(),
		LenderID:      ownerID,
		Name:          request.Name,
		ContactNumber: request.ContactNumber,
		Address:       request.Address,
		Notes:         request.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.BorrowerRepo.Create(ctx, borrower); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return borrower, nil
}

func (s *BorrowerService) ListBorrowers(ctx context.Context, ownerID uuid.UUID) ([]*domain.Borrower, error) {
	borrowers, err := s.BorrowerRepo.ListByLender(ctx, ownerID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return borrowers, nil
}
