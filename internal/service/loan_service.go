package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/pautanglog/pautanglog/internal/domain"
	"github.com/pautanglog/pautanglog/internal/repository"
	customError "github.com/pautanglog/pautanglog/pkg/errors"
)

// LoanService owns loan lifecycle: creation with its schedule, derived
// figures, voiding, and the loan-level aggregate recompute. Ownership is an
// explicit parameter on every operation and is checked before anything else.
type LoanService struct {
	LoanRepo        repository.LoanRepository
	InstallmentRepo repository.InstallmentRepository
	PaymentRepo     repository.PaymentRepository
	BorrowerRepo    repository.BorrowerRepository
	tx              repository.TxManager
	redis           *redis.Client
}

func NewLoanService(
	loanRepo repository.LoanRepository,
	installmentRepo repository.InstallmentRepository,
	paymentRepo repository.PaymentRepository,
	borrowerRepo repository.BorrowerRepository,
	tx repository.TxManager,
	redisClient *redis.Client,
) *LoanService {
	return &LoanService{
		LoanRepo:        loanRepo,
		InstallmentRepo: installmentRepo,
		PaymentRepo:     paymentRepo,
		BorrowerRepo:    borrowerRepo,
		tx:              tx,
		redis:           redisClient,
	}
}

// CreateLoan registers a loan and its full payment schedule in one
// transaction. The schedule is either supplied by the caller or generated
// from the loan parameters.
func (s *LoanService) CreateLoan(ctx context.Context, ownerID uuid.UUID, request *domain.CreateLoanRequest) (*domain.Loan, []*domain.Installment, error) {
	borrower, err := s.BorrowerRepo.GetByID(ctx, request.BorrowerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, customError.NewBusinessError(customError.ErrCodeBorrowerNotFound, "Borrower not found", customError.ErrBorrowerNotFound)
		}
		return nil, nil, customError.WrapDatabaseError(err)
	}
	if borrower.LenderID != ownerID {
		return nil, nil, customError.WrapForbidden()
	}

	interest, err := domain.ComputeInterest(
		request.Principal,
		request.InterestType,
		request.InterestValue,
		request.InterestPeriod,
		request.Duration,
		request.DurationUnit,
	)
	if err != nil {
		return nil, nil, customError.WrapInvalidSchedule(err)
	}
	totalAmount := request.Principal.Add(interest)

	var entries []domain.ScheduleEntry
	if len(request.Schedule) > 0 {
		entries = make([]domain.ScheduleEntry, 0, len(request.Schedule))
		for i, e := range request.Schedule {
			entries = append(entries, domain.ScheduleEntry{
				Sequence:  i + 1,
				DueDate:   e.DueDate,
				AmountDue: e.AmountDue,
			})
		}
	} else {
		entries, err = domain.GenerateSchedule(totalAmount, request.FirstDueDate, request.Frequency, request.Duration, request.DurationUnit)
		if err != nil {
			return nil, nil, customError.WrapInvalidSchedule(err)
		}
	}

	now := time.Now()
	loan := &domain.Loan{
		ID:              uuid.New(),
		LenderID:        ownerID,
		BorrowerID:      request.BorrowerID,
		Principal:       request.Principal.Round(2),
		InterestType:    request.InterestType,
		InterestValue:   request.InterestValue,
		InterestPeriod:  request.InterestPeriod,
		Duration:        request.Duration,
		DurationUnit:    request.DurationUnit,
		Frequency:       request.Frequency,
		TransactionDate: request.TransactionDate,
		Status:          domain.LoanStatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	installments := make([]*domain.Installment, 0, len(entries))
	for _, entry := range entries {
		installments = append(installments, &domain.Installment{
			ID:        uuid.New(),
			LoanID:    loan.ID,
			Sequence:  entry.Sequence,
			DueDate:   entry.DueDate,
			AmountDue: entry.AmountDue.Round(2),
			Status:    domain.InstallmentStatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.LoanRepo.Create(ctx, loan); err != nil {
			return customError.WrapDatabaseError(err)
		}
		if err := s.InstallmentRepo.CreateBatch(ctx, installments); err != nil {
			return customError.WrapDatabaseError(err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.invalidateDashboard(ctx, ownerID)

	return loan, installments, nil
}

// GetLoan returns a loan with its derived balance and installment views.
func (s *LoanService) GetLoan(ctx context.Context, ownerID, loanID uuid.UUID) (*domain.LoanResponse, error) {
	loan, err := s.getOwnedLoan(ctx, ownerID, loanID)
	if err != nil {
		return nil, err
	}

	installments, err := s.InstallmentRepo.ListByLoan(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	now := time.Now()
	views := make([]*domain.InstallmentView, 0, len(installments))
	var totalPaid decimal.Decimal
	for _, inst := range installments {
		paid, err := s.PaymentRepo.TotalPaidByInstallment(ctx, inst.ID)
		if err != nil {
			return nil, customError.WrapDatabaseError(err)
		}
		totalPaid = totalPaid.Add(paid)

		totalDue := inst.TotalDue()
		views = append(views, &domain.InstallmentView{
			Installment:   inst,
			TotalDue:      totalDue.Round(2),
			TotalPaid:     paid.Round(2),
			Remaining:     totalDue.Sub(paid).Round(2),
			DisplayStatus: inst.DisplayStatus(now),
		})
	}

	balance, err := domain.AggregateLoan(loan, installments, totalPaid)
	if err != nil {
		return nil, customError.WrapInvalidSchedule(err)
	}

	return &domain.LoanResponse{
		Loan:             loan,
		InterestAmount:   balance.InterestAmount.Round(2),
		TotalAmount:      balance.TotalAmount.Round(2),
		TotalPenalties:   balance.TotalPenalties.Round(2),
		TotalRebates:     balance.TotalRebates.Round(2),
		TotalPaid:        balance.TotalPaid.Round(2),
		RemainingBalance: balance.RemainingBalance.Round(2),
		Installments:     views,
	}, nil
}

// ListLoans returns all loans of a lender without installment detail.
func (s *LoanService) ListLoans(ctx context.Context, ownerID uuid.UUID) ([]*domain.Loan, error) {
	loans, err := s.LoanRepo.ListByLender(ctx, ownerID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return loans, nil
}

// GetSchedule returns a loan's installments ordered by sequence.
func (s *LoanService) GetSchedule(ctx context.Context, ownerID, loanID uuid.UUID) ([]*domain.Installment, error) {
	if _, err := s.getOwnedLoan(ctx, ownerID, loanID); err != nil {
		return nil, err
	}

	installments, err := s.InstallmentRepo.ListByLoan(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return installments, nil
}

// PromissoryNote assembles the computed figures the external note renderer
// consumes.
func (s *LoanService) PromissoryNote(ctx context.Context, ownerID, loanID uuid.UUID) (*domain.PromissoryNoteData, error) {
	loan, err := s.getOwnedLoan(ctx, ownerID, loanID)
	if err != nil {
		return nil, err
	}

	installments, err := s.InstallmentRepo.ListByLoan(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if len(installments) == 0 {
		return nil, customError.WrapInvalidSchedule(customError.ErrEmptySchedule)
	}

	interest, err := loan.InterestAmount()
	if err != nil {
		return nil, customError.WrapInvalidSchedule(err)
	}

	return &domain.PromissoryNoteData{
		LoanID:            loan.ID,
		Principal:         loan.Principal.Round(2),
		InterestAmount:    interest.Round(2),
		TotalAmount:       loan.Principal.Add(interest).Round(2),
		InstallmentAmount: installments[0].AmountDue.Round(2),
		NumberOfPayments:  len(installments),
		Frequency:         loan.Frequency,
		FirstDueDate:      installments[0].DueDate,
		LastDueDate:       installments[len(installments)-1].DueDate,
		TransactionDate:   loan.TransactionDate,
	}, nil
}

// VoidLoan cancels a loan terminally. A voided loan keeps its voided status
// forever; the aggregate recompute never touches it again.
func (s *LoanService) VoidLoan(ctx context.Context, ownerID, loanID uuid.UUID, reason string) (*domain.Loan, error) {
	loan, err := s.getOwnedLoan(ctx, ownerID, loanID)
	if err != nil {
		return nil, err
	}
	if loan.IsVoided {
		return nil, customError.WrapLoanVoided(loanID.String())
	}

	voidedAt := time.Now()
	if err := s.LoanRepo.MarkVoided(ctx, loanID, reason, voidedAt); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	loan.Status = domain.LoanStatusVoided
	loan.IsVoided = true
	loan.VoidReason = reason
	loan.VoidedAt = &voidedAt

	s.invalidateDashboard(ctx, ownerID)

	return loan, nil
}

// MarkDefaulted flags an active loan as defaulted. The transition is manual;
// nothing derives it.
func (s *LoanService) MarkDefaulted(ctx context.Context, ownerID, loanID uuid.UUID) (*domain.Loan, error) {
	loan, err := s.getOwnedLoan(ctx, ownerID, loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != domain.LoanStatusActive {
		return nil, customError.WrapLoanNotActive(loanID.String())
	}

	if err := s.LoanRepo.UpdateStatus(ctx, loanID, domain.LoanStatusDefaulted); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	loan.Status = domain.LoanStatusDefaulted

	s.invalidateDashboard(ctx, ownerID)

	return loan, nil
}

func (s *LoanService) getOwnedLoan(ctx context.Context, ownerID, loanID uuid.UUID) (*domain.Loan, error) {
	loan, err := s.LoanRepo.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapLoanNotFound(loanID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}
	if loan.LenderID != ownerID {
		return nil, customError.WrapForbidden()
	}
	return loan, nil
}

func (s *LoanService) invalidateDashboard(ctx context.Context, lenderID uuid.UUID) {
	invalidateDashboardCache(ctx, s.redis, lenderID)
}
