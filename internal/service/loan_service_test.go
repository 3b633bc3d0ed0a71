package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pautanglog/pautanglog/internal/domain"
	"github.com/pautanglog/pautanglog/internal/repository/mocks"
	customError "github.com/pautanglog/pautanglog/pkg/errors"
)

type loanFixture struct {
	lenderID uuid.UUID
	borrower *domain.Borrower

	loanRepo     *mocks.MockLoanRepository
	instRepo     *mocks.MockInstallmentRepository
	payRepo      *mocks.MockPaymentRepository
	borrowerRepo *mocks.MockBorrowerRepository
	service      *LoanService
}

func newLoanFixture() *loanFixture {
	lenderID := uuid.New()
	borrower := &domain.Borrower{
		ID:       uuid.New(),
		LenderID: lenderID,
		Name:     "Juan Dela Cruz",
	}

	loanRepo := &mocks.MockLoanRepository{}
	instRepo := &mocks.MockInstallmentRepository{}
	payRepo := &mocks.MockPaymentRepository{}
	borrowerRepo := &mocks.MockBorrowerRepository{}

	return &loanFixture{
		lenderID:     lenderID,
		borrower:     borrower,
		loanRepo:     loanRepo,
		instRepo:     instRepo,
		payRepo:      payRepo,
		borrowerRepo: borrowerRepo,
		service:      NewLoanService(loanRepo, instRepo, payRepo, borrowerRepo, mocks.PassthroughTxManager{}, nil),
	}
}

func (f *loanFixture) createRequest() *domain.CreateLoanRequest {
	return &domain.CreateLoanRequest{
		BorrowerID:      f.borrower.ID,
		Principal:       decimal.NewFromInt(10000),
		InterestType:    domain.InterestTypeFixed,
		InterestValue:   decimal.NewFromInt(500),
		InterestPeriod:  domain.InterestPeriodTotal,
		Duration:        2,
		DurationUnit:    domain.DurationUnitMonths,
		Frequency:       domain.FrequencyMonthly,
		TransactionDate: time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC),
		FirstDueDate:    time.Date(2024, time.February, 5, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateLoanGeneratesMonthlySchedule(t *testing.T) {
	f := newLoanFixture()

	f.borrowerRepo.On("GetByID", mock.Anything, f.borrower.ID).Return(f.borrower, nil)
	f.loanRepo.On("Create", mock.Anything, mock.MatchedBy(func(l *domain.Loan) bool {
		return l.LenderID == f.lenderID && l.Status == domain.LoanStatusActive
	})).Return(nil)
	f.instRepo.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)

	loan, installments, err := f.service.CreateLoan(context.Background(), f.lenderID, f.createRequest())

	require.NoError(t, err)
	// 10000 principal + 500 fixed interest over 2 monthly installments
	require.Len(t, installments, 2)
	assert.True(t, installments[0].AmountDue.Equal(decimal.NewFromInt(5250)))
	assert.True(t, installments[1].AmountDue.Equal(decimal.NewFromInt(5250)))
	assert.Equal(t, time.Date(2024, time.February, 5, 0, 0, 0, 0, time.UTC), installments[0].DueDate)
	assert.Equal(t, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), installments[1].DueDate)
	assert.Equal(t, domain.InstallmentStatusPending, installments[0].Status)
	assert.Equal(t, loan.ID, installments[0].LoanID)
	f.loanRepo.AssertExpectations(t)
	f.instRepo.AssertExpectations(t)
}

func TestCreateLoanHonorsCallerSchedule(t *testing.T) {
	f := newLoanFixture()

	request := f.createRequest()
	request.Schedule = []domain.ScheduleEntryRequest{
		{DueDate: time.Date(2024, time.February, 15, 0, 0, 0, 0, time.UTC), AmountDue: decimal.NewFromInt(7000)},
		{DueDate: time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), AmountDue: decimal.NewFromInt(3500)},
	}

	f.borrowerRepo.On("GetByID", mock.Anything, f.borrower.ID).Return(f.borrower, nil)
	f.loanRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.instRepo.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)

	_, installments, err := f.service.CreateLoan(context.Background(), f.lenderID, request)

	require.NoError(t, err)
	require.Len(t, installments, 2)
	assert.True(t, installments[0].AmountDue.Equal(decimal.NewFromInt(7000)))
	assert.Equal(t, 1, installments[0].Sequence)
	assert.Equal(t, 2, installments[1].Sequence)
}

func TestCreateLoanForbiddenForBorrowerOfAnotherLender(t *testing.T) {
	f := newLoanFixture()
	f.borrower.LenderID = uuid.New()

	f.borrowerRepo.On("GetByID", mock.Anything, f.borrower.ID).Return(f.borrower, nil)

	_, _, err := f.service.CreateLoan(context.Background(), f.lenderID, f.createRequest())

	require.Error(t, err)
	assert.True(t, errors.Is(err, customError.ErrForbidden))
	f.loanRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetLoanAggregatesBalance(t *testing.T) {
	f := newLoanFixture()
	loanID := uuid.New()

	loan := &domain.Loan{
		ID:             loanID,
		LenderID:       f.lenderID,
		Principal:      decimal.NewFromInt(10000),
		InterestType:   domain.InterestTypeFixed,
		InterestValue:  decimal.NewFromInt(500),
		InterestPeriod: domain.InterestPeriodTotal,
		Duration:       2,
		DurationUnit:   domain.DurationUnitMonths,
		Frequency:      domain.FrequencyMonthly,
		Status:         domain.LoanStatusActive,
	}
	first := &domain.Installment{
		ID: uuid.New(), LoanID: loanID, Sequence: 1,
		DueDate:   time.Now().AddDate(0, -1, 0),
		AmountDue: decimal.NewFromInt(5250),
		Status:    domain.InstallmentStatusPaid,
	}
	second := &domain.Installment{
		ID: uuid.New(), LoanID: loanID, Sequence: 2,
		DueDate:       time.Now().AddDate(0, 1, 0),
		AmountDue:     decimal.NewFromInt(5250),
		PenaltyAmount: decimal.NewFromInt(100),
		Status:        domain.InstallmentStatusPending,
	}

	f.loanRepo.On("GetByID", mock.Anything, loanID).Return(loan, nil)
	f.instRepo.On("ListByLoan", mock.Anything, loanID).Return([]*domain.Installment{first, second}, nil)
	f.payRepo.On("TotalPaidByInstallment", mock.Anything, first.ID).Return(decimal.NewFromInt(5250), nil)
	f.payRepo.On("TotalPaidByInstallment", mock.Anything, second.ID).Return(decimal.Zero, nil)

	response, err := f.service.GetLoan(context.Background(), f.lenderID, loanID)

	require.NoError(t, err)
	assert.True(t, response.InterestAmount.Equal(decimal.NewFromInt(500)))
	assert.True(t, response.TotalAmount.Equal(decimal.NewFromInt(10500)))
	assert.True(t, response.TotalPenalties.Equal(decimal.NewFromInt(100)))
	assert.True(t, response.TotalPaid.Equal(decimal.NewFromInt(5250)))
	// 10500 + 100 penalty - 5250 paid
	assert.True(t, response.RemainingBalance.Equal(decimal.NewFromInt(5350)))
	require.Len(t, response.Installments, 2)
	assert.Equal(t, domain.InstallmentStatusPaid, response.Installments[0].DisplayStatus)
	assert.Equal(t, domain.InstallmentStatusPending, response.Installments[1].DisplayStatus)
	assert.True(t, response.Installments[1].TotalDue.Equal(decimal.NewFromInt(5350)))
}

func TestGetLoanNotFound(t *testing.T) {
	f := newLoanFixture()
	loanID := uuid.New()

	f.loanRepo.On("GetByID", mock.Anything, loanID).Return(nil, sql.ErrNoRows)

	_, err := f.service.GetLoan(context.Background(), f.lenderID, loanID)

	require.Error(t, err)
	assert.True(t, errors.Is(err, customError.ErrLoanNotFound))
}

func TestVoidLoanIsTerminal(t *testing.T) {
	f := newLoanFixture()
	loanID := uuid.New()
	loan := &domain.Loan{ID: loanID, LenderID: f.lenderID, Status: domain.LoanStatusActive}

	f.loanRepo.On("GetByID", mock.Anything, loanID).Return(loan, nil)
	f.loanRepo.On("MarkVoided", mock.Anything, loanID, "wrong borrower", mock.Anything).Return(nil)

	voided, err := f.service.VoidLoan(context.Background(), f.lenderID, loanID, "wrong borrower")

	require.NoError(t, err)
	assert.Equal(t, domain.LoanStatusVoided, voided.Status)
	assert.True(t, voided.IsVoided)
	assert.Equal(t, "wrong borrower", voided.VoidReason)
	require.NotNil(t, voided.VoidedAt)

	// Voiding twice is rejected
	_, err = f.service.VoidLoan(context.Background(), f.lenderID, loanID, "again")
	require.Error(t, err)
	assert.True(t, errors.Is(err, customError.ErrLoanVoided))
}

func TestVoidLoanForbidden(t *testing.T) {
	f := newLoanFixture()
	loanID := uuid.New()
	loan := &domain.Loan{ID: loanID, LenderID: uuid.New(), Status: domain.LoanStatusActive}

	f.loanRepo.On("GetByID", mock.Anything, loanID).Return(loan, nil)

	_, err := f.service.VoidLoan(context.Background(), f.lenderID, loanID, "not mine")

	require.Error(t, err)
	assert.True(t, errors.Is(err, customError.ErrForbidden))
	f.loanRepo.AssertNotCalled(t, "MarkVoided", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMarkDefaultedRequiresActiveLoan(t *testing.T) {
	f := newLoanFixture()
	loanID := uuid.New()
	loan := &domain.Loan{ID: loanID, LenderID: f.lenderID, Status: domain.LoanStatusCompleted}

	f.loanRepo.On("GetByID", mock.Anything, loanID).Return(loan, nil)

	_, err := f.service.MarkDefaulted(context.Background(), f.lenderID, loanID)

	require.Error(t, err)
	assert.True(t, errors.Is(err, customError.ErrLoanNotActive))
	f.loanRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestMarkDefaulted(t *testing.T) {
	f := newLoanFixture()
	loanID := uuid.New()
	loan := &domain.Loan{ID: loanID, LenderID: f.lenderID, Status: domain.LoanStatusActive}

	f.loanRepo.On("GetByID", mock.Anything, loanID).Return(loan, nil)
	f.loanRepo.On("UpdateStatus", mock.Anything, loanID, domain.LoanStatusDefaulted).Return(nil)

	defaulted, err := f.service.MarkDefaulted(context.Background(), f.lenderID, loanID)

	require.NoError(t, err)
	assert.Equal(t, domain.LoanStatusDefaulted, defaulted.Status)
	f.loanRepo.AssertExpectations(t)
}

func TestPromissoryNote(t *testing.T) {
	f := newLoanFixture()
	loanID := uuid.New()
	loan := &domain.Loan{
		ID:              loanID,
		LenderID:        f.lenderID,
		Principal:       decimal.NewFromInt(10000),
		InterestType:    domain.InterestTypeFixed,
		InterestValue:   decimal.NewFromInt(500),
		InterestPeriod:  domain.InterestPeriodTotal,
		Duration:        2,
		DurationUnit:    domain.DurationUnitMonths,
		Frequency:       domain.FrequencyMonthly,
		TransactionDate: time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC),
		Status:          domain.LoanStatusActive,
	}
	installments := []*domain.Installment{
		{ID: uuid.New(), LoanID: loanID, Sequence: 1, DueDate: time.Date(2024, time.February, 5, 0, 0, 0, 0, time.UTC), AmountDue: decimal.NewFromInt(5250)},
		{ID: uuid.New(), LoanID: loanID, Sequence: 2, DueDate: time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), AmountDue: decimal.NewFromInt(5250)},
	}

	f.loanRepo.On("GetByID", mock.Anything, loanID).Return(loan, nil)
	f.instRepo.On("ListByLoan", mock.Anything, loanID).Return(installments, nil)

	note, err := f.service.PromissoryNote(context.Background(), f.lenderID, loanID)

	require.NoError(t, err)
	assert.True(t, note.TotalAmount.Equal(decimal.NewFromInt(10500)))
	assert.True(t, note.InstallmentAmount.Equal(decimal.NewFromInt(5250)))
	assert.Equal(t, 2, note.NumberOfPayments)
	assert.Equal(t, installments[0].DueDate, note.FirstDueDate)
	assert.Equal(t, installments[1].DueDate, note.LastDueDate)
}
