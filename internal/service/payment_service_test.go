package service

import (
	"context"
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

type paymentFixture struct {
	lenderID uuid.UUID
	loan     *domain.Loan
	inst     *domain.Installment

	loanRepo *mocks.MockLoanRepository
	instRepo *mocks.MockInstallmentRepository
	payRepo  *mocks.MockPaymentRepository
	service  *PaymentService
}

// newPaymentFixture builds a loan of 10000 principal + 500 fixed interest
// with two 5250 installments, and a payment service wired to mocks.
func newPaymentFixture() *paymentFixture {
	lenderID := uuid.New()
	loanID := uuid.New()

	loan := &domain.Loan{
		ID:             loanID,
		LenderID:       lenderID,
		Principal:      decimal.NewFromInt(10000),
		InterestType:   domain.InterestTypeFixed,
		InterestValue:  decimal.NewFromInt(500),
		InterestPeriod: domain.InterestPeriodTotal,
		Duration:       2,
		DurationUnit:   domain.DurationUnitMonths,
		Frequency:      domain.FrequencyMonthly,
		Status:         domain.LoanStatusActive,
	}

	inst := &domain.Installment{
		ID:        uuid.New(),
		LoanID:    loanID,
		Sequence:  1,
		DueDate:   time.Now().AddDate(0, 1, 0),
		AmountDue: decimal.NewFromInt(5250),
		Status:    domain.InstallmentStatusPending,
	}

	loanRepo := &mocks.MockLoanRepository{}
	instRepo := &mocks.MockInstallmentRepository{}
	payRepo := &mocks.MockPaymentRepository{}

	return &paymentFixture{
		lenderID: lenderID,
		loan:     loan,
		inst:     inst,
		loanRepo: loanRepo,
		instRepo: instRepo,
		payRepo:  payRepo,
		service:  NewPaymentService(loanRepo, instRepo, payRepo, mocks.PassthroughTxManager{}, nil),
	}
}

func paymentRequest(amount int64) *domain.RecordPaymentRequest {
	return &domain.RecordPaymentRequest{
		Amount:      decimal.NewFromInt(amount),
		Method:      domain.PaymentMethodCash,
		PaymentDate: time.Now(),
	}
}

func TestAddPaymentRejectsOverpayment(t *testing.T) {
	f := newPaymentFixture()

	f.instRepo.On("GetByIDForUpdate", mock.Anything, f.inst.ID).Return(f.inst, nil)
	f.loanRepo.On("GetByID", mock.Anything, f.loan.ID).Return(f.loan, nil)
	f.payRepo.On("TotalPaidByInstallment", mock.Anything, f.inst.ID).Return(decimal.Zero, nil)

	// 6000 against a 5250 installment with nothing paid
	_, err := f.service.AddPayment(context.Background(), f.lenderID, f.inst.ID, paymentRequest(6000))

	require.Error(t, err)
	assert.True(t, errors.Is(err, customError.ErrOverpayment))
	f.payRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.instRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddPaymentRejectsOverpaymentWithExistingPayments(t *testing.T) {
	f := newPaymentFixture()

	f.instRepo.On("GetByIDForUpdate", mock.Anything, f.inst.ID).Return(f.inst, nil)
	f.loanRepo.On("GetByID", mock.Anything, f.loan.ID).Return(f.loan, nil)
	f.payRepo.On("TotalPaidByInstallment", mock.Anything, f.inst.ID).Return(decimal.NewFromInt(5000), nil)

	// Only 250 remains; 300 must fail
	_, err := f.service.AddPayment(context.Background(), f.lenderID, f.inst.ID, paymentRequest(300))

	require.Error(t, err)
	assert.True(t, errors.Is(err, customError.ErrOverpayment))
	f.payRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAddPaymentFullAmountMarksInstallmentPaid(t *testing.T) {
	f := newPaymentFixture()

	f.instRepo.On("GetByIDForUpdate", mock.Anything, f.inst.ID).Return(f.inst, nil)
	f.loanRepo.On("GetByID", mock.Anything, f.loan.ID).Return(f.loan, nil)
	f.payRepo.On("TotalPaidByInstallment", mock.Anything, f.inst.ID).Return(decimal.Zero, nil)
	f.payRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Payment) bool {
		return p.InstallmentID == f.inst.ID && p.AmountPaid.Equal(decimal.NewFromInt(5250))
	})).Return(nil)
	f.instRepo.On("UpdateStatus", mock.Anything, f.inst.ID, domain.InstallmentStatusPaid).Return(nil)
	f.instRepo.On("ListByLoan", mock.Anything, f.loan.ID).Return([]*domain.Installment{f.inst}, nil)
	f.payRepo.On("TotalPaidByLoan", mock.Anything, f.loan.ID).Return(decimal.NewFromInt(5250), nil)

	payment, err := f.service.AddPayment(context.Background(), f.lenderID, f.inst.ID, paymentRequest(5250))

	require.NoError(t, err)
	assert.Equal(t, domain.PaymentMethodCash, payment.Method)
	f.instRepo.AssertExpectations(t)
	f.payRepo.AssertExpectations(t)
	// 5250 of 10500 paid: loan stays active
	f.loanRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddPaymentPartialAmountMarksInstallmentPartial(t *testing.T) {
	f := newPaymentFixture()

	f.instRepo.On("GetByIDForUpdate", mock.Anything, f.inst.ID).Return(f.inst, nil)
	f.loanRepo.On("GetByID", mock.Anything, f.loan.ID).Return(f.loan, nil)
	f.payRepo.On("TotalPaidByInstallment", mock.Anything, f.inst.ID).Return(decimal.Zero, nil)
	f.payRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.instRepo.On("UpdateStatus", mock.Anything, f.inst.ID, domain.InstallmentStatusPartial).Return(nil)
	f.instRepo.On("ListByLoan", mock.Anything, f.loan.ID).Return([]*domain.Installment{f.inst}, nil)
	f.payRepo.On("TotalPaidByLoan", mock.Anything, f.loan.ID).Return(decimal.NewFromInt(1000), nil)

	_, err := f.service.AddPayment(context.Background(), f.lenderID, f.inst.ID, paymentRequest(1000))

	require.NoError(t, err)
	f.instRepo.AssertExpectations(t)
}

func TestAddPaymentSettlesLoan(t *testing.T) {
	f := newPaymentFixture()

	f.instRepo.On("GetByIDForUpdate", mock.Anything, f.inst.ID).Return(f.inst, nil)
	f.loanRepo.On("GetByID", mock.Anything, f.loan.ID).Return(f.loan, nil)
	f.payRepo.On("TotalPaidByInstallment", mock.Anything, f.inst.ID).Return(decimal.Zero, nil)
	f.payRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.instRepo.On("UpdateStatus", mock.Anything, f.inst.ID, domain.InstallmentStatusPaid).Return(nil)
	f.instRepo.On("ListByLoan", mock.Anything, f.loan.ID).Return([]*domain.Installment{f.inst}, nil)
	// The whole 10500 is now paid across the loan
	f.payRepo.On("TotalPaidByLoan", mock.Anything, f.loan.ID).Return(decimal.NewFromInt(10500), nil)
	f.loanRepo.On("UpdateStatus", mock.Anything, f.loan.ID, domain.LoanStatusCompleted).Return(nil)

	_, err := f.service.AddPayment(context.Background(), f.lenderID, f.inst.ID, paymentRequest(5250))

	require.NoError(t, err)
	f.loanRepo.AssertExpectations(t)
	assert.Equal(t, domain.LoanStatusCompleted, f.loan.Status)
}

func TestAddPaymentVoidedLoanNeverCompletes(t *testing.T) {
	f := newPaymentFixture()
	f.loan.Status = domain.LoanStatusVoided
	f.loan.IsVoided = true

	f.instRepo.On("GetByIDForUpdate", mock.Anything, f.inst.ID).Return(f.inst, nil)
	f.loanRepo.On("GetByID", mock.Anything, f.loan.ID).Return(f.loan, nil)
	f.payRepo.On("TotalPaidByInstallment", mock.Anything, f.inst.ID).Return(decimal.Zero, nil)
	f.payRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.instRepo.On("UpdateStatus", mock.Anything, f.inst.ID, domain.InstallmentStatusPaid).Return(nil)
	f.instRepo.On("ListByLoan", mock.Anything, f.loan.ID).Return([]*domain.Installment{f.inst}, nil)
	f.payRepo.On("TotalPaidByLoan", mock.Anything, f.loan.ID).Return(decimal.NewFromInt(10500), nil)

	_, err := f.service.AddPayment(context.Background(), f.lenderID, f.inst.ID, paymentRequest(5250))

	require.NoError(t, err)
	// Settled or not, a voided loan keeps its voided status
	f.loanRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, domain.LoanStatusVoided, f.loan.Status)
}

func TestAddPaymentForbiddenForOtherLender(t *testing.T) {
	f := newPaymentFixture()

	f.instRepo.On("GetByIDForUpdate", mock.Anything, f.inst.ID).Return(f.inst, nil)
	f.loanRepo.On("GetByID", mock.Anything, f.loan.ID).Return(f.loan, nil)

	_, err := f.service.AddPayment(context.Background(), uuid.New(), f.inst.ID, paymentRequest(100))

	require.Error(t, err)
	assert.True(t, errors.Is(err, customError.ErrForbidden))
	f.payRepo.AssertNotCalled(t, "TotalPaidByInstallment", mock.Anything, mock.Anything)
	f.payRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdatePaymentExcludesEditedEntryFromRemaining(t *testing.T) {
	f := newPaymentFixture()
	f.inst.Status = domain.InstallmentStatusPartial

	existing := &domain.Payment{
		ID:            uuid.New(),
		InstallmentID: f.inst.ID,
		AmountPaid:    decimal.NewFromInt(600),
		Method:        domain.PaymentMethodCash,
	}

	f.payRepo.On("GetByID", mock.Anything, existing.ID).Return(existing, nil)
	f.instRepo.On("GetByIDForUpdate", mock.Anything, f.inst.ID).Return(f.inst, nil)
	f.loanRepo.On("GetByID", mock.Anything, f.loan.ID).Return(f.loan, nil)
	// 600 (edited) + 200 (another entry) already in the ledger
	f.payRepo.On("TotalPaidByInstallment", mock.Anything, f.inst.ID).Return(decimal.NewFromInt(800), nil)
	f.payRepo.On("Update", mock.Anything, mock.MatchedBy(func(p *domain.Payment) bool {
		return p.ID == existing.ID && p.AmountPaid.Equal(decimal.NewFromInt(5050))
	})).Return(nil)
	f.instRepo.On("UpdateStatus", mock.Anything, f.inst.ID, domain.InstallmentStatusPaid).Return(nil)
	f.instRepo.On("ListByLoan", mock.Anything, f.loan.ID).Return([]*domain.Installment{f.inst}, nil)
	f.payRepo.On("TotalPaidByLoan", mock.Anything, f.loan.ID).Return(decimal.NewFromInt(5250), nil)

	// Editing the 600 entry up to 5050 is fine: 5050 + 200 == 5250 total due
	request := &domain.UpdatePaymentRequest{
		Amount:      decimal.NewFromInt(5050),
		Method:      domain.PaymentMethodCash,
		PaymentDate: time.Now(),
	}
	_, err := f.service.UpdatePayment(context.Background(), f.lenderID, existing.ID, request)

	require.NoError(t, err)
	f.payRepo.AssertExpectations(t)
}

func TestUpdatePaymentRejectsWhenNewTotalOverflows(t *testing.T) {
	f := newPaymentFixture()

	existing := &domain.Payment{
		ID:            uuid.New(),
		InstallmentID: f.inst.ID,
		AmountPaid:    decimal.NewFromInt(600),
	}

	f.payRepo.On("GetByID", mock.Anything, existing.ID).Return(existing, nil)
	f.instRepo.On("GetByIDForUpdate", mock.Anything, f.inst.ID).Return(f.inst, nil)
	f.loanRepo.On("GetByID", mock.Anything, f.loan.ID).Return(f.loan, nil)
	f.payRepo.On("TotalPaidByInstallment", mock.Anything, f.inst.ID).Return(decimal.NewFromInt(800), nil)

	// 5100 + 200 from the other entry would exceed the 5250 due
	request := &domain.UpdatePaymentRequest{
		Amount:      decimal.NewFromInt(5100),
		Method:      domain.PaymentMethodCash,
		PaymentDate: time.Now(),
	}
	_, err := f.service.UpdatePayment(context.Background(), f.lenderID, existing.ID, request)

	require.Error(t, err)
	assert.True(t, errors.Is(err, customError.ErrOverpayment))
	f.payRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestDeletePaymentRevertsInstallmentStatus(t *testing.T) {
	f := newPaymentFixture()
	f.inst.Status = domain.InstallmentStatusPaid

	existing := &domain.Payment{
		ID:            uuid.New(),
		InstallmentID: f.inst.ID,
		AmountPaid:    decimal.NewFromInt(5250),
	}

	f.payRepo.On("GetByID", mock.Anything, existing.ID).Return(existing, nil)
	f.instRepo.On("GetByIDForUpdate", mock.Anything, f.inst.ID).Return(f.inst, nil)
	f.loanRepo.On("GetByID", mock.Anything, f.loan.ID).Return(f.loan, nil)
	f.payRepo.On("TotalPaidByInstallment", mock.Anything, f.inst.ID).Return(decimal.NewFromInt(5250), nil)
	f.payRepo.On("Delete", mock.Anything, existing.ID).Return(nil)
	f.instRepo.On("UpdateStatus", mock.Anything, f.inst.ID, domain.InstallmentStatusPending).Return(nil)
	f.instRepo.On("ListByLoan", mock.Anything, f.loan.ID).Return([]*domain.Installment{f.inst}, nil)
	f.payRepo.On("TotalPaidByLoan", mock.Anything, f.loan.ID).Return(decimal.Zero, nil)

	err := f.service.DeletePayment(context.Background(), f.lenderID, existing.ID)

	require.NoError(t, err)
	f.instRepo.AssertExpectations(t)
	f.payRepo.AssertExpectations(t)
}

func TestDeletePaymentNeverDemotesCompletedLoan(t *testing.T) {
	f := newPaymentFixture()
	f.loan.Status = domain.LoanStatusCompleted
	f.inst.Status = domain.InstallmentStatusPaid

	existing := &domain.Payment{
		ID:            uuid.New(),
		InstallmentID: f.inst.ID,
		AmountPaid:    decimal.NewFromInt(5250),
	}

	f.payRepo.On("GetByID", mock.Anything, existing.ID).Return(existing, nil)
	f.instRepo.On("GetByIDForUpdate", mock.Anything, f.inst.ID).Return(f.inst, nil)
	f.loanRepo.On("GetByID", mock.Anything, f.loan.ID).Return(f.loan, nil)
	f.payRepo.On("TotalPaidByInstallment", mock.Anything, f.inst.ID).Return(decimal.NewFromInt(5250), nil)
	f.payRepo.On("Delete", mock.Anything, existing.ID).Return(nil)
	f.instRepo.On("UpdateStatus", mock.Anything, f.inst.ID, domain.InstallmentStatusPending).Return(nil)
	f.instRepo.On("ListByLoan", mock.Anything, f.loan.ID).Return([]*domain.Installment{f.inst}, nil)
	f.payRepo.On("TotalPaidByLoan", mock.Anything, f.loan.ID).Return(decimal.NewFromInt(5250), nil)

	err := f.service.DeletePayment(context.Background(), f.lenderID, existing.ID)

	require.NoError(t, err)
	// The balance is positive again, but completion is one-directional
	f.loanRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, domain.LoanStatusCompleted, f.loan.Status)
}

func TestSetPenaltyLeavesInstallmentStatusAlone(t *testing.T) {
	f := newPaymentFixture()
	f.inst.Status = domain.InstallmentStatusPaid

	f.instRepo.On("GetByIDForUpdate", mock.Anything, f.inst.ID).Return(f.inst, nil)
	f.loanRepo.On("GetByID", mock.Anything, f.loan.ID).Return(f.loan, nil)
	f.instRepo.On("UpdatePenalty", mock.Anything, f.inst.ID, decimal.NewFromInt(150), "late fee").Return(nil)
	f.instRepo.On("ListByLoan", mock.Anything, f.loan.ID).Return([]*domain.Installment{f.inst}, nil)
	f.payRepo.On("TotalPaidByLoan", mock.Anything, f.loan.ID).Return(decimal.NewFromInt(5250), nil)

	inst, err := f.service.SetPenalty(context.Background(), f.lenderID, f.inst.ID, decimal.NewFromInt(150), "late fee")

	require.NoError(t, err)
	assert.True(t, inst.PenaltyAmount.Equal(decimal.NewFromInt(150)))
	// A penalty raises total due past the ledger total, but the stored
	// status is deliberately not re-derived here.
	f.instRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, domain.InstallmentStatusPaid, inst.Status)
}

func TestSetRebateRecomputesLoanAggregate(t *testing.T) {
	f := newPaymentFixture()

	f.instRepo.On("GetByIDForUpdate", mock.Anything, f.inst.ID).Return(f.inst, nil)
	f.loanRepo.On("GetByID", mock.Anything, f.loan.ID).Return(f.loan, nil)
	f.instRepo.On("UpdateRebate", mock.Anything, f.inst.ID, decimal.NewFromInt(10500), "condoned").Return(nil)
	f.instRepo.On("ListByLoan", mock.Anything, f.loan.ID).Return([]*domain.Installment{f.inst}, nil)
	f.payRepo.On("TotalPaidByLoan", mock.Anything, f.loan.ID).Return(decimal.Zero, nil)
	// Rebating the whole amount settles the loan with nothing paid
	f.loanRepo.On("UpdateStatus", mock.Anything, f.loan.ID, domain.LoanStatusCompleted).Return(nil)

	_, err := f.service.SetRebate(context.Background(), f.lenderID, f.inst.ID, decimal.NewFromInt(10500), "condoned")

	require.NoError(t, err)
	f.loanRepo.AssertExpectations(t)
}
