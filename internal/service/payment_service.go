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

// PaymentService is the write side of the installment ledger. Every mutation
// locks the installment row, enforces the overpayment rule, re-derives the
// installment status from the new ledger total, and recomputes the loan
// aggregate, all inside one transaction.
type PaymentService struct {
	LoanRepo        repository.LoanRepository
	InstallmentRepo repository.InstallmentRepository
	PaymentRepo     repository.PaymentRepository
	tx              repository.TxManager
	redis           *redis.Client
}

func NewPaymentService(
	loanRepo repository.LoanRepository,
	installmentRepo repository.InstallmentRepository,
	paymentRepo repository.PaymentRepository,
	tx repository.TxManager,
	redisClient *redis.Client,
) *PaymentService {
	return &PaymentService{
		LoanRepo:        loanRepo,
		InstallmentRepo: installmentRepo,
		PaymentRepo:     paymentRepo,
		tx:              tx,
		redis:           redisClient,
	}
}

// AddPayment appends a payment to an installment's ledger. It fails with an
// overpayment error when the amount exceeds what is still due on that
// installment.
func (s *PaymentService) AddPayment(ctx context.Context, ownerID, installmentID uuid.UUID, request *domain.RecordPaymentRequest) (*domain.Payment, error) {
	var payment *domain.Payment
	var lenderID uuid.UUID

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		inst, loan, err := s.lockOwnedInstallment(ctx, ownerID, installmentID)
		if err != nil {
			return err
		}
		lenderID = loan.LenderID

		totalPaid, err := s.PaymentRepo.TotalPaidByInstallment(ctx, inst.ID)
		if err != nil {
			return customError.WrapDatabaseError(err)
		}

		remaining := inst.TotalDue().Sub(totalPaid)
		if request.Amount.GreaterThan(remaining) {
			return customError.WrapOverpayment(remaining.Round(2).StringFixed(2))
		}

		now := time.Now()
		payment = &domain.Payment{
			ID:              uuid.New(),
			InstallmentID:   inst.ID,
			AmountPaid:      request.Amount.Round(2),
			Method:          request.Method,
			ReferenceNumber: request.ReferenceNumber,
			ReceiptNumber:   request.ReceiptNumber,
			PaymentDate:     request.PaymentDate,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.PaymentRepo.Create(ctx, payment); err != nil {
			return customError.WrapDatabaseError(err)
		}

		if err := s.applyInstallmentStatus(ctx, inst, totalPaid.Add(payment.AmountPaid)); err != nil {
			return err
		}

		_, err = recomputeLoanAggregate(ctx, s.LoanRepo, s.InstallmentRepo, s.PaymentRepo, loan)
		return err
	})
	if err != nil {
		return nil, err
	}

	invalidateDashboardCache(ctx, s.redis, lenderID)

	return payment, nil
}

// UpdatePayment overwrites a ledger entry. The overpayment check excludes
// the entry being edited, so lowering or re-stating an amount within the
// freed-up headroom always succeeds.
func (s *PaymentService) UpdatePayment(ctx context.Context, ownerID, paymentID uuid.UUID, request *domain.UpdatePaymentRequest) (*domain.Payment, error) {
	var payment *domain.Payment
	var lenderID uuid.UUID

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.getPayment(ctx, paymentID)
		if err != nil {
			return err
		}

		inst, loan, err := s.lockOwnedInstallment(ctx, ownerID, existing.InstallmentID)
		if err != nil {
			return err
		}
		lenderID = loan.LenderID

		totalPaid, err := s.PaymentRepo.TotalPaidByInstallment(ctx, inst.ID)
		if err != nil {
			return customError.WrapDatabaseError(err)
		}

		paidExcluding := totalPaid.Sub(existing.AmountPaid)
		remaining := inst.TotalDue().Sub(paidExcluding)
		if request.Amount.GreaterThan(remaining) {
			return customError.WrapOverpayment(remaining.Round(2).StringFixed(2))
		}

		existing.AmountPaid = request.Amount.Round(2)
		existing.Method = request.Method
		existing.ReferenceNumber = request.ReferenceNumber
		existing.ReceiptNumber = request.ReceiptNumber
		existing.PaymentDate = request.PaymentDate
		if err := s.PaymentRepo.Update(ctx, existing); err != nil {
			return customError.WrapDatabaseError(err)
		}
		payment = existing

		if err := s.applyInstallmentStatus(ctx, inst, paidExcluding.Add(existing.AmountPaid)); err != nil {
			return err
		}

		_, err = recomputeLoanAggregate(ctx, s.LoanRepo, s.InstallmentRepo, s.PaymentRepo, loan)
		return err
	})
	if err != nil {
		return nil, err
	}

	invalidateDashboardCache(ctx, s.redis, lenderID)

	return payment, nil
}

// DeletePayment removes a ledger entry unconditionally. Deleting the last
// payment against a paid installment demotes its status back to pending.
func (s *PaymentService) DeletePayment(ctx context.Context, ownerID, paymentID uuid.UUID) error {
	var lenderID uuid.UUID

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.getPayment(ctx, paymentID)
		if err != nil {
			return err
		}

		inst, loan, err := s.lockOwnedInstallment(ctx, ownerID, existing.InstallmentID)
		if err != nil {
			return err
		}
		lenderID = loan.LenderID

		totalPaid, err := s.PaymentRepo.TotalPaidByInstallment(ctx, inst.ID)
		if err != nil {
			return customError.WrapDatabaseError(err)
		}

		if err := s.PaymentRepo.Delete(ctx, existing.ID); err != nil {
			return customError.WrapDatabaseError(err)
		}

		if err := s.applyInstallmentStatus(ctx, inst, totalPaid.Sub(existing.AmountPaid)); err != nil {
			return err
		}

		_, err = recomputeLoanAggregate(ctx, s.LoanRepo, s.InstallmentRepo, s.PaymentRepo, loan)
		return err
	})
	if err != nil {
		return err
	}

	invalidateDashboardCache(ctx, s.redis, lenderID)

	return nil
}

// SetPenalty sets an installment's penalty. The installment's total due and
// the loan aggregate change; the stored installment status is deliberately
// left alone.
func (s *PaymentService) SetPenalty(ctx context.Context, ownerID, installmentID uuid.UUID, amount decimal.Decimal, remarks string) (*domain.Installment, error) {
	return s.adjustInstallment(ctx, ownerID, installmentID, func(ctx context.Context, inst *domain.Installment) error {
		if err := s.InstallmentRepo.UpdatePenalty(ctx, inst.ID, amount.Round(2), remarks); err != nil {
			return customError.WrapDatabaseError(err)
		}
		inst.PenaltyAmount = amount.Round(2)
		inst.PenaltyRemarks = remarks
		return nil
	})
}

// SetRebate sets an installment's rebate. Same recompute rules as SetPenalty.
func (s *PaymentService) SetRebate(ctx context.Context, ownerID, installmentID uuid.UUID, amount decimal.Decimal, remarks string) (*domain.Installment, error) {
	return s.adjustInstallment(ctx, ownerID, installmentID, func(ctx context.Context, inst *domain.Installment) error {
		if err := s.InstallmentRepo.UpdateRebate(ctx, inst.ID, amount.Round(2), remarks); err != nil {
			return customError.WrapDatabaseError(err)
		}
		inst.RebateAmount = amount.Round(2)
		inst.RebateRemarks = remarks
		return nil
	})
}

func (s *PaymentService) adjustInstallment(ctx context.Context, ownerID, installmentID uuid.UUID, mutate func(context.Context, *domain.Installment) error) (*domain.Installment, error) {
	var installment *domain.Installment
	var lenderID uuid.UUID

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		inst, loan, err := s.lockOwnedInstallment(ctx, ownerID, installmentID)
		if err != nil {
			return err
		}
		lenderID = loan.LenderID

		if err := mutate(ctx, inst); err != nil {
			return err
		}
		installment = inst

		_, err = recomputeLoanAggregate(ctx, s.LoanRepo, s.InstallmentRepo, s.PaymentRepo, loan)
		return err
	})
	if err != nil {
		return nil, err
	}

	invalidateDashboardCache(ctx, s.redis, lenderID)

	return installment, nil
}

// applyInstallmentStatus stores the status derived from the new ledger total.
func (s *PaymentService) applyInstallmentStatus(ctx context.Context, inst *domain.Installment, totalPaid decimal.Decimal) error {
	status := domain.DeriveInstallmentStatus(totalPaid, inst.TotalDue())
	if status == inst.Status {
		return nil
	}
	if err := s.InstallmentRepo.UpdateStatus(ctx, inst.ID, status); err != nil {
		return customError.WrapDatabaseError(err)
	}
	inst.Status = status
	return nil
}

func (s *PaymentService) getPayment(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, error) {
	payment, err := s.PaymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapPaymentNotFound(paymentID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return payment, nil
}

// lockOwnedInstallment row-locks the installment, loads its loan, and
// verifies ownership before any validation runs.
func (s *PaymentService) lockOwnedInstallment(ctx context.Context, ownerID, installmentID uuid.UUID) (*domain.Installment, *domain.Loan, error) {
	inst, err := s.InstallmentRepo.GetByIDForUpdate(ctx, installmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, customError.WrapInstallmentNotFound(installmentID.String())
		}
		return nil, nil, customError.WrapDatabaseError(err)
	}

	loan, err := s.LoanRepo.GetByID(ctx, inst.LoanID)
	if err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}
	if loan.LenderID != ownerID {
		return nil, nil, customError.WrapForbidden()
	}

	return inst, loan, nil
}
