package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrLoanNotFound          = errors.New("loan not found")
	ErrInstallmentNotFound   = errors.New("installment not found")
	ErrPaymentNotFound       = errors.New("payment not found")
	ErrBorrowerNotFound      = errors.New("borrower not found")
	ErrForbidden             = errors.New("actor does not own this record")
	ErrOverpayment           = errors.New("amount exceeds remaining balance")
	ErrLoanVoided            = errors.New("loan is voided")
	ErrLoanNotActive         = errors.New("loan is not active")
	ErrInvalidInterestType   = errors.New("invalid interest type")
	ErrInvalidInterestPeriod = errors.New("invalid interest period")
	ErrInvalidDurationUnit   = errors.New("invalid duration unit")
	ErrInvalidFrequency      = errors.New("invalid payment frequency")
	ErrEmptySchedule         = errors.New("schedule has no installments")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Field   string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeLoanNotFound        = "LOAN_NOT_FOUND"
	ErrCodeInstallmentNotFound = "INSTALLMENT_NOT_FOUND"
	ErrCodePaymentNotFound     = "PAYMENT_NOT_FOUND"
	ErrCodeBorrowerNotFound    = "BORROWER_NOT_FOUND"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeOverpayment         = "AMOUNT_EXCEEDS_REMAINING"
	ErrCodeLoanVoided          = "LOAN_VOIDED"
	ErrCodeLoanNotActive       = "LOAN_NOT_ACTIVE"
	ErrCodeInvalidSchedule     = "INVALID_SCHEDULE"
	ErrCodeValidation          = "VALIDATION_FAILED"
	ErrCodeDatabaseError       = "DATABASE_ERROR"
	ErrCodeCacheError          = "CACHE_ERROR"
)

// Wrap common errors with business context

func WrapLoanNotFound(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan %s not found", loanID),
		ErrLoanNotFound,
	)
}

func WrapInstallmentNotFound(installmentID string) *BusinessError {
	return NewBusinessError(
		ErrCodeInstallmentNotFound,
		fmt.Sprintf("Installment %s not found", installmentID),
		ErrInstallmentNotFound,
	)
}

func WrapPaymentNotFound(paymentID string) *BusinessError {
	return NewBusinessError(
		ErrCodePaymentNotFound,
		fmt.Sprintf("Payment %s not found", paymentID),
		ErrPaymentNotFound,
	)
}

func WrapForbidden() *BusinessError {
	return NewBusinessError(
		ErrCodeForbidden,
		"You do not have access to this record",
		ErrForbidden,
	)
}

// WrapOverpayment carries the field-scoped message the payment form shows
// when an amount would push an installment past its total due.
func WrapOverpayment(remaining string) *BusinessError {
	return &BusinessError{
		Code:    ErrCodeOverpayment,
		Message: fmt.Sprintf("Amount exceeds remaining balance of %s for this installment", remaining),
		Field:   "amount",
		Err:     ErrOverpayment,
	}
}

func WrapLoanVoided(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanVoided,
		fmt.Sprintf("Loan %s is voided and can no longer be modified", loanID),
		ErrLoanVoided,
	)
}

func WrapLoanNotActive(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotActive,
		fmt.Sprintf("Loan %s is not active", loanID),
		ErrLoanNotActive,
	)
}

func WrapInvalidSchedule(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidSchedule,
		"Loan parameters do not produce a valid payment schedule",
		err,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"cache operation failed",
		err,
	)
}
