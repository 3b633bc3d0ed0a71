package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PaymentMethodCash         = "cash"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodGCash        = "gcash"
	PaymentMethodPayMaya      = "paymaya"
	PaymentMethodCheck        = "check"
)

// Payment is one entry in an installment's ledger.
type Payment struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	InstallmentID   uuid.UUID       `json:"installment_id" db:"installment_id"`
	AmountPaid      decimal.Decimal `json:"amount_paid" db:"amount_paid"`
	Method          string          `json:"method" db:"method"`
	ReferenceNumber string          `json:"reference_number,omitempty" db:"reference_number"`
	ReceiptNumber   string          `json:"receipt_number,omitempty" db:"receipt_number"`
	PaymentDate     time.Time       `json:"payment_date" db:"payment_date"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

type RecordPaymentRequest struct {
	Amount          decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Method          string          `json:"method" validate:"required,oneof=cash bank_transfer gcash paymaya check"`
	ReferenceNumber string          `json:"reference_number" validate:"max=100"`
	ReceiptNumber   string          `json:"receipt_number" validate:"max=100"`
	PaymentDate     time.Time       `json:"payment_date" validate:"required"`
}

type UpdatePaymentRequest struct {
	Amount          decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Method          string          `json:"method" validate:"required,oneof=cash bank_transfer gcash paymaya check"`
	ReferenceNumber string          `json:"reference_number" validate:"max=100"`
	ReceiptNumber   string          `json:"receipt_number" validate:"max=100"`
	PaymentDate     time.Time       `json:"payment_date" validate:"required"`
}
