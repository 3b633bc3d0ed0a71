package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	customError "github.com/pautanglog/pautanglog/pkg/errors"
	"github.com/pautanglog/pautanglog/pkg/response"
)

// lenderIDHeader carries the pre-validated owner id. Authentication happens
// upstream; this service only receives the resulting identity.
const lenderIDHeader = "X-Lender-ID"

// newValidator builds a request validator that treats decimal.Decimal fields
// as numbers, so gt/gte tags work on money amounts.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// lenderID extracts and parses the owner id header
func lenderID(r *http.Request) (uuid.UUID, error) {
	raw := r.Header.Get(lenderIDHeader)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("missing %s header", lenderIDHeader)
	}
	return uuid.Parse(raw)
}

// pathID parses a uuid path variable
func pathID(vars map[string]string, name string) (uuid.UUID, error) {
	return uuid.Parse(vars[name])
}

// validationFields flattens validator errors into field-scoped messages
func validationFields(err error) map[string]string {
	fields := make(map[string]string)

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[fe.Field()] = fmt.Sprintf("failed on the '%s' rule", fe.Tag())
		}
		return fields
	}

	fields["request"] = err.Error()
	return fields
}

// writeServiceError translates service errors into HTTP responses
func writeServiceError(w http.ResponseWriter, err error) {
	var berr *customError.BusinessError
	if !errors.As(err, &berr) {
		response.InternalServerError(w, "unexpected error")
		return
	}

	switch berr.Code {
	case customError.ErrCodeLoanNotFound,
		customError.ErrCodeInstallmentNotFound,
		customError.ErrCodePaymentNotFound,
		customError.ErrCodeBorrowerNotFound:
		response.NotFound(w, berr.Message)
	case customError.ErrCodeForbidden:
		response.Forbidden(w, berr.Message)
	case customError.ErrCodeOverpayment:
		response.ValidationFailed(w, map[string]string{berr.Field: berr.Message})
	case customError.ErrCodeLoanVoided, customError.ErrCodeLoanNotActive:
		response.Error(w, http.StatusConflict, berr.Code, berr.Message)
	case customError.ErrCodeInvalidSchedule:
		response.Error(w, http.StatusUnprocessableEntity, berr.Code, berr.Message)
	default:
		response.InternalServerError(w, berr.Message)
	}
}
