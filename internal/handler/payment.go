package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/pautanglog/pautanglog/internal/domain"
	"github.com/pautanglog/pautanglog/internal/service"
	"github.com/pautanglog/pautanglog/pkg/response"
)

type PaymentHandler struct {
	service   *service.PaymentService
	validator *validator.Validate
}

func NewPaymentHandler(service *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		service:   service,
		validator: newValidator(),
	}
}

func (h *PaymentHandler) AddPayment(w http.ResponseWriter, r *http.Request) {
	ownerID, err := lenderID(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	installmentID, err := pathID(mux.Vars(r), "installmentId")
	if err != nil {
		response.BadRequest(w, "invalid installment id")
		return
	}

	var request domain.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.ValidationFailed(w, validationFields(err))
		return
	}

	payment, err := h.service.AddPayment(r.Context(), ownerID, installmentID, &request)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Created(w, payment)
}

func (h *PaymentHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	ownerID, err := lenderID(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	paymentID, err := pathID(mux.Vars(r), "paymentId")
	if err != nil {
		response.BadRequest(w, "invalid payment id")
		return
	}

	var request domain.UpdatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.ValidationFailed(w, validationFields(err))
		return
	}

	payment, err := h.service.UpdatePayment(r.Context(), ownerID, paymentID, &request)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, payment)
}

func (h *PaymentHandler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	ownerID, err := lenderID(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	paymentID, err := pathID(mux.Vars(r), "paymentId")
	if err != nil {
		response.BadRequest(w, "invalid payment id")
		return
	}

	if err := h.service.DeletePayment(r.Context(), ownerID, paymentID); err != nil {
		writeServiceError(w, err)
		return
	}

	response.NoContent(w)
}

func (h *PaymentHandler) SetPenalty(w http.ResponseWriter, r *http.Request) {
	h.setAdjustment(w, r, true)
}

func (h *PaymentHandler) SetRebate(w http.ResponseWriter, r *http.Request) {
	h.setAdjustment(w, r, false)
}

// setAdjustment is the shared decode/validate/dispatch shape of the penalty
// and rebate endpoints.
func (h *PaymentHandler) setAdjustment(w http.ResponseWriter, r *http.Request, isPenalty bool) {
	ownerID, err := lenderID(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	installmentID, err := pathID(mux.Vars(r), "installmentId")
	if err != nil {
		response.BadRequest(w, "invalid installment id")
		return
	}

	var request domain.PenaltyRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.ValidationFailed(w, validationFields(err))
		return
	}

	var installment *domain.Installment
	if isPenalty {
		installment, err = h.service.SetPenalty(r.Context(), ownerID, installmentID, request.Amount, request.Remarks)
	} else {
		installment, err = h.service.SetRebate(r.Context(), ownerID, installmentID, request.Amount, request.Remarks)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, installment)
}
