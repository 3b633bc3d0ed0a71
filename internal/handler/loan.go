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

type LoanHandler struct {
	service   *service.LoanService
	validator *validator.Validate
}

func NewLoanHandler(service *service.LoanService) *LoanHandler {
	return &LoanHandler{
		service:   service,
		validator: newValidator(),
	}
}

func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	ownerID, err := lenderID(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	var request domain.CreateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.ValidationFailed(w, validationFields(err))
		return
	}

	loan, installments, err := h.service.CreateLoan(r.Context(), ownerID, &request)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Created(w, &domain.CreateLoanResponse{
		Loan:         loan,
		Installments: installments,
	})
}

func (h *LoanHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	ownerID, err := lenderID(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	loans, err := h.service.ListLoans(r.Context(), ownerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, loans)
}

func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	ownerID, err := lenderID(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	loanID, err := pathID(mux.Vars(r), "loanId")
	if err != nil {
		response.BadRequest(w, "invalid loan id")
		return
	}

	loan, err := h.service.GetLoan(r.Context(), ownerID, loanID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, loan)
}

func (h *LoanHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	ownerID, err := lenderID(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	loanID, err := pathID(mux.Vars(r), "loanId")
	if err != nil {
		response.BadRequest(w, "invalid loan id")
		return
	}

	installments, err := h.service.GetSchedule(r.Context(), ownerID, loanID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, installments)
}

func (h *LoanHandler) PromissoryNote(w http.ResponseWriter, r *http.Request) {
	ownerID, err := lenderID(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	loanID, err := pathID(mux.Vars(r), "loanId")
	if err != nil {
		response.BadRequest(w, "invalid loan id")
		return
	}

	note, err := h.service.PromissoryNote(r.Context(), ownerID, loanID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, note)
}

func (h *LoanHandler) VoidLoan(w http.ResponseWriter, r *http.Request) {
	ownerID, err := lenderID(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	loanID, err := pathID(mux.Vars(r), "loanId")
	if err != nil {
		response.BadRequest(w, "invalid loan id")
		return
	}

	var request domain.VoidLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.ValidationFailed(w, validationFields(err))
		return
	}

	loan, err := h.service.VoidLoan(r.Context(), ownerID, loanID, request.Reason)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, loan)
}

func (h *LoanHandler) MarkDefaulted(w http.ResponseWriter, r *http.Request) {
	ownerID, err := lenderID(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	loanID, err := pathID(mux.Vars(r), "loanId")
	if err != nil {
		response.BadRequest(w, "invalid loan id")
		return
	}

	loan, err := h.service.MarkDefaulted(r.Context(), ownerID, loanID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, loan)
}
