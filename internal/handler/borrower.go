package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/pautanglog/pautanglog/internal/domain"
	"github.com/pautanglog/pautanglog/internal/service"
	"github.com/pautanglog/pautanglog/pkg/response"
)

type BorrowerHandler struct {
	service   *service.BorrowerService
	validator *validator.Validate
}

func NewBorrowerHandler(service *service.BorrowerService) *BorrowerHandler {
	return &BorrowerHandler{
		service:   service,
		validator: newValidator(),
	}
}

func (h *BorrowerHandler) CreateBorrower(w http.ResponseWriter, r *http.Request) {
	ownerID, err := lenderID(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	var request domain.CreateBorrowerRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.ValidationFailed(w, validationFields(err))
		return
	}

	borrower, err := h.service.CreateBorrower(r.Context(), ownerID, &request)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Created(w, borrower)
}

func (h *BorrowerHandler) ListBorrowers(w http.ResponseWriter, r *http.Request) {
	ownerID, err := lenderID(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	borrowers, err := h.service.ListBorrowers(r.Context(), ownerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, borrowers)
}
