package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/payrule"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type PayRuleHandler interface {
	// Configuration
	GetConfig(w http.ResponseWriter, r *http.Request)
	UpdateConfig(w http.ResponseWriter, r *http.Request)
	Recompute(w http.ResponseWriter, r *http.Request)

	// Class ranges
	CreateClassRange(w http.ResponseWriter, r *http.Request)
	ListClassRanges(w http.ResponseWriter, r *http.Request)
	UpdateClassRange(w http.ResponseWriter, r *http.Request)
	DeleteClassRange(w http.ResponseWriter, r *http.Request)
}

type payRuleHandlerImpl struct {
	payRuleService payrule.Service
}

func NewPayRuleHandler(payRuleService payrule.Service) PayRuleHandler {
	return &payRuleHandlerImpl{payRuleService: payRuleService}
}

// ========== CONFIGURATION ==========

func (h *payRuleHandlerImpl) GetConfig(w http.ResponseWriter, r *http.Request) {
	result, err := h.payRuleService.GetConfig(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payRuleHandlerImpl) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req payrule.UpdateConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payRuleService.UpdateConfig(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payRuleHandlerImpl) Recompute(w http.ResponseWriter, r *http.Request) {
	var req payrule.RecomputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payRuleService.Recompute(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== CLASS RANGES ==========

func (h *payRuleHandlerImpl) CreateClassRange(w http.ResponseWriter, r *http.Request) {
	var req payrule.CreateClassRangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payRuleService.CreateClassRange(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Class range created", result)
}

func (h *payRuleHandlerImpl) ListClassRanges(w http.ResponseWriter, r *http.Request) {
	result, err := h.payRuleService.ListClassRanges(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payRuleHandlerImpl) UpdateClassRange(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Class range ID is required", nil)
		return
	}

	var req payrule.UpdateClassRangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = id

	result, err := h.payRuleService.UpdateClassRange(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payRuleHandlerImpl) DeleteClassRange(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Class range ID is required", nil)
		return
	}

	if err := h.payRuleService.DeleteClassRange(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Class range deleted successfully", nil)
}
