package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/person"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type SalaryHandler interface {
	GenerateSalaries(w http.ResponseWriter, r *http.Request)
	ListSalaries(w http.ResponseWriter, r *http.Request)
	GetSalary(w http.ResponseWriter, r *http.Request)
	MarkSalaryPaid(w http.ResponseWriter, r *http.Request)
	AssignSalary(w http.ResponseWriter, r *http.Request)
}

type salaryHandlerImpl struct {
	salaryService payroll.SalaryService
}

func NewSalaryHandler(salaryService payroll.SalaryService) SalaryHandler {
	return &salaryHandlerImpl{salaryService: salaryService}
}

func (h *salaryHandlerImpl) GenerateSalaries(w http.ResponseWriter, r *http.Request) {
	var req payroll.GenerateSalaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.salaryService.GenerateMonthlySalaries(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Salary generation finished", result)
}

func (h *salaryHandlerImpl) ListSalaries(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := payroll.SalaryFilter{
		Page:  1,
		Limit: 20,
	}

	if pageStr := query.Get("page"); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil && page > 0 {
			filter.Page = page
		}
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}
	if monthStr := query.Get("month"); monthStr != "" {
		month, ok := validator.IsValidMonth(monthStr)
		if !ok {
			response.BadRequest(w, "month must be in YYYY-MM format", nil)
			return
		}
		filter.Month = &month
	}
	if typeStr := query.Get("person_type"); typeStr != "" {
		personType, err := person.ParseType(typeStr)
		if err != nil {
			response.HandleError(w, err)
			return
		}
		filter.PersonType = &personType
	}
	if statusStr := query.Get("status"); statusStr != "" {
		status := payroll.SalaryStatus(statusStr)
		switch status {
		case payroll.SalaryStatusPending, payroll.SalaryStatusPaid, payroll.SalaryStatusCancelled:
			filter.Status = &status
		default:
			response.BadRequest(w, "Invalid salary status", nil)
			return
		}
	}

	result, err := h.salaryService.ListSalaries(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Data, response.NewMeta(result.Page, result.Limit, result.TotalCount))
}

func (h *salaryHandlerImpl) GetSalary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Salary ID is required", nil)
		return
	}

	result, err := h.salaryService.GetSalary(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *salaryHandlerImpl) MarkSalaryPaid(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Salary ID is required", nil)
		return
	}

	var req payroll.PaySalaryRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid request body", nil)
			return
		}
	}
	req.ID = id

	result, err := h.salaryService.MarkSalaryPaid(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Salary marked as paid", result)
}

func (h *salaryHandlerImpl) AssignSalary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Salary ID is required", nil)
		return
	}

	var req payroll.AssignSalaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = id

	result, err := h.salaryService.AssignSalary(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
