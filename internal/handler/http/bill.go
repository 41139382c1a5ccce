package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/bill"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type BillHandler interface {
	SweepStatuses(w http.ResponseWriter, r *http.Request)
	GetBill(w http.ResponseWriter, r *http.Request)
	MarkBillPaid(w http.ResponseWriter, r *http.Request)
}

type billHandlerImpl struct {
	billService bill.Service
}

func NewBillHandler(billService bill.Service) BillHandler {
	return &billHandlerImpl{billService: billService}
}

// SweepStatuses runs the same sweep the scheduler runs. A partial failure still
// reports the bills that did move.
func (h *billHandlerImpl) SweepStatuses(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	ids, err := h.billService.SweepBillStatuses(r.Context(), now)
	if err != nil && len(ids) == 0 {
		response.HandleError(w, err)
		return
	}

	result := bill.NewSweepResponse(now, ids)
	if err != nil {
		response.SuccessWithMessage(w, "Bill sweep finished with errors", result)
		return
	}
	response.Success(w, result)
}

func (h *billHandlerImpl) GetBill(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Bill ID is required", nil)
		return
	}

	result, err := h.billService.GetBill(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *billHandlerImpl) MarkBillPaid(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Bill ID is required", nil)
		return
	}

	var req bill.PayBillRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid request body", nil)
			return
		}
	}
	req.ID = id

	result, err := h.billService.MarkBillPaid(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Bill marked as paid", result)
}
