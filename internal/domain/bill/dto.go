package bill

import (
	"time"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type PayBillRequest struct {
	ID       string
	PaidDate string `json:"paid_date,omitempty"` // YYYY-MM-DD, defaults to today
}

// ParsePaidDate validates the request and returns the paid date, or fallback when none was given.
func (r *PayBillRequest) ParsePaidDate(fallback time.Time) (time.Time, error) {
	if r.PaidDate == "" {
		return fallback, nil
	}
	date, ok := validator.IsValidDate(r.PaidDate)
	if !ok {
		return time.Time{}, validator.ValidationErrors{{Field: "paid_date", Message: "must be a date in YYYY-MM-DD format"}}
	}
	return date, nil
}

type BillResponse struct {
	ID           string          `json:"id"`
	StudentID    string          `json:"student_id"`
	Amount       decimal.Decimal `json:"amount"`
	Status       string          `json:"status"`
	DueDate      string          `json:"due_date"`
	FinalDueDate string          `json:"final_due_date"`
	PaidDate     *string         `json:"paid_date,omitempty"`
}

func ToBillResponse(b Bill) BillResponse {
	resp := BillResponse{
		ID:           b.ID,
		StudentID:    b.StudentID,
		Amount:       b.Amount,
		Status:       string(b.Status),
		DueDate:      b.DueDate.Format("2006-01-02"),
		FinalDueDate: b.FinalDueDate.Format("2006-01-02"),
	}
	if b.PaidDate != nil {
		paid := b.PaidDate.Format("2006-01-02")
		resp.PaidDate = &paid
	}
	return resp
}

type SweepResponse struct {
	SweptAt         string   `json:"swept_at"`
	TransitionedIDs []string `json:"transitioned_ids"`
}

func NewSweepResponse(now time.Time, ids []string) SweepResponse {
	if ids == nil {
		ids = []string{}
	}
	return SweepResponse{SweptAt: now.Format(time.RFC3339), TransitionedIDs: ids}
}
