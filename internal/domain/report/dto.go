package report

import (
	"time"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type TutorPaySummaryRequest struct {
	Month string `json:"month" validate:"required,yearmonth"`
}

func (r *TutorPaySummaryRequest) Validate() error {
	return validator.Struct(r)
}

func (r TutorPaySummaryRequest) Period() (time.Time, time.Time) {
	month, _ := validator.IsValidMonth(r.Month)
	start := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

type TutorPayRow struct {
	PersonID        string          `json:"person_id"`
	FullName        string          `json:"full_name"`
	TotalClasses    int             `json:"total_classes"`
	OnTimeClasses   int             `json:"on_time_classes"`
	MissedClasses   int             `json:"missed_classes"`
	TotalClassUnits decimal.Decimal `json:"total_class_units"`
	PayPercent      decimal.Decimal `json:"pay_percent"`
}

type TutorPaySummary struct {
	Month          string          `json:"month"`
	GeneratedAt    string          `json:"generated_at"`
	Threshold      int             `json:"threshold"`
	Tutors         []TutorPayRow   `json:"tutors"`
	AveragePercent decimal.Decimal `json:"average_percent"`
}
