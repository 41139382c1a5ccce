package payroll

import (
	"time"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/person"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== GENERATION DTOs ==========

type GeneratePayrollRequest struct {
	Month      string   `json:"month" validate:"required,yearmonth"`
	PersonType string   `json:"person_type,omitempty" validate:"omitempty,oneof=STAFF COUNSELOR TUTOR"`
	PersonIDs  []string `json:"person_ids,omitempty"` // Empty = all active persons
}

func (r *GeneratePayrollRequest) Validate() error {
	if err := validator.Struct(r); err != nil {
		return err
	}

	var errs validator.ValidationErrors
	for _, id := range r.PersonIDs {
		if !validator.IsValidUUID(id) {
			errs = append(errs, validator.ValidationError{Field: "person_ids", Message: "contains an invalid id: " + id})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// PayrollMonth returns the first day of the requested month. Call after Validate.
func (r GeneratePayrollRequest) PayrollMonth() time.Time {
	month, _ := validator.IsValidMonth(r.Month)
	return MonthStart(month)
}

type GenerateSalaryRequest struct {
	Month string `json:"month" validate:"required,yearmonth"`
}

func (r *GenerateSalaryRequest) Validate() error {
	return validator.Struct(r)
}

func (r GenerateSalaryRequest) PayrollMonth() time.Time {
	month, _ := validator.IsValidMonth(r.Month)
	return MonthStart(month)
}

type OutcomeStatus string

const (
	OutcomeCreated OutcomeStatus = "created"
	OutcomeSkipped OutcomeStatus = "skipped"
	OutcomeFailed  OutcomeStatus = "failed"
)

// GenerateOutcome is the result of generating one payroll. Skipped is a success.
type GenerateOutcome struct {
	Status     OutcomeStatus `json:"status"`
	PersonID   string        `json:"person_id"`
	PersonType person.Type   `json:"person_type"`
	Payroll    *Payroll      `json:"-"`
	Reason     string        `json:"reason,omitempty"`
}

type SalaryOutcome struct {
	Status     OutcomeStatus `json:"status"`
	PersonID   string        `json:"person_id"`
	PersonType person.Type   `json:"person_type"`
	PayrollID  string        `json:"payroll_id"`
	Salary     *Salary       `json:"-"`
	Reason     string        `json:"reason,omitempty"`
}

type FailedItem struct {
	PersonID   string      `json:"person_id"`
	PersonType person.Type `json:"person_type"`
	Error      string      `json:"error"`
}

type BatchResult struct {
	RunID   string       `json:"run_id"`
	Month   string       `json:"month"`
	Total   int          `json:"total"`
	Created int          `json:"created"`
	Skipped int          `json:"skipped"`
	Failed  []FailedItem `json:"failed"`
}

// ========== PAYROLL DTOs ==========

type LineItemRequest struct {
	Label  string          `json:"label" validate:"required"`
	Amount decimal.Decimal `json:"amount" validate:"gte=0"`
}

type UpdatePayrollRequest struct {
	ID         string
	BaseSalary *decimal.Decimal   `json:"base_salary,omitempty"`
	Earnings   *[]LineItemRequest `json:"earnings,omitempty" validate:"omitempty,dive"`
	Deductions *[]LineItemRequest `json:"deductions,omitempty" validate:"omitempty,dive"`
	Notes      *string            `json:"notes,omitempty"`
}

func (r *UpdatePayrollRequest) Validate() error {
	if err := validator.Struct(r); err != nil {
		return err
	}

	var errs validator.ValidationErrors
	if r.BaseSalary != nil && r.BaseSalary.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "base_salary", Message: "must be non-negative"})
	}
	if r.BaseSalary == nil && r.Earnings == nil && r.Deductions == nil && r.Notes == nil {
		errs = append(errs, validator.ValidationError{Field: "body", Message: "at least one field is required"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func ToLineItems(reqs []LineItemRequest) []LineItem {
	items := make([]LineItem, 0, len(reqs))
	for _, r := range reqs {
		items = append(items, LineItem{Label: r.Label, Amount: r.Amount})
	}
	return items
}

type PayrollResponse struct {
	ID              string          `json:"id"`
	PersonID        string          `json:"person_id"`
	PersonName      *string         `json:"person_name,omitempty"`
	PersonType      string          `json:"person_type"`
	PayrollMonth    string          `json:"payroll_month"`
	BaseSalary      decimal.Decimal `json:"base_salary"`
	Earnings        []LineItem      `json:"earnings"`
	TotalEarnings   decimal.Decimal `json:"total_earnings"`
	Deductions      []LineItem      `json:"deductions"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	GrossSalary     decimal.Decimal `json:"gross_salary"`
	NetSalary       decimal.Decimal `json:"net_salary"`
	TotalClassUnits decimal.Decimal `json:"total_class_units"`
	AttendedClasses int             `json:"attended_classes"`
	MissedClasses   int             `json:"missed_classes"`
	Notes           *string         `json:"notes,omitempty"`
	CreatedAt       string          `json:"created_at"`
	UpdatedAt       string          `json:"updated_at"`
}

func ToPayrollResponse(p Payroll) PayrollResponse {
	earnings := p.Earnings
	if earnings == nil {
		earnings = []LineItem{}
	}
	deductions := p.Deductions
	if deductions == nil {
		deductions = []LineItem{}
	}
	return PayrollResponse{
		ID:              p.ID,
		PersonID:        p.PersonID,
		PersonName:      p.PersonName,
		PersonType:      string(p.PersonType),
		PayrollMonth:    p.PayrollMonth.Format("2006-01"),
		BaseSalary:      p.BaseSalary,
		Earnings:        earnings,
		TotalEarnings:   p.TotalEarnings,
		Deductions:      deductions,
		TotalDeductions: p.TotalDeductions,
		GrossSalary:     p.GrossSalary,
		NetSalary:       p.NetSalary,
		TotalClassUnits: p.TotalClassUnits,
		AttendedClasses: p.AttendedClasses,
		MissedClasses:   p.MissedClasses,
		Notes:           p.Notes,
		CreatedAt:       p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       p.UpdatedAt.Format(time.RFC3339),
	}
}

type PayrollFilter struct {
	Month      *time.Time
	PersonType *person.Type
	PersonID   *string
	Page       int
	Limit      int
}

// Normalize applies paging defaults.
func (f *PayrollFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

type ListPayrollResponse struct {
	Data       []PayrollResponse `json:"data"`
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
}

type PayrollSummaryResponse struct {
	Month                string          `json:"month"`
	TotalPersons         int             `json:"total_persons"`
	StaffCount           int             `json:"staff_count"`
	CounselorCount       int             `json:"counselor_count"`
	TutorCount           int             `json:"tutor_count"`
	TotalBaseSalary      decimal.Decimal `json:"total_base_salary"`
	TotalEarnings        decimal.Decimal `json:"total_earnings"`
	TotalDeductions      decimal.Decimal `json:"total_deductions"`
	TotalGrossSalary     decimal.Decimal `json:"total_gross_salary"`
	TotalNetSalary       decimal.Decimal `json:"total_net_salary"`
	SalariesGenerated    int             `json:"salaries_generated"`
	SalariesPaid         int             `json:"salaries_paid"`
	NegativeNetSalaryIDs []string        `json:"negative_net_salary_ids,omitempty"`
}

// Payslip is the flat snapshot consumed by receipt rendering.
type Payslip struct {
	PayrollID       string          `json:"payroll_id"`
	EmployeeName    string          `json:"employee_name"`
	PersonID        string          `json:"person_id"`
	PersonType      string          `json:"person_type"`
	PayPeriod       string          `json:"pay_period"`
	BaseSalary      decimal.Decimal `json:"base_salary"`
	Earnings        []LineItem      `json:"earnings"`
	TotalEarnings   decimal.Decimal `json:"total_earnings"`
	GrossSalary     decimal.Decimal `json:"gross_salary"`
	Deductions      []LineItem      `json:"deductions"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	NetPay          decimal.Decimal `json:"net_pay"`
	ClassUnits      decimal.Decimal `json:"class_units"`
	AttendedClasses int             `json:"attended_classes"`
	MissedClasses   int             `json:"missed_classes"`
	SalaryStatus    *string         `json:"salary_status,omitempty"`
	SalaryDate      *string         `json:"salary_date,omitempty"`
	PaidDate        *string         `json:"paid_date,omitempty"`
}

// ========== SALARY DTOs ==========

type PaySalaryRequest struct {
	ID       string
	PaidDate string `json:"paid_date,omitempty"` // YYYY-MM-DD, defaults to today
}

// ParsePaidDate validates the request and returns the paid date, or fallback when none was given.
func (r *PaySalaryRequest) ParsePaidDate(fallback time.Time) (time.Time, error) {
	if r.PaidDate == "" {
		return fallback, nil
	}
	date, ok := validator.IsValidDate(r.PaidDate)
	if !ok {
		return time.Time{}, validator.ValidationErrors{{Field: "paid_date", Message: "must be a date in YYYY-MM-DD format"}}
	}
	return date, nil
}

type AssignSalaryRequest struct {
	ID         string
	AssignedTo string `json:"assigned_to" validate:"required"`
}

func (r *AssignSalaryRequest) Validate() error {
	return validator.Struct(r)
}

type SalaryResponse struct {
	ID           string          `json:"id"`
	PayrollID    string          `json:"payroll_id"`
	PersonID     string          `json:"person_id"`
	PersonType   string          `json:"person_type"`
	PayrollMonth string          `json:"payroll_month"`
	Amount       decimal.Decimal `json:"amount"`
	Status       string          `json:"status"`
	SalaryDate   string          `json:"salary_date"`
	DueDate      string          `json:"due_date"`
	FinalDueDate string          `json:"final_due_date"`
	AssignedTo   *string         `json:"assigned_to,omitempty"`
	PaidDate     *string         `json:"paid_date,omitempty"`
}

func ToSalaryResponse(s Salary) SalaryResponse {
	resp := SalaryResponse{
		ID:           s.ID,
		PayrollID:    s.PayrollID,
		PersonID:     s.PersonID,
		PersonType:   string(s.PersonType),
		PayrollMonth: s.PayrollMonth.Format("2006-01"),
		Amount:       s.Amount,
		Status:       string(s.Status),
		SalaryDate:   s.SalaryDate.Format("2006-01-02"),
		DueDate:      s.DueDate.Format("2006-01-02"),
		FinalDueDate: s.FinalDueDate.Format("2006-01-02"),
		AssignedTo:   s.AssignedTo,
	}
	if s.PaidDate != nil {
		paid := s.PaidDate.Format("2006-01-02")
		resp.PaidDate = &paid
	}
	return resp
}

type SalaryFilter struct {
	Month      *time.Time
	PersonType *person.Type
	Status     *SalaryStatus
	Page       int
	Limit      int
}

func (f *SalaryFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

type ListSalaryResponse struct {
	Data       []SalaryResponse `json:"data"`
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
}
