package payroll

import (
	"time"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/person"
	"github.com/shopspring/decimal"
)

const (
	LabelAttendanceBonus      = "Attendance Bonus"
	LabelMissedClassDeduction = "Missed Class Deduction"

	// Scales of the stored columns: money NUMERIC(14,2), class units NUMERIC(10,4).
	MoneyPlaces int32 = 2
	UnitPlaces  int32 = 4
)

// LineItem is a named earning or deduction, e.g. {"Attendance Bonus", 100}.
type LineItem struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

func SumItems(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Amount)
	}
	return total
}

// roundItems returns a rounded copy; the input may be shared with another snapshot.
func roundItems(items []LineItem) []LineItem {
	if items == nil {
		return nil
	}
	rounded := make([]LineItem, len(items))
	for i, it := range items {
		rounded[i] = LineItem{Label: it.Label, Amount: it.Amount.Round(MoneyPlaces)}
	}
	return rounded
}

// Payroll is the monthly pay computation for one person.
// JSON tags define the field names used in audit snapshots.
type Payroll struct {
	ID              string          `json:"id"`
	PersonID        string          `json:"person_id"`
	PersonType      person.Type     `json:"person_type"`
	PayrollMonth    time.Time       `json:"payroll_month"`
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
	Notes           *string         `json:"notes"`
	IsDeleted       bool            `json:"is_deleted"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       *time.Time      `json:"deleted_at"`

	// Joined fields
	PersonName *string `json:"-"`
}

// Recalculate rounds base pay, line items and class units to the stored scale, then
// re-derives totals from them so that gross = base + earnings and
// net = gross - deductions also hold on the persisted row.
func (p *Payroll) Recalculate() {
	p.BaseSalary = p.BaseSalary.Round(MoneyPlaces)
	p.Earnings = roundItems(p.Earnings)
	p.Deductions = roundItems(p.Deductions)
	p.TotalClassUnits = p.TotalClassUnits.Round(UnitPlaces)

	p.TotalEarnings = SumItems(p.Earnings)
	p.TotalDeductions = SumItems(p.Deductions)
	p.GrossSalary = p.BaseSalary.Add(p.TotalEarnings)
	p.NetSalary = p.GrossSalary.Sub(p.TotalDeductions)
}

type SalaryStatus string

const (
	SalaryStatusPending   SalaryStatus = "Pending"
	SalaryStatusPaid      SalaryStatus = "Paid"
	SalaryStatusCancelled SalaryStatus = "Cancelled"
)

// Salary is the payable instance snapshotted from a Payroll.
type Salary struct {
	ID           string          `json:"id"`
	PayrollID    string          `json:"payroll_id"`
	PersonID     string          `json:"person_id"`
	PersonType   person.Type     `json:"person_type"`
	PayrollMonth time.Time       `json:"payroll_month"`
	Amount       decimal.Decimal `json:"amount"`
	Status       SalaryStatus    `json:"status"`
	SalaryDate   time.Time       `json:"salary_date"`
	DueDate      time.Time       `json:"due_date"`
	FinalDueDate time.Time       `json:"final_due_date"`
	AssignedTo   *string         `json:"assigned_to"`
	PaidDate     *time.Time      `json:"paid_date"`
	IsDeleted    bool            `json:"is_deleted"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    *time.Time      `json:"deleted_at"`
}

// MonthStart truncates t to the first instant of its month in UTC.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthPeriod returns the half-open period [first day, first day of next month).
func MonthPeriod(month time.Time) (time.Time, time.Time) {
	start := MonthStart(month)
	return start, start.AddDate(0, 1, 0)
}

// DayOfMonth returns the given day inside month; days past the month end clamp to the last day.
func DayOfMonth(month time.Time, day int) time.Time {
	start := MonthStart(month)
	last := start.AddDate(0, 1, -1).Day()
	if day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return start.AddDate(0, 0, day-1)
}
