package payroll

import (
	"context"
	"time"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/person"
)

// PayrollRepository reads only non-deleted payrolls.
type PayrollRepository interface {
	// Create inserts the payroll and its line items. Returns ErrPayrollAlreadyExists
	// when another non-deleted payroll holds the same (person, type, month) key.
	Create(ctx context.Context, p Payroll) (Payroll, error)
	GetByID(ctx context.Context, id string) (Payroll, error)
	GetByPersonMonth(ctx context.Context, personID string, personType person.Type, month time.Time) (Payroll, error)
	List(ctx context.Context, filter PayrollFilter) ([]Payroll, int64, error)
	// ListWithoutSalary returns the month's payrolls that have no salary yet.
	ListWithoutSalary(ctx context.Context, month time.Time) ([]Payroll, error)
	// Update replaces amounts, notes and line items.
	Update(ctx context.Context, p Payroll) (Payroll, error)
	SoftDelete(ctx context.Context, id string) error
}

// SalaryRepository reads only non-deleted salaries.
type SalaryRepository interface {
	// Create returns ErrSalaryAlreadyExists on a duplicate (person, type, month) key.
	Create(ctx context.Context, s Salary) (Salary, error)
	GetByID(ctx context.Context, id string) (Salary, error)
	GetByPersonMonth(ctx context.Context, personID string, personType person.Type, month time.Time) (Salary, error)
	List(ctx context.Context, filter SalaryFilter) ([]Salary, int64, error)
	Update(ctx context.Context, s Salary) (Salary, error)
}
