package payroll

import (
	"context"
	"time"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/person"
)

type PayrollService interface {
	// GeneratePayroll creates the payroll for one person and month, or reports it as skipped.
	GeneratePayroll(ctx context.Context, personID string, personType person.Type, month time.Time) (GenerateOutcome, error)
	// GenerateMonthlyPayrolls runs GeneratePayroll over every eligible person. One person's
	// failure never aborts the batch.
	GenerateMonthlyPayrolls(ctx context.Context, req GeneratePayrollRequest) (BatchResult, error)

	GetPayroll(ctx context.Context, id string) (PayrollResponse, error)
	ListPayrolls(ctx context.Context, filter PayrollFilter) (ListPayrollResponse, error)
	UpdatePayroll(ctx context.Context, req UpdatePayrollRequest) (PayrollResponse, error)
	DeletePayroll(ctx context.Context, id string) error

	GetPayslip(ctx context.Context, id string) (Payslip, error)
	GetPayrollSummary(ctx context.Context, month time.Time) (PayrollSummaryResponse, error)
}

type SalaryService interface {
	// GenerateSalary snapshots payroll.NetSalary into a Pending salary, or reports it as skipped.
	GenerateSalary(ctx context.Context, p Payroll) (SalaryOutcome, error)
	GenerateMonthlySalaries(ctx context.Context, req GenerateSalaryRequest) (BatchResult, error)

	GetSalary(ctx context.Context, id string) (SalaryResponse, error)
	ListSalaries(ctx context.Context, filter SalaryFilter) (ListSalaryResponse, error)
	MarkSalaryPaid(ctx context.Context, req PaySalaryRequest) (SalaryResponse, error)
	AssignSalary(ctx context.Context, req AssignSalaryRequest) (SalaryResponse, error)
}
