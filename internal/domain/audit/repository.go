package audit

import "context"

type Repository interface {
	Append(ctx context.Context, a PayrollAudit) (PayrollAudit, error)
	ListByPayroll(ctx context.Context, payrollID string) ([]PayrollAudit, error)
}
