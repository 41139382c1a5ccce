package audit

import "context"

type Logger interface {
	// Record appends an audit entry. Failures are logged, never returned.
	Record(ctx context.Context, e Entry)
	ListAudits(ctx context.Context, payrollID string) ([]AuditResponse, error)
}
