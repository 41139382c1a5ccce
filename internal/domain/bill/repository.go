package bill

import (
	"context"
	"time"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (Bill, error)
	// ListSweepCandidates returns non-paid bills whose due or final due date is before now.
	ListSweepCandidates(ctx context.Context, now time.Time) ([]Bill, error)
	// UpdateStatus moves a bill from one status to another. It reports false when
	// the bill no longer has status from.
	UpdateStatus(ctx context.Context, id string, from, to Status) (bool, error)
	// MarkPaid sets status Paid and the paid date. It reports false when the bill is already paid.
	MarkPaid(ctx context.Context, id string, paidDate time.Time) (bool, error)
}
