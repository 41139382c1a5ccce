package bill

import (
	"context"
	"time"
)

type Service interface {
	// SweepBillStatuses advances due bills and returns the ids that changed status.
	SweepBillStatuses(ctx context.Context, now time.Time) ([]string, error)
	// MarkBillPaid is the only way a bill reaches Paid.
	MarkBillPaid(ctx context.Context, req PayBillRequest) (BillResponse, error)
	GetBill(ctx context.Context, id string) (BillResponse, error)
}
