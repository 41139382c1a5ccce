package bill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/bill"
)

type BillServiceImpl struct {
	repo bill.Repository
	now  func() time.Time
}

func NewBillService(repo bill.Repository) bill.Service {
	return &BillServiceImpl{repo: repo, now: time.Now}
}

// NextBillStatus is the status b should have at now. Paid is terminal and only
// reachable through MarkBillPaid.
func NextBillStatus(b bill.Bill, now time.Time) bill.Status {
	switch {
	case b.Status == bill.StatusPaid:
		return bill.StatusPaid
	case now.After(b.FinalDueDate):
		return bill.StatusOverdue
	case b.Status == bill.StatusGenerated && now.After(b.DueDate):
		return bill.StatusOnDue
	default:
		return b.Status
	}
}

func (s *BillServiceImpl) SweepBillStatuses(ctx context.Context, now time.Time) ([]string, error) {
	candidates, err := s.repo.ListSweepCandidates(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills to sweep: %w", err)
	}

	var (
		transitioned []string
		errs         []error
	)
	for _, b := range candidates {
		next := NextBillStatus(b, now)
		if next == b.Status {
			continue
		}

		ok, err := s.repo.UpdateStatus(ctx, b.ID, b.Status, next)
		if err != nil {
			slog.Error("failed to update bill status", "bill_id", b.ID, "from", b.Status, "to", next, "error", err)
			errs = append(errs, fmt.Errorf("bill %s: %w", b.ID, err))
			continue
		}
		if !ok {
			// Another sweep or a payment got there first
			continue
		}
		transitioned = append(transitioned, b.ID)
	}

	slog.Info("bill status sweep finished", "candidates", len(candidates), "transitioned", len(transitioned), "failed", len(errs))
	return transitioned, errors.Join(errs...)
}

func (s *BillServiceImpl) MarkBillPaid(ctx context.Context, req bill.PayBillRequest) (bill.BillResponse, error) {
	paidDate, err := req.ParsePaidDate(s.now().UTC())
	if err != nil {
		return bill.BillResponse{}, err
	}

	current, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return bill.BillResponse{}, err
	}
	if current.Status == bill.StatusPaid {
		return bill.BillResponse{}, bill.ErrBillAlreadyPaid
	}

	ok, err := s.repo.MarkPaid(ctx, req.ID, paidDate)
	if err != nil {
		return bill.BillResponse{}, fmt.Errorf("failed to mark bill paid: %w", err)
	}
	if !ok {
		return bill.BillResponse{}, bill.ErrBillAlreadyPaid
	}

	updated, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return bill.BillResponse{}, err
	}
	return bill.ToBillResponse(updated), nil
}

func (s *BillServiceImpl) GetBill(ctx context.Context, id string) (bill.BillResponse, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return bill.BillResponse{}, err
	}
	return bill.ToBillResponse(b), nil
}
