package inmem

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/bill"
)

type billRepository struct {
	db *DB
}

func NewBillRepository(db *DB) bill.Repository {
	return &billRepository{db: db}
}

func (repo *billRepository) GetByID(ctx context.Context, id string) (bill.Bill, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	b, ok := repo.db.bills[id]
	if !ok || b.IsDeleted {
		return bill.Bill{}, bill.ErrBillNotFound
	}
	return b, nil
}

func (repo *billRepository) ListSweepCandidates(ctx context.Context, now time.Time) ([]bill.Bill, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var bills []bill.Bill
	for _, b := range repo.db.bills {
		if b.IsDeleted || b.Status == bill.StatusPaid {
			continue
		}
		pastDue := b.Status == bill.StatusGenerated && b.DueDate.Before(now)
		pastFinal := b.Status != bill.StatusOverdue && b.FinalDueDate.Before(now)
		if pastDue || pastFinal {
			bills = append(bills, b)
		}
	}
	sort.Slice(bills, func(i, j int) bool { return bills[i].ID < bills[j].ID })
	return bills, nil
}

func (repo *billRepository) UpdateStatus(ctx context.Context, id string, from, to bill.Status) (bool, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	b, ok := repo.db.bills[id]
	if !ok || b.IsDeleted || b.Status != from {
		return false, nil
	}
	b.Status = to
	b.UpdatedAt = repo.db.now().UTC()
	repo.db.bills[id] = b
	return true, nil
}

func (repo *billRepository) MarkPaid(ctx context.Context, id string, paidDate time.Time) (bool, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	b, ok := repo.db.bills[id]
	if !ok || b.IsDeleted || b.Status == bill.StatusPaid {
		return false, nil
	}
	b.Status = bill.StatusPaid
	b.PaidDate = &paidDate
	b.UpdatedAt = repo.db.now().UTC()
	repo.db.bills[id] = b
	return true, nil
}
