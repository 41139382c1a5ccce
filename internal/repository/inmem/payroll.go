package inmem

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/person"
	"github.com/google/uuid"
)

type payrollRepository struct {
	db *DB
}

func NewPayrollRepository(db *DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

func clonePayroll(p payroll.Payroll) payroll.Payroll {
	p.Earnings = append([]payroll.LineItem{}, p.Earnings...)
	p.Deductions = append([]payroll.LineItem{}, p.Deductions...)
	return p
}

func (repo *payrollRepository) withName(p payroll.Payroll) payroll.Payroll {
	if who, ok := repo.db.persons[p.PersonID]; ok {
		name := who.FullName
		p.PersonName = &name
	}
	return clonePayroll(p)
}

func (repo *payrollRepository) Create(ctx context.Context, p payroll.Payroll) (payroll.Payroll, error) {
	repo.db.mutex.Lock()
	month := payroll.MonthStart(p.PayrollMonth)
	for _, existing := range repo.db.payrolls {
		if !existing.IsDeleted && existing.PersonID == p.PersonID &&
			existing.PersonType == p.PersonType && existing.PayrollMonth.Equal(month) {
			repo.db.mutex.Unlock()
			return payroll.Payroll{}, payroll.ErrPayrollAlreadyExists
		}
	}

	now := repo.db.now().UTC()
	row := clonePayroll(p)
	row.ID = uuid.NewString()
	row.PayrollMonth = month
	row.CreatedAt, row.UpdatedAt = now, now
	items := row
	row.Earnings, row.Deductions = []payroll.LineItem{}, []payroll.LineItem{}
	repo.db.payrolls[row.ID] = row
	repo.db.record(ctx, func() { delete(repo.db.payrolls, row.ID) })
	repo.db.mutex.Unlock()

	if hook := repo.db.BeforePayrollItems; hook != nil {
		if err := hook(row); err != nil {
			return payroll.Payroll{}, err
		}
	}

	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	stored := repo.db.payrolls[row.ID]
	stored.Earnings, stored.Deductions = items.Earnings, items.Deductions
	repo.db.payrolls[row.ID] = stored
	return clonePayroll(stored), nil
}

func (repo *payrollRepository) GetByID(ctx context.Context, id string) (payroll.Payroll, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	p, ok := repo.db.payrolls[id]
	if !ok || p.IsDeleted {
		return payroll.Payroll{}, payroll.ErrPayrollNotFound
	}
	return repo.withName(p), nil
}

func (repo *payrollRepository) GetByPersonMonth(ctx context.Context, personID string, personType person.Type, month time.Time) (payroll.Payroll, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	month = payroll.MonthStart(month)
	for _, p := range repo.db.payrolls {
		if !p.IsDeleted && p.PersonID == personID && p.PersonType == personType && p.PayrollMonth.Equal(month) {
			return repo.withName(p), nil
		}
	}
	return payroll.Payroll{}, payroll.ErrPayrollNotFound
}

func (repo *payrollRepository) query(match func(payroll.Payroll) bool) []payroll.Payroll {
	var rows []payroll.Payroll
	for _, p := range repo.db.payrolls {
		if !p.IsDeleted && match(p) {
			rows = append(rows, repo.withName(p))
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].PayrollMonth.Equal(rows[j].PayrollMonth) {
			return rows[i].PayrollMonth.After(rows[j].PayrollMonth)
		}
		if rows[i].PersonType != rows[j].PersonType {
			return rows[i].PersonType < rows[j].PersonType
		}
		return rows[i].PersonID < rows[j].PersonID
	})
	return rows
}

func (repo *payrollRepository) List(ctx context.Context, filter payroll.PayrollFilter) ([]payroll.Payroll, int64, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	rows := repo.query(func(p payroll.Payroll) bool {
		if filter.Month != nil && !p.PayrollMonth.Equal(payroll.MonthStart(*filter.Month)) {
			return false
		}
		if filter.PersonType != nil && p.PersonType != *filter.PersonType {
			return false
		}
		if filter.PersonID != nil && p.PersonID != *filter.PersonID {
			return false
		}
		return true
	})

	filter.Normalize()
	return paginate(rows, filter.Page, filter.Limit), int64(len(rows)), nil
}

func (repo *payrollRepository) ListWithoutSalary(ctx context.Context, month time.Time) ([]payroll.Payroll, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	month = payroll.MonthStart(month)
	return repo.query(func(p payroll.Payroll) bool {
		if !p.PayrollMonth.Equal(month) {
			return false
		}
		for _, s := range repo.db.salaries {
			if !s.IsDeleted && s.PersonID == p.PersonID && s.PersonType == p.PersonType && s.PayrollMonth.Equal(month) {
				return false
			}
		}
		return true
	}), nil
}

func (repo *payrollRepository) Update(ctx context.Context, p payroll.Payroll) (payroll.Payroll, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	current, ok := repo.db.payrolls[p.ID]
	if !ok || current.IsDeleted {
		return payroll.Payroll{}, payroll.ErrPayrollNotFound
	}

	updated := current
	updated.BaseSalary = p.BaseSalary
	updated.Earnings = append([]payroll.LineItem{}, p.Earnings...)
	updated.TotalEarnings = p.TotalEarnings
	updated.Deductions = append([]payroll.LineItem{}, p.Deductions...)
	updated.TotalDeductions = p.TotalDeductions
	updated.GrossSalary = p.GrossSalary
	updated.NetSalary = p.NetSalary
	updated.Notes = p.Notes
	updated.UpdatedAt = repo.db.now().UTC()

	repo.db.payrolls[p.ID] = updated
	repo.db.record(ctx, func() { repo.db.payrolls[p.ID] = current })
	return repo.withName(updated), nil
}

func (repo *payrollRepository) SoftDelete(ctx context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	current, ok := repo.db.payrolls[id]
	if !ok || current.IsDeleted {
		return payroll.ErrPayrollNotFound
	}

	now := repo.db.now().UTC()
	deleted := current
	deleted.IsDeleted = true
	deleted.DeletedAt = &now
	deleted.UpdatedAt = now

	repo.db.payrolls[id] = deleted
	repo.db.record(ctx, func() { repo.db.payrolls[id] = current })
	return nil
}

func paginate[T any](rows []T, page, limit int) []T {
	start := (page - 1) * limit
	if start >= len(rows) {
		return []T{}
	}
	end := start + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}
