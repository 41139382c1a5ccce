package inmem

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/person"
	"github.com/google/uuid"
)

type salaryRepository struct {
	db *DB
}

func NewSalaryRepository(db *DB) payroll.SalaryRepository {
	return &salaryRepository{db: db}
}

func (repo *salaryRepository) Create(ctx context.Context, s payroll.Salary) (payroll.Salary, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	month := payroll.MonthStart(s.PayrollMonth)
	for _, existing := range repo.db.salaries {
		if !existing.IsDeleted && existing.PersonID == s.PersonID &&
			existing.PersonType == s.PersonType && existing.PayrollMonth.Equal(month) {
			return payroll.Salary{}, payroll.ErrSalaryAlreadyExists
		}
	}

	now := repo.db.now().UTC()
	s.ID = uuid.NewString()
	s.PayrollMonth = month
	s.CreatedAt, s.UpdatedAt = now, now
	repo.db.salaries[s.ID] = s
	repo.db.record(ctx, func() { delete(repo.db.salaries, s.ID) })
	return s, nil
}

func (repo *salaryRepository) GetByID(ctx context.Context, id string) (payroll.Salary, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	s, ok := repo.db.salaries[id]
	if !ok || s.IsDeleted {
		return payroll.Salary{}, payroll.ErrSalaryNotFound
	}
	return s, nil
}

func (repo *salaryRepository) GetByPersonMonth(ctx context.Context, personID string, personType person.Type, month time.Time) (payroll.Salary, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	month = payroll.MonthStart(month)
	for _, s := range repo.db.salaries {
		if !s.IsDeleted && s.PersonID == personID && s.PersonType == personType && s.PayrollMonth.Equal(month) {
			return s, nil
		}
	}
	return payroll.Salary{}, payroll.ErrSalaryNotFound
}

func (repo *salaryRepository) List(ctx context.Context, filter payroll.SalaryFilter) ([]payroll.Salary, int64, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var rows []payroll.Salary
	for _, s := range repo.db.salaries {
		if s.IsDeleted {
			continue
		}
		if filter.Month != nil && !s.PayrollMonth.Equal(payroll.MonthStart(*filter.Month)) {
			continue
		}
		if filter.PersonType != nil && s.PersonType != *filter.PersonType {
			continue
		}
		if filter.Status != nil && s.Status != *filter.Status {
			continue
		}
		rows = append(rows, s)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].PersonID < rows[j].PersonID })

	filter.Normalize()
	return paginate(rows, filter.Page, filter.Limit), int64(len(rows)), nil
}

func (repo *salaryRepository) Update(ctx context.Context, s payroll.Salary) (payroll.Salary, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	current, ok := repo.db.salaries[s.ID]
	if !ok || current.IsDeleted {
		return payroll.Salary{}, payroll.ErrSalaryNotFound
	}

	updated := current
	updated.Status = s.Status
	updated.AssignedTo = s.AssignedTo
	updated.PaidDate = s.PaidDate
	updated.UpdatedAt = repo.db.now().UTC()

	repo.db.salaries[s.ID] = updated
	repo.db.record(ctx, func() { repo.db.salaries[s.ID] = current })
	return updated, nil
}
