package inmem

import (
	"context"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/audit"
	"github.com/google/uuid"
)

type auditRepository struct {
	db *DB
}

func NewAuditRepository(db *DB) audit.Repository {
	return &auditRepository{db: db}
}

func (repo *auditRepository) Append(ctx context.Context, a audit.PayrollAudit) (audit.PayrollAudit, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if fail := repo.db.FailAuditAppend; fail != nil {
		if err := fail(); err != nil {
			return audit.PayrollAudit{}, err
		}
	}

	a.ID = uuid.NewString()
	repo.db.audits = append(repo.db.audits, a)
	return a, nil
}

func (repo *auditRepository) ListByPayroll(ctx context.Context, payrollID string) ([]audit.PayrollAudit, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var entries []audit.PayrollAudit
	for _, a := range repo.db.audits {
		if a.PayrollID == payrollID {
			entries = append(entries, a)
		}
	}
	return entries, nil
}
