package postgresql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/pkg/database"
)

type auditRepository struct {
	db *database.DB
}

func NewAuditRepository(db *database.DB) audit.Repository {
	return &auditRepository{db: db}
}

func encodeSnapshot(s audit.Snapshot) ([]byte, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// decodeSnapshot keeps numbers as json.Number so stored snapshots compare the same
// way freshly taken ones do.
func decodeSnapshot(raw []byte) (audit.Snapshot, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var s audit.Snapshot
	if err := dec.Decode(&s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *auditRepository) Append(ctx context.Context, a audit.PayrollAudit) (audit.PayrollAudit, error) {
	q := GetQuerier(ctx, r.db)

	oldJSON, err := encodeSnapshot(a.OldData)
	if err != nil {
		return audit.PayrollAudit{}, fmt.Errorf("failed to encode old_data: %w", err)
	}
	newJSON, err := encodeSnapshot(a.NewData)
	if err != nil {
		return audit.PayrollAudit{}, fmt.Errorf("failed to encode new_data: %w", err)
	}
	changed := a.ChangedFields
	if changed == nil {
		changed = []string{}
	}

	query := `
		INSERT INTO payroll_audits (
			payroll_id, entity_type, entity_id, staff_id, staff_type,
			action, old_data, new_data, changed_fields, changed_by, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	err = q.QueryRow(ctx, query,
		a.PayrollID, string(a.EntityType), a.EntityID, a.StaffID, a.StaffType,
		string(a.Action), oldJSON, newJSON, changed, a.ChangedBy, a.CreatedAt,
	).Scan(&a.ID)
	if err != nil {
		return audit.PayrollAudit{}, fmt.Errorf("failed to append payroll audit: %w", err)
	}
	return a, nil
}

func (r *auditRepository) ListByPayroll(ctx context.Context, payrollID string) ([]audit.PayrollAudit, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, payroll_id, entity_type, entity_id, staff_id, staff_type,
			   action, old_data, new_data, changed_fields, changed_by, created_at
		FROM payroll_audits
		WHERE payroll_id = $1
		ORDER BY created_at, id
	`

	rows, err := q.Query(ctx, query, payrollID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll audits: %w", err)
	}
	defer rows.Close()

	var entries []audit.PayrollAudit
	for rows.Next() {
		var a audit.PayrollAudit
		var oldRaw, newRaw []byte
		if err := rows.Scan(
			&a.ID, &a.PayrollID, &a.EntityType, &a.EntityID, &a.StaffID, &a.StaffType,
			&a.Action, &oldRaw, &newRaw, &a.ChangedFields, &a.ChangedBy, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payroll audit: %w", err)
		}
		if a.OldData, err = decodeSnapshot(oldRaw); err != nil {
			return nil, fmt.Errorf("failed to decode old_data of audit %s: %w", a.ID, err)
		}
		if a.NewData, err = decodeSnapshot(newRaw); err != nil {
			return nil, fmt.Errorf("failed to decode new_data of audit %s: %w", a.ID, err)
		}
		entries = append(entries, a)
	}
	return entries, rows.Err()
}
