package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/person"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const (
	itemKindEarning   = "earning"
	itemKindDeduction = "deduction"

	payrollColumns = `
		p.id, p.person_id, p.person_type, p.payroll_month, p.base_salary,
		p.total_earnings, p.total_deductions, p.gross_salary, p.net_salary,
		p.total_class_units, p.attended_classes, p.missed_classes, p.notes,
		p.is_deleted, p.created_at, p.updated_at, p.deleted_at`
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

func scanPayroll(row pgx.Row, extra ...any) (payroll.Payroll, error) {
	var p payroll.Payroll
	dest := []any{
		&p.ID, &p.PersonID, &p.PersonType, &p.PayrollMonth, &p.BaseSalary,
		&p.TotalEarnings, &p.TotalDeductions, &p.GrossSalary, &p.NetSalary,
		&p.TotalClassUnits, &p.AttendedClasses, &p.MissedClasses, &p.Notes,
		&p.IsDeleted, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt,
	}
	err := row.Scan(append(dest, extra...)...)
	return p, err
}

func (r *payrollRepository) Create(ctx context.Context, p payroll.Payroll) (payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payrolls AS p (
			person_id, person_type, payroll_month, base_salary,
			total_earnings, total_deductions, gross_salary, net_salary,
			total_class_units, attended_classes, missed_classes, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + payrollColumns

	created, err := scanPayroll(q.QueryRow(ctx, query,
		p.PersonID, string(p.PersonType), p.PayrollMonth, p.BaseSalary,
		p.TotalEarnings, p.TotalDeductions, p.GrossSalary, p.NetSalary,
		p.TotalClassUnits, p.AttendedClasses, p.MissedClasses, p.Notes,
	))
	if err != nil {
		if isUniqueViolation(err, "uk_payroll_person_month") {
			return payroll.Payroll{}, payroll.ErrPayrollAlreadyExists
		}
		return payroll.Payroll{}, fmt.Errorf("failed to create payroll: %w", err)
	}

	if err := r.insertItems(ctx, q, created.ID, p.Earnings, p.Deductions); err != nil {
		return payroll.Payroll{}, err
	}
	created.Earnings = nonNilItems(p.Earnings)
	created.Deductions = nonNilItems(p.Deductions)

	return created, nil
}

func (r *payrollRepository) insertItems(ctx context.Context, q database.Querier, payrollID string, earnings, deductions []payroll.LineItem) error {
	query := `INSERT INTO payroll_items (payroll_id, kind, label, amount, position) VALUES ($1, $2, $3, $4, $5)`

	for i, it := range earnings {
		if _, err := q.Exec(ctx, query, payrollID, itemKindEarning, it.Label, it.Amount, i); err != nil {
			return fmt.Errorf("failed to insert payroll earning: %w", err)
		}
	}
	for i, it := range deductions {
		if _, err := q.Exec(ctx, query, payrollID, itemKindDeduction, it.Label, it.Amount, i); err != nil {
			return fmt.Errorf("failed to insert payroll deduction: %w", err)
		}
	}
	return nil
}

// attachItems loads line items for the given payrolls in one query.
func (r *payrollRepository) attachItems(ctx context.Context, q database.Querier, payrolls []payroll.Payroll) error {
	if len(payrolls) == 0 {
		return nil
	}

	ids := make([]string, 0, len(payrolls))
	index := make(map[string]int, len(payrolls))
	for i, p := range payrolls {
		ids = append(ids, p.ID)
		index[p.ID] = i
		payrolls[i].Earnings = []payroll.LineItem{}
		payrolls[i].Deductions = []payroll.LineItem{}
	}

	rows, err := q.Query(ctx, `
		SELECT payroll_id, kind, label, amount
		FROM payroll_items
		WHERE payroll_id = ANY($1::uuid[])
		ORDER BY payroll_id, kind, position
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to load payroll items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var payrollID, kind string
		var it payroll.LineItem
		if err := rows.Scan(&payrollID, &kind, &it.Label, &it.Amount); err != nil {
			return fmt.Errorf("failed to scan payroll item: %w", err)
		}
		i := index[payrollID]
		if kind == itemKindEarning {
			payrolls[i].Earnings = append(payrolls[i].Earnings, it)
		} else {
			payrolls[i].Deductions = append(payrolls[i].Deductions, it)
		}
	}
	return rows.Err()
}

func (r *payrollRepository) GetByID(ctx context.Context, id string) (payroll.Payroll, error) {
	return r.getWithItems(ctx, "p.id = $1", id)
}

func (r *payrollRepository) GetByPersonMonth(ctx context.Context, personID string, personType person.Type, month time.Time) (payroll.Payroll, error) {
	return r.getWithItems(ctx, "p.person_id = $1 AND p.person_type = $2 AND p.payroll_month = $3",
		personID, string(personType), payroll.MonthStart(month))
}

func (r *payrollRepository) getWithItems(ctx context.Context, where string, args ...any) (payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payrollColumns + `, pe.full_name
		FROM payrolls p
		LEFT JOIN persons pe ON pe.id = p.person_id
		WHERE p.is_deleted = FALSE AND ` + where

	var name *string
	p, err := scanPayroll(q.QueryRow(ctx, query, args...), &name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Payroll{}, payroll.ErrPayrollNotFound
		}
		return payroll.Payroll{}, fmt.Errorf("failed to get payroll: %w", err)
	}
	p.PersonName = name

	list := []payroll.Payroll{p}
	if err := r.attachItems(ctx, q, list); err != nil {
		return payroll.Payroll{}, err
	}
	return list[0], nil
}

func (r *payrollRepository) List(ctx context.Context, filter payroll.PayrollFilter) ([]payroll.Payroll, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseQuery := `
		FROM payrolls p
		LEFT JOIN persons pe ON pe.id = p.person_id
		WHERE p.is_deleted = FALSE
	`
	args := []interface{}{}
	argIdx := 1

	if filter.Month != nil {
		baseQuery += fmt.Sprintf(" AND p.payroll_month = $%d", argIdx)
		args = append(args, payroll.MonthStart(*filter.Month))
		argIdx++
	}
	if filter.PersonType != nil {
		baseQuery += fmt.Sprintf(" AND p.person_type = $%d", argIdx)
		args = append(args, string(*filter.PersonType))
		argIdx++
	}
	if filter.PersonID != nil {
		baseQuery += fmt.Sprintf(" AND p.person_id = $%d", argIdx)
		args = append(args, *filter.PersonID)
		argIdx++
	}

	var totalCount int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count payrolls: %w", err)
	}

	filter.Normalize()
	offset := (filter.Page - 1) * filter.Limit

	selectQuery := fmt.Sprintf(`
		SELECT %s, pe.full_name
		%s
		ORDER BY p.payroll_month DESC, p.person_type, p.person_id
		LIMIT $%d OFFSET $%d
	`, payrollColumns, baseQuery, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payrolls: %w", err)
	}
	defer rows.Close()

	var payrolls []payroll.Payroll
	for rows.Next() {
		var name *string
		p, err := scanPayroll(rows, &name)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll: %w", err)
		}
		p.PersonName = name
		payrolls = append(payrolls, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate payrolls: %w", err)
	}

	if err := r.attachItems(ctx, q, payrolls); err != nil {
		return nil, 0, err
	}
	return payrolls, totalCount, nil
}

func (r *payrollRepository) ListWithoutSalary(ctx context.Context, month time.Time) ([]payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payrollColumns + `
		FROM payrolls p
		WHERE p.is_deleted = FALSE
		  AND p.payroll_month = $1
		  AND NOT EXISTS (
			SELECT 1 FROM salaries s
			WHERE s.person_id = p.person_id
			  AND s.person_type = p.person_type
			  AND s.payroll_month = p.payroll_month
			  AND s.is_deleted = FALSE
		  )
		ORDER BY p.person_type, p.person_id
	`

	rows, err := q.Query(ctx, query, payroll.MonthStart(month))
	if err != nil {
		return nil, fmt.Errorf("failed to list payrolls without salary: %w", err)
	}
	defer rows.Close()

	var payrolls []payroll.Payroll
	for rows.Next() {
		p, err := scanPayroll(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll: %w", err)
		}
		payrolls = append(payrolls, p)
	}
	return payrolls, rows.Err()
}

// Update rewrites amounts and notes and replaces the line items. Call inside a transaction.
func (r *payrollRepository) Update(ctx context.Context, p payroll.Payroll) (payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payrolls AS p SET
			base_salary = $2, total_earnings = $3, total_deductions = $4,
			gross_salary = $5, net_salary = $6, notes = $7, updated_at = NOW()
		WHERE p.id = $1 AND p.is_deleted = FALSE
		RETURNING ` + payrollColumns

	updated, err := scanPayroll(q.QueryRow(ctx, query,
		p.ID, p.BaseSalary, p.TotalEarnings, p.TotalDeductions, p.GrossSalary, p.NetSalary, p.Notes,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Payroll{}, payroll.ErrPayrollNotFound
		}
		return payroll.Payroll{}, fmt.Errorf("failed to update payroll: %w", err)
	}

	if _, err := q.Exec(ctx, `DELETE FROM payroll_items WHERE payroll_id = $1`, p.ID); err != nil {
		return payroll.Payroll{}, fmt.Errorf("failed to clear payroll items: %w", err)
	}
	if err := r.insertItems(ctx, q, p.ID, p.Earnings, p.Deductions); err != nil {
		return payroll.Payroll{}, err
	}

	updated.Earnings = nonNilItems(p.Earnings)
	updated.Deductions = nonNilItems(p.Deductions)
	updated.PersonName = p.PersonName
	return updated, nil
}

func (r *payrollRepository) SoftDelete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE payrolls SET is_deleted = TRUE, deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete payroll: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayrollNotFound
	}
	return nil
}

func nonNilItems(items []payroll.LineItem) []payroll.LineItem {
	if items == nil {
		return []payroll.LineItem{}
	}
	return items
}
