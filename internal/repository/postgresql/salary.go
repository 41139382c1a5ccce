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

const salaryColumns = `
	id, payroll_id, person_id, person_type, payroll_month, amount, status,
	salary_date, due_date, final_due_date, assigned_to, paid_date,
	is_deleted, created_at, updated_at, deleted_at`

type salaryRepository struct {
	db *database.DB
}

func NewSalaryRepository(db *database.DB) payroll.SalaryRepository {
	return &salaryRepository{db: db}
}

func scanSalary(row pgx.Row) (payroll.Salary, error) {
	var s payroll.Salary
	err := row.Scan(
		&s.ID, &s.PayrollID, &s.PersonID, &s.PersonType, &s.PayrollMonth, &s.Amount, &s.Status,
		&s.SalaryDate, &s.DueDate, &s.FinalDueDate, &s.AssignedTo, &s.PaidDate,
		&s.IsDeleted, &s.CreatedAt, &s.UpdatedAt, &s.DeletedAt,
	)
	return s, err
}

func (r *salaryRepository) Create(ctx context.Context, s payroll.Salary) (payroll.Salary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO salaries (
			payroll_id, person_id, person_type, payroll_month, amount, status,
			salary_date, due_date, final_due_date, assigned_to
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + salaryColumns

	created, err := scanSalary(q.QueryRow(ctx, query,
		s.PayrollID, s.PersonID, string(s.PersonType), payroll.MonthStart(s.PayrollMonth), s.Amount, string(s.Status),
		s.SalaryDate, s.DueDate, s.FinalDueDate, s.AssignedTo,
	))
	if err != nil {
		if isUniqueViolation(err, "uk_salary_person_month") {
			return payroll.Salary{}, payroll.ErrSalaryAlreadyExists
		}
		return payroll.Salary{}, fmt.Errorf("failed to create salary: %w", err)
	}
	return created, nil
}

func (r *salaryRepository) getOne(ctx context.Context, where string, args ...any) (payroll.Salary, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + salaryColumns + ` FROM salaries WHERE is_deleted = FALSE AND ` + where

	s, err := scanSalary(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Salary{}, payroll.ErrSalaryNotFound
		}
		return payroll.Salary{}, fmt.Errorf("failed to get salary: %w", err)
	}
	return s, nil
}

func (r *salaryRepository) GetByID(ctx context.Context, id string) (payroll.Salary, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *salaryRepository) GetByPersonMonth(ctx context.Context, personID string, personType person.Type, month time.Time) (payroll.Salary, error) {
	return r.getOne(ctx, "person_id = $1 AND person_type = $2 AND payroll_month = $3",
		personID, string(personType), payroll.MonthStart(month))
}

func (r *salaryRepository) List(ctx context.Context, filter payroll.SalaryFilter) ([]payroll.Salary, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseQuery := ` FROM salaries WHERE is_deleted = FALSE`
	args := []interface{}{}
	argIdx := 1

	if filter.Month != nil {
		baseQuery += fmt.Sprintf(" AND payroll_month = $%d", argIdx)
		args = append(args, payroll.MonthStart(*filter.Month))
		argIdx++
	}
	if filter.PersonType != nil {
		baseQuery += fmt.Sprintf(" AND person_type = $%d", argIdx)
		args = append(args, string(*filter.PersonType))
		argIdx++
	}
	if filter.Status != nil {
		baseQuery += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, string(*filter.Status))
		argIdx++
	}

	var totalCount int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*)"+baseQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count salaries: %w", err)
	}

	filter.Normalize()
	offset := (filter.Page - 1) * filter.Limit

	selectQuery := fmt.Sprintf(`SELECT %s %s ORDER BY payroll_month DESC, person_type, person_id LIMIT $%d OFFSET $%d`,
		salaryColumns, baseQuery, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list salaries: %w", err)
	}
	defer rows.Close()

	var salaries []payroll.Salary
	for rows.Next() {
		s, err := scanSalary(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan salary: %w", err)
		}
		salaries = append(salaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate salaries: %w", err)
	}
	return salaries, totalCount, nil
}

// Update persists status, assignee and paid date. Amount is a snapshot and never changes.
func (r *salaryRepository) Update(ctx context.Context, s payroll.Salary) (payroll.Salary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE salaries SET status = $2, assigned_to = $3, paid_date = $4, updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE
		RETURNING ` + salaryColumns

	updated, err := scanSalary(q.QueryRow(ctx, query, s.ID, string(s.Status), s.AssignedTo, s.PaidDate))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Salary{}, payroll.ErrSalaryNotFound
		}
		return payroll.Salary{}, fmt.Errorf("failed to update salary: %w", err)
	}
	return updated, nil
}
