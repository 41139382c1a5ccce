package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/bill"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const billColumns = `id, student_id, amount, status, due_date, final_due_date, paid_date, is_deleted, created_at, updated_at, deleted_at`

type billRepository struct {
	db *database.DB
}

func NewBillRepository(db *database.DB) bill.Repository {
	return &billRepository{db: db}
}

func scanBill(row pgx.Row) (bill.Bill, error) {
	var b bill.Bill
	err := row.Scan(&b.ID, &b.StudentID, &b.Amount, &b.Status, &b.DueDate, &b.FinalDueDate, &b.PaidDate,
		&b.IsDeleted, &b.CreatedAt, &b.UpdatedAt, &b.DeletedAt)
	return b, err
}

func (r *billRepository) GetByID(ctx context.Context, id string) (bill.Bill, error) {
	q := GetQuerier(ctx, r.db)

	b, err := scanBill(q.QueryRow(ctx, `SELECT `+billColumns+` FROM bills WHERE id = $1 AND is_deleted = FALSE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return bill.Bill{}, bill.ErrBillNotFound
		}
		return bill.Bill{}, fmt.Errorf("failed to get bill: %w", err)
	}
	return b, nil
}

func (r *billRepository) ListSweepCandidates(ctx context.Context, now time.Time) ([]bill.Bill, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + billColumns + `
		FROM bills
		WHERE is_deleted = FALSE
		  AND (
			(status = 'Generated' AND due_date < $1)
			OR (status IN ('Generated', 'OnDue') AND final_due_date < $1)
		  )
		ORDER BY due_date, id
	`

	rows, err := q.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills to sweep: %w", err)
	}
	defer rows.Close()

	var bills []bill.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

// UpdateStatus only applies when the row still holds status from, so concurrent
// sweeps and payments never overwrite each other.
func (r *billRepository) UpdateStatus(ctx context.Context, id string, from, to bill.Status) (bool, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE bills SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2 AND is_deleted = FALSE
	`, id, string(from), string(to))
	if err != nil {
		return false, fmt.Errorf("failed to update bill status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *billRepository) MarkPaid(ctx context.Context, id string, paidDate time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE bills SET status = 'Paid', paid_date = $2, updated_at = NOW()
		WHERE id = $1 AND status <> 'Paid' AND is_deleted = FALSE
	`, id, paidDate)
	if err != nil {
		return false, fmt.Errorf("failed to mark bill paid: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
