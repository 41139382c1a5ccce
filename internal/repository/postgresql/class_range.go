package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/payrule"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const classRangeColumns = `id, from_class, to_class, label, is_deleted, created_at, updated_at, deleted_at`

type classRangeRepository struct {
	db *database.DB
}

func NewClassRangeRepository(db *database.DB) payrule.ClassRangeRepository {
	return &classRangeRepository{db: db}
}

func scanClassRange(row pgx.Row) (payrule.ClassRange, error) {
	var cr payrule.ClassRange
	err := row.Scan(&cr.ID, &cr.FromClass, &cr.ToClass, &cr.Label, &cr.IsDeleted, &cr.CreatedAt, &cr.UpdatedAt, &cr.DeletedAt)
	return cr, err
}

func (r *classRangeRepository) Create(ctx context.Context, classRange payrule.ClassRange) (payrule.ClassRange, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO class_ranges (from_class, to_class, label)
		VALUES ($1, $2, $3)
		RETURNING ` + classRangeColumns

	created, err := scanClassRange(q.QueryRow(ctx, query, classRange.FromClass, classRange.ToClass, classRange.Label))
	if err != nil {
		return payrule.ClassRange{}, fmt.Errorf("failed to create class range: %w", err)
	}
	return created, nil
}

func (r *classRangeRepository) GetByID(ctx context.Context, id string) (payrule.ClassRange, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + classRangeColumns + ` FROM class_ranges WHERE id = $1 AND is_deleted = FALSE`

	cr, err := scanClassRange(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payrule.ClassRange{}, payrule.ErrClassRangeNotFound
		}
		return payrule.ClassRange{}, fmt.Errorf("failed to get class range: %w", err)
	}
	return cr, nil
}

// ListActive orders by from_class then id, which is the lookup order for overlapping ranges.
func (r *classRangeRepository) ListActive(ctx context.Context) ([]payrule.ClassRange, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + classRangeColumns + ` FROM class_ranges WHERE is_deleted = FALSE ORDER BY from_class, id`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list class ranges: %w", err)
	}
	defer rows.Close()

	var ranges []payrule.ClassRange
	for rows.Next() {
		cr, err := scanClassRange(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan class range: %w", err)
		}
		ranges = append(ranges, cr)
	}
	return ranges, rows.Err()
}

func (r *classRangeRepository) Update(ctx context.Context, classRange payrule.ClassRange) (payrule.ClassRange, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE class_ranges SET from_class = $2, to_class = $3, label = $4, updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE
		RETURNING ` + classRangeColumns

	updated, err := scanClassRange(q.QueryRow(ctx, query, classRange.ID, classRange.FromClass, classRange.ToClass, classRange.Label))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payrule.ClassRange{}, payrule.ErrClassRangeNotFound
		}
		return payrule.ClassRange{}, fmt.Errorf("failed to update class range: %w", err)
	}
	return updated, nil
}

func (r *classRangeRepository) SoftDelete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE class_ranges SET is_deleted = TRUE, deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete class range: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payrule.ErrClassRangeNotFound
	}
	return nil
}
