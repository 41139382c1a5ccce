package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/person"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type personDirectory struct {
	db *database.DB
}

func NewPersonDirectory(db *database.DB) person.Directory {
	return &personDirectory{db: db}
}

func (r *personDirectory) GetByID(ctx context.Context, id string, personType person.Type) (person.Person, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, person_type, full_name, is_active, fixed_monthly_salary
		FROM persons
		WHERE id = $1 AND person_type = $2
	`

	var p person.Person
	err := q.QueryRow(ctx, query, id, string(personType)).Scan(&p.ID, &p.Type, &p.FullName, &p.IsActive, &p.FixedMonthlySalary)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return person.Person{}, person.ErrPersonNotFound
		}
		return person.Person{}, fmt.Errorf("failed to get person: %w", err)
	}
	return p, nil
}

func (r *personDirectory) ListActive(ctx context.Context, personType person.Type) ([]person.Person, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, person_type, full_name, is_active, fixed_monthly_salary
		FROM persons
		WHERE is_active = TRUE AND ($1 = '' OR person_type = $1)
		ORDER BY person_type, full_name, id
	`

	rows, err := q.Query(ctx, query, string(personType))
	if err != nil {
		return nil, fmt.Errorf("failed to list persons: %w", err)
	}
	defer rows.Close()

	var persons []person.Person
	for rows.Next() {
		var p person.Person
		if err := rows.Scan(&p.ID, &p.Type, &p.FullName, &p.IsActive, &p.FixedMonthlySalary); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		persons = append(persons, p)
	}
	return persons, rows.Err()
}
