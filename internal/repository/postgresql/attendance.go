package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/pkg/database"
)

// scheduleReader and attendanceReader read from the schedule store, which has its
// own pool. They never share a transaction with the payroll store.
type scheduleReader struct {
	db *database.DB
}

func NewScheduleReader(db *database.DB) schedule.ScheduleReader {
	return &scheduleReader{db: db}
}

func (r *scheduleReader) ListCompletedByPerson(ctx context.Context, personID string, start, end time.Time) ([]schedule.Schedule, error) {
	query := `
		SELECT id, person_id, class_id, class_number, duration, start_at, end_at, status
		FROM schedules
		WHERE person_id = $1
		  AND status = 'Completed'
		  AND start_at < $3
		  AND end_at > $2
		ORDER BY start_at, id
	`

	rows, err := r.db.Query(ctx, query, personID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	defer rows.Close()

	var schedules []schedule.Schedule
	for rows.Next() {
		var s schedule.Schedule
		if err := rows.Scan(&s.ID, &s.PersonID, &s.ClassID, &s.ClassNumber, &s.Duration, &s.Start, &s.End, &s.Status); err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}

type attendanceReader struct {
	db *database.DB
}

func NewAttendanceReader(db *database.DB) schedule.AttendanceReader {
	return &attendanceReader{db: db}
}

func (r *attendanceReader) ListByPersonAndSchedules(ctx context.Context, personID string, scheduleIDs []string) ([]schedule.AttendanceRecord, error) {
	if len(scheduleIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, schedule_id, person_id, confirmed
		FROM attendance_records
		WHERE person_id = $1 AND schedule_id = ANY($2::uuid[])
	`

	rows, err := r.db.Query(ctx, query, personID, scheduleIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	var records []schedule.AttendanceRecord
	for rows.Next() {
		var a schedule.AttendanceRecord
		if err := rows.Scan(&a.ID, &a.ScheduleID, &a.PersonID, &a.Confirmed); err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, a)
	}
	return records, rows.Err()
}
