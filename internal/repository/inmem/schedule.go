package inmem

import (
	"context"
	"time"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/schedule"
)

type scheduleReader struct {
	db *DB
}

func NewScheduleReader(db *DB) schedule.ScheduleReader {
	return &scheduleReader{db: db}
}

func (repo *scheduleReader) ListCompletedByPerson(ctx context.Context, personID string, start, end time.Time) ([]schedule.Schedule, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var rows []schedule.Schedule
	for _, s := range repo.db.schedules {
		if s.PersonID == personID && s.Status == schedule.StatusCompleted && s.Overlaps(start, end) {
			rows = append(rows, s)
		}
	}
	return rows, nil
}

type attendanceReader struct {
	db *DB
}

func NewAttendanceReader(db *DB) schedule.AttendanceReader {
	return &attendanceReader{db: db}
}

func (repo *attendanceReader) ListByPersonAndSchedules(ctx context.Context, personID string, scheduleIDs []string) ([]schedule.AttendanceRecord, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	wanted := make(map[string]bool, len(scheduleIDs))
	for _, id := range scheduleIDs {
		wanted[id] = true
	}
	var rows []schedule.AttendanceRecord
	for _, a := range repo.db.attendance {
		if a.PersonID == personID && wanted[a.ScheduleID] {
			rows = append(rows, a)
		}
	}
	return rows, nil
}
