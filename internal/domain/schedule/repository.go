package schedule

import (
	"context"
	"time"
)

// ScheduleReader is a read-only view on the schedule store.
type ScheduleReader interface {
	// ListCompletedByPerson returns Completed sessions whose interval overlaps [start, end).
	ListCompletedByPerson(ctx context.Context, personID string, start, end time.Time) ([]Schedule, error)
}

// AttendanceReader is a read-only view on attendance facts.
type AttendanceReader interface {
	ListByPersonAndSchedules(ctx context.Context, personID string, scheduleIDs []string) ([]AttendanceRecord, error)
}
