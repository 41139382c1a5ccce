package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/schedule"
	"github.com/shopspring/decimal"
)

// Summary is one person's teaching activity over a period.
type Summary struct {
	TotalClassUnits decimal.Decimal
	TotalMinutes    int64
	TotalSessions   int
	AttendedClasses int
	MissedClasses   int
	// Sessions are the qualifying sessions, for pricing.
	Sessions []schedule.Schedule
}

// Aggregator joins schedule facts and attendance facts in memory. The two readers
// may be backed by different stores; nothing here spans both in a transaction.
type Aggregator struct {
	schedules  schedule.ScheduleReader
	attendance schedule.AttendanceReader
}

func NewAggregator(schedules schedule.ScheduleReader, attendance schedule.AttendanceReader) *Aggregator {
	return &Aggregator{schedules: schedules, attendance: attendance}
}

// Aggregate counts Completed sessions overlapping [start, end). Sessions without a
// positive duration are excluded from every total.
func (a *Aggregator) Aggregate(ctx context.Context, personID string, start, end time.Time) (Summary, error) {
	if !end.After(start) {
		return Summary{}, schedule.ErrInvalidPeriod
	}

	rows, err := a.schedules.ListCompletedByPerson(ctx, personID, start, end)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to list schedules for person %s: %w", personID, err)
	}

	summary := Summary{TotalClassUnits: decimal.Zero}
	ids := make([]string, 0, len(rows))
	for _, s := range rows {
		if s.Status != schedule.StatusCompleted || s.Duration <= 0 || !s.Overlaps(start, end) {
			continue
		}
		summary.Sessions = append(summary.Sessions, s)
		summary.TotalMinutes += int64(s.Duration)
		ids = append(ids, s.ID)
	}
	summary.TotalClassUnits = schedule.UnitsFromMinutes(summary.TotalMinutes)
	summary.TotalSessions = len(summary.Sessions)
	if summary.TotalSessions == 0 {
		return summary, nil
	}

	records, err := a.attendance.ListByPersonAndSchedules(ctx, personID, ids)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to list attendance for person %s: %w", personID, err)
	}

	confirmed := make(map[string]bool, len(records))
	for _, r := range records {
		if r.PersonID == personID && r.Confirmed {
			confirmed[r.ScheduleID] = true
		}
	}
	for _, s := range summary.Sessions {
		if confirmed[s.ID] {
			summary.AttendedClasses++
		}
	}
	summary.MissedClasses = summary.TotalSessions - summary.AttendedClasses

	return summary, nil
}
