package schedule

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusScheduled Status = "Scheduled"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

var minutesPerUnit = decimal.NewFromInt(60)

// Schedule is a teaching session owned by the schedule store.
type Schedule struct {
	ID          string
	PersonID    string
	ClassID     string
	ClassNumber int
	Duration    int // minutes
	Start       time.Time
	End         time.Time
	Status      Status
}

// UnitsFromMinutes normalizes a minute total to 60-minute class units. Callers sum
// whole minutes and convert once; per-session quotients such as 50/60 are inexact.
func UnitsFromMinutes(minutes int64) decimal.Decimal {
	return decimal.NewFromInt(minutes).Div(minutesPerUnit)
}

// PriceMinutes is rate × minutes / 60, multiplied before dividing.
func PriceMinutes(rate decimal.Decimal, minutes int64) decimal.Decimal {
	return rate.Mul(decimal.NewFromInt(minutes)).Div(minutesPerUnit)
}

// Overlaps reports whether the session intersects the half-open period [start, end).
func (s Schedule) Overlaps(start, end time.Time) bool {
	return s.Start.Before(end) && s.End.After(start)
}

type AttendanceRecord struct {
	ID         string
	ScheduleID string
	PersonID   string
	Confirmed  bool
}
