package payrule

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClassRange is a contiguous band of class numbers sharing one base-pay rate.
// Ranges are expected not to overlap but nothing enforces it.
type ClassRange struct {
	ID        string
	FromClass int
	ToClass   int
	Label     string
	IsDeleted bool
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// Contains reports whether classNumber falls inside the range, bounds included.
func (r ClassRange) Contains(classNumber int) bool {
	return r.FromClass <= classNumber && classNumber <= r.ToClass
}

type BasePay struct {
	ClassRangeID string          `json:"class_range_id"`
	BasePay      decimal.Decimal `json:"base_pay"`
}

type IncrementRule struct {
	IncrementPercent decimal.Decimal `json:"increment_percent"`
}

type AboveThreshold struct {
	Rules     []IncrementRule `json:"rules"`
	Decrement decimal.Decimal `json:"decrement"`
}

type BelowThreshold struct {
	Increment decimal.Decimal `json:"increment"`
	Decrement decimal.Decimal `json:"decrement"`
}

// Config is the single active pay rule set. It is loaded wholesale at the start of a
// run and passed down by value; nothing re-reads it mid-computation.
type Config struct {
	ID               string
	BasePays         []BasePay
	MonthlyThreshold decimal.Decimal
	AboveThreshold   AboveThreshold
	BelowThreshold   BelowThreshold
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Clone returns a deep copy so callers can hand the value to goroutines safely.
func (c Config) Clone() Config {
	out := c
	out.BasePays = append([]BasePay(nil), c.BasePays...)
	out.AboveThreshold.Rules = append([]IncrementRule(nil), c.AboveThreshold.Rules...)
	return out
}

// BasePayFor returns the configured rate for a class range.
func (c Config) BasePayFor(classRangeID string) (decimal.Decimal, bool) {
	for _, bp := range c.BasePays {
		if bp.ClassRangeID == classRangeID {
			return bp.BasePay, true
		}
	}
	return decimal.Zero, false
}

// TutorPerformance parameterizes the display-only tutor pay percent. It never feeds
// salary computation.
type TutorPerformance struct {
	Threshold          int
	IncrementPercent   decimal.Decimal
	DecrementPerMissed decimal.Decimal
}
