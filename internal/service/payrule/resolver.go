package payrule

import (
	"sort"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/payrule"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/schedule"
	"github.com/shopspring/decimal"
)

// BasePayResolver prices class numbers against a snapshot of class ranges and one
// pay rule configuration. It holds no mutable state and is safe for concurrent use.
type BasePayResolver struct {
	ranges []payrule.ClassRange
	cfg    payrule.Config
}

func NewBasePayResolver(ranges []payrule.ClassRange, cfg payrule.Config) *BasePayResolver {
	active := make([]payrule.ClassRange, 0, len(ranges))
	for _, r := range ranges {
		if !r.IsDeleted {
			active = append(active, r)
		}
	}
	// First match wins when ranges overlap
	sort.SliceStable(active, func(i, j int) bool {
		if active[i].FromClass != active[j].FromClass {
			return active[i].FromClass < active[j].FromClass
		}
		return active[i].ID < active[j].ID
	})
	return &BasePayResolver{ranges: active, cfg: cfg.Clone()}
}

// Resolve returns the base-pay rate for classNumber. ok is false when no range
// contains it or the matching range has no configured rate.
func (r *BasePayResolver) Resolve(classNumber int) (decimal.Decimal, bool) {
	_, rate, ok := r.match(classNumber)
	return rate, ok
}

func (r *BasePayResolver) match(classNumber int) (string, decimal.Decimal, bool) {
	for _, cr := range r.ranges {
		if cr.Contains(classNumber) {
			rate, ok := r.cfg.BasePayFor(cr.ID)
			return cr.ID, rate, ok
		}
	}
	return "", decimal.Zero, false
}

// Accumulation is the priced total of a set of sessions.
type Accumulation struct {
	TotalBasePay decimal.Decimal
	// Unresolved lists class numbers that contributed nothing.
	Unresolved []int
}

// Accumulate prices sessions per class range as rate × Σminutes / 60. Sessions
// without a positive duration contribute nothing.
func (r *BasePayResolver) Accumulate(sessions []schedule.Schedule) Accumulation {
	type band struct {
		rate    decimal.Decimal
		minutes int64
	}

	acc := Accumulation{TotalBasePay: decimal.Zero}
	seen := make(map[int]bool)
	bands := make(map[string]*band)
	var order []string
	for _, s := range sessions {
		if s.Duration <= 0 {
			continue
		}
		rangeID, rate, ok := r.match(s.ClassNumber)
		if !ok {
			if !seen[s.ClassNumber] {
				seen[s.ClassNumber] = true
				acc.Unresolved = append(acc.Unresolved, s.ClassNumber)
			}
			continue
		}
		b, exists := bands[rangeID]
		if !exists {
			b = &band{rate: rate}
			bands[rangeID] = b
			order = append(order, rangeID)
		}
		b.minutes += int64(s.Duration)
	}
	for _, id := range order {
		acc.TotalBasePay = acc.TotalBasePay.Add(schedule.PriceMinutes(bands[id].rate, bands[id].minutes))
	}
	return acc
}
