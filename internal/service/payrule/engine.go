package payrule

import (
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/payrule"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type Result struct {
	GrossSalary     decimal.Decimal
	NetSalary       decimal.Decimal
	IncrementAmount decimal.Decimal
	DeductionAmount decimal.Decimal
}

// Compute applies rule to the month's totals. Any missed class selects the
// deduction path; otherwise the increment path applies. The two never combine.
// Net salary is not floored.
func Compute(totalBasePay, totalClassUnits decimal.Decimal, attended, missed int, rule payrule.Config) Result {
	aboveThreshold := totalClassUnits.GreaterThanOrEqual(rule.MonthlyThreshold)

	increment := decimal.Zero
	deduction := decimal.Zero

	if missed > 0 {
		perClass := rule.BelowThreshold.Decrement
		if aboveThreshold {
			perClass = rule.AboveThreshold.Decrement
		}
		deduction = decimal.NewFromInt(int64(missed)).Mul(perClass)
	} else if aboveThreshold {
		for _, r := range rule.AboveThreshold.Rules {
			increment = increment.Add(totalBasePay.Mul(r.IncrementPercent).Div(hundred))
		}
	} else {
		increment = decimal.NewFromInt(int64(attended)).Mul(rule.BelowThreshold.Increment)
	}

	gross := totalBasePay.Add(increment)
	return Result{
		GrossSalary:     gross,
		NetSalary:       gross.Sub(deduction),
		IncrementAmount: increment,
		DeductionAmount: deduction,
	}
}

// TutorPayPercent is the display-only pay percent used by reporting:
// 100 + (onTime/total)*incrementPercent - missed*decrementPerMissed, applied only
// once total reaches the threshold and never below zero.
func TutorPayPercent(onTime, total, missed int, cfg payrule.TutorPerformance) decimal.Decimal {
	if total <= 0 || total < cfg.Threshold {
		return hundred
	}

	ratio := decimal.NewFromInt(int64(onTime)).Div(decimal.NewFromInt(int64(total)))
	percent := hundred.
		Add(ratio.Mul(cfg.IncrementPercent)).
		Sub(decimal.NewFromInt(int64(missed)).Mul(cfg.DecrementPerMissed))

	if percent.IsNegative() {
		return decimal.Zero
	}
	return percent
}
