package payrule

import (
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type BasePayRequest struct {
	ClassRangeID string          `json:"class_range_id" validate:"required"`
	BasePay      decimal.Decimal `json:"base_pay" validate:"gte=0"`
}

type IncrementRuleRequest struct {
	IncrementPercent decimal.Decimal `json:"increment_percent" validate:"gte=0"`
}

type AboveThresholdRequest struct {
	Rules     []IncrementRuleRequest `json:"rules" validate:"dive"`
	Decrement decimal.Decimal        `json:"decrement" validate:"gte=0"`
}

type BelowThresholdRequest struct {
	Increment decimal.Decimal `json:"increment" validate:"gte=0"`
	Decrement decimal.Decimal `json:"decrement" validate:"gte=0"`
}

// UpdateConfigRequest replaces the whole configuration.
type UpdateConfigRequest struct {
	BasePays         []BasePayRequest      `json:"base_pays" validate:"dive"`
	MonthlyThreshold decimal.Decimal       `json:"monthly_threshold" validate:"gte=0"`
	AboveThreshold   AboveThresholdRequest `json:"above_threshold"`
	BelowThreshold   BelowThresholdRequest `json:"below_threshold"`
}

func (r *UpdateConfigRequest) Validate() error {
	if err := validator.Struct(r); err != nil {
		return err
	}

	seen := make(map[string]bool, len(r.BasePays))
	var errs validator.ValidationErrors
	for _, bp := range r.BasePays {
		if seen[bp.ClassRangeID] {
			errs = append(errs, validator.ValidationError{Field: "base_pays", Message: "class_range_id " + bp.ClassRangeID + " is listed more than once"})
		}
		seen[bp.ClassRangeID] = true
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (r UpdateConfigRequest) ToConfig() Config {
	cfg := Config{
		MonthlyThreshold: r.MonthlyThreshold,
		AboveThreshold:   AboveThreshold{Decrement: r.AboveThreshold.Decrement},
		BelowThreshold:   BelowThreshold{Increment: r.BelowThreshold.Increment, Decrement: r.BelowThreshold.Decrement},
	}
	for _, bp := range r.BasePays {
		cfg.BasePays = append(cfg.BasePays, BasePay{ClassRangeID: bp.ClassRangeID, BasePay: bp.BasePay})
	}
	for _, rule := range r.AboveThreshold.Rules {
		cfg.AboveThreshold.Rules = append(cfg.AboveThreshold.Rules, IncrementRule{IncrementPercent: rule.IncrementPercent})
	}
	return cfg
}

type ConfigResponse struct {
	ID               string          `json:"id"`
	BasePays         []BasePay       `json:"base_pays"`
	MonthlyThreshold decimal.Decimal `json:"monthly_threshold"`
	AboveThreshold   AboveThreshold  `json:"above_threshold"`
	BelowThreshold   BelowThreshold  `json:"below_threshold"`
	UpdatedAt        string          `json:"updated_at"`
}

type CreateClassRangeRequest struct {
	FromClass int    `json:"from_class" validate:"gte=0"`
	ToClass   int    `json:"to_class" validate:"gtefield=FromClass"`
	Label     string `json:"label" validate:"required"`
}

func (r *CreateClassRangeRequest) Validate() error {
	return validator.Struct(r)
}

type UpdateClassRangeRequest struct {
	ID        string  `json:"-"`
	FromClass *int    `json:"from_class,omitempty"`
	ToClass   *int    `json:"to_class,omitempty"`
	Label     *string `json:"label,omitempty"`
}

type ClassRangeResponse struct {
	ID        string `json:"id"`
	FromClass int    `json:"from_class"`
	ToClass   int    `json:"to_class"`
	Label     string `json:"label"`
}

// RecomputeRequest runs the pay rule engine on ad hoc inputs.
type RecomputeRequest struct {
	BasePay         decimal.Decimal `json:"base_pay" validate:"gte=0"`
	ClassUnits      decimal.Decimal `json:"class_units" validate:"gte=0"`
	AttendedClasses int             `json:"attended_classes" validate:"gte=0"`
	MissedClasses   int             `json:"missed_classes" validate:"gte=0"`
}

func (r *RecomputeRequest) Validate() error {
	return validator.Struct(r)
}

type RecomputeResponse struct {
	GrossSalary     decimal.Decimal `json:"gross_salary"`
	NetSalary       decimal.Decimal `json:"net_salary"`
	IncrementAmount decimal.Decimal `json:"increment_amount"`
	DeductionAmount decimal.Decimal `json:"deduction_amount"`
}
