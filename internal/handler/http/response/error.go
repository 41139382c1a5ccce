package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/bill"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/payrule"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/person"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Payroll domain errors
	case errors.Is(err, payroll.ErrPayrollNotFound):
		NotFound(w, "Payroll not found")
	case errors.Is(err, payroll.ErrPayrollAlreadyExists):
		Conflict(w, "Payroll already exists for this person and month")
	case errors.Is(err, payroll.ErrSalaryNotFound):
		NotFound(w, "Salary not found")
	case errors.Is(err, payroll.ErrSalaryAlreadyExists):
		Conflict(w, "Salary already exists for this person and month")
	case errors.Is(err, payroll.ErrSalaryAlreadyPaid):
		Conflict(w, "Salary already paid")
	case errors.Is(err, payroll.ErrSalaryCancelled):
		Conflict(w, "Salary is cancelled")
	case errors.Is(err, payroll.ErrInvalidMonth):
		BadRequest(w, "Invalid payroll month", nil)

	// Pay rule domain errors
	case errors.Is(err, payrule.ErrPayRuleConfigNotFound):
		NotFound(w, "Pay rule configuration not found")
	case errors.Is(err, payrule.ErrClassRangeNotFound):
		NotFound(w, "Class range not found")
	case errors.Is(err, payrule.ErrInvalidClassRange):
		BadRequest(w, "Class range bounds are invalid", nil)
	case errors.Is(err, payrule.ErrUnknownClassRange):
		BadRequest(w, err.Error(), nil)

	// Person and schedule errors
	case errors.Is(err, person.ErrPersonNotFound):
		NotFound(w, "Person not found")
	case errors.Is(err, person.ErrInvalidPersonType):
		BadRequest(w, "Invalid person type", nil)
	case errors.Is(err, schedule.ErrInvalidPeriod):
		BadRequest(w, "Invalid period", nil)

	// Bill domain errors
	case errors.Is(err, bill.ErrBillNotFound):
		NotFound(w, "Bill not found")
	case errors.Is(err, bill.ErrBillAlreadyPaid):
		Conflict(w, "Bill already paid")

	case errors.Is(err, audit.ErrInvalidAction):
		BadRequest(w, "Invalid audit action", nil)

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
