package payroll

import "errors"

var (
	ErrPayrollNotFound      = errors.New("payroll not found")
	ErrPayrollAlreadyExists = errors.New("payroll already exists for this person and month")
	ErrSalaryNotFound       = errors.New("salary not found")
	ErrSalaryAlreadyExists  = errors.New("salary already exists for this person and month")
	ErrSalaryAlreadyPaid    = errors.New("salary already paid")
	ErrSalaryCancelled      = errors.New("salary is cancelled")
	ErrInvalidMonth         = errors.New("invalid payroll month")
)
