package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/payrule"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/person"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/service/attendance"
	"github.com/shopspring/decimal"
)

const DefaultWorkers = 4

type PayrollServiceImpl struct {
	tx             database.Transactor
	payrollRepo    payroll.PayrollRepository
	salaryRepo     payroll.SalaryRepository
	configRepo     payrule.ConfigRepository
	classRangeRepo payrule.ClassRangeRepository
	directory      person.Directory
	aggregator     *attendance.Aggregator
	auditLogger    audit.Logger
	workers        int
}

func NewPayrollService(
	tx database.Transactor,
	payrollRepo payroll.PayrollRepository,
	salaryRepo payroll.SalaryRepository,
	configRepo payrule.ConfigRepository,
	classRangeRepo payrule.ClassRangeRepository,
	directory person.Directory,
	aggregator *attendance.Aggregator,
	auditLogger audit.Logger,
	workers int,
) payroll.PayrollService {
	if workers < 1 {
		workers = DefaultWorkers
	}
	return &PayrollServiceImpl{
		tx:             tx,
		payrollRepo:    payrollRepo,
		salaryRepo:     salaryRepo,
		configRepo:     configRepo,
		classRangeRepo: classRangeRepo,
		directory:      directory,
		aggregator:     aggregator,
		auditLogger:    auditLogger,
		workers:        workers,
	}
}

// ========== READ ==========

func (s *PayrollServiceImpl) GetPayroll(ctx context.Context, id string) (payroll.PayrollResponse, error) {
	p, err := s.payrollRepo.GetByID(ctx, id)
	if err != nil {
		return payroll.PayrollResponse{}, err
	}
	return payroll.ToPayrollResponse(p), nil
}

func (s *PayrollServiceImpl) ListPayrolls(ctx context.Context, filter payroll.PayrollFilter) (payroll.ListPayrollResponse, error) {
	filter.Normalize()

	rows, total, err := s.payrollRepo.List(ctx, filter)
	if err != nil {
		return payroll.ListPayrollResponse{}, err
	}

	data := make([]payroll.PayrollResponse, 0, len(rows))
	for _, p := range rows {
		data = append(data, payroll.ToPayrollResponse(p))
	}
	return payroll.ListPayrollResponse{
		Data:       data,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

// ========== MUTATIONS ==========

func (s *PayrollServiceImpl) UpdatePayroll(ctx context.Context, req payroll.UpdatePayrollRequest) (payroll.PayrollResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollResponse{}, err
	}

	before, err := s.payrollRepo.GetByID(ctx, req.ID)
	if err != nil {
		return payroll.PayrollResponse{}, err
	}

	updated := before
	if req.BaseSalary != nil {
		updated.BaseSalary = *req.BaseSalary
	}
	if req.Earnings != nil {
		updated.Earnings = payroll.ToLineItems(*req.Earnings)
	}
	if req.Deductions != nil {
		updated.Deductions = payroll.ToLineItems(*req.Deductions)
	}
	if req.Notes != nil {
		updated.Notes = req.Notes
	}
	updated.Recalculate()

	var saved payroll.Payroll
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		saved, err = s.payrollRepo.Update(txCtx, updated)
		return err
	})
	if err != nil {
		return payroll.PayrollResponse{}, fmt.Errorf("failed to update payroll: %w", err)
	}

	s.auditLogger.Record(ctx, audit.Entry{
		Action:     audit.ActionUpdate,
		EntityType: audit.EntityPayroll,
		EntityID:   saved.ID,
		PayrollID:  saved.ID,
		StaffID:    saved.PersonID,
		StaffType:  string(saved.PersonType),
		Old:        before,
		New:        saved,
	})

	return payroll.ToPayrollResponse(saved), nil
}

func (s *PayrollServiceImpl) DeletePayroll(ctx context.Context, id string) error {
	current, err := s.payrollRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.payrollRepo.SoftDelete(ctx, id); err != nil {
		return err
	}

	s.auditLogger.Record(ctx, audit.Entry{
		Action:     audit.ActionDelete,
		EntityType: audit.EntityPayroll,
		EntityID:   current.ID,
		PayrollID:  current.ID,
		StaffID:    current.PersonID,
		StaffType:  string(current.PersonType),
		Old:        current,
	})
	return nil
}

// ========== PAYSLIP & SUMMARY ==========

func (s *PayrollServiceImpl) GetPayslip(ctx context.Context, id string) (payroll.Payslip, error) {
	p, err := s.payrollRepo.GetByID(ctx, id)
	if err != nil {
		return payroll.Payslip{}, err
	}

	name := p.PersonID
	if p.PersonName != nil {
		name = *p.PersonName
	} else if who, err := s.directory.GetByID(ctx, p.PersonID, p.PersonType); err == nil {
		name = who.FullName
	} else if !errors.Is(err, person.ErrPersonNotFound) {
		return payroll.Payslip{}, fmt.Errorf("failed to look up person: %w", err)
	}

	resp := payroll.ToPayrollResponse(p)
	slip := payroll.Payslip{
		PayrollID:       p.ID,
		EmployeeName:    name,
		PersonID:        p.PersonID,
		PersonType:      string(p.PersonType),
		PayPeriod:       p.PayrollMonth.Format("January 2006"),
		BaseSalary:      p.BaseSalary,
		Earnings:        resp.Earnings,
		TotalEarnings:   p.TotalEarnings,
		GrossSalary:     p.GrossSalary,
		Deductions:      resp.Deductions,
		TotalDeductions: p.TotalDeductions,
		NetPay:          p.NetSalary,
		ClassUnits:      p.TotalClassUnits,
		AttendedClasses: p.AttendedClasses,
		MissedClasses:   p.MissedClasses,
	}

	sal, err := s.salaryRepo.GetByPersonMonth(ctx, p.PersonID, p.PersonType, p.PayrollMonth)
	switch {
	case err == nil:
		status := string(sal.Status)
		salaryDate := sal.SalaryDate.Format("2006-01-02")
		slip.SalaryStatus = &status
		slip.SalaryDate = &salaryDate
		if sal.PaidDate != nil {
			paid := sal.PaidDate.Format("2006-01-02")
			slip.PaidDate = &paid
		}
	case !errors.Is(err, payroll.ErrSalaryNotFound):
		return payroll.Payslip{}, fmt.Errorf("failed to look up salary: %w", err)
	}

	return slip, nil
}

func (s *PayrollServiceImpl) GetPayrollSummary(ctx context.Context, month time.Time) (payroll.PayrollSummaryResponse, error) {
	month = payroll.MonthStart(month)
	summary := payroll.PayrollSummaryResponse{
		Month:            month.Format("2006-01"),
		TotalBaseSalary:  decimal.Zero,
		TotalEarnings:    decimal.Zero,
		TotalDeductions:  decimal.Zero,
		TotalGrossSalary: decimal.Zero,
		TotalNetSalary:   decimal.Zero,
	}

	payrolls, err := s.listAllPayrolls(ctx, month)
	if err != nil {
		return payroll.PayrollSummaryResponse{}, err
	}
	for _, p := range payrolls {
		summary.TotalPersons++
		switch p.PersonType {
		case person.TypeStaff:
			summary.StaffCount++
		case person.TypeCounselor:
			summary.CounselorCount++
		case person.TypeTutor:
			summary.TutorCount++
		}
		summary.TotalBaseSalary = summary.TotalBaseSalary.Add(p.BaseSalary)
		summary.TotalEarnings = summary.TotalEarnings.Add(p.TotalEarnings)
		summary.TotalDeductions = summary.TotalDeductions.Add(p.TotalDeductions)
		summary.TotalGrossSalary = summary.TotalGrossSalary.Add(p.GrossSalary)
		summary.TotalNetSalary = summary.TotalNetSalary.Add(p.NetSalary)
		if p.NetSalary.IsNegative() {
			summary.NegativeNetSalaryIDs = append(summary.NegativeNetSalaryIDs, p.ID)
		}
	}

	filter := payroll.SalaryFilter{Month: &month, Page: 1, Limit: 100}
	for {
		rows, total, err := s.salaryRepo.List(ctx, filter)
		if err != nil {
			return payroll.PayrollSummaryResponse{}, fmt.Errorf("failed to list salaries: %w", err)
		}
		for _, sal := range rows {
			summary.SalariesGenerated++
			if sal.Status == payroll.SalaryStatusPaid {
				summary.SalariesPaid++
			}
		}
		if len(rows) == 0 || int64(filter.Page*filter.Limit) >= total {
			break
		}
		filter.Page++
	}

	return summary, nil
}

func (s *PayrollServiceImpl) listAllPayrolls(ctx context.Context, month time.Time) ([]payroll.Payroll, error) {
	filter := payroll.PayrollFilter{Month: &month, Page: 1, Limit: 100}
	var all []payroll.Payroll
	for {
		rows, total, err := s.payrollRepo.List(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to list payrolls: %w", err)
		}
		all = append(all, rows...)
		if len(rows) == 0 || int64(len(all)) >= total {
			return all, nil
		}
		filter.Page++
	}
}
