package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/payroll"
	"github.com/google/uuid"
)

// SalaryDays are the days of the payroll month a salary is paid and falls due.
type SalaryDays struct {
	SalaryDay   int
	DueDay      int
	FinalDueDay int
}

var DefaultSalaryDays = SalaryDays{SalaryDay: 8, DueDay: 9, FinalDueDay: 10}

type SalaryServiceImpl struct {
	payrollRepo payroll.PayrollRepository
	salaryRepo  payroll.SalaryRepository
	auditLogger audit.Logger
	days        SalaryDays
	now         func() time.Time
}

func NewSalaryService(
	payrollRepo payroll.PayrollRepository,
	salaryRepo payroll.SalaryRepository,
	auditLogger audit.Logger,
	days SalaryDays,
) payroll.SalaryService {
	if days.SalaryDay < 1 || days.DueDay < 1 || days.FinalDueDay < 1 {
		days = DefaultSalaryDays
	}
	return &SalaryServiceImpl{
		payrollRepo: payrollRepo,
		salaryRepo:  salaryRepo,
		auditLogger: auditLogger,
		days:        days,
		now:         time.Now,
	}
}

// ========== GENERATION ==========

func (s *SalaryServiceImpl) GenerateSalary(ctx context.Context, p payroll.Payroll) (payroll.SalaryOutcome, error) {
	month := payroll.MonthStart(p.PayrollMonth)
	outcome := payroll.SalaryOutcome{PersonID: p.PersonID, PersonType: p.PersonType, PayrollID: p.ID}

	_, err := s.salaryRepo.GetByPersonMonth(ctx, p.PersonID, p.PersonType, month)
	if err == nil {
		outcome.Status = payroll.OutcomeSkipped
		outcome.Reason = "salary already exists"
		return outcome, nil
	}
	if !errors.Is(err, payroll.ErrSalaryNotFound) {
		return payroll.SalaryOutcome{}, fmt.Errorf("failed to check existing salary: %w", err)
	}

	// Amount is a snapshot; later payroll edits do not touch it
	created, err := s.salaryRepo.Create(ctx, payroll.Salary{
		PayrollID:    p.ID,
		PersonID:     p.PersonID,
		PersonType:   p.PersonType,
		PayrollMonth: month,
		Amount:       p.NetSalary,
		Status:       payroll.SalaryStatusPending,
		SalaryDate:   payroll.DayOfMonth(month, s.days.SalaryDay),
		DueDate:      payroll.DayOfMonth(month, s.days.DueDay),
		FinalDueDate: payroll.DayOfMonth(month, s.days.FinalDueDay),
	})
	if err != nil {
		if errors.Is(err, payroll.ErrSalaryAlreadyExists) {
			outcome.Status = payroll.OutcomeSkipped
			outcome.Reason = "salary already exists"
			return outcome, nil
		}
		return payroll.SalaryOutcome{}, fmt.Errorf("failed to create salary: %w", err)
	}

	s.auditLogger.Record(ctx, audit.Entry{
		Action:     audit.ActionCreate,
		EntityType: audit.EntitySalary,
		EntityID:   created.ID,
		PayrollID:  created.PayrollID,
		StaffID:    created.PersonID,
		StaffType:  string(created.PersonType),
		New:        created,
	})

	outcome.Status = payroll.OutcomeCreated
	outcome.Salary = &created
	return outcome, nil
}

func (s *SalaryServiceImpl) GenerateMonthlySalaries(ctx context.Context, req payroll.GenerateSalaryRequest) (payroll.BatchResult, error) {
	if err := req.Validate(); err != nil {
		return payroll.BatchResult{}, err
	}
	month := req.PayrollMonth()

	payrolls, err := s.payrollRepo.ListWithoutSalary(ctx, month)
	if err != nil {
		return payroll.BatchResult{}, fmt.Errorf("failed to list payrolls without salary: %w", err)
	}

	result := payroll.BatchResult{
		RunID:  uuid.NewString(),
		Month:  month.Format("2006-01"),
		Total:  len(payrolls),
		Failed: []payroll.FailedItem{},
	}
	for _, p := range payrolls {
		outcome, err := s.GenerateSalary(ctx, p)
		if err != nil {
			slog.Error("failed to generate salary", "run_id", result.RunID, "payroll_id", p.ID, "person_id", p.PersonID, "error", err)
			result.Failed = append(result.Failed, payroll.FailedItem{PersonID: p.PersonID, PersonType: p.PersonType, Error: err.Error()})
			continue
		}
		switch outcome.Status {
		case payroll.OutcomeCreated:
			result.Created++
		case payroll.OutcomeSkipped:
			result.Skipped++
		}
	}

	slog.Info("salary generation finished",
		"run_id", result.RunID, "month", result.Month, "created", result.Created, "skipped", result.Skipped, "failed", len(result.Failed))
	return result, nil
}

// ========== READ ==========

func (s *SalaryServiceImpl) GetSalary(ctx context.Context, id string) (payroll.SalaryResponse, error) {
	sal, err := s.salaryRepo.GetByID(ctx, id)
	if err != nil {
		return payroll.SalaryResponse{}, err
	}
	return payroll.ToSalaryResponse(sal), nil
}

func (s *SalaryServiceImpl) ListSalaries(ctx context.Context, filter payroll.SalaryFilter) (payroll.ListSalaryResponse, error) {
	filter.Normalize()

	rows, total, err := s.salaryRepo.List(ctx, filter)
	if err != nil {
		return payroll.ListSalaryResponse{}, err
	}

	data := make([]payroll.SalaryResponse, 0, len(rows))
	for _, sal := range rows {
		data = append(data, payroll.ToSalaryResponse(sal))
	}
	return payroll.ListSalaryResponse{
		Data:       data,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

// ========== MUTATIONS ==========

func (s *SalaryServiceImpl) MarkSalaryPaid(ctx context.Context, req payroll.PaySalaryRequest) (payroll.SalaryResponse, error) {
	paidDate, err := req.ParsePaidDate(s.now().UTC())
	if err != nil {
		return payroll.SalaryResponse{}, err
	}

	before, err := s.salaryRepo.GetByID(ctx, req.ID)
	if err != nil {
		return payroll.SalaryResponse{}, err
	}
	switch before.Status {
	case payroll.SalaryStatusPaid:
		return payroll.SalaryResponse{}, payroll.ErrSalaryAlreadyPaid
	case payroll.SalaryStatusCancelled:
		return payroll.SalaryResponse{}, payroll.ErrSalaryCancelled
	}

	updated := before
	updated.Status = payroll.SalaryStatusPaid
	updated.PaidDate = &paidDate

	return s.save(ctx, before, updated)
}

func (s *SalaryServiceImpl) AssignSalary(ctx context.Context, req payroll.AssignSalaryRequest) (payroll.SalaryResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.SalaryResponse{}, err
	}

	before, err := s.salaryRepo.GetByID(ctx, req.ID)
	if err != nil {
		return payroll.SalaryResponse{}, err
	}
	if before.Status == payroll.SalaryStatusCancelled {
		return payroll.SalaryResponse{}, payroll.ErrSalaryCancelled
	}

	updated := before
	updated.AssignedTo = &req.AssignedTo

	return s.save(ctx, before, updated)
}

func (s *SalaryServiceImpl) save(ctx context.Context, before, updated payroll.Salary) (payroll.SalaryResponse, error) {
	saved, err := s.salaryRepo.Update(ctx, updated)
	if err != nil {
		return payroll.SalaryResponse{}, fmt.Errorf("failed to update salary: %w", err)
	}

	s.auditLogger.Record(ctx, audit.Entry{
		Action:     audit.ActionUpdate,
		EntityType: audit.EntitySalary,
		EntityID:   saved.ID,
		PayrollID:  saved.PayrollID,
		StaffID:    saved.PersonID,
		StaffType:  string(saved.PersonType),
		Old:        before,
		New:        saved,
	})

	return payroll.ToSalaryResponse(saved), nil
}
