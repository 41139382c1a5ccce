package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/payrule"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/person"
	payrulesvc "github.com/cmlabs-hris/edu-payroll-backend-go/internal/service/payrule"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// generationRun is the immutable input shared by every person in one run.
type generationRun struct {
	id       string
	month    time.Time
	cfg      payrule.Config
	resolver *payrulesvc.BasePayResolver
}

func (s *PayrollServiceImpl) newRun(ctx context.Context, month time.Time) (generationRun, error) {
	cfg, err := s.configRepo.GetActive(ctx)
	if err != nil {
		return generationRun{}, fmt.Errorf("failed to load pay rule config: %w", err)
	}
	ranges, err := s.classRangeRepo.ListActive(ctx)
	if err != nil {
		return generationRun{}, fmt.Errorf("failed to load class ranges: %w", err)
	}

	cfg = cfg.Clone()
	return generationRun{
		id:       uuid.NewString(),
		month:    payroll.MonthStart(month),
		cfg:      cfg,
		resolver: payrulesvc.NewBasePayResolver(ranges, cfg),
	}, nil
}

func (s *PayrollServiceImpl) GeneratePayroll(ctx context.Context, personID string, personType person.Type, month time.Time) (payroll.GenerateOutcome, error) {
	who, err := s.directory.GetByID(ctx, personID, personType)
	if err != nil {
		return payroll.GenerateOutcome{}, err
	}

	run, err := s.newRun(ctx, month)
	if err != nil {
		return payroll.GenerateOutcome{}, err
	}
	return s.generateForPerson(ctx, run, who)
}

func (s *PayrollServiceImpl) GenerateMonthlyPayrolls(ctx context.Context, req payroll.GeneratePayrollRequest) (payroll.BatchResult, error) {
	if err := req.Validate(); err != nil {
		return payroll.BatchResult{}, err
	}

	run, err := s.newRun(ctx, req.PayrollMonth())
	if err != nil {
		return payroll.BatchResult{}, err
	}

	persons, err := s.eligiblePersons(ctx, req)
	if err != nil {
		return payroll.BatchResult{}, err
	}

	result := payroll.BatchResult{
		RunID:  run.id,
		Month:  run.month.Format("2006-01"),
		Total:  len(persons),
		Failed: []payroll.FailedItem{},
	}
	slog.Info("payroll generation started", "run_id", run.id, "month", result.Month, "persons", len(persons), "workers", s.workers)

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(s.workers)

	for _, p := range persons {
		g.Go(func() error {
			outcome, err := s.generateForPerson(ctx, run, p)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.Error("failed to generate payroll", "run_id", run.id, "person_id", p.ID, "person_type", p.Type, "error", err)
				result.Failed = append(result.Failed, payroll.FailedItem{PersonID: p.ID, PersonType: p.Type, Error: err.Error()})
				return nil
			}
			switch outcome.Status {
			case payroll.OutcomeCreated:
				result.Created++
			case payroll.OutcomeSkipped:
				result.Skipped++
			}
			return nil
		})
	}
	// Workers never return errors; failures are collected per person
	_ = g.Wait()

	sort.Slice(result.Failed, func(i, j int) bool { return result.Failed[i].PersonID < result.Failed[j].PersonID })
	slog.Info("payroll generation finished",
		"run_id", run.id, "created", result.Created, "skipped", result.Skipped, "failed", len(result.Failed))

	return result, nil
}

func (s *PayrollServiceImpl) eligiblePersons(ctx context.Context, req payroll.GeneratePayrollRequest) ([]person.Person, error) {
	var personType person.Type
	if req.PersonType != "" {
		t, err := person.ParseType(req.PersonType)
		if err != nil {
			return nil, err
		}
		personType = t
	}

	all, err := s.directory.ListActive(ctx, personType)
	if err != nil {
		return nil, fmt.Errorf("failed to list persons: %w", err)
	}
	if len(req.PersonIDs) == 0 {
		return all, nil
	}

	wanted := make(map[string]bool, len(req.PersonIDs))
	for _, id := range req.PersonIDs {
		wanted[id] = true
	}
	var persons []person.Person
	for _, p := range all {
		if wanted[p.ID] {
			persons = append(persons, p)
		}
	}
	return persons, nil
}

func skipped(p person.Person, reason string) payroll.GenerateOutcome {
	return payroll.GenerateOutcome{Status: payroll.OutcomeSkipped, PersonID: p.ID, PersonType: p.Type, Reason: reason}
}

func (s *PayrollServiceImpl) generateForPerson(ctx context.Context, run generationRun, p person.Person) (payroll.GenerateOutcome, error) {
	_, err := s.payrollRepo.GetByPersonMonth(ctx, p.ID, p.Type, run.month)
	if err == nil {
		return skipped(p, "payroll already exists"), nil
	}
	if !errors.Is(err, payroll.ErrPayrollNotFound) {
		return payroll.GenerateOutcome{}, fmt.Errorf("failed to check existing payroll: %w", err)
	}

	record, ok, err := s.computePayroll(ctx, run, p)
	if err != nil {
		return payroll.GenerateOutcome{}, err
	}
	if !ok {
		return skipped(p, "no base pay and no class units"), nil
	}

	var created payroll.Payroll
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		created, err = s.payrollRepo.Create(txCtx, record)
		return err
	})
	if err != nil {
		// A concurrent run won the unique key
		if errors.Is(err, payroll.ErrPayrollAlreadyExists) {
			return skipped(p, "payroll already exists"), nil
		}
		return payroll.GenerateOutcome{}, fmt.Errorf("failed to create payroll: %w", err)
	}

	s.auditLogger.Record(ctx, audit.Entry{
		Action:     audit.ActionCreate,
		EntityType: audit.EntityPayroll,
		EntityID:   created.ID,
		PayrollID:  created.ID,
		StaffID:    created.PersonID,
		StaffType:  string(created.PersonType),
		New:        created,
	})

	return payroll.GenerateOutcome{
		Status:     payroll.OutcomeCreated,
		PersonID:   p.ID,
		PersonType: p.Type,
		Payroll:    &created,
	}, nil
}

// computePayroll runs the read-only resolution steps. ok is false when the person
// has neither base pay nor class units for the month.
func (s *PayrollServiceImpl) computePayroll(ctx context.Context, run generationRun, p person.Person) (payroll.Payroll, bool, error) {
	start, end := payroll.MonthPeriod(run.month)
	summary, err := s.aggregator.Aggregate(ctx, p.ID, start, end)
	if err != nil {
		return payroll.Payroll{}, false, err
	}

	basePay := decimal.Zero
	if p.FixedMonthlySalary != nil {
		basePay = *p.FixedMonthlySalary
	} else {
		acc := run.resolver.Accumulate(summary.Sessions)
		if len(acc.Unresolved) > 0 {
			slog.Warn("class numbers without a base pay rate, counted as zero",
				"run_id", run.id, "person_id", p.ID, "class_numbers", acc.Unresolved)
		}
		basePay = acc.TotalBasePay
	}
	// The increment percent applies to the base pay as stored
	basePay = basePay.Round(payroll.MoneyPlaces)

	if basePay.IsZero() && summary.TotalClassUnits.IsZero() {
		return payroll.Payroll{}, false, nil
	}

	res := payrulesvc.Compute(basePay, summary.TotalClassUnits, summary.AttendedClasses, summary.MissedClasses, run.cfg)

	record := payroll.Payroll{
		PersonID:        p.ID,
		PersonType:      p.Type,
		PayrollMonth:    run.month,
		BaseSalary:      basePay,
		Earnings:        []payroll.LineItem{},
		Deductions:      []payroll.LineItem{},
		TotalClassUnits: summary.TotalClassUnits,
		AttendedClasses: summary.AttendedClasses,
		MissedClasses:   summary.MissedClasses,
	}
	if res.IncrementAmount.IsPositive() {
		record.Earnings = append(record.Earnings, payroll.LineItem{Label: payroll.LabelAttendanceBonus, Amount: res.IncrementAmount})
	}
	if res.DeductionAmount.IsPositive() {
		record.Deductions = append(record.Deductions, payroll.LineItem{Label: payroll.LabelMissedClassDeduction, Amount: res.DeductionAmount})
	}
	record.Recalculate()

	if record.NetSalary.IsNegative() {
		slog.Warn("payroll net salary is negative", "run_id", run.id, "person_id", p.ID, "net_salary", record.NetSalary.String())
	}

	return record, true, nil
}
