package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/payroll"
)

const (
	JobGenerateMonthlyPayrolls = "generate_monthly_payrolls"
	JobGenerateMonthlySalaries = "generate_monthly_salaries"
)

type PayrollJobsConfig struct {
	// GenerationDay is the earliest day of the month on which the previous month is generated.
	GenerationDay      int
	GenerationInterval time.Duration
	SalaryInterval     time.Duration
}

// PayrollJobs generates last month's payrolls and salaries. Generation is idempotent, so
// every tick after GenerationDay only picks up persons that were missed or failed before.
type PayrollJobs struct {
	payrollService payroll.PayrollService
	salaryService  payroll.SalaryService
	cfg            PayrollJobsConfig
	now            func() time.Time
}

func NewPayrollJobs(payrollService payroll.PayrollService, salaryService payroll.SalaryService, cfg PayrollJobsConfig) *PayrollJobs {
	if cfg.GenerationDay < 1 {
		cfg.GenerationDay = 1
	}
	return &PayrollJobs{
		payrollService: payrollService,
		salaryService:  salaryService,
		cfg:            cfg,
		now:            time.Now,
	}
}

func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob(JobGenerateMonthlyPayrolls, j.cfg.GenerationInterval, j.GenerateMonthlyPayrolls)
	scheduler.AddJob(JobGenerateMonthlySalaries, j.cfg.SalaryInterval, j.GenerateMonthlySalaries)
}

// targetMonth returns the month to generate, or false before GenerationDay.
func (j *PayrollJobs) targetMonth() (time.Time, bool) {
	now := j.now().UTC()
	if now.Day() < j.cfg.GenerationDay {
		return time.Time{}, false
	}
	return payroll.MonthStart(now).AddDate(0, -1, 0), true
}

func (j *PayrollJobs) GenerateMonthlyPayrolls(ctx context.Context) error {
	month, ok := j.targetMonth()
	if !ok {
		return nil
	}

	result, err := j.payrollService.GenerateMonthlyPayrolls(ctx, payroll.GeneratePayrollRequest{
		Month: month.Format("2006-01"),
	})
	if err != nil {
		return fmt.Errorf("generate payrolls for %s: %w", month.Format("2006-01"), err)
	}
	return batchError("payroll", result)
}

func (j *PayrollJobs) GenerateMonthlySalaries(ctx context.Context) error {
	month, ok := j.targetMonth()
	if !ok {
		return nil
	}

	result, err := j.salaryService.GenerateMonthlySalaries(ctx, payroll.GenerateSalaryRequest{
		Month: month.Format("2006-01"),
	})
	if err != nil {
		return fmt.Errorf("generate salaries for %s: %w", month.Format("2006-01"), err)
	}
	return batchError("salary", result)
}

func batchError(kind string, result payroll.BatchResult) error {
	slog.Info("Cron: batch finished",
		"kind", kind,
		"run_id", result.RunID,
		"month", result.Month,
		"total", result.Total,
		"created", result.Created,
		"skipped", result.Skipped,
		"failed", len(result.Failed),
	)
	if len(result.Failed) > 0 {
		return fmt.Errorf("%s run %s: %d of %d persons failed", kind, result.RunID, len(result.Failed), result.Total)
	}
	return nil
}
