package cron

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/bill"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/payroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePayrollService struct {
	payroll.PayrollService
	requests []payroll.GeneratePayrollRequest
	result   payroll.BatchResult
}

func (f *fakePayrollService) GenerateMonthlyPayrolls(ctx context.Context, req payroll.GeneratePayrollRequest) (payroll.BatchResult, error) {
	f.requests = append(f.requests, req)
	return f.result, nil
}

type fakeSalaryService struct {
	payroll.SalaryService
	requests []payroll.GenerateSalaryRequest
	err      error
}

func (f *fakeSalaryService) GenerateMonthlySalaries(ctx context.Context, req payroll.GenerateSalaryRequest) (payroll.BatchResult, error) {
	f.requests = append(f.requests, req)
	return payroll.BatchResult{}, f.err
}

type fakeBillService struct {
	bill.Service
	calls []time.Time
	ids   []string
	err   error
}

func (f *fakeBillService) SweepBillStatuses(ctx context.Context, now time.Time) ([]string, error) {
	f.calls = append(f.calls, now)
	return f.ids, f.err
}

func at(year int, month time.Month, day int) func() time.Time {
	return func() time.Time { return time.Date(year, month, day, 3, 0, 0, 0, time.UTC) }
}

func TestPayrollJobs_GeneratesPreviousMonth(t *testing.T) {
	payrolls := &fakePayrollService{}
	salaries := &fakeSalaryService{}
	jobs := NewPayrollJobs(payrolls, salaries, PayrollJobsConfig{GenerationDay: 1, GenerationInterval: time.Hour, SalaryInterval: time.Hour})
	jobs.now = at(2024, time.January, 3)

	require.NoError(t, jobs.GenerateMonthlyPayrolls(context.Background()))
	require.NoError(t, jobs.GenerateMonthlySalaries(context.Background()))

	require.Len(t, payrolls.requests, 1)
	assert.Equal(t, "2023-12", payrolls.requests[0].Month)
	require.Len(t, salaries.requests, 1)
	assert.Equal(t, "2023-12", salaries.requests[0].Month)
}

func TestPayrollJobs_WaitsForGenerationDay(t *testing.T) {
	payrolls := &fakePayrollService{}
	salaries := &fakeSalaryService{}
	jobs := NewPayrollJobs(payrolls, salaries, PayrollJobsConfig{GenerationDay: 5, GenerationInterval: time.Hour, SalaryInterval: time.Hour})

	jobs.now = at(2024, time.May, 4)
	require.NoError(t, jobs.GenerateMonthlyPayrolls(context.Background()))
	require.NoError(t, jobs.GenerateMonthlySalaries(context.Background()))
	assert.Empty(t, payrolls.requests)
	assert.Empty(t, salaries.requests)

	jobs.now = at(2024, time.May, 5)
	require.NoError(t, jobs.GenerateMonthlyPayrolls(context.Background()))
	require.Len(t, payrolls.requests, 1)
	assert.Equal(t, "2024-04", payrolls.requests[0].Month)
}

func TestPayrollJobs_ReportsFailedPersons(t *testing.T) {
	payrolls := &fakePayrollService{result: payroll.BatchResult{
		RunID:   "run-1",
		Total:   3,
		Created: 2,
		Failed:  []payroll.FailedItem{{PersonID: "p-3", Error: "boom"}},
	}}
	jobs := NewPayrollJobs(payrolls, &fakeSalaryService{}, PayrollJobsConfig{GenerationInterval: time.Hour, SalaryInterval: time.Hour})
	jobs.now = at(2024, time.May, 10)

	err := jobs.GenerateMonthlyPayrolls(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3 persons failed")
}

func TestPayrollJobs_PropagatesServiceError(t *testing.T) {
	salaries := &fakeSalaryService{err: errors.New("db down")}
	jobs := NewPayrollJobs(&fakePayrollService{}, salaries, PayrollJobsConfig{GenerationInterval: time.Hour, SalaryInterval: time.Hour})
	jobs.now = at(2024, time.May, 10)

	err := jobs.GenerateMonthlySalaries(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "2024-04")
}

func TestBillJobs_SweepUsesClock(t *testing.T) {
	bills := &fakeBillService{ids: []string{"b-1"}, err: errors.New("b-2: conflict")}
	jobs := NewBillJobs(bills, time.Minute)
	jobs.now = at(2024, time.May, 9)

	err := jobs.SweepBillStatuses(context.Background())

	assert.EqualError(t, err, "b-2: conflict")
	require.Len(t, bills.calls, 1)
	assert.True(t, bills.calls[0].Equal(time.Date(2024, time.May, 9, 3, 0, 0, 0, time.UTC)))
}

func TestScheduler_RegisterAndRunJob(t *testing.T) {
	scheduler := NewScheduler()
	bills := &fakeBillService{}
	NewBillJobs(bills, time.Minute).RegisterJobs(scheduler)
	NewPayrollJobs(&fakePayrollService{}, &fakeSalaryService{}, PayrollJobsConfig{GenerationInterval: time.Hour, SalaryInterval: time.Hour}).RegisterJobs(scheduler)

	assert.Equal(t, []string{JobSweepBillStatuses, JobGenerateMonthlyPayrolls, JobGenerateMonthlySalaries}, scheduler.JobNames())

	require.NoError(t, scheduler.RunJob(context.Background(), JobSweepBillStatuses))
	assert.Len(t, bills.calls, 1)

	err := scheduler.RunJob(context.Background(), "unknown")
	assert.Error(t, err)
}

func TestScheduler_RunsOfOneJobNeverOverlap(t *testing.T) {
	scheduler := NewScheduler()
	var (
		active  int32
		overlap int32
	)
	scheduler.AddJob("slow", time.Hour, func(ctx context.Context) error {
		if atomic.AddInt32(&active, 1) > 1 {
			atomic.StoreInt32(&overlap, 1)
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&active, -1)
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = scheduler.RunJob(context.Background(), "slow")
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(0), atomic.LoadInt32(&overlap))
}

func TestScheduler_StartStop(t *testing.T) {
	scheduler := NewScheduler()
	ran := make(chan struct{}, 1)
	scheduler.AddJob("tick", time.Hour, func(ctx context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})

	scheduler.Start()

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("job did not run on start")
	}
	scheduler.Stop()
}
