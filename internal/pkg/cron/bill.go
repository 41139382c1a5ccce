package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/bill"
)

const JobSweepBillStatuses = "sweep_bill_statuses"

type BillJobs struct {
	billService bill.Service
	interval    time.Duration
	now         func() time.Time
}

func NewBillJobs(billService bill.Service, interval time.Duration) *BillJobs {
	return &BillJobs{
		billService: billService,
		interval:    interval,
		now:         time.Now,
	}
}

func (j *BillJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob(JobSweepBillStatuses, j.interval, j.SweepBillStatuses)
}

// SweepBillStatuses moves Generated bills to OnDue and OnDue bills to Overdue.
func (j *BillJobs) SweepBillStatuses(ctx context.Context) error {
	ids, err := j.billService.SweepBillStatuses(ctx, j.now())
	if len(ids) > 0 {
		slog.Info("Cron: bill statuses advanced", "count", len(ids))
	}
	return err
}
