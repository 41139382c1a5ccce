package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/payrule"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/person"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/service/attendance"
	payrulesvc "github.com/cmlabs-hris/edu-payroll-backend-go/internal/service/payrule"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const reportWorkers = 4

type ReportServiceImpl struct {
	directory   person.Directory
	aggregator  *attendance.Aggregator
	performance payrule.TutorPerformance
	now         func() time.Time
}

func NewReportService(directory person.Directory, aggregator *attendance.Aggregator, performance payrule.TutorPerformance) report.Service {
	return &ReportServiceImpl{
		directory:   directory,
		aggregator:  aggregator,
		performance: performance,
		now:         time.Now,
	}
}

// TutorPaySummary generates the display-only tutor pay percent report
func (s *ReportServiceImpl) TutorPaySummary(ctx context.Context, req report.TutorPaySummaryRequest) (report.TutorPaySummary, error) {
	if err := req.Validate(); err != nil {
		return report.TutorPaySummary{}, err
	}
	start, end := req.Period()

	tutors, err := s.directory.ListActive(ctx, person.TypeTutor)
	if err != nil {
		return report.TutorPaySummary{}, fmt.Errorf("failed to list tutors: %w", err)
	}

	rows := make([]report.TutorPayRow, len(tutors))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(reportWorkers)

	for i, tutor := range tutors {
		g.Go(func() error {
			summary, err := s.aggregator.Aggregate(gCtx, tutor.ID, start, end)
			if err != nil {
				return err
			}
			rows[i] = report.TutorPayRow{
				PersonID:        tutor.ID,
				FullName:        tutor.FullName,
				TotalClasses:    summary.TotalSessions,
				OnTimeClasses:   summary.AttendedClasses,
				MissedClasses:   summary.MissedClasses,
				TotalClassUnits: summary.TotalClassUnits,
				PayPercent:      payrulesvc.TutorPayPercent(summary.AttendedClasses, summary.TotalSessions, summary.MissedClasses, s.performance),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report.TutorPaySummary{}, fmt.Errorf("failed to aggregate tutor attendance: %w", err)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].FullName < rows[j].FullName })

	average := decimal.Zero
	if len(rows) > 0 {
		total := decimal.Zero
		for _, r := range rows {
			total = total.Add(r.PayPercent)
		}
		average = total.Div(decimal.NewFromInt(int64(len(rows)))).Round(2)
	}

	return report.TutorPaySummary{
		Month:          start.Format("2006-01"),
		GeneratedAt:    s.now().Format(time.RFC3339),
		Threshold:      s.performance.Threshold,
		Tutors:         rows,
		AveragePercent: average,
	}, nil
}
