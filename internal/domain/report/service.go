package report

import "context"

type Service interface {
	// TutorPaySummary reports the display-only pay percent per tutor and their average.
	TutorPaySummary(ctx context.Context, req TutorPaySummaryRequest) (TutorPaySummary, error)
}
