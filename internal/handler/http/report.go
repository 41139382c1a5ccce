package http

import (
	"net/http"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/handler/http/response"
)

type ReportHandler interface {
	// Tutor pay percent summary (display only)
	GetTutorPaySummary(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.Service
}

func NewReportHandler(reportService report.Service) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

// GetTutorPaySummary handles GET /reports/tutor-pay?month=YYYY-MM
func (h *reportHandlerImpl) GetTutorPaySummary(w http.ResponseWriter, r *http.Request) {
	req := report.TutorPaySummaryRequest{
		Month: r.URL.Query().Get("month"),
	}

	result, err := h.reportService.TutorPaySummary(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
