package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/handler/http/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterConfig struct {
	Env            string
	AllowedOrigins []string
	// JWTAuth verifies bearer tokens when set. Requests without a token are still
	// served and audited as "system"; requests with a bad token get 401.
	JWTAuth *jwtauth.JWTAuth
}

type Handlers struct {
	Payroll PayrollHandler
	Salary  SalaryHandler
	PayRule PayRuleHandler
	Bill    BillHandler
	Report  ReportHandler
}

func NewRouter(cfg RouterConfig, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "edu-payroll"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.Env),
	)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.JWTAuth != nil {
			r.Use(jwtauth.Verifier(cfg.JWTAuth))
			r.Use(middleware.RejectInvalidToken)
		}

		r.Route("/payrolls", func(r chi.Router) {
			r.Post("/generate", h.Payroll.GeneratePayrolls)
			r.Get("/", h.Payroll.ListPayrolls)
			r.Get("/summary", h.Payroll.GetPayrollSummary)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Payroll.GetPayroll)
				r.Put("/", h.Payroll.UpdatePayroll)
				r.Delete("/", h.Payroll.DeletePayroll)
				r.Get("/payslip", h.Payroll.GetPayslip)
				r.Get("/audits", h.Payroll.ListAudits)
			})
		})

		r.Route("/salaries", func(r chi.Router) {
			r.Post("/generate", h.Salary.GenerateSalaries)
			r.Get("/", h.Salary.ListSalaries)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Salary.GetSalary)
				r.Post("/pay", h.Salary.MarkSalaryPaid)
				r.Put("/assign", h.Salary.AssignSalary)
			})
		})

		r.Route("/pay-rules", func(r chi.Router) {
			r.Get("/", h.PayRule.GetConfig)
			r.Put("/", h.PayRule.UpdateConfig)
			r.Post("/recompute", h.PayRule.Recompute)
		})

		r.Route("/class-ranges", func(r chi.Router) {
			r.Get("/", h.PayRule.ListClassRanges)
			r.Post("/", h.PayRule.CreateClassRange)
			r.Put("/{id}", h.PayRule.UpdateClassRange)
			r.Delete("/{id}", h.PayRule.DeleteClassRange)
		})

		r.Route("/bills", func(r chi.Router) {
			r.Post("/sweep", h.Bill.SweepStatuses)
			r.Get("/{id}", h.Bill.GetBill)
			r.Post("/{id}/pay", h.Bill.MarkBillPaid)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/tutor-pay", h.Report.GetTutorPaySummary)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})
	return r
}
