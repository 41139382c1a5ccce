package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/config"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/payrule"
	appHTTP "github.com/cmlabs-hris/edu-payroll-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/edu-payroll-backend-go/internal/service/attendance"
	auditService "github.com/cmlabs-hris/edu-payroll-backend-go/internal/service/audit"
	billService "github.com/cmlabs-hris/edu-payroll-backend-go/internal/service/bill"
	payrollService "github.com/cmlabs-hris/edu-payroll-backend-go/internal/service/payroll"
	payRuleService "github.com/cmlabs-hris/edu-payroll-backend-go/internal/service/payrule"
	reportService "github.com/cmlabs-hris/edu-payroll-backend-go/internal/service/report"
	"github.com/go-chi/jwtauth/v5"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.App.LogLevel),
	})))

	db, err := database.NewPostgreSQLDBWithOptions(cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
	})
	if err != nil {
		slog.Error("Error connecting to payroll database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	scheduleDB, err := database.NewPostgreSQLDBWithOptions(cfg.ScheduleDatabaseURL(), database.PoolOptions{
		MaxConns: cfg.ScheduleDatabase.MaxConns,
	})
	if err != nil {
		slog.Error("Error connecting to schedule database", "error", err)
		os.Exit(1)
	}
	defer scheduleDB.Close()

	// Payroll store
	payrollRepo := postgresql.NewPayrollRepository(db)
	salaryRepo := postgresql.NewSalaryRepository(db)
	configRepo := postgresql.NewPayRuleConfigRepository(db)
	classRangeRepo := postgresql.NewClassRangeRepository(db)
	auditRepo := postgresql.NewAuditRepository(db)
	billRepo := postgresql.NewBillRepository(db)
	directory := postgresql.NewPersonDirectory(db)

	// Schedule store, read only
	scheduleReader := postgresql.NewScheduleReader(scheduleDB)
	attendanceReader := postgresql.NewAttendanceReader(scheduleDB)

	aggregator := attendanceService.NewAggregator(scheduleReader, attendanceReader)
	auditLogger := auditService.NewPayrollAuditLogger(auditRepo)
	payRuleSvc := payRuleService.NewPayRuleService(configRepo, classRangeRepo)
	payrollSvc := payrollService.NewPayrollService(
		postgresql.NewTransactor(db),
		payrollRepo,
		salaryRepo,
		configRepo,
		classRangeRepo,
		directory,
		aggregator,
		auditLogger,
		cfg.Payroll.Workers,
	)
	salarySvc := payrollService.NewSalaryService(payrollRepo, salaryRepo, auditLogger, payrollService.SalaryDays{
		SalaryDay:   cfg.Payroll.SalaryDay,
		DueDay:      cfg.Payroll.DueDay,
		FinalDueDay: cfg.Payroll.FinalDueDay,
	})
	billSvc := billService.NewBillService(billRepo)
	reportSvc := reportService.NewReportService(directory, aggregator, payrule.TutorPerformance{
		Threshold:          cfg.TutorPerformance.Threshold,
		IncrementPercent:   cfg.TutorPerformance.IncrementPercent,
		DecrementPerMissed: cfg.TutorPerformance.DecrementPerMissed,
	})

	scheduler := cron.NewScheduler()
	cron.NewPayrollJobs(payrollSvc, salarySvc, cron.PayrollJobsConfig{
		GenerationDay:      cfg.Payroll.GenerationDay,
		GenerationInterval: cfg.Payroll.GenerationInterval,
		SalaryInterval:     cfg.Payroll.SalaryInterval,
	}).RegisterJobs(scheduler)
	cron.NewBillJobs(billSvc, cfg.Payroll.BillSweepInterval).RegisterJobs(scheduler)
	if cfg.Payroll.CronEnabled {
		scheduler.Start()
	}

	var jwtAuth *jwtauth.JWTAuth
	if cfg.JWT.Secret != "" {
		jwtAuth = jwtauth.New("HS256", []byte(cfg.JWT.Secret), nil)
	}

	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		Env:            cfg.App.Env,
		AllowedOrigins: cfg.App.AllowedOrigins,
		JWTAuth:        jwtAuth,
	}, appHTTP.Handlers{
		Payroll: appHTTP.NewPayrollHandler(payrollSvc, auditLogger),
		Salary:  appHTTP.NewSalaryHandler(salarySvc),
		PayRule: appHTTP.NewPayRuleHandler(payRuleSvc),
		Bill:    appHTTP.NewBillHandler(billSvc),
		Report:  appHTTP.NewReportHandler(reportSvc),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}
	if cfg.Payroll.CronEnabled {
		scheduler.Stop()
	}
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
