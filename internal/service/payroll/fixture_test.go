package payroll

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/payrule"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/person"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/repository/inmem"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/service/attendance"
	auditsvc "github.com/cmlabs-hris/edu-payroll-backend-go/internal/service/audit"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	tutorFullMonth = "0190a1b2-0000-7000-8000-000000000001"
	tutorMissed    = "0190a1b2-0000-7000-8000-000000000002"
	tutorIdle      = "0190a1b2-0000-7000-8000-000000000003"
	staffFixed     = "0190a1b2-0000-7000-8000-000000000004"
	counselorGone  = "0190a1b2-0000-7000-8000-000000000005"

	upperRange = "0190a1b2-0000-7000-8000-0000000000f1"
)

var may = time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)

type fixture struct {
	db       *inmem.DB
	payrolls payroll.PayrollService
	salaries payroll.SalaryService
}

// fixtureDeps are the collaborators a test may swap before the services are built.
type fixtureDeps struct {
	schedules   schedule.ScheduleReader
	payrollRepo payroll.PayrollRepository
	noConfig    bool
}

type fixtureOption func(db *inmem.DB, d *fixtureDeps)

func withoutConfig() fixtureOption {
	return func(_ *inmem.DB, d *fixtureDeps) { d.noConfig = true }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	ctx := context.Background()
	db := inmem.NewDB()

	seedPersons(db)
	seedSchedules(db)

	deps := &fixtureDeps{
		schedules:   inmem.NewScheduleReader(db),
		payrollRepo: inmem.NewPayrollRepository(db),
	}
	for _, opt := range opts {
		opt(db, deps)
	}

	classRangeRepo := inmem.NewClassRangeRepository(db)
	configRepo := inmem.NewPayRuleConfigRepository(db)

	// Classes 5-7 pay 500 per unit
	_, err := classRangeRepo.Create(ctx, payrule.ClassRange{ID: upperRange, FromClass: 5, ToClass: 7, Label: "Upper"})
	require.NoError(t, err)
	if !deps.noConfig {
		seedConfig(t, configRepo)
	}
	return newServices(db, deps, classRangeRepo, configRepo)
}

func seedConfig(t *testing.T, configRepo payrule.ConfigRepository) {
	t.Helper()
	_, err := configRepo.Upsert(context.Background(), payrule.Config{
		BasePays:         []payrule.BasePay{{ClassRangeID: upperRange, BasePay: decimal.NewFromInt(500)}},
		MonthlyThreshold: decimal.NewFromInt(10),
		AboveThreshold: payrule.AboveThreshold{
			Rules:     []payrule.IncrementRule{{IncrementPercent: decimal.NewFromInt(10)}},
			Decrement: decimal.NewFromInt(30),
		},
		BelowThreshold: payrule.BelowThreshold{
			Increment: decimal.NewFromInt(25),
			Decrement: decimal.NewFromInt(50),
		},
	})
	require.NoError(t, err)
}

func newServices(db *inmem.DB, deps *fixtureDeps, classRangeRepo payrule.ClassRangeRepository, configRepo payrule.ConfigRepository) *fixture {
	salaryRepo := inmem.NewSalaryRepository(db)
	auditLogger := auditsvc.NewPayrollAuditLogger(inmem.NewAuditRepository(db))
	directory := inmem.NewPersonDirectory(db)
	aggregator := attendance.NewAggregator(deps.schedules, inmem.NewAttendanceReader(db))

	return &fixture{
		db: db,
		payrolls: NewPayrollService(
			inmem.NewTransactor(db),
			deps.payrollRepo,
			salaryRepo,
			configRepo,
			classRangeRepo,
			directory,
			aggregator,
			auditLogger,
			DefaultWorkers,
		),
		salaries: NewSalaryService(deps.payrollRepo, salaryRepo, auditLogger, DefaultSalaryDays),
	}
}

func seedPersons(db *inmem.DB) {
	fixed := decimal.NewFromInt(3000)
	db.AddPerson(person.Person{ID: tutorFullMonth, Type: person.TypeTutor, FullName: "Ayu Lestari", IsActive: true})
	db.AddPerson(person.Person{ID: tutorMissed, Type: person.TypeTutor, FullName: "Budi Santoso", IsActive: true})
	db.AddPerson(person.Person{ID: tutorIdle, Type: person.TypeTutor, FullName: "Citra Dewi", IsActive: true})
	db.AddPerson(person.Person{ID: staffFixed, Type: person.TypeStaff, FullName: "Dimas Pratama", IsActive: true, FixedMonthlySalary: &fixed})
	db.AddPerson(person.Person{ID: counselorGone, Type: person.TypeCounselor, FullName: "Eka Putri", IsActive: false})
}

// seedSchedules gives tutorFullMonth ten confirmed one-hour sessions and tutorMissed
// two sessions with one confirmed.
func seedSchedules(db *inmem.DB) {
	add := func(id, personID string, day int, confirmed bool) {
		start := may.AddDate(0, 0, day).Add(9 * time.Hour)
		db.AddSchedule(schedule.Schedule{
			ID:          id,
			PersonID:    personID,
			ClassID:     "class-6a",
			ClassNumber: 6,
			Duration:    60,
			Start:       start,
			End:         start.Add(time.Hour),
			Status:      schedule.StatusCompleted,
		})
		db.AddAttendance(schedule.AttendanceRecord{ID: "att-" + id, ScheduleID: id, PersonID: personID, Confirmed: confirmed})
	}
	for i := 0; i < 10; i++ {
		add("full-"+string(rune('a'+i)), tutorFullMonth, i, true)
	}
	add("missed-a", tutorMissed, 2, true)
	add("missed-b", tutorMissed, 3, false)
}

func generateMay(t *testing.T, f *fixture) payroll.BatchResult {
	t.Helper()
	result, err := f.payrolls.GenerateMonthlyPayrolls(context.Background(), payroll.GeneratePayrollRequest{Month: "2024-05"})
	require.NoError(t, err)
	return result
}

func activeRows(f *fixture) map[string]payroll.Payroll {
	rows := make(map[string]payroll.Payroll)
	for _, p := range f.db.PayrollRows() {
		if !p.IsDeleted {
			rows[p.PersonID] = p
		}
	}
	return rows
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}
