package payroll

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/payrule"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/person"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/repository/inmem"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingScheduleReader fails for one person and delegates for everyone else.
type failingScheduleReader struct {
	schedule.ScheduleReader
	personID string
}

func (r failingScheduleReader) ListCompletedByPerson(ctx context.Context, personID string, start, end time.Time) ([]schedule.Schedule, error) {
	if personID == r.personID {
		return nil, errors.New("schedule store unavailable")
	}
	return r.ScheduleReader.ListCompletedByPerson(ctx, personID, start, end)
}

// staleLookupRepository never sees existing payrolls, as a run racing another would.
type staleLookupRepository struct {
	payroll.PayrollRepository
}

func (staleLookupRepository) GetByPersonMonth(ctx context.Context, personID string, personType person.Type, month time.Time) (payroll.Payroll, error) {
	return payroll.Payroll{}, payroll.ErrPayrollNotFound
}

func TestGenerateMonthlyPayrolls_Batch(t *testing.T) {
	f := newFixture(t)

	result := generateMay(t, f)

	assert.Equal(t, "2024-05", result.Month)
	assert.NotEmpty(t, result.RunID)
	// Inactive counselor is not eligible
	assert.Equal(t, 4, result.Total)
	assert.Equal(t, 3, result.Created)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, result.Failed)

	rows := activeRows(f)
	require.Len(t, rows, 3)
	assert.NotContains(t, rows, tutorIdle)
	assert.NotContains(t, rows, counselorGone)

	full := rows[tutorFullMonth]
	assertDecimal(t, "5000", full.BaseSalary)
	assertDecimal(t, "10", full.TotalClassUnits)
	assert.Equal(t, 10, full.AttendedClasses)
	assert.Equal(t, 0, full.MissedClasses)
	require.Len(t, full.Earnings, 1)
	assert.Equal(t, payroll.LabelAttendanceBonus, full.Earnings[0].Label)
	assertDecimal(t, "500", full.Earnings[0].Amount)
	assert.Empty(t, full.Deductions)
	assertDecimal(t, "5500", full.NetSalary)

	missed := rows[tutorMissed]
	assertDecimal(t, "1000", missed.BaseSalary)
	assert.Empty(t, missed.Earnings)
	require.Len(t, missed.Deductions, 1)
	assert.Equal(t, payroll.LabelMissedClassDeduction, missed.Deductions[0].Label)
	assertDecimal(t, "50", missed.Deductions[0].Amount)
	assertDecimal(t, "950", missed.NetSalary)

	staff := rows[staffFixed]
	assertDecimal(t, "3000", staff.BaseSalary)
	assertDecimal(t, "3000", staff.NetSalary)

	for _, p := range rows {
		assert.True(t, p.PayrollMonth.Equal(may), p.PayrollMonth.String())
		assert.True(t, p.GrossSalary.Equal(p.BaseSalary.Add(p.TotalEarnings)), "gross for %s", p.PersonID)
		assert.True(t, p.NetSalary.Equal(p.GrossSalary.Sub(p.TotalDeductions)), "net for %s", p.PersonID)
		assert.True(t, p.TotalEarnings.Equal(payroll.SumItems(p.Earnings)))
		assert.True(t, p.TotalDeductions.Equal(payroll.SumItems(p.Deductions)))
	}
}

func TestGenerateMonthlyPayrolls_Idempotent(t *testing.T) {
	f := newFixture(t)
	generateMay(t, f)

	result := generateMay(t, f)

	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 4, result.Skipped)
	assert.Empty(t, result.Failed)
	assert.Len(t, f.db.PayrollRows(), 3)
}

func TestGenerateMonthlyPayrolls_FilterByType(t *testing.T) {
	f := newFixture(t)

	result, err := f.payrolls.GenerateMonthlyPayrolls(context.Background(), payroll.GeneratePayrollRequest{
		Month:      "2024-05",
		PersonType: string(person.TypeStaff),
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 1, result.Created)
	assert.Contains(t, activeRows(f), staffFixed)
}

func TestGenerateMonthlyPayrolls_FilterByIDs(t *testing.T) {
	f := newFixture(t)

	result, err := f.payrolls.GenerateMonthlyPayrolls(context.Background(), payroll.GeneratePayrollRequest{
		Month:     "2024-05",
		PersonIDs: []string{tutorMissed, counselorGone},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 1, result.Created)
	rows := activeRows(f)
	assert.Len(t, rows, 1)
	assert.Contains(t, rows, tutorMissed)
}

func TestGenerateMonthlyPayrolls_PersonFailureDoesNotAbortBatch(t *testing.T) {
	f := newFixture(t, func(_ *inmem.DB, d *fixtureDeps) {
		d.schedules = failingScheduleReader{ScheduleReader: d.schedules, personID: tutorMissed}
	})

	result := generateMay(t, f)

	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, tutorMissed, result.Failed[0].PersonID)
	assert.Equal(t, person.TypeTutor, result.Failed[0].PersonType)
	assert.Contains(t, result.Failed[0].Error, "schedule store unavailable")
	assert.NotContains(t, activeRows(f), tutorMissed)
}

func TestGenerateMonthlyPayrolls_UniqueViolationIsSkipped(t *testing.T) {
	f := newFixture(t, func(_ *inmem.DB, d *fixtureDeps) {
		d.payrollRepo = staleLookupRepository{PayrollRepository: d.payrollRepo}
	})
	generateMay(t, f)

	result := generateMay(t, f)

	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 4, result.Skipped)
	assert.Empty(t, result.Failed)
	assert.Len(t, f.db.PayrollRows(), 3)
}

func TestGenerateMonthlyPayrolls_RollsBackPartialWrite(t *testing.T) {
	f := newFixture(t)
	f.db.BeforePayrollItems = func(p payroll.Payroll) error {
		if p.PersonID == tutorMissed {
			return errors.New("connection reset")
		}
		return nil
	}

	result := generateMay(t, f)

	require.Len(t, result.Failed, 1)
	assert.Equal(t, tutorMissed, result.Failed[0].PersonID)
	for _, p := range f.db.PayrollRows() {
		assert.NotEqual(t, tutorMissed, p.PersonID)
	}

	// Act: the next run picks up the rolled back person
	f.db.BeforePayrollItems = nil
	result = generateMay(t, f)

	assert.Equal(t, 1, result.Created)
	assert.Empty(t, result.Failed)
	assertDecimal(t, "950", activeRows(f)[tutorMissed].NetSalary)
}

func TestGenerateMonthlyPayrolls_AuditFailureDoesNotFailGeneration(t *testing.T) {
	f := newFixture(t)
	f.db.FailAuditAppend = func() error { return errors.New("audit table locked") }

	result := generateMay(t, f)

	assert.Equal(t, 3, result.Created)
	assert.Empty(t, result.Failed)
	assert.Empty(t, f.db.AuditRows())
}

func TestGenerateMonthlyPayrolls_AuditsCreates(t *testing.T) {
	f := newFixture(t)

	generateMay(t, f)

	rows := f.db.AuditRows()
	require.Len(t, rows, 3)
	for _, a := range rows {
		assert.Equal(t, audit.ActionCreate, a.Action)
		assert.Equal(t, audit.EntityPayroll, a.EntityType)
		assert.Equal(t, a.EntityID, a.PayrollID)
		assert.Nil(t, a.OldData)
		assert.NotEmpty(t, a.NewData)
		assert.Equal(t, audit.SystemActor, a.ChangedBy)
	}
}

func TestGenerateMonthlyPayrolls_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.payrolls.GenerateMonthlyPayrolls(context.Background(), payroll.GeneratePayrollRequest{Month: "May 2024"})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Empty(t, f.db.PayrollRows())

	_, err = f.payrolls.GenerateMonthlyPayrolls(context.Background(), payroll.GeneratePayrollRequest{
		Month:     "2024-05",
		PersonIDs: []string{"not-a-uuid"},
	})
	require.ErrorAs(t, err, &verrs)
}

func TestGenerateMonthlyPayrolls_MissingConfig(t *testing.T) {
	f := newFixture(t, withoutConfig())

	_, err := f.payrolls.GenerateMonthlyPayrolls(context.Background(), payroll.GeneratePayrollRequest{Month: "2024-05"})

	assert.ErrorIs(t, err, payrule.ErrPayRuleConfigNotFound)
	assert.Empty(t, f.db.PayrollRows())
}

func TestGeneratePayroll_Single(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	outcome, err := f.payrolls.GeneratePayroll(ctx, staffFixed, person.TypeStaff, may.AddDate(0, 0, 14))

	require.NoError(t, err)
	assert.Equal(t, payroll.OutcomeCreated, outcome.Status)
	require.NotNil(t, outcome.Payroll)
	assert.True(t, outcome.Payroll.PayrollMonth.Equal(may))

	outcome, err = f.payrolls.GeneratePayroll(ctx, staffFixed, person.TypeStaff, may)

	require.NoError(t, err)
	assert.Equal(t, payroll.OutcomeSkipped, outcome.Status)
	assert.Equal(t, "payroll already exists", outcome.Reason)
}

func TestGeneratePayroll_NothingToPay(t *testing.T) {
	f := newFixture(t)

	outcome, err := f.payrolls.GeneratePayroll(context.Background(), tutorIdle, person.TypeTutor, may)

	require.NoError(t, err)
	assert.Equal(t, payroll.OutcomeSkipped, outcome.Status)
	assert.Nil(t, outcome.Payroll)
	assert.Empty(t, f.db.PayrollRows())
}

func TestGeneratePayroll_UnknownPerson(t *testing.T) {
	f := newFixture(t)

	_, err := f.payrolls.GeneratePayroll(context.Background(), "0190a1b2-0000-7000-8000-0000000000ff", person.TypeTutor, may)
	assert.ErrorIs(t, err, person.ErrPersonNotFound)

	// Type must match as well
	_, err = f.payrolls.GeneratePayroll(context.Background(), staffFixed, person.TypeTutor, may)
	assert.ErrorIs(t, err, person.ErrPersonNotFound)
}

func TestGeneratePayroll_UnresolvedClassCountsAsZero(t *testing.T) {
	f := newFixture(t)
	start := may.AddDate(0, 0, 20).Add(9 * time.Hour)
	f.db.AddSchedule(schedule.Schedule{
		ID:          "grade-12",
		PersonID:    tutorIdle,
		ClassID:     "class-12a",
		ClassNumber: 12,
		Duration:    90,
		Start:       start,
		End:         start.Add(90 * time.Minute),
		Status:      schedule.StatusCompleted,
	})
	f.db.AddAttendance(schedule.AttendanceRecord{ID: "att-grade-12", ScheduleID: "grade-12", PersonID: tutorIdle, Confirmed: true})

	outcome, err := f.payrolls.GeneratePayroll(context.Background(), tutorIdle, person.TypeTutor, may)

	require.NoError(t, err)
	require.Equal(t, payroll.OutcomeCreated, outcome.Status)
	// Units still count, base pay does not; below threshold earns the per-class increment
	assertDecimal(t, "0", outcome.Payroll.BaseSalary)
	assertDecimal(t, "1.5", outcome.Payroll.TotalClassUnits)
	assertDecimal(t, "25", outcome.Payroll.NetSalary)
}

// addIdleSessions gives tutorIdle one confirmed class-6 session per duration.
func addIdleSessions(f *fixture, minutes ...int) {
	for i, m := range minutes {
		id := fmt.Sprintf("idle-%d", i)
		start := may.AddDate(0, 0, i).Add(13 * time.Hour)
		f.db.AddSchedule(schedule.Schedule{
			ID:          id,
			PersonID:    tutorIdle,
			ClassID:     "class-6b",
			ClassNumber: 6,
			Duration:    m,
			Start:       start,
			End:         start.Add(time.Duration(m) * time.Minute),
			Status:      schedule.StatusCompleted,
		})
		f.db.AddAttendance(schedule.AttendanceRecord{ID: "att-" + id, ScheduleID: id, PersonID: tutorIdle, Confirmed: true})
	}
}

func repeatMinutes(n, minutes int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = minutes
	}
	return out
}

func TestGeneratePayroll_FractionalSessionsReachThreshold(t *testing.T) {
	f := newFixture(t)
	// 12 × 50 minutes is exactly 10 units, the threshold
	addIdleSessions(f, repeatMinutes(12, 50)...)

	outcome, err := f.payrolls.GeneratePayroll(context.Background(), tutorIdle, person.TypeTutor, may)

	require.NoError(t, err)
	require.Equal(t, payroll.OutcomeCreated, outcome.Status)
	p := outcome.Payroll
	assertDecimal(t, "10", p.TotalClassUnits)
	assertDecimal(t, "5000", p.BaseSalary)
	require.Len(t, p.Earnings, 1)
	assert.Equal(t, payroll.LabelAttendanceBonus, p.Earnings[0].Label)
	assertDecimal(t, "500", p.Earnings[0].Amount)
	assertDecimal(t, "5500", p.NetSalary)
}

func TestGeneratePayroll_RoundsToStoredScale(t *testing.T) {
	f := newFixture(t)
	// 655 minutes: 10.91666... units, 5458.333... base pay
	addIdleSessions(f, append(repeatMinutes(12, 50), 55)...)

	outcome, err := f.payrolls.GeneratePayroll(context.Background(), tutorIdle, person.TypeTutor, may)

	require.NoError(t, err)
	require.Equal(t, payroll.OutcomeCreated, outcome.Status)
	stored := activeRows(f)[tutorIdle]
	assertDecimal(t, "10.9167", stored.TotalClassUnits)
	assertDecimal(t, "5458.33", stored.BaseSalary)
	assertDecimal(t, "545.83", stored.TotalEarnings)
	assertDecimal(t, "6004.16", stored.GrossSalary)
	assertDecimal(t, "6004.16", stored.NetSalary)

	for _, amount := range []decimal.Decimal{stored.BaseSalary, stored.TotalEarnings, stored.GrossSalary, stored.NetSalary} {
		assert.True(t, amount.Equal(amount.Round(payroll.MoneyPlaces)), "%s has more than two decimal places", amount)
	}
	assert.True(t, stored.GrossSalary.Equal(stored.BaseSalary.Add(stored.TotalEarnings)))
	assert.True(t, stored.NetSalary.Equal(stored.GrossSalary.Sub(stored.TotalDeductions)))

	// The audit snapshot carries the same rounded totals
	var created []audit.PayrollAudit
	for _, a := range f.db.AuditRows() {
		if a.EntityID == stored.ID && a.Action == audit.ActionCreate {
			created = append(created, a)
		}
	}
	require.Len(t, created, 1)
	assert.Equal(t, "6004.16", created[0].NewData["gross_salary"])
}
