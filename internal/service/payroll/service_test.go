package payroll

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/person"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdatePayroll_RecalculatesTotals(t *testing.T) {
	// Setup
	f := newFixture(t)
	generateMay(t, f)
	target := activeRows(f)[tutorMissed]
	note := "late sick leave"

	// Act
	resp, err := f.payrolls.UpdatePayroll(context.Background(), payroll.UpdatePayrollRequest{
		ID: target.ID,
		Deductions: &[]payroll.LineItemRequest{
			{Label: payroll.LabelMissedClassDeduction, Amount: decimal.NewFromInt(50)},
			{Label: "Advance", Amount: decimal.NewFromInt(100)},
		},
		Notes: &note,
	})

	// Assert
	require.NoError(t, err)
	assertDecimal(t, "150", resp.TotalDeductions)
	assertDecimal(t, "1000", resp.GrossSalary)
	assertDecimal(t, "850", resp.NetSalary)
	require.NotNil(t, resp.Notes)
	assert.Equal(t, note, *resp.Notes)

	stored := activeRows(f)[tutorMissed]
	assertDecimal(t, "850", stored.NetSalary)
	assert.Len(t, stored.Deductions, 2)
}

func TestUpdatePayroll_AuditsChangedFields(t *testing.T) {
	f := newFixture(t)
	generateMay(t, f)
	target := activeRows(f)[tutorFullMonth]
	base := decimal.NewFromInt(4000)

	_, err := f.payrolls.UpdatePayroll(context.Background(), payroll.UpdatePayrollRequest{ID: target.ID, BaseSalary: &base})
	require.NoError(t, err)

	var updates []audit.PayrollAudit
	for _, a := range f.db.AuditRows() {
		if a.Action == audit.ActionUpdate {
			updates = append(updates, a)
		}
	}
	require.Len(t, updates, 1)
	assert.Equal(t, target.ID, updates[0].PayrollID)
	assert.Equal(t, tutorFullMonth, updates[0].StaffID)
	assert.Subset(t, updates[0].ChangedFields, []string{"base_salary", "gross_salary", "net_salary"})
	// Stored earnings are not rescaled by a manual base change
	assert.NotContains(t, updates[0].ChangedFields, "earnings")
	assert.Equal(t, "5500", updates[0].OldData["net_salary"])
	assert.Equal(t, "4500", updates[0].NewData["net_salary"])
}

func TestUpdatePayroll_Errors(t *testing.T) {
	f := newFixture(t)
	generateMay(t, f)
	ctx := context.Background()

	note := "bonus"
	_, err := f.payrolls.UpdatePayroll(ctx, payroll.UpdatePayrollRequest{ID: "0190a1b2-0000-7000-8000-0000000000ff", Notes: &note})
	assert.ErrorIs(t, err, payroll.ErrPayrollNotFound)

	var verrs validator.ValidationErrors
	_, err = f.payrolls.UpdatePayroll(ctx, payroll.UpdatePayrollRequest{ID: activeRows(f)[tutorMissed].ID})
	require.ErrorAs(t, err, &verrs)

	target := activeRows(f)[tutorMissed]
	_, err = f.payrolls.UpdatePayroll(ctx, payroll.UpdatePayrollRequest{
		ID:       target.ID,
		Earnings: &[]payroll.LineItemRequest{{Label: "", Amount: decimal.NewFromInt(10)}},
	})
	require.ErrorAs(t, err, &verrs)
	assertDecimal(t, "950", activeRows(f)[tutorMissed].NetSalary)
}

func TestDeletePayroll_AllowsRegeneration(t *testing.T) {
	f := newFixture(t)
	generateMay(t, f)
	ctx := context.Background()
	target := activeRows(f)[tutorMissed]

	require.NoError(t, f.payrolls.DeletePayroll(ctx, target.ID))

	_, err := f.payrolls.GetPayroll(ctx, target.ID)
	assert.ErrorIs(t, err, payroll.ErrPayrollNotFound)
	assert.ErrorIs(t, f.payrolls.DeletePayroll(ctx, target.ID), payroll.ErrPayrollNotFound)

	var deletes int
	for _, a := range f.db.AuditRows() {
		if a.Action == audit.ActionDelete {
			deletes++
			assert.Equal(t, target.ID, a.EntityID)
			assert.Nil(t, a.NewData)
		}
	}
	assert.Equal(t, 1, deletes)

	result := generateMay(t, f)

	assert.Equal(t, 1, result.Created)
	regenerated := activeRows(f)[tutorMissed]
	assert.NotEqual(t, target.ID, regenerated.ID)
	assert.Len(t, f.db.PayrollRows(), 4)
}

func TestListPayrolls(t *testing.T) {
	f := newFixture(t)
	generateMay(t, f)
	ctx := context.Background()
	tutor := person.TypeTutor

	resp, err := f.payrolls.ListPayrolls(ctx, payroll.PayrollFilter{Month: &may, PersonType: &tutor})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.TotalCount)
	assert.Len(t, resp.Data, 2)
	for _, p := range resp.Data {
		assert.Equal(t, string(person.TypeTutor), p.PersonType)
		assert.Equal(t, "2024-05", p.PayrollMonth)
		require.NotNil(t, p.PersonName)
	}

	resp, err = f.payrolls.ListPayrolls(ctx, payroll.PayrollFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.TotalCount)
	assert.Len(t, resp.Data, 1)
	assert.Equal(t, 2, resp.Page)
}

func TestGetPayslip(t *testing.T) {
	f := newFixture(t)
	generateMay(t, f)
	ctx := context.Background()
	target := activeRows(f)[tutorFullMonth]

	slip, err := f.payrolls.GetPayslip(ctx, target.ID)

	require.NoError(t, err)
	assert.Equal(t, "Ayu Lestari", slip.EmployeeName)
	assert.Equal(t, "May 2024", slip.PayPeriod)
	assert.Equal(t, string(person.TypeTutor), slip.PersonType)
	assertDecimal(t, "5500", slip.NetPay)
	assertDecimal(t, "5500", slip.GrossSalary)
	assert.Equal(t, 10, slip.AttendedClasses)
	assert.Nil(t, slip.SalaryStatus)

	_, err = f.salaries.GenerateMonthlySalaries(ctx, payroll.GenerateSalaryRequest{Month: "2024-05"})
	require.NoError(t, err)

	slip, err = f.payrolls.GetPayslip(ctx, target.ID)

	require.NoError(t, err)
	require.NotNil(t, slip.SalaryStatus)
	assert.Equal(t, string(payroll.SalaryStatusPending), *slip.SalaryStatus)
	require.NotNil(t, slip.SalaryDate)
	assert.Equal(t, "2024-05-08", *slip.SalaryDate)
	assert.Nil(t, slip.PaidDate)

	_, err = f.payrolls.GetPayslip(ctx, "0190a1b2-0000-7000-8000-0000000000ff")
	assert.ErrorIs(t, err, payroll.ErrPayrollNotFound)
}

func TestGetPayrollSummary(t *testing.T) {
	f := newFixture(t)
	generateMay(t, f)
	ctx := context.Background()

	summary, err := f.payrolls.GetPayrollSummary(ctx, may)

	require.NoError(t, err)
	assert.Equal(t, "2024-05", summary.Month)
	assert.Equal(t, 3, summary.TotalPersons)
	assert.Equal(t, 2, summary.TutorCount)
	assert.Equal(t, 1, summary.StaffCount)
	assert.Equal(t, 0, summary.CounselorCount)
	assertDecimal(t, "9000", summary.TotalBaseSalary)
	assertDecimal(t, "500", summary.TotalEarnings)
	assertDecimal(t, "50", summary.TotalDeductions)
	assertDecimal(t, "9500", summary.TotalGrossSalary)
	assertDecimal(t, "9450", summary.TotalNetSalary)
	assert.Equal(t, 0, summary.SalariesGenerated)
	assert.Empty(t, summary.NegativeNetSalaryIDs)

	// Salary progress is counted once salaries exist
	_, err = f.salaries.GenerateMonthlySalaries(ctx, payroll.GenerateSalaryRequest{Month: "2024-05"})
	require.NoError(t, err)
	list, err := f.salaries.ListSalaries(ctx, payroll.SalaryFilter{Month: &may})
	require.NoError(t, err)
	require.NotEmpty(t, list.Data)
	_, err = f.salaries.MarkSalaryPaid(ctx, payroll.PaySalaryRequest{ID: list.Data[0].ID})
	require.NoError(t, err)

	summary, err = f.payrolls.GetPayrollSummary(ctx, may.AddDate(0, 0, 10))

	require.NoError(t, err)
	assert.Equal(t, 3, summary.SalariesGenerated)
	assert.Equal(t, 1, summary.SalariesPaid)
}

func TestGetPayrollSummary_FlagsNegativeNet(t *testing.T) {
	f := newFixture(t)
	generateMay(t, f)
	ctx := context.Background()
	target := activeRows(f)[tutorMissed]

	_, err := f.payrolls.UpdatePayroll(ctx, payroll.UpdatePayrollRequest{
		ID:         target.ID,
		Deductions: &[]payroll.LineItemRequest{{Label: "Equipment loss", Amount: decimal.NewFromInt(1200)}},
	})
	require.NoError(t, err)

	summary, err := f.payrolls.GetPayrollSummary(ctx, may)

	require.NoError(t, err)
	assert.Equal(t, []string{target.ID}, summary.NegativeNetSalaryIDs)
	assertDecimal(t, "8300", summary.TotalNetSalary)
}
