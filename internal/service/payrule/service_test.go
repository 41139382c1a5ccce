package payrule

import (
	"context"
	"errors"
	"testing"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/payrule"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/repository/inmem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPayRuleService(t *testing.T) (payrule.Service, *inmem.DB) {
	t.Helper()
	db := inmem.NewDB()
	return NewPayRuleService(inmem.NewPayRuleConfigRepository(db), inmem.NewClassRangeRepository(db)), db
}

func TestPayRuleService_UpdateConfig_RejectsUnknownClassRange(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestPayRuleService(t)

	_, err := svc.UpdateConfig(ctx, payrule.UpdateConfigRequest{
		BasePays: []payrule.BasePayRequest{{ClassRangeID: "missing", BasePay: dec("100")}},
	})

	assert.ErrorIs(t, err, payrule.ErrUnknownClassRange)
}

func TestPayRuleService_UpdateConfig_ThenRecompute(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestPayRuleService(t)

	// Setup
	cr, err := svc.CreateClassRange(ctx, payrule.CreateClassRangeRequest{FromClass: 5, ToClass: 7, Label: "Upper"})
	require.NoError(t, err)

	_, err = svc.UpdateConfig(ctx, payrule.UpdateConfigRequest{
		BasePays:         []payrule.BasePayRequest{{ClassRangeID: cr.ID, BasePay: dec("500")}},
		MonthlyThreshold: dec("10"),
		AboveThreshold: payrule.AboveThresholdRequest{
			Rules:     []payrule.IncrementRuleRequest{{IncrementPercent: dec("10")}},
			Decrement: dec("30"),
		},
		BelowThreshold: payrule.BelowThresholdRequest{Increment: dec("25"), Decrement: dec("50")},
	})
	require.NoError(t, err)

	// Act
	res, err := svc.Recompute(ctx, payrule.RecomputeRequest{
		BasePay:         dec("1000"),
		ClassUnits:      dec("10"),
		AttendedClasses: 10,
	})

	// Assert
	require.NoError(t, err)
	assertDecimal(t, "1100", res.NetSalary)
	assertDecimal(t, "100", res.IncrementAmount)

	got, err := svc.GetConfig(ctx)
	require.NoError(t, err)
	assert.Len(t, got.BasePays, 1)
}

func TestPayRuleService_Recompute_WithoutConfig(t *testing.T) {
	svc, _ := newTestPayRuleService(t)

	_, err := svc.Recompute(context.Background(), payrule.RecomputeRequest{BasePay: dec("10"), ClassUnits: dec("1")})

	assert.ErrorIs(t, err, payrule.ErrPayRuleConfigNotFound)
}

func TestPayRuleService_CreateClassRange_Validation(t *testing.T) {
	svc, _ := newTestPayRuleService(t)

	_, err := svc.CreateClassRange(context.Background(), payrule.CreateClassRangeRequest{FromClass: 7, ToClass: 5})

	var errs validator.ValidationErrors
	require.True(t, errors.As(err, &errs))
	assert.Contains(t, errs.ToMap(), "to_class")
	assert.Contains(t, errs.ToMap(), "label")
}

func TestPayRuleService_UpdateClassRange(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestPayRuleService(t)

	cr, err := svc.CreateClassRange(ctx, payrule.CreateClassRangeRequest{FromClass: 1, ToClass: 4, Label: "Lower"})
	require.NoError(t, err)

	to := 6
	updated, err := svc.UpdateClassRange(ctx, payrule.UpdateClassRangeRequest{ID: cr.ID, ToClass: &to})
	require.NoError(t, err)
	assert.Equal(t, 6, updated.ToClass)
	assert.Equal(t, "Lower", updated.Label)

	from := 9
	_, err = svc.UpdateClassRange(ctx, payrule.UpdateClassRangeRequest{ID: cr.ID, FromClass: &from})
	assert.ErrorIs(t, err, payrule.ErrInvalidClassRange)
}

func TestPayRuleService_DeleteClassRange(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestPayRuleService(t)

	cr, err := svc.CreateClassRange(ctx, payrule.CreateClassRangeRequest{FromClass: 1, ToClass: 4, Label: "Lower"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteClassRange(ctx, cr.ID))
	assert.ErrorIs(t, svc.DeleteClassRange(ctx, cr.ID), payrule.ErrClassRangeNotFound)

	ranges, err := svc.ListClassRanges(ctx)
	require.NoError(t, err)
	assert.Empty(t, ranges)
}
