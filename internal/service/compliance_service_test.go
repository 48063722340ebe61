package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/vgp-compliance-api/internal/models"
	"github.com/noah-isme/vgp-compliance-api/pkg/datemath"
	appErrors "github.com/noah-isme/vgp-compliance-api/pkg/errors"
)

func inspectionOn(t *testing.T, assetID, date string, result models.VGPResult) models.VGPInspection {
	return models.VGPInspection{AssetID: assetID, ScheduleID: "s-" + assetID, InspectionDate: day(t, date), Result: result}
}

func TestComplianceServiceWithoutSchedulesIsCompliant(t *testing.T) {
	schedules := newScheduleStoreStub()
	svc := NewComplianceService(schedules, &inspectionStoreStub{schedules: schedules}, clockOn(t, "2025-06-15"), zap.NewNop())

	eval, err := svc.Evaluate(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, models.ComplianceCompliant, eval.Status)
	assert.Nil(t, eval.GoverningSchedule)
	assert.Zero(t, eval.ActiveSchedules)
}

func TestComplianceServiceOverdueWinsOverPassedInspection(t *testing.T) {
	schedules := newScheduleStoreStub(models.VGPSchedule{ID: "s1", AssetID: "a1", IntervalMonths: 12, NextDueDate: day(t, "2025-06-14"), Status: models.VGPScheduleActive})
	inspections := &inspectionStoreStub{schedules: schedules, inspections: []models.VGPInspection{inspectionOn(t, "a1", "2024-06-14", models.VGPResultPassed)}}
	svc := NewComplianceService(schedules, inspections, clockOn(t, "2025-06-15"), zap.NewNop())

	status, err := svc.Classify(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, models.ComplianceOverdue, status)
}

func TestComplianceServiceDueTodayIsNotOverdue(t *testing.T) {
	schedules := newScheduleStoreStub(models.VGPSchedule{ID: "s1", AssetID: "a1", IntervalMonths: 12, NextDueDate: day(t, "2025-06-15"), Status: models.VGPScheduleActive})
	svc := NewComplianceService(schedules, &inspectionStoreStub{schedules: schedules}, clockOn(t, "2025-06-15"), zap.NewNop())

	status, err := svc.Classify(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, models.ComplianceCompliant, status)
}

func TestComplianceServiceFailedInspectionOverridesFutureDueDate(t *testing.T) {
	schedules := newScheduleStoreStub(models.VGPSchedule{ID: "s1", AssetID: "a1", IntervalMonths: 12, NextDueDate: day(t, "2025-07-10"), Status: models.VGPScheduleFailed})
	inspections := &inspectionStoreStub{schedules: schedules, inspections: []models.VGPInspection{
		inspectionOn(t, "a1", "2025-01-10", models.VGPResultPassed),
		inspectionOn(t, "a1", "2025-06-10", models.VGPResultFailed),
	}}
	svc := NewComplianceService(schedules, inspections, clockOn(t, "2025-06-15"), zap.NewNop())

	eval, err := svc.Evaluate(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, models.ComplianceNonCompliant, eval.Status)
	require.NotNil(t, eval.LastInspection)
	assert.Equal(t, day(t, "2025-06-10"), eval.LastInspection.InspectionDate)
}

func TestComplianceServicePassAfterFailureRestoresCompliance(t *testing.T) {
	schedules := newScheduleStoreStub(models.VGPSchedule{ID: "s1", AssetID: "a1", IntervalMonths: 12, NextDueDate: day(t, "2026-06-12"), Status: models.VGPScheduleActive})
	inspections := &inspectionStoreStub{schedules: schedules, inspections: []models.VGPInspection{
		inspectionOn(t, "a1", "2025-06-10", models.VGPResultFailed),
		inspectionOn(t, "a1", "2025-06-12", models.VGPResultPassed),
	}}
	svc := NewComplianceService(schedules, inspections, clockOn(t, "2025-06-15"), zap.NewNop())

	status, err := svc.Classify(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, models.ComplianceCompliant, status)
}

func TestComplianceServiceMostUrgentScheduleGoverns(t *testing.T) {
	schedules := newScheduleStoreStub(
		models.VGPSchedule{ID: "far", AssetID: "a1", IntervalMonths: 12, NextDueDate: day(t, "2026-01-01"), Status: models.VGPScheduleActive},
		models.VGPSchedule{ID: "late", AssetID: "a1", IntervalMonths: 6, NextDueDate: day(t, "2025-06-01"), Status: models.VGPScheduleActive},
		models.VGPSchedule{ID: "gone", AssetID: "a1", IntervalMonths: 6, NextDueDate: day(t, "2024-01-01"), ArchivedAt: datePtr(t, "2024-02-01")},
	)
	svc := NewComplianceService(schedules, &inspectionStoreStub{schedules: schedules}, clockOn(t, "2025-06-15"), zap.NewNop())

	eval, err := svc.Evaluate(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, models.ComplianceOverdue, eval.Status)
	require.NotNil(t, eval.GoverningSchedule)
	assert.Equal(t, "late", eval.GoverningSchedule.ID)
	assert.Equal(t, 2, eval.ActiveSchedules)
}

func TestComplianceServiceIgnoresArchivedSchedules(t *testing.T) {
	schedules := newScheduleStoreStub(models.VGPSchedule{ID: "s1", AssetID: "a1", NextDueDate: day(t, "2024-01-01"), ArchivedAt: datePtr(t, "2024-02-01")})
	svc := NewComplianceService(schedules, &inspectionStoreStub{schedules: schedules}, clockOn(t, "2025-06-15"), zap.NewNop())

	status, err := svc.Classify(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, models.ComplianceCompliant, status)
}

func TestComplianceServiceUsesCanonicalZoneForToday(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)
	// 23:30 UTC on March 9th is already March 10th in Paris.
	clock := datemath.NewFixedClock(time.Date(2025, time.March, 9, 23, 30, 0, 0, time.UTC), loc)

	schedules := newScheduleStoreStub(models.VGPSchedule{ID: "s1", AssetID: "a1", IntervalMonths: 12, NextDueDate: day(t, "2025-03-09"), Status: models.VGPScheduleActive})
	svc := NewComplianceService(schedules, &inspectionStoreStub{schedules: schedules}, clock, zap.NewNop())

	status, err := svc.Classify(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, models.ComplianceOverdue, status)

	utc := datemath.NewFixedClock(time.Date(2025, time.March, 9, 23, 30, 0, 0, time.UTC), time.UTC)
	status, err = NewComplianceService(schedules, &inspectionStoreStub{schedules: schedules}, utc, zap.NewNop()).Classify(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, models.ComplianceCompliant, status)
}

func TestComplianceServiceErrors(t *testing.T) {
	schedules := newScheduleStoreStub(models.VGPSchedule{ID: "s1", AssetID: "a1", NextDueDate: day(t, "2025-09-01"), Status: models.VGPScheduleActive})
	inspections := &inspectionStoreStub{schedules: schedules, latestErr: errors.New("timeout")}
	svc := NewComplianceService(schedules, inspections, clockOn(t, "2025-06-15"), zap.NewNop())

	_, err := svc.Classify(context.Background(), " ")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Classify(context.Background(), "a1")
	assert.True(t, errors.Is(err, appErrors.ErrPersistence))

	schedules.listErr = errors.New("timeout")
	_, err = svc.Classify(context.Background(), "a1")
	assert.True(t, errors.Is(err, appErrors.ErrPersistence))
}
