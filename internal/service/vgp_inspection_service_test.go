package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/vgp-compliance-api/internal/dto"
	"github.com/noah-isme/vgp-compliance-api/internal/models"
	appErrors "github.com/noah-isme/vgp-compliance-api/pkg/errors"
)

// inspectionStoreStub applies schedule updates to the shared schedule stub so
// the write behaves like the repository transaction.
type inspectionStoreStub struct {
	schedules   *scheduleStoreStub
	inspections []models.VGPInspection
	recordErr   error
	listErr     error
	latestErr   error
	filters     []models.VGPInspectionFilter
}

func (s *inspectionStoreStub) RecordWithSchedule(ctx context.Context, inspection *models.VGPInspection, update models.ScheduleDueUpdate) error {
	if s.recordErr != nil {
		return s.recordErr
	}
	schedule, ok := s.schedules.schedules[update.ScheduleID]
	if !ok || schedule.Archived() {
		return sql.ErrNoRows
	}
	inspection.ID = fmt.Sprintf("insp-%d", len(s.inspections)+1)
	s.inspections = append(s.inspections, *inspection)

	last := update.LastInspectionDate
	schedule.LastInspectionDate = &last
	schedule.NextDueDate = update.NextDueDate
	schedule.Status = update.Status
	schedule.UpdatedAt = update.UpdatedAt
	return nil
}

func (s *inspectionStoreStub) List(ctx context.Context, filter models.VGPInspectionFilter) ([]models.VGPInspection, error) {
	s.filters = append(s.filters, filter)
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []models.VGPInspection
	for _, inspection := range s.inspections {
		if filter.AssetID != "" && inspection.AssetID != filter.AssetID {
			continue
		}
		out = append(out, inspection)
	}
	return out, nil
}

func (s *inspectionStoreStub) LatestByAsset(ctx context.Context, assetID string) (*models.VGPInspection, error) {
	if s.latestErr != nil {
		return nil, s.latestErr
	}
	var matching []models.VGPInspection
	for _, inspection := range s.inspections {
		if inspection.AssetID == assetID {
			matching = append(matching, inspection)
		}
	}
	if len(matching) == 0 {
		return nil, nil
	}
	sort.SliceStable(matching, func(i, j int) bool {
		return matching[i].InspectionDate.After(matching[j].InspectionDate)
	})
	latest := matching[0]
	return &latest, nil
}

type notifierStub struct {
	assets []string
	err    error
}

func (s *notifierStub) RequestOutOfService(ctx context.Context, assetID, reason string) error {
	s.assets = append(s.assets, assetID)
	return s.err
}

type invalidatorStub struct {
	calls int
	err   error
}

func (s *invalidatorStub) InvalidateReports(ctx context.Context) error {
	s.calls++
	return s.err
}

func recordRequest(date string, result models.VGPResult) dto.RecordInspectionRequest {
	return dto.RecordInspectionRequest{
		InspectionDate:   date,
		InspectorName:    "M. Durand",
		InspectorCompany: "Bureau Veritas",
		Result:           string(result),
		CertificateURL:   strPtr("https://certs.example.com/vgp/42.pdf"),
	}
}

func newInspectionService(t *testing.T, today string, schedules *scheduleStoreStub, inspections *inspectionStoreStub, notifier *notifierStub, cache *invalidatorStub) *VGPInspectionService {
	var n assetStatusNotifier
	if notifier != nil {
		n = notifier
	}
	var c reportCacheInvalidator
	if cache != nil {
		c = cache
	}
	return NewVGPInspectionService(schedules, inspections, n, c, NewMetricsService(), clockOn(t, today), nil, zap.NewNop())
}

func TestVGPInspectionServiceRecordPassedAdvancesByInterval(t *testing.T) {
	schedules := newScheduleStoreStub(models.VGPSchedule{
		ID: "s1", AssetID: "a1", IntervalMonths: 12,
		LastInspectionDate: datePtr(t, "2024-01-15"), NextDueDate: day(t, "2025-01-15"), Status: models.VGPScheduleActive,
	})
	inspections := &inspectionStoreStub{schedules: schedules}
	cache := &invalidatorStub{}
	svc := newInspectionService(t, "2025-01-12", schedules, inspections, nil, cache)

	resp, err := svc.Record(context.Background(), "s1", recordRequest("2025-01-10", models.VGPResultPassed), "inspector-1")
	require.NoError(t, err)

	assert.Equal(t, day(t, "2026-01-10"), resp.Inspection.NextInspectionDate)
	assert.Equal(t, day(t, "2026-01-10"), resp.Schedule.NextDueDate)
	assert.Equal(t, day(t, "2025-01-10"), *resp.Schedule.LastInspectionDate)
	assert.Equal(t, models.VGPScheduleActive, resp.Schedule.Status)
	assert.Equal(t, "a1", resp.Inspection.AssetID)
	assert.Equal(t, "inspector-1", resp.Inspection.CreatedBy)
	assert.Equal(t, day(t, "2026-01-10"), schedules.schedules["s1"].NextDueDate)
	assert.Equal(t, 1, cache.calls)
}

func TestVGPInspectionServiceScenarioConditionalThenFailed(t *testing.T) {
	schedules := newScheduleStoreStub()
	assets := newAssetStoreStub(models.Asset{ID: "a1", Status: models.AssetAvailable})
	scheduleSvc := newScheduleService(t, "2025-01-05", schedules, assets)

	created, err := scheduleSvc.Create(context.Background(), dto.CreateScheduleRequest{
		AssetID: "a1", IntervalMonths: 6, LastInspectionDate: strPtr("2025-01-01"), CreatedBy: "ops",
	}, "")
	require.NoError(t, err)
	assert.Equal(t, day(t, "2025-07-01"), created.NextDueDate)

	inspections := &inspectionStoreStub{schedules: schedules}

	resp, err := newInspectionService(t, "2025-06-20", schedules, inspections, nil, nil).
		Record(context.Background(), created.ID, recordRequest("2025-06-20", models.VGPResultConditional), "")
	require.NoError(t, err)
	assert.Equal(t, day(t, "2025-12-20"), resp.Schedule.NextDueDate)
	assert.Equal(t, models.VGPScheduleActive, resp.Schedule.Status)

	notifier := &notifierStub{}
	resp, err = newInspectionService(t, "2025-12-18", schedules, inspections, notifier, nil).
		Record(context.Background(), created.ID, recordRequest("2025-12-18", models.VGPResultFailed), "")
	require.NoError(t, err)
	assert.Equal(t, day(t, "2026-01-17"), resp.Schedule.NextDueDate)
	assert.Equal(t, models.VGPScheduleFailed, resp.Schedule.Status)
	assert.Equal(t, []string{"a1"}, notifier.assets)

	compliance := NewComplianceService(schedules, inspections, clockOn(t, "2025-12-19"), zap.NewNop())
	status, err := compliance.Classify(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, models.ComplianceNonCompliant, status)
}

func TestVGPInspectionServiceNotifierFailureDoesNotFailRecord(t *testing.T) {
	schedules := newScheduleStoreStub(models.VGPSchedule{ID: "s1", AssetID: "a1", IntervalMonths: 12, NextDueDate: day(t, "2025-03-01"), Status: models.VGPScheduleActive})
	inspections := &inspectionStoreStub{schedules: schedules}
	notifier := &notifierStub{err: errors.New("registry unavailable")}
	cache := &invalidatorStub{err: errors.New("redis down")}
	svc := newInspectionService(t, "2025-02-10", schedules, inspections, notifier, cache)

	resp, err := svc.Record(context.Background(), "s1", recordRequest("2025-02-10", models.VGPResultFailed), "")
	require.NoError(t, err)
	assert.Equal(t, models.VGPScheduleFailed, resp.Schedule.Status)
	assert.Len(t, inspections.inspections, 1)
	assert.Equal(t, []string{"a1"}, notifier.assets)
}

func TestVGPInspectionServiceRecordReportsEveryViolation(t *testing.T) {
	schedules := newScheduleStoreStub(models.VGPSchedule{ID: "s1", AssetID: "a1", IntervalMonths: 12, NextDueDate: day(t, "2025-03-01")})
	inspections := &inspectionStoreStub{schedules: schedules}
	svc := newInspectionService(t, "2025-02-10", schedules, inspections, nil, nil)

	_, err := svc.Record(context.Background(), "s1", dto.RecordInspectionRequest{
		InspectionDate:   "2025-02-11",
		InspectorName:    " ",
		InspectorCompany: "",
		Result:           "excellent",
		CertificateURL:   strPtr("not a url"),
	}, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.ElementsMatch(t,
		[]string{"inspector_name", "inspector_company", "result", "certificate_url", "inspection_date"},
		fieldsOf(t, err))
	assert.Empty(t, inspections.inspections)
	assert.Equal(t, day(t, "2025-03-01"), schedules.schedules["s1"].NextDueDate)
}

func TestVGPInspectionServiceRecordOnArchivedSchedule(t *testing.T) {
	schedules := newScheduleStoreStub(models.VGPSchedule{ID: "s1", AssetID: "a1", IntervalMonths: 12, NextDueDate: day(t, "2025-03-01"), ArchivedAt: datePtr(t, "2025-01-01")})
	inspections := &inspectionStoreStub{schedules: schedules}
	svc := newInspectionService(t, "2025-02-10", schedules, inspections, nil, nil)

	_, err := svc.Record(context.Background(), "s1", recordRequest("2025-02-10", models.VGPResultPassed), "")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = svc.Record(context.Background(), "missing", recordRequest("2025-02-10", models.VGPResultPassed), "")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.Empty(t, inspections.inspections)
}

func TestVGPInspectionServiceRecordPersistenceFailure(t *testing.T) {
	schedules := newScheduleStoreStub(models.VGPSchedule{ID: "s1", AssetID: "a1", IntervalMonths: 12, NextDueDate: day(t, "2025-03-01")})
	inspections := &inspectionStoreStub{schedules: schedules, recordErr: errors.New("deadlock detected")}
	notifier := &notifierStub{}
	svc := newInspectionService(t, "2025-02-10", schedules, inspections, notifier, nil)

	_, err := svc.Record(context.Background(), "s1", recordRequest("2025-02-10", models.VGPResultFailed), "")
	assert.True(t, errors.Is(err, appErrors.ErrPersistence))
	assert.Empty(t, notifier.assets)
	assert.Equal(t, day(t, "2025-03-01"), schedules.schedules["s1"].NextDueDate)
}

func TestVGPInspectionServiceListValidatesBounds(t *testing.T) {
	inspections := &inspectionStoreStub{schedules: newScheduleStoreStub()}
	svc := newInspectionService(t, "2025-02-10", inspections.schedules, inspections, nil, nil)

	_, err := svc.List(context.Background(), "a1", "2025-03-01", "2025-02-01")
	assert.Equal(t, []string{"to"}, fieldsOf(t, err))

	_, err = svc.List(context.Background(), "", "01/02/2025", "")
	assert.ElementsMatch(t, []string{"assetId", "from"}, fieldsOf(t, err))

	_, err = svc.List(context.Background(), "a1", "2025-01-01", "2025-02-01")
	require.NoError(t, err)
	require.Len(t, inspections.filters, 1)
	assert.Equal(t, day(t, "2025-01-01"), inspections.filters[0].From)
	assert.Equal(t, day(t, "2025-02-01"), inspections.filters[0].To)
}
