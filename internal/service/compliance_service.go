package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/vgp-compliance-api/internal/models"
	"github.com/noah-isme/vgp-compliance-api/pkg/datemath"
	appErrors "github.com/noah-isme/vgp-compliance-api/pkg/errors"
)

type complianceScheduleReader interface {
	ListByAsset(ctx context.Context, filter models.VGPScheduleFilter) ([]models.VGPSchedule, error)
}

type latestInspectionReader interface {
	LatestByAsset(ctx context.Context, assetID string) (*models.VGPInspection, error)
}

// ComplianceService is the single place where an asset's compliance is
// derived. Badges, the rental gate and reports all go through it; results are
// never cached because schedules change independently.
type ComplianceService struct {
	schedules   complianceScheduleReader
	inspections latestInspectionReader
	clock       *datemath.Clock
	logger      *zap.Logger
}

// NewComplianceService constructs the classifier.
func NewComplianceService(schedules complianceScheduleReader, inspections latestInspectionReader, clock *datemath.Clock, logger *zap.Logger) *ComplianceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ComplianceService{schedules: schedules, inspections: inspections, clock: clock, logger: logger}
}

// Classify answers whether the asset is compliant right now.
func (s *ComplianceService) Classify(ctx context.Context, assetID string) (models.ComplianceStatus, error) {
	eval, err := s.Evaluate(ctx, assetID)
	if err != nil {
		return "", err
	}
	return eval.Status, nil
}

// Evaluate classifies the asset and returns the inputs that decided it.
func (s *ComplianceService) Evaluate(ctx context.Context, assetID string) (*models.ComplianceEvaluation, error) {
	assetID = strings.TrimSpace(assetID)
	if assetID == "" {
		return nil, appErrors.Validation([]appErrors.FieldError{{Field: "assetId", Message: "is required"}})
	}
	today := s.clock.Today()
	eval := &models.ComplianceEvaluation{AssetID: assetID, Status: models.ComplianceCompliant, EvaluatedFor: today}

	schedules, err := s.schedules.ListByAsset(ctx, models.VGPScheduleFilter{AssetID: assetID})
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to load schedules")
	}
	governing, live := governingSchedule(schedules)
	eval.ActiveSchedules = live
	if governing == nil {
		return eval, nil
	}
	eval.GoverningSchedule = governing

	if isOverdue(*governing, today) {
		eval.Status = models.ComplianceOverdue
		return eval, nil
	}

	last, err := s.inspections.LatestByAsset(ctx, assetID)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to load latest inspection")
	}
	eval.LastInspection = last
	if last != nil && last.Result == models.VGPResultFailed {
		eval.Status = models.ComplianceNonCompliant
	}
	return eval, nil
}

// governingSchedule picks the non-archived schedule with the earliest due date
// and reports how many non-archived schedules were considered.
func governingSchedule(schedules []models.VGPSchedule) (*models.VGPSchedule, int) {
	var governing *models.VGPSchedule
	live := 0
	for i := range schedules {
		candidate := &schedules[i]
		if candidate.Archived() {
			continue
		}
		live++
		if governing == nil || candidate.NextDueDate.Before(governing.NextDueDate) {
			governing = candidate
		}
	}
	return governing, live
}

func isOverdue(schedule models.VGPSchedule, today time.Time) bool {
	return schedule.Status != models.VGPScheduleCompleted && datemath.Before(schedule.NextDueDate, today)
}
