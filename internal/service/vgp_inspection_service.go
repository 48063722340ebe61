package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/vgp-compliance-api/internal/dto"
	"github.com/noah-isme/vgp-compliance-api/internal/models"
	"github.com/noah-isme/vgp-compliance-api/pkg/datemath"
	appErrors "github.com/noah-isme/vgp-compliance-api/pkg/errors"
)

type vgpScheduleReader interface {
	GetByID(ctx context.Context, id string) (*models.VGPSchedule, error)
}

type vgpInspectionStore interface {
	RecordWithSchedule(ctx context.Context, inspection *models.VGPInspection, update models.ScheduleDueUpdate) error
	List(ctx context.Context, filter models.VGPInspectionFilter) ([]models.VGPInspection, error)
}

// assetStatusNotifier asks the asset registry to take equipment out of service.
type assetStatusNotifier interface {
	RequestOutOfService(ctx context.Context, assetID, reason string) error
}

type reportCacheInvalidator interface {
	InvalidateReports(ctx context.Context) error
}

// VGPInspectionService records completed inspections and advances schedules.
type VGPInspectionService struct {
	schedules   vgpScheduleReader
	inspections vgpInspectionStore
	notifier    assetStatusNotifier
	cache       reportCacheInvalidator
	metrics     *MetricsService
	clock       *datemath.Clock
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewVGPInspectionService constructs the service. notifier and cache may be nil.
func NewVGPInspectionService(schedules vgpScheduleReader, inspections vgpInspectionStore, notifier assetStatusNotifier, cache reportCacheInvalidator, metrics *MetricsService, clock *datemath.Clock, validate *validator.Validate, logger *zap.Logger) *VGPInspectionService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VGPInspectionService{
		schedules:   schedules,
		inspections: inspections,
		notifier:    notifier,
		cache:       cache,
		metrics:     metrics,
		clock:       clock,
		validator:   validate,
		logger:      logger,
	}
}

// Record validates an inspection form, stores the inspection and advances the
// schedule atomically. A failed result additionally requests the asset be put
// out of service; that request never fails the recording.
func (s *VGPInspectionService) Record(ctx context.Context, scheduleID string, req dto.RecordInspectionRequest, actorID string) (*dto.RecordInspectionResponse, error) {
	inspectionDate, err := s.validateRecord(req)
	if err != nil {
		return nil, err
	}

	schedule, err := s.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, storeError(err, "schedule not found", "failed to load schedule")
	}
	if schedule.Archived() {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule is archived")
	}

	result := models.VGPResult(req.Result)
	nextDue, status := RecomputeDueDate(*schedule, inspectionDate, result)
	now := s.clock.Now()

	inspection := &models.VGPInspection{
		AssetID:             schedule.AssetID,
		ScheduleID:          schedule.ID,
		InspectionDate:      inspectionDate,
		InspectorName:       strings.TrimSpace(req.InspectorName),
		InspectorCompany:    strings.TrimSpace(req.InspectorCompany),
		CertificationNumber: trimmedOptional(req.CertificationNumber),
		Result:              result,
		Findings:            trimmedOptional(req.Findings),
		Observations:        trimmedOptional(req.Observations),
		NextInspectionDate:  nextDue,
		CertificateURL:      trimmedOptional(req.CertificateURL),
		CreatedBy:           actorID,
		CreatedAt:           now,
	}
	update := models.ScheduleDueUpdate{
		ScheduleID:         schedule.ID,
		LastInspectionDate: inspectionDate,
		NextDueDate:        nextDue,
		Status:             status,
		UpdatedAt:          now,
	}
	if err := s.inspections.RecordWithSchedule(ctx, inspection, update); err != nil {
		return nil, storeError(err, "schedule not found", "failed to record inspection")
	}

	schedule.LastInspectionDate = &inspectionDate
	schedule.NextDueDate = nextDue
	schedule.Status = status
	schedule.UpdatedAt = now

	s.metrics.ObserveInspection(result)
	s.logger.Info("vgp inspection recorded",
		zap.String("inspection_id", inspection.ID),
		zap.String("schedule_id", schedule.ID),
		zap.String("asset_id", schedule.AssetID),
		zap.String("result", string(result)),
		zap.String("next_due_date", datemath.Format(nextDue)))

	if result == models.VGPResultFailed {
		s.requestOutOfService(ctx, schedule.AssetID, inspection.ID)
	}
	if s.cache != nil {
		if err := s.cache.InvalidateReports(ctx); err != nil {
			s.logger.Warn("failed to invalidate report cache", zap.Error(err))
		}
	}

	return &dto.RecordInspectionResponse{Inspection: *inspection, Schedule: *schedule}, nil
}

// List returns an asset's inspections newest first. from and to are optional
// YYYY-MM-DD bounds.
func (s *VGPInspectionService) List(ctx context.Context, assetID, from, to string) ([]models.VGPInspection, error) {
	var violations appErrors.Violations
	filter := models.VGPInspectionFilter{AssetID: strings.TrimSpace(assetID)}
	if filter.AssetID == "" {
		violations.Add("assetId", "is required")
	}
	if from != "" {
		if parsed, err := datemath.Parse(from); err != nil {
			violations.Add("from", "must be a date formatted YYYY-MM-DD")
		} else {
			filter.From = parsed
		}
	}
	if to != "" {
		if parsed, err := datemath.Parse(to); err != nil {
			violations.Add("to", "must be a date formatted YYYY-MM-DD")
		} else {
			filter.To = parsed
		}
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		violations.Add("to", "must not be before from")
	}
	if err := violations.Err(); err != nil {
		return nil, err
	}

	inspections, err := s.inspections.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to list inspections")
	}
	return inspections, nil
}

// validateRecord reports every invalid field at once and returns the parsed
// inspection date.
func (s *VGPInspectionService) validateRecord(req dto.RecordInspectionRequest) (time.Time, error) {
	var violations appErrors.Violations
	if err := collectViolations(s.validator, req, &violations); err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid inspection payload")
	}
	var inspectionDate time.Time
	if req.InspectionDate != "" {
		if parsed, err := datemath.Parse(req.InspectionDate); err == nil {
			inspectionDate = parsed
			if s.clock.IsFuture(parsed) {
				violations.Add("inspection_date", "cannot be in the future")
			}
		}
	}
	return inspectionDate, violations.Err()
}

func (s *VGPInspectionService) requestOutOfService(ctx context.Context, assetID, inspectionID string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.RequestOutOfService(ctx, assetID, "failed VGP inspection "+inspectionID); err != nil {
		s.logger.Warn("asset out-of-service request failed",
			zap.String("asset_id", assetID),
			zap.String("inspection_id", inspectionID),
			zap.Error(err))
	}
}
