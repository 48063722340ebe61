package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/vgp-compliance-api/internal/dto"
	"github.com/noah-isme/vgp-compliance-api/internal/models"
	"github.com/noah-isme/vgp-compliance-api/pkg/datemath"
	appErrors "github.com/noah-isme/vgp-compliance-api/pkg/errors"
)

const (
	// ConditionalRecheckMonths is the fixed re-check delay after a conditional pass.
	ConditionalRecheckMonths = 6
	// FailedRecheckDays is the fixed re-inspection window after a failure.
	FailedRecheckDays = 30
)

type vgpScheduleStore interface {
	Create(ctx context.Context, schedule *models.VGPSchedule, entry *models.AuditLog) error
	GetByID(ctx context.Context, id string) (*models.VGPSchedule, error)
	ListByAsset(ctx context.Context, filter models.VGPScheduleFilter) ([]models.VGPSchedule, error)
	UpdateDueDate(ctx context.Context, id string, nextDue time.Time, updatedAt time.Time, entry *models.AuditLog) error
	Archive(ctx context.Context, id string, archivedAt time.Time, entry *models.AuditLog) (*models.VGPSchedule, error)
}

type assetReader interface {
	GetByID(ctx context.Context, id string) (*models.Asset, error)
}

// VGPScheduleConfig tunes schedule validation and badges.
type VGPScheduleConfig struct {
	SoonWindowDays   int
	MaxBackdateYears int
}

// VGPScheduleService owns the schedule lifecycle: creation, due-date rules,
// administrative overrides, archival and urgency badges. Every write hands its
// audit entry to the store, which commits both or neither.
type VGPScheduleService struct {
	schedules vgpScheduleStore
	assets    assetReader
	clock     *datemath.Clock
	validator *validator.Validate
	logger    *zap.Logger
	cfg       VGPScheduleConfig
}

// NewVGPScheduleService constructs the service.
func NewVGPScheduleService(schedules vgpScheduleStore, assets assetReader, clock *datemath.Clock, validate *validator.Validate, logger *zap.Logger, cfg VGPScheduleConfig) *VGPScheduleService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SoonWindowDays <= 0 {
		cfg.SoonWindowDays = 30
	}
	if cfg.MaxBackdateYears <= 0 {
		cfg.MaxBackdateYears = 5
	}
	return &VGPScheduleService{
		schedules: schedules,
		assets:    assets,
		clock:     clock,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// Create starts monitoring an asset. Without a last inspection date the cycle
// is anchored on today.
func (s *VGPScheduleService) Create(ctx context.Context, req dto.CreateScheduleRequest, actorID string) (*dto.ScheduleView, error) {
	var violations appErrors.Violations
	if err := collectViolations(s.validator, req, &violations); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}

	today := s.clock.Today()
	anchor := today
	var last *time.Time
	if req.LastInspectionDate != nil && *req.LastInspectionDate != "" {
		if parsed, err := datemath.Parse(*req.LastInspectionDate); err == nil {
			switch {
			case datemath.Before(today, parsed):
				violations.Add("last_inspection_date", "cannot be in the future")
			case datemath.Before(parsed, datemath.AddMonths(today, -12*s.cfg.MaxBackdateYears)):
				violations.Add("last_inspection_date", "is implausibly old")
			}
			anchor = parsed
			last = &parsed
		}
	}
	if err := violations.Err(); err != nil {
		return nil, err
	}

	assetID := strings.TrimSpace(req.AssetID)
	if _, err := s.assets.GetByID(ctx, assetID); err != nil {
		return nil, storeError(err, "asset not found", "failed to load asset")
	}

	now := s.clock.Now()
	schedule := &models.VGPSchedule{
		ID:                 uuid.NewString(),
		AssetID:            assetID,
		IntervalMonths:     req.IntervalMonths,
		LastInspectionDate: last,
		NextDueDate:        datemath.AddMonths(anchor, req.IntervalMonths),
		Status:             models.VGPScheduleActive,
		CreatedBy:          strings.TrimSpace(req.CreatedBy),
		Notes:              trimmedOptional(req.Notes),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	entry, err := auditEntry(actorID, models.AuditActionScheduleCreate, "vgp_schedule", schedule.ID, nil, nil, schedule)
	if err != nil {
		return nil, err
	}
	if err := s.schedules.Create(ctx, schedule, entry); err != nil {
		return nil, appErrors.Persistence(err, "failed to create schedule")
	}

	s.logger.Info("vgp schedule created",
		zap.String("schedule_id", schedule.ID),
		zap.String("asset_id", schedule.AssetID),
		zap.Int("interval_months", schedule.IntervalMonths),
		zap.String("next_due_date", datemath.Format(schedule.NextDueDate)))

	view := s.View(*schedule)
	return &view, nil
}

// Get returns a schedule with its badge, archived schedules included.
func (s *VGPScheduleService) Get(ctx context.Context, id string) (*dto.ScheduleView, error) {
	schedule, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "schedule not found", "failed to load schedule")
	}
	view := s.View(*schedule)
	return &view, nil
}

// List returns an asset's schedules, most urgent first.
func (s *VGPScheduleService) List(ctx context.Context, assetID string, includeArchived bool) ([]dto.ScheduleView, error) {
	if strings.TrimSpace(assetID) == "" {
		return nil, appErrors.Validation([]appErrors.FieldError{{Field: "assetId", Message: "is required"}})
	}
	schedules, err := s.schedules.ListByAsset(ctx, models.VGPScheduleFilter{AssetID: assetID, IncludeArchived: includeArchived})
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to list schedules")
	}
	views := make([]dto.ScheduleView, 0, len(schedules))
	for _, schedule := range schedules {
		views = append(views, s.View(schedule))
	}
	return views, nil
}

// EditDueDate overrides the due date of a live schedule. The reason and the
// previous date are stored in the audit trail; if that entry cannot be written
// the due date is left untouched.
func (s *VGPScheduleService) EditDueDate(ctx context.Context, id string, req dto.EditDueDateRequest, actorID string) (*dto.ScheduleView, error) {
	var violations appErrors.Violations
	if err := collectViolations(s.validator, req, &violations); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid due date payload")
	}
	if err := violations.Err(); err != nil {
		return nil, err
	}
	newDue, err := datemath.Parse(req.NextDueDate)
	if err != nil {
		return nil, appErrors.Validation([]appErrors.FieldError{{Field: "next_due_date", Message: "must be a date formatted YYYY-MM-DD"}})
	}

	schedule, err := s.liveSchedule(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := schedule.NextDueDate
	reason := strings.TrimSpace(req.Reason)
	entry, err := auditEntry(actorID, models.AuditActionScheduleDueEdit, "vgp_schedule", schedule.ID, &reason,
		map[string]string{"next_due_date": datemath.Format(previous)},
		map[string]string{"next_due_date": datemath.Format(newDue)})
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if err := s.schedules.UpdateDueDate(ctx, schedule.ID, newDue, now, entry); err != nil {
		return nil, storeError(err, "schedule not found", "failed to update due date")
	}
	schedule.NextDueDate = newDue
	schedule.UpdatedAt = now

	s.logger.Info("vgp due date overridden",
		zap.String("schedule_id", schedule.ID),
		zap.String("from", datemath.Format(previous)),
		zap.String("to", datemath.Format(newDue)),
		zap.String("reason", reason))

	view := s.View(*schedule)
	return &view, nil
}

// Archive removes a schedule from every compliance computation. Archiving an
// archived schedule returns it unchanged.
func (s *VGPScheduleService) Archive(ctx context.Context, id string, actorID string) (*dto.ScheduleView, error) {
	current, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "schedule not found", "failed to load schedule")
	}
	if current.Archived() {
		view := s.View(*current)
		return &view, nil
	}

	now := s.clock.Now()
	entry, err := auditEntry(actorID, models.AuditActionScheduleArchive, "vgp_schedule", current.ID, nil,
		map[string]string{"status": string(current.Status)},
		map[string]string{"archived_at": now.UTC().Format(time.RFC3339)})
	if err != nil {
		return nil, err
	}
	schedule, err := s.schedules.Archive(ctx, id, now, entry)
	if err != nil {
		return nil, storeError(err, "schedule not found", "failed to archive schedule")
	}

	s.logger.Info("vgp schedule archived", zap.String("schedule_id", schedule.ID), zap.String("asset_id", schedule.AssetID))
	view := s.View(*schedule)
	return &view, nil
}

// Classify returns the urgency badge of a single schedule.
func (s *VGPScheduleService) Classify(schedule models.VGPSchedule) models.ScheduleUrgency {
	return ClassifySchedule(schedule, s.clock.Today(), s.cfg.SoonWindowDays)
}

// View decorates a schedule with its badge and the days left until it is due.
func (s *VGPScheduleService) View(schedule models.VGPSchedule) dto.ScheduleView {
	today := s.clock.Today()
	return dto.ScheduleView{
		VGPSchedule:  schedule,
		Urgency:      ClassifySchedule(schedule, today, s.cfg.SoonWindowDays),
		DaysUntilDue: datemath.DaysBetween(today, schedule.NextDueDate),
	}
}

func (s *VGPScheduleService) liveSchedule(ctx context.Context, id string) (*models.VGPSchedule, error) {
	schedule, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "schedule not found", "failed to load schedule")
	}
	if schedule.Archived() {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule is archived")
	}
	return schedule, nil
}

// RecomputeDueDate applies the result-dependent offset to the inspection date:
// passed advances by the schedule interval, conditional by a fixed six months,
// failed by a fixed thirty days and flags the schedule as failed. Callers
// validate the result first; any other value panics.
func RecomputeDueDate(schedule models.VGPSchedule, inspectionDate time.Time, result models.VGPResult) (time.Time, models.VGPScheduleStatus) {
	switch result {
	case models.VGPResultPassed:
		return datemath.AddMonths(inspectionDate, schedule.IntervalMonths), models.VGPScheduleActive
	case models.VGPResultConditional:
		return datemath.AddMonths(inspectionDate, ConditionalRecheckMonths), models.VGPScheduleActive
	case models.VGPResultFailed:
		return datemath.AddDays(inspectionDate, FailedRecheckDays), models.VGPScheduleFailed
	default:
		panic(fmt.Sprintf("vgp: no due-date rule for inspection result %q", result))
	}
}

// ClassifySchedule derives the badge of one schedule relative to today.
func ClassifySchedule(schedule models.VGPSchedule, today time.Time, soonWindowDays int) models.ScheduleUrgency {
	if isOverdue(schedule, today) {
		return models.UrgencyOverdue
	}
	if days := datemath.DaysBetween(today, schedule.NextDueDate); days >= 0 && days <= soonWindowDays {
		return models.UrgencySoon
	}
	return models.UrgencyCompliant
}

func trimmedOptional(value *string) *string {
	if value == nil {
		return nil
	}
	return optionalString(strings.TrimSpace(*value))
}
