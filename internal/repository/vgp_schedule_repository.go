package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/vgp-compliance-api/internal/models"
)

const vgpScheduleColumns = `id, asset_id, interval_months, last_inspection_date, next_due_date, status,
       created_by, notes, archived_at, created_at, updated_at`

// VGPScheduleRepository persists inspection obligations.
type VGPScheduleRepository struct {
	db *sqlx.DB
}

// NewVGPScheduleRepository constructs the repository.
func NewVGPScheduleRepository(db *sqlx.DB) *VGPScheduleRepository {
	return &VGPScheduleRepository{db: db}
}

// Create inserts a new schedule together with its audit entry.
func (r *VGPScheduleRepository) Create(ctx context.Context, schedule *models.VGPSchedule, entry *models.AuditLog) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = now
	}
	if schedule.UpdatedAt.IsZero() {
		schedule.UpdatedAt = schedule.CreatedAt
	}
	if entry != nil && entry.ResourceID == nil {
		entry.ResourceID = &schedule.ID
	}
	const query = `INSERT INTO vgp_schedules
	(id, asset_id, interval_months, last_inspection_date, next_due_date, status, created_by, notes, archived_at, created_at, updated_at)
	VALUES (:id, :asset_id, :interval_months, :last_inspection_date, :next_due_date, :status, :created_by, :notes, :archived_at, :created_at, :updated_at)`
	return withAudit(ctx, r.db, entry, func(tx *sqlx.Tx) error {
		if _, err := tx.NamedExecContext(ctx, query, schedule); err != nil {
			return fmt.Errorf("create vgp schedule: %w", err)
		}
		return nil
	})
}

// GetByID loads a schedule including archived ones.
func (r *VGPScheduleRepository) GetByID(ctx context.Context, id string) (*models.VGPSchedule, error) {
	query := `SELECT ` + vgpScheduleColumns + ` FROM vgp_schedules WHERE id = $1`
	var schedule models.VGPSchedule
	if err := r.db.GetContext(ctx, &schedule, query, id); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// ListByAsset returns the asset's schedules, most urgent first.
func (r *VGPScheduleRepository) ListByAsset(ctx context.Context, filter models.VGPScheduleFilter) ([]models.VGPSchedule, error) {
	query := `SELECT ` + vgpScheduleColumns + ` FROM vgp_schedules WHERE asset_id = $1`
	if !filter.IncludeArchived {
		query += ` AND archived_at IS NULL`
	}
	query += ` ORDER BY next_due_date ASC, created_at ASC`

	var schedules []models.VGPSchedule
	if err := r.db.SelectContext(ctx, &schedules, query, filter.AssetID); err != nil {
		return nil, fmt.Errorf("list vgp schedules: %w", err)
	}
	return schedules, nil
}

// UpdateDueDate overrides next_due_date on a live schedule. The entry carrying
// the justification is written in the same transaction.
func (r *VGPScheduleRepository) UpdateDueDate(ctx context.Context, id string, nextDue time.Time, updatedAt time.Time, entry *models.AuditLog) error {
	const query = `UPDATE vgp_schedules SET next_due_date = $2, updated_at = $3 WHERE id = $1 AND archived_at IS NULL`
	return withAudit(ctx, r.db, entry, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, query, id, nextDue, updatedAt)
		if err != nil {
			return fmt.Errorf("update vgp due date: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("check vgp due date rows: %w", err)
		}
		if affected == 0 {
			return sql.ErrNoRows
		}
		return nil
	})
}

// Archive stamps archived_at once and returns the stored row. Archiving an
// archived schedule keeps its original timestamp.
func (r *VGPScheduleRepository) Archive(ctx context.Context, id string, archivedAt time.Time, entry *models.AuditLog) (*models.VGPSchedule, error) {
	query := `UPDATE vgp_schedules
	SET archived_at = COALESCE(archived_at, $2),
	    status = 'archived',
	    updated_at = CASE WHEN archived_at IS NULL THEN $2 ELSE updated_at END
	WHERE id = $1
	RETURNING ` + vgpScheduleColumns
	var schedule models.VGPSchedule
	err := withAudit(ctx, r.db, entry, func(tx *sqlx.Tx) error {
		return tx.GetContext(ctx, &schedule, query, id, archivedAt)
	})
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

// ListOverdueAssetIDs returns assets holding at least one live schedule whose
// due date precedes today.
func (r *VGPScheduleRepository) ListOverdueAssetIDs(ctx context.Context, today time.Time) ([]string, error) {
	const query = `SELECT DISTINCT asset_id FROM vgp_schedules
	WHERE archived_at IS NULL AND status <> 'completed' AND next_due_date < $1
	ORDER BY asset_id`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, today); err != nil {
		return nil, fmt.Errorf("list overdue assets: %w", err)
	}
	return ids, nil
}
