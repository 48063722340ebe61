package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/vgp-compliance-api/internal/models"
)

const vgpInspectionColumns = `id, asset_id, schedule_id, inspection_date, inspector_name, inspector_company,
       certification_number, result, findings, observations, next_inspection_date, certificate_url,
       created_by, created_at`

// VGPInspectionRepository stores the append-only inspection history.
type VGPInspectionRepository struct {
	db *sqlx.DB
}

// NewVGPInspectionRepository constructs the repository.
func NewVGPInspectionRepository(db *sqlx.DB) *VGPInspectionRepository {
	return &VGPInspectionRepository{db: db}
}

// RecordWithSchedule inserts the inspection and advances its schedule in one
// transaction. sql.ErrNoRows means the schedule vanished or was archived.
func (r *VGPInspectionRepository) RecordWithSchedule(ctx context.Context, inspection *models.VGPInspection, update models.ScheduleDueUpdate) (err error) {
	if inspection.ID == "" {
		inspection.ID = uuid.NewString()
	}
	if inspection.CreatedAt.IsZero() {
		inspection.CreatedAt = time.Now().UTC()
	}
	if update.UpdatedAt.IsZero() {
		update.UpdatedAt = inspection.CreatedAt
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin inspection transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const updateQuery = `UPDATE vgp_schedules
	SET last_inspection_date = $2, next_due_date = $3, status = $4, updated_at = $5
	WHERE id = $1 AND archived_at IS NULL`
	res, err := tx.ExecContext(ctx, updateQuery, update.ScheduleID, update.LastInspectionDate, update.NextDueDate, update.Status, update.UpdatedAt)
	if err != nil {
		return fmt.Errorf("advance vgp schedule: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check vgp schedule rows: %w", err)
	}
	if affected == 0 {
		err = sql.ErrNoRows
		return err
	}

	const insertQuery = `INSERT INTO vgp_inspections
	(id, asset_id, schedule_id, inspection_date, inspector_name, inspector_company, certification_number, result,
	 findings, observations, next_inspection_date, certificate_url, created_by, created_at)
	VALUES (:id, :asset_id, :schedule_id, :inspection_date, :inspector_name, :inspector_company, :certification_number, :result,
	 :findings, :observations, :next_inspection_date, :certificate_url, :created_by, :created_at)`
	if _, err = tx.NamedExecContext(ctx, insertQuery, inspection); err != nil {
		return fmt.Errorf("insert vgp inspection: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit vgp inspection: %w", err)
	}
	return nil
}

// List returns inspections newest first.
func (r *VGPInspectionRepository) List(ctx context.Context, filter models.VGPInspectionFilter) ([]models.VGPInspection, error) {
	builder := strings.Builder{}
	builder.WriteString(`SELECT ` + vgpInspectionColumns + ` FROM vgp_inspections`)
	args := make([]interface{}, 0, 3)
	conditions := make([]string, 0, 3)

	if filter.AssetID != "" {
		args = append(args, filter.AssetID)
		conditions = append(conditions, fmt.Sprintf("asset_id = $%d", len(args)))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		conditions = append(conditions, fmt.Sprintf("inspection_date >= $%d", len(args)))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		conditions = append(conditions, fmt.Sprintf("inspection_date <= $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY inspection_date DESC, created_at DESC")
	if filter.Limit > 0 {
		builder.WriteString(fmt.Sprintf(" LIMIT %d", filter.Limit))
	}

	var records []models.VGPInspection
	if err := r.db.SelectContext(ctx, &records, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list vgp inspections: %w", err)
	}
	return records, nil
}

// LatestByAsset returns the most recent inspection, or nil when none exists.
func (r *VGPInspectionRepository) LatestByAsset(ctx context.Context, assetID string) (*models.VGPInspection, error) {
	query := `SELECT ` + vgpInspectionColumns + ` FROM vgp_inspections
	WHERE asset_id = $1 ORDER BY inspection_date DESC, created_at DESC LIMIT 1`
	var inspection models.VGPInspection
	if err := r.db.GetContext(ctx, &inspection, query, assetID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest vgp inspection: %w", err)
	}
	return &inspection, nil
}
