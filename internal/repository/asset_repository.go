package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/vgp-compliance-api/internal/models"
)

// errStatusMoved aborts a transition whose asset left the expected status.
var errStatusMoved = errors.New("asset status moved")

// AssetRepository reads equipment rows and writes operational status changes.
type AssetRepository struct {
	db *sqlx.DB
}

// NewAssetRepository constructs the repository.
func NewAssetRepository(db *sqlx.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

// GetByID loads one asset.
func (r *AssetRepository) GetByID(ctx context.Context, id string) (*models.Asset, error) {
	const query = `SELECT id, name, category, status, updated_at FROM assets WHERE id = $1`
	var asset models.Asset
	if err := r.db.GetContext(ctx, &asset, query, id); err != nil {
		return nil, err
	}
	return &asset, nil
}

// UpdateStatus sets the operational status unconditionally.
func (r *AssetRepository) UpdateStatus(ctx context.Context, id string, status models.AssetStatus) error {
	const query = `UPDATE assets SET status = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update asset status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check asset status rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// TransitionStatus moves the asset from one status to another and records the
// entry in the same transaction. It returns false, with nothing written, when
// the asset was no longer in the expected status.
func (r *AssetRepository) TransitionStatus(ctx context.Context, id string, from, to models.AssetStatus, entry *models.AuditLog) (bool, error) {
	const query = `UPDATE assets SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`
	err := withAudit(ctx, r.db, entry, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, query, id, from, to, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("transition asset status: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("check asset transition rows: %w", err)
		}
		if affected == 0 {
			return errStatusMoved
		}
		return nil
	})
	if errors.Is(err, errStatusMoved) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
