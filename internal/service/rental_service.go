package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/vgp-compliance-api/internal/dto"
	"github.com/noah-isme/vgp-compliance-api/internal/models"
	appErrors "github.com/noah-isme/vgp-compliance-api/pkg/errors"
)

type complianceClassifier interface {
	Classify(ctx context.Context, assetID string) (models.ComplianceStatus, error)
}

type assetCheckoutStore interface {
	GetByID(ctx context.Context, id string) (*models.Asset, error)
	TransitionStatus(ctx context.Context, id string, from, to models.AssetStatus, entry *models.AuditLog) (bool, error)
}

// RentalService gates checkouts on VGP compliance.
type RentalService struct {
	compliance complianceClassifier
	assets     assetCheckoutStore
	metrics    *MetricsService
	logger     *zap.Logger
}

// NewRentalService constructs the gate.
func NewRentalService(compliance complianceClassifier, assets assetCheckoutStore, metrics *MetricsService, logger *zap.Logger) *RentalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RentalService{compliance: compliance, assets: assets, metrics: metrics, logger: logger}
}

// CheckRentalAllowed classifies the asset now; only compliant assets may be
// rented.
func (s *RentalService) CheckRentalAllowed(ctx context.Context, assetID string) (*models.RentalDecision, error) {
	status, err := s.compliance.Classify(ctx, assetID)
	if err != nil {
		return nil, err
	}
	decision := &models.RentalDecision{AssetID: assetID, Allowed: !status.Blocking(), Status: status}
	switch status {
	case models.ComplianceOverdue:
		decision.Reason = "VGP inspection is overdue"
	case models.ComplianceNonCompliant:
		decision.Reason = "last VGP inspection failed"
	}
	s.metrics.ObserveRentalDecision(*decision)
	return decision, nil
}

// Checkout moves an available asset to in_use after the compliance gate. The
// gate runs immediately before the write; the write itself only succeeds if the
// asset is still available, and commits together with its audit entry.
func (s *RentalService) Checkout(ctx context.Context, assetID string, actorID string) (*dto.CheckoutResponse, error) {
	asset, err := s.assets.GetByID(ctx, assetID)
	if err != nil {
		return nil, storeError(err, "asset not found", "failed to load asset")
	}
	if asset.Status != models.AssetAvailable {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("asset is %s, not available", asset.Status))
	}

	decision, err := s.CheckRentalAllowed(ctx, asset.ID)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		s.logger.Info("checkout blocked by compliance gate",
			zap.String("asset_id", asset.ID),
			zap.String("compliance_status", string(decision.Status)))
		return nil, appErrors.ComplianceBlocked(asset.ID, string(decision.Status))
	}

	entry, err := auditEntry(actorID, models.AuditActionAssetCheckout, "asset", asset.ID, nil,
		map[string]string{"status": string(models.AssetAvailable)},
		map[string]string{"status": string(models.AssetInUse)})
	if err != nil {
		return nil, err
	}
	moved, err := s.assets.TransitionStatus(ctx, asset.ID, models.AssetAvailable, models.AssetInUse, entry)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to check out asset")
	}
	if !moved {
		return nil, appErrors.Clone(appErrors.ErrConflict, "asset is no longer available")
	}
	asset.Status = models.AssetInUse

	return &dto.CheckoutResponse{Asset: *asset, Decision: *decision}, nil
}
