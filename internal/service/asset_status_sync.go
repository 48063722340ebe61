package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/vgp-compliance-api/internal/models"
	"github.com/noah-isme/vgp-compliance-api/pkg/jobs"
)

// JobTypeAssetOutOfService tags queued status writes.
const JobTypeAssetOutOfService = "asset.out_of_service"

type assetStatusWriter interface {
	UpdateStatus(ctx context.Context, id string, status models.AssetStatus) error
}

type statusJobDispatcher interface {
	Enqueue(job jobs.Job) error
}

// AssetStatusRequest is the queued payload.
type AssetStatusRequest struct {
	AssetID string
	Status  models.AssetStatus
	Reason  string
}

// AssetStatusSync pushes operational status changes to the asset registry on
// the background queue. Without a queue the write happens inline.
type AssetStatusSync struct {
	assets  assetStatusWriter
	queue   statusJobDispatcher
	metrics *MetricsService
	logger  *zap.Logger
}

// NewAssetStatusSync constructs the sync. Attach a queue with UseQueue once the
// queue has been built around Handle.
func NewAssetStatusSync(assets assetStatusWriter, metrics *MetricsService, logger *zap.Logger) *AssetStatusSync {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssetStatusSync{assets: assets, metrics: metrics, logger: logger}
}

// UseQueue routes future requests through the queue.
func (s *AssetStatusSync) UseQueue(queue statusJobDispatcher) {
	s.queue = queue
}

// RequestOutOfService asks for the asset to be taken out of service.
func (s *AssetStatusSync) RequestOutOfService(ctx context.Context, assetID, reason string) error {
	req := AssetStatusRequest{AssetID: assetID, Status: models.AssetOutOfService, Reason: reason}
	if s.queue == nil {
		return s.apply(ctx, req)
	}
	job := jobs.Job{ID: uuid.NewString(), Type: JobTypeAssetOutOfService, Payload: req}
	if err := s.queue.Enqueue(job); err != nil {
		return fmt.Errorf("enqueue status change for asset %s: %w", assetID, err)
	}
	return nil
}

// Handle processes a queued status change.
func (s *AssetStatusSync) Handle(ctx context.Context, job jobs.Job) error {
	req, ok := job.Payload.(AssetStatusRequest)
	if !ok {
		return fmt.Errorf("job %s: unexpected payload %T", job.ID, job.Payload)
	}
	return s.apply(ctx, req)
}

func (s *AssetStatusSync) apply(ctx context.Context, req AssetStatusRequest) error {
	err := s.assets.UpdateStatus(ctx, req.AssetID, req.Status)
	s.metrics.ObserveStatusSync(err)
	if err != nil {
		return fmt.Errorf("set asset %s to %s: %w", req.AssetID, req.Status, err)
	}
	s.logger.Info("asset status synced",
		zap.String("asset_id", req.AssetID),
		zap.String("status", string(req.Status)),
		zap.String("reason", req.Reason))
	return nil
}
