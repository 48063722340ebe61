package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/vgp-compliance-api/internal/dto"
	"github.com/noah-isme/vgp-compliance-api/internal/models"
	appErrors "github.com/noah-isme/vgp-compliance-api/pkg/errors"
	"github.com/noah-isme/vgp-compliance-api/pkg/response"
)

type vgpInspectionService interface {
	Record(ctx context.Context, scheduleID string, req dto.RecordInspectionRequest, actorID string) (*dto.RecordInspectionResponse, error)
	List(ctx context.Context, assetID, from, to string) ([]models.VGPInspection, error)
}

// VGPInspectionHandler exposes inspection recording and history.
type VGPInspectionHandler struct {
	service vgpInspectionService
}

// NewVGPInspectionHandler builds a new handler.
func NewVGPInspectionHandler(service vgpInspectionService) *VGPInspectionHandler {
	return &VGPInspectionHandler{service: service}
}

// Record godoc
// @Summary Record a completed inspection
// @Description Advances the schedule due date. A failed result also requests the asset be taken out of service.
// @Tags VGP Inspections
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param payload body dto.RecordInspectionRequest true "Inspection form"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /vgp/schedules/{id}/inspections [post]
func (h *VGPInspectionHandler) Record(c *gin.Context) {
	var req dto.RecordInspectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid inspection payload"))
		return
	}
	result, err := h.service.Record(c.Request.Context(), c.Param("id"), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListByAsset godoc
// @Summary Inspection history of an asset, newest first
// @Tags VGP Inspections
// @Produce json
// @Param assetId path string true "Asset ID"
// @Param from query string false "Earliest inspection date (YYYY-MM-DD)"
// @Param to query string false "Latest inspection date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /vgp/assets/{assetId}/inspections [get]
func (h *VGPInspectionHandler) ListByAsset(c *gin.Context) {
	items, err := h.service.List(c.Request.Context(), c.Param("assetId"), c.Query("from"), c.Query("to"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, items, len(items))
}
