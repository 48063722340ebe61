package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/vgp-compliance-api/internal/dto"
	"github.com/noah-isme/vgp-compliance-api/internal/models"
	"github.com/noah-isme/vgp-compliance-api/pkg/response"
)

type complianceService interface {
	Evaluate(ctx context.Context, assetID string) (*models.ComplianceEvaluation, error)
}

type rentalService interface {
	CheckRentalAllowed(ctx context.Context, assetID string) (*models.RentalDecision, error)
	Checkout(ctx context.Context, assetID string, actorID string) (*dto.CheckoutResponse, error)
}

// ComplianceHandler exposes the compliance badge, the rental gate and the
// gated checkout.
type ComplianceHandler struct {
	compliance complianceService
	rentals    rentalService
}

// NewComplianceHandler builds a new handler.
func NewComplianceHandler(compliance complianceService, rentals rentalService) *ComplianceHandler {
	return &ComplianceHandler{compliance: compliance, rentals: rentals}
}

// Classify godoc
// @Summary Current VGP compliance of an asset
// @Tags VGP Compliance
// @Produce json
// @Param assetId path string true "Asset ID"
// @Success 200 {object} response.Envelope
// @Router /vgp/assets/{assetId}/compliance [get]
func (h *ComplianceHandler) Classify(c *gin.Context) {
	eval, err := h.compliance.Evaluate(c.Request.Context(), c.Param("assetId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, eval)
}

// RentalCheck godoc
// @Summary Whether the asset may be rented now
// @Tags VGP Compliance
// @Produce json
// @Param assetId path string true "Asset ID"
// @Success 200 {object} response.Envelope
// @Router /vgp/assets/{assetId}/rental-check [get]
func (h *ComplianceHandler) RentalCheck(c *gin.Context) {
	decision, err := h.rentals.CheckRentalAllowed(c.Request.Context(), c.Param("assetId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, decision)
}

// Checkout godoc
// @Summary Check out an available asset
// @Description Refused with 409 COMPLIANCE_BLOCKED when the asset is overdue or non compliant.
// @Tags Assets
// @Produce json
// @Param assetId path string true "Asset ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /assets/{assetId}/checkout [post]
func (h *ComplianceHandler) Checkout(c *gin.Context) {
	result, err := h.rentals.Checkout(c.Request.Context(), c.Param("assetId"), actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}
