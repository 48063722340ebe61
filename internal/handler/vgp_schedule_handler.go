package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/vgp-compliance-api/internal/dto"
	appErrors "github.com/noah-isme/vgp-compliance-api/pkg/errors"
	"github.com/noah-isme/vgp-compliance-api/pkg/response"
)

type vgpScheduleService interface {
	Create(ctx context.Context, req dto.CreateScheduleRequest, actorID string) (*dto.ScheduleView, error)
	Get(ctx context.Context, id string) (*dto.ScheduleView, error)
	List(ctx context.Context, assetID string, includeArchived bool) ([]dto.ScheduleView, error)
	EditDueDate(ctx context.Context, id string, req dto.EditDueDateRequest, actorID string) (*dto.ScheduleView, error)
	Archive(ctx context.Context, id string, actorID string) (*dto.ScheduleView, error)
}

// VGPScheduleHandler exposes schedule management endpoints.
type VGPScheduleHandler struct {
	service vgpScheduleService
}

// NewVGPScheduleHandler builds a new handler.
func NewVGPScheduleHandler(service vgpScheduleService) *VGPScheduleHandler {
	return &VGPScheduleHandler{service: service}
}

// Create godoc
// @Summary Start VGP monitoring for an asset
// @Tags VGP Schedules
// @Accept json
// @Produce json
// @Param payload body dto.CreateScheduleRequest true "Schedule payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /vgp/schedules [post]
func (h *VGPScheduleHandler) Create(c *gin.Context) {
	var req dto.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid schedule payload"))
		return
	}
	if strings.TrimSpace(req.CreatedBy) == "" {
		req.CreatedBy = actorName(c)
	}
	schedule, err := h.service.Create(c.Request.Context(), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, schedule)
}

// List godoc
// @Summary List an asset's schedules, most urgent first
// @Tags VGP Schedules
// @Produce json
// @Param assetId query string true "Asset ID"
// @Param includeArchived query bool false "Include archived schedules"
// @Success 200 {object} response.Envelope
// @Router /vgp/schedules [get]
func (h *VGPScheduleHandler) List(c *gin.Context) {
	includeArchived, _ := strconv.ParseBool(c.DefaultQuery("includeArchived", "false"))
	schedules, err := h.service.List(c.Request.Context(), c.Query("assetId"), includeArchived)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, schedules, len(schedules))
}

// Get godoc
// @Summary Get a schedule
// @Tags VGP Schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /vgp/schedules/{id} [get]
func (h *VGPScheduleHandler) Get(c *gin.Context) {
	schedule, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, schedule)
}

// EditDueDate godoc
// @Summary Override a schedule due date
// @Description Requires a reason, stored in the audit trail.
// @Tags VGP Schedules
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param payload body dto.EditDueDateRequest true "New due date and reason"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /vgp/schedules/{id}/due-date [patch]
func (h *VGPScheduleHandler) EditDueDate(c *gin.Context) {
	var req dto.EditDueDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid due date payload"))
		return
	}
	schedule, err := h.service.EditDueDate(c.Request.Context(), c.Param("id"), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, schedule)
}

// Archive godoc
// @Summary Stop monitoring (soft delete)
// @Tags VGP Schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /vgp/schedules/{id}/archive [post]
func (h *VGPScheduleHandler) Archive(c *gin.Context) {
	schedule, err := h.service.Archive(c.Request.Context(), c.Param("id"), actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, schedule)
}
