package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/vgp-compliance-api/internal/dto"
	"github.com/noah-isme/vgp-compliance-api/internal/models"
	"github.com/noah-isme/vgp-compliance-api/internal/service"
	appErrors "github.com/noah-isme/vgp-compliance-api/pkg/errors"
	"github.com/noah-isme/vgp-compliance-api/pkg/response"
)

type complianceReportService interface {
	BuildReport(ctx context.Context, query dto.ComplianceReportQuery) (*models.ComplianceReport, error)
	Export(ctx context.Context, query dto.ComplianceReportQuery) (*service.ReportFile, error)
}

// ReportHandler exposes the regulatory compliance report.
type ReportHandler struct {
	reports complianceReportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports complianceReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Compliance godoc
// @Summary VGP compliance report numbers for a window
// @Description Windowed statistics plus the equipment overdue today.
// @Tags VGP Reports
// @Produce json
// @Param start query string true "Window start (YYYY-MM-DD, inclusive)"
// @Param end query string true "Window end (YYYY-MM-DD, inclusive)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /vgp/reports/compliance [get]
func (h *ReportHandler) Compliance(c *gin.Context) {
	var query dto.ComplianceReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid report query"))
		return
	}
	report, err := h.reports.BuildReport(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, report)
}

// Export godoc
// @Summary Download the VGP compliance report
// @Tags VGP Reports
// @Produce text/csv
// @Produce application/pdf
// @Param start query string true "Window start (YYYY-MM-DD, inclusive)"
// @Param end query string true "Window end (YYYY-MM-DD, inclusive)"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /vgp/reports/compliance/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	var query dto.ComplianceReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid report query"))
		return
	}
	file, err := h.reports.Export(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}
