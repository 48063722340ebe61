package main

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/vgp-compliance-api/internal/handler"
	"github.com/noah-isme/vgp-compliance-api/internal/middleware"
	"github.com/noah-isme/vgp-compliance-api/internal/models"
	"github.com/noah-isme/vgp-compliance-api/internal/repository"
	"github.com/noah-isme/vgp-compliance-api/internal/service"
)

type routeDeps struct {
	tokens      *service.TokenService
	audit       *repository.AuditRepository
	schedules   *handler.VGPScheduleHandler
	inspections *handler.VGPInspectionHandler
	compliance  *handler.ComplianceHandler
	reports     *handler.ReportHandler
}

func registerRoutes(api *gin.RouterGroup, deps routeDeps) {
	api.Use(middleware.JWT(deps.tokens))

	admins := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin)
	managers := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleManager)
	inspectors := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleManager, models.RoleInspector)

	vgp := api.Group("/vgp")
	{
		schedules := vgp.Group("/schedules")
		schedules.GET("", deps.schedules.List)
		schedules.GET("/:id", deps.schedules.Get)
		schedules.POST("", managers, deps.schedules.Create)
		schedules.PATCH("/:id/due-date", admins, deps.schedules.EditDueDate)
		schedules.POST("/:id/archive", admins, deps.schedules.Archive)
		schedules.POST("/:id/inspections", inspectors,
			middleware.Audit(deps.audit, models.AuditActionInspectionRecord, "vgp_schedule", "id"),
			deps.inspections.Record)

		assets := vgp.Group("/assets/:assetId")
		assets.GET("/inspections", deps.inspections.ListByAsset)
		assets.GET("/compliance", deps.compliance.Classify)
		assets.GET("/rental-check", deps.compliance.RentalCheck)

		reports := vgp.Group("/reports", managers)
		reports.GET("/compliance", deps.reports.Compliance)
		reports.GET("/compliance/export", deps.reports.Export)
	}

	api.POST("/assets/:assetId/checkout", deps.compliance.Checkout)
}
