package dto

import "github.com/noah-isme/vgp-compliance-api/internal/models"

// CreateScheduleRequest starts VGP monitoring for an asset. Dates use YYYY-MM-DD.
type CreateScheduleRequest struct {
	AssetID            string  `json:"asset_id" validate:"notblank"`
	IntervalMonths     int     `json:"interval_months" validate:"min=1"`
	LastInspectionDate *string `json:"last_inspection_date" validate:"omitempty,datetime=2006-01-02"`
	CreatedBy          string  `json:"created_by" validate:"notblank"`
	Notes              *string `json:"notes"`
}

// RecordInspectionRequest captures a completed inspection form.
type RecordInspectionRequest struct {
	InspectionDate      string  `json:"inspection_date" validate:"required,datetime=2006-01-02"`
	InspectorName       string  `json:"inspector_name" validate:"notblank"`
	InspectorCompany    string  `json:"inspector_company" validate:"notblank"`
	CertificationNumber *string `json:"certification_number"`
	Result              string  `json:"result" validate:"required,oneof=passed conditional failed"`
	Findings            *string `json:"findings"`
	Observations        *string `json:"observations"`
	CertificateURL      *string `json:"certificate_url" validate:"omitempty,url"`
}

// EditDueDateRequest overrides a schedule due date, e.g. for a granted extension.
type EditDueDateRequest struct {
	NextDueDate string `json:"next_due_date" validate:"required,datetime=2006-01-02"`
	Reason      string `json:"reason" validate:"notblank"`
}

// ScheduleView decorates a schedule with its urgency badge.
type ScheduleView struct {
	models.VGPSchedule
	Urgency      models.ScheduleUrgency `json:"urgency"`
	DaysUntilDue int                    `json:"days_until_due"`
}

// RecordInspectionResponse returns the stored inspection and updated schedule.
type RecordInspectionResponse struct {
	Inspection models.VGPInspection `json:"inspection"`
	Schedule   models.VGPSchedule   `json:"schedule"`
}

// ComplianceReportQuery holds report window parameters.
type ComplianceReportQuery struct {
	Start  string `form:"start" validate:"required,datetime=2006-01-02"`
	End    string `form:"end" validate:"required,datetime=2006-01-02"`
	Format string `form:"format" validate:"omitempty,oneof=csv pdf"`
}

// CheckoutResponse reports a gated checkout.
type CheckoutResponse struct {
	Asset    models.Asset          `json:"asset"`
	Decision models.RentalDecision `json:"decision"`
}
