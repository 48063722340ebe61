package models

import "time"

// ReportFormat selects the rendered export.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// ReportWindow is an inclusive range of calendar dates.
type ReportWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ComplianceSummary holds the windowed statistics a regulatory report prints.
type ComplianceSummary struct {
	Total              int     `json:"total"`
	Passed             int     `json:"passed"`
	Conditional        int     `json:"conditional"`
	Failed             int     `json:"failed"`
	WithoutCertificate int     `json:"without_certificate"`
	ComplianceRate     float64 `json:"compliance_rate"`
}

// OverdueEquipment is an asset currently classified overdue.
type OverdueEquipment struct {
	AssetID     string    `json:"asset_id"`
	AssetName   string    `json:"asset_name,omitempty"`
	Category    string    `json:"category,omitempty"`
	ScheduleID  string    `json:"schedule_id"`
	NextDueDate time.Time `json:"next_due_date"`
	DaysOverdue int       `json:"days_overdue"`
}

// ComplianceReport combines windowed statistics with today's overdue list.
type ComplianceReport struct {
	Window      ReportWindow       `json:"window"`
	Summary     ComplianceSummary  `json:"summary"`
	Inspections []VGPInspection    `json:"inspections"`
	Overdue     []OverdueEquipment `json:"overdue_equipment"`
	GeneratedAt time.Time          `json:"generated_at"`
}
