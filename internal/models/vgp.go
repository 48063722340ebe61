package models

import (
	"strings"
	"time"
)

// VGPScheduleStatus tracks the lifecycle of an inspection obligation.
type VGPScheduleStatus string

const (
	VGPScheduleActive    VGPScheduleStatus = "active"
	VGPScheduleCompleted VGPScheduleStatus = "completed"
	VGPScheduleFailed    VGPScheduleStatus = "failed"
	VGPScheduleArchived  VGPScheduleStatus = "archived"
)

// VGPResult is the outcome recorded by an inspector.
type VGPResult string

const (
	VGPResultPassed      VGPResult = "passed"
	VGPResultConditional VGPResult = "conditional"
	VGPResultFailed      VGPResult = "failed"
)

// Valid reports whether r is a known inspection outcome.
func (r VGPResult) Valid() bool {
	switch r {
	case VGPResultPassed, VGPResultConditional, VGPResultFailed:
		return true
	default:
		return false
	}
}

// ComplianceStatus is derived on demand for an asset and never stored.
type ComplianceStatus string

const (
	ComplianceCompliant    ComplianceStatus = "compliant"
	ComplianceOverdue      ComplianceStatus = "overdue"
	ComplianceNonCompliant ComplianceStatus = "non_compliant"
)

// Blocking reports whether the status refuses a rental.
func (s ComplianceStatus) Blocking() bool {
	return s == ComplianceOverdue || s == ComplianceNonCompliant
}

// ScheduleUrgency is the badge shown for a single schedule.
type ScheduleUrgency string

const (
	UrgencyOverdue   ScheduleUrgency = "overdue"
	UrgencySoon      ScheduleUrgency = "soon"
	UrgencyCompliant ScheduleUrgency = "compliant"
)

// VGPSchedule is the recurring inspection obligation for one asset.
// Date-only columns hold midnight UTC calendar dates.
type VGPSchedule struct {
	ID                 string            `db:"id" json:"id"`
	AssetID            string            `db:"asset_id" json:"asset_id"`
	IntervalMonths     int               `db:"interval_months" json:"interval_months"`
	LastInspectionDate *time.Time        `db:"last_inspection_date" json:"last_inspection_date,omitempty"`
	NextDueDate        time.Time         `db:"next_due_date" json:"next_due_date"`
	Status             VGPScheduleStatus `db:"status" json:"status"`
	CreatedBy          string            `db:"created_by" json:"created_by"`
	Notes              *string           `db:"notes" json:"notes,omitempty"`
	ArchivedAt         *time.Time        `db:"archived_at" json:"archived_at,omitempty"`
	CreatedAt          time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time         `db:"updated_at" json:"updated_at"`
}

// Archived reports whether the schedule has been removed from compliance.
func (s *VGPSchedule) Archived() bool {
	return s != nil && s.ArchivedAt != nil
}

// VGPInspection is an immutable record of one completed inspection.
type VGPInspection struct {
	ID                  string    `db:"id" json:"id"`
	AssetID             string    `db:"asset_id" json:"asset_id"`
	ScheduleID          string    `db:"schedule_id" json:"schedule_id"`
	InspectionDate      time.Time `db:"inspection_date" json:"inspection_date"`
	InspectorName       string    `db:"inspector_name" json:"inspector_name"`
	InspectorCompany    string    `db:"inspector_company" json:"inspector_company"`
	CertificationNumber *string   `db:"certification_number" json:"certification_number,omitempty"`
	Result              VGPResult `db:"result" json:"result"`
	Findings            *string   `db:"findings" json:"findings,omitempty"`
	Observations        *string   `db:"observations" json:"observations,omitempty"`
	NextInspectionDate  time.Time `db:"next_inspection_date" json:"next_inspection_date"`
	CertificateURL      *string   `db:"certificate_url" json:"certificate_url,omitempty"`
	CreatedBy           string    `db:"created_by" json:"created_by"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
}

// HasCertificate reports whether a certificate link was supplied.
func (i VGPInspection) HasCertificate() bool {
	return i.CertificateURL != nil && strings.TrimSpace(*i.CertificateURL) != ""
}

// VGPScheduleFilter narrows schedule listings.
type VGPScheduleFilter struct {
	AssetID         string
	IncludeArchived bool
}

// VGPInspectionFilter narrows inspection listings. Zero dates are unbounded.
type VGPInspectionFilter struct {
	AssetID string
	From    time.Time
	To      time.Time
	Limit   int
}

// ScheduleDueUpdate carries the fields rewritten after an inspection.
type ScheduleDueUpdate struct {
	ScheduleID         string
	LastInspectionDate time.Time
	NextDueDate        time.Time
	Status             VGPScheduleStatus
	UpdatedAt          time.Time
}

// ComplianceEvaluation explains how an asset's status was derived.
type ComplianceEvaluation struct {
	AssetID           string           `json:"asset_id"`
	Status            ComplianceStatus `json:"status"`
	GoverningSchedule *VGPSchedule     `json:"governing_schedule,omitempty"`
	LastInspection    *VGPInspection   `json:"last_inspection,omitempty"`
	ActiveSchedules   int              `json:"active_schedules"`
	EvaluatedFor      time.Time        `json:"evaluated_for"`
}

// RentalDecision is the outcome of the compliance gate.
type RentalDecision struct {
	AssetID string           `json:"asset_id"`
	Allowed bool             `json:"allowed"`
	Status  ComplianceStatus `json:"status"`
	Reason  string           `json:"reason,omitempty"`
}
