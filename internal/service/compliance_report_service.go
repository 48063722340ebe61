package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/vgp-compliance-api/internal/dto"
	"github.com/noah-isme/vgp-compliance-api/internal/models"
	"github.com/noah-isme/vgp-compliance-api/pkg/datemath"
	appErrors "github.com/noah-isme/vgp-compliance-api/pkg/errors"
	"github.com/noah-isme/vgp-compliance-api/pkg/export"
)

type reportInspectionReader interface {
	List(ctx context.Context, filter models.VGPInspectionFilter) ([]models.VGPInspection, error)
}

type overdueAssetLister interface {
	ListOverdueAssetIDs(ctx context.Context, today time.Time) ([]string, error)
}

type complianceEvaluator interface {
	Evaluate(ctx context.Context, assetID string) (*models.ComplianceEvaluation, error)
}

type reportCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type csvRenderer interface {
	RenderSections(sections []export.Section) ([]byte, error)
}

type pdfRenderer interface {
	RenderSections(title, subtitle string, sections []export.Section) ([]byte, error)
}

// ReportFile is a rendered compliance report.
type ReportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ComplianceReportService reduces inspections to the numbers a regulatory
// report prints and lists the equipment that is overdue today.
type ComplianceReportService struct {
	inspections reportInspectionReader
	overdue     overdueAssetLister
	compliance  complianceEvaluator
	assets      assetReader
	cache       reportCache
	cacheTTL    time.Duration
	csv         csvRenderer
	pdf         pdfRenderer
	clock       *datemath.Clock
	validator   *validator.Validate
	logger      *zap.Logger
}

// ComplianceReportDeps groups the report collaborators. Cache, CSV and PDF are
// optional.
type ComplianceReportDeps struct {
	Inspections reportInspectionReader
	Overdue     overdueAssetLister
	Compliance  complianceEvaluator
	Assets      assetReader
	Cache       reportCache
	CacheTTL    time.Duration
	CSV         csvRenderer
	PDF         pdfRenderer
}

// NewComplianceReportService constructs the aggregator.
func NewComplianceReportService(deps ComplianceReportDeps, clock *datemath.Clock, validate *validator.Validate, logger *zap.Logger) *ComplianceReportService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.CSV == nil {
		deps.CSV = export.NewCSVExporter()
	}
	if deps.PDF == nil {
		deps.PDF = export.NewPDFExporter()
	}
	return &ComplianceReportService{
		inspections: deps.Inspections,
		overdue:     deps.Overdue,
		compliance:  deps.Compliance,
		assets:      deps.Assets,
		cache:       deps.Cache,
		cacheTTL:    deps.CacheTTL,
		csv:         deps.CSV,
		pdf:         deps.PDF,
		clock:       clock,
		validator:   validate,
		logger:      logger,
	}
}

// Summarize counts the inspections dated inside the inclusive window. The
// result does not depend on input order.
func Summarize(inspections []models.VGPInspection, window models.ReportWindow) models.ComplianceSummary {
	var summary models.ComplianceSummary
	for _, inspection := range inspections {
		if !datemath.Within(inspection.InspectionDate, window.Start, window.End) {
			continue
		}
		summary.Total++
		switch inspection.Result {
		case models.VGPResultPassed:
			summary.Passed++
		case models.VGPResultConditional:
			summary.Conditional++
		case models.VGPResultFailed:
			summary.Failed++
		}
		if !inspection.HasCertificate() {
			summary.WithoutCertificate++
		}
	}
	summary.ComplianceRate = ComplianceRate(summary.Passed, summary.Total)
	return summary
}

// ComplianceRate returns passed/total as a percentage rounded half-up to one
// decimal, computed in integer tenths so 0.05 boundaries round exactly.
func ComplianceRate(passed, total int) float64 {
	if total <= 0 {
		return 0
	}
	tenths := (2*passed*1000 + total) / (2 * total)
	return float64(tenths) / 10
}

// FormatRateFR renders a rate with one decimal and a comma separator.
func FormatRateFR(rate float64) string {
	return strings.Replace(strconv.FormatFloat(rate, 'f', 1, 64), ".", ",", 1)
}

// ParseWindow validates report query dates into an inclusive window.
func (s *ComplianceReportService) ParseWindow(query dto.ComplianceReportQuery) (models.ReportWindow, error) {
	var violations appErrors.Violations
	if err := collectViolations(s.validator, query, &violations); err != nil {
		return models.ReportWindow{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report query")
	}
	if err := violations.Err(); err != nil {
		return models.ReportWindow{}, err
	}
	start, err := datemath.Parse(query.Start)
	if err != nil {
		violations.Add("start", "must be a date formatted YYYY-MM-DD")
	}
	end, err := datemath.Parse(query.End)
	if err != nil {
		violations.Add("end", "must be a date formatted YYYY-MM-DD")
	}
	if len(violations) == 0 && end.Before(start) {
		violations.Add("end", "must not be before start")
	}
	if err := violations.Err(); err != nil {
		return models.ReportWindow{}, err
	}
	return models.ReportWindow{Start: start, End: end}, nil
}

// BuildReport loads the window's inspections, summarizes them and attaches the
// equipment overdue today. The cache holds the window's inspection list; the
// summary is always computed from the list the report prints.
func (s *ComplianceReportService) BuildReport(ctx context.Context, query dto.ComplianceReportQuery) (*models.ComplianceReport, error) {
	window, err := s.ParseWindow(query)
	if err != nil {
		return nil, err
	}

	inspections, err := s.windowInspections(ctx, window)
	if err != nil {
		return nil, err
	}
	summary := Summarize(inspections, window)

	overdue, err := s.OverdueEquipment(ctx)
	if err != nil {
		return nil, err
	}

	return &models.ComplianceReport{
		Window:      window,
		Summary:     summary,
		Inspections: inspections,
		Overdue:     overdue,
		GeneratedAt: s.clock.Now(),
	}, nil
}

// OverdueEquipment lists assets whose governing schedule is overdue today,
// regardless of any report window.
func (s *ComplianceReportService) OverdueEquipment(ctx context.Context) ([]models.OverdueEquipment, error) {
	today := s.clock.Today()
	ids, err := s.overdue.ListOverdueAssetIDs(ctx, today)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to list overdue assets")
	}
	items := make([]models.OverdueEquipment, 0, len(ids))
	for _, id := range ids {
		eval, err := s.compliance.Evaluate(ctx, id)
		if err != nil {
			return nil, err
		}
		if eval.Status != models.ComplianceOverdue || eval.GoverningSchedule == nil {
			continue
		}
		item := models.OverdueEquipment{
			AssetID:     id,
			ScheduleID:  eval.GoverningSchedule.ID,
			NextDueDate: eval.GoverningSchedule.NextDueDate,
			DaysOverdue: datemath.DaysBetween(eval.GoverningSchedule.NextDueDate, today),
		}
		if s.assets != nil {
			asset, err := s.assets.GetByID(ctx, id)
			switch {
			case err == nil:
				item.AssetName = asset.Name
				item.Category = asset.Category
			case errors.Is(err, sql.ErrNoRows):
			default:
				return nil, appErrors.Persistence(err, "failed to load asset")
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// Export renders the report as CSV or PDF. Rates use the French comma decimal.
func (s *ComplianceReportService) Export(ctx context.Context, query dto.ComplianceReportQuery) (*ReportFile, error) {
	report, err := s.BuildReport(ctx, query)
	if err != nil {
		return nil, err
	}
	format := models.ReportFormat(query.Format)
	if format == "" {
		format = models.ReportFormatCSV
	}
	sections := reportSections(report)
	base := fmt.Sprintf("rapport-vgp_%s_%s", datemath.Format(report.Window.Start), datemath.Format(report.Window.End))

	switch format {
	case models.ReportFormatPDF:
		title := "Rapport de conformité VGP"
		subtitle := fmt.Sprintf("Période du %s au %s", frenchDate(report.Window.Start), frenchDate(report.Window.End))
		data, err := s.pdf.RenderSections(title, subtitle, sections)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
		}
		return &ReportFile{Filename: base + ".pdf", ContentType: "application/pdf", Data: data}, nil
	default:
		data, err := s.csv.RenderSections(sections)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
		}
		return &ReportFile{Filename: base + ".csv", ContentType: "text/csv; charset=utf-8", Data: data}, nil
	}
}

func (s *ComplianceReportService) windowInspections(ctx context.Context, window models.ReportWindow) ([]models.VGPInspection, error) {
	key := ReportCacheKey(window)
	if s.cache != nil {
		var cached []models.VGPInspection
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}
	inspections, err := s.inspections.List(ctx, models.VGPInspectionFilter{From: window.Start, To: window.End})
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to load inspections")
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, inspections, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache report inspections", zap.String("key", key), zap.Error(err))
		}
	}
	return inspections, nil
}

func reportSections(report *models.ComplianceReport) []export.Section {
	summary := report.Summary
	summaryRows := []map[string]string{
		{"Indicateur": "Inspections", "Valeur": strconv.Itoa(summary.Total)},
		{"Indicateur": "Conformes", "Valeur": strconv.Itoa(summary.Passed)},
		{"Indicateur": "Avec réserves", "Valeur": strconv.Itoa(summary.Conditional)},
		{"Indicateur": "Non conformes", "Valeur": strconv.Itoa(summary.Failed)},
		{"Indicateur": "Sans certificat", "Valeur": strconv.Itoa(summary.WithoutCertificate)},
		{"Indicateur": "Taux de conformité (%)", "Valeur": FormatRateFR(summary.ComplianceRate)},
	}

	inspectionHeaders := []string{"Date", "Équipement", "Inspecteur", "Organisme", "N° certification", "Résultat", "Prochaine échéance", "Certificat"}
	inspectionRows := make([]map[string]string, 0, len(report.Inspections))
	for _, inspection := range report.Inspections {
		certificate := "non"
		if inspection.HasCertificate() {
			certificate = "oui"
		}
		inspectionRows = append(inspectionRows, map[string]string{
			"Date":               frenchDate(inspection.InspectionDate),
			"Équipement":         inspection.AssetID,
			"Inspecteur":         inspection.InspectorName,
			"Organisme":          inspection.InspectorCompany,
			"N° certification":   deref(inspection.CertificationNumber),
			"Résultat":           resultLabel(inspection.Result),
			"Prochaine échéance": frenchDate(inspection.NextInspectionDate),
			"Certificat":         certificate,
		})
	}

	overdueHeaders := []string{"Équipement", "Catégorie", "Échéance", "Jours de retard"}
	overdueRows := make([]map[string]string, 0, len(report.Overdue))
	for _, item := range report.Overdue {
		name := item.AssetName
		if name == "" {
			name = item.AssetID
		}
		overdueRows = append(overdueRows, map[string]string{
			"Équipement":      name,
			"Catégorie":       item.Category,
			"Échéance":        frenchDate(item.NextDueDate),
			"Jours de retard": strconv.Itoa(item.DaysOverdue),
		})
	}

	return []export.Section{
		{Title: "Synthèse", Data: export.Dataset{Headers: []string{"Indicateur", "Valeur"}, Rows: summaryRows}},
		{Title: "Inspections", Data: export.Dataset{Headers: inspectionHeaders, Rows: inspectionRows}},
		{Title: "Équipements en retard", Data: export.Dataset{Headers: overdueHeaders, Rows: overdueRows}},
	}
}

func resultLabel(result models.VGPResult) string {
	switch result {
	case models.VGPResultPassed:
		return "Conforme"
	case models.VGPResultConditional:
		return "Avec réserves"
	case models.VGPResultFailed:
		return "Non conforme"
	default:
		return string(result)
	}
}

func frenchDate(t time.Time) string {
	return datemath.Date(t).Format("02/01/2006")
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
