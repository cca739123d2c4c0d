package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/shift-scheduler-api/internal/dto"
	"github.com/noah-isme/shift-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/shift-scheduler-api/pkg/errors"
	"github.com/noah-isme/shift-scheduler-api/pkg/export"
)

type rosterReader interface {
	ListRoster(ctx context.Context, departmentID string, start, end time.Time) ([]models.RosterEntry, error)
}

type tableRenderer interface {
	Render(table export.Table) ([]byte, error)
}

var rosterHeaders = []string{"Date", "Start", "End", "Category", "Position", "Employee", "Kind", "Status"}

// RosterExportService renders committed assignments for a department range.
type RosterExportService struct {
	repo      rosterReader
	csv       tableRenderer
	pdf       tableRenderer
	validator *validator.Validate
	logger    *zap.Logger
	maxDays   int
}

// NewRosterExportService constructs the exporter. Nil renderers fall back to pkg/export.
func NewRosterExportService(repo rosterReader, csv, pdf tableRenderer, validate *validator.Validate, logger *zap.Logger, maxDays int) *RosterExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterExportService{repo: repo, csv: csv, pdf: pdf, validator: validate, logger: logger, maxDays: maxDays}
}

// Export renders the roster as CSV (default) or PDF.
func (s *RosterExportService) Export(ctx context.Context, query dto.RosterExportQuery) (*dto.RosterExportResult, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid roster query")
	}
	start, end, err := parseDateRange(query.StartDate, query.EndDate, s.maxDays)
	if err != nil {
		return nil, err
	}
	entries, err := s.repo.ListRoster(ctx, query.DepartmentID, start, end)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}

	table := export.Table{
		Title:    "Department roster",
		Subtitle: fmt.Sprintf("%s to %s", query.StartDate, query.EndDate),
		Headers:  rosterHeaders,
		Rows:     make([][]string, 0, len(entries)),
	}
	for _, e := range entries {
		table.Rows = append(table.Rows, []string{
			e.ShiftDate.Format(models.DateLayout),
			e.StartTime,
			e.EndTime,
			string(e.Category),
			e.PositionName,
			e.EmployeeName,
			string(e.Kind),
			string(e.Status),
		})
	}

	base := fmt.Sprintf("roster_%s_%s_%s", query.DepartmentID, query.StartDate, query.EndDate)
	result := &dto.RosterExportResult{}
	switch query.Format {
	case "pdf":
		result.Body, err = s.pdf.Render(table)
		result.Filename = base + ".pdf"
		result.ContentType = "application/pdf"
	default:
		result.Body, err = s.csv.Render(table)
		result.Filename = base + ".csv"
		result.ContentType = "text/csv"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster")
	}
	s.logger.Debug("roster exported", zap.String("department_id", query.DepartmentID), zap.Int("rows", len(entries)), zap.String("format", result.ContentType))
	return result, nil
}
