package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/unischedule-api/internal/models"
	"github.com/noah-isme/unischedule-api/pkg/export"
	appErrors "github.com/noah-isme/unischedule-api/pkg/errors"
)

type timetableLister interface {
	ListExams(ctx context.Context, filter models.ExamFilter) ([]models.ExamListing, error)
}

type timetableRenderer interface {
	Render(rows []export.TimetableRow, title string) ([]byte, error)
}

// ExportFile is a rendered timetable ready to be streamed.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders the scoped timetable into downloadable formats.
type ExportService struct {
	timetable       timetableLister
	renderers       map[export.Format]timetableRenderer
	defaultDuration time.Duration
	logger          *zap.Logger
	now             func() time.Time
}

// NewExportService constructs an ExportService with every built-in renderer.
func NewExportService(timetable timetableLister, defaultDuration time.Duration, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultDuration <= 0 {
		defaultDuration = 90 * time.Minute
	}
	return &ExportService{
		timetable: timetable,
		renderers: map[export.Format]timetableRenderer{
			export.FormatCSV:  export.NewCSVExporter(),
			export.FormatPDF:  export.NewPDFExporter(),
			export.FormatXLSX: export.NewXLSXExporter(),
			export.FormatICS:  export.NewICSExporter(),
		},
		defaultDuration: defaultDuration,
		logger:          logger,
		now:             time.Now,
	}
}

// Export renders the placed exams matching filter in the requested format.
func (s *ExportService) Export(ctx context.Context, filter models.ExamFilter, format export.Format) (*ExportFile, error) {
	if format == "" {
		format = export.FormatCSV
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported export format %q", format))
	}

	filter.ScheduledOnly = true
	exams, err := s.timetable.ListExams(ctx, filter)
	if err != nil {
		return nil, err
	}

	rows := make([]export.TimetableRow, 0, len(exams))
	for _, exam := range exams {
		if exam.StartsAt == nil {
			continue
		}
		start := *exam.StartsAt
		rows = append(rows, export.NewTimetableRow(
			exam.ID,
			exam.ModuleName,
			exam.FormationName,
			exam.DepartmentName,
			deref(exam.ProfessorName),
			deref(exam.RoomName),
			start,
			start.Add(exam.Duration(s.defaultDuration)),
			exam.Validated,
		))
	}

	payload, err := renderer.Render(rows, "Exam timetable")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable")
	}
	s.logger.Debug("timetable exported", zap.String("format", string(format)), zap.Int("rows", len(rows)))

	return &ExportFile{
		Filename:    s.buildFilename(filter, format),
		ContentType: format.ContentType(),
		Payload:     payload,
	}, nil
}

func (s *ExportService) buildFilename(filter models.ExamFilter, format export.Format) string {
	scope := "all"
	switch {
	case filter.FormationID != "":
		scope = "formation_" + filter.FormationID
	case filter.DepartmentID != "":
		scope = "department_" + filter.DepartmentID
	case filter.ProfessorID != "":
		scope = "professor_" + filter.ProfessorID
	}
	timestamp := s.now().UTC().Format("20060102_150405")
	return fmt.Sprintf("timetable_%s_%s.%s", sanitizeFilename(scope), timestamp, format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_", "\"", "")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func deref(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}
