package export

import (
	"strconv"
	"time"
)

// TimetableRow is one placed exam as it appears in every export format.
type TimetableRow struct {
	ExamID     string    `csv:"exam_id"`
	Module     string    `csv:"module"`
	Formation  string    `csv:"formation"`
	Department string    `csv:"department"`
	Professor  string    `csv:"professor"`
	Room       string    `csv:"room"`
	Date       string    `csv:"date"`
	Start      string    `csv:"start"`
	End        string    `csv:"end"`
	Validated  bool      `csv:"validated"`
	StartsAt   time.Time `csv:"-"`
	EndsAt     time.Time `csv:"-"`
}

// NewTimetableRow fills the display columns from the exam interval.
func NewTimetableRow(examID, module, formation, department, professor, room string, startsAt, endsAt time.Time, validated bool) TimetableRow {
	return TimetableRow{
		ExamID:     examID,
		Module:     module,
		Formation:  formation,
		Department: department,
		Professor:  professor,
		Room:       room,
		Date:       startsAt.Format("2006-01-02"),
		Start:      startsAt.Format("15:04"),
		End:        endsAt.Format("15:04"),
		Validated:  validated,
		StartsAt:   startsAt,
		EndsAt:     endsAt,
	}
}

var tableHeaders = []string{"Date", "Start", "End", "Module", "Formation", "Room", "Professor", "Validated"}

func (r TimetableRow) cells() []string {
	return []string{r.Date, r.Start, r.End, r.Module, r.Formation, r.Room, r.Professor, yesNo(r.Validated)}
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// Format identifies an export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
	FormatICS  Format = "ics"
)

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatPDF:
		return "application/pdf"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatICS:
		return "text/calendar"
	default:
		return "application/octet-stream"
	}
}

// Valid reports whether the format has a renderer.
func (f Format) Valid() bool {
	switch f {
	case FormatCSV, FormatPDF, FormatXLSX, FormatICS:
		return true
	}
	return false
}

func itoa(n int) string { return strconv.Itoa(n) }
