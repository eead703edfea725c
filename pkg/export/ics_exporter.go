package export

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
)

// ICSExporter renders timetable rows into an iCalendar feed.
type ICSExporter struct {
	now func() time.Time
}

// NewICSExporter constructs an iCalendar exporter.
func NewICSExporter() *ICSExporter {
	return &ICSExporter{now: time.Now}
}

// Render emits one VEVENT per exam, keyed by exam id so re-imports update in place.
func (e *ICSExporter) Render(rows []TimetableRow, title string) ([]byte, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//unischedule//exam timetable//EN")
	if title != "" {
		cal.SetXWRCalName(title)
	}

	stamp := e.now().UTC()
	for _, row := range rows {
		if row.ExamID == "" {
			return nil, fmt.Errorf("ics event requires an exam id")
		}
		event := cal.AddEvent(row.ExamID + "@unischedule")
		event.SetDtStampTime(stamp)
		event.SetStartAt(row.StartsAt)
		event.SetEndAt(row.EndsAt)
		event.SetSummary(row.Module)
		event.SetLocation(row.Room)
		event.SetDescription(strings.Join([]string{
			"Formation: " + row.Formation,
			"Professor: " + row.Professor,
		}, "\n"))
	}

	return []byte(cal.Serialize()), nil
}
