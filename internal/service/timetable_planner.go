package service

import (
	"sort"
	"time"

	"github.com/noah-isme/unischedule-api/internal/models"
	"github.com/noah-isme/unischedule-api/pkg/config"
)

// PlannerConfig holds the placement rules of the timetable generator.
type PlannerConfig struct {
	DailyStartHour  int
	DailyEndHour    int
	BlackoutWeekday time.Weekday
	// MinGapDays is the number of calendar days around an exam of a formation
	// that stay closed to its other exams. Negative disables the rule.
	MinGapDays      int
	SlotStep        time.Duration
	DefaultDuration time.Duration
	Location        *time.Location
}

// PlannerConfigFrom maps scheduler settings onto planner rules.
func PlannerConfigFrom(cfg config.SchedulerConfig) PlannerConfig {
	return PlannerConfig{
		DailyStartHour:  cfg.DailyStartHour,
		DailyEndHour:    cfg.DailyEndHour,
		BlackoutWeekday: cfg.BlackoutWeekday,
		MinGapDays:      cfg.MinGapDays,
		SlotStep:        cfg.SlotStep,
		DefaultDuration: cfg.DefaultDuration,
		Location:        cfg.Location,
	}
}

func (c PlannerConfig) withDefaults() PlannerConfig {
	if c.DailyEndHour <= c.DailyStartHour {
		c.DailyStartHour, c.DailyEndHour = 8, 17
	}
	if c.SlotStep <= 0 {
		c.SlotStep = 30 * time.Minute
	}
	if c.DefaultDuration <= 0 {
		c.DefaultDuration = 90 * time.Minute
	}
	if c.Location == nil {
		c.Location = time.UTC
	}
	return c
}

// interval is a booked half-open range [start, end).
type interval struct {
	start time.Time
	end   time.Time
}

// overlaps treats touching endpoints as free.
func (i interval) overlaps(start, end time.Time) bool {
	return start.Before(i.end) && i.start.Before(end)
}

// occupancy maps a resource key to its booked intervals.
type occupancy map[string][]interval

func (o occupancy) free(key string, start, end time.Time) bool {
	for _, booked := range o[key] {
		if booked.overlaps(start, end) {
			return false
		}
	}
	return true
}

func (o occupancy) book(key string, start, end time.Time) {
	o[key] = append(o[key], interval{start: start, end: end})
}

// placement is an accepted (room, start) assignment.
type placement struct {
	ExamID string
	RoomID string
	Start  time.Time
	End    time.Time
}

// timetablePlanner is the per-run state of the first-fit search. It is built
// fresh for each generation and never shared between runs.
type timetablePlanner struct {
	cfg          PlannerConfig
	rooms        []models.Room
	roomOcc      occupancy
	formationOcc occupancy
	professorOcc occupancy
}

func newTimetablePlanner(cfg PlannerConfig, rooms []models.Room) *timetablePlanner {
	sorted := make([]models.Room, len(rooms))
	copy(sorted, rooms)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Capacity > sorted[j].Capacity
	})
	return &timetablePlanner{
		cfg:          cfg.withDefaults(),
		rooms:        sorted,
		roomOcc:      make(occupancy),
		formationOcc: make(occupancy),
		professorOcc: make(occupancy),
	}
}

// seedValidated books committed exams. Rooms are always seeded; formation and
// professor occupancy only when preloadAll is set.
func (p *timetablePlanner) seedValidated(exams []models.Exam, preloadAll bool) {
	for _, exam := range exams {
		if exam.StartsAt == nil {
			continue
		}
		start := exam.StartsAt.In(p.cfg.Location)
		end := start.Add(exam.Duration(p.cfg.DefaultDuration))
		if exam.RoomID != nil && *exam.RoomID != "" {
			p.roomOcc.book(*exam.RoomID, start, end)
		}
		if !preloadAll {
			continue
		}
		if exam.FormationID != "" {
			p.formationOcc.book(exam.FormationID, start, end)
		}
		if exam.ProfessorID != "" {
			p.professorOcc.book(exam.ProfessorID, start, end)
		}
	}
}

// place probes from periodStart in SlotStep increments and books the first
// slot that satisfies every rule. It reports false once the probe reaches periodEnd.
func (p *timetablePlanner) place(exam models.Exam, periodStart, periodEnd time.Time) (placement, bool) {
	if len(p.rooms) == 0 {
		return placement{}, false
	}

	loc := p.cfg.Location
	duration := exam.Duration(p.cfg.DefaultDuration)
	candidate := periodStart.In(loc)

	for candidate.Before(periodEnd) {
		if candidate.Hour() < p.cfg.DailyStartHour {
			candidate = p.dayStart(candidate, 0)
			continue
		}
		if candidate.Hour() >= p.cfg.DailyEndHour {
			candidate = p.dayStart(candidate, 1)
			continue
		}

		slotEnd := candidate.Add(duration)
		if slotEnd.After(p.dayEnd(candidate)) {
			candidate = p.dayStart(candidate, 1)
			continue
		}
		if p.cfg.BlackoutWeekday != config.NoBlackout && candidate.Weekday() == p.cfg.BlackoutWeekday {
			candidate = p.dayStart(candidate, 1)
			continue
		}
		if p.tooCloseToFormationExam(exam.FormationID, candidate) {
			candidate = p.dayStart(candidate, 1)
			continue
		}

		if !p.formationOcc.free(exam.FormationID, candidate, slotEnd) ||
			!p.professorOcc.free(exam.ProfessorID, candidate, slotEnd) {
			candidate = candidate.Add(p.cfg.SlotStep)
			continue
		}

		roomID, ok := p.freeRoom(candidate, slotEnd)
		if !ok {
			candidate = candidate.Add(p.cfg.SlotStep)
			continue
		}

		p.roomOcc.book(roomID, candidate, slotEnd)
		p.formationOcc.book(exam.FormationID, candidate, slotEnd)
		p.professorOcc.book(exam.ProfessorID, candidate, slotEnd)
		return placement{ExamID: exam.ID, RoomID: roomID, Start: candidate, End: slotEnd}, true
	}

	return placement{}, false
}

func (p *timetablePlanner) freeRoom(start, end time.Time) (string, bool) {
	for _, room := range p.rooms {
		if p.roomOcc.free(room.ID, start, end) {
			return room.ID, true
		}
	}
	return "", false
}

// tooCloseToFormationExam applies the rest gap against every booked exam of
// the formation, comparing calendar dates only.
func (p *timetablePlanner) tooCloseToFormationExam(formationID string, candidate time.Time) bool {
	if p.cfg.MinGapDays < 0 {
		return false
	}
	day := calendarDay(candidate)
	for _, booked := range p.formationOcc[formationID] {
		diff := daysBetween(calendarDay(booked.start.In(p.cfg.Location)), day)
		if diff <= p.cfg.MinGapDays {
			return true
		}
	}
	return false
}

func (p *timetablePlanner) dayStart(t time.Time, addDays int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+addDays, p.cfg.DailyStartHour, 0, 0, 0, p.cfg.Location)
}

func (p *timetablePlanner) dayEnd(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, p.cfg.DailyEndHour, 0, 0, 0, p.cfg.Location)
}

// calendarDay pins a local date to UTC midnight so day arithmetic ignores DST.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(a, b time.Time) int {
	diff := int(b.Sub(a).Hours() / 24)
	if diff < 0 {
		return -diff
	}
	return diff
}
