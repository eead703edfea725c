package models

import "time"

// Exam is one exam session of a module. RoomID and StartsAt stay nil until
// the timetable generator places it.
type Exam struct {
	ID              string     `db:"id" json:"id"`
	ModuleID        string     `db:"module_id" json:"module_id"`
	ModuleName      string     `db:"module_name" json:"module_name"`
	FormationID     string     `db:"formation_id" json:"formation_id"`
	FormationName   string     `db:"formation_name" json:"formation_name"`
	DepartmentID    string     `db:"department_id" json:"department_id"`
	ProfessorID     string     `db:"professor_id" json:"professor_id"`
	DurationMinutes int        `db:"duration_minutes" json:"duration_minutes"`
	RoomID          *string    `db:"room_id" json:"room_id,omitempty"`
	StartsAt        *time.Time `db:"starts_at" json:"starts_at,omitempty"`
	Validated       bool       `db:"is_validated" json:"is_validated"`
}

// Duration returns the exam length, falling back when the stored value is unset.
func (e Exam) Duration(fallback time.Duration) time.Duration {
	if e.DurationMinutes <= 0 {
		return fallback
	}
	return time.Duration(e.DurationMinutes) * time.Minute
}

// Scheduled reports whether the exam carries both a room and a start time.
func (e Exam) Scheduled() bool {
	return e.RoomID != nil && e.StartsAt != nil
}

// ExamListing is the read model served to timetable consumers.
type ExamListing struct {
	Exam
	DepartmentName string  `db:"department_name" json:"department_name"`
	RoomName       *string `db:"room_name" json:"room_name,omitempty"`
	ProfessorName  *string `db:"professor_name" json:"professor_name,omitempty"`
}

// ExamScope narrows a generation run. A formation wins over a department; an
// empty scope covers every pending exam.
type ExamScope struct {
	FormationID  string
	DepartmentID string
}

// Key identifies the scope for locking and caching.
func (s ExamScope) Key() string {
	switch {
	case s.FormationID != "":
		return "formation:" + s.FormationID
	case s.DepartmentID != "":
		return "department:" + s.DepartmentID
	default:
		return "all"
	}
}

// ExamFilter captures listing criteria for exams.
type ExamFilter struct {
	DepartmentID  string
	FormationID   string
	ProfessorID   string
	ScheduledOnly bool
}

// CacheKey renders a stable key fragment for the filter.
func (f ExamFilter) CacheKey() string {
	key := "dept=" + f.DepartmentID + "|formation=" + f.FormationID + "|prof=" + f.ProfessorID
	if f.ScheduledOnly {
		key += "|scheduled"
	}
	return key
}
