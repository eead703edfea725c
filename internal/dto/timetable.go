package dto

import "time"

// GenerateTimetableRequest instructs the generator to (re)plan a scope. A
// formation takes precedence over a department; dates are calendar days.
type GenerateTimetableRequest struct {
	DepartmentID string `json:"departmentId" validate:"omitempty,max=64"`
	FormationID  string `json:"formationId" validate:"omitempty,max=64"`
	StartDate    string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate      string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
}

// PlanningPeriod is the half-open window [Start, End) searched by the generator.
type PlanningPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// TimetableConflict describes an exam that could not be placed.
type TimetableConflict struct {
	ExamID      string `json:"examId"`
	ModuleName  string `json:"moduleName"`
	FormationID string `json:"formationId,omitempty"`
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// GenerationDetails carries the per-run diagnostics of a generation.
type GenerationDetails struct {
	RunID     string              `json:"runId"`
	Scope     string              `json:"scope"`
	Period    PlanningPeriod      `json:"period"`
	Conflicts []TimetableConflict `json:"conflicts"`
}

// GenerateTimetableResponse reports how many exams were placed and how many failed.
type GenerateTimetableResponse struct {
	Scheduled int               `json:"scheduled"`
	Conflicts int               `json:"conflicts"`
	Message   string            `json:"message"`
	Details   GenerationDetails `json:"details"`
}

// ValidateDepartmentResponse reports how many exams were locked in.
type ValidateDepartmentResponse struct {
	DepartmentID string `json:"departmentId"`
	Validated    int64  `json:"validated"`
}

// ExamListQuery carries the optional listing filters accepted from privileged roles.
type ExamListQuery struct {
	DepartmentID string `form:"departmentId"`
	FormationID  string `form:"formationId"`
}

// ExportQuery selects the export encoding.
type ExportQuery struct {
	Format       string `form:"format"`
	DepartmentID string `form:"departmentId"`
	FormationID  string `form:"formationId"`
}
