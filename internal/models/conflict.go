package models

import "time"

// ConflictType classifies why an exam could not be placed.
type ConflictType string

// ConflictSeverity grades the urgency of a conflict.
type ConflictSeverity string

const (
	ConflictPlanningFail ConflictType = "planning_fail"

	SeverityHigh   ConflictSeverity = "high"
	SeverityMedium ConflictSeverity = "medium"
	SeverityLow    ConflictSeverity = "low"
)

// Conflict records an exam the generator failed to place inside the period.
type Conflict struct {
	ID          string           `db:"id" json:"id"`
	Type        ConflictType     `db:"type" json:"type"`
	Severity    ConflictSeverity `db:"severity" json:"severity"`
	Description string           `db:"description" json:"description"`
	ModuleName  string           `db:"module_name" json:"module_name"`
	ExamID      *string          `db:"exam_id" json:"exam_id,omitempty"`
	FormationID *string          `db:"formation_id" json:"formation_id,omitempty"`
	Resolved    bool             `db:"resolved" json:"resolved"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	ResolvedAt  *time.Time       `db:"resolved_at" json:"resolved_at,omitempty"`
}

// ConflictFilter narrows conflict listings.
type ConflictFilter struct {
	Resolved *bool
	Limit    int
}
