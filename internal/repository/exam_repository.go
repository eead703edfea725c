package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/unischedule-api/internal/models"
)

var examColumns = []string{
	"e.id",
	"e.module_id",
	"m.name AS module_name",
	"m.formation_id",
	"f.name AS formation_name",
	"f.department_id",
	"COALESCE(e.professor_id, '') AS professor_id",
	"e.duration_minutes",
	"e.room_id",
	"e.starts_at",
	"e.is_validated",
}

// ExamRepository is the persistence collaborator of the timetable generator.
type ExamRepository struct {
	db *sqlx.DB
	sb squirrel.StatementBuilderType
}

// NewExamRepository constructs the repository.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *ExamRepository) baseSelect(columns ...string) squirrel.SelectBuilder {
	return r.sb.Select(columns...).
		From("exams e").
		Join("modules m ON m.id = e.module_id").
		Join("formations f ON f.id = m.formation_id")
}

// ListPending returns non-validated exams for the scope in creation order.
func (r *ExamRepository) ListPending(ctx context.Context, scope models.ExamScope) ([]models.Exam, error) {
	qb := r.baseSelect(examColumns...).Where(squirrel.Eq{"e.is_validated": false})
	switch {
	case scope.FormationID != "":
		qb = qb.Where(squirrel.Eq{"m.formation_id": scope.FormationID})
	case scope.DepartmentID != "":
		qb = qb.Where(squirrel.Eq{"f.department_id": scope.DepartmentID})
	}
	query, args, err := qb.OrderBy("e.created_at", "e.id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build pending exams query: %w", err)
	}

	var exams []models.Exam
	if err := r.db.SelectContext(ctx, &exams, query, args...); err != nil {
		return nil, fmt.Errorf("list pending exams: %w", err)
	}
	return exams, nil
}

// ClearAssignments nulls room and start time of the given non-validated exams.
func (r *ExamRepository) ClearAssignments(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := r.sb.Update("exams").
		Set("room_id", squirrel.Expr("NULL")).
		Set("starts_at", squirrel.Expr("NULL")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": ids, "is_validated": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build clear assignments query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear exam assignments: %w", err)
	}
	return nil
}

// ListValidated returns committed exams that already hold a start time.
func (r *ExamRepository) ListValidated(ctx context.Context) ([]models.Exam, error) {
	query, args, err := r.baseSelect(examColumns...).
		Where(squirrel.Eq{"e.is_validated": true}).
		Where(squirrel.NotEq{"e.starts_at": nil}).
		OrderBy("e.starts_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build validated exams query: %w", err)
	}

	var exams []models.Exam
	if err := r.db.SelectContext(ctx, &exams, query, args...); err != nil {
		return nil, fmt.Errorf("list validated exams: %w", err)
	}
	return exams, nil
}

// Assign persists a single placement.
func (r *ExamRepository) Assign(ctx context.Context, examID, roomID string, startsAt time.Time) error {
	const query = `UPDATE exams SET room_id = $1, starts_at = $2, updated_at = NOW() WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, roomID, startsAt, examID)
	if err != nil {
		return fmt.Errorf("assign exam: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("assign exam rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// List returns exams with display names, placed exams first in start order.
func (r *ExamRepository) List(ctx context.Context, filter models.ExamFilter) ([]models.ExamListing, error) {
	columns := append(append([]string{}, examColumns...),
		"d.name AS department_name",
		"ro.name AS room_name",
		"p.full_name AS professor_name",
	)
	qb := r.baseSelect(columns...).
		Join("departments d ON d.id = f.department_id").
		LeftJoin("rooms ro ON ro.id = e.room_id").
		LeftJoin("professors p ON p.id = e.professor_id")

	if filter.FormationID != "" {
		qb = qb.Where(squirrel.Eq{"m.formation_id": filter.FormationID})
	}
	if filter.DepartmentID != "" {
		qb = qb.Where(squirrel.Eq{"f.department_id": filter.DepartmentID})
	}
	if filter.ProfessorID != "" {
		qb = qb.Where(squirrel.Eq{"e.professor_id": filter.ProfessorID})
	}
	if filter.ScheduledOnly {
		qb = qb.Where(squirrel.NotEq{"e.starts_at": nil, "e.room_id": nil})
	}

	query, args, err := qb.OrderBy("e.starts_at NULLS LAST", "m.name", "e.id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build exam listing query: %w", err)
	}

	var exams []models.ExamListing
	if err := r.db.SelectContext(ctx, &exams, query, args...); err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	return exams, nil
}

// ValidateDepartment marks every placed exam of the department as validated.
func (r *ExamRepository) ValidateDepartment(ctx context.Context, departmentID string) (int64, error) {
	const query = `UPDATE exams SET is_validated = TRUE, updated_at = NOW()
WHERE is_validated = FALSE AND room_id IS NOT NULL AND starts_at IS NOT NULL
AND module_id IN (SELECT m.id FROM modules m JOIN formations f ON f.id = m.formation_id WHERE f.department_id = $1)`
	result, err := r.db.ExecContext(ctx, query, departmentID)
	if err != nil {
		return 0, fmt.Errorf("validate department exams: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("validate department rows affected: %w", err)
	}
	return affected, nil
}
