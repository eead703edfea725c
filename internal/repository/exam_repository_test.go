package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/unischedule-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

var examRowColumns = []string{"id", "module_id", "module_name", "formation_id", "formation_name", "department_id", "professor_id", "duration_minutes", "room_id", "starts_at", "is_validated"}

func TestExamRepositoryListPendingFormationWinsOverDepartment(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	rows := sqlmock.NewRows(examRowColumns).
		AddRow("exam-1", "mod-1", "Algorithms", "form-1", "L3 Info", "dept-1", "prof-1", 120, nil, nil, false)
	mock.ExpectQuery(regexp.QuoteMeta("FROM exams e JOIN modules m ON m.id = e.module_id JOIN formations f ON f.id = m.formation_id WHERE e.is_validated = $1 AND m.formation_id = $2 ORDER BY e.created_at, e.id")).
		WithArgs(false, "form-1").
		WillReturnRows(rows)

	exams, err := repo.ListPending(context.Background(), models.ExamScope{FormationID: "form-1", DepartmentID: "dept-1"})
	require.NoError(t, err)
	require.Len(t, exams, 1)
	assert.Equal(t, "Algorithms", exams[0].ModuleName)
	assert.Equal(t, 120, exams[0].DurationMinutes)
	assert.Nil(t, exams[0].StartsAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepositoryListPendingDepartment(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE e.is_validated = $1 AND f.department_id = $2")).
		WithArgs(false, "dept-1").
		WillReturnRows(sqlmock.NewRows(examRowColumns))

	exams, err := repo.ListPending(context.Background(), models.ExamScope{DepartmentID: "dept-1"})
	require.NoError(t, err)
	assert.Empty(t, exams)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepositoryClearAssignments(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE exams SET room_id = NULL, starts_at = NULL, updated_at = NOW() WHERE id IN ($1,$2) AND is_validated = $3")).
		WithArgs("exam-1", "exam-2", false).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.ClearAssignments(context.Background(), []string{"exam-1", "exam-2"}))
	require.NoError(t, repo.ClearAssignments(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepositoryListValidated(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	start := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(examRowColumns).
		AddRow("exam-9", "mod-9", "Networks", "form-2", "M1 Net", "dept-1", "prof-2", 90, "room-1", start, true)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE e.is_validated = $1 AND e.starts_at IS NOT NULL ORDER BY e.starts_at")).
		WithArgs(true).
		WillReturnRows(rows)

	exams, err := repo.ListValidated(context.Background())
	require.NoError(t, err)
	require.Len(t, exams, 1)
	require.NotNil(t, exams[0].RoomID)
	assert.Equal(t, "room-1", *exams[0].RoomID)
	assert.True(t, exams[0].StartsAt.Equal(start))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepositoryAssign(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	start := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE exams SET room_id = $1, starts_at = $2, updated_at = NOW() WHERE id = $3")).
		WithArgs("room-1", start, "exam-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Assign(context.Background(), "exam-1", "room-1", start))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepositoryAssignNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE exams SET room_id = $1")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Assign(context.Background(), "missing", "room-1", time.Now())
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestExamRepositoryListAppliesFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	columns := append(append([]string{}, examRowColumns...), "department_name", "room_name", "professor_name")
	start := time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(columns).
		AddRow("exam-1", "mod-1", "Algorithms", "form-1", "L3 Info", "dept-1", "prof-1", 90, "room-1", start, false, "Informatique", "Amphi A", "Dr. Amine")
	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN rooms ro ON ro.id = e.room_id LEFT JOIN professors p ON p.id = e.professor_id WHERE f.department_id = $1 AND e.professor_id = $2 ORDER BY e.starts_at NULLS LAST, m.name, e.id")).
		WithArgs("dept-1", "prof-1").
		WillReturnRows(rows)

	list, err := repo.List(context.Background(), models.ExamFilter{DepartmentID: "dept-1", ProfessorID: "prof-1"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Informatique", list[0].DepartmentName)
	require.NotNil(t, list[0].RoomName)
	assert.Equal(t, "Amphi A", *list[0].RoomName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepositoryValidateDepartment(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE exams SET is_validated = TRUE")).
		WithArgs("dept-1").
		WillReturnResult(sqlmock.NewResult(0, 4))

	count, err := repo.ValidateDepartment(context.Background(), "dept-1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
