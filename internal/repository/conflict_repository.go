package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/unischedule-api/internal/models"
)

// ConflictRepository persists generator conflict records.
type ConflictRepository struct {
	db *sqlx.DB
	sb squirrel.StatementBuilderType
}

// NewConflictRepository constructs the repository.
func NewConflictRepository(db *sqlx.DB) *ConflictRepository {
	return &ConflictRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a conflict, assigning id and timestamp when missing.
func (r *ConflictRepository) Create(ctx context.Context, conflict *models.Conflict) error {
	if conflict == nil {
		return fmt.Errorf("conflict payload is nil")
	}
	if conflict.ID == "" {
		conflict.ID = uuid.NewString()
	}
	if conflict.CreatedAt.IsZero() {
		conflict.CreatedAt = time.Now().UTC()
	}

	const query = `
INSERT INTO conflicts (id, type, description, severity, module_name, exam_id, formation_id, resolved, created_at)
VALUES (:id, :type, :description, :severity, :module_name, :exam_id, :formation_id, :resolved, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, conflict); err != nil {
		return fmt.Errorf("insert conflict: %w", err)
	}
	return nil
}

// List returns conflicts newest first.
func (r *ConflictRepository) List(ctx context.Context, filter models.ConflictFilter) ([]models.Conflict, error) {
	qb := r.sb.Select("id", "type", "severity", "description", "module_name", "exam_id", "formation_id", "resolved", "created_at", "resolved_at").
		From("conflicts")
	if filter.Resolved != nil {
		qb = qb.Where(squirrel.Eq{"resolved": *filter.Resolved})
	}
	qb = qb.OrderBy("created_at DESC", "id")
	if filter.Limit > 0 {
		qb = qb.Limit(uint64(filter.Limit))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build conflicts query: %w", err)
	}
	var conflicts []models.Conflict
	if err := r.db.SelectContext(ctx, &conflicts, query, args...); err != nil {
		return nil, fmt.Errorf("list conflicts: %w", err)
	}
	return conflicts, nil
}
