package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/unischedule-api/internal/models"
)

// RoomRepository reads exam rooms.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository constructs the repository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// ListByCapacity returns every room, largest first.
func (r *RoomRepository) ListByCapacity(ctx context.Context) ([]models.Room, error) {
	const query = `SELECT id, name, capacity, type FROM rooms ORDER BY capacity DESC, id`
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}
