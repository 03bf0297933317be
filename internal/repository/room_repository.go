package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-adp-api/internal/models"
)

// RoomRepository manages persistence for teaching rooms.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository constructs a room repository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// List returns rooms matching filter criteria, paginated.
func (r *RoomRepository) List(ctx context.Context, filter models.RoomFilter) ([]models.Room, int, error) {
	base := "FROM rooms WHERE 1=1"
	var args []interface{}
	if filter.Search != "" {
		base += fmt.Sprintf(" AND LOWER(name) LIKE $%d", len(args)+1)
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	sortBy := filter.SortBy
	if sortBy != "name" && sortBy != "created_at" {
		sortBy = "name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT id, name, created_at, updated_at %s ORDER BY %s %s LIMIT %d OFFSET %d", base, sortBy, order, size, offset)
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list rooms: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count rooms: %w", err)
	}
	return rooms, total, nil
}

// ListAll returns every room, unpaginated, for the placement engine's room pool.
func (r *RoomRepository) ListAll(ctx context.Context) ([]models.Room, error) {
	const query = `SELECT id, name, created_at, updated_at FROM rooms ORDER BY name ASC`
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list all rooms: %w", err)
	}
	return rooms, nil
}
