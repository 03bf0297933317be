package models

import (
	"strings"
	"time"
)

// Room represents a physical or virtual teaching space.
type Room struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// IsLaboratory classifies the room by a case-insensitive substring match on
// its display name, per spec.
func (r Room) IsLaboratory() bool {
	return strings.Contains(strings.ToLower(r.Name), "lab")
}

// RoomFilter captures query parameters for listing rooms.
type RoomFilter struct {
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
