package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/homimatch/server/internal/db"
)

// RoomRepository provides data access for rooms.
type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(database *gorm.DB) *RoomRepository {
	return &RoomRepository{db: database}
}

// FindByID fetches a room by primary key.
func (r *RoomRepository) FindByID(ctx context.Context, id string) (*db.Room, error) {
	var room db.Room
	if err := r.db.WithContext(ctx).First(&room, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}
