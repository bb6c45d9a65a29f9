package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/homimatch/server/internal/db"
)

// AssignmentRepository provides data access for room assignments.
type AssignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(database *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db: database}
}

// WithTx returns the repository bound to an open transaction.
func (r *AssignmentRepository) WithTx(tx *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db: tx}
}

// UpsertOffer creates or replaces the assignment for a match. Conflict on
// match_id overwrites the prior offer in place, so two near-simultaneous
// offers collapse to a single row.
func (r *AssignmentRepository) UpsertOffer(ctx context.Context, matchID, roomID, assigneeID string) (*db.RoomAssignment, error) {
	assignment := db.RoomAssignment{
		ID:         uuid.NewString(),
		MatchID:    matchID,
		RoomID:     roomID,
		AssigneeID: assigneeID,
		Status:     db.AssignmentOffered,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "match_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"room_id", "assignee_id", "status"}),
		}).
		Create(&assignment).Error
	if err != nil {
		return nil, err
	}
	// On conflict the generated ID was discarded; re-read the winning row.
	return r.FindByMatch(ctx, matchID)
}

// FindByID fetches an assignment by primary key.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*db.RoomAssignment, error) {
	var a db.RoomAssignment
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// FindByMatch fetches the assignment attached to a match, or (nil, nil).
func (r *AssignmentRepository) FindByMatch(ctx context.Context, matchID string) (*db.RoomAssignment, error) {
	var a db.RoomAssignment
	err := r.db.WithContext(ctx).Where("match_id = ?", matchID).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// HasAcceptedForRoom reports whether the room already has an accepted
// assignment.
func (r *AssignmentRepository) HasAcceptedForRoom(ctx context.Context, roomID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.RoomAssignment{}).
		Where("room_id = ? AND status = ?", roomID, db.AssignmentAccepted).
		Count(&count).Error
	return count > 0, err
}

// UpdateStatus persists the assignee's resolution. Compare-and-swap on the
// current status; two racing resolutions cannot both win.
func (r *AssignmentRepository) UpdateStatus(ctx context.Context, id, from, to string) error {
	res := r.db.WithContext(ctx).
		Model(&db.RoomAssignment{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleStatus
	}
	return nil
}
