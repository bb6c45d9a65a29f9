package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/homimatch/server/internal/db"
)

// SwipeRepository provides data access for like/pass swipes.
type SwipeRepository struct {
	db *gorm.DB
}

func NewSwipeRepository(database *gorm.DB) *SwipeRepository {
	return &SwipeRepository{db: database}
}

// CreateOrUpdate records a swipe from actor to target. The composite PK
// on (actor_id, target_id) guarantees one row per directed pair; a repeat
// swipe overwrites the previous action.
func (r *SwipeRepository) CreateOrUpdate(ctx context.Context, actorID, targetID, action string) error {
	swipe := db.Swipe{
		ActorID:  actorID,
		TargetID: targetID,
		Action:   action,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "actor_id"}, {Name: "target_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"action"}),
		}).
		Create(&swipe).Error
}

// HasLiked reports whether actor has an active like on target.
func (r *SwipeRepository) HasLiked(ctx context.Context, actorID, targetID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Swipe{}).
		Where("actor_id = ? AND target_id = ? AND action = ?", actorID, targetID, db.SwipeLike).
		Count(&count).Error
	return count > 0, err
}
