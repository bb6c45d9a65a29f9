package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/homimatch/server/internal/db"
)

// LimitRepository provides data access for the weekly message-request
// quota rows.
type LimitRepository struct {
	db *gorm.DB
}

func NewLimitRepository(database *gorm.DB) *LimitRepository {
	return &LimitRepository{db: database}
}

// WithTx returns the repository bound to an open transaction.
func (r *LimitRepository) WithTx(tx *gorm.DB) *LimitRepository {
	return &LimitRepository{db: tx}
}

// Get fetches the quota row for a user, or (nil, nil) when the user has
// never sent a message request.
func (r *LimitRepository) Get(ctx context.Context, userID string) (*db.MessageRequestLimit, error) {
	var row db.MessageRequestLimit
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Upsert writes the quota row, rolling the physical row forward to the
// latest week touched. Conflict target is the user_id primary key.
func (r *LimitRepository) Upsert(ctx context.Context, row *db.MessageRequestLimit) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"weekly_count", "week_start", "used_trial"}),
		}).
		Create(row).Error
}
