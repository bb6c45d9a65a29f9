package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/homimatch/server/internal/db"
)

// ProfileRepository provides read access to housing profiles. Profile CRUD
// itself lives outside this core; the coordinator only reads.
type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: database}
}

// FindByUserID fetches the profile owned by a user.
func (r *ProfileRepository) FindByUserID(ctx context.Context, userID string) (*db.Profile, error) {
	var p db.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// ListSearchableExcept returns all searchable profiles other than the
// given user's, for recommendation fan-out.
func (r *ProfileRepository) ListSearchableExcept(ctx context.Context, userID string) ([]db.Profile, error) {
	var profiles []db.Profile
	err := r.db.WithContext(ctx).
		Where("searchable = ? AND user_id <> ?", true, userID).
		Find(&profiles).Error
	return profiles, err
}
