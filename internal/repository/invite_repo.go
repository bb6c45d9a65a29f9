package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/homimatch/server/internal/db"
)

// InviteRepository provides data access for invitation codes.
type InviteRepository struct {
	db *gorm.DB
}

func NewInviteRepository(database *gorm.DB) *InviteRepository {
	return &InviteRepository{db: database}
}

// Insert stores a freshly generated invite. A code collision surfaces as
// gorm.ErrDuplicatedKey via the unique index; the issuer retries with a
// new code rather than reporting the collision to the user.
func (r *InviteRepository) Insert(ctx context.Context, invite *db.InviteCode) error {
	return r.db.WithContext(ctx).Create(invite).Error
}
