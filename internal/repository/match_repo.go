package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/homimatch/server/internal/db"
	"github.com/homimatch/server/internal/match"
	"github.com/homimatch/server/internal/utils/pagination"
)

// ErrStaleStatus reports that a guarded status update matched no row: the
// status changed under the caller between read and write.
var ErrStaleStatus = errors.New("status changed concurrently")

// MatchRepository provides data access for the Match entity.
type MatchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a new repository bound to the given DB connection.
func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// WithTx returns the repository bound to an open transaction.
func (r *MatchRepository) WithTx(tx *gorm.DB) *MatchRepository {
	return &MatchRepository{db: tx}
}

// Create inserts a new match row. The caller supplies ID and participants;
// PairKey is derived here so every insert goes through the canonical
// normalization. A concurrent insert for the same pair fails with
// gorm.ErrDuplicatedKey via the unique index; callers treat that as
// "match already exists" and re-read.
func (r *MatchRepository) Create(ctx context.Context, m *db.Match) error {
	m.PairKey = db.PairKey(m.UserAID, m.UserBID)
	return r.db.WithContext(ctx).Create(m).Error
}

// FindByID fetches a match by primary key.
func (r *MatchRepository) FindByID(ctx context.Context, id string) (*db.Match, error) {
	var m db.Match
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// FindByPair fetches the match for an unordered user pair, regardless of
// which side initiated it. Returns (nil, nil) when no match exists.
func (r *MatchRepository) FindByPair(ctx context.Context, userA, userB string) (*db.Match, error) {
	var m db.Match
	err := r.db.WithContext(ctx).
		Where("pair_key = ?", db.PairKey(userA, userB)).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListForUser returns the user's matches, newest activity first, with
// cursor-based pagination on (updated_at, id).
func (r *MatchRepository) ListForUser(
	ctx context.Context,
	userID string,
	paginationToken *string,
	limit int,
) ([]db.Match, *string, error) {
	cursor, err := pagination.Decode(derefString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Order("updated_at DESC, id DESC").
		Limit(limit + 1)

	if cursor.ID != "" && cursor.UpdatedUnix > 0 {
		ts := time.UnixMilli(cursor.UpdatedUnix)
		query = query.Where(
			"(updated_at < ? OR (updated_at = ? AND id < ?))",
			ts, ts, cursor.ID,
		)
	}

	var matches []db.Match
	if err := query.Find(&matches).Error; err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(matches) > limit {
		last := matches[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			ID:          last.ID,
			UpdatedUnix: last.UpdatedAt.UnixMilli(),
		})
		nextToken = &token
		matches = matches[:limit]
	}

	return matches, nextToken, nil
}

// UpdateStatus moves a match from one status to another. The caller has
// already validated the transition against the state machine; the write is
// a compare-and-swap on the current status so that validation cannot
// overwrite a status committed concurrently (a rejected or unmatched match
// must stay that way no matter how requests interleave).
func (r *MatchRepository) UpdateStatus(ctx context.Context, id string, from, to match.Status) error {
	res := r.db.WithContext(ctx).
		Model(&db.Match{}).
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

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
