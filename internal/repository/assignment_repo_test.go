package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homimatch/server/internal/db"
	"github.com/homimatch/server/internal/repository"
)

func TestUpsertOfferOverwritesInsteadOfDuplicating(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	repo := repository.NewAssignmentRepository(database)

	first, err := repo.UpsertOffer(ctx, "match-1", "room-1", "bob")
	require.NoError(t, err)
	assert.Equal(t, db.AssignmentOffered, first.Status)

	// Second offer on the same match replaces the room, not the row count.
	second, err := repo.UpsertOffer(ctx, "match-1", "room-2", "bob")
	require.NoError(t, err)
	assert.Equal(t, "room-2", second.RoomID)

	var count int64
	require.NoError(t, database.Model(&db.RoomAssignment{}).Where("match_id = ?", "match-1").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestHasAcceptedForRoom(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewAssignmentRepository(setupTestDB(t))

	a, err := repo.UpsertOffer(ctx, "match-1", "room-1", "bob")
	require.NoError(t, err)

	accepted, err := repo.HasAcceptedForRoom(ctx, "room-1")
	require.NoError(t, err)
	assert.False(t, accepted)

	require.NoError(t, repo.UpdateStatus(ctx, a.ID, db.AssignmentOffered, db.AssignmentAccepted))

	accepted, err = repo.HasAcceptedForRoom(ctx, "room-1")
	require.NoError(t, err)
	assert.True(t, accepted)
}

// Only one of two racing resolutions can move the assignment out of the
// offered state.
func TestUpdateStatusRequiresCurrentStatus(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewAssignmentRepository(setupTestDB(t))

	a, err := repo.UpsertOffer(ctx, "match-1", "room-1", "bob")
	require.NoError(t, err)

	require.NoError(t, repo.UpdateStatus(ctx, a.ID, db.AssignmentOffered, db.AssignmentRejected))

	err = repo.UpdateStatus(ctx, a.ID, db.AssignmentOffered, db.AssignmentAccepted)
	require.ErrorIs(t, err, repository.ErrStaleStatus)

	got, err := repo.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, db.AssignmentRejected, got.Status)
}

func TestFindByMatchMissing(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewAssignmentRepository(setupTestDB(t))

	a, err := repo.FindByMatch(ctx, "no-such-match")
	require.NoError(t, err)
	assert.Nil(t, a)
}
