package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/homimatch/server/internal/db"
	"github.com/homimatch/server/internal/match"
	"github.com/homimatch/server/internal/repository"
)

func TestCreateEnforcesPairUniqueness(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMatchRepository(setupTestDB(t))

	first := &db.Match{ID: uuid.NewString(), UserAID: "alice", UserBID: "bob", Status: match.StatusPending}
	require.NoError(t, repo.Create(ctx, first))

	// Same pair, opposite insertion order: the normalized pair key collides.
	second := &db.Match{ID: uuid.NewString(), UserAID: "bob", UserBID: "alice", Status: match.StatusPending}
	err := repo.Create(ctx, second)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "expected duplicate key, got %v", err)
}

func TestFindByPairIsOrderInsensitive(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMatchRepository(setupTestDB(t))

	m := &db.Match{ID: uuid.NewString(), UserAID: "alice", UserBID: "bob", Status: match.StatusAccepted}
	require.NoError(t, repo.Create(ctx, m))

	found, err := repo.FindByPair(ctx, "bob", "alice")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, m.ID, found.ID)

	none, err := repo.FindByPair(ctx, "alice", "carol")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestListForUserPagination(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	repo := repository.NewMatchRepository(database)

	base := time.Now().UTC().Truncate(time.Millisecond)
	for i := 0; i < 5; i++ {
		m := &db.Match{
			ID:      fmt.Sprintf("m%d", i),
			UserAID: "alice",
			UserBID: fmt.Sprintf("peer%d", i),
			Status:  match.StatusAccepted,
		}
		require.NoError(t, repo.Create(ctx, m))
		// Distinct updated_at values so ordering is deterministic.
		require.NoError(t, database.Model(m).Update("updated_at", base.Add(time.Duration(i)*time.Second)).Error)
	}

	page1, token, err := repo.ListForUser(ctx, "alice", nil, 3)
	require.NoError(t, err)
	require.Len(t, page1, 3)
	require.NotNil(t, token)
	assert.Equal(t, "m4", page1[0].ID) // newest first

	page2, token2, err := repo.ListForUser(ctx, "alice", token, 3)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.Nil(t, token2)
	assert.Equal(t, "m1", page2[0].ID)

	// A non-participant sees nothing.
	other, _, err := repo.ListForUser(ctx, "mallory", nil, 10)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMatchRepository(setupTestDB(t))

	m := &db.Match{ID: uuid.NewString(), UserAID: "alice", UserBID: "bob", Status: match.StatusPending}
	require.NoError(t, repo.Create(ctx, m))

	require.NoError(t, repo.UpdateStatus(ctx, m.ID, match.StatusPending, match.StatusAccepted))

	got, err := repo.FindByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, match.StatusAccepted, got.Status)
}

// UpdateStatus is a compare-and-swap: a write whose expected status no
// longer holds must fail and leave the row untouched.
func TestUpdateStatusIsGuardedByCurrentStatus(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMatchRepository(setupTestDB(t))

	m := &db.Match{ID: uuid.NewString(), UserAID: "alice", UserBID: "bob", Status: match.StatusPending}
	require.NoError(t, repo.Create(ctx, m))

	// another request rejects the match first
	require.NoError(t, repo.UpdateStatus(ctx, m.ID, match.StatusPending, match.StatusRejected))

	err := repo.UpdateStatus(ctx, m.ID, match.StatusPending, match.StatusAccepted)
	require.ErrorIs(t, err, repository.ErrStaleStatus)

	got, err := repo.FindByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, match.StatusRejected, got.Status)
}
