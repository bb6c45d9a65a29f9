package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homimatch/server/internal/db"
	"github.com/homimatch/server/internal/repository"
)

func TestLimitUpsertRollsRowForward(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	repo := repository.NewLimitRepository(database)

	missing, err := repo.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.Upsert(ctx, &db.MessageRequestLimit{
		UserID: "alice", WeeklyCount: 1, WeekStart: "2026-08-24", UsedTrial: false,
	}))

	// The next week's first request overwrites count and marker in place.
	require.NoError(t, repo.Upsert(ctx, &db.MessageRequestLimit{
		UserID: "alice", WeeklyCount: 1, WeekStart: "2026-08-31", UsedTrial: false,
	}))

	row, err := repo.Get(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, 1, row.WeeklyCount)
	assert.Equal(t, "2026-08-31", row.WeekStart)

	var count int64
	require.NoError(t, database.Model(&db.MessageRequestLimit{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
