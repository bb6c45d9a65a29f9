package swipe_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/homimatch/server/internal/app"
	"github.com/homimatch/server/internal/apperr"
	"github.com/homimatch/server/internal/cache"
	"github.com/homimatch/server/internal/clock"
	"github.com/homimatch/server/internal/config"
	"github.com/homimatch/server/internal/db"
	mstatus "github.com/homimatch/server/internal/match"
	swipesvc "github.com/homimatch/server/internal/service/swipe"
)

var testNow = time.Date(2025, 6, 11, 15, 0, 0, 0, time.UTC)

// setupService wires the swipe service against in-memory SQLite and
// miniredis, with a fixed clock and a small daily limit so the rate gate is
// testable.
func setupService(t *testing.T) (*swipesvc.Service, *gorm.DB) {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbase, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:        func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := dbase.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, dbase.AutoMigrate(db.Models...))

	profiles := []db.Profile{
		{ID: "p-alice", UserID: "alice", DisplayName: "Alice", Searchable: true},
		{ID: "p-bob", UserID: "bob", DisplayName: "Bob", Searchable: true},
		{ID: "p-carol", UserID: "carol", DisplayName: "Carol", Searchable: true},
	}
	require.NoError(t, dbase.Create(&profiles).Error)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()
	cfg.Limits.DailySwipes = 3

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	appCtx := app.New(cfg, dbase, cache.NewRedisCache(cfg), logger, nil, clock.Fixed{T: testNow})
	return swipesvc.NewService(appCtx), dbase
}

func TestRecordValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, err := svc.Record(ctx, "alice", "bob", "superlike")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = svc.Record(ctx, "alice", "alice", db.SwipeLike)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = svc.Record(ctx, "alice", "nobody", db.SwipeLike)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestRecordConsumesDailyAllowance(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	res, err := svc.Record(ctx, "alice", "bob", db.SwipePass)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Consumed)

	_, n, err := svc.Count(ctx, "alice", clock.DayKey(testNow))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRecordEnforcesDailyLimit(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	for _, target := range []string{"bob", "carol", "bob"} {
		_, err := svc.Record(ctx, "alice", target, db.SwipePass)
		require.NoError(t, err)
	}

	_, err := svc.Record(ctx, "alice", "carol", db.SwipePass)
	require.True(t, apperr.IsKind(err, apperr.KindConflict))
	e, _ := apperr.As(err)
	assert.Equal(t, "swipe_limit_reached", e.Code)
}

func TestMutualLikeCreatesAcceptedMatch(t *testing.T) {
	ctx := context.Background()
	svc, dbase := setupService(t)

	res, err := svc.Record(ctx, "alice", "bob", db.SwipeLike)
	require.NoError(t, err)
	assert.False(t, res.Mutual)

	res, err = svc.Record(ctx, "bob", "alice", db.SwipeLike)
	require.NoError(t, err)
	require.True(t, res.Mutual)
	require.NotNil(t, res.MatchID)

	var m db.Match
	require.NoError(t, dbase.First(&m, "id = ?", *res.MatchID).Error)
	assert.Equal(t, mstatus.StatusAccepted, m.Status)

	var chat db.Chat
	require.NoError(t, dbase.Where("match_id = ?", m.ID).First(&chat).Error)
}

// A mutual like on a pair that already has a match reuses it rather than
// violating pair uniqueness.
func TestMutualLikeReusesExistingMatch(t *testing.T) {
	ctx := context.Background()
	svc, dbase := setupService(t)

	existing := db.Match{
		ID: "m1", UserAID: "alice", UserBID: "bob",
		PairKey: db.PairKey("alice", "bob"),
		Status:  mstatus.StatusAccepted,
	}
	require.NoError(t, dbase.Create(&existing).Error)
	require.NoError(t, dbase.Create(&db.Swipe{ActorID: "alice", TargetID: "bob", Action: db.SwipeLike}).Error)

	res, err := svc.Record(ctx, "bob", "alice", db.SwipeLike)
	require.NoError(t, err)
	require.True(t, res.Mutual)
	assert.Equal(t, "m1", *res.MatchID)
}

// A mutual against a rejected pair stays silent: no match in the response,
// no resurrection of the pair.
func TestMutualLikeAgainstBlockedPairIsSilent(t *testing.T) {
	ctx := context.Background()
	svc, dbase := setupService(t)

	blocked := db.Match{
		ID: "m1", UserAID: "alice", UserBID: "bob",
		PairKey: db.PairKey("alice", "bob"),
		Status:  mstatus.StatusRejected,
	}
	require.NoError(t, dbase.Create(&blocked).Error)
	require.NoError(t, dbase.Create(&db.Swipe{ActorID: "alice", TargetID: "bob", Action: db.SwipeLike}).Error)

	res, err := svc.Record(ctx, "bob", "alice", db.SwipeLike)
	require.NoError(t, err)
	assert.False(t, res.Mutual)
	assert.Nil(t, res.MatchID)
}

func TestCountFallsBackToTodayOnBadDate(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, err := svc.Record(ctx, "alice", "bob", db.SwipePass)
	require.NoError(t, err)

	date, n, err := svc.Count(ctx, "alice", "not-a-date")
	require.NoError(t, err)
	assert.Equal(t, clock.DayKey(testNow), date)
	assert.Equal(t, int64(1), n)
}
