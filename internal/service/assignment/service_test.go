package assignment_test

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
	"github.com/homimatch/server/internal/config"
	"github.com/homimatch/server/internal/db"
	mstatus "github.com/homimatch/server/internal/match"
	assignmentsvc "github.com/homimatch/server/internal/service/assignment"
)

// setupService builds the room workflow fixture: alice seeks, bob offers
// and owns a private room plus a common area, and the pair already has an
// accepted match m1.
func setupService(t *testing.T) (*assignmentsvc.Service, *gorm.DB) {
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
		{ID: "p-alice", UserID: "alice", DisplayName: "Alice", HousingIntent: db.IntentSeeking, Searchable: true},
		{ID: "p-bob", UserID: "bob", DisplayName: "Bob", HousingIntent: db.IntentOffering, Searchable: true},
		{ID: "p-carol", UserID: "carol", DisplayName: "Carol", HousingIntent: db.IntentSeeking, Searchable: true},
	}
	require.NoError(t, dbase.Create(&profiles).Error)

	rooms := []db.Room{
		{ID: "room-1", OwnerID: "bob", Name: "Habitación grande", Category: db.RoomCategoryRoom},
		{ID: "room-2", OwnerID: "bob", Name: "Habitación pequeña", Category: db.RoomCategoryRoom},
		{ID: "salon", OwnerID: "bob", Name: "Salón", Category: db.RoomCategoryCommonArea},
	}
	require.NoError(t, dbase.Create(&rooms).Error)

	m := db.Match{
		ID: "m1", UserAID: "alice", UserBID: "bob",
		PairKey: db.PairKey("alice", "bob"),
		Status:  mstatus.StatusAccepted,
	}
	require.NoError(t, dbase.Create(&m).Error)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	appCtx := app.New(cfg, dbase, cache.NewRedisCache(cfg), logger, nil, nil)
	return assignmentsvc.NewService(appCtx), dbase
}

func TestOfferAuthorization(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	// the seeking participant cannot offer
	_, err := svc.Offer(ctx, "alice", "m1", "room-1")
	assert.True(t, apperr.IsKind(err, apperr.KindAuthorization))

	// an outsider is rejected before owner resolution
	_, err = svc.Offer(ctx, "carol", "m1", "room-1")
	assert.True(t, apperr.IsKind(err, apperr.KindAuthorization))
}

func TestOfferRejectsCommonArea(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, err := svc.Offer(ctx, "bob", "m1", "salon")
	require.True(t, apperr.IsKind(err, apperr.KindValidation))
	e, _ := apperr.As(err)
	assert.Equal(t, "common_area", e.Code)
}

func TestOfferRequiresAcceptedMatch(t *testing.T) {
	ctx := context.Background()
	svc, dbase := setupService(t)

	require.NoError(t, dbase.Model(&db.Match{}).
		Where("id = ?", "m1").
		Update("status", mstatus.StatusPending).Error)

	_, err := svc.Offer(ctx, "bob", "m1", "room-1")
	require.True(t, apperr.IsKind(err, apperr.KindConflict))
	e, _ := apperr.As(err)
	assert.Equal(t, "invalid_transition", e.Code)
}

func TestOfferMovesMatchToRoomOffer(t *testing.T) {
	ctx := context.Background()
	svc, dbase := setupService(t)

	view, err := svc.Offer(ctx, "bob", "m1", "room-1")
	require.NoError(t, err)
	assert.Equal(t, "room-1", view.RoomID)
	assert.Equal(t, "alice", view.AssigneeID)
	assert.Equal(t, db.AssignmentOffered, view.Status)
	assert.Equal(t, mstatus.StatusRoomOffer, view.MatchStatus)

	var m db.Match
	require.NoError(t, dbase.First(&m, "id = ?", "m1").Error)
	assert.Equal(t, mstatus.StatusRoomOffer, m.Status)
}

// A second offer replaces the first instead of piling up assignment rows.
func TestReofferReplacesStandingOffer(t *testing.T) {
	ctx := context.Background()
	svc, dbase := setupService(t)

	_, err := svc.Offer(ctx, "bob", "m1", "room-1")
	require.NoError(t, err)
	view, err := svc.Offer(ctx, "bob", "m1", "room-2")
	require.NoError(t, err)
	assert.Equal(t, "room-2", view.RoomID)

	var count int64
	require.NoError(t, dbase.Model(&db.RoomAssignment{}).
		Where("match_id = ?", "m1").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestResolveAcceptAssignsRoom(t *testing.T) {
	ctx := context.Background()
	svc, dbase := setupService(t)

	offered, err := svc.Offer(ctx, "bob", "m1", "room-1")
	require.NoError(t, err)

	// only the assignee may resolve
	_, err = svc.Resolve(ctx, "bob", offered.ID, "accept")
	assert.True(t, apperr.IsKind(err, apperr.KindAuthorization))

	view, err := svc.Resolve(ctx, "alice", offered.ID, "accept")
	require.NoError(t, err)
	assert.Equal(t, db.AssignmentAccepted, view.Status)
	assert.Equal(t, mstatus.StatusRoomAssigned, view.MatchStatus)

	var m db.Match
	require.NoError(t, dbase.First(&m, "id = ?", "m1").Error)
	assert.Equal(t, mstatus.StatusRoomAssigned, m.Status)

	// resolving twice conflicts
	_, err = svc.Resolve(ctx, "alice", offered.ID, "accept")
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestResolveRejectAllowsReoffer(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	offered, err := svc.Offer(ctx, "bob", "m1", "room-1")
	require.NoError(t, err)

	view, err := svc.Resolve(ctx, "alice", offered.ID, "reject")
	require.NoError(t, err)
	assert.Equal(t, db.AssignmentRejected, view.Status)
	assert.Equal(t, mstatus.StatusRoomDeclined, view.MatchStatus)

	// the default configuration lets the owner try another room
	view, err = svc.Offer(ctx, "bob", "m1", "room-2")
	require.NoError(t, err)
	assert.Equal(t, mstatus.StatusRoomOffer, view.MatchStatus)
}

func TestGetRequiresParticipant(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, err := svc.Offer(ctx, "bob", "m1", "room-1")
	require.NoError(t, err)

	view, err := svc.Get(ctx, "alice", "m1")
	require.NoError(t, err)
	assert.Equal(t, "room-1", view.RoomID)

	_, err = svc.Get(ctx, "carol", "m1")
	assert.True(t, apperr.IsKind(err, apperr.KindAuthorization))
}

func TestGetWithoutOfferIsNotFound(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, err := svc.Get(ctx, "alice", "m1")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
