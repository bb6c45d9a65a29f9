// Package swipe implements the discovery feedback operations: recording a
// like or pass under the daily rate gate, detecting mutual likes, and
// exposing the consumed-count read API.
package swipe

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/homimatch/server/internal/app"
	"github.com/homimatch/server/internal/apperr"
	"github.com/homimatch/server/internal/clock"
	"github.com/homimatch/server/internal/db"
	"github.com/homimatch/server/internal/match"
	"github.com/homimatch/server/internal/metrics"
	"github.com/homimatch/server/internal/notify"
	"github.com/homimatch/server/internal/repository"
)

// Service contains the swipe business logic.
type Service struct {
	appCtx      *app.AppContext
	swipeRepo   *repository.SwipeRepository
	matchRepo   *repository.MatchRepository
	profileRepo *repository.ProfileRepository
	chatRepo    *repository.ChatRepository
}

// NewService creates the swipe service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:      appCtx,
		swipeRepo:   repository.NewSwipeRepository(appCtx.DB),
		matchRepo:   repository.NewMatchRepository(appCtx.DB),
		profileRepo: repository.NewProfileRepository(appCtx.DB),
		chatRepo:    repository.NewChatRepository(appCtx.DB),
	}
}

// Result reports the outcome of a swipe to the caller.
type Result struct {
	Action   string  `json:"action"`
	Mutual   bool    `json:"mutual"`
	MatchID  *string `json:"match_id,omitempty"`
	Consumed int64   `json:"consumed"`
}

// Record applies a like or pass from the caller toward a target. Likes and
// passes both consume the daily allowance. A like against a standing
// reciprocal like creates an accepted match with its chat thread.
func (s *Service) Record(ctx context.Context, userID, targetID, action string) (Result, error) {
	if action != db.SwipeLike && action != db.SwipePass {
		return Result{}, apperr.Validation("invalid_action", "action must be like or pass")
	}
	if targetID == "" {
		return Result{}, apperr.Validation("target_required", "target_id is required")
	}
	if targetID == userID {
		return Result{}, apperr.Validation("self_swipe", "cannot swipe on yourself")
	}
	if _, err := s.profileRepo.FindByUserID(ctx, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Result{}, apperr.NotFound("profile_not_found", "target profile not found")
		}
		return Result{}, apperr.Dependency(err)
	}

	now := s.appCtx.Clock.Now()
	consumed, err := s.appCtx.RedisCache.IncrSwipeCount(ctx, userID, now)
	if err != nil {
		return Result{}, apperr.Dependency(err)
	}
	if consumed > s.appCtx.Config.Limits.DailySwipes {
		return Result{}, apperr.Conflict("swipe_limit_reached", "daily swipe limit reached")
	}

	if err := s.swipeRepo.CreateOrUpdate(ctx, userID, targetID, action); err != nil {
		return Result{}, apperr.Dependency(err)
	}
	metrics.SwipesTotal.WithLabelValues(action).Inc()

	res := Result{Action: action, Consumed: consumed}
	if action != db.SwipeLike {
		return res, nil
	}

	reciprocal, err := s.swipeRepo.HasLiked(ctx, targetID, userID)
	if err != nil {
		return Result{}, apperr.Dependency(err)
	}
	if !reciprocal {
		return res, nil
	}

	m, err := s.ensureMutualMatch(ctx, userID, targetID)
	if err != nil {
		return Result{}, err
	}
	if m != nil {
		res.Mutual = true
		res.MatchID = &m.ID
	}
	return res, nil
}

// ensureMutualMatch creates the accepted match for a mutual like, or reuses
// the pair's existing match. A blocked pair swallows the mutual silently so
// the swipe response does not leak the rejection.
func (s *Service) ensureMutualMatch(ctx context.Context, userID, targetID string) (*db.Match, error) {
	existing, err := s.matchRepo.FindByPair(ctx, userID, targetID)
	if err != nil {
		return nil, apperr.Dependency(err)
	}
	if existing != nil {
		if existing.Status.Blocked() {
			return nil, nil
		}
		return existing, nil
	}

	m := &db.Match{
		ID:      uuid.NewString(),
		UserAID: userID,
		UserBID: targetID,
		Status:  match.StatusAccepted,
	}
	err = s.appCtx.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.matchRepo.WithTx(tx).Create(ctx, m); err != nil {
			return err
		}
		_, err := s.chatRepo.WithTx(tx).GetOrCreate(ctx, m.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			winner, readErr := s.matchRepo.FindByPair(ctx, userID, targetID)
			if readErr != nil || winner == nil {
				return nil, apperr.Dependency(err)
			}
			if winner.Status.Blocked() {
				return nil, nil
			}
			return winner, nil
		}
		return nil, apperr.Dependency(err)
	}

	metrics.MatchesCreatedTotal.Inc()
	s.appCtx.Notifier.Publish(ctx, notify.Event{
		Type:        notify.TypeMatchCreated,
		MatchID:     m.ID,
		ActorID:     userID,
		RecipientID: targetID,
		Status:      m.Status,
	})
	s.appCtx.Logger.Info("mutual match created", "match_id", m.ID)
	return m, nil
}

// Count returns how many swipes the caller consumed on a given UTC day.
// A missing or malformed date falls back to today.
func (s *Service) Count(ctx context.Context, userID, date string) (string, int64, error) {
	if !clock.ValidDayKey(date) {
		date = clock.DayKey(s.appCtx.Clock.Now())
	}
	n, err := s.appCtx.RedisCache.GetSwipeCount(ctx, userID, date)
	if err != nil {
		return "", 0, apperr.Dependency(err)
	}
	return date, n, nil
}
