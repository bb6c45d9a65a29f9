// Package match implements the match lifecycle operations: creation,
// listing, and status transitions, with the authorization rules that gate
// every mutation.
package match

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/homimatch/server/internal/app"
	"github.com/homimatch/server/internal/apperr"
	"github.com/homimatch/server/internal/db"
	"github.com/homimatch/server/internal/match"
	"github.com/homimatch/server/internal/metrics"
	"github.com/homimatch/server/internal/notify"
	"github.com/homimatch/server/internal/repository"
)

const defaultPageSize = 20

// Service contains the match lifecycle business logic.
type Service struct {
	appCtx      *app.AppContext
	machine     match.Machine
	matchRepo   *repository.MatchRepository
	profileRepo *repository.ProfileRepository
	chatRepo    *repository.ChatRepository
}

// NewService creates the match service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:      appCtx,
		machine:     match.Machine{AllowReofferAfterDecline: appCtx.Config.Match.AllowReofferAfterDecline},
		matchRepo:   repository.NewMatchRepository(appCtx.DB),
		profileRepo: repository.NewProfileRepository(appCtx.DB),
		chatRepo:    repository.NewChatRepository(appCtx.DB),
	}
}

// View is the caller-facing shape of a match.
type View struct {
	ID        string       `json:"id"`
	UserAID   string       `json:"user_a_id"`
	UserBID   string       `json:"user_b_id"`
	Status    match.Status `json:"status"`
	CreatedAt int64        `json:"created_at"`
	UpdatedAt int64        `json:"updated_at"`
}

func toView(m *db.Match) View {
	return View{
		ID:        m.ID,
		UserAID:   m.UserAID,
		UserBID:   m.UserBID,
		Status:    m.Status,
		CreatedAt: m.CreatedAt.UnixMilli(),
		UpdatedAt: m.UpdatedAt.UnixMilli(),
	}
}

// List returns the caller's matches, newest activity first. Statuses
// outside the readable allow-list are filtered out so an initiator cannot
// probe a rejection through the read API.
func (s *Service) List(ctx context.Context, userID string, paginationToken *string) ([]View, *string, error) {
	matches, next, err := s.matchRepo.ListForUser(ctx, userID, paginationToken, defaultPageSize)
	if err != nil {
		return nil, nil, apperr.Dependency(err)
	}

	views := make([]View, 0, len(matches))
	for i := range matches {
		if !match.Readable[matches[i].Status] {
			continue
		}
		views = append(views, toView(&matches[i]))
	}
	return views, next, nil
}

// Create opens a match from the caller toward a recipient, or accepts the
// recipient's own pending request if one exists. Pairs blocked by a prior
// rejection or unmatch can never be recreated.
func (s *Service) Create(ctx context.Context, userID, recipientID string) (View, error) {
	if recipientID == "" {
		return View{}, apperr.Validation("recipient_required", "recipient_id is required")
	}
	if recipientID == userID {
		return View{}, apperr.Validation("self_match", "cannot create a match with yourself")
	}
	if _, err := s.profileRepo.FindByUserID(ctx, recipientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return View{}, apperr.NotFound("profile_not_found", "recipient profile not found")
		}
		return View{}, apperr.Dependency(err)
	}

	existing, err := s.matchRepo.FindByPair(ctx, userID, recipientID)
	if err != nil {
		return View{}, apperr.Dependency(err)
	}
	if existing != nil {
		return s.resolveExisting(ctx, userID, existing)
	}

	m := &db.Match{
		ID:      uuid.NewString(),
		UserAID: userID,
		UserBID: recipientID,
		Status:  match.StatusPending,
	}
	if err := s.matchRepo.Create(ctx, m); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race: someone created the pair first. Treat the
			// violation as "already exists" and resolve against the winner.
			winner, readErr := s.matchRepo.FindByPair(ctx, userID, recipientID)
			if readErr != nil || winner == nil {
				return View{}, apperr.Dependency(err)
			}
			return s.resolveExisting(ctx, userID, winner)
		}
		return View{}, apperr.Dependency(err)
	}

	metrics.MatchesCreatedTotal.Inc()
	s.publish(ctx, notify.TypeMatchCreated, m, userID)
	s.appCtx.Logger.Info("match created", "match_id", m.ID, "initiator", userID)
	return toView(m), nil
}

// resolveExisting decides what an attempted create means against a match
// that already exists for the pair.
func (s *Service) resolveExisting(ctx context.Context, userID string, existing *db.Match) (View, error) {
	if existing.Status.Blocked() {
		return View{}, apperr.Conflict("match_blocked", "you cannot contact this person")
	}
	if existing.Status == match.StatusPending {
		if existing.UserAID == userID {
			return View{}, apperr.Conflict("request_pending", "you already have an active request")
		}
		// The other party asked first. Accepting takes precedence over
		// creating a new request.
		return s.applyTransition(ctx, existing, match.EventAccept, userID)
	}
	return View{}, apperr.Conflict("match_exists", "match already exists")
}

// UpdateStatus applies a caller-requested status change. Only match
// participants may mutate, and only along the transition table.
func (s *Service) UpdateStatus(ctx context.Context, userID, matchID string, requested match.Status) (View, error) {
	ev, ok := eventForRequestedStatus(requested)
	if !ok {
		return View{}, apperr.Validation("invalid_status", "invalid status value")
	}

	m, err := s.matchRepo.FindByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return View{}, apperr.NotFound("match_not_found", "match not found")
		}
		return View{}, apperr.Dependency(err)
	}
	if !m.HasParticipant(userID) {
		return View{}, apperr.Authorization("not_participant", "you can only update matches you participate in")
	}

	return s.applyTransition(ctx, m, ev, userID)
}

// applyTransition validates an event against the state machine and
// persists the resulting status together with its side effects (chat
// thread on acceptance) in one transaction.
func (s *Service) applyTransition(ctx context.Context, m *db.Match, ev match.Event, actorID string) (View, error) {
	next, ok := s.machine.Next(m.Status, ev)
	if !ok {
		return View{}, apperr.Conflict("invalid_transition", "match status does not allow this action")
	}

	err := s.appCtx.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.matchRepo.WithTx(tx).UpdateStatus(ctx, m.ID, m.Status, next); err != nil {
			return err
		}
		if next == match.StatusAccepted {
			if _, err := s.chatRepo.WithTx(tx).GetOrCreate(ctx, m.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return View{}, apperr.Conflict("invalid_transition", "match status changed, retry the action")
		}
		return View{}, apperr.Dependency(err)
	}

	m.Status = next
	metrics.MatchTransitionsTotal.WithLabelValues(string(next)).Inc()
	s.publish(ctx, notify.TypeMatchStatusChanged, m, actorID)
	s.appCtx.Logger.Info("match transition", "match_id", m.ID, "event", ev, "status", next)
	return toView(m), nil
}

// AcceptOnReply moves a pending match to accepted when the recipient
// answers the request. Used by the message-request flow, not exposed as a
// user action.
func (s *Service) AcceptOnReply(ctx context.Context, m *db.Match, actorID string) (View, error) {
	return s.applyTransition(ctx, m, match.EventReply, actorID)
}

// publish emits a notification event with the denormalized actor data the
// dispatcher needs. Best effort: a missing profile degrades to IDs only.
func (s *Service) publish(ctx context.Context, eventType string, m *db.Match, actorID string) {
	ev := notify.Event{
		Type:        eventType,
		MatchID:     m.ID,
		ActorID:     actorID,
		RecipientID: m.OtherParticipant(actorID),
		Status:      m.Status,
	}
	if p, err := s.profileRepo.FindByUserID(ctx, actorID); err == nil {
		ev.ActorName = p.DisplayName
		ev.ActorAvatar = p.AvatarURL
	}
	s.appCtx.Notifier.Publish(ctx, ev)
}

func eventForRequestedStatus(requested match.Status) (match.Event, bool) {
	switch requested {
	case match.StatusAccepted:
		return match.EventAccept, true
	case match.StatusRejected:
		return match.EventReject, true
	case match.StatusUnmatched:
		return match.EventUnmatch, true
	}
	return "", false
}
