// Package message implements the message-request flow: sending a first
// message toward another user under the weekly quota, which opens a pending
// match, or answers (and thereby accepts) a request the other party opened.
package message

import (
	"context"
	"errors"
	"strings"

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

const maxMessageLength = 1000

// Service contains the message-request business logic.
type Service struct {
	appCtx      *app.AppContext
	machine     match.Machine
	matchRepo   *repository.MatchRepository
	profileRepo *repository.ProfileRepository
	chatRepo    *repository.ChatRepository
	limitRepo   *repository.LimitRepository
}

// NewService creates the message service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:      appCtx,
		machine:     match.Machine{AllowReofferAfterDecline: appCtx.Config.Match.AllowReofferAfterDecline},
		matchRepo:   repository.NewMatchRepository(appCtx.DB),
		profileRepo: repository.NewProfileRepository(appCtx.DB),
		chatRepo:    repository.NewChatRepository(appCtx.DB),
		limitRepo:   repository.NewLimitRepository(appCtx.DB),
	}
}

// Result reports the outcome of a message request.
type Result struct {
	MatchID     string       `json:"match_id"`
	MatchStatus match.Status `json:"match_status"`
	ChatID      string       `json:"chat_id"`
	MessageID   string       `json:"message_id"`
	// Remaining is the weekly allowance left after this send. Nil for
	// non-premium senders, whose single trial does not renew.
	Remaining *int `json:"remaining,omitempty"`
}

// Send delivers a message request from the caller to a recipient. The whole
// flow runs in one transaction: quota consumption, match creation or
// acceptance, chat creation, and the message itself commit or roll back
// together.
func (s *Service) Send(ctx context.Context, senderID, recipientID, body string) (Result, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return Result{}, apperr.Validation("message_required", "message must not be empty")
	}
	if len(body) > maxMessageLength {
		return Result{}, apperr.Validation("message_too_long", "message exceeds 1000 characters")
	}
	if recipientID == "" {
		return Result{}, apperr.Validation("recipient_required", "recipient_id is required")
	}
	if recipientID == senderID {
		return Result{}, apperr.Validation("self_message", "cannot send a message request to yourself")
	}

	sender, err := s.profileRepo.FindByUserID(ctx, senderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Result{}, apperr.Authorization("profile_required", "complete your profile before sending requests")
		}
		return Result{}, apperr.Dependency(err)
	}
	if !sender.Searchable {
		return Result{}, apperr.Authorization("profile_hidden", "your profile must be visible to send requests")
	}
	if _, err := s.profileRepo.FindByUserID(ctx, recipientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Result{}, apperr.NotFound("profile_not_found", "recipient profile not found")
		}
		return Result{}, apperr.Dependency(err)
	}

	limit, err := s.limitRepo.Get(ctx, senderID)
	if err != nil {
		return Result{}, apperr.Dependency(err)
	}
	nextLimit, remaining, err := s.consumeQuota(sender, limit)
	if err != nil {
		return Result{}, err
	}

	var res Result
	var outcome string
	var resolved *db.Match
	txErr := s.appCtx.DB.Transaction(func(tx *gorm.DB) error {
		m, accepted, err := s.resolveMatch(ctx, tx, senderID, recipientID)
		if err != nil {
			return err
		}
		if !match.Readable[m.Status] {
			return apperr.Conflict("match_blocked", "you cannot contact this person")
		}

		chat, err := s.chatRepo.WithTx(tx).GetOrCreate(ctx, m.ID)
		if err != nil {
			return err
		}
		msg, err := s.chatRepo.WithTx(tx).InsertMessage(ctx, chat.ID, senderID, body)
		if err != nil {
			return err
		}
		if err := s.chatRepo.WithTx(tx).Touch(ctx, chat.ID); err != nil {
			return err
		}
		if err := s.limitRepo.WithTx(tx).Upsert(ctx, nextLimit); err != nil {
			return err
		}

		res = Result{
			MatchID:     m.ID,
			MatchStatus: m.Status,
			ChatID:      chat.ID,
			MessageID:   msg.ID,
			Remaining:   remaining,
		}
		outcome = "requested"
		if accepted {
			outcome = "accepted"
		}
		resolved = m
		return nil
	})
	if txErr != nil {
		if _, ok := apperr.As(txErr); ok {
			return Result{}, txErr
		}
		if errors.Is(txErr, repository.ErrStaleStatus) {
			return Result{}, apperr.Conflict("invalid_transition", "match status changed, retry the action")
		}
		return Result{}, apperr.Dependency(txErr)
	}

	// Notify only once the state is committed; an event for a rolled-back
	// send would point at nothing.
	s.publish(ctx, resolved, sender)
	metrics.MessageRequestsTotal.WithLabelValues(outcome).Inc()
	s.appCtx.Logger.Info("message request sent",
		"match_id", res.MatchID, "sender", senderID, "outcome", outcome)
	return res, nil
}

// consumeQuota checks the sender's allowance and returns the limit row to
// persist on success. Premium senders get a weekly allowance that lazily
// resets when the stored Monday marker falls behind the current week;
// non-premium senders get one lifetime trial.
func (s *Service) consumeQuota(sender *db.Profile, limit *db.MessageRequestLimit) (*db.MessageRequestLimit, *int, error) {
	week := clock.WeekStart(s.appCtx.Clock.Now())
	if limit == nil {
		limit = &db.MessageRequestLimit{UserID: sender.UserID, WeekStart: week}
	}

	if !sender.Premium {
		if limit.UsedTrial {
			return nil, nil, apperr.Conflict("trial_used",
				"free accounts can send one message request; upgrade for more")
		}
		limit.UsedTrial = true
		limit.WeekStart = week
		return limit, nil, nil
	}

	if limit.WeekStart != week {
		limit.WeekStart = week
		limit.WeeklyCount = 0
	}
	allowance := s.appCtx.Config.Limits.WeeklyMessageRequests
	if limit.WeeklyCount >= allowance {
		return nil, nil, apperr.Conflict("quota_exceeded", "weekly message request limit reached")
	}
	limit.WeeklyCount++
	remaining := allowance - limit.WeeklyCount
	return limit, &remaining, nil
}

// resolveMatch finds or creates the match the message lands on. Answering
// the other party's pending request accepts it; blocked pairs and the
// sender's own standing request are conflicts.
func (s *Service) resolveMatch(ctx context.Context, tx *gorm.DB, senderID, recipientID string) (*db.Match, bool, error) {
	repo := s.matchRepo.WithTx(tx)

	existing, err := repo.FindByPair(ctx, senderID, recipientID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		if existing.Status.Blocked() {
			return nil, false, apperr.Conflict("match_blocked", "you cannot contact this person")
		}
		if existing.Status == match.StatusPending {
			if existing.UserAID == senderID {
				return nil, false, apperr.Conflict("request_pending", "you already have an active request")
			}
			next, ok := s.machine.Next(existing.Status, match.EventReply)
			if !ok {
				return nil, false, apperr.Conflict("invalid_transition", "match status does not allow this action")
			}
			if err := repo.UpdateStatus(ctx, existing.ID, existing.Status, next); err != nil {
				return nil, false, err
			}
			existing.Status = next
			metrics.MatchTransitionsTotal.WithLabelValues(string(next)).Inc()
			return existing, true, nil
		}
		return existing, false, nil
	}

	m := &db.Match{
		ID:      uuid.NewString(),
		UserAID: senderID,
		UserBID: recipientID,
		Status:  match.StatusPending,
	}
	if err := repo.Create(ctx, m); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			winner, readErr := repo.FindByPair(ctx, senderID, recipientID)
			if readErr != nil {
				return nil, false, readErr
			}
			if winner != nil {
				return winner, false, nil
			}
		}
		return nil, false, err
	}
	metrics.MatchesCreatedTotal.Inc()
	return m, false, nil
}

func (s *Service) publish(ctx context.Context, m *db.Match, sender *db.Profile) {
	s.appCtx.Notifier.Publish(ctx, notify.Event{
		Type:        notify.TypeMessageRequested,
		MatchID:     m.ID,
		ActorID:     sender.UserID,
		ActorName:   sender.DisplayName,
		ActorAvatar: sender.AvatarURL,
		RecipientID: m.OtherParticipant(sender.UserID),
		Status:      m.Status,
	})
}
