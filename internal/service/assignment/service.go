// Package assignment implements the room-assignment workflow layered on an
// accepted match: the offering participant proposes a concrete room, the
// seeking participant accepts or rejects, and the match status tracks the
// outcome.
package assignment

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/homimatch/server/internal/app"
	"github.com/homimatch/server/internal/apperr"
	"github.com/homimatch/server/internal/db"
	"github.com/homimatch/server/internal/match"
	"github.com/homimatch/server/internal/metrics"
	"github.com/homimatch/server/internal/notify"
	"github.com/homimatch/server/internal/repository"
)

// Service contains the room-assignment business logic.
type Service struct {
	appCtx         *app.AppContext
	machine        match.Machine
	matchRepo      *repository.MatchRepository
	assignmentRepo *repository.AssignmentRepository
	roomRepo       *repository.RoomRepository
	profileRepo    *repository.ProfileRepository
}

// NewService creates the assignment service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:         appCtx,
		machine:        match.Machine{AllowReofferAfterDecline: appCtx.Config.Match.AllowReofferAfterDecline},
		matchRepo:      repository.NewMatchRepository(appCtx.DB),
		assignmentRepo: repository.NewAssignmentRepository(appCtx.DB),
		roomRepo:       repository.NewRoomRepository(appCtx.DB),
		profileRepo:    repository.NewProfileRepository(appCtx.DB),
	}
}

// View is the caller-facing shape of a room assignment.
type View struct {
	ID          string       `json:"id"`
	MatchID     string       `json:"match_id"`
	RoomID      string       `json:"room_id"`
	AssigneeID  string       `json:"assignee_id"`
	Status      string       `json:"status"`
	MatchStatus match.Status `json:"match_status"`
}

// Get returns the assignment attached to a match. Participants only.
func (s *Service) Get(ctx context.Context, userID, matchID string) (View, error) {
	m, err := s.findMatchForParticipant(ctx, userID, matchID)
	if err != nil {
		return View{}, err
	}
	a, err := s.assignmentRepo.FindByMatch(ctx, matchID)
	if err != nil {
		return View{}, apperr.Dependency(err)
	}
	if a == nil {
		return View{}, apperr.NotFound("assignment_not_found", "no room assignment for this match")
	}
	return toView(a, m.Status), nil
}

// Offer proposes a room to the other participant. Only the offering-side
// participant may offer, only rooms they own, and only while the state
// machine admits an offer. Repeat offers replace the standing one.
func (s *Service) Offer(ctx context.Context, userID, matchID, roomID string) (View, error) {
	if roomID == "" {
		return View{}, apperr.Validation("room_required", "room_id is required")
	}

	m, err := s.findMatchForParticipant(ctx, userID, matchID)
	if err != nil {
		return View{}, err
	}
	owner, err := s.resolveOwner(ctx, m)
	if err != nil {
		return View{}, err
	}
	if owner != userID {
		return View{}, apperr.Authorization("not_room_owner", "only the offering participant can propose a room")
	}

	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return View{}, apperr.NotFound("room_not_found", "room not found")
		}
		return View{}, apperr.Dependency(err)
	}
	if room.OwnerID != userID {
		return View{}, apperr.Authorization("not_room_owner", "you can only offer rooms you own")
	}
	if room.Category == db.RoomCategoryCommonArea {
		return View{}, apperr.Validation("common_area", "common areas cannot be offered as rooms")
	}

	next, ok := s.machine.Next(m.Status, match.EventOfferRoom)
	if !ok {
		return View{}, apperr.Conflict("invalid_transition", "match status does not allow a room offer")
	}

	assigneeID := m.OtherParticipant(userID)
	var view View
	err = s.appCtx.DB.Transaction(func(tx *gorm.DB) error {
		a, err := s.assignmentRepo.WithTx(tx).UpsertOffer(ctx, matchID, roomID, assigneeID)
		if err != nil {
			return err
		}
		if err := s.matchRepo.WithTx(tx).UpdateStatus(ctx, matchID, m.Status, next); err != nil {
			return err
		}
		view = toView(a, next)
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return View{}, apperr.Conflict("invalid_transition", "match status changed, retry the action")
		}
		return View{}, apperr.Dependency(err)
	}

	metrics.MatchTransitionsTotal.WithLabelValues(string(next)).Inc()
	s.appCtx.Notifier.Publish(ctx, notify.Event{
		Type:        notify.TypeRoomOffered,
		MatchID:     matchID,
		ActorID:     userID,
		RecipientID: assigneeID,
		Status:      next,
		RoomID:      roomID,
	})
	s.appCtx.Logger.Info("room offered", "match_id", matchID, "room_id", roomID)
	return view, nil
}

// Resolve accepts or rejects a standing offer. Only the assignee may
// resolve, and only while the assignment is still in the offered state.
func (s *Service) Resolve(ctx context.Context, userID, assignmentID, action string) (View, error) {
	var ev match.Event
	var assignmentStatus string
	switch action {
	case "accept":
		ev, assignmentStatus = match.EventRoomAccepted, db.AssignmentAccepted
	case "reject":
		ev, assignmentStatus = match.EventRoomDeclined, db.AssignmentRejected
	default:
		return View{}, apperr.Validation("invalid_action", "action must be accept or reject")
	}

	a, err := s.assignmentRepo.FindByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return View{}, apperr.NotFound("assignment_not_found", "assignment not found")
		}
		return View{}, apperr.Dependency(err)
	}
	if a.AssigneeID != userID {
		return View{}, apperr.Authorization("not_assignee", "only the offered participant can resolve the assignment")
	}
	if a.Status != db.AssignmentOffered {
		return View{}, apperr.Conflict("already_resolved", "assignment has already been resolved")
	}

	m, err := s.matchRepo.FindByID(ctx, a.MatchID)
	if err != nil {
		return View{}, apperr.Dependency(err)
	}
	next, ok := s.machine.Next(m.Status, ev)
	if !ok {
		return View{}, apperr.Conflict("invalid_transition", "match status does not allow this action")
	}

	err = s.appCtx.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.assignmentRepo.WithTx(tx).UpdateStatus(ctx, a.ID, db.AssignmentOffered, assignmentStatus); err != nil {
			return err
		}
		return s.matchRepo.WithTx(tx).UpdateStatus(ctx, a.MatchID, m.Status, next)
	})
	if err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return View{}, apperr.Conflict("already_resolved", "assignment was resolved concurrently")
		}
		return View{}, apperr.Dependency(err)
	}

	a.Status = assignmentStatus
	metrics.MatchTransitionsTotal.WithLabelValues(string(next)).Inc()
	s.appCtx.Notifier.Publish(ctx, notify.Event{
		Type:        notify.TypeRoomResolved,
		MatchID:     a.MatchID,
		ActorID:     userID,
		RecipientID: m.OtherParticipant(userID),
		Status:      next,
		RoomID:      a.RoomID,
	})
	s.appCtx.Logger.Info("room assignment resolved",
		"assignment_id", a.ID, "action", action, "match_status", next)
	return toView(a, next), nil
}

func (s *Service) findMatchForParticipant(ctx context.Context, userID, matchID string) (*db.Match, error) {
	if matchID == "" {
		return nil, apperr.Validation("match_required", "match_id is required")
	}
	m, err := s.matchRepo.FindByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("match_not_found", "match not found")
		}
		return nil, apperr.Dependency(err)
	}
	if !m.HasParticipant(userID) {
		return nil, apperr.Authorization("not_participant", "you can only view matches you participate in")
	}
	return m, nil
}

// resolveOwner finds the match participant whose profile declares the
// offering intent. Exactly one participant must be offering; anything else
// means the pair cannot run the room workflow.
func (s *Service) resolveOwner(ctx context.Context, m *db.Match) (string, error) {
	a, err := s.profileRepo.FindByUserID(ctx, m.UserAID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", apperr.Dependency(err)
	}
	b, err := s.profileRepo.FindByUserID(ctx, m.UserBID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", apperr.Dependency(err)
	}

	aOffering := a != nil && a.HousingIntent == db.IntentOffering
	bOffering := b != nil && b.HousingIntent == db.IntentOffering
	switch {
	case aOffering && !bOffering:
		return m.UserAID, nil
	case bOffering && !aOffering:
		return m.UserBID, nil
	default:
		return "", apperr.Conflict("no_room_owner", "match has no single offering participant")
	}
}

func toView(a *db.RoomAssignment, matchStatus match.Status) View {
	return View{
		ID:          a.ID,
		MatchID:     a.MatchID,
		RoomID:      a.RoomID,
		AssigneeID:  a.AssigneeID,
		Status:      a.Status,
		MatchStatus: matchStatus,
	}
}
