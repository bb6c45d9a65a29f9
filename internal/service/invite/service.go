// Package invite implements invite-code issuance for rooms that are still
// open, so the owner can bring someone in from outside the matching flow.
package invite

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/homimatch/server/internal/app"
	"github.com/homimatch/server/internal/apperr"
	"github.com/homimatch/server/internal/db"
	"github.com/homimatch/server/internal/metrics"
	"github.com/homimatch/server/internal/repository"
)

// codeAlphabet omits the lookalike symbols 0, O, 1 and I so codes survive
// being read aloud or retyped.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	codeLength  = 8
	maxAttempts = 5
)

// Service contains the invite-code business logic.
type Service struct {
	appCtx         *app.AppContext
	roomRepo       *repository.RoomRepository
	assignmentRepo *repository.AssignmentRepository
	inviteRepo     *repository.InviteRepository
}

// NewService creates the invite service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:         appCtx,
		roomRepo:       repository.NewRoomRepository(appCtx.DB),
		assignmentRepo: repository.NewAssignmentRepository(appCtx.DB),
		inviteRepo:     repository.NewInviteRepository(appCtx.DB),
	}
}

// View is the caller-facing shape of an issued invite code.
type View struct {
	Code      string     `json:"code"`
	RoomID    string     `json:"room_id"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Issue mints a new invite code for a room. The caller must own the room,
// the room must be a private room rather than a common area, and the room
// must not already be taken through an accepted assignment.
func (s *Service) Issue(ctx context.Context, userID, roomID string, expiresInHours int) (View, error) {
	if roomID == "" {
		return View{}, apperr.Validation("room_required", "room_id is required")
	}
	if expiresInHours < 0 {
		return View{}, apperr.Validation("invalid_expiry", "expires_in_hours must not be negative")
	}

	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return View{}, apperr.NotFound("room_not_found", "room not found")
		}
		return View{}, apperr.Dependency(err)
	}
	if room.OwnerID != userID {
		return View{}, apperr.Authorization("not_room_owner", "only the room owner can issue invite codes")
	}
	if room.Category == db.RoomCategoryCommonArea {
		return View{}, apperr.Validation("common_area", "invite codes cannot be issued for common areas")
	}

	accepted, err := s.assignmentRepo.HasAcceptedForRoom(ctx, roomID)
	if err != nil {
		return View{}, apperr.Dependency(err)
	}
	if accepted {
		return View{}, apperr.Conflict("room_already_assigned", "room already has an accepted assignment")
	}

	var expiresAt *time.Time
	if expiresInHours > 0 {
		t := s.appCtx.Clock.Now().Add(time.Duration(expiresInHours) * time.Hour)
		expiresAt = &t
	}

	// The unique index on the code column resolves generation races; a
	// collision just means another roll.
	for attempt := 0; attempt < maxAttempts; attempt++ {
		code, err := randomCode()
		if err != nil {
			return View{}, apperr.Dependency(err)
		}
		invite := &db.InviteCode{
			ID:        uuid.NewString(),
			Code:      code,
			RoomID:    roomID,
			OwnerID:   userID,
			ExpiresAt: expiresAt,
		}
		if err := s.inviteRepo.Insert(ctx, invite); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue
			}
			return View{}, apperr.Dependency(err)
		}
		metrics.InviteCodesIssuedTotal.Inc()
		s.appCtx.Logger.Info("invite code issued", "room_id", roomID)
		return View{Code: code, RoomID: roomID, ExpiresAt: expiresAt}, nil
	}
	return View{}, apperr.Dependency(fmt.Errorf("invite code generation exhausted %d attempts", maxAttempts))
}

func randomCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}
