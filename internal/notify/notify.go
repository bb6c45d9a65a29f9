// Package notify is the boundary to the push-notification dispatcher.
// The core emits state-change events with enough denormalized data for the
// dispatcher to render a message; delivery is not the core's concern.
package notify

import (
	"context"
	"log/slog"

	"github.com/homimatch/server/internal/match"
)

// Event types emitted by the coordinator.
const (
	TypeMatchCreated       = "match_created"
	TypeMatchStatusChanged = "match_status_changed"
	TypeRoomOffered        = "room_offered"
	TypeRoomResolved       = "room_resolved"
	TypeMessageRequested   = "message_requested"
)

// Event is a state-change notification. Actor is the user whose action
// caused the change, Recipient the user to notify.
type Event struct {
	Type        string
	MatchID     string
	ActorID     string
	ActorName   string
	ActorAvatar string
	RecipientID string
	Status      match.Status
	RoomID      string
}

// Notifier dispatches events to the external notification collaborator.
// Implementations must not fail the triggering operation: delivery is
// fire-and-forget from the coordinator's point of view.
type Notifier interface {
	Publish(ctx context.Context, ev Event)
}

// LogNotifier writes events to the log. Stands in wherever a real
// dispatcher is not wired (development, tests).
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Publish(_ context.Context, ev Event) {
	n.log.Info("notification",
		"type", ev.Type,
		"match_id", ev.MatchID,
		"actor_id", ev.ActorID,
		"recipient_id", ev.RecipientID,
		"status", ev.Status,
	)
}
