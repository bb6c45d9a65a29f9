// Package match defines the match lifecycle: the closed status enum, the
// events that move a match between statuses, and the transition table that
// makes illegal transitions a checkable set instead of scattered string
// comparisons.
package match

// Status is the lifecycle state of a match between two users.
type Status string

const (
	StatusPending      Status = "pending"
	StatusAccepted     Status = "accepted"
	StatusRejected     Status = "rejected"
	StatusUnmatched    Status = "unmatched"
	StatusRoomOffer    Status = "room_offer"
	StatusRoomAssigned Status = "room_assigned"
	StatusRoomDeclined Status = "room_declined"
)

// Event is a lifecycle trigger applied to a match.
type Event string

const (
	// EventAccept and EventReject resolve a pending request.
	EventAccept Event = "accept"
	EventReject Event = "reject"
	// EventReply is the recipient answering a pending request with a
	// message; it accepts the match as a side effect.
	EventReply Event = "reply"
	// EventUnmatch dissolves an accepted match.
	EventUnmatch Event = "unmatch"
	// EventOfferRoom enters the room-assignment workflow.
	EventOfferRoom Event = "offer_room"
	// EventRoomAccepted / EventRoomDeclined are the assignee's resolution.
	EventRoomAccepted Event = "room_accepted"
	EventRoomDeclined Event = "room_declined"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusUnmatched,
		StatusRoomOffer, StatusRoomAssigned, StatusRoomDeclined:
		return true
	}
	return false
}

// Blocked reports whether s permanently blocks the pair: no transition may
// leave it and no new match may ever be created for the same pair.
func (s Status) Blocked() bool {
	return s == StatusRejected || s == StatusUnmatched
}

// Readable lists the statuses surfaced through read APIs. A pending
// outbound request must not let the initiator probe a rejected target, so
// rejected is absent.
var Readable = map[Status]bool{
	StatusPending:      true,
	StatusAccepted:     true,
	StatusRoomOffer:    true,
	StatusRoomAssigned: true,
	StatusRoomDeclined: true,
	StatusUnmatched:    true,
}

var transitions = map[Status]map[Event]Status{
	StatusPending: {
		EventAccept: StatusAccepted,
		EventReply:  StatusAccepted,
		EventReject: StatusRejected,
	},
	StatusAccepted: {
		EventUnmatch:   StatusUnmatched,
		EventOfferRoom: StatusRoomOffer,
	},
	StatusRoomOffer: {
		EventOfferRoom:    StatusRoomOffer, // re-offer overwrites the pending offer
		EventRoomAccepted: StatusRoomAssigned,
		EventRoomDeclined: StatusRoomDeclined,
	},
	// rejected, unmatched, room_assigned: no exits.
	// room_declined: see Machine.AllowReofferAfterDecline.
}

// Machine evaluates transitions under a configured re-offer policy. The
// zero value treats room_declined as terminal.
type Machine struct {
	AllowReofferAfterDecline bool
}

// Next returns the status reached by applying ev to from, or false when
// the transition is not allowed.
func (m Machine) Next(from Status, ev Event) (Status, bool) {
	if from == StatusRoomDeclined && ev == EventOfferRoom && m.AllowReofferAfterDecline {
		return StatusRoomOffer, true
	}
	to, ok := transitions[from][ev]
	return to, ok
}
