package db

import (
	"strings"
	"time"

	"github.com/homimatch/server/internal/match"
)

// Housing intents carried on a profile.
const (
	IntentSeeking  = "seeking"
	IntentOffering = "offering"
)

// Room categories. Invitations and assignments only apply to private rooms.
const (
	RoomCategoryRoom       = "room"
	RoomCategoryCommonArea = "common_area"
)

// Swipe actions.
const (
	SwipeLike = "like"
	SwipePass = "pass"
)

// Assignment statuses.
const (
	AssignmentOffered  = "offered"
	AssignmentAccepted = "accepted"
	AssignmentRejected = "rejected"
)

// User is the identity anchor. Credential verification happens upstream;
// this row exists for referential integrity and dev seeding.
type User struct {
	ID           string `gorm:"primaryKey;size:36"`
	Email        string `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Active       bool   `gorm:"default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Lifestyle holds the structured habit attributes used by the compatibility
// scorer. Ordinal fields use the level vocabularies in internal/matching;
// pointer booleans distinguish "not answered" from false.
type Lifestyle struct {
	Cleanliness string `json:"cleanliness,omitempty"`  // very_clean, clean, moderate, messy
	NoiseLevel  string `json:"noise_level,omitempty"`  // quiet, moderate, noisy
	Guests      string `json:"guests,omitempty"`       // never, rarely, occasional, frequently
	PartyHabits string `json:"party_habits,omitempty"` // never, occasionally, regularly
	Smoking     *bool  `json:"smoking,omitempty"`
	Pets        *bool  `json:"pets,omitempty"`
	RemoteWork  *bool  `json:"remote_work,omitempty"`
}

// Profile is the housing profile owned by one user.
type Profile struct {
	ID          string `gorm:"primaryKey;size:36"`
	UserID      string `gorm:"uniqueIndex;size:36;not null"`
	DisplayName string `gorm:"size:128"`
	Bio         string `gorm:"size:1024"`
	Gender      string `gorm:"size:32"`
	Occupation  string `gorm:"size:128"`
	University  string `gorm:"size:128"`
	City        string `gorm:"size:128"`

	// HousingIntent drives owner resolution in the room workflow.
	HousingIntent string `gorm:"size:16;index"`

	BudgetMin      *int
	BudgetMax      *int
	PreferredZones []string   `gorm:"serializer:json"`
	Interests      []string   `gorm:"serializer:json"`
	Lifestyle      *Lifestyle `gorm:"serializer:json"`
	Smoker         *bool

	AvatarURL  string `gorm:"size:512"`
	Premium    bool   `gorm:"default:false"`
	Searchable bool   `gorm:"default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Match is the durable relationship entity between two users.
//
// PairKey is the unordered pair normalized to "low:high" under a unique
// index. The index, not the create path, is what guarantees at most one
// match per pair under concurrent creation; inserts racing on the same pair
// surface gorm.ErrDuplicatedKey and are retried as reads.
type Match struct {
	ID      string `gorm:"primaryKey;size:36"`
	UserAID string `gorm:"size:36;not null;index"` // initiator
	UserBID string `gorm:"size:36;not null;index"`
	PairKey string `gorm:"uniqueIndex;size:80;not null"`

	Status match.Status `gorm:"size:16;not null;default:pending"`

	CreatedAt time.Time
	UpdatedAt time.Time `gorm:"index"`
}

// PairKey normalizes an unordered user pair to a canonical key.
func PairKey(a, b string) string {
	if strings.Compare(a, b) > 0 {
		a, b = b, a
	}
	return a + ":" + b
}

// HasParticipant reports whether userID is one of the two match parties.
func (m *Match) HasParticipant(userID string) bool {
	return m.UserAID == userID || m.UserBID == userID
}

// OtherParticipant returns the counterpart of userID in the match.
func (m *Match) OtherParticipant(userID string) string {
	if m.UserAID == userID {
		return m.UserBID
	}
	return m.UserAID
}

// Swipe records an actor's like/pass on a target.
// Composite PK keeps a single row per directed pair; a repeat swipe
// overwrites the action.
type Swipe struct {
	ActorID   string    `gorm:"primaryKey;size:36;index:idx_actor_target_action,priority:1"`
	TargetID  string    `gorm:"primaryKey;size:36;index:idx_actor_target_action,priority:2"`
	Action    string    `gorm:"size:8;not null;index:idx_actor_target_action,priority:3"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Room is a physical unit owned by an offering user.
type Room struct {
	ID           string `gorm:"primaryKey;size:36"`
	OwnerID      string `gorm:"size:36;not null;index"`
	Name         string `gorm:"size:128"`
	Category     string `gorm:"size:16;not null;default:room"`
	MonthlyPrice *int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RoomAssignment is the room-offer attached to a match. The unique index on
// MatchID is the upsert conflict target: near-simultaneous offers collapse
// to one row.
type RoomAssignment struct {
	ID         string `gorm:"primaryKey;size:36"`
	MatchID    string `gorm:"uniqueIndex;size:36;not null"`
	RoomID     string `gorm:"size:36;not null;index"`
	AssigneeID string `gorm:"size:36;not null"`
	Status     string `gorm:"size:16;not null;default:offered"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// InviteCode binds a short code to a room and its owner. Codes are unique;
// generation retries on collision.
type InviteCode struct {
	ID        string `gorm:"primaryKey;size:36"`
	Code      string `gorm:"uniqueIndex;size:16;not null"`
	RoomID    string `gorm:"size:36;not null;index"`
	OwnerID   string `gorm:"size:36;not null"`
	ExpiresAt *time.Time
	CreatedAt time.Time
}

// Chat is the conversation thread attached to a match, one per match.
type Chat struct {
	ID        string `gorm:"primaryKey;size:36"`
	MatchID   string `gorm:"uniqueIndex;size:36;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Message is a single chat message.
type Message struct {
	ID        string `gorm:"primaryKey;size:36"`
	ChatID    string `gorm:"size:36;not null;index"`
	SenderID  string `gorm:"size:36;not null"`
	Body      string `gorm:"size:1000;not null"`
	CreatedAt time.Time
}

// MessageRequestLimit is the per-user weekly quota row. WeekStart holds the
// Monday day-key of the last week touched; a stale marker means the count
// logically reset to zero. UsedTrial never resets.
type MessageRequestLimit struct {
	UserID      string `gorm:"primaryKey;size:36"`
	WeeklyCount int    `gorm:"not null;default:0"`
	WeekStart   string `gorm:"size:10;not null"`
	UsedTrial   bool   `gorm:"not null;default:false"`
	UpdatedAt   time.Time
}
