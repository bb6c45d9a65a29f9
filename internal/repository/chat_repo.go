package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/homimatch/server/internal/db"
)

// ChatRepository is the boundary to the chat-thread collaborator. The
// coordinator only gets-or-creates threads and appends the first message
// of a request; thread/message ownership lives outside this core.
type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(database *gorm.DB) *ChatRepository {
	return &ChatRepository{db: database}
}

// WithTx returns the repository bound to an open transaction.
func (r *ChatRepository) WithTx(tx *gorm.DB) *ChatRepository {
	return &ChatRepository{db: tx}
}

// GetOrCreate returns the chat attached to a match, creating it if absent.
// A concurrent create racing on the unique match_id index falls back to
// re-reading the winner.
func (r *ChatRepository) GetOrCreate(ctx context.Context, matchID string) (*db.Chat, error) {
	var chat db.Chat
	err := r.db.WithContext(ctx).Where("match_id = ?", matchID).First(&chat).Error
	if err == nil {
		return &chat, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	chat = db.Chat{ID: uuid.NewString(), MatchID: matchID}
	if createErr := r.db.WithContext(ctx).Create(&chat).Error; createErr != nil {
		if errors.Is(createErr, gorm.ErrDuplicatedKey) {
			var existing db.Chat
			if err := r.db.WithContext(ctx).Where("match_id = ?", matchID).First(&existing).Error; err != nil {
				return nil, err
			}
			return &existing, nil
		}
		return nil, createErr
	}
	return &chat, nil
}

// InsertMessage appends a message to a chat.
func (r *ChatRepository) InsertMessage(ctx context.Context, chatID, senderID, body string) (*db.Message, error) {
	msg := db.Message{
		ID:       uuid.NewString(),
		ChatID:   chatID,
		SenderID: senderID,
		Body:     body,
	}
	if err := r.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// Touch bumps the chat's updated_at so thread lists sort by activity.
func (r *ChatRepository) Touch(ctx context.Context, chatID string) error {
	return r.db.WithContext(ctx).
		Model(&db.Chat{}).
		Where("id = ?", chatID).
		Update("updated_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
}
