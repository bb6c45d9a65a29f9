package db

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/homimatch/server/internal/config"
)

// Models is the full schema, in migration order.
var Models = []any{
	&User{}, &Profile{}, &Match{}, &Swipe{}, &Room{},
	&RoomAssignment{}, &InviteCode{}, &Chat{}, &Message{},
	&MessageRequestLimit{},
}

// NewDB initializes the database connection using DSN from config.
// TranslateError is required: the match-creation and invite-code paths
// depend on gorm.ErrDuplicatedKey being reported portably.
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	database, err := gorm.Open(mysql.Open(cfg.DB.DSN), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := database.AutoMigrate(Models...); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return database, nil
}
