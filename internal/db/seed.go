package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedZones = []string{"triana", "nervion", "centro", "macarena", "los_remedios"}

var seedInterests = []string{"deportes", "cine", "musica", "cocina", "viajes", "videojuegos"}

// SeedTestData resets the database and populates it with demo users,
// profiles and rooms for local development.
//
// Layout:
//   - 12 users with hashed passwords; half seeking, half offering.
//   - Every offering profile owns two rooms plus one common area.
//   - One premium seeker for exercising the weekly message quota.
func SeedTestData(database *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	tables := []string{
		"messages", "chats", "invite_codes", "room_assignments", "rooms",
		"swipes", "matches", "message_request_limits", "profiles", "users",
	}
	for _, table := range tables {
		if err := database.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	log.Println("Cleared existing data")

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	boolPtr := func(b bool) *bool { return &b }
	intPtr := func(n int) *int { return &n }

	for i := 1; i <= 12; i++ {
		user := User{
			ID:           uuid.NewString(),
			Email:        fmt.Sprintf("user%d@example.com", i),
			PasswordHash: string(hash),
		}
		if err := database.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}

		intent := IntentSeeking
		if i%2 == 0 {
			intent = IntentOffering
		}

		profile := Profile{
			ID:            uuid.NewString(),
			UserID:        user.ID,
			DisplayName:   fmt.Sprintf("User %d", i),
			Gender:        []string{"male", "female"}[i%2],
			Occupation:    []string{"student", "engineer", "designer"}[i%3],
			University:    "Universidad de Sevilla",
			City:          "Sevilla",
			HousingIntent: intent,
			BudgetMin:     intPtr(250 + r.Intn(100)),
			BudgetMax:     intPtr(400 + r.Intn(200)),
			PreferredZones: []string{
				seedZones[r.Intn(len(seedZones))],
				seedZones[r.Intn(len(seedZones))],
			},
			Interests: []string{
				seedInterests[r.Intn(len(seedInterests))],
				seedInterests[r.Intn(len(seedInterests))],
				seedInterests[r.Intn(len(seedInterests))],
			},
			Lifestyle: &Lifestyle{
				Cleanliness: []string{"very_clean", "clean", "moderate"}[r.Intn(3)],
				NoiseLevel:  []string{"quiet", "moderate"}[r.Intn(2)],
				Guests:      []string{"rarely", "occasional"}[r.Intn(2)],
				PartyHabits: []string{"never", "occasionally"}[r.Intn(2)],
				Smoking:     boolPtr(r.Intn(4) == 0),
				Pets:        boolPtr(r.Intn(3) == 0),
				RemoteWork:  boolPtr(r.Intn(2) == 0),
			},
			Premium:    i == 1, // one premium seeker
			Searchable: true,
		}
		if err := database.Create(&profile).Error; err != nil {
			return fmt.Errorf("failed to seed profile: %w", err)
		}

		if intent != IntentOffering {
			continue
		}
		for j := 1; j <= 2; j++ {
			room := Room{
				ID:           uuid.NewString(),
				OwnerID:      user.ID,
				Name:         fmt.Sprintf("Habitacion %d.%d", i, j),
				Category:     RoomCategoryRoom,
				MonthlyPrice: intPtr(300 + r.Intn(200)),
			}
			if err := database.Create(&room).Error; err != nil {
				return fmt.Errorf("failed to seed room: %w", err)
			}
		}
		common := Room{
			ID:       uuid.NewString(),
			OwnerID:  user.ID,
			Name:     fmt.Sprintf("Salon %d", i),
			Category: RoomCategoryCommonArea,
		}
		if err := database.Create(&common).Error; err != nil {
			return fmt.Errorf("failed to seed common area: %w", err)
		}
	}

	log.Println("Seeded 12 users with profiles and rooms")
	return nil
}
