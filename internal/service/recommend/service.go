// Package recommend ranks searchable profiles against the caller by
// compatibility score.
package recommend

import (
	"context"
	"errors"
	"sort"

	"gorm.io/gorm"

	"github.com/homimatch/server/internal/app"
	"github.com/homimatch/server/internal/apperr"
	"github.com/homimatch/server/internal/db"
	"github.com/homimatch/server/internal/matching"
	"github.com/homimatch/server/internal/repository"
)

// minScore is the floor below which a candidate is not worth surfacing.
const minScore = 0.3

const maxResults = 50

// Service contains the recommendation business logic.
type Service struct {
	appCtx      *app.AppContext
	profileRepo *repository.ProfileRepository
}

// NewService creates the recommendation service with dependencies from
// AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:      appCtx,
		profileRepo: repository.NewProfileRepository(appCtx.DB),
	}
}

// Candidate is one scored profile in the recommendation list.
type Candidate struct {
	UserID      string         `json:"user_id"`
	DisplayName string         `json:"display_name"`
	AvatarURL   string         `json:"avatar_url,omitempty"`
	City        string         `json:"city,omitempty"`
	Score       float64        `json:"score"`
	Reasons     []string       `json:"reasons"`
	Basis       matching.Basis `json:"basis"`
}

// List scores every searchable profile against the caller and returns the
// compatible ones, best first.
func (s *Service) List(ctx context.Context, userID string) ([]Candidate, error) {
	seeker, err := s.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("profile_not_found", "complete your profile to get recommendations")
		}
		return nil, apperr.Dependency(err)
	}

	targets, err := s.profileRepo.ListSearchableExcept(ctx, userID)
	if err != nil {
		return nil, apperr.Dependency(err)
	}

	candidates := make([]Candidate, 0, len(targets))
	for i := range targets {
		res := matching.Score(seeker, &targets[i])
		if res.Score < minScore {
			continue
		}
		candidates = append(candidates, toCandidate(&targets[i], res))
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > maxResults {
		candidates = candidates[:maxResults]
	}

	s.appCtx.Logger.Debug("recommendations computed",
		"user_id", userID, "scored", len(targets), "returned", len(candidates))
	return candidates, nil
}

func toCandidate(p *db.Profile, res matching.Result) Candidate {
	return Candidate{
		UserID:      p.UserID,
		DisplayName: p.DisplayName,
		AvatarURL:   p.AvatarURL,
		City:        p.City,
		Score:       res.Score,
		Reasons:     res.Reasons,
		Basis:       res.Basis,
	}
}
