// Package matching computes pair compatibility. Score is a pure function:
// no storage, no errors, sparse profiles degrade to whichever dimensions
// both sides populate.
package matching

import (
	"strings"

	"github.com/homimatch/server/internal/db"
)

// Basis identifies which weighting scheme produced a score. The two
// schemes are never mixed within one computation.
type Basis string

const (
	// BasisStructured uses the weighted budget/zones/interests/lifestyle sum.
	BasisStructured Basis = "structured"
	// BasisTags is the coarse scheme for profiles that only carry flat
	// preference tags (gender, occupation, smoker).
	BasisTags Basis = "tags"
)

// Result is a score in [0,1] with ordered human-readable reasons.
type Result struct {
	Score   float64
	Reasons []string
	Basis   Basis
}

// Structured-scheme weights.
const (
	weightBudget    = 0.30
	weightZones     = 0.25
	weightInterests = 0.20
	weightLifestyle = 0.25
	bonusSameCity   = 0.10
	bonusSameUni    = 0.10
)

// Ordinal vocabularies for lifestyle attributes.
var (
	cleanlinessLevels = map[string]int{"very_clean": 4, "clean": 3, "moderate": 2, "messy": 1}
	guestLevels       = map[string]int{"never": 1, "rarely": 2, "occasional": 3, "frequently": 4}
	noiseLevels       = map[string]int{"quiet": 1, "moderate": 2, "noisy": 3}
	partyLevels       = map[string]int{"never": 1, "occasionally": 2, "regularly": 3}
)

// Score computes compatibility between a seeker and a target profile.
// The basis is chosen from the populated attributes: profiles that both
// carry structured housing data use the weighted scheme, otherwise the
// coarse tag scheme applies.
func Score(seeker, target *db.Profile) Result {
	if hasStructuredData(seeker) && hasStructuredData(target) {
		return scoreStructured(seeker, target)
	}
	return scoreTags(seeker, target)
}

func hasStructuredData(p *db.Profile) bool {
	if p == nil {
		return false
	}
	return p.Lifestyle != nil ||
		(p.BudgetMin != nil && p.BudgetMax != nil) ||
		len(p.PreferredZones) > 0 ||
		len(p.Interests) > 0
}

func scoreStructured(seeker, target *db.Profile) Result {
	var score float64
	var reasons []string

	// Budget overlap: overlap length over the larger of the two ranges.
	// Disjoint ranges or missing bounds contribute nothing.
	if seeker.BudgetMin != nil && seeker.BudgetMax != nil &&
		target.BudgetMin != nil && target.BudgetMax != nil {
		seekerRange := *seeker.BudgetMax - *seeker.BudgetMin
		targetRange := *target.BudgetMax - *target.BudgetMin
		overlap := min(*seeker.BudgetMax, *target.BudgetMax) - max(*seeker.BudgetMin, *target.BudgetMin)
		if overlap > 0 {
			larger := max(seekerRange, targetRange)
			if larger > 0 {
				score += float64(overlap) / float64(larger) * weightBudget
			} else {
				// Both ranges are points; overlapping points match fully.
				score += weightBudget
			}
			reasons = append(reasons, "Presupuestos compatibles")
		}
	}

	// Preferred zones: Jaccard.
	if len(seeker.PreferredZones) > 0 && len(target.PreferredZones) > 0 {
		shared, union := jaccardParts(seeker.PreferredZones, target.PreferredZones)
		score += float64(len(shared)) / float64(union) * weightZones
		if len(shared) > 0 {
			reasons = append(reasons, "Mismas zonas: "+strings.Join(firstN(shared, 2), ", "))
		}
	}

	// Interests: Jaccard.
	if len(seeker.Interests) > 0 && len(target.Interests) > 0 {
		shared, union := jaccardParts(seeker.Interests, target.Interests)
		score += float64(len(shared)) / float64(union) * weightInterests
		if len(shared) > 0 {
			reasons = append(reasons, "Intereses en común: "+strings.Join(firstN(shared, 3), ", "))
		}
	}

	// Lifestyle: average of populated per-attribute sub-scores.
	if seeker.Lifestyle != nil && target.Lifestyle != nil {
		lifestyle := lifestyleCompatibility(seeker.Lifestyle, target.Lifestyle)
		score += lifestyle * weightLifestyle
		if lifestyle > 0.7 {
			reasons = append(reasons, "Estilo de vida muy compatible")
		}
	}

	// Flat bonuses after weighting.
	if seeker.University != "" && seeker.University == target.University {
		score += bonusSameUni
		reasons = append(reasons, "Misma universidad: "+seeker.University)
	}
	if seeker.City != "" && seeker.City == target.City {
		score += bonusSameCity
		reasons = append(reasons, "Misma ciudad: "+seeker.City)
	}

	return Result{Score: clamp01(score), Reasons: reasons, Basis: BasisStructured}
}

// lifestyleCompatibility averages the sub-scores of every attribute both
// sides answered. Ordinal attributes score max(0, 1 - diff/maxDelta);
// binary attributes score 1.0 on match and an attribute-specific partial
// credit on mismatch.
func lifestyleCompatibility(a, b *db.Lifestyle) float64 {
	var score float64
	var factors int

	ordinal := func(levels map[string]int, va, vb string, maxDelta int) {
		la, okA := levels[va]
		lb, okB := levels[vb]
		if !okA || !okB {
			return
		}
		diff := la - lb
		if diff < 0 {
			diff = -diff
		}
		score += maxf(0, 1-float64(diff)/float64(maxDelta))
		factors++
	}

	binary := func(va, vb *bool, mismatch float64) {
		if va == nil || vb == nil {
			return
		}
		if *va == *vb {
			score += 1
		} else {
			score += mismatch
		}
		factors++
	}

	ordinal(cleanlinessLevels, a.Cleanliness, b.Cleanliness, 3)
	binary(a.Smoking, b.Smoking, 0.3)
	binary(a.Pets, b.Pets, 0.5)
	ordinal(guestLevels, a.Guests, b.Guests, 3)
	binary(a.RemoteWork, b.RemoteWork, 0.7)
	ordinal(noiseLevels, a.NoiseLevel, b.NoiseLevel, 2)
	ordinal(partyLevels, a.PartyHabits, b.PartyHabits, 2)

	if factors == 0 {
		return 0
	}
	return score / float64(factors)
}

func scoreTags(seeker, target *db.Profile) Result {
	var score float64
	var reasons []string

	if seeker.Gender != "" && target.Gender != "" {
		if seeker.Gender == target.Gender {
			score += 0.5
			reasons = append(reasons, "Mismo genero: "+target.Gender)
		} else {
			score += 0.2
		}
	}

	if seeker.Occupation != "" && target.Occupation != "" {
		if seeker.Occupation == target.Occupation {
			score += 0.3
			reasons = append(reasons, "Misma ocupacion: "+target.Occupation)
		} else {
			score += 0.1
		}
	}

	if seeker.Smoker != nil && target.Smoker != nil {
		if *seeker.Smoker == *target.Smoker {
			score += 0.2
			if *seeker.Smoker {
				reasons = append(reasons, "Ambos son fumadores")
			} else {
				reasons = append(reasons, "Ninguno fuma")
			}
		} else {
			score += 0.05
			reasons = append(reasons, "Diferentes habitos de fumar")
		}
	}

	return Result{Score: clamp01(score), Reasons: reasons, Basis: BasisTags}
}

// jaccardParts returns the shared elements (in a's order) and the union
// size of two string sets.
func jaccardParts(a, b []string) ([]string, int) {
	inB := make(map[string]bool, len(b))
	for _, v := range b {
		inB[v] = true
	}

	seen := make(map[string]bool, len(a)+len(b))
	var shared []string
	for _, v := range a {
		if seen[v] {
			continue
		}
		seen[v] = true
		if inB[v] {
			shared = append(shared, v)
		}
	}
	union := len(seen)
	for _, v := range b {
		if !seen[v] {
			seen[v] = true
			union++
		}
	}
	return shared, union
}

func firstN(s []string, n int) []string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
