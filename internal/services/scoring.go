package services

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"talenthub/matching-engine/internal/models"
)

// ScoringConfig tunes the multi-factor scoring engine. All of it is
// deployment configuration, none of it is per-request state.
type ScoringConfig struct {
	Synonyms SynonymTable

	// PartialMatchWeight discounts synonym/partial skill matches relative
	// to exact matches. Kept at or below 0.6.
	PartialMatchWeight float64

	// NotableThreshold is the minimum sub-score for inclusion in
	// match_reasons.
	NotableThreshold float64

	// LocationRadiusKm bounds the linear distance decay of the location
	// sub-score.
	LocationRadiusKm float64

	// ExperiencePenaltyPerYear is subtracted per year outside the required
	// experience range, floored at 0.
	ExperiencePenaltyPerYear float64
}

func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		Synonyms:                 DefaultSynonyms(),
		PartialMatchWeight:       0.5,
		NotableThreshold:         0.7,
		LocationRadiusKm:         500,
		ExperiencePenaltyPerYear: 0.2,
	}
}

// ScoringService combines vector similarity with structured-attribute
// signals into one weighted match score per pair. Sub-scores that cannot be
// computed (missing data on either side) are marked undefined and their
// weight is renormalized over the defined set, so a minimal profile degrades
// to similarity-only scoring and a missing embedding degrades to
// attribute-only scoring, never a failed request.
type ScoringService interface {
	ResolveWeights(requestWeights map[string]float64, prefs *models.RecommendationPreferences) models.Weights
	Score(subject, counterpart *models.Entity, similarity float64, hasSimilarity bool, weights models.Weights) models.MatchScore
}

type scoringService struct {
	cfg ScoringConfig
}

func NewScoringService(cfg ScoringConfig) ScoringService {
	return &scoringService{cfg: cfg}
}

// ResolveWeights implements ScoringService. Resolution order: explicit
// request weights > stored user preferences > system defaults, renormalized
// to sum 1.0 after any subset is overridden.
func (s *scoringService) ResolveWeights(requestWeights map[string]float64, prefs *models.RecommendationPreferences) models.Weights {
	weights := models.DefaultWeights()
	if prefs != nil && len(prefs.WeightOverrides) > 0 {
		weights = weights.Merge(prefs.WeightOverrides)
	}
	if len(requestWeights) > 0 {
		weights = weights.Merge(requestWeights)
	}
	return weights.Normalized()
}

// Score implements ScoringService.
func (s *scoringService) Score(subject, counterpart *models.Entity, similarity float64, hasSimilarity bool, weights models.Weights) models.MatchScore {
	cand, target := orientPair(subject, counterpart)

	subScores := []models.SubScore{
		{
			Name:    models.FactorSimilarity,
			Value:   ClampSimilarity(similarity),
			Defined: hasSimilarity,
		},
		s.skillsScore(cand, target),
		s.locationScore(cand, target),
		s.experienceScore(cand, target),
		s.salaryScore(cand, target),
		s.availabilityScore(cand, target),
	}

	// Renormalize weights over the defined sub-scores only.
	var definedWeight float64
	for i := range subScores {
		subScores[i].Weight = weights[subScores[i].Name]
		if subScores[i].Defined {
			definedWeight += subScores[i].Weight
		}
	}

	var total float64
	if definedWeight > 0 {
		for i := range subScores {
			if !subScores[i].Defined {
				subScores[i].Weight = 0
				continue
			}
			subScores[i].Weight /= definedWeight
			total += subScores[i].Weight * subScores[i].Value
		}
	}

	return models.MatchScore{
		SubjectID:     subject.ID,
		CounterpartID: counterpart.ID,
		Score:         models.Round2(100 * total),
		SubScores:     subScores,
		MatchReasons:  s.matchReasons(subScores),
	}
}

// orientPair resolves which side of the pair plays the candidate role and
// which the target (job/project) role, so directional sub-scores (required
// skills, experience range) never branch at the point of use.
func orientPair(subject, counterpart *models.Entity) (cand, target *models.Entity) {
	if counterpart.Type == models.EntityTypeCandidate && subject.Type != models.EntityTypeCandidate {
		return counterpart, subject
	}
	return subject, counterpart
}

func (s *scoringService) skillsScore(cand, target *models.Entity) models.SubScore {
	score := models.SubScore{Name: models.FactorSkills}
	if len(target.Skills) == 0 {
		// No required-skill list: no penalty, the factor's weight is
		// redistributed instead of handing everyone a free 1.0.
		return score
	}
	score.Defined = true
	score.Value = SkillsSubscore(cand.Skills.Names(), target.Skills, s.cfg.Synonyms, s.cfg.PartialMatchWeight)
	return score
}

func (s *scoringService) locationScore(cand, target *models.Entity) models.SubScore {
	score := models.SubScore{Name: models.FactorLocation}

	a, b := cand.Location, target.Location
	if a.City == "" && !a.HasCoords && !a.Remote {
		return score
	}
	if b.City == "" && !b.HasCoords && !b.Remote {
		return score
	}
	score.Defined = true

	switch {
	case a.Remote || b.Remote:
		score.Value = 1.0
	case a.City != "" && b.City != "" && strings.EqualFold(a.City, b.City):
		score.Value = 1.0
	case a.HasCoords && b.HasCoords:
		distance := haversineKm(a.Lat, a.Lon, b.Lat, b.Lon)
		if distance < s.cfg.LocationRadiusKm {
			score.Value = 1.0 - distance/s.cfg.LocationRadiusKm
		}
	case a.Country != "" && b.Country != "" && strings.EqualFold(a.Country, b.Country):
		score.Value = 0.5
	}
	return score
}

func (s *scoringService) experienceScore(cand, target *models.Entity) models.SubScore {
	score := models.SubScore{Name: models.FactorExperience}
	if target.ExperienceMin == 0 && target.ExperienceMax == 0 {
		return score
	}
	score.Defined = true

	years := cand.ExperienceYears
	max := target.ExperienceMax
	if max == 0 {
		max = math.MaxInt32
	}

	var outside int
	switch {
	case years < target.ExperienceMin:
		outside = target.ExperienceMin - years
	case years > max:
		outside = years - max
	}

	value := 1.0 - float64(outside)*s.cfg.ExperiencePenaltyPerYear
	if value < 0 {
		value = 0
	}
	score.Value = value
	return score
}

func (s *scoringService) salaryScore(cand, target *models.Entity) models.SubScore {
	score := models.SubScore{Name: models.FactorSalary}
	if cand.SalaryMax == 0 || target.SalaryMax == 0 {
		return score
	}
	score.Defined = true
	if cand.SalaryMin <= target.SalaryMax && target.SalaryMin <= cand.SalaryMax {
		score.Value = 1.0
	}
	return score
}

// availabilityRanks orders availabilities from soonest to latest. The
// sub-score decays with categorical distance between the two sides.
var availabilityRanks = map[models.Availability]int{
	models.AvailabilityImmediate: 0,
	models.AvailabilityTwoWeeks:  1,
	models.AvailabilityFlexible:  1,
	models.AvailabilityOneMonth:  2,
}

func (s *scoringService) availabilityScore(cand, target *models.Entity) models.SubScore {
	score := models.SubScore{Name: models.FactorAvailability}

	candRank, candOK := availabilityRanks[cand.Availability]
	targetRank, targetOK := availabilityRanks[target.Availability]
	if !candOK || !targetOK {
		return score
	}
	score.Defined = true

	distance := candRank - targetRank
	if distance < 0 {
		distance = -distance
	}
	score.Value = 1.0 - float64(distance)/2.0
	return score
}

// matchReasons lists the defined sub-scores at or above the notable
// threshold, in descending contribution order.
func (s *scoringService) matchReasons(subScores []models.SubScore) []string {
	notable := make([]models.SubScore, 0, len(subScores))
	for _, sub := range subScores {
		if sub.Defined && sub.Value >= s.cfg.NotableThreshold {
			notable = append(notable, sub)
		}
	}

	sort.Slice(notable, func(i, j int) bool {
		ci := notable[i].Weight * notable[i].Value
		cj := notable[j].Weight * notable[j].Value
		if ci != cj {
			return ci > cj
		}
		return notable[i].Name < notable[j].Name
	})

	reasons := make([]string, 0, len(notable))
	for _, sub := range notable {
		reasons = append(reasons, reasonFor(sub))
	}
	return reasons
}

func reasonFor(sub models.SubScore) string {
	percent := int(math.Round(sub.Value * 100))
	switch sub.Name {
	case models.FactorSimilarity:
		return fmt.Sprintf("Strong profile similarity (%d%%)", percent)
	case models.FactorSkills:
		return fmt.Sprintf("Covers %d%% of the required skills", percent)
	case models.FactorLocation:
		return fmt.Sprintf("Location compatibility %d%%", percent)
	case models.FactorExperience:
		return fmt.Sprintf("Experience fits the required range (%d%%)", percent)
	case models.FactorSalary:
		return "Salary expectations overlap"
	case models.FactorAvailability:
		return fmt.Sprintf("Availability aligns (%d%%)", percent)
	}
	return fmt.Sprintf("%s score %d%%", sub.Name, percent)
}

const earthRadiusKm = 6371.0

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}
