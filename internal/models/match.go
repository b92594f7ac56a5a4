package models

import (
	"math"

	"github.com/google/uuid"
)

// Scoring factor names. Each factor contributes one weighted sub-score to
// the final match score.
const (
	FactorSimilarity   = "similarity"
	FactorSkills       = "skills"
	FactorLocation     = "location"
	FactorExperience   = "experience"
	FactorSalary       = "salary"
	FactorAvailability = "availability"
)

// Factors lists all scoring factors in their canonical order.
var Factors = []string{
	FactorSimilarity,
	FactorSkills,
	FactorLocation,
	FactorExperience,
	FactorSalary,
	FactorAvailability,
}

// Weights maps factor names to their relative weight. Weights for a request
// always sum to 1.0 after normalization.
type Weights map[string]float64

// DefaultWeights returns the system default weight configuration.
func DefaultWeights() Weights {
	return Weights{
		FactorSimilarity:   0.30,
		FactorSkills:       0.30,
		FactorLocation:     0.10,
		FactorExperience:   0.15,
		FactorSalary:       0.10,
		FactorAvailability: 0.05,
	}
}

// Merge overlays non-negative overrides on a copy of w. Unknown factor names
// are ignored.
func (w Weights) Merge(overrides map[string]float64) Weights {
	merged := make(Weights, len(w))
	for k, v := range w {
		merged[k] = v
	}
	for _, name := range Factors {
		if v, ok := overrides[name]; ok && v >= 0 {
			merged[name] = v
		}
	}
	return merged
}

// Normalized rescales the weights so they sum to 1.0. A zero-sum
// configuration falls back to the system defaults.
func (w Weights) Normalized() Weights {
	sum := 0.0
	for _, v := range w {
		sum += v
	}
	if sum <= 0 {
		return DefaultWeights()
	}
	normalized := make(Weights, len(w))
	for k, v := range w {
		normalized[k] = v / sum
	}
	return normalized
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	sum := 0.0
	for _, v := range w {
		sum += v
	}
	return sum
}

// SubScore is one named component of a match score. Undefined sub-scores
// (missing data on either side of the pair) carry no weight; the remaining
// weights are renormalized over the defined set.
type SubScore struct {
	Name    string  `json:"name"`
	Value   float64 `json:"value"`
	Weight  float64 `json:"weight"`
	Defined bool    `json:"defined"`
}

// MatchScore is the scored pairing of a subject with one counterpart.
type MatchScore struct {
	SubjectID     uuid.UUID  `json:"subject_id"`
	CounterpartID uuid.UUID  `json:"counterpart_id"`
	Score         float64    `json:"score"`
	SubScores     []SubScore `json:"sub_scores"`
	MatchReasons  []string   `json:"match_reasons"`
}

// Round2 rounds to two decimal places, the precision of final match scores.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
