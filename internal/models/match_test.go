package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeightsMerge(t *testing.T) {
	t.Run("overlays known factors only", func(t *testing.T) {
		merged := DefaultWeights().Merge(map[string]float64{
			FactorSkills: 0.9,
			"charisma":   0.5,
		})
		assert.Equal(t, 0.9, merged[FactorSkills])
		_, ok := merged["charisma"]
		assert.False(t, ok)
	})

	t.Run("negative overrides are ignored", func(t *testing.T) {
		merged := DefaultWeights().Merge(map[string]float64{FactorSalary: -1})
		assert.Equal(t, DefaultWeights()[FactorSalary], merged[FactorSalary])
	})

	t.Run("does not mutate the receiver", func(t *testing.T) {
		original := DefaultWeights()
		original.Merge(map[string]float64{FactorSkills: 0.9})
		assert.Equal(t, DefaultWeights()[FactorSkills], original[FactorSkills])
	})
}

func TestWeightsNormalized(t *testing.T) {
	t.Run("rescales to sum 1", func(t *testing.T) {
		weights := Weights{FactorSimilarity: 2, FactorSkills: 2}.Normalized()
		assert.InDelta(t, 1.0, weights.Sum(), 1e-9)
		assert.InDelta(t, 0.5, weights[FactorSimilarity], 1e-9)
	})

	t.Run("zero sum falls back to defaults", func(t *testing.T) {
		weights := Weights{FactorSimilarity: 0}.Normalized()
		assert.Equal(t, DefaultWeights(), weights)
	})
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 66.67, Round2(66.666666))
	assert.Equal(t, 0.0, Round2(0.001))
	assert.Equal(t, 100.0, Round2(99.999))
}

func TestFiltersValidate(t *testing.T) {
	low, high := 50000.0, 90000.0

	assert.NoError(t, Filters{}.Validate())
	assert.NoError(t, Filters{MinSalary: &low, MaxSalary: &high}.Validate())
	assert.ErrorIs(t, Filters{MinSalary: &high, MaxSalary: &low}.Validate(), ErrInvalidFilter)
}
