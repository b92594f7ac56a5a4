package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"talenthub/matching-engine/internal/models"
)

func TestNormalizeSkillSet(t *testing.T) {
	normalized := NormalizeSkillSet([]string{" Go ", "go", "SQL", "", "sql", "Docker"})
	assert.Equal(t, []string{"go", "sql", "docker"}, normalized)
}

func TestSynonymTableRelated(t *testing.T) {
	synonyms := DefaultSynonyms()

	assert.True(t, synonyms.Related("javascript", "react"))
	assert.True(t, synonyms.Related("react", "javascript"), "relation is bidirectional")
	assert.True(t, synonyms.Related("go", "go"), "identity counts as related")
	assert.False(t, synonyms.Related("javascript", "python"))
	assert.False(t, synonyms.Related("react", "django"), "no transitive relation across families")
}

func TestSkillsSubscore(t *testing.T) {
	synonyms := DefaultSynonyms()

	t.Run("exact matches count fully", func(t *testing.T) {
		required := []models.Skill{{Name: "Go"}, {Name: "SQL"}}
		score := SkillsSubscore([]string{"go", "sql"}, required, synonyms, 0.5)
		assert.InDelta(t, 1.0, score, 1e-9)
	})

	t.Run("matching is case-insensitive", func(t *testing.T) {
		required := []models.Skill{{Name: "PostgreSQL"}}
		score := SkillsSubscore([]string{"postgresql"}, required, synonyms, 0.5)
		assert.InDelta(t, 1.0, score, 1e-9)
	})

	t.Run("synonym matches count at partial weight", func(t *testing.T) {
		required := []models.Skill{{Name: "JavaScript"}}
		score := SkillsSubscore([]string{"React"}, required, synonyms, 0.5)
		assert.InDelta(t, 0.5, score, 1e-9)
	})

	t.Run("weights skew toward important skills", func(t *testing.T) {
		required := []models.Skill{
			{Name: "Go", Importance: models.ImportanceHigh},
			{Name: "Kubernetes", Importance: models.ImportanceLow},
		}
		// High (3) matched, low (1) missed: 3/4.
		score := SkillsSubscore([]string{"go"}, required, synonyms, 0.5)
		assert.InDelta(t, 0.75, score, 1e-9)
	})

	t.Run("explicit weight overrides importance", func(t *testing.T) {
		required := []models.Skill{
			{Name: "Go", Weight: 9},
			{Name: "Docker", Weight: 1},
		}
		score := SkillsSubscore([]string{"docker"}, required, synonyms, 0.5)
		assert.InDelta(t, 0.1, score, 1e-9)
	})

	t.Run("no required skills is a free pass", func(t *testing.T) {
		score := SkillsSubscore([]string{"go"}, nil, synonyms, 0.5)
		assert.Equal(t, 1.0, score)
	})

	t.Run("no overlap scores 0", func(t *testing.T) {
		required := []models.Skill{{Name: "Rust"}, {Name: "Haskell"}}
		score := SkillsSubscore([]string{"go", "sql"}, required, synonyms, 0.5)
		assert.Equal(t, 0.0, score)
	})
}
