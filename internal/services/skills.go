package services

import (
	"strings"

	"talenthub/matching-engine/internal/models"
)

// SynonymTable maps a canonical skill name to skills considered related to
// it. Related matches count at a reduced weight during scoring. The table is
// configuration, not logic: deployments tune it without code changes.
type SynonymTable map[string][]string

// DefaultSynonyms is a small curated starting point.
func DefaultSynonyms() SynonymTable {
	return SynonymTable{
		"javascript": {"react", "node.js", "typescript", "vue", "angular"},
		"python":     {"django", "flask", "fastapi"},
		"java":       {"spring", "kotlin"},
		"sql":        {"postgresql", "mysql", "sqlite"},
		"aws":        {"cloud computing", "terraform"},
		"docker":     {"kubernetes", "containers"},
	}
}

// NormalizeSkill lowercases and trims a skill name so set operations and
// matching are case-insensitive.
func NormalizeSkill(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizeSkillSet normalizes and deduplicates a list of skill names,
// preserving first-seen order.
func NormalizeSkillSet(names []string) []string {
	seen := make(map[string]bool, len(names))
	var normalized []string
	for _, name := range names {
		n := NormalizeSkill(name)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		normalized = append(normalized, n)
	}
	return normalized
}

// Related reports whether two normalized skill names belong to the same
// synonym family, in either direction.
func (t SynonymTable) Related(a, b string) bool {
	if a == b {
		return true
	}
	return t.inFamily(a, b) || t.inFamily(b, a)
}

func (t SynonymTable) inFamily(canonical, member string) bool {
	for _, related := range t[canonical] {
		if NormalizeSkill(related) == member {
			return true
		}
	}
	return false
}

// SkillsSubscore computes the weighted fraction of required skills covered
// by the candidate set. Exact case-insensitive matches count fully; synonym
// matches count at partialWeight. An absent required list yields 1.0 with no
// penalty.
func SkillsSubscore(candidate []string, required []models.Skill, synonyms SynonymTable, partialWeight float64) float64 {
	if len(required) == 0 {
		return 1.0
	}

	candidateSet := make(map[string]bool, len(candidate))
	for _, name := range candidate {
		candidateSet[NormalizeSkill(name)] = true
	}

	var matched, total float64
	for _, req := range required {
		weight := req.EffectiveWeight()
		total += weight

		name := NormalizeSkill(req.Name)
		if candidateSet[name] {
			matched += weight
			continue
		}
		for cand := range candidateSet {
			if synonyms.Related(name, cand) {
				matched += weight * partialWeight
				break
			}
		}
	}

	if total == 0 {
		return 1.0
	}
	return matched / total
}
