package services

import (
	"fmt"
	"sort"

	"talenthub/matching-engine/internal/models"
)

// SkillGapService compares a candidate's skill set against a target job's
// required skills or a named role's canonical skill set.
type SkillGapService interface {
	Analyze(candidateSkills []string, required []models.Skill, includeResources bool) *models.SkillGapReport
	AnalyzeRole(candidateSkills []string, role string, includeResources bool) (*models.SkillGapReport, error)
}

type skillGapService struct {
	synonyms      SynonymTable
	roleSkills    map[string][]models.Skill
	resources     map[string][]string
	learningWeeks map[string]int
	defaultWeeks  int
}

func NewSkillGapService(synonyms SynonymTable) SkillGapService {
	return &skillGapService{
		synonyms:      synonyms,
		roleSkills:    DefaultRoleSkills(),
		resources:     defaultLearningResources(),
		learningWeeks: defaultLearningWeeks(),
		defaultWeeks:  6,
	}
}

// DefaultRoleSkills is the canonical skill set per named target role, used
// when a skill-gap request names a role instead of a specific job.
func DefaultRoleSkills() map[string][]models.Skill {
	return map[string][]models.Skill{
		"backend developer": {
			{Name: "Go", Importance: models.ImportanceHigh},
			{Name: "SQL", Importance: models.ImportanceHigh},
			{Name: "Docker", Importance: models.ImportanceMedium},
			{Name: "AWS", Importance: models.ImportanceMedium},
			{Name: "Kubernetes", Importance: models.ImportanceLow},
		},
		"frontend developer": {
			{Name: "JavaScript", Importance: models.ImportanceHigh},
			{Name: "React", Importance: models.ImportanceHigh},
			{Name: "TypeScript", Importance: models.ImportanceMedium},
			{Name: "CSS", Importance: models.ImportanceMedium},
		},
		"data engineer": {
			{Name: "Python", Importance: models.ImportanceHigh},
			{Name: "SQL", Importance: models.ImportanceHigh},
			{Name: "Spark", Importance: models.ImportanceMedium},
			{Name: "Airflow", Importance: models.ImportanceLow},
		},
	}
}

func defaultLearningResources() map[string][]string {
	return map[string][]string{
		"go":         {"A Tour of Go", "Go by Example"},
		"aws":        {"AWS Cloud Practitioner Essentials"},
		"docker":     {"Docker Getting Started Guide"},
		"kubernetes": {"Kubernetes Basics"},
		"react":      {"React Official Tutorial"},
		"sql":        {"SQLBolt Interactive Lessons"},
		"python":     {"Python for Everybody"},
	}
}

func defaultLearningWeeks() map[string]int {
	return map[string]int{
		"sql":        3,
		"docker":     3,
		"css":        3,
		"go":         5,
		"python":     5,
		"react":      5,
		"typescript": 4,
		"aws":        8,
		"kubernetes": 8,
		"spark":      8,
	}
}

// Analyze implements SkillGapService.
func (s *skillGapService) Analyze(candidateSkills []string, required []models.Skill, includeResources bool) *models.SkillGapReport {
	candidate := NormalizeSkillSet(candidateSkills)
	candidateSet := make(map[string]bool, len(candidate))
	for _, name := range candidate {
		candidateSet[name] = true
	}

	// Deduplicate required skills after normalization, keeping the first
	// importance seen for a name.
	var requiredNames []string
	requiredByName := make(map[string]models.Skill)
	for _, req := range required {
		name := NormalizeSkill(req.Name)
		if name == "" {
			continue
		}
		if _, seen := requiredByName[name]; !seen {
			requiredByName[name] = req
			requiredNames = append(requiredNames, name)
		}
	}

	matched := 0
	var missing []models.MissingSkill
	for _, name := range requiredNames {
		if candidateSet[name] || s.hasSynonymMatch(name, candidateSet) {
			matched++
			continue
		}

		req := requiredByName[name]
		importance := req.Importance
		if importance == "" {
			importance = models.ImportanceMedium
		}
		gap := models.MissingSkill{
			Name:           name,
			Importance:     importance,
			EstimatedWeeks: s.weeksFor(name),
		}
		if includeResources {
			// Absent resources are not an error, just an empty list.
			gap.LearningResources = s.resources[name]
		}
		missing = append(missing, gap)
	}

	percentage := 100.0
	if len(requiredNames) > 0 {
		percentage = models.Round2(100 * float64(matched) / float64(len(requiredNames)))
	}

	return &models.SkillGapReport{
		CandidateSkills:        candidate,
		RequiredSkills:         requiredNames,
		MissingSkills:          missing,
		MatchPercentage:        percentage,
		RecommendationPriority: priorityOrder(missing),
	}
}

// AnalyzeRole implements SkillGapService.
func (s *skillGapService) AnalyzeRole(candidateSkills []string, role string, includeResources bool) (*models.SkillGapReport, error) {
	required, ok := s.roleSkills[NormalizeSkill(role)]
	if !ok {
		return nil, fmt.Errorf("unknown target role %q", role)
	}
	return s.Analyze(candidateSkills, required, includeResources), nil
}

func (s *skillGapService) hasSynonymMatch(required string, candidateSet map[string]bool) bool {
	for cand := range candidateSet {
		if s.synonyms.Related(required, cand) {
			return true
		}
	}
	return false
}

func (s *skillGapService) weeksFor(skill string) int {
	if weeks, ok := s.learningWeeks[skill]; ok {
		return weeks
	}
	return s.defaultWeeks
}

// priorityOrder sorts missing skills by importance (high first), then by
// estimated learning time ascending, then alphabetically for determinism.
func priorityOrder(missing []models.MissingSkill) []string {
	ordered := make([]models.MissingSkill, len(missing))
	copy(ordered, missing)

	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Importance.Rank() != ordered[j].Importance.Rank() {
			return ordered[i].Importance.Rank() < ordered[j].Importance.Rank()
		}
		if ordered[i].EstimatedWeeks != ordered[j].EstimatedWeeks {
			return ordered[i].EstimatedWeeks < ordered[j].EstimatedWeeks
		}
		return ordered[i].Name < ordered[j].Name
	})

	names := make([]string, 0, len(ordered))
	for _, gap := range ordered {
		names = append(names, gap.Name)
	}
	return names
}
