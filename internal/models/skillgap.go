package models

// MissingSkill is a required skill absent from a candidate's skill set.
type MissingSkill struct {
	Name              string     `json:"name"`
	Importance        Importance `json:"importance"`
	EstimatedWeeks    int        `json:"estimated_weeks,omitempty"`
	LearningResources []string   `json:"learning_resources,omitempty"`
}

// SkillGapReport compares a candidate's skills against a target skill set.
// Reports are computed per request and never persisted.
type SkillGapReport struct {
	CandidateSkills        []string       `json:"candidate_skills"`
	RequiredSkills         []string       `json:"required_skills"`
	MissingSkills          []MissingSkill `json:"missing_skills"`
	MatchPercentage        float64        `json:"match_percentage"`
	RecommendationPriority []string       `json:"recommendation_priority"`
}
