package models

import (
	"fmt"
	"time"
)

// Sort keys accepted by the ranking pipeline.
const (
	SortByMatchScore = "match_score"
	SortBySimilarity = "similarity"
)

// Filters are the hard constraints applied before scoring. Entities failing
// any filter are dropped from the candidate pool, which also bounds the cost
// of the brute-force search path.
type Filters struct {
	MinSalary       *float64 `json:"min_salary,omitempty"`
	MaxSalary       *float64 `json:"max_salary,omitempty"`
	EmploymentTypes []string `json:"employment_types,omitempty"`
	RemoteOnly      bool     `json:"remote_only,omitempty"`
	Industries      []string `json:"industries,omitempty"`
}

// Validate rejects contradictory filter combinations at the pipeline
// boundary rather than silently ignoring them.
func (f Filters) Validate() error {
	if f.MinSalary != nil && f.MaxSalary != nil && *f.MinSalary > *f.MaxSalary {
		return fmt.Errorf("%w: min_salary %.2f exceeds max_salary %.2f",
			ErrInvalidFilter, *f.MinSalary, *f.MaxSalary)
	}
	return nil
}

type RecommendationRequest struct {
	SubjectID       string             `json:"subject_id"`
	CounterpartType EntityType         `json:"counterpart_type"`
	Filters         Filters            `json:"filters"`
	Weights         map[string]float64 `json:"weights,omitempty"`
	MinMatchScore   float64            `json:"min_match_score,omitempty"`
	SortBy          string             `json:"sort_by,omitempty"`
	Limit           int                `json:"limit,omitempty"`
	Offset          int                `json:"offset,omitempty"`
}

// TalentSearchRequest searches without a single subject entity: the criteria
// themselves form the query.
type TalentSearchRequest struct {
	Query         string             `json:"query"`
	Skills        []string           `json:"skills,omitempty"`
	Filters       Filters            `json:"filters"`
	Weights       map[string]float64 `json:"weights,omitempty"`
	MinMatchScore float64            `json:"min_match_score,omitempty"`
	SortBy        string             `json:"sort_by,omitempty"`
	Limit         int                `json:"limit,omitempty"`
	Offset        int                `json:"offset,omitempty"`
}

// RankedPage is one page of scored results plus the total before pagination
// and the parameters actually applied, for client-side display.
type RankedPage struct {
	Results []MatchScore `json:"results"`
	Total   int          `json:"total"`
	Limit   int          `json:"limit"`
	Offset  int          `json:"offset"`
	SortBy  string       `json:"sort_by"`
	Filters Filters      `json:"filters"`
}

type SkillGapRequest struct {
	CandidateID      string `json:"candidate_id"`
	TargetJobID      string `json:"target_job_id,omitempty"`
	TargetRole       string `json:"target_role,omitempty"`
	IncludeResources bool   `json:"include_resources,omitempty"`
}

type FeedbackRequest struct {
	UserID             string `json:"user_id"`
	RecommendationID   string `json:"recommendation_id"`
	RecommendationType string `json:"recommendation_type"`
	RelevanceScore     int    `json:"relevance_score"`
	AccuracyScore      int    `json:"accuracy_score"`
	IsHelpful          bool   `json:"is_helpful"`
	Comment            string `json:"comment,omitempty"`
	ActionTaken        string `json:"action_taken"`
}

// FeedbackFilter selects the record set a summary is computed over.
type FeedbackFilter struct {
	UserID             string     `json:"user_id,omitempty"`
	RecommendationType EntityType `json:"recommendation_type,omitempty"`
	From               *time.Time `json:"from,omitempty"`
	To                 *time.Time `json:"to,omitempty"`
}
