package models

import (
	"time"

	"github.com/google/uuid"
)

type ActionTaken string

const (
	ActionViewed    ActionTaken = "viewed"
	ActionApplied   ActionTaken = "applied"
	ActionSaved     ActionTaken = "saved"
	ActionDismissed ActionTaken = "dismissed"
)

func (a ActionTaken) Valid() bool {
	switch a {
	case ActionViewed, ActionApplied, ActionSaved, ActionDismissed:
		return true
	}
	return false
}

// FeedbackRecord captures one user's rating of one recommendation. Records
// are immutable after creation except that resubmitting for the same
// (user, recommendation) pair overwrites the prior record.
type FeedbackRecord struct {
	ID                 uuid.UUID   `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID             uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_feedback_user_rec" json:"user_id"`
	RecommendationID   uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_feedback_user_rec" json:"recommendation_id"`
	RecommendationType EntityType  `gorm:"type:text;index" json:"recommendation_type"`
	RelevanceScore     int         `gorm:"not null" json:"relevance_score"`
	AccuracyScore      int         `gorm:"not null" json:"accuracy_score"`
	IsHelpful          bool        `json:"is_helpful"`
	Comment            string      `gorm:"type:text" json:"comment,omitempty"`
	ActionTaken        ActionTaken `gorm:"type:text" json:"action_taken"`
	CreatedAt          time.Time   `gorm:"type:timestamp;default:now()" json:"created_at"`
	UpdatedAt          time.Time   `gorm:"type:timestamp;default:now()" json:"updated_at"`
}

func (FeedbackRecord) TableName() string {
	return "feedback_records"
}

// DailyCount is one trend bucket of the feedback summary.
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// FeedbackSummary aggregates a filtered set of feedback records. An empty
// record set yields zeroed aggregates, never an error.
type FeedbackSummary struct {
	TotalRecords     int                 `json:"total_records"`
	AverageRelevance float64             `json:"average_relevance"`
	AverageAccuracy  float64             `json:"average_accuracy"`
	HelpfulRate      float64             `json:"helpful_rate"`
	ActionCounts     map[ActionTaken]int `json:"action_counts"`
	DailyCounts      []DailyCount        `json:"daily_counts"`
}
