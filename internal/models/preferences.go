package models

import (
	"time"

	"github.com/google/uuid"
)

// RecommendationPreferences holds per-user weight overrides and
// inclusion/exclusion lists. Read by the scoring engine at request time and
// updated only via explicit preference-update calls (or the advisory
// feedback tuner).
type RecommendationPreferences struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID              uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	WeightOverrides     FloatMap   `gorm:"type:jsonb" json:"weight_overrides,omitempty"`
	PreferredIndustries StringList `gorm:"type:jsonb" json:"preferred_industries,omitempty"`
	ExcludedIndustries  StringList `gorm:"type:jsonb" json:"excluded_industries,omitempty"`
	ExcludedCompanies   StringList `gorm:"type:jsonb" json:"excluded_companies,omitempty"`
	JobTypes            StringList `gorm:"type:jsonb" json:"job_types,omitempty"`
	CreatedAt           time.Time  `gorm:"type:timestamp;default:now()" json:"created_at"`
	UpdatedAt           time.Time  `gorm:"type:timestamp;default:now()" json:"updated_at"`
}

func (RecommendationPreferences) TableName() string {
	return "recommendation_preferences"
}
