package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"talenthub/matching-engine/internal/models"
)

type PreferenceRepository interface {
	FindByUserID(userID uuid.UUID) (*models.RecommendationPreferences, error)
	Upsert(prefs *models.RecommendationPreferences) error
}

type preferenceRepository struct {
	db *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) PreferenceRepository {
	return &preferenceRepository{db: db}
}

// FindByUserID implements PreferenceRepository.
func (r *preferenceRepository) FindByUserID(userID uuid.UUID) (*models.RecommendationPreferences, error) {
	var prefs models.RecommendationPreferences
	if err := r.db.Where("user_id = ?", userID).First(&prefs).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", models.ErrPreferencesNotFound, userID)
		}
		return nil, fmt.Errorf("failed to find preferences: %w", err)
	}
	return &prefs, nil
}

// Upsert implements PreferenceRepository.
func (r *preferenceRepository) Upsert(prefs *models.RecommendationPreferences) error {
	prefs.UpdatedAt = time.Now()
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"weight_overrides",
			"preferred_industries",
			"excluded_industries",
			"excluded_companies",
			"job_types",
			"updated_at",
		}),
	}).Create(prefs).Error
	if err != nil {
		return fmt.Errorf("failed to upsert preferences: %w", err)
	}
	return nil
}
