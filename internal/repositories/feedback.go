package repositories

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"talenthub/matching-engine/internal/models"
)

// FeedbackRepository is the append-only feedback store. Submissions are
// idempotent per (user, recommendation) pair: a resubmission overwrites the
// prior record, it never duplicates. The upsert is a single atomic statement
// so concurrent appends cannot lose updates.
type FeedbackRepository interface {
	Upsert(record *models.FeedbackRecord) error
	ListByFilter(filter models.FeedbackFilter) ([]models.FeedbackRecord, error)
	ListUsersSince(since time.Time) ([]uuid.UUID, error)
}

type feedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

// Upsert implements FeedbackRepository.
func (r *feedbackRepository) Upsert(record *models.FeedbackRecord) error {
	record.UpdatedAt = time.Now()
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "recommendation_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"recommendation_type",
			"relevance_score",
			"accuracy_score",
			"is_helpful",
			"comment",
			"action_taken",
			"updated_at",
		}),
	}).Create(record).Error
	if err != nil {
		return fmt.Errorf("failed to upsert feedback: %w", err)
	}
	return nil
}

// ListByFilter implements FeedbackRepository.
func (r *feedbackRepository) ListByFilter(filter models.FeedbackFilter) ([]models.FeedbackRecord, error) {
	query := r.db.Model(&models.FeedbackRecord{})

	if filter.UserID != "" {
		userID, err := uuid.Parse(filter.UserID)
		if err != nil {
			return nil, fmt.Errorf("invalid user id: %w", err)
		}
		query = query.Where("user_id = ?", userID)
	}
	if filter.RecommendationType != "" {
		query = query.Where("recommendation_type = ?", filter.RecommendationType)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}

	var records []models.FeedbackRecord
	if err := query.Order("created_at ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	return records, nil
}

// ListUsersSince implements FeedbackRepository. Returns the distinct users
// with feedback activity in the window, for the preference tuner.
func (r *feedbackRepository) ListUsersSince(since time.Time) ([]uuid.UUID, error) {
	var userIDs []uuid.UUID
	err := r.db.Model(&models.FeedbackRecord{}).
		Where("updated_at >= ?", since).
		Distinct("user_id").
		Order("user_id ASC").
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback users: %w", err)
	}
	return userIDs, nil
}
