package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"talenthub/matching-engine/internal/models"
	"talenthub/matching-engine/internal/repositories"
)

// FeedbackService ingests relevance/accuracy ratings per recommendation and
// produces summary analytics plus advisory weight adjustments.
type FeedbackService interface {
	Submit(req *models.FeedbackRequest) (*models.FeedbackRecord, error)
	Summarize(filter models.FeedbackFilter) (*models.FeedbackSummary, error)
	SuggestAdjustment(current models.Weights, records []models.FeedbackRecord) models.Weights
}

type feedbackService struct {
	feedbackRepo repositories.FeedbackRepository
	entityRepo   repositories.EntityRepository
}

func NewFeedbackService(
	feedbackRepo repositories.FeedbackRepository,
	entityRepo repositories.EntityRepository,
) FeedbackService {
	return &feedbackService{
		feedbackRepo: feedbackRepo,
		entityRepo:   entityRepo,
	}
}

// Submit implements FeedbackService. Submissions are idempotent per
// (user, recommendation) pair: the latest record wins, never a duplicate.
func (s *feedbackService) Submit(req *models.FeedbackRequest) (*models.FeedbackRecord, error) {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user_id", models.ErrInvalidFeedback)
	}
	recommendationID, err := uuid.Parse(req.RecommendationID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid recommendation_id", models.ErrInvalidFeedback)
	}
	if req.RelevanceScore < 1 || req.RelevanceScore > 5 {
		return nil, fmt.Errorf("%w: relevance_score must be between 1 and 5", models.ErrInvalidFeedback)
	}
	if req.AccuracyScore < 1 || req.AccuracyScore > 5 {
		return nil, fmt.Errorf("%w: accuracy_score must be between 1 and 5", models.ErrInvalidFeedback)
	}
	action := models.ActionTaken(req.ActionTaken)
	if !action.Valid() {
		return nil, fmt.Errorf("%w: unknown action_taken %q", models.ErrInvalidFeedback, req.ActionTaken)
	}
	recommendationType := models.EntityType(req.RecommendationType)
	if !recommendationType.Valid() {
		return nil, fmt.Errorf("%w: unknown recommendation_type %q", models.ErrInvalidFeedback, req.RecommendationType)
	}

	// The recommendation id is the recommended counterpart entity; an id
	// that resolves to nothing is reported to the caller but never blocks
	// aggregation of previously stored records.
	if _, err := s.entityRepo.FindByID(recommendationID); err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownRecommendation, recommendationID)
	}

	record := &models.FeedbackRecord{
		ID:                 uuid.New(),
		UserID:             userID,
		RecommendationID:   recommendationID,
		RecommendationType: recommendationType,
		RelevanceScore:     req.RelevanceScore,
		AccuracyScore:      req.AccuracyScore,
		IsHelpful:          req.IsHelpful,
		Comment:            req.Comment,
		ActionTaken:        action,
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}

	if err := s.feedbackRepo.Upsert(record); err != nil {
		return nil, fmt.Errorf("failed to store feedback: %w", err)
	}
	return record, nil
}

// Summarize implements FeedbackService. An empty record set yields zeroed
// aggregates rather than an error.
func (s *feedbackService) Summarize(filter models.FeedbackFilter) (*models.FeedbackSummary, error) {
	records, err := s.feedbackRepo.ListByFilter(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load feedback: %w", err)
	}

	summary := &models.FeedbackSummary{
		TotalRecords: len(records),
		ActionCounts: make(map[models.ActionTaken]int),
	}
	if len(records) == 0 {
		summary.DailyCounts = []models.DailyCount{}
		return summary, nil
	}

	var relevanceTotal, accuracyTotal, helpfulCount int
	perDay := make(map[string]int)
	for _, record := range records {
		relevanceTotal += record.RelevanceScore
		accuracyTotal += record.AccuracyScore
		if record.IsHelpful {
			helpfulCount++
		}
		summary.ActionCounts[record.ActionTaken]++
		perDay[record.CreatedAt.Format("2006-01-02")]++
	}

	n := float64(len(records))
	summary.AverageRelevance = models.Round2(float64(relevanceTotal) / n)
	summary.AverageAccuracy = models.Round2(float64(accuracyTotal) / n)
	summary.HelpfulRate = models.Round2(float64(helpfulCount) / n)
	summary.DailyCounts = trendBuckets(perDay)
	return summary, nil
}

func trendBuckets(perDay map[string]int) []models.DailyCount {
	days := make([]string, 0, len(perDay))
	for day := range perDay {
		days = append(days, day)
	}
	// Date strings sort chronologically.
	sort.Strings(days)

	buckets := make([]models.DailyCount, 0, len(days))
	for _, day := range days {
		buckets = append(buckets, models.DailyCount{Date: day, Count: perDay[day]})
	}
	return buckets
}

// SuggestAdjustment implements FeedbackService. When a user's average
// relevance falls below the neutral midpoint, a small delta is shifted off
// the heaviest factor and redistributed over the others. The adjustment is
// advisory: no weight ever goes negative and the result is renormalized to
// sum 1.0.
func (s *feedbackService) SuggestAdjustment(current models.Weights, records []models.FeedbackRecord) models.Weights {
	adjusted := current.Normalized()
	if len(records) == 0 {
		return adjusted
	}

	var relevanceTotal int
	for _, record := range records {
		relevanceTotal += record.RelevanceScore
	}
	average := float64(relevanceTotal) / float64(len(records))
	if average >= 3.0 {
		return adjusted
	}

	delta := (3.0 - average) * 0.02
	if delta > 0.1 {
		delta = 0.1
	}

	heaviest := heaviestFactor(adjusted)
	if adjusted[heaviest] < delta {
		delta = adjusted[heaviest]
	}
	share := delta / float64(len(models.Factors)-1)

	for _, name := range models.Factors {
		if name == heaviest {
			adjusted[name] -= delta
		} else {
			adjusted[name] += share
		}
	}
	return adjusted.Normalized()
}

func heaviestFactor(weights models.Weights) string {
	heaviest := models.Factors[0]
	for _, name := range models.Factors[1:] {
		if weights[name] > weights[heaviest] {
			heaviest = name
		}
	}
	return heaviest
}
