package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talenthub/matching-engine/internal/models"
)

func newTestFeedback(t *testing.T) (FeedbackService, *fakeFeedbackRepo, *models.Entity) {
	t.Helper()
	job := &models.Entity{ID: testID(100), Type: models.EntityTypeJob}
	feedbackRepo := newFakeFeedbackRepo()
	service := NewFeedbackService(feedbackRepo, newFakeEntityRepo(job))
	return service, feedbackRepo, job
}

func validFeedbackRequest(job *models.Entity) *models.FeedbackRequest {
	return &models.FeedbackRequest{
		UserID:             uuid.New().String(),
		RecommendationID:   job.ID.String(),
		RecommendationType: string(models.EntityTypeJob),
		RelevanceScore:     4,
		AccuracyScore:      5,
		IsHelpful:          true,
		ActionTaken:        string(models.ActionApplied),
	}
}

func TestFeedbackSubmit(t *testing.T) {
	t.Run("stores a valid submission", func(t *testing.T) {
		service, repo, job := newTestFeedback(t)

		record, err := service.Submit(validFeedbackRequest(job))
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, record.ID)
		assert.Equal(t, job.ID, record.RecommendationID)
		assert.Len(t, repo.records, 1)
	})

	t.Run("resubmission overwrites instead of duplicating", func(t *testing.T) {
		service, repo, job := newTestFeedback(t)

		req := validFeedbackRequest(job)
		first, err := service.Submit(req)
		require.NoError(t, err)

		req.RelevanceScore = 1
		second, err := service.Submit(req)
		require.NoError(t, err)

		assert.Len(t, repo.records, 1)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, 1, second.RelevanceScore)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		service, _, job := newTestFeedback(t)

		cases := map[string]func(*models.FeedbackRequest){
			"bad user id":         func(r *models.FeedbackRequest) { r.UserID = "not-a-uuid" },
			"bad rec id":          func(r *models.FeedbackRequest) { r.RecommendationID = "nope" },
			"relevance too low":   func(r *models.FeedbackRequest) { r.RelevanceScore = 0 },
			"relevance too high":  func(r *models.FeedbackRequest) { r.RelevanceScore = 6 },
			"accuracy too low":    func(r *models.FeedbackRequest) { r.AccuracyScore = 0 },
			"unknown action":      func(r *models.FeedbackRequest) { r.ActionTaken = "ignored" },
			"unknown target type": func(r *models.FeedbackRequest) { r.RecommendationType = "gig" },
		}
		for name, mutate := range cases {
			t.Run(name, func(t *testing.T) {
				req := validFeedbackRequest(job)
				mutate(req)
				_, err := service.Submit(req)
				assert.ErrorIs(t, err, models.ErrInvalidFeedback)
			})
		}
	})

	t.Run("rejects a recommendation id that resolves to nothing", func(t *testing.T) {
		service, _, job := newTestFeedback(t)

		req := validFeedbackRequest(job)
		req.RecommendationID = uuid.New().String()
		_, err := service.Submit(req)
		assert.ErrorIs(t, err, models.ErrUnknownRecommendation)
	})
}

func TestFeedbackSummarize(t *testing.T) {
	t.Run("empty set yields zeroed aggregates", func(t *testing.T) {
		service, _, _ := newTestFeedback(t)

		summary, err := service.Summarize(models.FeedbackFilter{})
		require.NoError(t, err)

		assert.Equal(t, 0, summary.TotalRecords)
		assert.Equal(t, 0.0, summary.AverageRelevance)
		assert.Equal(t, 0.0, summary.HelpfulRate)
		assert.NotNil(t, summary.DailyCounts)
		assert.Empty(t, summary.DailyCounts)
	})

	t.Run("aggregates scores actions and daily trend", func(t *testing.T) {
		service, repo, _ := newTestFeedback(t)

		day1 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
		day2 := time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC)
		records := []*models.FeedbackRecord{
			{ID: uuid.New(), UserID: testID(1), RecommendationID: testID(10), RelevanceScore: 5, AccuracyScore: 4, IsHelpful: true, ActionTaken: models.ActionApplied, CreatedAt: day1, UpdatedAt: day1},
			{ID: uuid.New(), UserID: testID(1), RecommendationID: testID(11), RelevanceScore: 3, AccuracyScore: 3, IsHelpful: true, ActionTaken: models.ActionViewed, CreatedAt: day1, UpdatedAt: day1},
			{ID: uuid.New(), UserID: testID(1), RecommendationID: testID(12), RelevanceScore: 1, AccuracyScore: 2, IsHelpful: false, ActionTaken: models.ActionDismissed, CreatedAt: day2, UpdatedAt: day2},
		}
		for _, record := range records {
			require.NoError(t, repo.Upsert(record))
		}

		summary, err := service.Summarize(models.FeedbackFilter{})
		require.NoError(t, err)

		assert.Equal(t, 3, summary.TotalRecords)
		assert.InDelta(t, 3.0, summary.AverageRelevance, 1e-9)
		assert.InDelta(t, 3.0, summary.AverageAccuracy, 1e-9)
		assert.InDelta(t, 0.67, summary.HelpfulRate, 1e-9)
		assert.Equal(t, 1, summary.ActionCounts[models.ActionApplied])
		assert.Equal(t, 1, summary.ActionCounts[models.ActionDismissed])

		require.Len(t, summary.DailyCounts, 2)
		assert.Equal(t, models.DailyCount{Date: "2026-08-01", Count: 2}, summary.DailyCounts[0])
		assert.Equal(t, models.DailyCount{Date: "2026-08-02", Count: 1}, summary.DailyCounts[1])
	})
}

func TestSuggestAdjustment(t *testing.T) {
	service, _, _ := newTestFeedback(t)

	recordsWithRelevance := func(scores ...int) []models.FeedbackRecord {
		records := make([]models.FeedbackRecord, 0, len(scores))
		for _, score := range scores {
			records = append(records, models.FeedbackRecord{RelevanceScore: score})
		}
		return records
	}

	assertDefaults := func(t *testing.T, adjusted models.Weights) {
		t.Helper()
		defaults := models.DefaultWeights()
		for _, name := range models.Factors {
			assert.InDelta(t, defaults[name], adjusted[name], 1e-9)
		}
	}

	t.Run("no records leaves weights untouched", func(t *testing.T) {
		adjusted := service.SuggestAdjustment(models.DefaultWeights(), nil)
		assertDefaults(t, adjusted)
	})

	t.Run("satisfied users trigger no adjustment", func(t *testing.T) {
		adjusted := service.SuggestAdjustment(models.DefaultWeights(), recordsWithRelevance(3, 4, 5))
		assertDefaults(t, adjusted)
	})

	t.Run("low relevance shifts weight off the heaviest factor", func(t *testing.T) {
		current := models.DefaultWeights()
		current[models.FactorSimilarity] = 0.5

		adjusted := service.SuggestAdjustment(current, recordsWithRelevance(1, 1, 2))

		assert.Less(t, adjusted[models.FactorSimilarity], 0.5/current.Sum())
		assert.InDelta(t, 1.0, adjusted.Sum(), 1e-9)
		for name, weight := range adjusted {
			assert.GreaterOrEqual(t, weight, 0.0, "weight %s went negative", name)
		}
	})

	t.Run("adjustment is bounded even for the worst feedback", func(t *testing.T) {
		before := models.DefaultWeights().Normalized()
		adjusted := service.SuggestAdjustment(models.DefaultWeights(), recordsWithRelevance(1, 1, 1, 1, 1))

		shift := before[models.FactorSimilarity] - adjusted[models.FactorSimilarity]
		assert.LessOrEqual(t, shift, 0.1+1e-9)
		assert.InDelta(t, 1.0, adjusted.Sum(), 1e-9)
	})
}
