package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talenthub/matching-engine/internal/models"
)

type recommenderFixture struct {
	service    RecommenderService
	entityRepo *fakeEntityRepo
	prefRepo   *fakePrefRepo
	embedder   *stubEmbedder
	counters   *DegradedCounters
}

func newRecommenderFixture(entities ...*models.Entity) *recommenderFixture {
	entityRepo := newFakeEntityRepo(entities...)
	prefRepo := newFakePrefRepo()
	embedder := &stubEmbedder{vector: []float32{1, 0}}
	counters := NewDegradedCounters()

	service := NewRecommenderService(
		DefaultRecommenderConfig(),
		entityRepo,
		prefRepo,
		NewScoringService(DefaultScoringConfig()),
		NewBruteForceSearcher(),
		embedder,
		counters,
	)
	return &recommenderFixture{
		service:    service,
		entityRepo: entityRepo,
		prefRepo:   prefRepo,
		embedder:   embedder,
		counters:   counters,
	}
}

func candidateWithSkills(n int, skills ...string) *models.Entity {
	e := &models.Entity{ID: testID(n), Type: models.EntityTypeCandidate}
	for _, name := range skills {
		e.Skills = append(e.Skills, models.Skill{Name: name})
	}
	return e
}

func jobRequiring(n int, skills ...string) *models.Entity {
	e := &models.Entity{ID: testID(n), Type: models.EntityTypeJob}
	for _, name := range skills {
		e.Skills = append(e.Skills, models.Skill{Name: name})
	}
	return e
}

func TestRecommendValidation(t *testing.T) {
	ctx := context.Background()
	fixture := newRecommenderFixture(candidateWithSkills(1, "go"))

	base := func() *models.RecommendationRequest {
		return &models.RecommendationRequest{
			SubjectID:       testID(1).String(),
			CounterpartType: models.EntityTypeJob,
		}
	}

	t.Run("contradictory salary bounds", func(t *testing.T) {
		req := base()
		low, high := 90000.0, 50000.0
		req.Filters.MinSalary = &low
		req.Filters.MaxSalary = &high
		_, err := fixture.service.Recommend(ctx, req)
		assert.ErrorIs(t, err, models.ErrInvalidFilter)
	})

	t.Run("unknown sort key", func(t *testing.T) {
		req := base()
		req.SortBy = "alphabetical"
		_, err := fixture.service.Recommend(ctx, req)
		assert.ErrorIs(t, err, models.ErrInvalidFilter)
	})

	t.Run("negative paging", func(t *testing.T) {
		req := base()
		req.Offset = -1
		_, err := fixture.service.Recommend(ctx, req)
		assert.ErrorIs(t, err, models.ErrInvalidFilter)
	})

	t.Run("unknown counterpart type", func(t *testing.T) {
		req := base()
		req.CounterpartType = "gig"
		_, err := fixture.service.Recommend(ctx, req)
		assert.ErrorIs(t, err, models.ErrInvalidFilter)
	})

	t.Run("malformed subject id", func(t *testing.T) {
		req := base()
		req.SubjectID = "not-a-uuid"
		_, err := fixture.service.Recommend(ctx, req)
		assert.ErrorIs(t, err, models.ErrInvalidFilter)
	})

	t.Run("unknown subject", func(t *testing.T) {
		req := base()
		req.SubjectID = testID(999).String()
		_, err := fixture.service.Recommend(ctx, req)
		assert.ErrorIs(t, err, models.ErrEntityNotFound)
	})
}

func TestRecommendThresholdFilter(t *testing.T) {
	ctx := context.Background()

	entities := []*models.Entity{candidateWithSkills(1, "go", "sql")}
	// Two jobs the candidate fully covers, eight they do not.
	entities = append(entities, jobRequiring(10, "go", "sql"), jobRequiring(11, "go"))
	for i := 20; i < 28; i++ {
		entities = append(entities, jobRequiring(i, "rust", "haskell"))
	}
	fixture := newRecommenderFixture(entities...)

	page, err := fixture.service.Recommend(ctx, &models.RecommendationRequest{
		SubjectID:       testID(1).String(),
		CounterpartType: models.EntityTypeJob,
		MinMatchScore:   80,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Results, 2)
	assert.Equal(t, testID(10), page.Results[0].CounterpartID)
	assert.Equal(t, testID(11), page.Results[1].CounterpartID)
	for _, result := range page.Results {
		assert.GreaterOrEqual(t, result.Score, 80.0)
	}

	// No embeddings anywhere: the whole request ran attribute-only.
	assert.Equal(t, int64(1), fixture.counters.AttributeOnlyScores())
}

func TestRecommendPagination(t *testing.T) {
	ctx := context.Background()

	subject := candidateWithSkills(1)
	subject.ExperienceYears = 5
	entities := []*models.Entity{subject}
	for i := 1; i <= 10; i++ {
		job := jobRequiring(100 + i)
		job.ExperienceMin = i
		job.ExperienceMax = 20
		entities = append(entities, job)
	}
	fixture := newRecommenderFixture(entities...)

	fullRequest := &models.RecommendationRequest{
		SubjectID:       testID(1).String(),
		CounterpartType: models.EntityTypeJob,
		Limit:           10,
	}
	full, err := fixture.service.Recommend(ctx, fullRequest)
	require.NoError(t, err)
	require.Len(t, full.Results, 10)
	assert.Equal(t, 10, full.Total)

	t.Run("scores are ordered with deterministic tie-breaks", func(t *testing.T) {
		for i := 1; i < len(full.Results); i++ {
			prev, cur := full.Results[i-1], full.Results[i]
			if prev.Score == cur.Score {
				assert.Less(t, prev.CounterpartID.String(), cur.CounterpartID.String())
			} else {
				assert.Greater(t, prev.Score, cur.Score)
			}
		}
	})

	t.Run("pages concatenate to the full ordering", func(t *testing.T) {
		var paged []models.MatchScore
		for offset := 0; offset < 12; offset += 3 {
			page, err := fixture.service.Recommend(ctx, &models.RecommendationRequest{
				SubjectID:       testID(1).String(),
				CounterpartType: models.EntityTypeJob,
				Limit:           3,
				Offset:          offset,
			})
			require.NoError(t, err)
			assert.Equal(t, 10, page.Total)
			paged = append(paged, page.Results...)
		}
		assert.Equal(t, full.Results, paged)
	})

	t.Run("repeat requests return identical pages", func(t *testing.T) {
		again, err := fixture.service.Recommend(ctx, fullRequest)
		require.NoError(t, err)
		assert.Equal(t, full.Results, again.Results)
	})

	t.Run("limit is capped and defaulted", func(t *testing.T) {
		page, err := fixture.service.Recommend(ctx, &models.RecommendationRequest{
			SubjectID:       testID(1).String(),
			CounterpartType: models.EntityTypeJob,
			Limit:           100000,
		})
		require.NoError(t, err)
		assert.Equal(t, DefaultRecommenderConfig().MaxLimit, page.Limit)

		page, err = fixture.service.Recommend(ctx, &models.RecommendationRequest{
			SubjectID:       testID(1).String(),
			CounterpartType: models.EntityTypeJob,
		})
		require.NoError(t, err)
		assert.Equal(t, DefaultRecommenderConfig().DefaultLimit, page.Limit)
	})

	t.Run("offset beyond the result set yields an empty page", func(t *testing.T) {
		page, err := fixture.service.Recommend(ctx, &models.RecommendationRequest{
			SubjectID:       testID(1).String(),
			CounterpartType: models.EntityTypeJob,
			Offset:          500,
		})
		require.NoError(t, err)
		assert.Empty(t, page.Results)
		assert.Equal(t, 10, page.Total)
	})
}

func TestRecommendEmptyPool(t *testing.T) {
	fixture := newRecommenderFixture(candidateWithSkills(1, "go"))

	page, err := fixture.service.Recommend(context.Background(), &models.RecommendationRequest{
		SubjectID:       testID(1).String(),
		CounterpartType: models.EntityTypeJob,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, page.Total)
	assert.Empty(t, page.Results)
}

func TestRecommendAppliesPreferenceExclusions(t *testing.T) {
	ctx := context.Background()

	acmeJob := jobRequiring(10, "go")
	acmeJob.Company = "Acme"
	otherJob := jobRequiring(11, "go")
	otherJob.Company = "Globex"

	fixture := newRecommenderFixture(candidateWithSkills(1, "go"), acmeJob, otherJob)
	require.NoError(t, fixture.prefRepo.Upsert(&models.RecommendationPreferences{
		UserID:            testID(1),
		ExcludedCompanies: models.StringList{"Acme"},
	}))

	page, err := fixture.service.Recommend(ctx, &models.RecommendationRequest{
		SubjectID:       testID(1).String(),
		CounterpartType: models.EntityTypeJob,
	})
	require.NoError(t, err)

	require.Len(t, page.Results, 1)
	assert.Equal(t, testID(11), page.Results[0].CounterpartID)
}

func TestSimilar(t *testing.T) {
	ctx := context.Background()

	subject := &models.Entity{ID: testID(1), Type: models.EntityTypeJob, Company: "Acme", Embedding: models.Vector{1, 0}}
	twin := &models.Entity{ID: testID(2), Type: models.EntityTypeJob, Company: "Globex", Embedding: models.Vector{1, 0.1}}
	sibling := &models.Entity{ID: testID(3), Type: models.EntityTypeJob, Company: "Acme", Embedding: models.Vector{1, 0.2}}
	distant := &models.Entity{ID: testID(4), Type: models.EntityTypeJob, Company: "Initech", Embedding: models.Vector{0, 1}}

	fixture := newRecommenderFixture(subject, twin, sibling, distant)

	t.Run("ranks nearest first and excludes the subject", func(t *testing.T) {
		page, err := fixture.service.Similar(ctx, testID(1), 10, false)
		require.NoError(t, err)

		require.Len(t, page.Results, 3)
		assert.Equal(t, testID(2), page.Results[0].CounterpartID)
		assert.Equal(t, testID(3), page.Results[1].CounterpartID)
		assert.Equal(t, testID(4), page.Results[2].CounterpartID)
	})

	t.Run("optionally excludes the same company", func(t *testing.T) {
		page, err := fixture.service.Similar(ctx, testID(1), 10, true)
		require.NoError(t, err)

		for _, result := range page.Results {
			assert.NotEqual(t, testID(3), result.CounterpartID)
		}
	})
}

func TestTalentSearch(t *testing.T) {
	ctx := context.Background()

	exact := &models.Entity{ID: testID(1), Type: models.EntityTypeCandidate, Embedding: models.Vector{1, 0}}
	near := &models.Entity{ID: testID(2), Type: models.EntityTypeCandidate, Embedding: models.Vector{0.7, 0.7}}
	far := &models.Entity{ID: testID(3), Type: models.EntityTypeCandidate, Embedding: models.Vector{0, 1}}

	t.Run("ranks by similarity to the embedded criteria", func(t *testing.T) {
		fixture := newRecommenderFixture(exact, near, far)

		page, err := fixture.service.TalentSearch(ctx, &models.TalentSearchRequest{
			Query: "senior gopher in berlin",
		})
		require.NoError(t, err)

		require.Len(t, page.Results, 3)
		assert.Equal(t, testID(1), page.Results[0].CounterpartID)
		assert.Equal(t, testID(2), page.Results[1].CounterpartID)
		assert.Equal(t, testID(3), page.Results[2].CounterpartID)
	})

	t.Run("degrades to attribute ranking when embedding fails", func(t *testing.T) {
		gopher := candidateWithSkills(1, "go")
		rustacean := candidateWithSkills(2, "rust")
		fixture := newRecommenderFixture(gopher, rustacean)
		fixture.embedder.err = errors.New("quota exhausted")

		page, err := fixture.service.TalentSearch(ctx, &models.TalentSearchRequest{
			Query:  "gopher",
			Skills: []string{"go"},
		})
		require.NoError(t, err)

		require.Len(t, page.Results, 2)
		assert.Equal(t, testID(1), page.Results[0].CounterpartID)
		assert.Greater(t, page.Results[0].Score, page.Results[1].Score)
		assert.Equal(t, int64(1), fixture.counters.AttributeOnlyScores())
	})

	t.Run("rejects contradictory filters", func(t *testing.T) {
		fixture := newRecommenderFixture(exact)
		low, high := 90000.0, 50000.0
		_, err := fixture.service.TalentSearch(ctx, &models.TalentSearchRequest{
			Query:   "gopher",
			Filters: models.Filters{MinSalary: &low, MaxSalary: &high},
		})
		assert.ErrorIs(t, err, models.ErrInvalidFilter)
	})
}

func TestRecommendForVectorSortBySimilarity(t *testing.T) {
	ctx := context.Background()

	// High similarity but poor skill coverage versus the reverse.
	similarNoSkills := &models.Entity{ID: testID(1), Type: models.EntityTypeCandidate, Embedding: models.Vector{1, 0}}
	skilledLessSimilar := &models.Entity{
		ID:        testID(2),
		Type:      models.EntityTypeCandidate,
		Skills:    models.SkillList{{Name: "go"}},
		Embedding: models.Vector{0.5, 0.87},
	}
	fixture := newRecommenderFixture(similarNoSkills, skilledLessSimilar)

	page, err := fixture.service.RecommendForVector(ctx, []float32{1, 0}, models.EntityTypeCandidate, &models.TalentSearchRequest{
		Skills: []string{"go"},
		SortBy: models.SortBySimilarity,
	})
	require.NoError(t, err)

	require.Len(t, page.Results, 2)
	assert.Equal(t, testID(1), page.Results[0].CounterpartID)
	assert.Equal(t, models.SortBySimilarity, page.SortBy)
}
