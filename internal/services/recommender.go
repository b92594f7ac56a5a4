package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/google/uuid"

	"talenthub/matching-engine/internal/models"
	"talenthub/matching-engine/internal/repositories"
)

// RecommenderConfig bounds the pipeline's output and concurrency.
type RecommenderConfig struct {
	DefaultLimit       int
	MaxLimit           int
	ScoringConcurrency int
}

func DefaultRecommenderConfig() RecommenderConfig {
	return RecommenderConfig{
		DefaultLimit:       20,
		MaxLimit:           100,
		ScoringConcurrency: 8,
	}
}

// RecommenderService orchestrates pre-filtering, vector search, scoring,
// threshold filtering, sorting and pagination into ranked result pages.
type RecommenderService interface {
	Recommend(ctx context.Context, req *models.RecommendationRequest) (*models.RankedPage, error)
	Similar(ctx context.Context, entityID uuid.UUID, limit int, excludeSameCompany bool) (*models.RankedPage, error)
	TalentSearch(ctx context.Context, req *models.TalentSearchRequest) (*models.RankedPage, error)
	RecommendForVector(ctx context.Context, query []float32, counterpartType models.EntityType, req *models.TalentSearchRequest) (*models.RankedPage, error)
}

type recommenderService struct {
	cfg        RecommenderConfig
	entityRepo repositories.EntityRepository
	prefRepo   repositories.PreferenceRepository
	scoring    ScoringService
	searcher   VectorSearcher
	embedder   EmbeddingService
	counters   *DegradedCounters
}

func NewRecommenderService(
	cfg RecommenderConfig,
	entityRepo repositories.EntityRepository,
	prefRepo repositories.PreferenceRepository,
	scoring ScoringService,
	searcher VectorSearcher,
	embedder EmbeddingService,
	counters *DegradedCounters,
) RecommenderService {
	return &recommenderService{
		cfg:        cfg,
		entityRepo: entityRepo,
		prefRepo:   prefRepo,
		scoring:    scoring,
		searcher:   searcher,
		embedder:   embedder,
		counters:   counters,
	}
}

// Recommend implements RecommenderService.
func (s *recommenderService) Recommend(ctx context.Context, req *models.RecommendationRequest) (*models.RankedPage, error) {
	if !req.CounterpartType.Valid() {
		return nil, fmt.Errorf("%w: unknown counterpart_type %q", models.ErrInvalidFilter, req.CounterpartType)
	}
	if err := validatePaging(req.Limit, req.Offset, req.SortBy); err != nil {
		return nil, err
	}
	if err := req.Filters.Validate(); err != nil {
		return nil, err
	}

	subjectID, err := uuid.Parse(req.SubjectID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid subject_id", models.ErrInvalidFilter)
	}
	subject, err := s.entityRepo.FindByID(subjectID)
	if err != nil {
		return nil, err
	}

	// Concurrent requests for different users never share a preferences
	// object: prefs are loaded per request and passed by value into scoring.
	prefs, err := s.prefRepo.FindByUserID(subjectID)
	if err != nil && !errors.Is(err, models.ErrPreferencesNotFound) {
		return nil, err
	}

	pool, err := s.entityRepo.FindByType(req.CounterpartType, req.Filters, prefs)
	if err != nil {
		return nil, err
	}
	pool = excludeEntity(pool, subject.ID)

	weights := s.scoring.ResolveWeights(req.Weights, prefs)
	scores, err := s.scorePool(ctx, subject, pool, weights)
	if err != nil {
		return nil, err
	}

	return s.assemblePage(scores, req.MinMatchScore, req.SortBy, req.Limit, req.Offset, req.Filters), nil
}

// Similar implements RecommenderService: nearest entities of the same type,
// ranked by the same pipeline with default weights.
func (s *recommenderService) Similar(ctx context.Context, entityID uuid.UUID, limit int, excludeSameCompany bool) (*models.RankedPage, error) {
	if err := validatePaging(limit, 0, ""); err != nil {
		return nil, err
	}

	subject, err := s.entityRepo.FindByID(entityID)
	if err != nil {
		return nil, err
	}

	pool, err := s.entityRepo.FindByType(subject.Type, models.Filters{}, nil)
	if err != nil {
		return nil, err
	}
	pool = excludeEntity(pool, subject.ID)
	if excludeSameCompany && subject.Company != "" {
		filtered := pool[:0]
		for _, e := range pool {
			if e.Company != subject.Company {
				filtered = append(filtered, e)
			}
		}
		pool = filtered
	}

	weights := s.scoring.ResolveWeights(nil, nil)
	scores, err := s.scorePool(ctx, subject, pool, weights)
	if err != nil {
		return nil, err
	}

	return s.assemblePage(scores, 0, models.SortBySimilarity, limit, 0, models.Filters{}), nil
}

// TalentSearch implements RecommenderService. The structured criteria form
// the query: free text is embedded into the query vector and the requested
// skills become the required set.
func (s *recommenderService) TalentSearch(ctx context.Context, req *models.TalentSearchRequest) (*models.RankedPage, error) {
	var query []float32
	if req.Query != "" {
		vec, err := s.embedder.GenerateEmbedding(ctx, req.Query)
		if err != nil {
			// Criteria embedding is best-effort: without it the search
			// degrades to attribute-only ranking.
			log.Printf("⚠️  Failed to embed search criteria, ranking on attributes only: %v\n", err)
			query = nil
		} else {
			query = vec
		}
	}
	return s.RecommendForVector(ctx, query, models.EntityTypeCandidate, req)
}

// RecommendForVector implements RecommenderService: the shared entry point
// for subject-less queries (talent search, match-by-resume).
func (s *recommenderService) RecommendForVector(ctx context.Context, query []float32, counterpartType models.EntityType, req *models.TalentSearchRequest) (*models.RankedPage, error) {
	if err := validatePaging(req.Limit, req.Offset, req.SortBy); err != nil {
		return nil, err
	}
	if err := req.Filters.Validate(); err != nil {
		return nil, err
	}

	pool, err := s.entityRepo.FindByType(counterpartType, req.Filters, nil)
	if err != nil {
		return nil, err
	}

	// Synthetic target entity carrying the criteria, so scoring treats the
	// search exactly like an entity-to-entity pairing.
	target := &models.Entity{
		ID:        uuid.Nil,
		Type:      models.EntityTypeJob,
		Embedding: query,
	}
	for _, name := range req.Skills {
		target.Skills = append(target.Skills, models.Skill{Name: name})
	}
	if req.Filters.MinSalary != nil {
		target.SalaryMin = *req.Filters.MinSalary
	}
	if req.Filters.MaxSalary != nil {
		target.SalaryMax = *req.Filters.MaxSalary
	}

	weights := s.scoring.ResolveWeights(req.Weights, nil)
	scores, err := s.scorePool(ctx, target, pool, weights)
	if err != nil {
		return nil, err
	}

	return s.assemblePage(scores, req.MinMatchScore, req.SortBy, req.Limit, req.Offset, req.Filters), nil
}

// scorePool runs vector search once for the pool, then scores each
// counterpart. Scoring is embarrassingly parallel; results land in their
// slice position so parallelism never perturbs ordering.
func (s *recommenderService) scorePool(ctx context.Context, subject *models.Entity, pool []models.Entity, weights models.Weights) ([]models.MatchScore, error) {
	if len(pool) == 0 {
		return []models.MatchScore{}, nil
	}

	similarities := make(map[uuid.UUID]float64)
	hasSimilarity := false
	if subject.HasEmbedding() {
		neighbors, err := s.searcher.Search(ctx, subject.Embedding, pool, len(pool))
		if err != nil {
			if !errors.Is(err, models.ErrMissingEmbedding) {
				return nil, err
			}
		} else {
			hasSimilarity = true
			for _, n := range neighbors {
				similarities[n.ID] = n.Score
			}
		}
	}
	if !hasSimilarity {
		log.Println("⚠️  Subject has no embedding, degrading to attribute-only scoring")
		s.counters.RecordAttributeOnly()
	}

	concurrency := s.cfg.ScoringConcurrency
	if concurrency < 1 {
		concurrency = 1
	}

	scores := make([]models.MatchScore, len(pool))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i := range pool {
		// Abandon in-flight work as soon as practical when the caller
		// disconnects; nothing partial is persisted.
		if err := ctx.Err(); err != nil {
			break
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			counterpart := pool[i]
			similarity, found := similarities[counterpart.ID]
			scores[i] = s.scoring.Score(subject, &counterpart, similarity, hasSimilarity && found, weights)
		}(i)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("recommendation cancelled: %w", err)
	}
	return scores, nil
}

// assemblePage applies the threshold filter, sort and pagination, and
// records the parameters actually used.
func (s *recommenderService) assemblePage(scores []models.MatchScore, minScore float64, sortBy string, limit, offset int, filters models.Filters) *models.RankedPage {
	filtered := make([]models.MatchScore, 0, len(scores))
	for _, score := range scores {
		if score.Score >= minScore {
			filtered = append(filtered, score)
		}
	}

	if sortBy == "" {
		sortBy = models.SortByMatchScore
	}
	sortScores(filtered, sortBy)

	total := len(filtered)

	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	if limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	return &models.RankedPage{
		Results: filtered[offset:end],
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		SortBy:  sortBy,
		Filters: filters,
	}
}

// sortScores orders descending by the requested key with a stable ID-ascending
// tie-break so pagination is deterministic for a read-only pool.
func sortScores(scores []models.MatchScore, sortBy string) {
	key := func(m models.MatchScore) float64 {
		if sortBy == models.SortBySimilarity {
			return similaritySubscore(m)
		}
		return m.Score
	}
	sort.Slice(scores, func(i, j int) bool {
		ki, kj := key(scores[i]), key(scores[j])
		if ki != kj {
			return ki > kj
		}
		return scores[i].CounterpartID.String() < scores[j].CounterpartID.String()
	})
}

func similaritySubscore(m models.MatchScore) float64 {
	for _, sub := range m.SubScores {
		if sub.Name == models.FactorSimilarity {
			return sub.Value
		}
	}
	return 0
}

func validatePaging(limit, offset int, sortBy string) error {
	if limit < 0 {
		return fmt.Errorf("%w: negative limit", models.ErrInvalidFilter)
	}
	if offset < 0 {
		return fmt.Errorf("%w: negative offset", models.ErrInvalidFilter)
	}
	switch sortBy {
	case "", models.SortByMatchScore, models.SortBySimilarity:
		return nil
	}
	return fmt.Errorf("%w: unknown sort_by %q", models.ErrInvalidFilter, sortBy)
}

func excludeEntity(pool []models.Entity, id uuid.UUID) []models.Entity {
	filtered := pool[:0]
	for _, e := range pool {
		if e.ID != id {
			filtered = append(filtered, e)
		}
	}
	return filtered
}
