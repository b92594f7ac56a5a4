package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"talenthub/matching-engine/internal/models"
)

// In-memory repository fakes so the pipeline can be exercised without a
// database.

type fakeEntityRepo struct {
	entities map[uuid.UUID]*models.Entity
}

func newFakeEntityRepo(entities ...*models.Entity) *fakeEntityRepo {
	repo := &fakeEntityRepo{entities: make(map[uuid.UUID]*models.Entity)}
	for _, e := range entities {
		repo.entities[e.ID] = e
	}
	return repo
}

func (r *fakeEntityRepo) FindByID(id uuid.UUID) (*models.Entity, error) {
	if e, ok := r.entities[id]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("%w: %s", models.ErrEntityNotFound, id)
}

func (r *fakeEntityRepo) FindByType(
	entityType models.EntityType,
	filters models.Filters,
	prefs *models.RecommendationPreferences,
) ([]models.Entity, error) {
	var matched []models.Entity
	for _, e := range r.entities {
		if e.Type != entityType {
			continue
		}
		if filters.MinSalary != nil && e.SalaryMax < *filters.MinSalary {
			continue
		}
		if filters.MaxSalary != nil && e.SalaryMin > *filters.MaxSalary {
			continue
		}
		if filters.RemoteOnly && !e.Location.Remote {
			continue
		}
		if prefs != nil && contains(prefs.ExcludedIndustries, e.Industry) {
			continue
		}
		if prefs != nil && contains(prefs.ExcludedCompanies, e.Company) {
			continue
		}
		matched = append(matched, *e)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].ID.String() < matched[j].ID.String()
	})
	return matched, nil
}

func (r *fakeEntityRepo) FindWithEmbeddings(entityType models.EntityType) ([]models.Entity, error) {
	all, err := r.FindByType(entityType, models.Filters{}, nil)
	if err != nil {
		return nil, err
	}
	filtered := all[:0]
	for _, e := range all {
		if e.HasEmbedding() {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

func contains(list models.StringList, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

type fakePrefRepo struct {
	mu    sync.Mutex
	prefs map[uuid.UUID]*models.RecommendationPreferences
}

func newFakePrefRepo() *fakePrefRepo {
	return &fakePrefRepo{prefs: make(map[uuid.UUID]*models.RecommendationPreferences)}
}

func (r *fakePrefRepo) FindByUserID(userID uuid.UUID) (*models.RecommendationPreferences, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.prefs[userID]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: user %s", models.ErrPreferencesNotFound, userID)
}

func (r *fakePrefRepo) Upsert(prefs *models.RecommendationPreferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefs[prefs.UserID] = prefs
	return nil
}

// fakeFeedbackRepo mirrors the (user, recommendation) upsert semantics of the
// real store.
type fakeFeedbackRepo struct {
	mu      sync.Mutex
	records map[string]*models.FeedbackRecord
}

func newFakeFeedbackRepo() *fakeFeedbackRepo {
	return &fakeFeedbackRepo{records: make(map[string]*models.FeedbackRecord)}
}

func (r *fakeFeedbackRepo) Upsert(record *models.FeedbackRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := record.UserID.String() + "/" + record.RecommendationID.String()
	if existing, ok := r.records[key]; ok {
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
	}
	r.records[key] = record
	return nil
}

func (r *fakeFeedbackRepo) ListByFilter(filter models.FeedbackFilter) ([]models.FeedbackRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var records []models.FeedbackRecord
	for _, record := range r.records {
		if filter.UserID != "" && record.UserID.String() != filter.UserID {
			continue
		}
		if filter.RecommendationType != "" && record.RecommendationType != filter.RecommendationType {
			continue
		}
		if filter.From != nil && record.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !record.CreatedAt.Before(*filter.To) {
			continue
		}
		records = append(records, *record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	return records, nil
}

func (r *fakeFeedbackRepo) ListUsersSince(since time.Time) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[uuid.UUID]bool)
	var userIDs []uuid.UUID
	for _, record := range r.records {
		if record.UpdatedAt.Before(since) || seen[record.UserID] {
			continue
		}
		seen[record.UserID] = true
		userIDs = append(userIDs, record.UserID)
	}
	sort.Slice(userIDs, func(i, j int) bool {
		return userIDs[i].String() < userIDs[j].String()
	})
	return userIDs, nil
}

// failingSearcher simulates an unreachable vector index.
type failingSearcher struct {
	calls int
}

func (s *failingSearcher) Search(ctx context.Context, query []float32, pool []models.Entity, limit int) ([]Neighbor, error) {
	s.calls++
	return nil, fmt.Errorf("%w: connection refused", models.ErrIndexUnavailable)
}

// emptySearcher simulates an index that is reachable but not yet populated.
type emptySearcher struct{}

func (s *emptySearcher) Search(ctx context.Context, query []float32, pool []models.Entity, limit int) ([]Neighbor, error) {
	return []Neighbor{}, nil
}

// stubEmbedder returns a canned vector without calling any external API.
type stubEmbedder struct {
	vector []float32
	err    error
}

func (e *stubEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.vector, nil
}

func (e *stubEmbedder) GenerateEmbeddingWithRetry(ctx context.Context, text string, maxRetries int) ([]float32, error) {
	return e.GenerateEmbedding(ctx, text)
}

// testID builds a deterministic UUID so ordering assertions are stable.
func testID(n int) uuid.UUID {
	return uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0000-%012d", n))
}
