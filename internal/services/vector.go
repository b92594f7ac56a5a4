package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"sync/atomic"

	"github.com/google/uuid"

	"talenthub/matching-engine/internal/models"
)

// Neighbor is one nearest-neighbor hit with its cosine similarity in [0,1].
type Neighbor struct {
	ID    uuid.UUID
	Score float64
}

// VectorSearcher returns the top-limit nearest neighbors of the query vector
// within the given candidate pool. The indexed and brute-force strategies
// implement the same contract so both can be tested against it and swapped
// freely.
type VectorSearcher interface {
	Search(ctx context.Context, query []float32, pool []models.Entity, limit int) ([]Neighbor, error)
}

// CosineSimilarity computes dot(a,b) / (||a||*||b||). Zero-norm vectors are
// treated as similarity 0 rather than dividing by zero.
func CosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// ClampSimilarity maps a raw cosine value from [-1,1] into the [0,1] range
// used by scoring.
func ClampSimilarity(sim float64) float64 {
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}

// bruteForceSearcher is the in-process fallback: O(N*D) per request, so the
// pipeline pre-filters the pool by structured attributes before invoking it.
type bruteForceSearcher struct{}

func NewBruteForceSearcher() VectorSearcher {
	return &bruteForceSearcher{}
}

// Search implements VectorSearcher.
func (s *bruteForceSearcher) Search(ctx context.Context, query []float32, pool []models.Entity, limit int) ([]Neighbor, error) {
	if len(query) == 0 {
		return nil, models.ErrMissingEmbedding
	}
	if len(pool) == 0 {
		return []Neighbor{}, nil
	}

	neighbors := make([]Neighbor, 0, len(pool))
	for i := range pool {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("search cancelled: %w", err)
		}
		if !pool[i].HasEmbedding() {
			continue
		}
		sim := ClampSimilarity(CosineSimilarity(query, pool[i].Embedding))
		neighbors = append(neighbors, Neighbor{ID: pool[i].ID, Score: sim})
	}

	// Score descending, stable tie-break by entity ID ascending so results
	// are deterministic across runs and strategies.
	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Score != neighbors[j].Score {
			return neighbors[i].Score > neighbors[j].Score
		}
		return neighbors[i].ID.String() < neighbors[j].ID.String()
	})

	if limit > 0 && len(neighbors) > limit {
		neighbors = neighbors[:limit]
	}
	return neighbors, nil
}

// DegradedCounters tracks fallback-path activations so operators can detect
// an unhealthy primary path. Fallbacks never change the caller-facing
// success/failure shape.
type DegradedCounters struct {
	bruteForceSearches atomic.Int64
	attributeOnly      atomic.Int64
}

func NewDegradedCounters() *DegradedCounters {
	return &DegradedCounters{}
}

func (c *DegradedCounters) RecordBruteForce() {
	c.bruteForceSearches.Add(1)
}

func (c *DegradedCounters) RecordAttributeOnly() {
	c.attributeOnly.Add(1)
}

func (c *DegradedCounters) BruteForceSearches() int64 {
	return c.bruteForceSearches.Load()
}

func (c *DegradedCounters) AttributeOnlyScores() int64 {
	return c.attributeOnly.Load()
}

// failoverSearcher delegates to the indexed service and falls back to
// brute-force when it errors or reports no matches (index missing or still
// building). A missing query vector is the caller's problem either way and
// is returned without attempting the fallback.
type failoverSearcher struct {
	primary  VectorSearcher
	fallback VectorSearcher
	counters *DegradedCounters
}

func NewFailoverSearcher(primary, fallback VectorSearcher, counters *DegradedCounters) VectorSearcher {
	return &failoverSearcher{
		primary:  primary,
		fallback: fallback,
		counters: counters,
	}
}

// Search implements VectorSearcher.
func (s *failoverSearcher) Search(ctx context.Context, query []float32, pool []models.Entity, limit int) ([]Neighbor, error) {
	if len(query) == 0 {
		return nil, models.ErrMissingEmbedding
	}
	if len(pool) == 0 {
		return []Neighbor{}, nil
	}

	neighbors, err := s.primary.Search(ctx, query, pool, limit)
	if err == nil && len(neighbors) > 0 {
		return neighbors, nil
	}

	if err != nil {
		log.Printf("⚠️  Vector index unavailable, falling back to brute-force search: %v\n", err)
	} else {
		log.Println("⚠️  Vector index returned no matches, falling back to brute-force search")
	}
	s.counters.RecordBruteForce()

	return s.fallback.Search(ctx, query, pool, limit)
}
