package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"talenthub/matching-engine/internal/models"
)

// VectorIndexService manages the external indexed nearest-neighbor service.
// One collection per entity type, cosine metric, dimensionality fixed by the
// index descriptor. It doubles as the primary VectorSearcher strategy.
type VectorIndexService interface {
	VectorSearcher
	InitCollections(ctx context.Context) error
	UpsertEntity(ctx context.Context, entity *models.Entity) error
	DeleteEntity(ctx context.Context, entity *models.Entity) error
}

type qdrantService struct {
	client           *qdrant.Client
	collectionPrefix string
	vectorSize       uint64
	searchTimeout    time.Duration
}

func NewQdrantService(urlStr, apiKey, collectionPrefix string, vectorSize uint64, searchTimeout time.Duration) (VectorIndexService, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// For gRPC client, use port 6334 by default (gRPC port)
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantService{
		client:           client,
		collectionPrefix: collectionPrefix,
		vectorSize:       vectorSize,
		searchTimeout:    searchTimeout,
	}, nil
}

func (q *qdrantService) collectionFor(entityType models.EntityType) string {
	return fmt.Sprintf("%s_%s", q.collectionPrefix, entityType)
}

// InitCollections implements VectorIndexService. Existing collections are
// verified against the configured index descriptor: a dimensionality or
// metric mismatch is refused outright rather than letting similarity search
// return degenerate scores.
func (q *qdrantService) InitCollections(ctx context.Context) error {
	for _, entityType := range []models.EntityType{
		models.EntityTypeCandidate,
		models.EntityTypeJob,
		models.EntityTypeProject,
	} {
		name := q.collectionFor(entityType)

		exists, err := q.client.CollectionExists(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to check collection %s: %w", name, err)
		}

		if exists {
			if err := q.verifyCollection(ctx, name); err != nil {
				return err
			}
			continue
		}

		err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: name,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     q.vectorSize,
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection %s: %w", name, err)
		}

		log.Printf("✅ Qdrant collection '%s' created successfully\n", name)
	}
	return nil
}

func (q *qdrantService) verifyCollection(ctx context.Context, name string) error {
	info, err := q.client.GetCollectionInfo(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to inspect collection %s: %w", name, err)
	}

	params := info.GetConfig().GetParams().GetVectorsConfig().GetParams()
	if params == nil {
		return fmt.Errorf("%w: collection %s has no vector params", models.ErrIndexMismatch, name)
	}
	if params.Size != q.vectorSize {
		return fmt.Errorf("%w: collection %s has dimensionality %d, configured %d",
			models.ErrIndexMismatch, name, params.Size, q.vectorSize)
	}
	if params.Distance != qdrant.Distance_Cosine {
		return fmt.Errorf("%w: collection %s uses metric %s, expected cosine",
			models.ErrIndexMismatch, name, params.Distance)
	}
	return nil
}

// Search implements VectorSearcher. The query is restricted to the given
// pool via an ID filter so the indexed path ranks exactly the same candidate
// set the brute-force fallback would.
func (q *qdrantService) Search(ctx context.Context, query []float32, pool []models.Entity, limit int) ([]Neighbor, error) {
	if len(query) == 0 {
		return nil, models.ErrMissingEmbedding
	}
	if len(pool) == 0 {
		return []Neighbor{}, nil
	}
	if len(query) != int(q.vectorSize) {
		return nil, fmt.Errorf("%w: query has dimensionality %d, index expects %d",
			models.ErrIndexMismatch, len(query), q.vectorSize)
	}

	ctx, cancel := context.WithTimeout(ctx, q.searchTimeout)
	defer cancel()

	ids := make([]*qdrant.PointId, 0, len(pool))
	for i := range pool {
		ids = append(ids, qdrant.NewID(pool[i].ID.String()))
	}
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewHasID(ids...),
		},
	}

	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionFor(pool[0].Type),
		Query:          qdrant.NewQuery(query...),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(limit)),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrIndexUnavailable, err)
	}

	neighbors := make([]Neighbor, 0, len(points))
	for _, point := range points {
		id, err := uuid.Parse(point.GetId().GetUuid())
		if err != nil {
			continue
		}
		neighbors = append(neighbors, Neighbor{
			ID:    id,
			Score: ClampSimilarity(float64(point.GetScore())),
		})
	}
	return neighbors, nil
}

// UpsertEntity implements VectorIndexService.
func (q *qdrantService) UpsertEntity(ctx context.Context, entity *models.Entity) error {
	if !entity.HasEmbedding() {
		return fmt.Errorf("%w: entity %s", models.ErrMissingEmbedding, entity.ID)
	}

	point := &qdrant.PointStruct{
		Id:      qdrant.NewID(entity.ID.String()),
		Vectors: qdrant.NewVectors(entity.Embedding...),
		Payload: qdrant.NewValueMap(map[string]interface{}{
			"entity_type": string(entity.Type),
			"name":        entity.Name,
		}),
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionFor(entity.Type),
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}
	return nil
}

// DeleteEntity implements VectorIndexService.
func (q *qdrantService) DeleteEntity(ctx context.Context, entity *models.Entity) error {
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionFor(entity.Type),
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Points{
				Points: &qdrant.PointsIdsList{
					Ids: []*qdrant.PointId{qdrant.NewID(entity.ID.String())},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete entity from index: %w", err)
	}
	return nil
}
