package main

import (
	"context"
	"log"

	"talenthub/matching-engine/internal/config"
	"talenthub/matching-engine/internal/models"
	"talenthub/matching-engine/internal/repositories"
	"talenthub/matching-engine/internal/services"
)

// Rebuilds the similarity index from the embeddings persisted in the entity
// store. Run after provisioning a fresh Qdrant instance or changing the
// collection prefix.
func main() {
	log.Println("🚀 Starting index backfill...")

	cfg := config.Load()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}
	entityRepo := repositories.NewEntityRepository(db)

	qdrantService, err := services.NewQdrantService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.CollectionPrefix,
		uint64(cfg.Embedding.Dimension),
		cfg.Qdrant.SearchTimeout,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	ctx := context.Background()
	if err := qdrantService.InitCollections(ctx); err != nil {
		log.Fatalf("❌ Failed to initialize collections: %v", err)
	}

	successCount := 0
	failCount := 0

	for _, entityType := range []models.EntityType{
		models.EntityTypeCandidate,
		models.EntityTypeJob,
		models.EntityTypeProject,
	} {
		entities, err := entityRepo.FindWithEmbeddings(entityType)
		if err != nil {
			log.Fatalf("❌ Failed to load %s entities: %v", entityType, err)
		}
		log.Printf("📄 Backfilling %d %s entities", len(entities), entityType)

		for i := range entities {
			if err := qdrantService.UpsertEntity(ctx, &entities[i]); err != nil {
				log.Printf("⚠️  Failed to index %s: %v", entities[i].ID, err)
				failCount++
				continue
			}
			successCount++
		}
	}

	log.Printf("✅ Backfill completed: %d indexed, %d failed", successCount, failCount)
}
