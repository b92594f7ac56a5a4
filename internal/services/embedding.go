package services

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// EmbeddingService turns free-text queries (talent-search criteria, resume
// text) into vectors with the same dimensionality the external producer uses
// for entity embeddings. Entity vectors themselves are read from the store,
// never generated here.
type EmbeddingService interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateEmbeddingWithRetry(ctx context.Context, text string, maxRetries int) ([]float32, error)
}

type embeddingService struct {
	client     *genai.Client
	embedModel string
	dimension  int32
}

func NewEmbeddingService(apiKey string, dimension int) (EmbeddingService, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &embeddingService{
		client:     client,
		embedModel: "gemini-embedding-001",
		dimension:  int32(dimension),
	}, nil
}

// GenerateEmbedding implements EmbeddingService.
func (g *embeddingService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	// Truncate text if too long (max ~10000 tokens for embedding)
	if len(text) > 40000 {
		text = text[:40000]
	}

	dimension := g.dimension
	config := &genai.EmbedContentConfig{
		OutputDimensionality: &dimension,
	}

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), config)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

// GenerateEmbeddingWithRetry implements EmbeddingService.
func (g *embeddingService) GenerateEmbeddingWithRetry(ctx context.Context, text string, maxRetries int) ([]float32, error) {
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		result, err := g.GenerateEmbedding(ctx, text)
		if err == nil {
			return result, nil
		}

		lastErr = err

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		if attempt < maxRetries {
			fmt.Printf("⚠️ Embedding attempt %d failed: %v. Retrying...\n", attempt, err)
		}
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", maxRetries, lastErr)
}
