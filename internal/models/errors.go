package models

import "errors"

var (
	// ErrMissingEmbedding signals that a query entity has no embedding
	// vector. Scoring degrades to attribute-only, it never fails a request.
	ErrMissingEmbedding = errors.New("entity has no embedding vector")

	// ErrIndexUnavailable signals that the indexed similarity service is
	// down or misconfigured. The pipeline falls back to brute-force search.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrIndexMismatch signals that the configured index descriptor
	// (dimensionality, metric) does not match the existing collection.
	ErrIndexMismatch = errors.New("vector index configuration mismatch")

	// ErrInvalidFilter signals a malformed or contradictory filter
	// combination, rejected at the pipeline boundary.
	ErrInvalidFilter = errors.New("invalid filter combination")

	ErrEntityNotFound        = errors.New("entity not found")
	ErrPreferencesNotFound   = errors.New("preferences not found")
	ErrUnknownRecommendation = errors.New("unknown recommendation")
	ErrInvalidFeedback       = errors.New("invalid feedback record")
)
