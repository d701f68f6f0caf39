package ingestion

import "errors"

var (
	// ErrStoreRequired is returned when a document store is not provided.
	ErrStoreRequired = errors.New("document store required")

	// ErrSourceRequired is returned when an article source is not provided.
	ErrSourceRequired = errors.New("article source required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrInvalidRange is returned when the start id or count is negative.
	ErrInvalidRange = errors.New("invalid id range")
)
