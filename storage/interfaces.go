package storage

import (
	"context"

	"github.com/poiesic/newsvec/core"
)

// Field names of vectorized article fields, as stored in documents.
const (
	FieldTitleVector = "titleVector"
	FieldBodyVector  = "bodyVector"
)

// KeyValueStore addresses articles by their unique key within one collection.
type KeyValueStore interface {
	// Get retrieves an article by key.
	// Returns ErrNotFound if no document has that key.
	Get(ctx context.Context, key string) (*core.StoredArticle, error)

	// Insert writes a new article under article.Key.
	// Returns ErrDuplicateKey if the key is already taken.
	Insert(ctx context.Context, article *core.StoredArticle) error

	// Upsert writes an article under article.Key, replacing any existing document.
	Upsert(ctx context.Context, article *core.StoredArticle) error

	// Remove deletes the article with the given key.
	// Returns ErrNotFound if no document has that key.
	Remove(ctx context.Context, key string) error
}

// VectorSearcher runs nearest-neighbour queries against a similarity index.
type VectorSearcher interface {
	// VectorSearch returns up to q.K matches ordered by score, highest first.
	VectorSearch(ctx context.Context, q VectorQuery) ([]core.SimilarityMatch, error)
}

// HybridSearcher runs combined structured, full-text and vector queries.
type HybridSearcher interface {
	// HybridSearch returns the rows satisfying every predicate of q, ordered
	// by relevance descending, then publication date descending.
	HybridSearch(ctx context.Context, q HybridQuery) ([]core.SearchResultRow, error)
}

// ArticleScanner walks every article of a collection.
type ArticleScanner interface {
	// ScanArticles calls fn once per stored article. Iteration stops at the
	// first error returned by fn, and that error is returned.
	ScanArticles(ctx context.Context, fn func(*core.StoredArticle) error) error
}

// DocumentStore is the full document store used by ingestion and retrieval.
// A store is opened once per run and shared by every operation in it.
type DocumentStore interface {
	KeyValueStore
	VectorSearcher
	HybridSearcher
	ArticleScanner

	// Close releases the connection or database handle.
	Close() error
}
