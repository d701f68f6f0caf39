package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/poiesic/newsvec/ai"
	"github.com/poiesic/newsvec/core"
	"github.com/poiesic/newsvec/storage"
)

// Defaults for the retrieval filters.
const (
	DefaultK            = storage.DefaultK
	DefaultAuthorSuffix = "기자"
	DefaultMinLikes     = 1
)

// Retriever runs article searches against a document store.
type Retriever struct {
	store        storage.DocumentStore
	embedder     ai.Embedder
	index        string
	k            int
	authorSuffix string
	minLikes     int
	monitor      SearchMonitor
	logger       *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithIndex sets the similarity index name. An empty name lets the store
// use its configured default.
func WithIndex(name string) Option {
	return func(r *Retriever) error {
		r.index = name
		return nil
	}
}

// WithK sets the neighbour count for every kNN clause.
// Default is DefaultK.
func WithK(k int) Option {
	return func(r *Retriever) error {
		if k < 1 {
			return fmt.Errorf("k must be positive: %d", k)
		}
		r.k = k
		return nil
	}
}

// WithAuthorSuffix sets the byline suffix required by the hybrid strategy.
// Default is DefaultAuthorSuffix.
func WithAuthorSuffix(suffix string) Option {
	return func(r *Retriever) error {
		r.authorSuffix = suffix
		return nil
	}
}

// WithMinLikes sets the minimum like count required by the hybrid strategy.
// Default is DefaultMinLikes.
func WithMinLikes(n int) Option {
	return func(r *Retriever) error {
		if n < 0 {
			return fmt.Errorf("min likes cannot be negative: %d", n)
		}
		r.minLikes = n
		return nil
	}
}

// WithMonitor sets a monitor that observes every search.
func WithMonitor(monitor SearchMonitor) Option {
	return func(r *Retriever) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		r.monitor = monitor
		return nil
	}
}

// NewRetriever creates a new retriever.
func NewRetriever(store storage.DocumentStore, provider ai.AIProvider, opts ...Option) (*Retriever, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	r := &Retriever{
		store:        store,
		embedder:     provider.Embedder(),
		k:            DefaultK,
		authorSuffix: DefaultAuthorSuffix,
		minLikes:     DefaultMinLikes,
		monitor:      &noopMonitor{},
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Search embeds the query texts and runs the given strategies, or both
// when none are given. Results come back as one ResultSet per strategy.
//
// If the article text cannot be embedded the search stops with a
// *core.PreconditionError before any store call, alongside an Outcome
// holding no result sets. A missing title vector only drops the title kNN
// clause from the hybrid query.
func (r *Retriever) Search(ctx context.Context, articleText, titleText string, strategies ...Strategy) (*Outcome, error) {
	strategies, err := normalizeStrategies(strategies)
	if err != nil {
		return nil, err
	}
	r.monitor.Start(articleText, titleText)

	article := ai.Embed(ctx, r.embedder, articleText, r.logger)
	if !article.Available() {
		r.monitor.AfterEmbedding(article, ai.Embedding{})
		r.logger.Warn("article vector unavailable, no search possible", "failure", article.Failure.String())
		return &Outcome{}, &core.PreconditionError{
			Reason: fmt.Sprintf("article vector unavailable (%s)", article.Failure),
			Err:    article.Err,
		}
	}

	var title ai.Embedding
	if slices.Contains(strategies, StrategyHybrid) {
		title = ai.Embed(ctx, r.embedder, titleText, r.logger)
	}
	r.monitor.AfterEmbedding(article, title)

	outcome := &Outcome{Sets: make([]ResultSet, 0, len(strategies))}
	for _, s := range strategies {
		var rows []core.SearchResultRow
		switch s {
		case StrategyVector:
			rows, err = r.vectorSearch(ctx, article.Vector)
		case StrategyHybrid:
			rows, err = r.hybridSearch(ctx, article.Vector, title.Vector, titleText)
		}
		if err != nil {
			return nil, fmt.Errorf("%s search failed: %w", s, err)
		}
		r.logger.Debug("strategy finished", "strategy", s.String(), "results", len(rows))
		outcome.Sets = append(outcome.Sets, ResultSet{Strategy: s, Rows: rows})
	}

	r.monitor.Finish(outcome)
	return outcome, nil
}

// vectorSearch finds the nearest bodies, then dereferences each key for
// its display fields. Keys removed since the search are skipped.
func (r *Retriever) vectorSearch(ctx context.Context, vector []float32) ([]core.SearchResultRow, error) {
	matches, err := r.store.VectorSearch(ctx, storage.VectorQuery{
		Index:  r.index,
		Field:  storage.FieldBodyVector,
		Vector: vector,
		K:      r.k,
	})
	if err != nil {
		return nil, err
	}
	r.monitor.AfterVectorSearch(matches)

	rows := make([]core.SearchResultRow, 0, len(matches))
	for _, m := range matches {
		article, err := r.store.Get(ctx, m.Key)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				r.logger.Debug("matched article disappeared", "key", m.Key)
				continue
			}
			return nil, err
		}
		rows = append(rows, article.Row(m.Score))
	}
	core.SortRows(rows)
	return rows, nil
}

func (r *Retriever) hybridSearch(ctx context.Context, articleVector, titleVector []float32, titleText string) ([]core.SearchResultRow, error) {
	q := storage.HybridQuery{
		Index:         r.index,
		AuthorPattern: storage.AuthorSuffixPattern(r.authorSuffix),
		MinLikes:      r.minLikes,
		TitlePhrase:   titleText,
		KNN: []storage.KNNClause{
			{Field: storage.FieldBodyVector, Vector: articleVector, K: r.k},
			{Field: storage.FieldTitleVector, Vector: titleVector, K: r.k},
		},
	}
	if titleVector == nil {
		r.logger.Warn("title vector unavailable, dropping title kNN clause")
	}

	rows, err := r.store.HybridSearch(ctx, q)
	if err != nil {
		return nil, err
	}
	r.monitor.AfterHybridSearch(rows)
	return rows, nil
}

func normalizeStrategies(strategies []Strategy) ([]Strategy, error) {
	if len(strategies) == 0 {
		return AllStrategies, nil
	}
	out := make([]Strategy, 0, len(strategies))
	for _, s := range strategies {
		if s != StrategyVector && s != StrategyHybrid {
			return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, s)
		}
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out, nil
}
