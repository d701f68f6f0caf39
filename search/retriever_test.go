package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/newsvec/ai"
	"github.com/poiesic/newsvec/ai/mock"
	"github.com/poiesic/newsvec/core"
	"github.com/poiesic/newsvec/storage"
	"github.com/poiesic/newsvec/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spyStore counts calls and can hide keys from Get.
type spyStore struct {
	storage.DocumentStore
	calls  int
	hidden map[string]bool
}

func (s *spyStore) Get(ctx context.Context, key string) (*core.StoredArticle, error) {
	s.calls++
	if s.hidden[key] {
		return nil, storage.ErrNotFound
	}
	return s.DocumentStore.Get(ctx, key)
}

func (s *spyStore) VectorSearch(ctx context.Context, q storage.VectorQuery) ([]core.SimilarityMatch, error) {
	s.calls++
	return s.DocumentStore.VectorSearch(ctx, q)
}

func (s *spyStore) HybridSearch(ctx context.Context, q storage.HybridQuery) ([]core.SearchResultRow, error) {
	s.calls++
	return s.DocumentStore.HybridSearch(ctx, q)
}

// recordingMonitor implements SearchMonitor for testing.
type recordingMonitor struct {
	started  bool
	article  ai.Embedding
	title    ai.Embedding
	matches  []core.SimilarityMatch
	hybrid   []core.SearchResultRow
	finished *Outcome
}

func (m *recordingMonitor) Start(_, _ string)                             { m.started = true }
func (m *recordingMonitor) AfterEmbedding(a, t ai.Embedding)              { m.article, m.title = a, t }
func (m *recordingMonitor) AfterVectorSearch(ms []core.SimilarityMatch)   { m.matches = ms }
func (m *recordingMonitor) AfterHybridSearch(rows []core.SearchResultRow) { m.hybrid = rows }
func (m *recordingMonitor) Finish(o *Outcome)                             { m.finished = o }

const (
	articleQuery = "반도체 수출 회복세"
	titleQuery   = "반도체"
)

func queryEmbedder() *mock.MockEmbedder {
	e := mock.NewMockEmbedder()
	e.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		switch text {
		case articleQuery, titleQuery:
			return []float32{1, 0}, nil
		}
		return []float32{0, 1}, nil
	}
	return e
}

func day(d int) *time.Time {
	t := time.Date(2024, 7, d, 9, 0, 0, 0, time.UTC)
	return &t
}

func seedArticles(t *testing.T) *spyStore {
	t.Helper()
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	articles := []*core.StoredArticle{
		{Key: "article_match", Title: "반도체 수출 반등", Author: "김 기자", LikeCount: 4, PublishedAt: day(1),
			BodyVector: []float32{1, 0}, TitleVector: []float32{1, 0}},
		{Key: "article_columnist", Title: "반도체 전망", Author: "이 논설위원", LikeCount: 9, PublishedAt: day(2),
			BodyVector: []float32{0.95, 0.3}, TitleVector: []float32{0.95, 0.3}},
		{Key: "article_unliked", Title: "반도체 가격", Author: "박 기자", LikeCount: 0, PublishedAt: day(3),
			BodyVector: []float32{0.9, 0.4}, TitleVector: []float32{0.9, 0.4}},
		{Key: "article_offtopic", Title: "배터리 투자", Author: "최 기자", LikeCount: 7, PublishedAt: day(4),
			BodyVector: []float32{0.85, 0.5}, TitleVector: []float32{0.85, 0.5}},
		{Key: "article_far", Title: "반도체 인력", Author: "정 기자", LikeCount: 2, PublishedAt: day(5),
			BodyVector: []float32{0, 1}, TitleVector: []float32{0, 1}},
		{Key: "article_unembedded", Title: "반도체 특집", Author: "한 기자", LikeCount: 3, PublishedAt: day(6)},
	}
	for _, a := range articles {
		require.NoError(t, store.Insert(context.Background(), a))
	}
	return &spyStore{DocumentStore: store}
}

func rowKeys(rows []core.SearchResultRow) []string {
	keys := make([]string, len(rows))
	for i, r := range rows {
		keys[i] = r.Key
	}
	return keys
}

func TestNewRetriever_Validation(t *testing.T) {
	store := seedArticles(t)
	provider := mock.NewMockProvider()

	_, err := NewRetriever(nil, provider)
	assert.ErrorIs(t, err, ErrStoreRequired)
	_, err = NewRetriever(store, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)
	_, err = NewRetriever(store, provider, WithK(0))
	assert.Error(t, err)
	_, err = NewRetriever(store, provider, WithMinLikes(-1))
	assert.Error(t, err)
}

func TestSearch_BothStrategiesLabelledSeparately(t *testing.T) {
	store := seedArticles(t)
	monitor := &recordingMonitor{}
	r, err := NewRetriever(store, mock.NewMockProviderWithEmbedder(queryEmbedder()), WithMonitor(monitor), WithK(4))
	require.NoError(t, err)

	outcome, err := r.Search(context.Background(), articleQuery, titleQuery)
	require.NoError(t, err)
	require.Len(t, outcome.Sets, 2)
	assert.Equal(t, StrategyVector, outcome.Sets[0].Strategy)
	assert.Equal(t, StrategyHybrid, outcome.Sets[1].Strategy)
	assert.NotEqual(t, outcome.Sets[0].Label(), outcome.Sets[1].Label())

	vector, ok := outcome.Set(StrategyVector)
	require.True(t, ok)
	assert.Equal(t, []string{"article_match", "article_columnist", "article_unliked", "article_offtopic"}, rowKeys(vector.Rows))

	hybrid, ok := outcome.Set(StrategyHybrid)
	require.True(t, ok)
	assert.Equal(t, []string{"article_match"}, rowKeys(hybrid.Rows))

	assert.True(t, monitor.started)
	assert.True(t, monitor.article.Available())
	assert.True(t, monitor.title.Available())
	assert.Len(t, monitor.matches, 4)
	assert.Same(t, outcome, monitor.finished)
}

func TestSearch_HybridRowsSatisfyEveryFilter(t *testing.T) {
	store := seedArticles(t)
	r, err := NewRetriever(store, mock.NewMockProviderWithEmbedder(queryEmbedder()), WithK(6), WithMinLikes(1))
	require.NoError(t, err)

	outcome, err := r.Search(context.Background(), articleQuery, titleQuery, StrategyHybrid)
	require.NoError(t, err)

	hybrid, _ := outcome.Set(StrategyHybrid)
	assert.Equal(t, []string{"article_match", "article_far"}, rowKeys(hybrid.Rows))
	for _, row := range hybrid.Rows {
		assert.GreaterOrEqual(t, row.LikeCount, 1)
		assert.Contains(t, row.Author, "기자")
		assert.Contains(t, row.Title, "반도체")
	}
}

func TestSearch_ArticleVectorUnavailable(t *testing.T) {
	store := seedArticles(t)
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("API returned unexpected status code: 401: invalid api key")
	}
	r, err := NewRetriever(store, mock.NewMockProviderWithEmbedder(embedder))
	require.NoError(t, err)

	outcome, err := r.Search(context.Background(), articleQuery, titleQuery)
	require.NotNil(t, outcome, "callers get an empty outcome, not nil")
	assert.Empty(t, outcome.Sets)
	_, ok := outcome.Set(StrategyVector)
	assert.False(t, ok)

	var perr *core.PreconditionError
	require.True(t, errors.As(err, &perr))
	assert.ErrorIs(t, err, core.ErrPrecondition)
	assert.Contains(t, err.Error(), "no results possible")
	assert.Contains(t, perr.Reason, "unauthorized")
	assert.Equal(t, 0, store.calls, "no store call without an article vector")
	assert.Equal(t, 1, embedder.CallCount(), "title is not embedded once the search is impossible")
}

func TestSearch_EmptyArticleText(t *testing.T) {
	store := seedArticles(t)
	embedder := queryEmbedder()
	r, err := NewRetriever(store, mock.NewMockProviderWithEmbedder(embedder))
	require.NoError(t, err)

	_, err = r.Search(context.Background(), "   ", titleQuery)
	assert.ErrorIs(t, err, core.ErrPrecondition)
	assert.Equal(t, 0, embedder.CallCount())
	assert.Equal(t, 0, store.calls)
}

func TestSearch_TitleVectorUnavailable(t *testing.T) {
	store := seedArticles(t)
	embedder := queryEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		if text == titleQuery {
			return nil, errors.New("dial tcp: connection refused")
		}
		return []float32{1, 0}, nil
	}
	r, err := NewRetriever(store, mock.NewMockProviderWithEmbedder(embedder))
	require.NoError(t, err)

	outcome, err := r.Search(context.Background(), articleQuery, titleQuery, StrategyHybrid)
	require.NoError(t, err)
	hybrid, _ := outcome.Set(StrategyHybrid)
	assert.Equal(t, []string{"article_match", "article_far"}, rowKeys(hybrid.Rows))
}

func TestSearch_VectorOnlySkipsTitleEmbedding(t *testing.T) {
	store := seedArticles(t)
	embedder := queryEmbedder()
	r, err := NewRetriever(store, mock.NewMockProviderWithEmbedder(embedder), WithK(2))
	require.NoError(t, err)

	outcome, err := r.Search(context.Background(), articleQuery, titleQuery, StrategyVector)
	require.NoError(t, err)
	require.Len(t, outcome.Sets, 1)
	assert.Len(t, outcome.Sets[0].Rows, 2)
	assert.Equal(t, []string{articleQuery}, embedder.Texts())

	_, ok := outcome.Set(StrategyHybrid)
	assert.False(t, ok)
}

func TestSearch_VectorSkipsVanishedKeys(t *testing.T) {
	store := seedArticles(t)
	store.hidden = map[string]bool{"article_columnist": true}
	r, err := NewRetriever(store, mock.NewMockProviderWithEmbedder(queryEmbedder()), WithK(3))
	require.NoError(t, err)

	outcome, err := r.Search(context.Background(), articleQuery, titleQuery, StrategyVector)
	require.NoError(t, err)
	assert.Equal(t, []string{"article_match", "article_unliked"}, rowKeys(outcome.Sets[0].Rows))
}

func TestSearch_Idempotent(t *testing.T) {
	store := seedArticles(t)
	r, err := NewRetriever(store, mock.NewMockProviderWithEmbedder(queryEmbedder()))
	require.NoError(t, err)

	first, err := r.Search(context.Background(), articleQuery, titleQuery)
	require.NoError(t, err)
	second, err := r.Search(context.Background(), articleQuery, titleQuery)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSearch_UnknownStrategy(t *testing.T) {
	store := seedArticles(t)
	r, err := NewRetriever(store, mock.NewMockProviderWithEmbedder(queryEmbedder()))
	require.NoError(t, err)

	_, err = r.Search(context.Background(), articleQuery, titleQuery, Strategy(9))
	assert.ErrorIs(t, err, ErrUnknownStrategy)
	assert.Equal(t, 0, store.calls)
}

func TestSearch_StoreErrorPropagates(t *testing.T) {
	store := seedArticles(t)
	r, err := NewRetriever(store, mock.NewMockProviderWithEmbedder(queryEmbedder()))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = r.Search(context.Background(), articleQuery, titleQuery)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestParseStrategy(t *testing.T) {
	got, err := ParseStrategy("vector")
	require.NoError(t, err)
	assert.Equal(t, []Strategy{StrategyVector}, got)

	got, err = ParseStrategy(" Hybrid ")
	require.NoError(t, err)
	assert.Equal(t, []Strategy{StrategyHybrid}, got)

	got, err = ParseStrategy("both")
	require.NoError(t, err)
	assert.Equal(t, AllStrategies, got)

	_, err = ParseStrategy("keyword")
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}
