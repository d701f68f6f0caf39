package reembed

import (
	"context"
	"fmt"
	"testing"

	"github.com/poiesic/newsvec/core"
	"github.com/poiesic/newsvec/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *badger.ArticleStore {
	t.Helper()
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testArticle(n int, title, body []float32) *core.StoredArticle {
	return &core.StoredArticle{
		Key:         fmt.Sprintf("article_%02d", n),
		Title:       fmt.Sprintf("제목 %d", n),
		Body:        fmt.Sprintf("본문 %d", n),
		Author:      "홍길동 기자",
		LikeCount:   n,
		TitleVector: title,
		BodyVector:  body,
	}
}

func seed(t *testing.T, store *badger.ArticleStore, articles ...*core.StoredArticle) {
	t.Helper()
	for _, a := range articles {
		require.NoError(t, store.Insert(context.Background(), a))
	}
}

func TestArticleIterator_CollectMissing(t *testing.T) {
	store := setupTestStore(t)
	vec := []float32{1, 0}
	seed(t, store,
		testArticle(1, vec, vec),
		testArticle(2, nil, vec),
		testArticle(3, vec, nil),
		testArticle(4, nil, nil),
	)

	it := NewArticleIterator(store, 2, MissingVectors)
	selected, scanned, err := it.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, scanned)

	keys := make([]string, len(selected))
	for i, a := range selected {
		keys[i] = a.Key
	}
	assert.Equal(t, []string{"article_02", "article_03", "article_04"}, keys)
}

func TestArticleIterator_SkipsArticlesWithNothingToEmbed(t *testing.T) {
	store := setupTestStore(t)
	vec := []float32{1, 0}

	blank := testArticle(1, nil, nil)
	blank.Title, blank.Body = "  ", ""
	noBody := testArticle(2, vec, nil)
	noBody.Body = ""
	seed(t, store, blank, noBody, testArticle(3, nil, nil))

	for _, selector := range []Selector{MissingVectors, EveryArticle} {
		selected, scanned, err := NewArticleIterator(store, 2, selector).Collect(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, scanned)

		var keys []string
		for _, a := range selected {
			keys = append(keys, a.Key)
		}
		assert.NotContains(t, keys, "article_01")
		assert.Contains(t, keys, "article_03")
	}

	assert.False(t, MissingVectors(noBody), "the only missing vector has no text behind it")
	assert.True(t, EveryArticle(noBody))
}

func TestArticleIterator_CollectAll(t *testing.T) {
	store := setupTestStore(t)
	vec := []float32{1, 0}
	seed(t, store, testArticle(1, vec, vec), testArticle(2, vec, vec))

	it := NewArticleIterator(store, 0, EveryArticle)
	selected, scanned, err := it.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, scanned)
	assert.Len(t, selected, 2)
	assert.Equal(t, DefaultBatchSize, it.batchSize)
}

func TestArticleIterator_Batches(t *testing.T) {
	it := NewArticleIterator(nil, 3, nil)
	articles := make([]*core.StoredArticle, 7)
	for i := range articles {
		articles[i] = testArticle(i, nil, nil)
	}

	batches := it.Batches(articles)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 3)
	assert.Len(t, batches[1], 3)
	assert.Len(t, batches[2], 1)
	assert.Equal(t, "article_06", batches[2][0].Key)

	assert.Empty(t, it.Batches(nil))
}

func TestArticleIterator_ContextCanceled(t *testing.T) {
	store := setupTestStore(t)
	seed(t, store, testArticle(1, nil, nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewArticleIterator(store, 2, nil).Collect(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
