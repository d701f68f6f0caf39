package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/newsvec/core"
	"github.com/poiesic/newsvec/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *ArticleStore {
	t.Helper()
	store, err := NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testArticle(key string) *core.StoredArticle {
	published := time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC)
	return &core.StoredArticle{
		Key:         key,
		Title:       "금리 동결",
		Body:        "한국은행이 기준금리를 동결했다.",
		Author:      "홍길동 기자",
		PublishedAt: &published,
		SourceURL:   "https://n.news.naver.com/mnews/article/138/0002179100",
		LikeCount:   2,
		BodyVector:  []float32{1, 0},
		VectorModel: "mock-embedding",
	}
}

func TestArticleStore_InsertGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	article := testArticle(core.NewKey())
	require.NoError(t, store.Insert(ctx, article))

	got, err := store.Get(ctx, article.Key)
	require.NoError(t, err)
	assert.Equal(t, article.Key, got.Key)
	assert.Equal(t, article.Title, got.Title)
	assert.Equal(t, article.Author, got.Author)
	assert.True(t, article.PublishedAt.Equal(*got.PublishedAt))
	assert.Equal(t, article.BodyVector, got.BodyVector)
	assert.Nil(t, got.TitleVector)
}

func TestArticleStore_GetMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "article_missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = store.Get(context.Background(), "")
	assert.ErrorIs(t, err, core.ErrEmptyKey)
}

func TestArticleStore_InsertDuplicate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	article := testArticle("article_dup")
	require.NoError(t, store.Insert(ctx, article))

	err := store.Insert(ctx, article)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestArticleStore_Upsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	article := testArticle("article_up")
	require.NoError(t, store.Upsert(ctx, article))

	article.LikeCount = 40
	require.NoError(t, store.Upsert(ctx, article))

	got, err := store.Get(ctx, article.Key)
	require.NoError(t, err)
	assert.Equal(t, 40, got.LikeCount)
}

func TestArticleStore_Remove(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	article := testArticle("article_rm")
	require.NoError(t, store.Insert(ctx, article))
	require.NoError(t, store.Remove(ctx, article.Key))

	_, err := store.Get(ctx, article.Key)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, store.Remove(ctx, article.Key), storage.ErrNotFound)
}

func TestArticleStore_KeyspacesAreIsolated(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	first, err := NewArticleStore(backend, storage.DefaultKeyspace())
	require.NoError(t, err)
	other, err := NewArticleStore(backend, storage.Keyspace{Bucket: "news", Scope: "naver", Collection: "archive"})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, first.Insert(ctx, testArticle("article_a")))

	_, err = other.Get(ctx, "article_a")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	matches, err := other.VectorSearch(ctx, storage.VectorQuery{Field: storage.FieldBodyVector, Vector: []float32{1, 0}, K: 5})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestArticleStore_Closed(t *testing.T) {
	store, err := NewMemoryStore()
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = store.Get(context.Background(), "article_x")
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	assert.ErrorIs(t, store.Insert(context.Background(), testArticle("article_x")), storage.ErrStorageClosed)
}

func TestNewArticleStore_InvalidKeyspace(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	_, err = NewArticleStore(backend, storage.Keyspace{Bucket: "news"})
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestOpen_Persists(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := Open(dir, storage.DefaultKeyspace())
	require.NoError(t, err)
	require.NoError(t, store.Insert(ctx, testArticle("article_p")))
	require.NoError(t, store.Close())

	reopened, err := Open(dir, storage.DefaultKeyspace())
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "article_p")
	require.NoError(t, err)
	assert.Equal(t, "금리 동결", got.Title)
}

func TestArticleStore_ScanArticles(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	for _, key := range []string{"article_b", "article_a", "article_c"} {
		require.NoError(t, store.Insert(ctx, testArticle(key)))
	}

	var keys []string
	err := store.ScanArticles(ctx, func(a *core.StoredArticle) error {
		keys = append(keys, a.Key)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"article_a", "article_b", "article_c"}, keys)

	stop := errors.New("stop")
	visited := 0
	err = store.ScanArticles(ctx, func(a *core.StoredArticle) error {
		visited++
		return stop
	})
	require.ErrorIs(t, err, stop)
	assert.Equal(t, 1, visited)
}
