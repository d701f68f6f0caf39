package reembed

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/newsvec/ai/mock"
	"github.com/poiesic/newsvec/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		BatchSize:      3,
		Workers:        2,
		ReportInterval: 3,
		MaxRetries:     3,
		RetryDelay:     time.Millisecond,
	}
}

func TestReembedder_Run(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	vec := []float32{1, 0}
	for i := 1; i <= 10; i++ {
		if i%2 == 0 {
			seed(t, store, testArticle(i, vec, vec))
		} else {
			seed(t, store, testArticle(i, nil, nil))
		}
	}

	var buf bytes.Buffer
	reembedder, err := NewReembedder(store, mock.NewMockEmbedder(), testConfig(), &buf)
	require.NoError(t, err)

	result, err := reembedder.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, result.Scanned)
	assert.Equal(t, 5, result.Selected)
	assert.Equal(t, 5, result.Updated)
	assert.Zero(t, result.Failed)
	assert.Contains(t, buf.String(), "Re-embedding 5 of 10 articles")
	assert.Contains(t, buf.String(), "5/5")

	err = store.ScanArticles(ctx, func(a *core.StoredArticle) error {
		assert.NotEmpty(t, a.TitleVector, a.Key)
		assert.NotEmpty(t, a.BodyVector, a.Key)
		return nil
	})
	require.NoError(t, err)
}

func TestReembedder_NothingToDo(t *testing.T) {
	store := setupTestStore(t)
	vec := []float32{1, 0}
	seed(t, store, testArticle(1, vec, vec))

	var buf bytes.Buffer
	embedder := mock.NewMockEmbedder()
	reembedder, err := NewReembedder(store, embedder, testConfig(), &buf)
	require.NoError(t, err)

	result, err := reembedder.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Scanned)
	assert.Zero(t, result.Selected)
	assert.Equal(t, 0, embedder.CallCount())
	assert.Contains(t, buf.String(), "No articles need embedding")
}

func TestReembedder_BlankArticlesAreNotReselected(t *testing.T) {
	store := setupTestStore(t)
	blank := testArticle(1, nil, nil)
	blank.Title, blank.Body = "", " "
	seed(t, store, blank, testArticle(2, nil, nil))

	embedder := mock.NewMockEmbedder()
	reembedder, err := NewReembedder(store, embedder, testConfig(), nil)
	require.NoError(t, err)

	first, err := reembedder.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Selected)
	assert.Equal(t, 1, first.Updated)
	assert.Zero(t, first.Skipped)

	second, err := reembedder.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, second.Scanned)
	assert.Zero(t, second.Selected)
	assert.Zero(t, second.Skipped)
}

func TestReembedder_AllSwitchesModel(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	vec := []float32{1, 0}
	for i := 1; i <= 4; i++ {
		seed(t, store, testArticle(i, vec, vec))
	}

	embedder := mock.NewMockEmbedder()
	embedder.Model = "text-embedding-3-large"
	config := testConfig()
	config.All = true
	reembedder, err := NewReembedder(store, embedder, config, nil)
	require.NoError(t, err)

	result, err := reembedder.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Updated)
	assert.Equal(t, 2, embedder.CallCount(), "4 articles in batches of 3")

	err = store.ScanArticles(ctx, func(a *core.StoredArticle) error {
		assert.Equal(t, "text-embedding-3-large", a.VectorModel)
		return nil
	})
	require.NoError(t, err)
}

func TestReembedder_BatchFailuresAreCounted(t *testing.T) {
	store := setupTestStore(t)
	for i := 1; i <= 6; i++ {
		seed(t, store, testArticle(i, nil, nil))
	}

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		for _, text := range texts {
			if strings.HasSuffix(text, " 1") {
				return nil, errors.New("API returned unexpected status code: 400: bad input")
			}
		}
		return mock.NewMockEmbedder().EmbedTexts(ctx, texts)
	}
	reembedder, err := NewReembedder(store, embedder, testConfig(), nil)
	require.NoError(t, err)

	result, err := reembedder.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Updated)
	assert.Equal(t, 3, result.Failed)
	assert.Contains(t, result.Summary(), "updated=3 skipped=0 failed=3")
}

func TestReembedder_Canceled(t *testing.T) {
	store := setupTestStore(t)
	seed(t, store, testArticle(1, nil, nil))

	reembedder, err := NewReembedder(store, mock.NewMockEmbedder(), testConfig(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := reembedder.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)
	assert.Zero(t, result.Updated)
}

func TestNewReembedder_Validation(t *testing.T) {
	_, err := NewReembedder(nil, mock.NewMockEmbedder(), nil, nil)
	assert.ErrorIs(t, err, ErrStoreRequired)

	_, err = NewReembedder(setupTestStore(t), nil, nil, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}
