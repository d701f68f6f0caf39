package reembed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/newsvec/ai"
	"github.com/poiesic/newsvec/core"
	"github.com/poiesic/newsvec/storage"
)

// BatchOutcome counts what happened to the articles of one batch.
type BatchOutcome struct {
	Updated int
	Skipped int // nothing embeddable
	Failed  int
}

type fieldRef struct {
	article int
	field   string
}

// BatchProcessor embeds the fields a batch of articles needs and writes the
// articles back.
type BatchProcessor struct {
	store          storage.KeyValueStore
	embedder       ai.Embedder
	all            bool
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// all: embed both fields of every article instead of only missing ones
// maxRetries: maximum number of attempts for each embedding request
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(store storage.KeyValueStore, embedder ai.Embedder, all bool, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		store:          store,
		embedder:       embedder,
		all:            all,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process embeds one batch in a single request. An embedding failure fails
// the whole batch; a write failure fails only its article.
func (bp *BatchProcessor) Process(ctx context.Context, articles []*core.StoredArticle) (BatchOutcome, error) {
	var outcome BatchOutcome
	if len(articles) == 0 {
		return outcome, nil
	}

	var texts []string
	var refs []fieldRef
	touched := make([]bool, len(articles))
	for i, a := range articles {
		if (bp.all || len(a.TitleVector) == 0) && strings.TrimSpace(a.Title) != "" {
			texts = append(texts, a.Title)
			refs = append(refs, fieldRef{article: i, field: storage.FieldTitleVector})
			touched[i] = true
		}
		if (bp.all || len(a.BodyVector) == 0) && strings.TrimSpace(a.Body) != "" {
			texts = append(texts, a.Body)
			refs = append(refs, fieldRef{article: i, field: storage.FieldBodyVector})
			touched[i] = true
		}
	}
	if len(texts) == 0 {
		outcome.Skipped = len(articles)
		return outcome, nil
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)
	if err == nil && len(embeddings) != len(texts) {
		err = fmt.Errorf("embedding count mismatch: expected %d, got %d", len(texts), len(embeddings))
	}
	if err != nil {
		outcome.Failed = len(articles)
		return outcome, fmt.Errorf("failed to generate embeddings: %w", err)
	}

	for i, ref := range refs {
		a := articles[ref.article]
		switch ref.field {
		case storage.FieldTitleVector:
			a.TitleVector = embeddings[i]
		case storage.FieldBodyVector:
			a.BodyVector = embeddings[i]
		}
	}

	var errs []error
	model := bp.embedder.ModelName()
	for i, a := range articles {
		if !touched[i] {
			outcome.Skipped++
			continue
		}
		a.VectorModel = model
		if err := bp.store.Upsert(ctx, a); err != nil {
			outcome.Failed++
			errs = append(errs, &core.StoreWriteError{Key: a.Key, Err: err})
			continue
		}
		outcome.Updated++
	}
	return outcome, errors.Join(errs...)
}
