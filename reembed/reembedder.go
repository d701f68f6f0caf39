// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package reembed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/newsvec/ai"
	"github.com/poiesic/newsvec/storage"
)

// Config holds configuration for a re-embedding run.
type Config struct {
	// BatchSize is the number of articles embedded per request
	BatchSize int

	// Workers is the number of batches embedded concurrently
	Workers int

	// ReportInterval is how often to report progress (number of articles)
	ReportInterval int

	// MaxRetries is the maximum number of attempts per embedding request
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// All re-embeds every article instead of only those missing a vector
	All bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		Workers:        4,
		ReportInterval: DefaultBatchSize,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Result summarizes a re-embedding run.
type Result struct {
	Scanned  int
	Selected int
	Updated  int
	Skipped  int
	Failed   int
	Elapsed  time.Duration
}

// Summary renders the result on one line.
func (r *Result) Summary() string {
	return fmt.Sprintf("scanned=%d selected=%d updated=%d skipped=%d failed=%d elapsed=%s",
		r.Scanned, r.Selected, r.Updated, r.Skipped, r.Failed, r.Elapsed.Round(time.Millisecond))
}

// Reembedder orchestrates re-embedding of the articles in a collection.
type Reembedder struct {
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *ArticleIterator
	logger    *slog.Logger
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(store storage.DocumentStore, embedder ai.Embedder, config *Config, progress io.Writer) (*Reembedder, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	selector := MissingVectors
	if config.All {
		selector = EveryArticle
	}

	return &Reembedder{
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(store, embedder, config.All, config.MaxRetries, config.RetryDelay),
		iterator:  NewArticleIterator(store, config.BatchSize, selector),
		logger:    slog.Default().With("component", "reembedder"),
	}, nil
}

// Run embeds the selected articles and writes them back. Batch failures are
// logged and counted; only a failed scan or cancellation ends the run with
// an error. The result is returned in both cases.
func (r *Reembedder) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{}

	articles, scanned, err := r.iterator.Collect(ctx)
	result.Scanned = scanned
	if err != nil {
		return result, fmt.Errorf("failed to scan articles: %w", err)
	}
	result.Selected = len(articles)
	if len(articles) == 0 {
		fmt.Fprintf(r.progress, "No articles need embedding (%d scanned)\n", scanned)
		result.Elapsed = time.Since(start)
		return result, nil
	}

	fmt.Fprintf(r.progress, "Re-embedding %d of %d articles (batch size: %d)\n",
		len(articles), scanned, r.iterator.batchSize)

	workers := r.config.Workers
	if workers <= 0 {
		workers = 1
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return result, fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	tracker := NewProgressTracker(r.progress, len(articles), r.config.ReportInterval)
	tracker.Start()

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	record := func(outcome BatchOutcome) {
		mu.Lock()
		defer mu.Unlock()
		result.Updated += outcome.Updated
		result.Skipped += outcome.Skipped
		result.Failed += outcome.Failed
	}

	for _, batch := range r.iterator.Batches(articles) {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			outcome, err := r.processor.Process(ctx, batch)
			if err != nil {
				r.logger.Warn("batch failed", "articles", len(batch), "err", err)
			}
			record(outcome)
			tracker.Add(len(batch))
		})
		if err != nil {
			wg.Done()
			r.logger.Error("failed to submit batch", "err", err)
			record(BatchOutcome{Failed: len(batch)})
		}
	}
	wg.Wait()
	tracker.Finish()

	result.Elapsed = time.Since(start)
	r.logger.Info("re-embedding finished", "updated", result.Updated, "failed", result.Failed, "elapsed", result.Elapsed)
	return result, ctx.Err()
}
