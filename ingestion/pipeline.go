package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/newsvec/ai"
	"github.com/poiesic/newsvec/core"
	"github.com/poiesic/newsvec/source"
	"github.com/poiesic/newsvec/storage"
)

// Pipeline fetches a range of articles, embeds them and writes them to the
// document store, one id at a time.
type Pipeline struct {
	store    storage.KeyValueStore
	source   source.ArticleSource
	embedder ai.Embedder
	pacer    Pacer
	idWidth  int
	upsert   bool
	newKey   func() string
	progress Progress
	logger   *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithPacer replaces the pacer used between fetches.
func WithPacer(pacer Pacer) Option {
	return func(p *Pipeline) error {
		if pacer == nil {
			return errors.New("pacer cannot be nil")
		}
		p.pacer = pacer
		return nil
	}
}

// WithPoliteDelay sets a fixed delay between fetches.
// Default is DefaultPoliteDelay.
func WithPoliteDelay(d time.Duration) Option {
	return func(p *Pipeline) error {
		if d < 0 {
			return fmt.Errorf("polite delay cannot be negative: %s", d)
		}
		p.pacer = NewFixedPacer(d)
		return nil
	}
}

// WithIDWidth sets the zero-padded width of article ids.
// Default is core.DefaultIDWidth.
func WithIDWidth(width int) Option {
	return func(p *Pipeline) error {
		if width < 1 {
			return fmt.Errorf("id width must be positive: %d", width)
		}
		p.idWidth = width
		return nil
	}
}

// WithUpsert makes the pipeline overwrite on key collision instead of
// failing the item.
func WithUpsert(upsert bool) Option {
	return func(p *Pipeline) error {
		p.upsert = upsert
		return nil
	}
}

// WithKeyGenerator replaces core.NewKey as the source of document keys.
func WithKeyGenerator(fn func() string) Option {
	return func(p *Pipeline) error {
		if fn == nil {
			return errors.New("key generator cannot be nil")
		}
		p.newKey = fn
		return nil
	}
}

// WithProgress sets the receiver of per-item updates.
func WithProgress(progress Progress) Option {
	return func(p *Pipeline) error {
		if progress == nil {
			progress = noProgress{}
		}
		p.progress = progress
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	store storage.KeyValueStore,
	src source.ArticleSource,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if src == nil {
		return nil, ErrSourceRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	p := &Pipeline{
		store:    store,
		source:   src,
		embedder: provider.Embedder(),
		pacer:    NewFixedPacer(DefaultPoliteDelay),
		idWidth:  core.DefaultIDWidth,
		newKey:   core.NewKey,
		progress: noProgress{},
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// IngestRange ingests count sequential ids beginning at start.
//
// Missing articles are skipped and failed items are recorded; neither stops
// the run. The pacer waits before every fetch except the first. The only
// errors returned are an invalid range and ctx cancellation, which stops
// the run before the next id; the partial report is returned with it and
// everything already written stays written.
func (p *Pipeline) IngestRange(ctx context.Context, start int64, count int) (*Report, error) {
	if start < 0 || count < 0 {
		return nil, fmt.Errorf("%w: start=%d count=%d", ErrInvalidRange, start, count)
	}

	began := time.Now()
	report := newReport(start, count)
	p.progress.Start(count)
	p.logger.Info("starting ingestion", "start", start, "count", count)

	for i := 0; i < count; i++ {
		if i > 0 {
			if err := p.pacer.Wait(ctx); err != nil {
				report.Elapsed = time.Since(began)
				return report, err
			}
		}
		if err := ctx.Err(); err != nil {
			report.Elapsed = time.Since(began)
			return report, err
		}

		id := core.ArticleID(start+int64(i), p.idWidth)
		report.Attempted++
		p.ingestOne(ctx, id, report)
	}

	report.Elapsed = time.Since(began)
	p.logger.Info("ingestion finished",
		"attempted", report.Attempted,
		"stored", report.Stored,
		"skipped", report.SkippedNotFound,
		"failed", len(report.Failed),
		"elapsed", report.Elapsed)
	return report, nil
}

func (p *Pipeline) ingestOne(ctx context.Context, id string, report *Report) {
	logger := p.logger.With("id", id)

	record, err := p.source.Fetch(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			logger.Info("article not found, skipping")
			report.skipped()
			p.progress.Item(id, StatusSkipped, "not found")
			return
		}
		p.fail(logger, report, id, err)
		return
	}
	if err := core.ValidateArticleRecord(record); err != nil {
		p.fail(logger, report, id, err)
		return
	}

	title := ai.Embed(ctx, p.embedder, record.Title, logger)
	body := ai.Embed(ctx, p.embedder, record.Body, logger)
	if !title.Available() {
		report.MissingTitleVectors++
	}
	if !body.Available() {
		report.MissingBodyVectors++
	}

	article := core.NewStoredArticle(p.newKey(), record, title.Vector, body.Vector, p.embedder.ModelName())
	if err := p.write(ctx, article); err != nil {
		p.fail(logger, report, id, &core.StoreWriteError{Key: article.Key, Err: err})
		return
	}

	logger.Info("article stored", "key", article.Key, "title", record.Title)
	report.stored(id, article.Key)
	p.progress.Item(id, StatusStored, article.Key)
}

func (p *Pipeline) write(ctx context.Context, article *core.StoredArticle) error {
	if err := core.ValidateStoredArticle(article); err != nil {
		return err
	}
	if p.upsert {
		return p.store.Upsert(ctx, article)
	}
	return p.store.Insert(ctx, article)
}

func (p *Pipeline) fail(logger *slog.Logger, report *Report, id string, err error) {
	f := report.failed(id, err)
	logger.Warn("article failed", "class", f.Class, "err", err)
	p.progress.Item(id, StatusFailed, f.Class)
}
