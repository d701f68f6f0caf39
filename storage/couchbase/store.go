package couchbase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/couchbase/gocb/v2"
	"github.com/couchbase/gocb/v2/vector"
	"github.com/poiesic/newsvec/core"
	"github.com/poiesic/newsvec/storage"
)

// Store implements storage.DocumentStore on a Couchbase cluster.
type Store struct {
	cluster    *gocb.Cluster
	scope      *gocb.Scope
	collection *gocb.Collection
	config     *Config
	logger     *slog.Logger
	closed     atomic.Bool
}

var _ storage.DocumentStore = (*Store)(nil)

// Open connects to the cluster described by cfg and waits until it is
// ready. The returned store must be closed by the caller.
func Open(cfg *Config) (storage.DocumentStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := slog.Default().With("component", "couchbase-store")

	cluster, err := gocb.Connect(cfg.ConnectionString, gocb.ClusterOptions{
		Authenticator: gocb.PasswordAuthenticator{
			Username: cfg.Username,
			Password: cfg.Password,
		},
		TimeoutsConfig: gocb.TimeoutsConfig{
			KVTimeout:     cfg.KVTimeout,
			QueryTimeout:  cfg.QueryTimeout,
			SearchTimeout: cfg.SearchTimeout,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to couchbase: %w", err)
	}
	if err := cluster.WaitUntilReady(cfg.ReadyTimeout, nil); err != nil {
		cluster.Close(nil)
		return nil, fmt.Errorf("couchbase cluster not ready: %w", err)
	}

	scope := cluster.Bucket(cfg.Keyspace.Bucket).Scope(cfg.Keyspace.Scope)
	logger.Info("connected to couchbase", "keyspace", cfg.Keyspace.String())

	return &Store{
		cluster:    cluster,
		scope:      scope,
		collection: scope.Collection(cfg.Keyspace.Collection),
		config:     cfg,
		logger:     logger,
	}, nil
}

// Close disconnects from the cluster.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.cluster.Close(nil)
}

func (s *Store) checkOpen(ctx context.Context) error {
	if s.closed.Load() {
		return storage.ErrStorageClosed
	}
	return ctx.Err()
}

// Get retrieves an article by key.
func (s *Store) Get(ctx context.Context, key string) (*core.StoredArticle, error) {
	if err := s.checkOpen(ctx); err != nil {
		return nil, err
	}
	if key == "" {
		return nil, core.ErrEmptyKey
	}
	res, err := s.collection.Get(key, &gocb.GetOptions{Context: ctx})
	if err != nil {
		return nil, mapError(key, err)
	}
	var article core.StoredArticle
	if err := res.Content(&article); err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
	}
	article.Key = key
	return &article, nil
}

// Insert writes a new article and fails with storage.ErrDuplicateKey when
// the key is taken.
func (s *Store) Insert(ctx context.Context, article *core.StoredArticle) error {
	if err := s.checkWrite(ctx, article); err != nil {
		return err
	}
	_, err := s.collection.Insert(article.Key, article, &gocb.InsertOptions{Context: ctx})
	return mapError(article.Key, err)
}

// Upsert writes an article, replacing any document with the same key.
func (s *Store) Upsert(ctx context.Context, article *core.StoredArticle) error {
	if err := s.checkWrite(ctx, article); err != nil {
		return err
	}
	_, err := s.collection.Upsert(article.Key, article, &gocb.UpsertOptions{Context: ctx})
	return mapError(article.Key, err)
}

// Remove deletes the article with the given key.
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.checkOpen(ctx); err != nil {
		return err
	}
	_, err := s.collection.Remove(key, &gocb.RemoveOptions{Context: ctx})
	return mapError(key, err)
}

func (s *Store) checkWrite(ctx context.Context, article *core.StoredArticle) error {
	if err := s.checkOpen(ctx); err != nil {
		return err
	}
	if article == nil || article.Key == "" {
		return core.ErrEmptyKey
	}
	return nil
}

// Query runs a SQL++ statement in the store's scope and decodes every row
// with decode. Parameters are bound by name.
func (s *Store) Query(ctx context.Context, statement string, params map[string]any, decode func(row func(any) error) error) error {
	if err := s.checkOpen(ctx); err != nil {
		return err
	}
	s.logger.Debug("running query", "statement", statement)

	result, err := s.scope.Query(statement, &gocb.QueryOptions{
		NamedParameters: params,
		Context:         ctx,
	})
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	defer result.Close()

	for result.Next() {
		if err := decode(result.Row); err != nil {
			return err
		}
	}
	return result.Err()
}

// VectorSearch runs a kNN query against the search index.
func (s *Store) VectorSearch(ctx context.Context, q storage.VectorQuery) ([]core.SimilarityMatch, error) {
	if err := s.checkOpen(ctx); err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	request := gocb.SearchRequest{
		VectorSearch: vector.NewSearch([]*vector.Query{
			vector.NewQuery(q.Field, q.Vector).NumCandidates(uint32(q.K)),
		}, nil),
	}
	result, err := s.scope.Search(s.index(q.Index), request, &gocb.SearchOptions{
		Limit:   uint32(q.K),
		Context: ctx,
	})
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	defer result.Close()

	var matches []core.SimilarityMatch
	for result.Next() {
		row := result.Row()
		matches = append(matches, core.SimilarityMatch{Key: row.ID, Score: row.Score})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	return matches, nil
}

// HybridSearch runs the combined filter, title and kNN statement.
func (s *Store) HybridSearch(ctx context.Context, q storage.HybridQuery) ([]core.SearchResultRow, error) {
	q.Index = s.index(q.Index)
	stmt, err := hybridStatement(s.config.Keyspace.Collection, q)
	if err != nil {
		return nil, err
	}

	var rows []core.SearchResultRow
	err = s.Query(ctx, stmt.Text, stmt.Params, func(row func(any) error) error {
		var r core.SearchResultRow
		if err := row(&r); err != nil {
			return fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
		}
		rows = append(rows, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	// The server orders by score and date; re-sorting only settles key ties.
	core.SortRows(rows)
	return rows, nil
}

type scannedArticle struct {
	DocKey string `json:"docKey"`
	core.StoredArticle
}

// ScanArticles streams every article of the collection through fn.
func (s *Store) ScanArticles(ctx context.Context, fn func(*core.StoredArticle) error) error {
	stmt, err := scanStatement(s.config.Keyspace.Collection)
	if err != nil {
		return err
	}
	return s.Query(ctx, stmt.Text, stmt.Params, func(row func(any) error) error {
		var scanned scannedArticle
		if err := row(&scanned); err != nil {
			return fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
		}
		article := scanned.StoredArticle
		article.Key = scanned.DocKey
		return fn(&article)
	})
}

func (s *Store) index(name string) string {
	if name == "" {
		return s.config.IndexName
	}
	return name
}

// mapError translates SDK errors onto storage sentinels.
func mapError(key string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gocb.ErrDocumentNotFound):
		return fmt.Errorf("%w: %s", storage.ErrNotFound, key)
	case errors.Is(err, gocb.ErrDocumentExists):
		return fmt.Errorf("%w: %s", storage.ErrDuplicateKey, key)
	}
	return err
}
