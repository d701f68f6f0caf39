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

package newsvec

import (
	"errors"
	"io"
	"log/slog"

	"github.com/poiesic/newsvec/ai"
	"github.com/poiesic/newsvec/ai/openai"
	"github.com/poiesic/newsvec/ingestion"
	"github.com/poiesic/newsvec/reembed"
	"github.com/poiesic/newsvec/search"
	"github.com/poiesic/newsvec/source"
	"github.com/poiesic/newsvec/source/naver"
	"github.com/poiesic/newsvec/storage"
	"github.com/poiesic/newsvec/storage/badger"
	"github.com/poiesic/newsvec/storage/couchbase"
)

// Archive bundles the document store, the embedding provider and the
// article source used by one run. The store is opened once and shared by
// every pipeline and retriever created from the archive.
type Archive struct {
	store    storage.DocumentStore
	provider ai.AIProvider
	source   source.ArticleSource
	logger   *slog.Logger
}

// ArchiveOption configures an Archive.
type ArchiveOption func(*archiveOptions)

type archiveOptions struct {
	aiConfig    *ai.Config
	provider    ai.AIProvider
	naverConfig *naver.Config
	source      source.ArticleSource
	keyspace    storage.Keyspace
}

// WithAIConfig sets the embedding service configuration.
func WithAIConfig(cfg *ai.Config) ArchiveOption {
	return func(o *archiveOptions) {
		o.aiConfig = cfg
	}
}

// WithAIProvider uses provider instead of building one from the AI config.
func WithAIProvider(provider ai.AIProvider) ArchiveOption {
	return func(o *archiveOptions) {
		o.provider = provider
	}
}

// WithNaverConfig sets the article source configuration.
func WithNaverConfig(cfg *naver.Config) ArchiveOption {
	return func(o *archiveOptions) {
		o.naverConfig = cfg
	}
}

// WithSource uses src instead of the Naver client.
func WithSource(src source.ArticleSource) ArchiveOption {
	return func(o *archiveOptions) {
		o.source = src
	}
}

// WithKeyspace sets the keyspace of a local archive.
func WithKeyspace(ks storage.Keyspace) ArchiveOption {
	return func(o *archiveOptions) {
		o.keyspace = ks
	}
}

func applyOptions(opts []ArchiveOption) *archiveOptions {
	options := &archiveOptions{
		aiConfig:    ai.DefaultConfig(),
		naverConfig: naver.DefaultConfig(),
		keyspace:    storage.DefaultKeyspace(),
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// OpenLocal opens an archive on an embedded database directory.
func OpenLocal(path string, opts ...ArchiveOption) (*Archive, error) {
	options := applyOptions(opts)
	store, err := badger.Open(path, options.keyspace)
	if err != nil {
		return nil, err
	}
	return newArchive(store, options)
}

// OpenCouchbase opens an archive on a Couchbase cluster.
func OpenCouchbase(cfg *couchbase.Config, opts ...ArchiveOption) (*Archive, error) {
	options := applyOptions(opts)
	store, err := couchbase.Open(cfg)
	if err != nil {
		return nil, err
	}
	return newArchive(store, options)
}

// NewArchive wraps an already open store. The archive takes ownership and
// closes the store on Close.
func NewArchive(store storage.DocumentStore, opts ...ArchiveOption) (*Archive, error) {
	if store == nil {
		return nil, errors.New("document store required")
	}
	return newArchive(store, applyOptions(opts))
}

func newArchive(store storage.DocumentStore, options *archiveOptions) (*Archive, error) {
	provider := options.provider
	if provider == nil {
		var err error
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			store.Close()
			return nil, err
		}
	}

	src := options.source
	if src == nil {
		client, err := naver.NewClient(options.naverConfig)
		if err != nil {
			provider.Close()
			store.Close()
			return nil, err
		}
		src = client
	}

	return &Archive{
		store:    store,
		provider: provider,
		source:   src,
		logger:   slog.Default(),
	}, nil
}

// Close releases the provider and the store.
func (a *Archive) Close() error {
	if err := a.provider.Close(); err != nil {
		a.logger.Error("error closing AI provider", "err", err)
	}
	if err := a.store.Close(); err != nil {
		a.logger.Error("error closing document store", "err", err)
		return err
	}
	return nil
}

// Store returns the document store.
func (a *Archive) Store() storage.DocumentStore {
	return a.store
}

// NewIngestionPipeline creates a pipeline writing to the archive's store.
func (a *Archive) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(a.store, a.source, a.provider, opts...)
}

// NewRetriever creates a retriever reading from the archive's store.
func (a *Archive) NewRetriever(opts ...search.Option) (*search.Retriever, error) {
	return search.NewRetriever(a.store, a.provider, opts...)
}

// NewReembedder creates a re-embedder that fills in vectors for the
// archive's stored articles.
func (a *Archive) NewReembedder(config *reembed.Config, progress io.Writer) (*reembed.Reembedder, error) {
	return reembed.NewReembedder(a.store, a.provider.Embedder(), config, progress)
}
