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

package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/newsvec/core"
	"github.com/poiesic/newsvec/storage"
)

// ArticleStore implements storage.DocumentStore on BadgerDB.
// Vector and hybrid queries scan the whole collection; the index name of a
// query is accepted and ignored.
type ArticleStore struct {
	backend     *Backend
	keyspace    storage.Keyspace
	ownsBackend bool
}

var _ storage.DocumentStore = (*ArticleStore)(nil)

// NewArticleStore creates a store for one keyspace on an open backend.
// The caller keeps ownership of the backend.
func NewArticleStore(backend *Backend, ks storage.Keyspace) (*ArticleStore, error) {
	if err := ks.Validate(); err != nil {
		return nil, err
	}
	return &ArticleStore{backend: backend, keyspace: ks}, nil
}

// Open opens a database at path and returns a store that closes it on Close.
func Open(path string, ks storage.Keyspace) (storage.DocumentStore, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open article database: %w", err)
	}
	store, err := NewArticleStore(backend, ks)
	if err != nil {
		backend.Close()
		return nil, err
	}
	store.ownsBackend = true
	return store, nil
}

// Close closes the backend when the store opened it.
func (s *ArticleStore) Close() error {
	if s.ownsBackend && !s.backend.IsClosed() {
		return s.backend.Close()
	}
	return nil
}

func (s *ArticleStore) checkOpen(ctx context.Context) error {
	if s.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return ctx.Err()
}

// Get retrieves an article by key.
func (s *ArticleStore) Get(ctx context.Context, key string) (*core.StoredArticle, error) {
	if err := s.checkOpen(ctx); err != nil {
		return nil, err
	}
	if key == "" {
		return nil, core.ErrEmptyKey
	}

	var article *core.StoredArticle
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		article, err = s.readArticle(tx, key)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return article, nil
}

// Insert writes a new article and fails with storage.ErrDuplicateKey when
// the key is taken.
func (s *ArticleStore) Insert(ctx context.Context, article *core.StoredArticle) error {
	return s.write(ctx, article, false)
}

// Upsert writes an article, replacing any document with the same key.
func (s *ArticleStore) Upsert(ctx context.Context, article *core.StoredArticle) error {
	return s.write(ctx, article, true)
}

func (s *ArticleStore) write(ctx context.Context, article *core.StoredArticle, replace bool) error {
	if err := s.checkOpen(ctx); err != nil {
		return err
	}
	if article == nil || article.Key == "" {
		return core.ErrEmptyKey
	}
	value, err := storage.MarshalArticle(article)
	if err != nil {
		return err
	}

	dbKey := makeDocumentKey(s.keyspace, article.Key)
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if !replace {
			_, err := tx.Get(dbKey)
			if err == nil {
				return fmt.Errorf("%w: %s", storage.ErrDuplicateKey, article.Key)
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}
		if err := tx.Set(dbKey, value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Remove deletes the article with the given key.
func (s *ArticleStore) Remove(ctx context.Context, key string) error {
	if err := s.checkOpen(ctx); err != nil {
		return err
	}
	dbKey := makeDocumentKey(s.keyspace, key)
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if _, err := tx.Get(dbKey); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		if err := tx.Delete(dbKey); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

func (s *ArticleStore) readArticle(tx *badger.Txn, key string) (*core.StoredArticle, error) {
	item, err := tx.Get(makeDocumentKey(s.keyspace, key))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	var article *core.StoredArticle
	err = item.Value(func(val []byte) error {
		article, err = storage.UnmarshalArticle(key, val)
		return err
	})
	return article, err
}

// ScanArticles calls fn for every article in the collection, in key order.
// Iteration stops at the first error returned by fn.
func (s *ArticleStore) ScanArticles(ctx context.Context, fn func(*core.StoredArticle) error) error {
	if err := s.checkOpen(ctx); err != nil {
		return err
	}
	return s.scan(ctx, fn)
}

// scan calls fn for every article in the collection.
func (s *ArticleStore) scan(ctx context.Context, fn func(*core.StoredArticle) error) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeCollectionPrefix(s.keyspace)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := iter.Item()
			key := documentKeyFrom(s.keyspace, item.Key())
			var article *core.StoredArticle
			err := item.Value(func(val []byte) error {
				var err error
				article, err = storage.UnmarshalArticle(key, val)
				return err
			})
			if err != nil {
				return err
			}
			if err := fn(article); err != nil {
				return err
			}
		}
		return nil
	}, false)
}
