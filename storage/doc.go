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

// Package storage provides the document store abstraction for newsvec.
//
// Articles live in a single collection addressed by a bucket/scope/collection
// keyspace. Each article is one JSON document keyed by a random key generated
// at write time. The store offers three capabilities:
//
//   - KeyValueStore: get, insert, upsert and remove by key
//   - VectorSearcher: k-nearest-neighbour search over a vector field
//   - HybridSearcher: structured filters + title full-text + kNN in one query
//
// # Backends
//
//   - storage/couchbase: production backend on Couchbase (SQL++ and FTS vector search)
//   - storage/badger: embedded backend for offline runs and tests
//
// Both backends implement the same semantics for HybridQuery: each kNN clause
// selects its top K documents over the whole collection, and a document is a
// hit only when it is in every clause's top K and passes every filter.
//
// # Constructor Return Type Pattern
//
// Public constructors return the storage.DocumentStore interface:
//
//	store, err := couchbase.Open(ctx, cfg)  // returns storage.DocumentStore
//
// # Context Support
//
// All store methods accept context.Context for cancellation and timeouts.
package storage
