// Package reembed fills in vectors for stored articles.
//
// Ingestion never blocks a write on the embedding service, so an article
// can be stored with a missing title or body vector. A Reembedder scans the
// collection, embeds the missing fields in batches on a bounded worker pool
// and writes the articles back. With Config.All set it re-embeds every
// article, which is how a collection is moved to a new embedding model.
//
// Rewriting stored articles is an administrative task. Neither ingestion
// nor search calls into this package.
package reembed
