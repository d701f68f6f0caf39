// Package couchbase implements storage.DocumentStore on Couchbase Server.
//
// Articles are JSON documents in one collection. Key-value operations go
// through the collection, the hybrid search is a SQL++ statement run in the
// scope with named parameters, and vector search uses the scope's search
// index with a vector query.
package couchbase
