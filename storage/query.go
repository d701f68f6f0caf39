package storage

import (
	"fmt"
	"strings"
)

// DefaultK is the neighbour count used when a query leaves K unset.
const DefaultK = 5

// VectorQuery asks for the K nearest neighbours of Vector in Field.
type VectorQuery struct {
	Index  string
	Field  string
	Vector []float32
	K      int
}

// Validate checks that the query can be sent to a store.
func (q VectorQuery) Validate() error {
	if q.Field == "" {
		return fmt.Errorf("%w: vector field is required", ErrInvalidQuery)
	}
	if len(q.Vector) == 0 {
		return fmt.Errorf("%w: query vector is empty", ErrInvalidQuery)
	}
	if q.K <= 0 {
		return fmt.Errorf("%w: k must be positive, got %d", ErrInvalidQuery, q.K)
	}
	return nil
}

// KNNClause is one k-nearest-neighbour predicate of a hybrid query.
type KNNClause struct {
	Field  string
	Vector []float32
	K      int
}

// HybridQuery combines structured filters, a title full-text match and one
// or more kNN clauses. All predicates are ANDed.
type HybridQuery struct {
	Index string

	// AuthorPattern is a LIKE pattern: % matches any run, _ one character.
	AuthorPattern string
	MinLikes      int

	// TitlePhrase is matched against the title field. An empty phrase
	// matches nothing.
	TitlePhrase string

	KNN []KNNClause
}

// AuthorSuffixPattern returns the LIKE pattern matching authors that end in suffix.
func AuthorSuffixPattern(suffix string) string {
	return "%" + suffix
}

// Clauses returns the kNN clauses that carry a vector. Clauses whose
// vector is missing are dropped rather than sent empty.
func (q HybridQuery) Clauses() []KNNClause {
	clauses := make([]KNNClause, 0, len(q.KNN))
	for _, c := range q.KNN {
		if len(c.Vector) > 0 {
			clauses = append(clauses, c)
		}
	}
	return clauses
}

// Validate checks that the query has at least one usable kNN clause and
// that every clause is well formed.
func (q HybridQuery) Validate() error {
	clauses := q.Clauses()
	if len(clauses) == 0 {
		return fmt.Errorf("%w: hybrid query needs at least one kNN clause with a vector", ErrInvalidQuery)
	}
	for _, c := range clauses {
		if c.Field == "" {
			return fmt.Errorf("%w: kNN clause field is required", ErrInvalidQuery)
		}
		if c.K <= 0 {
			return fmt.Errorf("%w: kNN clause k must be positive, got %d", ErrInvalidQuery, c.K)
		}
	}
	if q.MinLikes < 0 {
		return fmt.Errorf("%w: min likes must not be negative", ErrInvalidQuery)
	}
	if strings.TrimSpace(q.AuthorPattern) == "" {
		return fmt.Errorf("%w: author pattern is required", ErrInvalidQuery)
	}
	return nil
}
