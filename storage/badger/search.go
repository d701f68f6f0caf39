package badger

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/poiesic/newsvec/core"
	"github.com/poiesic/newsvec/storage"
)

// VectorSearch returns the q.K articles whose q.Field vector is most
// similar to q.Vector by cosine similarity. Articles without the field are skipped.
func (s *ArticleStore) VectorSearch(ctx context.Context, q storage.VectorQuery) ([]core.SimilarityMatch, error) {
	if err := s.checkOpen(ctx); err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	vectorOf, err := fieldAccessor(q.Field)
	if err != nil {
		return nil, err
	}

	var articles []*core.StoredArticle
	if err := s.scan(ctx, func(a *core.StoredArticle) error {
		articles = append(articles, a)
		return nil
	}); err != nil {
		return nil, err
	}
	return nearest(articles, vectorOf, q.Vector, q.K), nil
}

// HybridSearch evaluates every kNN clause over the whole collection, then
// keeps the articles that are in each clause's top K and pass the author,
// like-count and title filters. The relevance score is the sum of the
// clause similarities.
func (s *ArticleStore) HybridSearch(ctx context.Context, q storage.HybridQuery) ([]core.SearchResultRow, error) {
	if err := s.checkOpen(ctx); err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	clauses := q.Clauses()
	accessors := make([]func(*core.StoredArticle) []float32, len(clauses))
	for i, c := range clauses {
		vectorOf, err := fieldAccessor(c.Field)
		if err != nil {
			return nil, err
		}
		accessors[i] = vectorOf
	}
	authorMatches, err := compileLike(q.AuthorPattern)
	if err != nil {
		return nil, err
	}
	phrase := tokenize(q.TitlePhrase)

	var articles []*core.StoredArticle
	if err := s.scan(ctx, func(a *core.StoredArticle) error {
		articles = append(articles, a)
		return nil
	}); err != nil {
		return nil, err
	}

	scores := make(map[string]float64)
	for i, c := range clauses {
		hits := nearest(articles, accessors[i], c.Vector, c.K)
		inClause := make(map[string]bool, len(hits))
		for _, h := range hits {
			inClause[h.Key] = true
			if i == 0 {
				scores[h.Key] = h.Score
			} else if _, ok := scores[h.Key]; ok {
				scores[h.Key] += h.Score
			}
		}
		for key := range scores {
			if !inClause[key] {
				delete(scores, key)
			}
		}
	}

	var rows []core.SearchResultRow
	for _, a := range articles {
		score, ok := scores[a.Key]
		if !ok {
			continue
		}
		if a.LikeCount < q.MinLikes || !authorMatches(a.Author) || !titleMatches(a.Title, phrase) {
			continue
		}
		rows = append(rows, a.Row(score))
	}
	core.SortRows(rows)
	return rows, nil
}

func fieldAccessor(field string) (func(*core.StoredArticle) []float32, error) {
	switch field {
	case storage.FieldTitleVector:
		return func(a *core.StoredArticle) []float32 { return a.TitleVector }, nil
	case storage.FieldBodyVector:
		return func(a *core.StoredArticle) []float32 { return a.BodyVector }, nil
	}
	return nil, fmt.Errorf("%w: unknown vector field %q", storage.ErrInvalidQuery, field)
}

// nearest ranks articles by similarity to query and returns the top k.
// Ties are broken by key so repeated calls agree.
func nearest(articles []*core.StoredArticle, vectorOf func(*core.StoredArticle) []float32, query []float32, k int) []core.SimilarityMatch {
	matches := make([]core.SimilarityMatch, 0, len(articles))
	for _, a := range articles {
		v := vectorOf(a)
		if len(v) == 0 || len(v) != len(query) {
			continue
		}
		matches = append(matches, core.SimilarityMatch{Key: a.Key, Score: cosineSimilarity(query, v)})
	}

	slices.SortFunc(matches, func(a, b core.SimilarityMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		if a.Key < b.Key {
			return -1
		}
		if a.Key > b.Key {
			return 1
		}
		return 0
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches
}

// cosineSimilarity returns 0 when either vector has zero magnitude.
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
