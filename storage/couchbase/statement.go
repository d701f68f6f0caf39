package couchbase

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/poiesic/newsvec/storage"
)

// Named parameters of the hybrid statement.
const (
	paramAuthorPattern = "authorPattern"
	paramMinLikes      = "minLikes"
	paramTitleSearch   = "titleSearch"
	paramKNNSearch     = "knnSearch"
)

// Statement is a SQL++ statement with its named parameters.
// Every user-supplied value travels as a parameter, never as statement text.
type Statement struct {
	Text   string
	Params map[string]any
}

type searchOptions struct {
	Index string `json:"index"`
	Out   string `json:"out,omitempty"`
}

type knnEntry struct {
	Field  string    `json:"field"`
	Vector []float32 `json:"vector"`
	K      int       `json:"k"`
}

// scanStatement selects every document of collection together with its key.
func scanStatement(collection string) (Statement, error) {
	if err := checkCollection(collection); err != nil {
		return Statement{}, err
	}
	return Statement{
		Text: fmt.Sprintf("SELECT META(t).id AS `docKey`, t.* FROM `%s` AS t ORDER BY META(t).id", collection),
	}, nil
}

func checkCollection(collection string) error {
	if collection == "" || strings.Contains(collection, "`") {
		return fmt.Errorf("%w: invalid collection name %q", storage.ErrInvalidQuery, collection)
	}
	return nil
}

// hybridStatement renders q against collection. The collection name is
// resolved relative to the scope the statement runs in.
func hybridStatement(collection string, q storage.HybridQuery) (Statement, error) {
	if err := q.Validate(); err != nil {
		return Statement{}, err
	}
	if err := checkCollection(collection); err != nil {
		return Statement{}, err
	}

	titleOpts, err := json.Marshal(searchOptions{Index: q.Index})
	if err != nil {
		return Statement{}, err
	}
	knnOpts, err := json.Marshal(searchOptions{Index: q.Index, Out: "knn"})
	if err != nil {
		return Statement{}, err
	}

	clauses := q.Clauses()
	knn := make([]knnEntry, len(clauses))
	for i, c := range clauses {
		knn[i] = knnEntry{Field: c.Field, Vector: c.Vector, K: c.K}
	}

	text := fmt.Sprintf("SELECT META(t).id AS `key`, t.title, t.publishedAt, t.author, t.sourceUrl, t.likeCount, "+
		"SEARCH_SCORE(knn) AS score "+
		"FROM `%s` AS t "+
		"WHERE t.author LIKE $%s "+
		"AND t.likeCount >= $%s "+
		"AND SEARCH(t, $%s, %s) "+
		"AND SEARCH(t, $%s, %s) "+
		"ORDER BY score DESC, t.publishedAt DESC",
		collection,
		paramAuthorPattern,
		paramMinLikes,
		paramTitleSearch, titleOpts,
		paramKNNSearch, knnOpts,
	)

	return Statement{
		Text: text,
		Params: map[string]any{
			paramAuthorPattern: q.AuthorPattern,
			paramMinLikes:      q.MinLikes,
			paramTitleSearch: map[string]any{
				"query": map[string]any{"match": q.TitlePhrase, "field": "title"},
			},
			paramKNNSearch: map[string]any{
				"query":        map[string]any{"match_none": map[string]any{}},
				"knn":          knn,
				"knn_operator": "and",
			},
		},
	}, nil
}
