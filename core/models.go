package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// KeyPrefix is prepended to every generated document key.
const KeyPrefix = "article_"

// DefaultIDWidth is the width of Naver article identifiers.
const DefaultIDWidth = 10

// ArticleID formats a numeric article identifier as a fixed-width,
// zero-padded decimal string. Values wider than width are returned unpadded.
func ArticleID(n int64, width int) string {
	return fmt.Sprintf("%0*d", width, n)
}

// NewKey returns a fresh document key. Keys are random and never derived
// from article content, so the same article ingested twice gets two keys.
func NewKey() string {
	return KeyPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ArticleRecord is a news article as returned by an article source.
// It is immutable once fetched.
type ArticleRecord struct {
	Title        string
	PublishedAt  *time.Time // nil when the source does not expose a date
	Author       string     // empty when the byline is unknown
	Body         string
	SourceURL    string
	LikeCount    int
	CommentCount *int // nil when the comment count is unavailable
}

// StoredArticle is the persisted unit in the document store.
// Key is the document id and is not part of the JSON body.
type StoredArticle struct {
	Key          string     `json:"-"`
	Title        string     `json:"title"`
	Body         string     `json:"body"`
	Author       string     `json:"author"`
	PublishedAt  *time.Time `json:"publishedAt"`
	SourceURL    string     `json:"sourceUrl"`
	LikeCount    int        `json:"likeCount"`
	CommentCount *int       `json:"commentCount"`
	TitleVector  []float32  `json:"titleVector"`
	BodyVector   []float32  `json:"bodyVector"`
	VectorModel  string     `json:"vectorModel"`
}

// NewStoredArticle builds the persisted form of a fetched record.
// Either vector may be nil; a missing embedding never blocks the write.
func NewStoredArticle(key string, record *ArticleRecord, titleVector, bodyVector []float32, vectorModel string) *StoredArticle {
	return &StoredArticle{
		Key:          key,
		Title:        record.Title,
		Body:         record.Body,
		Author:       record.Author,
		PublishedAt:  record.PublishedAt,
		SourceURL:    record.SourceURL,
		LikeCount:    record.LikeCount,
		CommentCount: record.CommentCount,
		TitleVector:  titleVector,
		BodyVector:   bodyVector,
		VectorModel:  vectorModel,
	}
}

// Row projects the display fields of a stored article into a result row.
func (a *StoredArticle) Row(score float64) SearchResultRow {
	return SearchResultRow{
		Key:            a.Key,
		Title:          a.Title,
		PublishedAt:    a.PublishedAt,
		Author:         a.Author,
		SourceURL:      a.SourceURL,
		LikeCount:      a.LikeCount,
		RelevanceScore: score,
	}
}

// SimilarityMatch is a (document id, score) pair from a vector search.
type SimilarityMatch struct {
	Key   string
	Score float64
}

// SearchResultRow is a single ranked search hit.
type SearchResultRow struct {
	Key            string     `json:"key"`
	Title          string     `json:"title"`
	PublishedAt    *time.Time `json:"publishedAt"`
	Author         string     `json:"author"`
	SourceURL      string     `json:"sourceUrl"`
	LikeCount      int        `json:"likeCount"`
	RelevanceScore float64    `json:"score"`
}
