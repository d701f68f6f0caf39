package core

import (
	"errors"
	"testing"
)

func TestValidateArticleRecord(t *testing.T) {
	negative := -1
	zero := 0

	tests := []struct {
		name    string
		record  *ArticleRecord
		wantErr error
	}{
		{
			name:    "valid record",
			record:  &ArticleRecord{Title: "t", Body: "b", LikeCount: 1, CommentCount: &zero},
			wantErr: nil,
		},
		{
			name:    "unknown date author and comments",
			record:  &ArticleRecord{Title: "t"},
			wantErr: nil,
		},
		{
			name:    "nil record",
			record:  nil,
			wantErr: ErrInvalidArticle,
		},
		{
			name:    "negative likes",
			record:  &ArticleRecord{LikeCount: -2},
			wantErr: ErrNegativeCount,
		},
		{
			name:    "negative comments",
			record:  &ArticleRecord{CommentCount: &negative},
			wantErr: ErrNegativeCount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateArticleRecord(tt.record)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateArticleRecord() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateArticleRecord() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateStoredArticle(t *testing.T) {
	tests := []struct {
		name    string
		article *StoredArticle
		wantErr error
	}{
		{
			name:    "valid with both vectors nil",
			article: &StoredArticle{Key: "article_1"},
			wantErr: nil,
		},
		{
			name:    "valid with title vector nil",
			article: &StoredArticle{Key: "article_1", BodyVector: []float32{0.1, 0.2}},
			wantErr: nil,
		},
		{
			name:    "nil article",
			article: nil,
			wantErr: ErrInvalidArticle,
		},
		{
			name:    "empty key",
			article: &StoredArticle{Title: "t"},
			wantErr: ErrEmptyKey,
		},
		{
			name:    "negative likes",
			article: &StoredArticle{Key: "k", LikeCount: -1},
			wantErr: ErrNegativeCount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStoredArticle(tt.article)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateStoredArticle() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateStoredArticle() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
