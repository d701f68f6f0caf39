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

package core

import "fmt"

// ValidateArticleRecord validates a fetched record.
//
// Validation rules:
//   - LikeCount must not be negative
//   - CommentCount, when known, must not be negative
//
// Title, body and author may be empty; the source fills what it can.
func ValidateArticleRecord(record *ArticleRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidArticle)
	}
	if record.LikeCount < 0 {
		return fmt.Errorf("%w: like count: %w", ErrInvalidArticle, ErrNegativeCount)
	}
	if record.CommentCount != nil && *record.CommentCount < 0 {
		return fmt.Errorf("%w: comment count: %w", ErrInvalidArticle, ErrNegativeCount)
	}
	return nil
}

// ValidateStoredArticle validates an article before it is written.
//
// Validation rules:
//   - Key must not be empty
//   - counts follow ValidateArticleRecord
//
// NOT validated:
//   - TitleVector, BodyVector (nil when embedding failed)
func ValidateStoredArticle(article *StoredArticle) error {
	if article == nil {
		return fmt.Errorf("%w: article is nil", ErrInvalidArticle)
	}
	if article.Key == "" {
		return fmt.Errorf("%w: %w", ErrInvalidArticle, ErrEmptyKey)
	}
	if article.LikeCount < 0 {
		return fmt.Errorf("%w: like count: %w", ErrInvalidArticle, ErrNegativeCount)
	}
	if article.CommentCount != nil && *article.CommentCount < 0 {
		return fmt.Errorf("%w: comment count: %w", ErrInvalidArticle, ErrNegativeCount)
	}
	return nil
}
