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

package reembed

import (
	"context"
	"strings"

	"github.com/poiesic/newsvec/core"
	"github.com/poiesic/newsvec/storage"
)

const (
	// DefaultBatchSize is the default number of articles per embedding request
	DefaultBatchSize = 32
)

// Selector reports whether an article should be re-embedded.
type Selector func(*core.StoredArticle) bool

// MissingVectors selects articles stored without a title or body vector
// whose text for that field can be embedded. Articles with nothing to embed
// would never gain a vector, so they are left out.
func MissingVectors(a *core.StoredArticle) bool {
	return (len(a.TitleVector) == 0 && hasText(a.Title)) ||
		(len(a.BodyVector) == 0 && hasText(a.Body))
}

// EveryArticle selects every article with a title or body to embed.
func EveryArticle(a *core.StoredArticle) bool {
	return hasText(a.Title) || hasText(a.Body)
}

func hasText(s string) bool {
	return strings.TrimSpace(s) != ""
}

// ArticleIterator collects the articles a run will re-embed and hands them
// out in batches.
type ArticleIterator struct {
	store     storage.ArticleScanner
	batchSize int
	selector  Selector
}

// NewArticleIterator creates a new article iterator.
// batchSize: number of articles per batch (defaults when <= 0)
func NewArticleIterator(store storage.ArticleScanner, batchSize int, selector Selector) *ArticleIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if selector == nil {
		selector = MissingVectors
	}
	return &ArticleIterator{
		store:     store,
		batchSize: batchSize,
		selector:  selector,
	}
}

// Collect scans the collection and returns the selected articles along
// with the number of articles scanned.
func (it *ArticleIterator) Collect(ctx context.Context) ([]*core.StoredArticle, int, error) {
	var selected []*core.StoredArticle
	scanned := 0
	err := it.store.ScanArticles(ctx, func(a *core.StoredArticle) error {
		scanned++
		if it.selector(a) {
			selected = append(selected, a)
		}
		return nil
	})
	if err != nil {
		return nil, scanned, err
	}
	return selected, scanned, nil
}

// Batches splits articles into consecutive batches of at most batchSize.
func (it *ArticleIterator) Batches(articles []*core.StoredArticle) [][]*core.StoredArticle {
	var batches [][]*core.StoredArticle
	for i := 0; i < len(articles); i += it.batchSize {
		end := min(i+it.batchSize, len(articles))
		batches = append(batches, articles[i:end])
	}
	return batches
}
