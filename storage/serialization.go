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

package storage

import (
	"encoding/json"
	"fmt"

	"github.com/poiesic/newsvec/core"
)

// MarshalArticle serializes an article to its JSON document form.
// The key is not part of the document body.
func MarshalArticle(article *core.StoredArticle) ([]byte, error) {
	data, err := json.Marshal(article)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalArticle deserializes a JSON document and attaches its key.
func UnmarshalArticle(key string, data []byte) (*core.StoredArticle, error) {
	var article core.StoredArticle
	if err := json.Unmarshal(data, &article); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	article.Key = key
	return &article, nil
}
