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
	"fmt"
	"strings"
)

// Default keyspace names.
const (
	DefaultBucket     = "news"
	DefaultScope      = "naver"
	DefaultCollection = "articles"
)

// Keyspace addresses one collection as bucket.scope.collection.
type Keyspace struct {
	Bucket     string
	Scope      string
	Collection string
}

// DefaultKeyspace returns the keyspace used when none is configured.
func DefaultKeyspace() Keyspace {
	return Keyspace{Bucket: DefaultBucket, Scope: DefaultScope, Collection: DefaultCollection}
}

// String returns the dotted bucket.scope.collection form.
func (k Keyspace) String() string {
	return k.Bucket + "." + k.Scope + "." + k.Collection
}

// Validate checks that every part is set and safe to quote in a query.
func (k Keyspace) Validate() error {
	for _, part := range []struct{ name, value string }{
		{"bucket", k.Bucket},
		{"scope", k.Scope},
		{"collection", k.Collection},
	} {
		if strings.TrimSpace(part.value) == "" {
			return fmt.Errorf("%w: %s name is required", ErrInvalidQuery, part.name)
		}
		if strings.ContainsAny(part.value, "`.") {
			return fmt.Errorf("%w: %s name %q contains a reserved character", ErrInvalidQuery, part.name, part.value)
		}
	}
	return nil
}
