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

// Package search retrieves stored articles for a free-text query.
//
// A Retriever embeds the article text and the title text, then runs one or
// both strategies against the document store:
//
//   - StrategyVector: the k nearest articles to the body vector, with
//     display fields fetched by key
//   - StrategyHybrid: one query requiring a reporter byline, a minimum like
//     count, a title token match and kNN membership on both the body and
//     the title vector
//
// Each strategy produces its own labelled ResultSet; rankings are never
// merged. The article vector is required: if it cannot be obtained the
// search returns a *core.PreconditionError and the store is not queried.
package search
