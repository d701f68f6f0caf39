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

// Package ai provides abstractions for the embedding service used by newsvec.
//
// The package defines the Embedder and AIProvider interfaces and the tagged
// Embedding result. Consumers never see embedding errors directly: Embed
// folds rate limits, auth failures, connection problems and malformed
// responses into an Embedding whose Failure field says why no vector exists.
//
// # Implementation Packages
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// Public constructors (openai.NewProvider, openai.NewEmbedder) return
// interface types. Test constructors (mock.NewMockEmbedder) return concrete
// types so tests can inject behaviour and inspect call counts.
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithAPIKey(key))
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	result := ai.Embed(ctx, provider.Embedder(), "some text", nil)
//	if !result.Available() {
//	    // proceed without a vector
//	}
package ai
