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

package naver

import (
	"errors"
	"strings"
	"time"
)

// DefaultUserAgent is a desktop browser agent; the news site serves a
// reduced page to unknown clients.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Config holds endpoints and HTTP settings for the Naver news client.
type Config struct {
	// ArticleBase is the article page prefix; pages live at
	// {ArticleBase}/{OfficeID}/{articleID}.
	ArticleBase string

	// LikeBase is the JSONP endpoint for reaction counts.
	LikeBase string

	// CommentBase is the JSONP endpoint for comment counts.
	CommentBase string

	// OfficeID identifies the press office publishing the articles.
	OfficeID string

	UserAgent string
	Timeout   time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithOfficeID sets the press office identifier.
func WithOfficeID(office string) ConfigOption {
	return func(c *Config) {
		c.OfficeID = office
	}
}

// WithBaseURLs overrides the article, like and comment endpoints.
func WithBaseURLs(article, like, comment string) ConfigOption {
	return func(c *Config) {
		c.ArticleBase = article
		c.LikeBase = like
		c.CommentBase = comment
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = d
	}
}

// DefaultConfig returns the public Naver endpoints for office 138.
func DefaultConfig() *Config {
	return &Config{
		ArticleBase: "https://n.news.naver.com/mnews/article",
		LikeBase:    "https://news.like.naver.com/v1/search/contents",
		CommentBase: "https://apis.naver.com/commentBox/cbox/web_naver_list_jsonp.json",
		OfficeID:    "138",
		UserAgent:   DefaultUserAgent,
		Timeout:     30 * time.Second,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Validate checks that the configuration is complete.
func (c *Config) Validate() error {
	c.ArticleBase = strings.TrimSuffix(strings.TrimSpace(c.ArticleBase), "/")
	if c.ArticleBase == "" {
		return errors.New("naver config: ArticleBase is required")
	}
	if c.LikeBase == "" {
		return errors.New("naver config: LikeBase is required")
	}
	if c.CommentBase == "" {
		return errors.New("naver config: CommentBase is required")
	}
	if c.OfficeID == "" {
		return errors.New("naver config: OfficeID is required")
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.Timeout < 0 {
		return errors.New("naver config: Timeout cannot be negative")
	}
	return nil
}
