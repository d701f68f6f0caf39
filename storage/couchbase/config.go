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

package couchbase

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/newsvec/storage"
)

// Config holds connection settings for a Couchbase cluster.
type Config struct {
	// ConnectionString is the cluster address, e.g. "couchbase://localhost"
	// or "couchbases://cb.example.cloud".
	ConnectionString string

	Username string
	Password string

	// Keyspace selects the bucket, scope and collection holding articles.
	Keyspace storage.Keyspace

	// IndexName is the full-text/vector index used when a query names none.
	IndexName string

	// Timeouts for key-value, query and search operations.
	KVTimeout     time.Duration
	QueryTimeout  time.Duration
	SearchTimeout time.Duration

	// ReadyTimeout bounds the wait for the cluster to become usable.
	ReadyTimeout time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithConnectionString sets the cluster connection string.
func WithConnectionString(conn string) ConfigOption {
	return func(c *Config) {
		c.ConnectionString = conn
	}
}

// WithCredentials sets the username and password used to authenticate.
func WithCredentials(username, password string) ConfigOption {
	return func(c *Config) {
		c.Username = username
		c.Password = password
	}
}

// WithKeyspace sets the bucket, scope and collection.
func WithKeyspace(ks storage.Keyspace) ConfigOption {
	return func(c *Config) {
		c.Keyspace = ks
	}
}

// WithIndexName sets the default search index.
func WithIndexName(name string) ConfigOption {
	return func(c *Config) {
		c.IndexName = name
	}
}

// WithOperationTimeout sets the KV, query and search timeouts to d.
func WithOperationTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.KVTimeout = d
		c.QueryTimeout = d
		c.SearchTimeout = d
	}
}

// DefaultConfig returns a Config for a local single-node cluster.
// Credentials are left empty and must be supplied.
func DefaultConfig() *Config {
	return &Config{
		ConnectionString: "couchbase://localhost",
		Keyspace:         storage.DefaultKeyspace(),
		IndexName:        "article_vector_index",
		KVTimeout:        50 * time.Second,
		QueryTimeout:     50 * time.Second,
		SearchTimeout:    50 * time.Second,
		ReadyTimeout:     10 * time.Second,
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
	c.ConnectionString = strings.TrimSpace(c.ConnectionString)
	if c.ConnectionString == "" {
		return errors.New("couchbase config: ConnectionString is required")
	}
	if !strings.HasPrefix(c.ConnectionString, "couchbase://") && !strings.HasPrefix(c.ConnectionString, "couchbases://") {
		return fmt.Errorf("couchbase config: unsupported connection string %q", c.ConnectionString)
	}
	if c.Username == "" {
		return errors.New("couchbase config: Username is required")
	}
	if err := c.Keyspace.Validate(); err != nil {
		return fmt.Errorf("couchbase config: %w", err)
	}
	if c.IndexName == "" {
		return errors.New("couchbase config: IndexName is required")
	}
	if c.KVTimeout < 0 || c.QueryTimeout < 0 || c.SearchTimeout < 0 || c.ReadyTimeout < 0 {
		return errors.New("couchbase config: timeouts cannot be negative")
	}
	return nil
}
