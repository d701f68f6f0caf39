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

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/poiesic/newsvec"
	"github.com/poiesic/newsvec/ai"
	"github.com/poiesic/newsvec/core"
	"github.com/poiesic/newsvec/ingestion"
	"github.com/poiesic/newsvec/search"
	"github.com/poiesic/newsvec/source/naver"
	"github.com/poiesic/newsvec/storage"
	"github.com/poiesic/newsvec/storage/couchbase"
	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "newsvec",
		Usage: "Ingest news articles with embeddings and search them",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "store",
				Usage:   "Document store backend (couchbase, local)",
				Value:   "couchbase",
				EnvVars: []string{"NEWSVEC_STORE"},
			},
			&cli.StringFlag{
				Name:    "db-path",
				Usage:   "Path to the local database directory",
				Value:   "./newsvec_db",
				EnvVars: []string{"NEWSVEC_DB_PATH"},
			},
			&cli.StringFlag{
				Name:    "db-conn-str",
				Usage:   "Couchbase connection string",
				Value:   "couchbase://localhost",
				EnvVars: []string{"DB_CONN_STR"},
			},
			&cli.StringFlag{
				Name:    "db-username",
				Usage:   "Couchbase username",
				EnvVars: []string{"DB_USERNAME"},
			},
			&cli.StringFlag{
				Name:    "db-password",
				Usage:   "Couchbase password",
				EnvVars: []string{"DB_PASSWORD"},
			},
			&cli.StringFlag{
				Name:    "db-bucket",
				Usage:   "Bucket holding the articles",
				Value:   storage.DefaultBucket,
				EnvVars: []string{"DB_BUCKET"},
			},
			&cli.StringFlag{
				Name:    "db-scope",
				Usage:   "Scope holding the articles",
				Value:   storage.DefaultScope,
				EnvVars: []string{"DB_SCOPE"},
			},
			&cli.StringFlag{
				Name:    "db-collection",
				Usage:   "Collection holding the articles",
				Value:   storage.DefaultCollection,
				EnvVars: []string{"DB_COLLECTION"},
			},
			&cli.StringFlag{
				Name:    "index-name",
				Usage:   "Search index with the vector fields",
				Value:   couchbase.DefaultConfig().IndexName,
				EnvVars: []string{"INDEX_NAME"},
			},
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "API key for the embedding service",
				EnvVars: []string{"OPENAI_API_KEY"},
			},
			&cli.StringFlag{
				Name:    "embedding-host",
				Usage:   "Embedding service host URL",
				Value:   ai.DefaultConfig().EmbeddingHost,
				EnvVars: []string{"EMBEDDING_HOST"},
			},
			&cli.StringFlag{
				Name:    "embedding-model",
				Usage:   "Embedding model name",
				Value:   ai.DefaultConfig().EmbeddingModel,
				EnvVars: []string{"EMBEDDING_MODEL"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Fetch, embed and store a range of articles",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.Int64Flag{
						Name:  "start",
						Usage: "First article id",
						Value: 2179100,
					},
					&cli.IntFlag{
						Name:  "count",
						Usage: "Number of sequential ids to ingest",
						Value: 400,
					},
					&cli.DurationFlag{
						Name:  "delay",
						Usage: "Pause between article fetches",
						Value: ingestion.DefaultPoliteDelay,
					},
					&cli.IntFlag{
						Name:  "width",
						Usage: "Zero-padded width of article ids",
						Value: core.DefaultIDWidth,
					},
					&cli.StringFlag{
						Name:  "office",
						Usage: "Press office id",
						Value: naver.DefaultConfig().OfficeID,
					},
					&cli.BoolFlag{
						Name:  "upsert",
						Usage: "Overwrite documents on key collision instead of failing the item",
					},
				},
			},
			{
				Name:   "search",
				Usage:  "Search stored articles by article text and title text",
				Action: searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "article",
						Usage: "Article text to search for (prompted when empty)",
					},
					&cli.StringFlag{
						Name:  "title",
						Usage: "Title text to search for (prompted when empty)",
					},
					&cli.IntFlag{
						Name:  "k",
						Usage: "Nearest neighbours per vector clause",
						Value: search.DefaultK,
					},
					&cli.StringFlag{
						Name:  "author-suffix",
						Usage: "Byline suffix required by the hybrid search",
						Value: search.DefaultAuthorSuffix,
					},
					&cli.IntFlag{
						Name:  "min-likes",
						Usage: "Minimum like count required by the hybrid search",
						Value: search.DefaultMinLikes,
					},
					&cli.StringFlag{
						Name:  "strategy",
						Usage: "Search strategy (vector, hybrid, both)",
						Value: "both",
					},
				},
			},
		},
	}
}

func openArchive(c *cli.Context) (*newsvec.Archive, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithAPIKey(c.String("api-key")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	keyspace := storage.Keyspace{
		Bucket:     c.String("db-bucket"),
		Scope:      c.String("db-scope"),
		Collection: c.String("db-collection"),
	}
	naverOpts := []naver.ConfigOption{}
	if office := c.String("office"); office != "" {
		naverOpts = append(naverOpts, naver.WithOfficeID(office))
	}
	opts := []newsvec.ArchiveOption{
		newsvec.WithAIConfig(aiConfig),
		newsvec.WithNaverConfig(naver.NewConfig(naverOpts...)),
		newsvec.WithKeyspace(keyspace),
	}

	switch strings.ToLower(c.String("store")) {
	case "local":
		return newsvec.OpenLocal(c.String("db-path"), opts...)
	case "couchbase":
		cfg := couchbase.NewConfig(
			couchbase.WithConnectionString(c.String("db-conn-str")),
			couchbase.WithCredentials(c.String("db-username"), c.String("db-password")),
			couchbase.WithKeyspace(keyspace),
			couchbase.WithIndexName(c.String("index-name")),
		)
		return newsvec.OpenCouchbase(cfg, opts...)
	default:
		return nil, fmt.Errorf("unknown store %q: must be couchbase or local", c.String("store"))
	}
}

func ingestCommand(c *cli.Context) error {
	archive, err := openArchive(c)
	if err != nil {
		return err
	}
	defer archive.Close()

	pipeline, err := archive.NewIngestionPipeline(
		ingestion.WithPoliteDelay(c.Duration("delay")),
		ingestion.WithIDWidth(c.Int("width")),
		ingestion.WithUpsert(c.Bool("upsert")),
		ingestion.WithProgress(ingestion.NewProgressPrinter(c.App.ErrWriter)),
	)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}

	start, count := c.Int64("start"), c.Int("count")
	fmt.Fprintf(c.App.ErrWriter, "Ingesting %d articles from id %d (delay %s)\n\n", count, start, c.Duration("delay"))

	report, err := pipeline.IngestRange(c.Context, start, count)
	if report != nil {
		fmt.Fprintln(c.App.Writer, report.Summary())
	}
	if err != nil {
		if errors.Is(err, context.Canceled) && report != nil {
			return fmt.Errorf("ingestion interrupted after %d of %d articles", report.Attempted, count)
		}
		return fmt.Errorf("ingestion failed: %w", err)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	strategies, err := search.ParseStrategy(c.String("strategy"))
	if err != nil {
		return err
	}

	articleText, titleText := c.String("article"), c.String("title")
	if articleText == "" || titleText == "" {
		scanner := bufio.NewScanner(c.App.Reader)
		scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
		if articleText == "" {
			if articleText, err = prompt(c.App.Writer, scanner, "Article text: "); err != nil {
				return err
			}
		}
		if titleText == "" {
			if titleText, err = prompt(c.App.Writer, scanner, "Title text: "); err != nil {
				return err
			}
		}
	}

	archive, err := openArchive(c)
	if err != nil {
		return err
	}
	defer archive.Close()

	retriever, err := archive.NewRetriever(
		search.WithIndex(c.String("index-name")),
		search.WithK(c.Int("k")),
		search.WithAuthorSuffix(c.String("author-suffix")),
		search.WithMinLikes(c.Int("min-likes")),
	)
	if err != nil {
		return fmt.Errorf("failed to create retriever: %w", err)
	}

	outcome, err := retriever.Search(c.Context, articleText, titleText, strategies...)
	if err != nil {
		var perr *core.PreconditionError
		if errors.As(err, &perr) {
			fmt.Fprintln(c.App.Writer, color.YellowString(perr.Error()))
			return nil
		}
		return err
	}
	printOutcome(c.App.Writer, outcome)
	return nil
}

func prompt(w io.Writer, scanner *bufio.Scanner, label string) (string, error) {
	fmt.Fprint(w, color.New(color.FgGreen, color.Bold).Sprint(label))
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimSpace(scanner.Text()), nil
}

func printOutcome(w io.Writer, outcome *search.Outcome) {
	heading := color.New(color.FgCyan, color.Bold).SprintFunc()
	title := color.New(color.FgGreen).SprintFunc()

	for _, set := range outcome.Sets {
		fmt.Fprintf(w, "\n%s\n", heading(set.Label()))
		if set.Empty() {
			fmt.Fprintln(w, "  zero results matched")
			continue
		}
		for i, row := range set.Rows {
			fmt.Fprintf(w, "%2d. [%.4f] %s\n", i+1, row.RelevanceScore, title(row.Title))
			fmt.Fprintf(w, "    %s | %s | likes %d | %s\n",
				orUnknown(row.Author), formatDate(row.PublishedAt), row.LikeCount, row.SourceURL)
		}
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "unknown date"
	}
	return t.Format("2006-01-02 15:04")
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown author"
	}
	return s
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
