package naver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/poiesic/newsvec/core"
	"github.com/poiesic/newsvec/source"
)

// maxCountResponse bounds the body read from the like and comment APIs.
const maxCountResponse = 1 << 20

// Client fetches articles from Naver News.
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *slog.Logger
}

var _ source.ArticleSource = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the HTTP client used for every request.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client. A nil config uses DefaultConfig.
func NewClient(config *Config, opts ...ClientOption) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	c := &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     slog.Default().With("component", "naver"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ArticleURL returns the page URL of an article id.
func (c *Client) ArticleURL(id string) string {
	return fmt.Sprintf("%s/%s/%s", c.config.ArticleBase, c.config.OfficeID, id)
}

// Fetch scrapes the article page and then asks the reaction and comment
// APIs for counts. Count failures never fail the fetch: a missing like
// count is zero and a missing comment count is nil.
func (c *Client) Fetch(ctx context.Context, id string) (*core.ArticleRecord, error) {
	pageURL := c.ArticleURL(id)
	c.logger.Debug("fetching article", "url", pageURL)

	resp, err := c.get(ctx, pageURL, "")
	if err != nil {
		return nil, &core.TransportError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", core.ErrNotFound, pageURL)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &core.TransportError{URL: pageURL, Status: resp.StatusCode}
	}

	p, err := parseArticlePage(resp.Body)
	if err != nil {
		return nil, &core.TransportError{URL: pageURL, Status: resp.StatusCode, Err: err}
	}
	if p.empty() {
		return nil, fmt.Errorf("%w: %s has no title or body", core.ErrNotFound, pageURL)
	}

	record := &core.ArticleRecord{
		Title:       p.Title,
		PublishedAt: p.PublishedAt,
		Author:      p.Author,
		Body:        p.Body,
		SourceURL:   pageURL,
	}

	likes, err := c.likeCount(ctx, id, pageURL)
	if err != nil {
		c.logger.Warn("like count unavailable", "id", id, "err", err)
	}
	record.LikeCount = likes

	comments, err := c.commentCount(ctx, id, pageURL)
	if err != nil {
		c.logger.Warn("comment count unavailable", "id", id, "err", err)
	} else {
		record.CommentCount = &comments
	}

	return record, nil
}

func (c *Client) likeCount(ctx context.Context, id, referer string) (int, error) {
	params := url.Values{}
	params.Set("callback", "")
	params.Set("q", fmt.Sprintf("NEWS[ne_%s_%s]", c.config.OfficeID, id))

	data, err := c.fetchBody(ctx, c.config.LikeBase+"?"+params.Encode(), referer)
	if err != nil {
		return 0, err
	}
	return parseLikeCount(data)
}

func (c *Client) commentCount(ctx context.Context, id, referer string) (int, error) {
	params := url.Values{}
	params.Set("ticket", "news")
	params.Set("templateId", "view_politics")
	params.Set("pool", "cbox5")
	params.Set("lang", "ko")
	params.Set("country", "KR")
	params.Set("objectId", fmt.Sprintf("news%s,%s", c.config.OfficeID, id))
	params.Set("categoryId", "")
	params.Set("pageSize", "10")
	params.Set("indexSize", "10")
	params.Set("groupId", "")

	data, err := c.fetchBody(ctx, c.config.CommentBase+"?"+params.Encode(), referer)
	if err != nil {
		return 0, err
	}
	return parseCommentCount(data)
}

func (c *Client) fetchBody(ctx context.Context, target, referer string) ([]byte, error) {
	resp, err := c.get(ctx, target, referer)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &core.TransportError{URL: target, Status: resp.StatusCode}
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxCountResponse))
}

func (c *Client) get(ctx context.Context, target, referer string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	if referer != "" {
		req.Header.Set("Referer", referer)
	}
	return c.httpClient.Do(req)
}
