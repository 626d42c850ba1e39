package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/summarist/pkg/async"
	"github.com/dmitrymomot/summarist/pkg/logger"
	"github.com/dmitrymomot/summarist/pkg/metrics"
)

const (
	endpointBook   = "getBook"
	endpointBooks  = "getBooks"
	endpointSearch = "getBooksByAuthorOrTitle"

	maxResponseSize = 4 << 20
)

var errUnexpectedStatus = errors.New("catalog: unexpected response status")

// Client reads the catalog endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      Cache
	cacheTTL   time.Duration
	logger     *slog.Logger
	metrics    metrics.Recorder
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for catalog requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithCache enables read-through caching of successful responses.
func WithCache(cache Cache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics records request latency and failures to m.
func WithMetrics(m metrics.Recorder) Option {
	return func(c *Client) {
		if m != nil {
			c.metrics = m
		}
	}
}

// NewClient creates a catalog client for cfg.BaseURL.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		cacheTTL:   cfg.CacheTTL,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics:    metrics.Noop{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Book returns the book with id. ok is false when it does not exist or the
// catalog could not be reached.
func (c *Client) Book(ctx context.Context, id string) (*Book, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, false
	}
	var b Book
	if err := c.get(ctx, endpointBook, url.Values{"id": {id}}, &b); err != nil {
		return nil, false
	}
	// a missing book comes back as an empty object
	if b.ID == "" {
		return nil, false
	}
	return &b, true
}

// Books returns the list curated under status. Unknown statuses yield an
// empty list without a request.
func (c *Client) Books(ctx context.Context, status Status) []Book {
	if _, ok := ParseStatus(string(status)); !ok {
		return []Book{}
	}
	return c.list(ctx, endpointBooks, url.Values{"status": {string(status)}})
}

// Search returns books whose author or title match q. Blank queries yield an
// empty list without a request.
func (c *Client) Search(ctx context.Context, q string) []Book {
	q = NormalizeQuery(q)
	if q == "" {
		return []Book{}
	}
	return c.list(ctx, endpointSearch, url.Values{"search": {q}})
}

// ForYou fetches the three curated lists concurrently. Selected is the first
// selected book, nil when that list is empty.
func (c *Client) ForYou(ctx context.Context) ForYouPage {
	fetch := func(ctx context.Context, status Status) ([]Book, error) {
		return c.Books(ctx, status), nil
	}
	results := async.Settle(
		async.Async(ctx, StatusSelected, fetch),
		async.Async(ctx, StatusRecommended, fetch),
		async.Async(ctx, StatusSuggested, fetch),
	)
	lists := make([][]Book, len(results))
	for i, r := range results {
		lists[i] = r.Value
		if lists[i] == nil {
			lists[i] = []Book{}
		}
	}

	page := ForYouPage{Recommended: lists[1], Suggested: lists[2]}
	if len(lists[0]) > 0 {
		page.Selected = &lists[0][0]
	}
	return page
}

// Hydrate looks up every id concurrently and returns the books found, in the
// order of ids.
func (c *Client) Hydrate(ctx context.Context, ids []string) []Book {
	futures := make([]*async.Future[*Book], len(ids))
	for i, id := range ids {
		futures[i] = async.Async(ctx, id, func(ctx context.Context, id string) (*Book, error) {
			b, _ := c.Book(ctx, id)
			return b, nil
		})
	}
	books := make([]Book, 0, len(ids))
	for _, r := range async.Settle(futures...) {
		if r.Err == nil && r.Value != nil {
			books = append(books, *r.Value)
		}
	}
	return books
}

func (c *Client) list(ctx context.Context, endpoint string, query url.Values) []Book {
	var books []Book
	if err := c.get(ctx, endpoint, query, &books); err != nil || books == nil {
		return []Book{}
	}
	return books
}

// get decodes the endpoint response into out, consulting the cache first.
func (c *Client) get(ctx context.Context, endpoint string, query url.Values, out any) error {
	key := endpoint + "?" + query.Encode()

	if c.cache != nil {
		raw, err := c.cache.Get(ctx, key)
		if err != nil {
			c.logger.WarnContext(ctx, "catalog cache read failed",
				slog.String("key", key),
				logger.Error(err),
				logger.Component("catalog"),
			)
		}
		if err == nil && raw != nil && json.Unmarshal(raw, out) == nil {
			return nil
		}
	}

	start := time.Now()
	raw, err := c.fetch(ctx, endpoint, query)
	if err == nil {
		err = json.Unmarshal(raw, out)
	}
	c.metrics.RecordCatalogRequest(endpoint, time.Since(start), err)
	if err != nil {
		c.logger.ErrorContext(ctx, "catalog request failed",
			slog.String("endpoint", endpoint),
			slog.String("query", query.Encode()),
			logger.Duration(time.Since(start)),
			logger.Error(err),
			logger.Component("catalog"),
		)
		return err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, raw, c.cacheTTL); err != nil {
			c.logger.WarnContext(ctx, "catalog cache write failed",
				slog.String("key", key),
				logger.Error(err),
				logger.Component("catalog"),
			)
		}
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	reqURL := c.baseURL + "/" + endpoint + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
		return nil, fmt.Errorf("%w: %d", errUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog response: %w", err)
	}
	if !json.Valid(body) {
		return nil, errors.New("catalog: response is not JSON")
	}
	return body, nil
}
