// Package graph provides a client for a graph-structured HTTP API. It
// normalizes the service's inconsistent error and pagination conventions
// into a single uniform contract: heterogeneous option values are shaped
// for the wire, raw bodies become either structured data or typed
// errors, paged results iterate lazily, and batched sub-responses are
// correlated back to their originating requests.
package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/socialgraph/graph-api-client/pkg/cache"
)

// Prometheus metrics for Graph API client operations.
var (
	graphRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "graph_requests_total",
		Help: "Total Graph API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	graphRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "graph_request_duration_seconds",
		Help:    "Graph API request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	graphErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "graph_errors_total",
		Help: "Total Graph API errors by class",
	}, []string{"class"})

	graphRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "graph_retries_total",
		Help: "Total retry attempts by endpoint",
	}, []string{"endpoint"})
)

// DefaultURL is the Graph API root used when none is configured.
const DefaultURL = "https://graph.facebook.com"

// Client is the Graph API client. It owns one long-lived transport
// session and is immutable after construction. The design assumes a
// single logical caller; concurrent use requires external coordination.
type Client struct {
	httpClient  *http.Client
	accessToken string
	url         string
	maxRetries  int
	cache       *cache.Manager
	cacheTTL    time.Duration
	logger      zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// AccessToken is the opaque bearer credential injected as the
	// access_token parameter on every call. Empty means unauthenticated.
	AccessToken string

	// URL is the base endpoint. Trailing slashes are stripped.
	URL string

	// MaxRetries bounds how many dispatch attempts Get makes while the
	// service keeps answering with an error payload. Zero means the
	// default of 3.
	MaxRetries int

	// Redis enables the response cache for unpaged GET calls when set.
	Redis *redis.Client

	// CacheTTL is how long cached GET responses stay fresh.
	CacheTTL time.Duration

	// HTTPClient overrides the owned transport session (for testing).
	HTTPClient *http.Client
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(accessToken string) Config {
	return Config{
		AccessToken: accessToken,
		URL:         DefaultURL,
		MaxRetries:  3,
		CacheTTL:    60 * time.Second,
	}
}

// New creates a Graph API client.
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", cfg.URL, err)
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("max_retries must be >= 0 (got %d)", cfg.MaxRetries)
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}

	logger := log.With().Str("component", "graph-client").Logger()

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	var manager *cache.Manager
	ttl := cfg.CacheTTL
	if cfg.Redis != nil {
		if ttl <= 0 {
			ttl = 60 * time.Second
		}
		manager = cache.NewManager(cfg.Redis)
	}

	return &Client{
		httpClient:  httpClient,
		accessToken: cfg.AccessToken,
		url:         strings.TrimRight(cfg.URL, "/"),
		maxRetries:  cfg.MaxRetries,
		cache:       manager,
		cacheTTL:    ttl,
		logger:      logger,
	}, nil
}

// Get retrieves an item from the Graph API.
//
// When the service answers with an error payload the call is retried up
// to the configured ceiling, and the last error is returned once the
// budget is exhausted. A literal false response means the item was
// denied or inaccessible and surfaces as a *ServiceError.
func (c *Client) Get(ctx context.Context, path string, params Params) (Result, error) {
	data := c.normalize(params)
	target := c.buildURL(path)
	endpoint := endpointLabel(target)

	if c.cache != nil {
		if result, ok := c.cacheLookup(ctx, path, data); ok {
			return result, nil
		}
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if attempt > 1 {
			graphRetriesTotal.WithLabelValues(endpoint).Inc()
			c.logger.Warn().
				Str("endpoint", endpoint).
				Int("attempt", attempt).
				Msg("Retrying after service error")
		}

		result, _, err := c.load(ctx, http.MethodGet, target, data)
		if err != nil {
			return nil, err
		}

		if fault, ok := result.(Fault); ok {
			lastErr = fault.Err
			continue
		}

		if denied(result) {
			return nil, &ServiceError{Message: fmt.Sprintf("could not get %q", path)}
		}

		c.cacheStore(ctx, path, data, result)
		return result, nil
	}

	return nil, lastErr
}

// GetPages retrieves an item as a lazy, forward-only sequence of result
// pages. Service-reported errors are yielded as Fault results so
// callers can inspect them per page.
func (c *Client) GetPages(path string, params Params) *Pager {
	return c.newPager(http.MethodGet, c.buildURL(path), c.normalize(params))
}

// Post publishes an item to the Graph API. A literal false response
// surfaces as a *ServiceError.
func (c *Client) Post(ctx context.Context, path string, params Params) (Result, error) {
	result, _, err := c.load(ctx, http.MethodPost, c.buildURL(path), c.normalize(params))
	if err != nil {
		return nil, err
	}
	if fault, ok := result.(Fault); ok {
		return nil, fault.Err
	}
	if denied(result) {
		return nil, &ServiceError{Message: fmt.Sprintf("could not post to %q", path)}
	}
	return result, nil
}

// Delete removes an item from the Graph API. A literal false response
// surfaces as a *ServiceError.
func (c *Client) Delete(ctx context.Context, path string) (Result, error) {
	result, _, err := c.load(ctx, http.MethodDelete, c.buildURL(path), c.normalize(nil))
	if err != nil {
		return nil, err
	}
	if fault, ok := result.(Fault); ok {
		return nil, fault.Err
	}
	if denied(result) {
		return nil, &ServiceError{Message: fmt.Sprintf("could not delete %q", path)}
	}
	return result, nil
}

// Search queries the Graph API for objects of the given type. The type
// must be one of SearchTypes; otherwise the call fails fast without a
// network exchange. The search term and type overwrite any
// caller-supplied q or type options.
func (c *Client) Search(ctx context.Context, term, typ string, params Params) (Result, error) {
	merged, err := searchParams(term, typ, params)
	if err != nil {
		return nil, err
	}
	return c.Get(ctx, "search", merged)
}

// SearchPages is Search with lazy pagination.
func (c *Client) SearchPages(term, typ string, params Params) (*Pager, error) {
	merged, err := searchParams(term, typ, params)
	if err != nil {
		return nil, err
	}
	return c.GetPages("search", merged), nil
}

// FQL runs a legacy FQL query through the same pipeline.
func (c *Client) FQL(ctx context.Context, query string) (Result, error) {
	return c.Get(ctx, "fql?"+url.Values{"q": {query}}.Encode(), nil)
}

// SetHTTPClient replaces the transport session (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

func searchParams(term, typ string, params Params) (Params, error) {
	supported := false
	for _, t := range SearchTypes {
		if t == typ {
			supported = true
			break
		}
	}
	if !supported {
		return nil, unsupportedTypeError(typ)
	}

	merged := make(Params, len(params)+2)
	for key, value := range params {
		merged[key] = value
	}
	merged["q"] = term
	merged["type"] = typ
	return merged, nil
}

func (c *Client) buildURL(path string) string {
	return c.url + "/" + strings.TrimLeft(path, "/")
}

// cacheLookup serves an unpaged GET from the response cache. A hit
// skips the network entirely.
func (c *Client) cacheLookup(ctx context.Context, path string, data Params) (Result, bool) {
	entry, err := c.cache.Get(ctx, c.cacheKey(path, data))
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			c.logger.Warn().Err(err).Str("path", path).Msg("Cache get error")
		}
		return nil, false
	}

	var value any
	if err := json.Unmarshal(entry.Body, &value); err != nil {
		c.logger.Warn().Err(err).Str("path", path).Msg("Discarding corrupt cache entry")
		return nil, false
	}

	c.logger.Debug().Str("path", path).Msg("Cache hit")
	return Data{Value: value}, true
}

// cacheStore caches plain structured data. Faults, raw text and bare
// booleans are never cached.
func (c *Client) cacheStore(ctx context.Context, path string, data Params, result Result) {
	if c.cache == nil {
		return
	}

	parsed, ok := result.(Data)
	if !ok {
		return
	}
	switch parsed.Value.(type) {
	case map[string]any, []any:
	default:
		return
	}

	body, err := json.Marshal(parsed.Value)
	if err != nil {
		return
	}

	entry := &cache.Entry{Body: body, CachedAt: time.Now()}
	if err := c.cache.Set(ctx, c.cacheKey(path, data), entry, c.cacheTTL); err != nil {
		c.logger.Warn().Err(err).Str("path", path).Msg("Failed to cache response")
	}
}

// cacheKey derives a deterministic key from the normalized options. The
// credential participates as a digest so entries never cross tokens.
func (c *Client) cacheKey(path string, data Params) cache.Key {
	params := make(map[string]string, len(data))
	for key, value := range data {
		if key == "access_token" {
			continue
		}
		if _, ok := value.(*Upload); ok {
			continue
		}
		params[key] = fmt.Sprint(value)
	}
	return cache.Key{Path: path, Params: params, Credential: c.accessToken}
}
