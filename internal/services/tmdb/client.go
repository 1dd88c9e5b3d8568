package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/chrisbanes/tivi-sub008/internal/config"
	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

const (
	defaultBaseURL = "https://api.themoviedb.org/3"

	maxRetries = 3

	configCacheKey = "configuration"
	configCacheTTL = 24 * time.Hour
)

// APIError is a non-2xx response from the TMDb API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tmdb API request failed with status %d: %s", e.StatusCode, e.Body)
}

func retryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	return false
}

// Client handles communication with the TMDb API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cache      *gocache.Cache
	logger     *logrus.Logger
}

// NewClient creates a new TMDb API client.
func NewClient(cfg *config.Config, logger *logrus.Logger) (*Client, error) {
	if cfg.TmdbAPIKey == "" {
		return nil, fmt.Errorf("tmdb API key is required")
	}

	return &Client{
		baseURL:    defaultBaseURL,
		apiKey:     cfg.TmdbAPIKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cache:      gocache.New(configCacheTTL, 10*time.Minute),
		logger:     logger,
	}, nil
}

// doRequest performs an HTTP GET against the TMDb API with bounded retry on
// rate limits and server errors.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values, result interface{}) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)

	return backoff.Retry(func() error {
		err := c.doRequestOnce(ctx, path, query, result)
		if err != nil && !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
}

func (c *Client) doRequestOnce(ctx context.Context, path string, query url.Values, result interface{}) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.apiKey)

	fullURL := c.baseURL + path + "?" + query.Encode()
	c.logger.WithField("url", c.baseURL+path).Debug("Making TMDb API request")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Configuration is the subset of TMDb API configuration needed to build image
// URLs.
type Configuration struct {
	Images struct {
		SecureBaseURL string   `json:"secure_base_url"`
		PosterSizes   []string `json:"poster_sizes"`
		BackdropSizes []string `json:"backdrop_sizes"`
	} `json:"images"`
}

// GetConfiguration retrieves the API configuration, cached for 24 hours.
func (c *Client) GetConfiguration(ctx context.Context) (*Configuration, error) {
	if cached, ok := c.cache.Get(configCacheKey); ok {
		return cached.(*Configuration), nil
	}

	var cfg Configuration
	if err := c.doRequest(ctx, "/configuration", nil, &cfg); err != nil {
		return nil, fmt.Errorf("failed to get configuration: %w", err)
	}

	c.cache.Set(configCacheKey, &cfg, configCacheTTL)
	return &cfg, nil
}
