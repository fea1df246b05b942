package jellyfin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/amaumene/jellywatch/internal/config"
)

const (
	requestTimeout = 10 * time.Second
	maxRetries     = 2
)

// retryInitialInterval seeds the exponential backoff between retries;
// tests shrink it
var retryInitialInterval = 500 * time.Millisecond

// Client handles communication with the Jellyfin API. It holds only
// configuration; per-run state (the resolved user) lives on a Session.
type Client struct {
	baseURL    string
	apiKey     string
	username   string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a new Jellyfin API client
func NewClient(cfg *config.Config, logger *logrus.Logger) (*Client, error) {
	if cfg.JellyfinURL == "" {
		return nil, fmt.Errorf("jellyfin URL is required")
	}
	if cfg.JellyfinAPIKey == "" {
		return nil, fmt.Errorf("jellyfin API key is required")
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.JellyfinURL, "/"),
		apiKey:     cfg.JellyfinAPIKey,
		username:   cfg.JellyfinUsername,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}, nil
}

// getJSON performs an authenticated GET against the Jellyfin API and
// decodes the response. Transient failures (transport errors, 5xx) are
// retried a couple of times before the error is returned.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, result interface{}) error {
	fullURL := c.baseURL + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	c.logger.WithField("url", fullURL).Debug("Making Jellyfin API request")

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("X-Emby-Token", c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return fmt.Errorf("jellyfin returned status %d", resp.StatusCode)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			bodyBytes, _ := io.ReadAll(resp.Body)
			return backoff.Permanent(fmt.Errorf("jellyfin returned status %d: %s", resp.StatusCode, string(bodyBytes)))
		}

		if result != nil {
			if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
				return backoff.Permanent(fmt.Errorf("failed to decode response: %w", err))
			}
		}
		return nil
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = retryInitialInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(expo, maxRetries), ctx)
	return backoff.Retry(operation, policy)
}
