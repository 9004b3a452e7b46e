package fundamentals

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/octantlabs/octant/internal/contracts"
	"github.com/octantlabs/octant/pkg/config"
	"github.com/octantlabs/octant/pkg/httputil"
	"github.com/octantlabs/octant/pkg/logger"
)

// Client fetches structured metrics records from the fundamentals service.
// Rate limiting and retries are handled by the underlying HTTP client; the
// service throttles hard, so the limiter is not optional.
type Client struct {
	http    *httputil.Client
	baseURL string
	logger  *logger.Logger
}

var _ contracts.FundamentalsProvider = (*Client)(nil)

// NewClient creates a fundamentals service client.
func NewClient(cfg config.ProviderConfig, log *logger.Logger) *Client {
	hc := httputil.New(log, cfg.Timeout).
		WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst)
	if cfg.APIKey != "" {
		hc = hc.WithHeader("Authorization", "Bearer "+cfg.APIKey)
	}

	return &Client{
		http:    hc,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		logger:  log,
	}
}

// Fetch returns the metrics record for one ticker. Any failure, a 404 for
// an unknown ticker included, wraps ErrRecordUnavailable so the caller
// skips the ticker rather than treating it as eliminated.
func (c *Client) Fetch(ctx context.Context, ticker string) (*contracts.FundamentalsRecord, error) {
	endpoint := fmt.Sprintf("%s/v1/fundamentals/%s", c.baseURL, url.PathEscape(ticker))

	var rec contracts.FundamentalsRecord
	if err := c.http.GetJSON(ctx, endpoint, &rec); err != nil {
		var statusErr *httputil.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("ticker %s unknown to provider: %w", ticker, contracts.ErrRecordUnavailable)
		}
		return nil, fmt.Errorf("fetch %s: %w: %v", ticker, contracts.ErrRecordUnavailable, err)
	}

	if rec.Ticker == "" {
		rec.Ticker = ticker
	}
	if rec.Ticker != ticker {
		return nil, fmt.Errorf("provider returned %s for requested %s: %w",
			rec.Ticker, ticker, contracts.ErrRecordUnavailable)
	}

	return &rec, nil
}
