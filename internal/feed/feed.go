// Package feed is the client for the game-state HTTP API.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"garden_bot/internal/model"
)

// ErrStatus is returned when the API answers with a non-2xx status.
var ErrStatus = errors.New("unexpected status")

const (
	maxBodySize          = 5 * 1024 * 1024
	defaultMerchantName  = "Traveling Merchant"
	apiKeyHeader         = "jstudio-key"
	requestBurst         = 5
	secondsPerMinute     = 60.0
	catalogQueryParamKey = "type"
)

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client queries the stock, weather and catalog endpoints.
// It is safe for concurrent use.
type Client struct {
	client  HTTPClient
	baseURL string
	apiKey  string
	limiter *rate.Limiter
}

// New creates a Client that sends at most requestsPerMinute requests.
func New(client HTTPClient, baseURL, apiKey string, requestsPerMinute int) *Client {
	return &Client{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		limiter: rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/secondsPerMinute), requestBurst),
	}
}

// Stock fetches the current stock listing.
func (c *Client) Stock(ctx context.Context) (model.StockListing, error) {
	var resp stockResponse
	if err := c.get(ctx, "/stock", nil, &resp); err != nil {
		return model.StockListing{}, fmt.Errorf("fetch stock: %w", err)
	}
	return resp.toModel(), nil
}

// Weather fetches the weather listing.
func (c *Client) Weather(ctx context.Context) ([]model.WeatherEvent, error) {
	var resp weatherResponse
	if err := c.get(ctx, "/weather", nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch weather: %w", err)
	}
	events := make([]model.WeatherEvent, 0, len(resp.Weather))
	for _, w := range resp.Weather {
		events = append(events, w.toModel())
	}
	return events, nil
}

// Catalog fetches the item or weather catalog of the given kind.
func (c *Client) Catalog(ctx context.Context, kind model.CatalogKind) ([]model.CatalogEntry, error) {
	var resp []wireCatalogEntry
	q := url.Values{catalogQueryParamKey: {string(kind)}}
	if err := c.get(ctx, "/info", q, &resp); err != nil {
		return nil, fmt.Errorf("fetch %s catalog: %w", kind, err)
	}
	entries := make([]model.CatalogEntry, 0, len(resp))
	for _, e := range resp {
		entries = append(entries, e.toModel())
	}
	return entries, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("http get %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w %d", ErrStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
