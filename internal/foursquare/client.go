// Package foursquare is a small client for the Foursquare Places v3 API.
package foursquare

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alexivanou/findfun-api/internal/config"
	"github.com/alexivanou/findfun-api/internal/model"
	"go.uber.org/zap"
)

var (
	// ErrMissingAPIKey is returned when the client has no API key configured
	ErrMissingAPIKey = errors.New("foursquare: api key is not configured")
	// ErrUnauthorized is returned when the API rejects the key
	ErrUnauthorized = errors.New("foursquare: unauthorized")
)

// APIError is a non-2xx response from the API
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("foursquare returned status %d: %s", e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// SearchParams are the query parameters of a place search. Zero values are
// omitted from the request.
type SearchParams struct {
	Query      string
	LL         string
	Radius     int
	Categories []int
	Fields     []string
	MinPrice   int
	MaxPrice   int
	OpenNow    bool
	Near       string
	Sort       string
	Limit      int
}

// Values renders the parameters as a query string
func (p SearchParams) Values() url.Values {
	v := url.Values{}
	if p.Query != "" {
		v.Set("query", p.Query)
	}
	if p.LL != "" {
		v.Set("ll", p.LL)
	}
	if p.Radius > 0 {
		v.Set("radius", strconv.Itoa(p.Radius))
	}
	if len(p.Categories) > 0 {
		ids := make([]string, len(p.Categories))
		for i, id := range p.Categories {
			ids[i] = strconv.Itoa(id)
		}
		v.Set("categories", strings.Join(ids, ","))
	}
	if len(p.Fields) > 0 {
		v.Set("fields", strings.Join(p.Fields, ","))
	}
	if p.MinPrice > 0 {
		v.Set("min_price", strconv.Itoa(p.MinPrice))
	}
	if p.MaxPrice > 0 {
		v.Set("max_price", strconv.Itoa(p.MaxPrice))
	}
	if p.OpenNow {
		v.Set("open_now", "true")
	}
	if p.Near != "" {
		v.Set("near", p.Near)
	}
	if p.Sort != "" {
		v.Set("sort", p.Sort)
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	return v
}

// SearchResponse is the body of a place search
type SearchResponse struct {
	Results []model.Place `json:"results"`
}

// Client calls the places search and details endpoints
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client from configuration
func NewClient(cfg config.FoursquareConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Search returns the places matching params
func (c *Client) Search(ctx context.Context, params SearchParams) ([]model.Place, error) {
	var resp SearchResponse
	if err := c.get(ctx, "/places/search", params.Values(), &resp); err != nil {
		return nil, err
	}
	if resp.Results == nil {
		return []model.Place{}, nil
	}
	return resp.Results, nil
}

// Details returns the full record of one place
func (c *Client) Details(ctx context.Context, fsqID string, fields []string) (*model.Place, error) {
	v := url.Values{}
	if len(fields) > 0 {
		v.Set("fields", strings.Join(fields, ","))
	}
	var place model.Place
	if err := c.get(ctx, "/places/"+url.PathEscape(fsqID), v, &place); err != nil {
		return nil, err
	}
	return &place, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("foursquare request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("foursquare request",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode foursquare response: %w", err)
	}
	return nil
}
