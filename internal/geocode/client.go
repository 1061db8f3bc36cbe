// Package geocode resolves free-text addresses to a locality through the
// Google Geocoding API.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/alexivanou/findfun-api/internal/config"
	"github.com/alexivanou/findfun-api/internal/model"
	"go.uber.org/zap"
)

var (
	ErrMissingAPIKey = errors.New("geocode: api key is not configured")
	ErrNoResults     = errors.New("geocode: no results")
)

type response struct {
	Status       string   `json:"status"`
	ErrorMessage string   `json:"error_message"`
	Results      []result `json:"results"`
}

type result struct {
	AddressComponents []component `json:"address_components"`
	FormattedAddress  string      `json:"formatted_address"`
	Geometry          struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

type component struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

func (c component) is(kind string) bool {
	for _, t := range c.Types {
		if t == kind {
			return true
		}
	}
	return false
}

// Client calls the geocoding endpoint
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg config.GeocodingConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Resolve geocodes address and returns the locality of the first result
func (c *Client) Resolve(ctx context.Context, address string) (*model.CityInfo, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	q := url.Values{}
	q.Set("address", address)
	q.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("geocode returned status %d: %s", resp.StatusCode, string(body))
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode geocode response: %w", err)
	}

	c.logger.Debug("geocode request", zap.String("address", address), zap.String("status", body.Status))

	switch body.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, ErrNoResults
	default:
		return nil, fmt.Errorf("geocode status %s: %s", body.Status, body.ErrorMessage)
	}
	if len(body.Results) == 0 {
		return nil, ErrNoResults
	}

	first := body.Results[0]
	info := &model.CityInfo{
		FormattedAddress: first.FormattedAddress,
		Location: model.GeoPoint{
			Latitude:  first.Geometry.Location.Lat,
			Longitude: first.Geometry.Location.Lng,
		},
	}
	for _, comp := range first.AddressComponents {
		switch {
		case comp.is("locality"):
			info.Name = comp.LongName
		case comp.is("administrative_area_level_1"):
			info.Region = comp.ShortName
		case comp.is("country"):
			info.Country = comp.ShortName
		}
	}
	if info.Name == "" {
		return nil, ErrNoResults
	}
	return info, nil
}
