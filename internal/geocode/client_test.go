package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexivanou/findfun-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const bostonBody = `{
  "status": "OK",
  "results": [{
    "formatted_address": "Boston, MA, USA",
    "address_components": [
      {"long_name": "Boston", "short_name": "Boston", "types": ["locality", "political"]},
      {"long_name": "Suffolk County", "short_name": "Suffolk County", "types": ["administrative_area_level_2", "political"]},
      {"long_name": "Massachusetts", "short_name": "MA", "types": ["administrative_area_level_1", "political"]},
      {"long_name": "United States", "short_name": "US", "types": ["country", "political"]}
    ],
    "geometry": {"location": {"lat": 42.3600825, "lng": -71.0588801}}
  }]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.GeocodingConfig{APIKey: "geo-key", BaseURL: srv.URL}, zap.NewNop())
}

func TestClient_Resolve(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1 Harbor Way, Boston", r.URL.Query().Get("address"))
		assert.Equal(t, "geo-key", r.URL.Query().Get("key"))
		w.Write([]byte(bostonBody))
	})

	info, err := client.Resolve(context.Background(), "1 Harbor Way, Boston")
	require.NoError(t, err)
	assert.Equal(t, "Boston", info.Name)
	assert.Equal(t, "MA", info.Region)
	assert.Equal(t, "US", info.Country)
	assert.Equal(t, "Boston, MA, USA", info.FormattedAddress)
	assert.InDelta(t, 42.36, info.Location.Latitude, 0.001)
}

func TestClient_ResolveFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "Zero results", status: http.StatusOK, body: `{"status":"ZERO_RESULTS","results":[]}`, wantErr: ErrNoResults},
		{name: "No locality", status: http.StatusOK, body: `{"status":"OK","results":[{"address_components":[{"long_name":"France","short_name":"FR","types":["country"]}]}]}`, wantErr: ErrNoResults},
		{name: "Denied", status: http.StatusOK, body: `{"status":"REQUEST_DENIED","error_message":"The provided API key is invalid."}`},
		{name: "HTTP error", status: http.StatusBadGateway, body: "bad gateway"},
		{name: "Malformed", status: http.StatusOK, body: `{"status":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			info, err := client.Resolve(context.Background(), "somewhere")
			require.Error(t, err)
			assert.Nil(t, info)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestClient_MissingKey(t *testing.T) {
	client := NewClient(config.GeocodingConfig{BaseURL: "http://127.0.0.1:1"}, zap.NewNop())
	_, err := client.Resolve(context.Background(), "Boston")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}
