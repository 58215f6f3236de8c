package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"slotbook/models"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

// ErrNoResults is returned when the address could not be resolved.
var ErrNoResults = errors.New("address could not be geocoded")

// Geocoder turns a free-text address into coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*models.GeoPoint, error)
}

// GoogleGeocoder calls the Google Geocoding API.
type GoogleGeocoder struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	return &GoogleGeocoder{
		APIKey:     apiKey,
		BaseURL:    defaultBaseURL,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}
}

type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

func (g *GoogleGeocoder) Geocode(ctx context.Context, address string) (*models.GeoPoint, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrNoResults
	}
	if g.APIKey == "" {
		return nil, errors.New("geocoding: API key is not configured")
	}

	q := url.Values{}
	q.Set("address", address)
	q.Set("key", g.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("geocoding: build request: %w", err)
	}
	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding: unexpected status %d", resp.StatusCode)
	}

	var data geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode geocoding response: %w", err)
	}

	switch data.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, ErrNoResults
	default:
		return nil, fmt.Errorf("geocoding: status %s: %s", data.Status, data.ErrorMessage)
	}
	if len(data.Results) == 0 {
		return nil, ErrNoResults
	}

	loc := data.Results[0].Geometry.Location
	return models.NewGeoPoint(loc.Lat, loc.Lng), nil
}
