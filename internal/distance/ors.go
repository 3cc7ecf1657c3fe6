package distance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ORSClient talks to the openrouteservice geocoding and directions API.
type ORSClient struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func NewORSClient(baseURL, apiKey string, timeout time.Duration) *ORSClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ORSClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

type orsGeocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

type orsDirectionsRequest struct {
	Coordinates [][2]float64 `json:"coordinates"`
}

type orsDirectionsResponse struct {
	Routes []struct {
		Summary struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"summary"`
	} `json:"routes"`
}

func (c *ORSClient) Geocode(ctx context.Context, query string) (Coordinates, error) {
	if c.APIKey == "" {
		return Coordinates{}, ErrNotConfigured
	}

	params := url.Values{}
	params.Set("api_key", c.APIKey)
	params.Set("text", query)
	params.Set("boundary.country", "DE")
	params.Set("size", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/geocode/search?"+params.Encode(), nil)
	if err != nil {
		return Coordinates{}, err
	}
	req.Header.Set("Accept", "application/json")

	var out orsGeocodeResponse
	if err := c.do(req, &out); err != nil {
		return Coordinates{}, fmt.Errorf("geocode %q: %w", query, err)
	}
	if len(out.Features) == 0 || len(out.Features[0].Geometry.Coordinates) < 2 {
		return Coordinates{}, fmt.Errorf("%w: %s", ErrNoMatch, query)
	}
	coords := out.Features[0].Geometry.Coordinates
	return Coordinates{Lon: coords[0], Lat: coords[1]}, nil
}

func (c *ORSClient) Route(ctx context.Context, from, to Coordinates) (Route, error) {
	if c.APIKey == "" {
		return Route{}, ErrNotConfigured
	}

	body, err := json.Marshal(orsDirectionsRequest{
		Coordinates: [][2]float64{{from.Lon, from.Lat}, {to.Lon, to.Lat}},
	})
	if err != nil {
		return Route{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v2/directions/driving-car", bytes.NewReader(body))
	if err != nil {
		return Route{}, err
	}
	req.Header.Set("Authorization", c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	var out orsDirectionsResponse
	if err := c.do(req, &out); err != nil {
		return Route{}, fmt.Errorf("directions: %w", err)
	}
	if len(out.Routes) == 0 {
		return Route{}, ErrNoMatch
	}
	return Route{
		DistanceMeters:  out.Routes[0].Summary.Distance,
		DurationSeconds: out.Routes[0].Summary.Duration,
	}, nil
}

func (c *ORSClient) do(req *http.Request, out any) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
