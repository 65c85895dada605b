// README: Mapbox geocoding and directions client over the public REST API.
package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"vtcride/internal/types"
)

const mapboxName = "mapbox"

type MapboxClient struct {
	baseURL string
	token   string
	region  Region
	http    *http.Client
}

// NewMapboxClient returns ErrNotConfigured when token is empty so callers never
// hit the network without a credential.
func NewMapboxClient(baseURL, token string, region Region, httpClient *http.Client) (*MapboxClient, error) {
	if token == "" {
		return nil, ErrNotConfigured
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &MapboxClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		region:  region,
		http:    httpClient,
	}, nil
}

func (c *MapboxClient) Name() string { return mapboxName }

type mapboxFeature struct {
	ID        string     `json:"id"`
	PlaceName string     `json:"place_name"`
	Text      string     `json:"text"`
	Center    [2]float64 `json:"center"` // lng, lat
	Context   []struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"context"`
}

type mapboxGeocodeResponse struct {
	Features []mapboxFeature `json:"features"`
}

func (c *MapboxClient) Geocode(ctx context.Context, query string) ([]PlaceCandidate, error) {
	q := url.Values{}
	q.Set("access_token", c.token)
	if c.region.Country != "" {
		q.Set("country", c.region.Country)
	}
	q.Set("bbox", c.region.BBox.String())
	q.Set("proximity", c.region.Proximity.LngLat())
	if len(c.region.Types) > 0 {
		q.Set("types", strings.Join(c.region.Types, ","))
	}
	if c.region.Limit > 0 {
		q.Set("limit", strconv.Itoa(c.region.Limit))
	}
	if c.region.Language != "" {
		q.Set("language", c.region.Language)
	}
	endpoint := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%s.json?%s", c.baseURL, url.PathEscape(query), q.Encode())

	var resp mapboxGeocodeResponse
	if err := c.getJSON(ctx, "geocoding", endpoint, &resp); err != nil {
		return nil, err
	}

	out := make([]PlaceCandidate, 0, len(resp.Features))
	for _, f := range resp.Features {
		names := make([]string, 0, len(f.Context))
		for _, cx := range f.Context {
			names = append(names, cx.Text)
		}
		out = append(out, PlaceCandidate{
			ID:             f.ID,
			Label:          f.Text,
			SecondaryLabel: secondaryLabel(names, f.PlaceName),
			PlaceName:      f.PlaceName,
			Coordinates:    types.Point{Lat: f.Center[1], Lng: f.Center[0]},
		})
	}
	return out, nil
}

type mapboxDirectionsResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry struct {
			Coordinates [][2]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

func (c *MapboxClient) Directions(ctx context.Context, origin, destination types.Point) (Route, error) {
	q := url.Values{}
	q.Set("geometries", "geojson")
	q.Set("overview", "full")
	q.Set("alternatives", "false")
	q.Set("access_token", c.token)
	// Coordinates are plain numbers; escaping would mangle the ',' and ';' separators.
	coords := origin.LngLat() + ";" + destination.LngLat()
	endpoint := fmt.Sprintf("%s/directions/v5/mapbox/driving/%s?%s", c.baseURL, coords, q.Encode())

	var resp mapboxDirectionsResponse
	if err := c.getJSON(ctx, "directions", endpoint, &resp); err != nil {
		return Route{}, err
	}
	if len(resp.Routes) == 0 {
		return Route{}, ErrNoRoute
	}

	r := resp.Routes[0]
	geometry := make([]types.Point, 0, len(r.Geometry.Coordinates))
	for _, xy := range r.Geometry.Coordinates {
		geometry = append(geometry, types.Point{Lat: xy[1], Lng: xy[0]})
	}
	return Route{
		DistanceMeters:  r.Distance,
		DurationSeconds: r.Duration,
		Geometry:        geometry,
	}, nil
}

func (c *MapboxClient) getJSON(ctx context.Context, op, endpoint string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("mapbox %s: building request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("mapbox %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Message string `json:"message"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = json.Unmarshal(raw, &body)
		return &StatusError{Provider: mapboxName, Op: op, Code: resp.StatusCode, Message: body.Message}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("mapbox %s: decoding response: %w", op, err)
	}
	return nil
}
