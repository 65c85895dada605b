// README: Google Geocoding backend for address search, scoped to the service region.
package maps

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	gmaps "googlemaps.github.io/maps"

	"vtcride/internal/types"
)

const googleName = "google"

// NewGoogleClient builds the shared Google Maps client. baseURL is only set in tests.
func NewGoogleClient(apiKey string, httpClient *http.Client, baseURL string) (*gmaps.Client, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	opts := []gmaps.ClientOption{gmaps.WithAPIKey(apiKey)}
	if httpClient != nil {
		opts = append(opts, gmaps.WithHTTPClient(httpClient))
	}
	if baseURL != "" {
		opts = append(opts, gmaps.WithBaseURL(baseURL))
	}
	client, err := gmaps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return client, nil
}

// PlacesService geocodes free text with the Google Geocoding API.
type PlacesService struct {
	client *gmaps.Client
	region Region
}

func NewPlacesService(client *gmaps.Client, region Region) *PlacesService {
	return &PlacesService{client: client, region: region}
}

// contextTypes are the address components shown as the secondary label.
var contextTypes = []string{"locality", "postal_town", "administrative_area_level_1", "country"}

// Geocode biases the lookup to the region bounds and country, then drops
// anything outside the bounding box since Google treats bounds as a hint only.
// Google has no equivalent of the place-type filter, so Region.Types is unused here.
func (s *PlacesService) Geocode(ctx context.Context, query string) ([]PlaceCandidate, error) {
	b := s.region.BBox
	r := &gmaps.GeocodingRequest{
		Address: query,
		Bounds: &gmaps.LatLngBounds{
			NorthEast: gmaps.LatLng{Lat: b.MaxLat, Lng: b.MaxLng},
			SouthWest: gmaps.LatLng{Lat: b.MinLat, Lng: b.MinLng},
		},
		Language: s.region.Language,
	}
	if s.region.Country != "" {
		r.Region = strings.ToLower(s.region.Country)
		r.Components = map[gmaps.Component]string{
			gmaps.ComponentCountry: strings.ToUpper(s.region.Country),
		}
	}

	results, err := s.client.Geocode(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("geocoding api error: %w", err)
	}

	var out []PlaceCandidate
	for _, res := range results {
		p := types.Point{Lat: res.Geometry.Location.Lat, Lng: res.Geometry.Location.Lng}
		if !b.Contains(p) {
			continue
		}
		label, _, _ := strings.Cut(res.FormattedAddress, ", ")
		var names []string
		for _, c := range res.AddressComponents {
			if hasAnyType(c.Types, contextTypes) {
				names = append(names, c.LongName)
			}
		}
		out = append(out, PlaceCandidate{
			ID:             res.PlaceID,
			Label:          label,
			SecondaryLabel: secondaryLabel(names, res.FormattedAddress),
			PlaceName:      res.FormattedAddress,
			Coordinates:    p,
		})
		if s.region.Limit > 0 && len(out) >= s.region.Limit {
			break
		}
	}
	return out, nil
}

func hasAnyType(have, want []string) bool {
	for _, h := range have {
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}
