// README: Google Directions backend for driving routes.
package maps

import (
	"context"
	"fmt"

	gmaps "googlemaps.github.io/maps"

	"vtcride/internal/types"
)

// RouteService handles interactions with the Google Directions API.
type RouteService struct {
	client   *gmaps.Client
	language string
	region   string
}

func NewRouteService(client *gmaps.Client, language, region string) *RouteService {
	return &RouteService{client: client, language: language, region: region}
}

// Directions requests a single driving route and sums its legs. The geometry
// is decoded from the overview polyline.
func (s *RouteService) Directions(ctx context.Context, origin, destination types.Point) (Route, error) {
	r := &gmaps.DirectionsRequest{
		Origin:       origin.LatLng(),
		Destination:  destination.LatLng(),
		Mode:         gmaps.TravelModeDriving,
		Alternatives: false,
		Language:     s.language,
		Region:       s.region,
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return Route{}, fmt.Errorf("directions api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return Route{}, ErrNoRoute
	}

	best := routes[0]
	var out Route
	for _, leg := range best.Legs {
		out.DistanceMeters += float64(leg.Distance.Meters)
		out.DurationSeconds += leg.Duration.Seconds()
	}

	path, err := best.OverviewPolyline.Decode()
	if err != nil {
		return Route{}, fmt.Errorf("decoding route polyline: %w", err)
	}
	out.Geometry = make([]types.Point, 0, len(path))
	for _, ll := range path {
		out.Geometry = append(out.Geometry, types.Point{Lat: ll.Lat, Lng: ll.Lng})
	}
	return out, nil
}

// GoogleProvider pairs the Google geocoder and router.
type GoogleProvider struct {
	*PlacesService
	*RouteService
}

func NewGoogleProvider(client *gmaps.Client, region Region) *GoogleProvider {
	return &GoogleProvider{
		PlacesService: NewPlacesService(client, region),
		RouteService:  NewRouteService(client, region.Language, region.Country),
	}
}

func (p *GoogleProvider) Name() string { return googleName }
