// README: Provider-neutral geocoding and directions contracts.
package maps

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vtcride/internal/types"
)

var (
	ErrNotConfigured = errors.New("maps access credential is not configured")
	ErrNoRoute       = errors.New("no route found")
)

// PlaceCandidate is one geocoding suggestion.
type PlaceCandidate struct {
	ID             string      `json:"id"`
	Label          string      `json:"label"`
	SecondaryLabel string      `json:"secondary_label"`
	PlaceName      string      `json:"place_name"`
	Coordinates    types.Point `json:"coordinates"`
}

// Route is the raw first route returned by a directions provider.
type Route struct {
	DistanceMeters  float64
	DurationSeconds float64
	Geometry        []types.Point
}

// Region scopes geocoding to the service area.
type Region struct {
	Country   string
	BBox      types.BBox
	Proximity types.Point
	Types     []string
	Language  string
	Limit     int
}

type Geocoder interface {
	// Geocode returns candidates for query ordered by provider relevance.
	Geocode(ctx context.Context, query string) ([]PlaceCandidate, error)
}

type Router interface {
	// Directions returns the best driving route from origin to destination.
	Directions(ctx context.Context, origin, destination types.Point) (Route, error)
}

// Provider is a full maps backend.
type Provider interface {
	Geocoder
	Router
	Name() string
}

// StatusError is returned when a provider answers with a non-success status.
type StatusError struct {
	Provider string
	Op       string
	Code     int
	Message  string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Provider, e.Op, e.Code, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Provider, e.Op, e.Code)
}

// secondaryLabel joins the context hierarchy, falling back to the place name
// without its first component.
func secondaryLabel(context []string, placeName string) string {
	if len(context) > 0 {
		return strings.Join(context, ", ")
	}
	parts := strings.Split(placeName, ", ")
	if len(parts) < 2 {
		return ""
	}
	return strings.Join(parts[1:], ", ")
}
