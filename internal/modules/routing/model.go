// README: Route values as shown to riders: raw provider units plus display labels.
package routing

import (
	"fmt"
	"math"

	"vtcride/internal/types"
)

// RouteInfo is replaced wholesale on every successful lookup.
type RouteInfo struct {
	DistanceMeters  float64       `json:"distance_meters"`
	DurationSeconds float64       `json:"duration_seconds"`
	DistanceKm      float64       `json:"distance_km"`
	DurationMin     float64       `json:"duration_min"`
	DistanceLabel   string        `json:"distance_label"`
	DurationLabel   string        `json:"duration_label"`
	Geometry        []types.Point `json:"geometry"`
}

// FormatDistance renders kilometres with one decimal, e.g. "4.2 km".
func FormatDistance(km float64) string {
	return fmt.Sprintf("%.1f km", km)
}

// FormatDuration renders whole minutes, e.g. "12 min".
func FormatDuration(min float64) string {
	return fmt.Sprintf("%d min", int(math.Round(min)))
}
