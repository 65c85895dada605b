// README: Geographic primitives shared across modules.
package types

import (
	"fmt"
	"strconv"
)

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// LngLat formats the point in the longitude-first order most map APIs expect.
func (p Point) LngLat() string {
	return formatCoord(p.Lng) + "," + formatCoord(p.Lat)
}

// LatLng formats the point latitude-first.
func (p Point) LatLng() string {
	return formatCoord(p.Lat) + "," + formatCoord(p.Lng)
}

func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// BBox is a longitude/latitude rectangle.
type BBox struct {
	MinLng float64 `json:"min_lng"`
	MinLat float64 `json:"min_lat"`
	MaxLng float64 `json:"max_lng"`
	MaxLat float64 `json:"max_lat"`
}

// String renders minLng,minLat,maxLng,maxLat.
func (b BBox) String() string {
	return fmt.Sprintf("%s,%s,%s,%s",
		formatCoord(b.MinLng), formatCoord(b.MinLat), formatCoord(b.MaxLng), formatCoord(b.MaxLat))
}

func (b BBox) Contains(p Point) bool {
	return p.Lng >= b.MinLng && p.Lng <= b.MaxLng && p.Lat >= b.MinLat && p.Lat <= b.MaxLat
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
