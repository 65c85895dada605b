// README: Route resolver converts provider directions into RouteInfo.
package routing

import (
	"context"
	"fmt"

	"vtcride/internal/logger"
	"vtcride/internal/maps"
	"vtcride/internal/types"
)

type Resolver struct {
	router maps.Router
	log    logger.Logger
}

func NewResolver(router maps.Router, log logger.Logger) *Resolver {
	if log == nil {
		log = logger.NewNop()
	}
	return &Resolver{router: router, log: log}
}

// Resolve looks up the driving route between pickup and dropoff. Only the
// first route is used.
func (r *Resolver) Resolve(ctx context.Context, pickup, dropoff types.Point) (RouteInfo, error) {
	if r.router == nil {
		return RouteInfo{}, maps.ErrNotConfigured
	}
	route, err := r.router.Directions(ctx, pickup, dropoff)
	if err != nil {
		return RouteInfo{}, fmt.Errorf("resolve route: %w", err)
	}
	info := FromRoute(route)
	r.log.Debug("route resolved",
		logger.Float64("distance_km", info.DistanceKm),
		logger.Float64("duration_min", info.DurationMin),
		logger.Int("points", len(info.Geometry)),
	)
	return info, nil
}

func FromRoute(route maps.Route) RouteInfo {
	km := route.DistanceMeters / 1000
	min := route.DurationSeconds / 60
	return RouteInfo{
		DistanceMeters:  route.DistanceMeters,
		DurationSeconds: route.DurationSeconds,
		DistanceKm:      km,
		DurationMin:     min,
		DistanceLabel:   FormatDistance(km),
		DurationLabel:   FormatDuration(min),
		Geometry:        route.Geometry,
	}
}
