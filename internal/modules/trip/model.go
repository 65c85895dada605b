// README: Trip selection state shared by the interactive session and the stateless estimator.
package trip

import (
	"context"

	"vtcride/internal/modules/pricing"
	"vtcride/internal/modules/routing"
	"vtcride/internal/types"
)

var ErrUnknownVehicleClass = pricing.ErrUnknownVehicleClass

// Field names one of the two address inputs.
type Field string

const (
	FieldPickup  Field = "pickup"
	FieldDropoff Field = "dropoff"
)

// Location holds the typed address and, once a place is chosen, its
// coordinates. Editing the address drops the coordinates.
type Location struct {
	Address     string       `json:"address"`
	Coordinates *types.Point `json:"coordinates,omitempty"`
}

func (l Location) Resolved() bool { return l.Coordinates != nil }

// Snapshot is a copy of the session state published after every change.
type Snapshot struct {
	ID             string             `json:"id"`
	Pickup         Location           `json:"pickup"`
	Dropoff        Location           `json:"dropoff"`
	Route          *routing.RouteInfo `json:"route,omitempty"`
	RouteLoading   bool               `json:"route_loading"`
	RouteError     string             `json:"route_error,omitempty"`
	VehicleClassID string             `json:"vehicle_class_id"`
	EstimatedFare  *types.Money       `json:"estimated_fare,omitempty"`
	Quotes         []pricing.Quote    `json:"quotes,omitempty"`
}

// RouteResolver is satisfied by *routing.Resolver.
type RouteResolver interface {
	Resolve(ctx context.Context, pickup, dropoff types.Point) (routing.RouteInfo, error)
}
