// README: Stateless estimator: resolve a route and price it in one call.
package trip

import (
	"context"
	"fmt"

	"vtcride/internal/modules/pricing"
	"vtcride/internal/modules/routing"
	"vtcride/internal/types"
)

type EstimateRequest struct {
	Pickup         types.Point `json:"pickup"`
	Dropoff        types.Point `json:"dropoff"`
	VehicleClassID string      `json:"vehicle_class_id"`
}

type Estimate struct {
	Route          routing.RouteInfo `json:"route"`
	VehicleClassID string            `json:"vehicle_class_id"`
	EstimatedFare  types.Money       `json:"estimated_fare"`
	Quotes         []pricing.Quote   `json:"quotes"`
}

type Service struct {
	resolver RouteResolver
	pricing  *pricing.Service
}

func NewService(resolver RouteResolver, pricing *pricing.Service) *Service {
	return &Service{resolver: resolver, pricing: pricing}
}

// Validate checks coordinates and the vehicle class before any provider call.
// An empty class id selects the catalog default.
func (s *Service) Validate(req *EstimateRequest) error {
	if !req.Pickup.Valid() || !req.Dropoff.Valid() {
		return fmt.Errorf("%w: coordinates out of range", pricing.ErrInvalidRoute)
	}
	if req.VehicleClassID == "" {
		req.VehicleClassID = s.pricing.DefaultClassID()
	}
	if !s.pricing.HasClass(req.VehicleClassID) {
		return fmt.Errorf("%w: %q", ErrUnknownVehicleClass, req.VehicleClassID)
	}
	return nil
}

func (s *Service) Estimate(ctx context.Context, req EstimateRequest) (Estimate, error) {
	if err := s.Validate(&req); err != nil {
		return Estimate{}, err
	}
	info, err := s.resolver.Resolve(ctx, req.Pickup, req.Dropoff)
	if err != nil {
		return Estimate{}, err
	}
	quotes, err := s.pricing.EstimateAll(info.DistanceKm, info.DurationMin)
	if err != nil {
		return Estimate{}, err
	}
	out := Estimate{Route: info, VehicleClassID: req.VehicleClassID, Quotes: quotes}
	for _, q := range quotes {
		if q.VehicleClass.ID == req.VehicleClassID {
			out.EstimatedFare = q.Fare
		}
	}
	return out, nil
}
