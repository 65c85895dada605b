// README: Pricing service computes fare estimates from route distance and duration.
package pricing

import (
	"fmt"
	"math"

	"vtcride/internal/types"
)

// ComputeFare applies max((base + km*perKm + min*perMin) * multiplier, minimum).
// A zero multiplier is treated as omitted and defaults to 1. Inputs are not
// validated: NaN or negative values propagate to the result.
func ComputeFare(t Tariff, distanceKm, durationMin, multiplier float64) float64 {
	if multiplier == 0 {
		multiplier = 1
	}
	fare := t.BaseFare + distanceKm*t.PerKm + durationMin*t.PerMin
	return math.Max(fare*multiplier, t.MinimumFare)
}

type Service struct {
	tariff  Tariff
	catalog Catalog
}

func NewService(tariff Tariff, catalog Catalog) (*Service, error) {
	if err := tariff.Validate(); err != nil {
		return nil, err
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	cp := make(Catalog, len(catalog))
	copy(cp, catalog)
	return &Service{tariff: tariff, catalog: cp}, nil
}

func (s *Service) Tariff() Tariff {
	return s.tariff
}

// Catalog returns a copy of the vehicle-class catalog.
func (s *Service) Catalog() Catalog {
	cp := make(Catalog, len(s.catalog))
	copy(cp, s.catalog)
	return cp
}

func (s *Service) DefaultClassID() string {
	return s.catalog[0].ID
}

func (s *Service) HasClass(id string) bool {
	_, ok := s.catalog.Lookup(id)
	return ok
}

func (s *Service) ComputeFare(distanceKm, durationMin, multiplier float64) float64 {
	return ComputeFare(s.tariff, distanceKm, durationMin, multiplier)
}

// Estimate prices a route for one vehicle class.
func (s *Service) Estimate(distanceKm, durationMin float64, classID string) (Quote, error) {
	if err := validateMeasurements(distanceKm, durationMin); err != nil {
		return Quote{}, err
	}
	vc, ok := s.catalog.Lookup(classID)
	if !ok {
		return Quote{}, fmt.Errorf("%w: %q", ErrUnknownVehicleClass, classID)
	}
	return s.quote(distanceKm, durationMin, vc), nil
}

// EstimateAll prices a route for every vehicle class, in catalog order.
func (s *Service) EstimateAll(distanceKm, durationMin float64) ([]Quote, error) {
	if err := validateMeasurements(distanceKm, durationMin); err != nil {
		return nil, err
	}
	quotes := make([]Quote, 0, len(s.catalog))
	for _, vc := range s.catalog {
		quotes = append(quotes, s.quote(distanceKm, durationMin, vc))
	}
	return quotes, nil
}

func (s *Service) quote(distanceKm, durationMin float64, vc VehicleClass) Quote {
	return Quote{
		VehicleClass: vc,
		Fare: types.Money{
			Amount:   s.ComputeFare(distanceKm, durationMin, vc.PriceMultiplier),
			Currency: s.tariff.Currency,
		},
	}
}

func validateMeasurements(distanceKm, durationMin float64) error {
	for _, v := range []float64{distanceKm, durationMin} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: distance=%v duration=%v", ErrInvalidRoute, distanceKm, durationMin)
		}
	}
	return nil
}
