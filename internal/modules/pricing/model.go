// README: Tariff and vehicle-class catalog used to price a route.
package pricing

import (
	"errors"
	"fmt"

	"vtcride/internal/types"
)

var (
	ErrUnknownVehicleClass = errors.New("unknown vehicle class")
	ErrInvalidRoute        = errors.New("invalid route measurements")
	ErrEmptyCatalog        = errors.New("vehicle class catalog is empty")
)

// Tariff holds the system-wide fare constants. All values are in Currency units.
type Tariff struct {
	BaseFare    float64 `json:"base_fare"`
	PerKm       float64 `json:"per_km"`
	PerMin      float64 `json:"per_min"`
	MinimumFare float64 `json:"minimum_fare"`
	Currency    string  `json:"currency"`
}

// DefaultTariff is the Paris tariff.
func DefaultTariff() Tariff {
	return Tariff{
		BaseFare:    2.60,
		PerKm:       1.05,
		PerMin:      0.35,
		MinimumFare: 7.00,
		Currency:    "EUR",
	}
}

func (t Tariff) Validate() error {
	if t.BaseFare < 0 || t.PerKm < 0 || t.PerMin < 0 || t.MinimumFare < 0 {
		return fmt.Errorf("tariff values must be non-negative: %+v", t)
	}
	if t.Currency == "" {
		return errors.New("tariff currency is required")
	}
	return nil
}

type VehicleClass struct {
	ID               string  `json:"id"`
	DisplayName      string  `json:"display_name"`
	PriceMultiplier  float64 `json:"price_multiplier"`
	Description      string  `json:"description"`
	EstimatedArrival string  `json:"estimated_arrival"`
}

// Catalog is ordered; the first entry is the default selection.
type Catalog []VehicleClass

func DefaultCatalog() Catalog {
	return Catalog{
		{ID: "standard", DisplayName: "Standard", PriceMultiplier: 1.0, Description: "Affordable everyday rides", EstimatedArrival: "3-5 min"},
		{ID: "plus", DisplayName: "Plus", PriceMultiplier: 1.5, Description: "Premium cars with top-rated drivers", EstimatedArrival: "5-8 min"},
		{ID: "xl", DisplayName: "XL", PriceMultiplier: 1.8, Description: "Room for up to 6 passengers", EstimatedArrival: "6-10 min"},
		{ID: "electric", DisplayName: "Electric", PriceMultiplier: 1.2, Description: "Zero-emission vehicles", EstimatedArrival: "4-7 min"},
	}
}

func (c Catalog) Validate() error {
	if len(c) == 0 {
		return ErrEmptyCatalog
	}
	seen := make(map[string]bool, len(c))
	for _, vc := range c {
		if vc.ID == "" {
			return errors.New("vehicle class id is required")
		}
		if seen[vc.ID] {
			return fmt.Errorf("duplicate vehicle class %q", vc.ID)
		}
		seen[vc.ID] = true
		if vc.PriceMultiplier < 1 {
			return fmt.Errorf("vehicle class %q: multiplier %v must be >= 1", vc.ID, vc.PriceMultiplier)
		}
	}
	return nil
}

func (c Catalog) Lookup(id string) (VehicleClass, bool) {
	for _, vc := range c {
		if vc.ID == id {
			return vc, true
		}
	}
	return VehicleClass{}, false
}

// Quote is the fare of one vehicle class for a given route.
type Quote struct {
	VehicleClass VehicleClass `json:"vehicle_class"`
	Fare         types.Money  `json:"fare"`
}
