package trip

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vtcride/internal/maps"
	"vtcride/internal/modules/pricing"
	"vtcride/internal/types"
)

func TestService_Estimate(t *testing.T) {
	svc := NewService(&fakeResolver{}, newPricing(t))

	est, err := svc.Estimate(context.Background(), EstimateRequest{
		Pickup:  eiffel.Coordinates,
		Dropoff: louvre.Coordinates,
	})
	require.NoError(t, err)
	assert.Equal(t, "standard", est.VehicleClassID)
	assert.InDelta(t, 20.10, est.EstimatedFare.Amount, 1e-9)
	assert.Equal(t, "€20.10", est.EstimatedFare.String())
	require.Len(t, est.Quotes, 4)
	assert.Equal(t, "xl", est.Quotes[2].VehicleClass.ID)
	assert.InDelta(t, 20.10*1.8, est.Quotes[2].Fare.Amount, 1e-9)
}

func TestService_EstimateValidation(t *testing.T) {
	r := &fakeResolver{}
	svc := NewService(r, newPricing(t))

	_, err := svc.Estimate(context.Background(), EstimateRequest{
		Pickup: eiffel.Coordinates, Dropoff: louvre.Coordinates, VehicleClassID: "van",
	})
	assert.ErrorIs(t, err, ErrUnknownVehicleClass)

	_, err = svc.Estimate(context.Background(), EstimateRequest{
		Pickup: types.Point{Lat: 120, Lng: 2}, Dropoff: louvre.Coordinates,
	})
	assert.ErrorIs(t, err, pricing.ErrInvalidRoute)
	assert.Equal(t, 0, r.callCount())
}

func TestService_EstimateProviderError(t *testing.T) {
	svc := NewService(&fakeResolver{err: maps.ErrNoRoute}, newPricing(t))
	_, err := svc.Estimate(context.Background(), EstimateRequest{Pickup: eiffel.Coordinates, Dropoff: louvre.Coordinates})
	assert.ErrorIs(t, err, maps.ErrNoRoute)
}
