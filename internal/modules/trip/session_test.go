package trip

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vtcride/internal/maps"
	"vtcride/internal/modules/geocoding"
	"vtcride/internal/modules/pricing"
	"vtcride/internal/modules/routing"
	"vtcride/internal/types"
)

var (
	eiffel = maps.PlaceCandidate{
		ID: "poi.1", Label: "Tour Eiffel", PlaceName: "Tour Eiffel, Paris, France",
		Coordinates: types.Point{Lat: 48.8584, Lng: 2.2945},
	}
	louvre = maps.PlaceCandidate{
		ID: "poi.2", Label: "Louvre", PlaceName: "Musée du Louvre, Paris, France",
		Coordinates: types.Point{Lat: 48.8606, Lng: 2.3376},
	}
)

type resolveCall struct {
	pickup, dropoff types.Point
}

// fakeResolver returns 10 km / 20 min unless a per-pickup delay or error is set.
type fakeResolver struct {
	mu     sync.Mutex
	calls  []resolveCall
	delays map[types.Point]time.Duration
	err    error
}

func (f *fakeResolver) Resolve(ctx context.Context, pickup, dropoff types.Point) (routing.RouteInfo, error) {
	f.mu.Lock()
	f.calls = append(f.calls, resolveCall{pickup, dropoff})
	d := f.delays[pickup]
	err := f.err
	f.mu.Unlock()

	select {
	case <-time.After(d):
	case <-ctx.Done():
		return routing.RouteInfo{}, ctx.Err()
	}
	if err != nil {
		return routing.RouteInfo{}, err
	}
	return routing.FromRoute(maps.Route{
		DistanceMeters:  10000,
		DurationSeconds: 1200,
		Geometry:        []types.Point{pickup, dropoff},
	}), nil
}

func (f *fakeResolver) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type snapshots struct {
	mu   sync.Mutex
	list []Snapshot
}

func (s *snapshots) add(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list = append(s.list, snap)
}

func (s *snapshots) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.list)
}

func (s *snapshots) last() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list[len(s.list)-1]
}

func newPricing(t *testing.T) *pricing.Service {
	t.Helper()
	svc, err := pricing.NewService(pricing.DefaultTariff(), pricing.DefaultCatalog())
	require.NoError(t, err)
	return svc
}

func newSession(t *testing.T, r RouteResolver) (*Session, *snapshots) {
	t.Helper()
	snaps := &snapshots{}
	s := NewSession(context.Background(), Config{
		Resolver: r,
		Pricing:  newPricing(t),
		OnChange: snaps.add,
	})
	t.Cleanup(s.Close)
	return s, snaps
}

func waitForRoute(t *testing.T, s *Session) Snapshot {
	t.Helper()
	require.Eventually(t, func() bool {
		snap := s.Snapshot()
		return snap.Route != nil && !snap.RouteLoading
	}, time.Second, 2*time.Millisecond)
	return s.Snapshot()
}

func TestSession_DefaultsToFirstVehicleClass(t *testing.T) {
	s, _ := newSession(t, &fakeResolver{})
	snap := s.Snapshot()
	assert.Equal(t, "standard", snap.VehicleClassID)
	assert.NotEmpty(t, snap.ID)
	assert.Nil(t, snap.Route)
	assert.Nil(t, snap.EstimatedFare)
}

func TestSession_RouteAndFareAfterBothSelections(t *testing.T) {
	r := &fakeResolver{}
	s, _ := newSession(t, r)

	s.SelectPickupPlace(eiffel)
	assert.Equal(t, 0, r.callCount())
	assert.Equal(t, "Tour Eiffel, Paris, France", s.Snapshot().Pickup.Address)

	s.SelectDropoffPlace(louvre)
	assert.True(t, s.Snapshot().RouteLoading)

	snap := waitForRoute(t, s)
	assert.Equal(t, "10.0 km", snap.Route.DistanceLabel)
	assert.Equal(t, "20 min", snap.Route.DurationLabel)
	require.NotNil(t, snap.EstimatedFare)
	// 2.60 + 10*1.05 + 20*0.35 = 20.10
	assert.InDelta(t, 20.10, snap.EstimatedFare.Amount, 1e-9)
	assert.Len(t, snap.Quotes, 4)
}

func TestSession_EditingTextInvalidatesCoordinatesAndRoute(t *testing.T) {
	s, _ := newSession(t, &fakeResolver{})
	s.SelectPickupPlace(eiffel)
	s.SelectDropoffPlace(louvre)
	waitForRoute(t, s)

	s.SetPickupAddress("Tour Eiffel, Paris, Franc")
	snap := s.Snapshot()
	assert.Nil(t, snap.Pickup.Coordinates)
	assert.Equal(t, "Tour Eiffel, Paris, Franc", snap.Pickup.Address)
	assert.NotNil(t, snap.Dropoff.Coordinates)
	assert.Nil(t, snap.Route)
	assert.Nil(t, snap.EstimatedFare)
	assert.Empty(t, snap.Quotes)
	assert.False(t, snap.RouteLoading)

	s.SetDropoffAddress("")
	assert.Nil(t, s.Snapshot().Dropoff.Coordinates)
}

func TestSession_SwapIsAtomic(t *testing.T) {
	r := &fakeResolver{}
	s, snaps := newSession(t, r)
	s.SelectPickupPlace(eiffel)
	s.SetDropoffAddress("12 rue de Rivoli")

	before := snaps.count()
	s.SwapPickupAndDropoff()
	require.Equal(t, before+1, snaps.count(), "swap must publish exactly once")

	snap := snaps.last()
	assert.Equal(t, "12 rue de Rivoli", snap.Pickup.Address)
	assert.Nil(t, snap.Pickup.Coordinates)
	assert.Equal(t, "Tour Eiffel, Paris, France", snap.Dropoff.Address)
	require.NotNil(t, snap.Dropoff.Coordinates)
	assert.Equal(t, eiffel.Coordinates, *snap.Dropoff.Coordinates)
	assert.Equal(t, 0, r.callCount())
}

func TestSession_SwapWithRouteLooksUpReverse(t *testing.T) {
	r := &fakeResolver{}
	s, _ := newSession(t, r)
	s.SelectPickupPlace(eiffel)
	s.SelectDropoffPlace(louvre)
	waitForRoute(t, s)

	s.SwapPickupAndDropoff()
	snap := waitForRoute(t, s)
	assert.Equal(t, louvre.Coordinates, *snap.Pickup.Coordinates)
	r.mu.Lock()
	last := r.calls[len(r.calls)-1]
	r.mu.Unlock()
	assert.Equal(t, louvre.Coordinates, last.pickup)
	assert.Equal(t, eiffel.Coordinates, last.dropoff)
}

func TestSession_VehicleSelectionDoesNotLookUpRoute(t *testing.T) {
	r := &fakeResolver{}
	s, _ := newSession(t, r)
	s.SelectPickupPlace(eiffel)
	s.SelectDropoffPlace(louvre)
	waitForRoute(t, s)
	calls := r.callCount()

	require.NoError(t, s.SelectVehicleClass("plus"))
	snap := s.Snapshot()
	assert.Equal(t, calls, r.callCount())
	assert.Equal(t, "plus", snap.VehicleClassID)
	require.NotNil(t, snap.EstimatedFare)
	assert.InDelta(t, 20.10*1.5, snap.EstimatedFare.Amount, 1e-9)

	err := s.SelectVehicleClass("limousine")
	assert.ErrorIs(t, err, ErrUnknownVehicleClass)
	assert.Equal(t, "plus", s.Snapshot().VehicleClassID)
}

func TestSession_LatestRouteLookupWins(t *testing.T) {
	r := &fakeResolver{delays: map[types.Point]time.Duration{eiffel.Coordinates: 100 * time.Millisecond}}
	s, snaps := newSession(t, r)

	s.SelectPickupPlace(eiffel)
	s.SelectDropoffPlace(louvre) // slow lookup starts
	s.SwapPickupAndDropoff()     // fast lookup from the Louvre supersedes it

	snap := waitForRoute(t, s)
	time.Sleep(150 * time.Millisecond)

	assert.Equal(t, snap.Route, s.Snapshot().Route)
	last := snaps.last()
	require.NotNil(t, last.Route)
	assert.Equal(t, louvre.Coordinates, last.Route.Geometry[0])
}

func TestSession_RouteErrorClearsFare(t *testing.T) {
	r := &fakeResolver{err: maps.ErrNoRoute}
	s, _ := newSession(t, r)
	s.SelectPickupPlace(eiffel)
	s.SelectDropoffPlace(louvre)

	require.Eventually(t, func() bool { return !s.Snapshot().RouteLoading }, time.Second, 2*time.Millisecond)
	snap := s.Snapshot()
	assert.Nil(t, snap.Route)
	assert.Nil(t, snap.EstimatedFare)
	assert.NotEmpty(t, snap.RouteError)
}

func TestSession_CloseStopsPublishing(t *testing.T) {
	r := &fakeResolver{delays: map[types.Point]time.Duration{eiffel.Coordinates: 50 * time.Millisecond}}
	s, snaps := newSession(t, r)
	s.SelectPickupPlace(eiffel)
	s.SelectDropoffPlace(louvre)
	s.Close()
	n := snaps.count()

	time.Sleep(100 * time.Millisecond)
	s.SetPickupAddress("ignored")
	assert.Equal(t, n, snaps.count())
}

type fakeSearcher struct{}

func (fakeSearcher) Search(ctx context.Context, query string) ([]maps.PlaceCandidate, error) {
	if query == "fail" {
		return nil, errors.New("upstream")
	}
	return []maps.PlaceCandidate{eiffel}, nil
}

func TestSession_SearchFieldsPublishSuggestions(t *testing.T) {
	var mu sync.Mutex
	got := map[Field]geocoding.Update{}
	s := NewSession(context.Background(), Config{
		Resolver: &fakeResolver{},
		Pricing:  newPricing(t),
		Searcher: fakeSearcher{},
		Search:   geocoding.SessionConfig{Debounce: time.Millisecond},
		OnSuggestions: func(f Field, u geocoding.Update) {
			mu.Lock()
			got[f] = u
			mu.Unlock()
		},
	})
	defer s.Close()

	s.SearchPickup("Tour Eif")
	assert.Equal(t, "Tour Eif", s.Snapshot().Pickup.Address)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return got[FieldPickup].Open
	}, time.Second, 2*time.Millisecond)

	s.SelectPickupPlace(eiffel)
	mu.Lock()
	assert.False(t, got[FieldPickup].Open)
	mu.Unlock()

	s.SearchDropoff("Lo")
	mu.Lock()
	assert.False(t, got[FieldDropoff].Open)
	assert.False(t, got[FieldDropoff].Loading)
	mu.Unlock()
}
