// README: Per-connection trip session: pickup, dropoff, route and vehicle class.
package trip

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"vtcride/internal/logger"
	"vtcride/internal/maps"
	"vtcride/internal/modules/geocoding"
	"vtcride/internal/modules/pricing"
	"vtcride/internal/modules/routing"
	"vtcride/internal/types"
)

type Config struct {
	Resolver RouteResolver
	Pricing  *pricing.Service
	// Searcher enables SearchPickup and SearchDropoff.
	Searcher geocoding.Searcher
	Search   geocoding.SessionConfig
	Logger   logger.Logger

	// OnChange receives every snapshot. OnSuggestions receives the search
	// updates of either field. Neither may call back into the session.
	OnChange      func(Snapshot)
	OnSuggestions func(Field, geocoding.Update)
}

type Session struct {
	id       string
	resolver RouteResolver
	pricing  *pricing.Service
	log      logger.Logger
	onChange func(Snapshot)
	parent   context.Context

	pickupSearch  *geocoding.Session
	dropoffSearch *geocoding.Session

	// pubMu keeps snapshots in mutation order and is taken before mu.
	pubMu sync.Mutex

	mu           sync.Mutex
	pickup       Location
	dropoff      Location
	route        *routing.RouteInfo
	routeLoading bool
	routeErr     string
	classID      string
	routeSeq     uint64
	routeCancel  context.CancelFunc
	closed       bool
}

func NewSession(ctx context.Context, cfg Config) *Session {
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}
	if cfg.OnChange == nil {
		cfg.OnChange = func(Snapshot) {}
	}
	id := uuid.NewString()
	s := &Session{
		id:       id,
		resolver: cfg.Resolver,
		pricing:  cfg.Pricing,
		log:      cfg.Logger.With(logger.String("trip_id", id)),
		onChange: cfg.OnChange,
		parent:   ctx,
		classID:  cfg.Pricing.DefaultClassID(),
	}
	if cfg.Searcher != nil {
		search := cfg.Search
		search.Logger = s.log
		s.pickupSearch = geocoding.NewSession(ctx, cfg.Searcher, search, suggestionsFor(FieldPickup, cfg.OnSuggestions))
		s.dropoffSearch = geocoding.NewSession(ctx, cfg.Searcher, search, suggestionsFor(FieldDropoff, cfg.OnSuggestions))
	}
	return s
}

func suggestionsFor(f Field, fn func(Field, geocoding.Update)) func(geocoding.Update) {
	if fn == nil {
		return nil
	}
	return func(u geocoding.Update) { fn(f, u) }
}

func (s *Session) ID() string { return s.id }

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) SetPickupAddress(text string) {
	s.mutate(true, func() error {
		s.pickup = Location{Address: text}
		return nil
	})
}

func (s *Session) SetDropoffAddress(text string) {
	s.mutate(true, func() error {
		s.dropoff = Location{Address: text}
		return nil
	})
}

// SelectPickupPlace takes the candidate's full place name as the address.
func (s *Session) SelectPickupPlace(c maps.PlaceCandidate) {
	s.dismiss(s.pickupSearch)
	s.mutate(true, func() error {
		s.pickup = fromCandidate(c)
		return nil
	})
}

func (s *Session) SelectDropoffPlace(c maps.PlaceCandidate) {
	s.dismiss(s.dropoffSearch)
	s.mutate(true, func() error {
		s.dropoff = fromCandidate(c)
		return nil
	})
}

// SwapPickupAndDropoff exchanges both locations in a single update.
func (s *Session) SwapPickupAndDropoff() {
	s.mutate(true, func() error {
		s.pickup, s.dropoff = s.dropoff, s.pickup
		return nil
	})
}

// SelectVehicleClass never triggers a route lookup. Unknown ids leave the
// selection unchanged.
func (s *Session) SelectVehicleClass(id string) error {
	return s.mutate(false, func() error {
		if !s.pricing.HasClass(id) {
			return fmt.Errorf("%w: %q", ErrUnknownVehicleClass, id)
		}
		s.classID = id
		return nil
	})
}

// SearchPickup edits the pickup text and feeds it to the pickup search.
func (s *Session) SearchPickup(text string) {
	s.SetPickupAddress(text)
	if s.pickupSearch != nil {
		s.pickupSearch.Type(text)
	}
}

func (s *Session) SearchDropoff(text string) {
	s.SetDropoffAddress(text)
	if s.dropoffSearch != nil {
		s.dropoffSearch.Type(text)
	}
}

// Dismiss closes the suggestion list of one field.
func (s *Session) Dismiss(f Field) {
	switch f {
	case FieldPickup:
		s.dismiss(s.pickupSearch)
	case FieldDropoff:
		s.dismiss(s.dropoffSearch)
	}
}

// Close cancels searches and any in-flight route lookup.
func (s *Session) Close() {
	if s.pickupSearch != nil {
		s.pickupSearch.Close()
	}
	if s.dropoffSearch != nil {
		s.dropoffSearch.Close()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.supersedeRouteLocked()
}

func (s *Session) dismiss(g *geocoding.Session) {
	if g != nil {
		g.Dismiss()
	}
}

// mutate applies fn and publishes one snapshot. When locationsChanged is set
// the current route is dropped and a new lookup starts if both ends resolve.
func (s *Session) mutate(locationsChanged bool, fn func() error) error {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	if err := fn(); err != nil {
		s.mu.Unlock()
		return err
	}
	if locationsChanged {
		s.startRouteLocked()
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.onChange(snap)
	return nil
}

func (s *Session) supersedeRouteLocked() uint64 {
	if s.routeCancel != nil {
		s.routeCancel()
		s.routeCancel = nil
	}
	s.routeSeq++
	return s.routeSeq
}

func (s *Session) startRouteLocked() {
	token := s.supersedeRouteLocked()
	s.route = nil
	s.routeErr = ""
	s.routeLoading = false
	if !s.pickup.Resolved() || !s.dropoff.Resolved() || s.resolver == nil {
		return
	}

	ctx, cancel := context.WithCancel(s.parent)
	s.routeCancel = cancel
	s.routeLoading = true
	pickup, dropoff := *s.pickup.Coordinates, *s.dropoff.Coordinates
	go s.lookup(ctx, cancel, token, pickup, dropoff)
}

func (s *Session) lookup(ctx context.Context, cancel context.CancelFunc, token uint64, pickup, dropoff types.Point) {
	defer cancel()
	info, err := s.resolver.Resolve(ctx, pickup, dropoff)
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return
	}

	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	s.mu.Lock()
	if s.closed || token != s.routeSeq {
		s.mu.Unlock()
		return
	}
	s.routeCancel = nil
	s.routeLoading = false
	if err != nil {
		s.log.Warn("route lookup failed", logger.Error(err))
		s.routeErr = "route unavailable"
	} else {
		s.route = &info
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.onChange(snap)
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:             s.id,
		Pickup:         copyLocation(s.pickup),
		Dropoff:        copyLocation(s.dropoff),
		RouteLoading:   s.routeLoading,
		RouteError:     s.routeErr,
		VehicleClassID: s.classID,
	}
	if s.route == nil {
		return snap
	}
	r := *s.route
	r.Geometry = append([]types.Point(nil), s.route.Geometry...)
	snap.Route = &r

	quotes, err := s.pricing.EstimateAll(r.DistanceKm, r.DurationMin)
	if err != nil {
		s.log.Warn("fare estimate failed", logger.Error(err))
		return snap
	}
	snap.Quotes = quotes
	for _, q := range quotes {
		if q.VehicleClass.ID == s.classID {
			fare := q.Fare
			snap.EstimatedFare = &fare
		}
	}
	return snap
}

func copyLocation(l Location) Location {
	if l.Coordinates != nil {
		p := *l.Coordinates
		l.Coordinates = &p
	}
	return l
}

func fromCandidate(c maps.PlaceCandidate) Location {
	addr := c.PlaceName
	if addr == "" {
		addr = c.Label
	}
	p := c.Coordinates
	return Location{Address: addr, Coordinates: &p}
}
