// README: End-to-end tests of the HTTP API against fake maps backends.
package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httptransport "vtcride/internal/http"
	"vtcride/internal/http/handlers"
	"vtcride/internal/maps"
	"vtcride/internal/modules/geocoding"
	"vtcride/internal/modules/pricing"
	"vtcride/internal/modules/routing"
	"vtcride/internal/modules/trip"
	"vtcride/internal/types"
)

var (
	eiffel = maps.PlaceCandidate{
		ID: "poi.1", Label: "Tour Eiffel", SecondaryLabel: "Paris, France",
		PlaceName: "Tour Eiffel, Paris, France", Coordinates: types.Point{Lat: 48.8584, Lng: 2.2945},
	}
	louvre = maps.PlaceCandidate{
		ID: "poi.2", Label: "Louvre", SecondaryLabel: "Paris, France",
		PlaceName: "Musée du Louvre, Paris, France", Coordinates: types.Point{Lat: 48.8606, Lng: 2.3376},
	}
)

type fakeSearcher struct{ err error }

func (f fakeSearcher) Search(ctx context.Context, query string) ([]maps.PlaceCandidate, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len([]rune(strings.TrimSpace(query))) < 3 {
		return []maps.PlaceCandidate{}, nil
	}
	return []maps.PlaceCandidate{eiffel, louvre}, nil
}

type fakeResolver struct{ err error }

func (f fakeResolver) Resolve(ctx context.Context, pickup, dropoff types.Point) (routing.RouteInfo, error) {
	if f.err != nil {
		return routing.RouteInfo{}, f.err
	}
	return routing.FromRoute(maps.Route{DistanceMeters: 3500, DurationSeconds: 720, Geometry: []types.Point{pickup, dropoff}}), nil
}

type setup struct {
	configured bool
	searchErr  error
	routeErr   error
}

func newRouter(t *testing.T, s setup) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	pricingSvc, err := pricing.NewService(pricing.DefaultTariff(), pricing.DefaultCatalog())
	require.NoError(t, err)

	deps := httptransport.ServerDeps{
		Maps: handlers.MapsStatus{
			Configured:    s.configured,
			Provider:      "mapbox",
			CredentialEnv: "VTC_MAPBOX_ACCESS_TOKEN",
		},
		Pricing: pricingSvc,
		Search:  geocoding.SessionConfig{Debounce: time.Millisecond},
	}
	if s.configured {
		resolver := fakeResolver{err: s.routeErr}
		deps.Places = fakeSearcher{err: s.searchErr}
		deps.Routes = resolver
		deps.Trips = trip.NewService(resolver, pricingSvc)
	}
	return httptransport.NewServer(deps).Routes()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := do(t, newRouter(t, setup{}), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestConfig_ReportsMissingCredential(t *testing.T) {
	w := do(t, newRouter(t, setup{}), http.MethodGet, "/api/config", "")
	require.Equal(t, http.StatusOK, w.Code)

	var got handlers.MapsStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.False(t, got.Configured)
	assert.Contains(t, got.Message, "VTC_MAPBOX_ACCESS_TOKEN")
}

func TestMapEndpoints_Return503WithoutCredential(t *testing.T) {
	h := newRouter(t, setup{})
	tests := []struct {
		method, path, body string
	}{
		{http.MethodGet, "/api/places?q=Louvre", ""},
		{http.MethodPost, "/api/routes", `{"pickup":{"lat":48.85,"lng":2.29},"dropoff":{"lat":48.86,"lng":2.33}}`},
		{http.MethodPost, "/api/fares/estimate", `{"pickup":{"lat":48.85,"lng":2.29},"dropoff":{"lat":48.86,"lng":2.33}}`},
		{http.MethodGet, "/ws/trip", ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusServiceUnavailable, w.Code)
			assert.JSONEq(t, `{"error":"configuration required"}`, w.Body.String())
		})
	}
}

func TestVehicleClasses(t *testing.T) {
	w := do(t, newRouter(t, setup{}), http.MethodGet, "/api/vehicle-classes", "")
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		DefaultID string                 `json:"default_vehicle_class_id"`
		Classes   []pricing.VehicleClass `json:"vehicle_classes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "standard", got.DefaultID)
	require.Len(t, got.Classes, 4)
	assert.Equal(t, 1.8, got.Classes[2].PriceMultiplier)
}

func TestPlaces(t *testing.T) {
	h := newRouter(t, setup{configured: true})

	w := do(t, h, http.MethodGet, "/api/places?q=Tour", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Candidates []maps.PlaceCandidate `json:"candidates"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got.Candidates, 2)
	assert.Equal(t, "Paris, France", got.Candidates[0].SecondaryLabel)

	w = do(t, h, http.MethodGet, "/api/places?q=To", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"query":"To","candidates":[]}`, w.Body.String())
}

func TestPlaces_ProviderErrorIsSwallowed(t *testing.T) {
	h := newRouter(t, setup{configured: true, searchErr: errors.New("timeout")})
	w := do(t, h, http.MethodGet, "/api/places?q=Louvre", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"query":"Louvre","candidates":[]}`, w.Body.String())
}

func TestRoutes(t *testing.T) {
	h := newRouter(t, setup{configured: true})
	w := do(t, h, http.MethodPost, "/api/routes", `{"pickup":{"lat":48.8584,"lng":2.2945},"dropoff":{"lat":48.8606,"lng":2.3376}}`)
	require.Equal(t, http.StatusOK, w.Code)

	var got routing.RouteInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "3.5 km", got.DistanceLabel)
	assert.Equal(t, "12 min", got.DurationLabel)
	assert.Len(t, got.Geometry, 2)
}

func TestRoutes_BadRequests(t *testing.T) {
	h := newRouter(t, setup{configured: true})
	for _, body := range []string{
		`not json`,
		`{"pickup":{"lat":48.85,"lng":2.29}}`,
		`{"pickup":{"lat":148.85,"lng":2.29},"dropoff":{"lat":48.86,"lng":2.33}}`,
	} {
		w := do(t, h, http.MethodPost, "/api/routes", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestRoutes_ProviderFailureIs502(t *testing.T) {
	h := newRouter(t, setup{configured: true, routeErr: maps.ErrNoRoute})
	w := do(t, h, http.MethodPost, "/api/routes", `{"pickup":{"lat":48.85,"lng":2.29},"dropoff":{"lat":48.86,"lng":2.33}}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestFareEstimate(t *testing.T) {
	h := newRouter(t, setup{configured: true})
	w := do(t, h, http.MethodPost, "/api/fares/estimate",
		`{"pickup":{"lat":48.8584,"lng":2.2945},"dropoff":{"lat":48.8606,"lng":2.3376},"vehicle_class_id":"standard"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		VehicleClassID string `json:"vehicle_class_id"`
		EstimatedFare  struct {
			Amount  float64 `json:"amount"`
			Display string  `json:"display"`
		} `json:"estimated_fare"`
		Quotes []json.RawMessage `json:"quotes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	// 2.60 + 3.5*1.05 + 12*0.35 = 10.475
	assert.InDelta(t, 10.475, got.EstimatedFare.Amount, 1e-9)
	assert.Equal(t, "standard", got.VehicleClassID)
	assert.Len(t, got.Quotes, 4)
}

func TestFareEstimate_UnknownClass(t *testing.T) {
	h := newRouter(t, setup{configured: true})
	w := do(t, h, http.MethodPost, "/api/fares/estimate",
		`{"pickup":{"lat":48.8584,"lng":2.2945},"dropoff":{"lat":48.8606,"lng":2.3376},"vehicle_class_id":"van"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type wsMessage struct {
	Type        string            `json:"type"`
	Field       string            `json:"field"`
	Suggestions *geocoding.Update `json:"suggestions"`
	Trip        *trip.Snapshot    `json:"trip"`
	Error       string            `json:"error"`
}

func readUntil(t *testing.T, conn *websocket.Conn, match func(wsMessage) bool) wsMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var m wsMessage
		require.NoError(t, conn.ReadJSON(&m))
		if match(m) {
			return m
		}
	}
}

func TestTripWebSocket(t *testing.T) {
	srv := httptest.NewServer(newRouter(t, setup{configured: true}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/trip", nil)
	require.NoError(t, err)
	defer conn.Close()

	first := readUntil(t, conn, func(m wsMessage) bool { return m.Type == "trip" })
	assert.Equal(t, "standard", first.Trip.VehicleClassID)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "pickup_text", "text": "Tour Eif"}))
	sugg := readUntil(t, conn, func(m wsMessage) bool {
		return m.Type == "suggestions" && m.Suggestions != nil && m.Suggestions.Open
	})
	assert.Equal(t, "pickup", sugg.Field)
	require.Len(t, sugg.Suggestions.Candidates, 2)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "select_pickup", "candidate": eiffel}))
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "select_dropoff", "candidate": louvre}))
	priced := readUntil(t, conn, func(m wsMessage) bool {
		return m.Type == "trip" && m.Trip.Route != nil && m.Trip.EstimatedFare != nil
	})
	assert.Equal(t, "Tour Eiffel, Paris, France", priced.Trip.Pickup.Address)
	assert.InDelta(t, 10.475, priced.Trip.EstimatedFare.Amount, 1e-9)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "select_vehicle", "vehicle_class_id": "plus"}))
	plus := readUntil(t, conn, func(m wsMessage) bool { return m.Type == "trip" && m.Trip.VehicleClassID == "plus" })
	require.NotNil(t, plus.Trip.EstimatedFare)
	assert.InDelta(t, 10.475*1.5, plus.Trip.EstimatedFare.Amount, 1e-9)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "select_vehicle", "vehicle_class_id": "limousine"}))
	bad := readUntil(t, conn, func(m wsMessage) bool { return m.Type == "error" })
	assert.Contains(t, bad.Error, "limousine")

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "swap"}))
	swapped := readUntil(t, conn, func(m wsMessage) bool { return m.Type == "trip" && m.Trip.Route != nil })
	assert.Equal(t, "Musée du Louvre, Paris, France", swapped.Trip.Pickup.Address)
}
