// README: Interactive trip session over WebSocket: keystrokes in, suggestions and trip snapshots out.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"vtcride/internal/logger"
	"vtcride/internal/maps"
	"vtcride/internal/modules/geocoding"
	"vtcride/internal/modules/pricing"
	"vtcride/internal/modules/trip"
)

const (
	pingInterval   = 30 * time.Second
	pongWait       = 60 * time.Second
	maxMessageSize = 8192
	writeWait      = 10 * time.Second
	sendBuffer     = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API carries no credentials, so any origin may open a session.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client message types.
const (
	msgPickupText    = "pickup_text"
	msgDropoffText   = "dropoff_text"
	msgSelectPickup  = "select_pickup"
	msgSelectDropoff = "select_dropoff"
	msgSwap          = "swap"
	msgSelectVehicle = "select_vehicle"
	msgDismiss       = "dismiss"
)

type clientMessage struct {
	Type           string               `json:"type"`
	Text           string               `json:"text,omitempty"`
	Candidate      *maps.PlaceCandidate `json:"candidate,omitempty"`
	VehicleClassID string               `json:"vehicle_class_id,omitempty"`
	Field          trip.Field           `json:"field,omitempty"`
}

type serverMessage struct {
	Type        string            `json:"type"`
	Field       trip.Field        `json:"field,omitempty"`
	Suggestions *geocoding.Update `json:"suggestions,omitempty"`
	Trip        *trip.Snapshot    `json:"trip,omitempty"`
	Error       string            `json:"error,omitempty"`
}

type TripHandler struct {
	resolver trip.RouteResolver
	pricing  *pricing.Service
	places   geocoding.Searcher
	search   geocoding.SessionConfig
	log      logger.Logger
}

func NewTripHandler(resolver trip.RouteResolver, pricingSvc *pricing.Service, places geocoding.Searcher, search geocoding.SessionConfig, log logger.Logger) *TripHandler {
	return &TripHandler{resolver: resolver, pricing: pricingSvc, places: places, search: search, log: log}
}

// wsClient owns the outbound queue of one connection.
type wsClient struct {
	conn *websocket.Conn
	log  logger.Logger

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func (c *wsClient) enqueue(m serverMessage) {
	raw, err := json.Marshal(m)
	if err != nil {
		c.log.Error("ws marshal failed", logger.Error(err))
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- raw:
	default:
		// Slow reader; drop the connection rather than block the session.
		c.log.Warn("ws send buffer full, closing")
		c.closeLocked()
	}
}

func (c *wsClient) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *wsClient) closeLocked() {
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Serve upgrades the request and runs the session until the client leaves.
func (h *TripHandler) Serve(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", logger.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	client := &wsClient{conn: conn, log: h.log, send: make(chan []byte, sendBuffer)}
	session := trip.NewSession(ctx, trip.Config{
		Resolver: h.resolver,
		Pricing:  h.pricing,
		Searcher: h.places,
		Search:   h.search,
		Logger:   h.log,
		OnChange: func(s trip.Snapshot) {
			client.enqueue(serverMessage{Type: "trip", Trip: &s})
		},
		OnSuggestions: func(f trip.Field, u geocoding.Update) {
			client.enqueue(serverMessage{Type: "suggestions", Field: f, Suggestions: &u})
		},
	})
	log := h.log.With(logger.String("trip_id", session.ID()))
	log.Info("trip session opened")

	done := make(chan struct{})
	go func() {
		defer close(done)
		writePump(conn, client.send)
	}()

	snap := session.Snapshot()
	client.enqueue(serverMessage{Type: "trip", Trip: &snap})

	readPump(conn, log, func(raw []byte) {
		var m clientMessage
		err := json.Unmarshal(raw, &m)
		if err != nil {
			err = errBadMessage
		} else {
			err = dispatch(session, m)
		}
		if err != nil {
			client.enqueue(serverMessage{Type: "error", Error: err.Error()})
		}
	})

	session.Close()
	client.close()
	<-done
	log.Info("trip session closed")
}

var errBadMessage = errors.New("invalid message")

func dispatch(s *trip.Session, m clientMessage) error {
	switch m.Type {
	case msgPickupText:
		s.SearchPickup(m.Text)
	case msgDropoffText:
		s.SearchDropoff(m.Text)
	case msgSelectPickup, msgSelectDropoff:
		if m.Candidate == nil || !m.Candidate.Coordinates.Valid() {
			return errBadMessage
		}
		if m.Type == msgSelectPickup {
			s.SelectPickupPlace(*m.Candidate)
		} else {
			s.SelectDropoffPlace(*m.Candidate)
		}
	case msgSwap:
		s.SwapPickupAndDropoff()
	case msgSelectVehicle:
		return s.SelectVehicleClass(m.VehicleClassID)
	case msgDismiss:
		if m.Field != trip.FieldPickup && m.Field != trip.FieldDropoff {
			return errBadMessage
		}
		s.Dismiss(m.Field)
	default:
		return errors.New("unknown message type: " + m.Type)
	}
	return nil
}

func readPump(conn *websocket.Conn, log logger.Logger, handle func([]byte)) {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("ws read failed", logger.Error(err))
			}
			return
		}
		handle(raw)
	}
}

func writePump(conn *websocket.Conn, send <-chan []byte) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case msg, ok := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
