// README: Bench cases: API smoke checks, WebSocket session round trip, cache presence and load.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

const (
	statusPass = "PASS"
	statusFail = "FAIL"
	statusSkip = "SKIP"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	redis *redis.Client

	// mapsReady is learned from /api/config; map-backed cases skip without it.
	mapsReady bool
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
		defer r.redis.Close()
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))
	for _, tc := range tests {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Printf("%-5s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}
	return results
}

// Paris landmarks used as fixed trip endpoints.
var (
	eiffel = map[string]float64{"lat": 48.8584, "lng": 2.2945}
	louvre = map[string]float64{"lat": 48.8606, "lng": 2.3376}
)

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	return []TestCase{
		{
			Name: "Env: Redis cache reachable",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: statusSkip, Note: "redis not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name: "API: health",
			Run: func(ctx context.Context, r *Runner) Result {
				code, body, lat, err := r.get(ctx, base+"/health")
				if err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				if code != http.StatusOK || strings.TrimSpace(string(body)) != "OK" {
					return Result{Status: statusFail, Latency: lat, Note: fmt.Sprintf("status=%d", code)}
				}
				return Result{Status: statusPass, Latency: lat}
			},
		},
		{
			Name: "API: maps configuration",
			Run: func(ctx context.Context, r *Runner) Result {
				code, body, lat, err := r.get(ctx, base+"/api/config")
				if err != nil || code != http.StatusOK {
					return Result{Status: statusFail, Note: fmt.Sprintf("status=%d err=%v", code, err)}
				}
				var status struct {
					Configured bool   `json:"configured"`
					Provider   string `json:"provider"`
				}
				if err := json.Unmarshal(body, &status); err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				r.mapsReady = status.Configured
				return Result{Status: statusPass, Latency: lat, Note: fmt.Sprintf("provider=%s configured=%v", status.Provider, status.Configured)}
			},
		},
		{
			Name: "API: vehicle classes",
			Run: func(ctx context.Context, r *Runner) Result {
				code, body, lat, err := r.get(ctx, base+"/api/vehicle-classes")
				if err != nil || code != http.StatusOK {
					return Result{Status: statusFail, Note: fmt.Sprintf("status=%d err=%v", code, err)}
				}
				var out struct {
					Classes []json.RawMessage `json:"vehicle_classes"`
				}
				if err := json.Unmarshal(body, &out); err != nil || len(out.Classes) == 0 {
					return Result{Status: statusFail, Note: "empty catalog"}
				}
				return Result{Status: statusPass, Latency: lat, Note: fmt.Sprintf("classes=%d", len(out.Classes))}
			},
		},
		mapsCase("Places: short query returns nothing", func(ctx context.Context, r *Runner) Result {
			code, body, lat, err := r.get(ctx, base+"/api/places?q=Pa")
			if err != nil || code != http.StatusOK {
				return Result{Status: statusFail, Note: fmt.Sprintf("status=%d err=%v", code, err)}
			}
			var out struct {
				Candidates []json.RawMessage `json:"candidates"`
			}
			_ = json.Unmarshal(body, &out)
			if len(out.Candidates) != 0 {
				return Result{Status: statusFail, Note: "expected no candidates"}
			}
			return Result{Status: statusPass, Latency: lat}
		}),
		mapsCase("Places: landmark search", func(ctx context.Context, r *Runner) Result {
			code, body, lat, err := r.get(ctx, base+"/api/places?q=Tour%20Eiffel")
			if err != nil || code != http.StatusOK {
				return Result{Status: statusFail, Note: fmt.Sprintf("status=%d err=%v", code, err)}
			}
			var out struct {
				Candidates []json.RawMessage `json:"candidates"`
			}
			_ = json.Unmarshal(body, &out)
			if len(out.Candidates) == 0 {
				return Result{Status: statusFail, Latency: lat, Note: "no candidates"}
			}
			return Result{Status: statusPass, Latency: lat, Note: fmt.Sprintf("candidates=%d", len(out.Candidates))}
		}),
		mapsCase("Routes: missing dropoff -> 400", func(ctx context.Context, r *Runner) Result {
			return r.expect(ctx, base+"/api/routes", map[string]any{"pickup": eiffel}, http.StatusBadRequest)
		}),
		mapsCase("Fares: estimate Eiffel -> Louvre", func(ctx context.Context, r *Runner) Result {
			return r.expect(ctx, base+"/api/fares/estimate", map[string]any{
				"pickup": eiffel, "dropoff": louvre, "vehicle_class_id": "standard",
			}, http.StatusOK)
		}),
		mapsCase("Fares: unknown vehicle class -> 400", func(ctx context.Context, r *Runner) Result {
			return r.expect(ctx, base+"/api/fares/estimate", map[string]any{
				"pickup": eiffel, "dropoff": louvre, "vehicle_class_id": "limousine",
			}, http.StatusBadRequest)
		}),
		mapsCase("WS: trip session round trip", func(ctx context.Context, r *Runner) Result {
			return r.tripSession(ctx)
		}),
		{
			Name: "Cache: geocoding entries present",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil || !r.mapsReady {
					return Result{Status: statusSkip, Note: "redis or maps not configured"}
				}
				keys, err := r.redis.Keys(ctx, "vtc:geocode:*").Result()
				if err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				if len(keys) == 0 {
					return Result{Status: statusFail, Note: "no cached searches after landmark search"}
				}
				return Result{Status: statusPass, Note: fmt.Sprintf("keys=%d", len(keys))}
			},
		},
		{
			Name: "Perf: fare estimate load",
			Run: func(ctx context.Context, r *Runner) Result {
				if !r.mapsReady {
					return perfLoad(ctx, r, http.MethodGet, base+"/api/vehicle-classes", nil)
				}
				return perfLoad(ctx, r, http.MethodPost, base+"/api/fares/estimate", map[string]any{
					"pickup": eiffel, "dropoff": louvre,
				})
			},
		},
	}
}

// mapsCase skips when the server reported no maps credential.
func mapsCase(name string, run func(ctx context.Context, r *Runner) Result) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			if !r.mapsReady {
				return Result{Status: statusSkip, Note: "configuration required"}
			}
			return run(ctx, r)
		},
	}
}

func (r *Runner) get(ctx context.Context, url string) (int, []byte, time.Duration, error) {
	return r.do(ctx, http.MethodGet, url, nil)
}

func (r *Runner) do(ctx context.Context, method, url string, payload any) (int, []byte, time.Duration, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, 0, err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, nil, 0, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	start := time.Now()
	resp, err := r.httpc.Do(req)
	if err != nil {
		return 0, nil, 0, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	return resp.StatusCode, b, time.Since(start), err
}

func (r *Runner) expect(ctx context.Context, url string, payload any, want int) Result {
	code, _, lat, err := r.do(ctx, http.MethodPost, url, payload)
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	if code != want {
		return Result{Status: statusFail, Latency: lat, Note: fmt.Sprintf("status=%d want=%d", code, want)}
	}
	return Result{Status: statusPass, Latency: lat}
}

func (r *Runner) tripSession(ctx context.Context) Result {
	wsURL := "ws" + strings.TrimPrefix(r.cfg.BaseURL, "http") + "/ws/trip"
	start := time.Now()
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	defer conn.Close()

	send := []map[string]any{
		{"type": "select_pickup", "candidate": map[string]any{"label": "Tour Eiffel", "place_name": "Tour Eiffel, Paris", "coordinates": eiffel}},
		{"type": "select_dropoff", "candidate": map[string]any{"label": "Louvre", "place_name": "Musée du Louvre, Paris", "coordinates": louvre}},
	}
	for _, m := range send {
		if err := conn.WriteJSON(m); err != nil {
			return Result{Status: statusFail, Note: err.Error()}
		}
	}

	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	for {
		var msg struct {
			Type string `json:"type"`
			Trip *struct {
				RouteError    string           `json:"route_error"`
				EstimatedFare *json.RawMessage `json:"estimated_fare"`
			} `json:"trip"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			return Result{Status: statusFail, Note: err.Error()}
		}
		if msg.Type != "trip" || msg.Trip == nil {
			continue
		}
		if msg.Trip.RouteError != "" {
			return Result{Status: statusFail, Note: msg.Trip.RouteError}
		}
		if msg.Trip.EstimatedFare != nil {
			return Result{Status: statusPass, Latency: time.Since(start)}
		}
	}
}

func perfLoad(ctx context.Context, r *Runner, method, url string, payload any) Result {
	end := time.Now().Add(r.cfg.Duration)
	var count, errCount atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				code, _, _, err := r.do(ctx, method, url, payload)
				if err != nil || code >= 500 {
					errCount.Add(1)
					continue
				}
				count.Add(1)
			}
		}()
	}
	wg.Wait()

	if count.Load() == 0 {
		return Result{Status: statusFail, Note: "no requests completed"}
	}
	rps := float64(count.Load()) / r.cfg.Duration.Seconds()
	return Result{Status: statusPass, Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount.Load())}
}
