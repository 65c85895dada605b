// README: Config loader with env defaults for HTTP, maps provider, search region, tariff and catalog.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"

	"vtcride/internal/modules/pricing"
	"vtcride/internal/types"
)

const (
	ProviderMapbox = "mapbox"
	ProviderGoogle = "google"
)

type MapsConfig struct {
	Provider      string
	MapboxToken   string
	MapboxBaseURL string
	GoogleAPIKey  string
	Timeout       time.Duration
}

// Credential returns the access credential of the selected provider.
func (m MapsConfig) Credential() string {
	if m.Provider == ProviderGoogle {
		return m.GoogleAPIKey
	}
	return m.MapboxToken
}

// Configured reports whether map-backed features can run at all.
func (m MapsConfig) Configured() bool {
	return m.Credential() != ""
}

// CredentialEnv names the variable an operator has to set for the selected provider.
func (m MapsConfig) CredentialEnv() string {
	if m.Provider == ProviderGoogle {
		return "VTC_GOOGLE_MAPS_API_KEY"
	}
	return "VTC_MAPBOX_ACCESS_TOKEN"
}

// RegionConfig scopes geocoding to the service area.
type RegionConfig struct {
	Country   string
	BBox      types.BBox
	Proximity types.Point
	Types     []string
	Language  string
}

type SearchConfig struct {
	MinQueryLen int
	Limit       int
	Debounce    time.Duration
	CacheTTL    time.Duration
}

type Config struct {
	Env  string
	HTTP struct {
		Addr string
	}
	Redis struct {
		Addr string
	}
	Log struct {
		Level string
	}
	Maps           MapsConfig
	Region         RegionConfig
	Search         SearchConfig
	Tariff         pricing.Tariff
	VehicleClasses pricing.Catalog
}

// Load reads configuration from the environment (and .env when present).
// A missing maps credential is not an error; callers check Maps.Configured.
func Load() (Config, error) {
	_ = godotenv.Load(".env")

	var cfg Config
	cfg.Env = envOrDefault("VTC_ENV", "development")
	cfg.HTTP.Addr = envOrDefault("VTC_HTTP_ADDR", ":8080")
	cfg.Redis.Addr = envOrDefault("VTC_REDIS_ADDR", "")
	cfg.Log.Level = envOrDefault("VTC_LOG_LEVEL", "info")

	cfg.Maps.Provider = strings.ToLower(envOrDefault("VTC_MAPS_PROVIDER", ProviderMapbox))
	if cfg.Maps.Provider != ProviderMapbox && cfg.Maps.Provider != ProviderGoogle {
		return Config{}, fmt.Errorf("VTC_MAPS_PROVIDER: unsupported provider %q", cfg.Maps.Provider)
	}
	cfg.Maps.MapboxToken = envOrDefault("VTC_MAPBOX_ACCESS_TOKEN", os.Getenv("NEXT_PUBLIC_MAPBOX_ACCESS_TOKEN"))
	cfg.Maps.MapboxBaseURL = strings.TrimRight(envOrDefault("VTC_MAPBOX_BASE_URL", "https://api.mapbox.com"), "/")
	cfg.Maps.GoogleAPIKey = envOrDefault("VTC_GOOGLE_MAPS_API_KEY", "")
	cfg.Maps.Timeout = envOrDefaultDuration("VTC_MAPS_TIMEOUT", 10*time.Second)

	cfg.Region.Country = envOrDefault("VTC_REGION_COUNTRY", "fr")
	cfg.Region.Language = envOrDefault("VTC_REGION_LANGUAGE", "fr")
	cfg.Region.Types = splitList(envOrDefault("VTC_REGION_TYPES", "address,poi,place,locality"))
	bbox, err := parseBBox(envOrDefault("VTC_REGION_BBOX", "1.4,48.1,3.6,49.3"))
	if err != nil {
		return Config{}, fmt.Errorf("VTC_REGION_BBOX: %w", err)
	}
	cfg.Region.BBox = bbox
	prox, err := parseLngLat(envOrDefault("VTC_REGION_PROXIMITY", "2.3522,48.8566"))
	if err != nil {
		return Config{}, fmt.Errorf("VTC_REGION_PROXIMITY: %w", err)
	}
	cfg.Region.Proximity = prox

	cfg.Search.MinQueryLen = envOrDefaultInt("VTC_SEARCH_MIN_QUERY", 3)
	cfg.Search.Limit = envOrDefaultInt("VTC_SEARCH_LIMIT", 5)
	cfg.Search.Debounce = envOrDefaultDuration("VTC_SEARCH_DEBOUNCE", 300*time.Millisecond)
	cfg.Search.CacheTTL = envOrDefaultDuration("VTC_SEARCH_CACHE_TTL", 10*time.Minute)

	def := pricing.DefaultTariff()
	cfg.Tariff = pricing.Tariff{
		BaseFare:    envOrDefaultFloat("VTC_TARIFF_BASE", def.BaseFare),
		PerKm:       envOrDefaultFloat("VTC_TARIFF_PER_KM", def.PerKm),
		PerMin:      envOrDefaultFloat("VTC_TARIFF_PER_MIN", def.PerMin),
		MinimumFare: envOrDefaultFloat("VTC_TARIFF_MINIMUM", def.MinimumFare),
		Currency:    envOrDefault("VTC_CURRENCY", def.Currency),
	}
	if err := cfg.Tariff.Validate(); err != nil {
		return Config{}, err
	}

	cfg.VehicleClasses = pricing.DefaultCatalog()
	if raw := os.Getenv("VTC_VEHICLE_CLASSES"); raw != "" {
		var catalog pricing.Catalog
		if err := json.Unmarshal([]byte(raw), &catalog); err != nil {
			return Config{}, fmt.Errorf("VTC_VEHICLE_CLASSES: %w", err)
		}
		cfg.VehicleClasses = catalog
	}
	if err := cfg.VehicleClasses.Validate(); err != nil {
		return Config{}, fmt.Errorf("VTC_VEHICLE_CLASSES: %w", err)
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := cast.ToIntE(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if n, err := cast.ToFloat64E(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := cast.ToDurationE(v); err == nil {
			return d
		}
	}
	return def
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseFloats(v string, n int) ([]float64, error) {
	parts := strings.Split(v, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d comma-separated numbers, got %q", n, v)
	}
	out := make([]float64, n)
	for i, p := range parts {
		f, err := cast.ToFloat64E(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", p, err)
		}
		out[i] = f
	}
	return out, nil
}

func parseBBox(v string) (types.BBox, error) {
	f, err := parseFloats(v, 4)
	if err != nil {
		return types.BBox{}, err
	}
	b := types.BBox{MinLng: f[0], MinLat: f[1], MaxLng: f[2], MaxLat: f[3]}
	if b.MinLng >= b.MaxLng || b.MinLat >= b.MaxLat {
		return types.BBox{}, fmt.Errorf("empty bounding box %q", v)
	}
	return b, nil
}

func parseLngLat(v string) (types.Point, error) {
	f, err := parseFloats(v, 2)
	if err != nil {
		return types.Point{}, err
	}
	p := types.Point{Lng: f[0], Lat: f[1]}
	if !p.Valid() {
		return types.Point{}, fmt.Errorf("coordinate out of range %q", v)
	}
	return p, nil
}
