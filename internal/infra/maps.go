// README: Maps provider selection from configuration.
package infra

import (
	"fmt"
	"net/http"

	"vtcride/internal/config"
	"vtcride/internal/maps"
)

// Region converts the configured service area into provider scoping.
func Region(cfg config.Config) maps.Region {
	return maps.Region{
		Country:   cfg.Region.Country,
		BBox:      cfg.Region.BBox,
		Proximity: cfg.Region.Proximity,
		Types:     cfg.Region.Types,
		Language:  cfg.Region.Language,
		Limit:     cfg.Search.Limit,
	}
}

// NewMapsProvider builds the configured provider. It returns
// maps.ErrNotConfigured when the credential is missing.
func NewMapsProvider(cfg config.Config) (maps.Provider, error) {
	if !cfg.Maps.Configured() {
		return nil, maps.ErrNotConfigured
	}
	httpClient := &http.Client{Timeout: cfg.Maps.Timeout}
	region := Region(cfg)

	switch cfg.Maps.Provider {
	case config.ProviderGoogle:
		client, err := maps.NewGoogleClient(cfg.Maps.GoogleAPIKey, httpClient, "")
		if err != nil {
			return nil, err
		}
		return maps.NewGoogleProvider(client, region), nil
	case config.ProviderMapbox:
		return maps.NewMapboxClient(cfg.Maps.MapboxBaseURL, cfg.Maps.MapboxToken, region, httpClient)
	default:
		return nil, fmt.Errorf("unsupported maps provider %q", cfg.Maps.Provider)
	}
}
