package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"vtcride/internal/infra"
	"vtcride/internal/maps"
	"vtcride/internal/modules/geocoding"
)

var searchCmd = &cobra.Command{
	Use:   "search <address>",
	Short: "Look up address suggestions in the service area",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		places, _, err := e.mapsServices()
		if err != nil {
			return err
		}
		ctx, cancel := e.timeout(cmd.Context())
		defer cancel()

		query := strings.Join(args, " ")
		candidates, err := places.Search(ctx, query)
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			fmt.Println("No suggestions.")
			return nil
		}
		for i, c := range candidates {
			fmt.Printf("%d. %s\n   %s\n   %s\n", i+1, c.Label, c.SecondaryLabel, c.Coordinates.LatLng())
		}
		return nil
	},
}

func (e *env) mapsServices() (*geocoding.Service, maps.Provider, error) {
	provider, err := infra.NewMapsProvider(e.cfg)
	if err != nil {
		if errors.Is(err, maps.ErrNotConfigured) {
			return nil, nil, fmt.Errorf("configuration required: set %s", e.cfg.Maps.CredentialEnv())
		}
		return nil, nil, err
	}
	svc := geocoding.NewService(provider, geocoding.Options{
		Provider:    provider.Name(),
		Region:      infra.Region(e.cfg),
		MinQueryLen: e.cfg.Search.MinQueryLen,
		Logger:      e.log,
	})
	return svc, provider, nil
}

func (e *env) timeout(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	d, err := cast.ToDurationE(timeoutFlag)
	if err != nil || d <= 0 {
		d = e.cfg.Maps.Timeout
	}
	return context.WithTimeout(parent, d)
}
