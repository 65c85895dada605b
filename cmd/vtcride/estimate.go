package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"vtcride/internal/modules/geocoding"
	"vtcride/internal/modules/routing"
	"vtcride/internal/modules/trip"
	"vtcride/internal/types"
)

var (
	fromArg  string
	toArg    string
	classArg string
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate the fare between two addresses or lat,lng pairs",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		places, provider, err := e.mapsServices()
		if err != nil {
			return err
		}
		ctx, cancel := e.timeout(cmd.Context())
		defer cancel()

		pickup, pickupLabel, err := resolvePoint(ctx, places, fromArg)
		if err != nil {
			return fmt.Errorf("--from: %w", err)
		}
		dropoff, dropoffLabel, err := resolvePoint(ctx, places, toArg)
		if err != nil {
			return fmt.Errorf("--to: %w", err)
		}

		svc := trip.NewService(routing.NewResolver(provider, e.log), e.pricing)
		est, err := svc.Estimate(ctx, trip.EstimateRequest{Pickup: pickup, Dropoff: dropoff, VehicleClassID: classArg})
		if err != nil {
			return err
		}

		fmt.Printf("From: %s\nTo:   %s\n", pickupLabel, dropoffLabel)
		fmt.Printf("Route: %s, %s\n\n", est.Route.DistanceLabel, est.Route.DurationLabel)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CLASS\tARRIVAL\tFARE\t")
		for _, q := range est.Quotes {
			marker := ""
			if q.VehicleClass.ID == est.VehicleClassID {
				marker = "<"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", q.VehicleClass.DisplayName, q.VehicleClass.EstimatedArrival, q.Fare, marker)
		}
		return w.Flush()
	},
}

func init() {
	estimateCmd.Flags().StringVarP(&fromArg, "from", "f", "", "Pickup address or lat,lng")
	estimateCmd.Flags().StringVarP(&toArg, "to", "t", "", "Dropoff address or lat,lng")
	estimateCmd.Flags().StringVarP(&classArg, "class", "c", "", "Vehicle class id (default: first in catalog)")
	_ = estimateCmd.MarkFlagRequired("from")
	_ = estimateCmd.MarkFlagRequired("to")
}

// resolvePoint accepts "lat,lng" directly and geocodes anything else, taking
// the most relevant candidate.
func resolvePoint(ctx context.Context, places *geocoding.Service, arg string) (types.Point, string, error) {
	if p, ok := parseLatLng(arg); ok {
		return p, p.LatLng(), nil
	}
	candidates, err := places.Search(ctx, arg)
	if err != nil {
		return types.Point{}, "", err
	}
	if len(candidates) == 0 {
		return types.Point{}, "", fmt.Errorf("no place found for %q", arg)
	}
	c := candidates[0]
	return c.Coordinates, c.PlaceName, nil
}

func parseLatLng(s string) (types.Point, bool) {
	lat, lng, ok := strings.Cut(s, ",")
	if !ok {
		return types.Point{}, false
	}
	la, err1 := cast.ToFloat64E(strings.TrimSpace(lat))
	ln, err2 := cast.ToFloat64E(strings.TrimSpace(lng))
	if err1 != nil || err2 != nil {
		return types.Point{}, false
	}
	p := types.Point{Lat: la, Lng: ln}
	return p, p.Valid()
}
