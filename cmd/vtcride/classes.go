package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var classesCmd = &cobra.Command{
	Use:   "classes",
	Short: "List vehicle classes and the active tariff",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		t := e.pricing.Tariff()
		fmt.Printf("Tariff (%s): base %.2f, %.2f/km, %.2f/min, minimum %.2f\n\n",
			t.Currency, t.BaseFare, t.PerKm, t.PerMin, t.MinimumFare)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tMULTIPLIER\tARRIVAL\tDESCRIPTION")
		for _, vc := range e.pricing.Catalog() {
			fmt.Fprintf(w, "%s\t%s\tx%.1f\t%s\t%s\n", vc.ID, vc.DisplayName, vc.PriceMultiplier, vc.EstimatedArrival, vc.Description)
		}
		return w.Flush()
	},
}
