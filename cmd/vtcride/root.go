package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vtcride/internal/config"
	"vtcride/internal/logger"
	"vtcride/internal/modules/pricing"
)

var (
	debugFlag   bool
	timeoutFlag string
)

var rootCmd = &cobra.Command{
	Use:           "vtcride",
	Short:         "Estimate VTC Ride fares from the terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "v", false, "Enable debug logs")
	rootCmd.PersistentFlags().StringVar(&timeoutFlag, "timeout", "15s", "Overall timeout for provider calls")
	rootCmd.AddCommand(classesCmd, searchCmd, estimateCmd)
}

// env bundles what every subcommand needs.
type env struct {
	cfg     config.Config
	log     logger.Logger
	pricing *pricing.Service
}

func loadEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	level := "warn"
	if debugFlag {
		level = "debug"
	}
	log, err := logger.New("vtcride-cli", "development", level)
	if err != nil {
		return nil, err
	}
	pricingSvc, err := pricing.NewService(cfg.Tariff, cfg.VehicleClasses)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log, pricing: pricingSvc}, nil
}
