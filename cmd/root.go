package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/mask-fitter/internal/config"
	"github.com/kozaktomas/mask-fitter/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "mask-fitter",
	Short: "Respirator fitting from facial measurements",
	Long: `Mask Fitter measures a face from detector landmarks or a 3D headform
mesh, assigns it a face-size category and recommends respirator models
that fit that category, optionally limited to the models in stock.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}

// loadConfig reads the configuration and sets up logging from it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := log.Init(cfg.Log); err != nil {
		return nil, fmt.Errorf("initializing logging: %w", err)
	}
	return cfg, nil
}
