package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/mask-fitter/internal/config"
	"github.com/kozaktomas/mask-fitter/internal/database"
	"github.com/kozaktomas/mask-fitter/internal/database/postgres"
	"github.com/kozaktomas/mask-fitter/internal/fitting"
	"github.com/kozaktomas/mask-fitter/internal/log"
	"github.com/kozaktomas/mask-fitter/internal/web"
	"github.com/kozaktomas/mask-fitter/internal/web/handlers"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the Mask Fitter HTTP API.

The API measures landmark detections, classifies face sizes and recommends
respirators. When DATABASE_URL is set, fitting sessions are stored and the
nearest reference headform is reported for each fit.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (default from WEB_PORT)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from WEB_HOST)")
}

// initHeadformHNSW builds the in-memory index used for nearest-headform lookups.
func initHeadformHNSW(ctx context.Context, repo *postgres.HeadformRepository) {
	if err := repo.EnableHNSW(ctx); err != nil {
		log.Warn(log.Fields{"error": err}, "Failed to build headform HNSW index, nearest lookups will query PostgreSQL")
		return
	}
	log.Info(log.Fields{"headforms": repo.HNSWCount()}, "Headform HNSW index built")
}

// resolveServeHostPort lets flags override the configured address.
func resolveServeHostPort(cmd *cobra.Command, cfg *config.Config) {
	if port := mustGetInt(cmd, "port"); port != 0 {
		cfg.Web.Port = port
	}
	if host := mustGetString(cmd, "host"); host != "" {
		cfg.Web.Host = host
	}
}

// buildServices wires the handler dependencies, attaching storage when
// DATABASE_URL is configured.
func buildServices(ctx context.Context, cfg *config.Config) (*handlers.Services, func(), error) {
	cleanup := func() {}
	var nearest fitting.NearestFinder
	svc := &handlers.Services{Config: cfg}

	if cfg.Database.URL != "" {
		pool, headformRepo, err := openStorage(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		cleanup = func() {
			if err := pool.Close(); err != nil {
				log.Warn(log.Fields{"error": err}, "Failed to close database pool")
			}
		}
		initHeadformHNSW(ctx, headformRepo)

		if svc.Headforms, err = database.GetHeadformReader(ctx); err != nil {
			cleanup()
			return nil, nil, err
		}
		if svc.Fits, err = database.GetFitRecordWriter(ctx); err != nil {
			cleanup()
			return nil, nil, err
		}
		nearest = headformRepo
		log.Info(nil, "Using PostgreSQL backend")
	} else {
		log.Warn(nil, "DATABASE_URL not set, fitting sessions will not be stored")
	}

	pipeline, err := newPipeline(cfg, nearest)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	svc.Pipeline = pipeline
	return svc, cleanup, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	resolveServeHostPort(cmd, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc, cleanup, err := buildServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	server := web.NewServer(svc)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Fprintln(cmd.ErrOrStderr(), "\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error(log.Fields{"error": err}, "Error during shutdown")
		}
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Starting Mask Fitter API on http://%s:%d\n", cfg.Web.Host, cfg.Web.Port)
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
