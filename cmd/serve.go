package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"letitflow-media/domain/classification"
	"letitflow-media/infrastructure/config"
	"letitflow-media/infrastructure/httpapi"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveAddress string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the clip classification endpoint",
	Long: `Start the HTTP server exposing:

  POST /classify   multipart upload in field "audio"; returns {"class": "SHORT"|"MEDIUM"|"LONG"}
  GET  /healthz    liveness probe
  GET  /metrics    Prometheus metrics

The model weights are loaded before the server starts listening; a missing
or incompatible weights file aborts start-up.

Example:
  letitflow serve --address 0.0.0.0:5000`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddress, "address", "", "Listen address (default from config: 127.0.0.1:5000)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}

	logger := log.Logger
	recognizer, err := BuildRecognizer(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return RunServeWithDependencies(ctx, cfg, recognizer, firstNonEmpty(serveAddress, cfg.Server.Address), logger, os.Stdout)
}

// RunServeWithDependencies serves until ctx is cancelled, then shuts down
// gracefully and closes the recognizer (for testing)
func RunServeWithDependencies(
	ctx context.Context,
	cfg *config.Config,
	recognizer classification.Recognizer,
	address string,
	logger zerolog.Logger,
	output OutputWriter,
) error {
	defer func() {
		if err := recognizer.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close recognizer")
		}
	}()

	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router := httpapi.NewRouter(logger, recognizer, httpapi.RouterConfig{
		UploadDir:   cfg.Paths.UploadDirectory,
		CORS:        cfg.Server.CORS,
		MaxUploadMB: cfg.Server.MaxUploadMB,
		Registry:    reg,
	})

	srv := &http.Server{
		Addr:              address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	fmt.Fprintf(output, "Listening on http://%s (uploads in %s)\n", address, cfg.Paths.UploadDirectory)
	logger.Info().Str("address", address).Msg("server started")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
