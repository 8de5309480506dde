package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
	"github.com/spf13/cobra"

	"github.com/dkeye/LivePoll/internal/adapters/export"
	router "github.com/dkeye/LivePoll/internal/adapters/http"
	"github.com/dkeye/LivePoll/internal/app"
	"github.com/dkeye/LivePoll/internal/app/orch"
	"github.com/dkeye/LivePoll/internal/config"
	"github.com/dkeye/LivePoll/internal/metrics"
)

func init() {
	serveCmd.Flags().String("config", "", "path to a yaml config file")
	serveCmd.Flags().Int("port", 0, "listen port")
	serveCmd.Flags().String("mode", "", "gin mode: debug or release")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the REST API and the websocket endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context(), cmd)
	},
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	// Human-friendly output for terminal in debug; JSON otherwise.
	if cfg.Mode != "debug" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}

func serve(parent context.Context, cmd *cobra.Command) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	setupLogger(cfg)

	m := metrics.New()
	hub := app.NewHub(app.ParsePolicy(cfg.Backpressure), m)

	var archive orch.Archiver
	var exporter *export.Exporter
	if len(cfg.Kafka.Brokers) > 0 {
		sink := export.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer func() {
			if err := sink.Close(); err != nil {
				log.Error().Err(err).Msg("close kafka sink")
			}
		}()
		exporter = export.NewExporter(sink, 64)
		archive = exporter
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("history export enabled")
	}

	o := orch.New(hub, m, archive, orch.Options{
		DefaultDuration: cfg.Poll.DefaultDuration,
		MaxDuration:     cfg.Poll.MaxDuration,
		ChatCapacity:    cfg.Chat.Capacity,
		MaxMessageLen:   cfg.Chat.MaxLength,
		ChatRateLimit:   cfg.Chat.RateLimit,
		ChatRateWindow:  cfg.Chat.RateInterval,
	})

	r := router.SetupRouter(ctx, cfg, o, m)
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var wg conc.WaitGroup
	wg.Go(func() { hub.Run(ctx) })
	if exporter != nil {
		wg.Go(func() { exporter.Run(ctx) })
	}
	wg.Go(func() {
		log.Info().Str("addr", addr).Msg("LivePoll server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	})

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	wg.Wait()
	log.Info().Msg("Server exited gracefully")
	return nil
}
