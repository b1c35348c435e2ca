package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/Belphemur/jellyplay/internal/client"
	"github.com/Belphemur/jellyplay/internal/config"
	grpcserver "github.com/Belphemur/jellyplay/internal/grpc"
	"github.com/Belphemur/jellyplay/internal/metrics"
	"github.com/Belphemur/jellyplay/internal/playback"
)

func main() {
	cfg := config.GetConfig()
	logger := config.GetLogger()

	logger.Info().
		Str("jellyfin_url", cfg.Jellyfin.URL).
		Str("device_id", cfg.Jellyfin.DeviceID).
		Int("max_bitrate", cfg.Playback.MaxBitrate).
		Bool("native_player", cfg.Playback.NativePlayer).
		Str("cache_provider", cfg.Cache.Provider).
		Int("server_port", cfg.Server.Port).
		Str("server_address", cfg.Server.Address).
		Msg("Application started with configuration")

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:     cfg.SentryDSN,
			Release: config.DefaultClientName + "@" + cfg.Jellyfin.ClientVersion,
		}); err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Sentry, continuing without error reporting")
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	debounce, err := time.ParseDuration(cfg.Playback.ProgressDebounce)
	if err != nil {
		logger.Warn().Err(err).Str("debounce", cfg.Playback.ProgressDebounce).Msg("Invalid progress debounce, using default")
		debounce, _ = time.ParseDuration(config.DefaultProgressDebounce)
	}

	jellyfin := client.NewClient(cfg)
	defer func() {
		if err := jellyfin.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close Jellyfin client")
		}
	}()

	reporter := playback.NewReporter(jellyfin, debounce)
	manager := playback.NewManager(jellyfin, reporter, playback.ManagerConfig{
		BaseURL:      jellyfin.BaseURL(),
		AccessToken:  jellyfin.AccessToken(),
		DeviceID:     jellyfin.DeviceID(),
		UserID:       jellyfin.UserID(),
		MaxBitrate:   cfg.Playback.MaxBitrate,
		NativePlayer: cfg.Playback.NativePlayer,
		Preferences: playback.Preferences{
			SubtitleLanguage: cfg.Playback.SubtitleLanguage,
			AudioLanguage:    cfg.Playback.AudioLanguage,
			SyncStreams:      cfg.Playback.SyncStreams,
		},
	})

	grpcServer := grpcserver.NewGRPCServer(manager, grpcserver.ServerConfig{
		BaseURL:      jellyfin.BaseURL(),
		MaxBitrate:   cfg.Playback.MaxBitrate,
		NativePlayer: cfg.Playback.NativePlayer,
		PosterWidth:  400,
	})

	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewHTTPServer(cfg.Server.Address, cfg.Metrics.Port)
		go func() {
			logger.Info().Str("address", metricsServer.Addr).Msg("Starting Prometheus metrics HTTP server")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal().Err(err).Msg("Failed to serve metrics")
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Error().Err(err).Msg("Failed to shutdown metrics server")
			}
		}()
	}

	address := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		sentry.CaptureException(err)
		logger.Fatal().Err(err).Str("address", address).Msg("Failed to create listener")
	}

	logger.Info().Str("address", address).Msg("Starting gRPC server")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		grpcServer.GracefulStop()
	}()

	if err := grpcServer.Serve(listener); err != nil {
		sentry.CaptureException(err)
		logger.Fatal().Err(err).Msg("Failed to serve gRPC")
	}

	// In-flight lookups first, then drain queued reports.
	manager.Close()
	reporter.Close()

	logger.Info().Msg("Server stopped gracefully")
}
