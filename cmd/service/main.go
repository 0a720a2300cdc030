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

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kjstillabower/outfit-guide-service/internal/client"
	"github.com/kjstillabower/outfit-guide-service/internal/config"
	httphandler "github.com/kjstillabower/outfit-guide-service/internal/http"
	"github.com/kjstillabower/outfit-guide-service/internal/lifecycle"
	"github.com/kjstillabower/outfit-guide-service/internal/observability"
	"github.com/kjstillabower/outfit-guide-service/internal/service"
)

func main() {
	// .env is optional; real environment variables win over it.
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		logger.Warn("load .env", zap.Error(envErr))
	}

	srv, provider, err := buildServer(cfg, logger)
	if err != nil {
		logger.Fatal("weather provider", zap.Error(err))
	}
	logger.Info("weather provider selected",
		zap.String("provider", provider.Name()),
		zap.Duration("upstream_timeout", cfg.UpstreamTimeout))

	go func() {
		logger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.EnvName),
			zap.Strings("allowed_origins", cfg.AllowedOrigins))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	lifecycle.SetShuttingDown(true)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	inFlight := httphandler.InFlightCount()
	logger.Info("waiting for in-flight requests", zap.Int64("count", inFlight))
	observability.RecordShutdownInFlight(inFlight)
	waitCtx, waitCancel := context.WithTimeout(context.Background(), cfg.ShutdownInFlightTimeout)
	defer waitCancel()
	if err := httphandler.WaitForInFlight(waitCtx, cfg.ShutdownInFlightCheckInterval); err != nil {
		logger.Warn("in-flight requests not completed", zap.Error(err), zap.Int64("remaining", httphandler.InFlightCount()))
	}

	if err := observability.FlushTelemetry(logger); err != nil {
		fmt.Fprintf(os.Stderr, "telemetry flush: %v\n", err)
	}
	logger.Info("shutdown complete", zap.Duration("drained_for", lifecycle.DrainingFor()))
}

// buildServer wires provider, service, handler and router into an http.Server.
func buildServer(cfg *config.Config, logger *zap.Logger) (*http.Server, client.WeatherProvider, error) {
	provider, err := client.NewProvider(client.Options{
		OpenWeatherKey: cfg.OpenWeatherKey,
		OpenWeatherURL: cfg.OpenWeatherURL,
		GeocoderURL:    cfg.GeocoderURL,
		ForecastURL:    cfg.ForecastURL,
		UserAgent:      cfg.GeocoderUserAgent,
		Timeout:        cfg.UpstreamTimeout,
	})
	if err != nil {
		return nil, nil, err
	}

	if len(cfg.TrackedLocations) > 0 {
		observability.SetTrackedLocations(cfg.TrackedLocations)
	}

	weatherService := service.NewWeatherService(provider)
	handler := httphandler.NewHandler(weatherService, logger, cfg.LocationMaxLength, cfg.LocationMinLength)
	router := httphandler.NewRouter(handler, logger, httphandler.RouterConfig{
		RequestTimeout: cfg.RequestTimeout,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	return &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
	}, provider, nil
}
