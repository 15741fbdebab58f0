package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"kreator/internal/auth"
	"kreator/internal/http/handlers"
	httpapi "kreator/internal/http/httpapi"
	"kreator/internal/infra"
	"kreator/internal/infra/geoip"
	"kreator/internal/middleware"
	"kreator/internal/providers/fal"
	"kreator/internal/quota"
	"kreator/internal/refimg"
)

func main() {
	// .env is optional; production reads real environment variables.
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	var countryLookup middleware.CountryLookup
	if resolver, err := geoip.NewResolver(cfg.GeoIPDBPath); err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if resolver != nil {
		countryLookup = resolver.CountryCode
	}

	gate := auth.NewGate(cfg.AdminPassword, cfg.AppPassword)
	if gate.Open() {
		logger.Warn().Msg("no access passwords configured; gate is open by explicit opt-in")
	}

	tracker := quota.New()
	tracker.Limit = cfg.QuotaLimit
	tracker.Window = cfg.QuotaWindow

	app := &handlers.App{
		Logger:   logger,
		Config:   cfg,
		Gate:     gate,
		Sessions: auth.NewManager(cfg.SessionSecret, cfg.AppEnv != "development"),
		Quota:    tracker,
		Resolver: refimg.NewResolver(cfg.PresetDir, cfg.MaxUploadImages, cfg.MaxImageDimension, logger),
		Invoker: fal.NewClient(fal.Options{
			BaseURL: cfg.FalBaseURL,
			APIKey:  cfg.FalAPIKey,
			Timeout: cfg.GenerateTimeout,
		}),
	}

	router := httpapi.NewRouter(app, logger, countryLookup)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
