package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"campusfund/internal/adapter/repo"
	"campusfund/internal/db"
	"campusfund/internal/http/handlers"
	"campusfund/internal/http/httpapi"
	"campusfund/internal/infra"
	"campusfund/internal/infra/geoip"
	"campusfund/internal/live"
	"campusfund/internal/middleware"
	"campusfund/internal/payment"
	"campusfund/internal/storage"
	"campusfund/internal/uploads"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	if err := db.Bootstrap(ctx, dbpool); err != nil {
		logger.Fatal().Err(err).Msg("failed to apply schema")
	}

	resolver, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer resolver.Close()

	var charger payment.Charger
	if cfg.MidtransServerKey != "" {
		charger = payment.NewMidtrans(cfg.MidtransServerKey, cfg.MidtransProd)
	} else {
		logger.Warn().Msg("no payment gateway configured; donations are applied without charge confirmation")
	}

	var uploader uploads.ImageUploader
	staticDir := ""
	if cfg.CloudinaryCloud != "" {
		uploader, err = uploads.NewCloudinaryUploader(cfg.CloudinaryCloud, cfg.CloudinaryKey, cfg.CloudinarySecret)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure cloudinary")
		}
	} else {
		store, err := storage.NewFileStore(cfg.UploadDir)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare upload dir")
		}
		uploader = &uploads.FilesystemUploader{Store: store, BaseURL: cfg.StorageBaseURL}
		staticDir = store.BasePath()
	}

	broker := live.NewBroker(
		repo.NewCampaignRepository(dbpool),
		live.NewPQListener(cfg.DatabaseURL, logger),
		logger,
	)
	go func() {
		if err := broker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("live broker stopped")
		}
	}()

	app := &handlers.App{
		SQL:            infra.NewSQLRunner(dbpool, logger),
		Logger:         logger,
		JWTSecret:      cfg.JWTSecret,
		IsAdminEmail:   cfg.IsAdminEmail,
		Charger:        charger,
		PaymentTimeout: cfg.PaymentTimeout,
		Uploader:       uploader,
		Live:           broker,
		Country:        middleware.CountryLookup(resolver.CountryCode),
	}

	router := httpapi.NewRouter(app, cfg, logger, staticDir)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
