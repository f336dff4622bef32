package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blagoySimandov/bidcompare/go/internal/aggregator"
	"github.com/blagoySimandov/bidcompare/go/internal/api"
	"github.com/blagoySimandov/bidcompare/go/internal/auth"
	"github.com/blagoySimandov/bidcompare/go/internal/config"
	"github.com/blagoySimandov/bidcompare/go/internal/db"
	"github.com/blagoySimandov/bidcompare/go/internal/dispatch"
	"github.com/blagoySimandov/bidcompare/go/internal/extraction"
	"github.com/blagoySimandov/bidcompare/go/internal/gcs"
	"github.com/blagoySimandov/bidcompare/go/internal/logger"
	"github.com/blagoySimandov/bidcompare/go/internal/normalizer"
	"github.com/blagoySimandov/bidcompare/go/internal/notify"
	"github.com/blagoySimandov/bidcompare/go/internal/pipeline"
	"github.com/blagoySimandov/bidcompare/go/internal/registrar"
	"github.com/blagoySimandov/bidcompare/go/internal/scoring"
	"github.com/blagoySimandov/bidcompare/go/internal/services"
	"github.com/blagoySimandov/bidcompare/go/internal/state"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const maxPDFPages = 200

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	logger.Init(cfg.LogLevel, os.Stdout)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx := context.Background()

	bunDB, err := db.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	store, err := state.NewBunStore(ctx, bunDB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create store")
	}
	defer store.Close()

	bucket, err := gcs.NewBucket(ctx, cfg.UploadBucket)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create GCS bucket client")
	}
	defer bucket.Close()

	var mailer notify.Mailer = services.LogMailer{}
	if cfg.GmailCredentialsFile != "" && cfg.GmailTokenFile != "" {
		gmail, err := services.NewGmailMailer(ctx, cfg.GmailCredentialsFile, cfg.GmailTokenFile, cfg.MailFrom)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Gmail mailer")
		}
		mailer = gmail
	} else {
		log.Warn().Msg("Gmail not configured; completion emails will only be logged")
	}

	gate := notify.NewGate(store, mailer, cfg.FE_BASE_URL, cfg.MailTimeout)
	callbackPipeline := pipeline.NewPipeline(
		pipeline.NewNormalizeStage(normalizer.New(store)),
		pipeline.NewAggregateStage(aggregator.New(store, gate)),
	)
	verifier := extraction.NewVerifier(cfg.ExtractionWebhookSecret, cfg.CallbackMaxAge, cfg.CallbackMaxSkew)

	reg := registrar.New(store, bucket, services.NewPDFInspector(maxPDFPages), cfg.MaxUploadBytes)
	dispatcher := dispatch.New(store, bucket, extraction.NewClient(cfg.ExtractionAPIURL, cfg.ExtractionAPIKey, cfg.ExtractionTimeout), dispatch.Options{
		CallbackURL:    cfg.CallbackURL(),
		SignedURLTTL:   cfg.SignedURLTTL,
		SigningWorkers: cfg.SigningWorkers,
	})
	scorer := scoring.New(store)

	jwtVerifier, err := auth.NewJWTVerifier(cfg.JWKSURL, cfg.JWTIssuer)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create JWT verifier")
	}
	defer jwtVerifier.Close()

	router := api.SetupRoutes(
		api.NewProjectHandler(store, reg, dispatcher, scorer, cfg.MaxUploadBytes, cfg.StaleProcessingAfter),
		api.NewCallbackHandler(verifier, callbackPipeline, 0),
		auth.NewMiddleware(jwtVerifier),
		api.RouterOptions{AllowedOrigin: cfg.FE_BASE_URL, Logger: logger.Log},
	)

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		log.Info().Msg("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Server shutdown error")
		}
	}()

	log.Info().Str("addr", cfg.ServerAddr).Str("callbackURL", cfg.CallbackURL()).Msg("Server starting")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("Server failed to start")
	}

	log.Info().Msg("Server stopped")
}
