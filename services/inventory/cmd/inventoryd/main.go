package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"machboard/pkg/bus"
	"machboard/pkg/kv"
	"machboard/pkg/render"
	gos3 "machboard/pkg/s3"
	"machboard/pkg/telemetry"
	"machboard/services/inventory"
)

const serviceName = "machboard-inventory"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := inventory.LoadConfig(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	shutdownTelemetry, requestMiddleware, err := telemetry.Init(ctx, serviceName, cfg.OTLPEndpoint, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("init telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	kvStore, err := kv.Open(cfg.DataDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.DataDir).Msg("open data store")
	}
	defer func() {
		if err := kvStore.Close(); err != nil {
			log.Error().Err(err).Msg("close data store")
		}
	}()

	seed := inventory.DefaultSeed()
	if cfg.SeedFile != "" {
		seed, err = inventory.LoadSeedFile(cfg.SeedFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.SeedFile).Msg("load seed file")
		}
	}

	var eventBus *bus.Bus
	if cfg.NATSURL != "" {
		eventBus, err = bus.New(cfg.NATSURL)
		if err != nil {
			log.Fatal().Err(err).Msg("connect nats")
		}
		defer eventBus.Close()
	}

	var s3Client *gos3.Client
	if cfg.SnapshotBucket != "" {
		s3Client, err = gos3.NewClientFromEnv()
		if err != nil {
			log.Warn().Err(err).Msg("s3 unavailable, snapshot export disabled")
			s3Client = nil
		}
	}

	store := inventory.NewStore(kvStore, inventory.StoreOptions{
		Seed:   seed,
		Logger: log.Logger,
	})

	if eventBus != nil {
		recorder, err := inventory.NewRecorder(kvStore, eventBus, log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("init audit recorder")
		}
		if err := recorder.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("start audit recorder")
		}
		defer func() {
			if err := recorder.Close(); err != nil {
				log.Error().Err(err).Msg("close audit recorder")
			}
		}()
	}

	renderer, err := render.New()
	if err != nil {
		log.Fatal().Err(err).Msg("init renderer")
	}

	api, err := inventory.NewAPI(inventory.Deps{
		Store: store,
		Bus:   eventBus,
		S3:    s3Client,
	}, renderer, inventory.APIConfig{
		Title:          cfg.Title,
		SnapshotBucket: cfg.SnapshotBucket,
		AllowedOrigins: cfg.AllowedOrigins,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("init api")
	}

	routes, err := api.Routes()
	if err != nil {
		log.Fatal().Err(err).Msg("build routes")
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           requestMiddleware(routes),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr).Str("title", cfg.Title).Msg("starting machboard inventory")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown server")
	}
}
