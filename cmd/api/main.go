package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/quickai/server/internal/adapter/repo"
	"github.com/quickai/server/internal/http/handlers"
	"github.com/quickai/server/internal/http/httpapi"
	"github.com/quickai/server/internal/infra"
	"github.com/quickai/server/internal/providers/image"
	"github.com/quickai/server/internal/providers/media"
	"github.com/quickai/server/internal/providers/resume"
	"github.com/quickai/server/internal/providers/text"
	"github.com/quickai/server/internal/quota"
	"github.com/quickai/server/internal/service"
	"github.com/quickai/server/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	if err := repo.EnsureSchema(ctx, dbpool); err != nil {
		logger.Fatal().Err(err).Msg("failed to ensure schema")
	}

	var store storage.ObjectStore
	var staticDir string
	switch cfg.StorageBackend {
	case "s3":
		store, err = storage.NewS3Store(storage.S3Config{
			Endpoint:      cfg.S3Endpoint,
			Region:        cfg.S3Region,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			Bucket:        cfg.S3Bucket,
			PublicBaseURL: cfg.S3PublicBaseURL,
			UsePathStyle:  cfg.S3UsePathStyle,
		})
	default:
		store, err = storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
		staticDir = cfg.StoragePath
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure object storage")
	}

	texts, err := text.NewGeminiGenerator(text.GeminiOptions{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure text generator")
	}

	images, err := image.NewClipDropSynthesizer(image.ClipDropOptions{
		APIKey:  cfg.ClipDropAPIKey,
		BaseURL: cfg.ClipDropBaseURL,
		Store:   store,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure image synthesizer")
	}

	editor, err := media.NewTransformer(media.TransformerOptions{
		APIKey:  cfg.MediaAPIKey,
		BaseURL: cfg.MediaBaseURL,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure media transformer")
	}

	reviewer, err := resume.NewReviewer(texts)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure resume reviewer")
	}

	creations := repo.NewCreationRepository(dbpool)
	pipeline, err := service.NewOrchestrator(service.Deps{
		Ledger: quota.NewLedger(dbpool),
		Store:  creations,
		Texts:  texts,
		Images: images,
		Media:  editor,
		Resume: reviewer,
		Logger: logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to assemble pipeline")
	}

	app := handlers.NewApp(logger, pipeline, creations)
	router := httpapi.NewRouter(app, httpapi.Options{
		JWTSecret:       cfg.JWTSecret,
		RateLimitPerMin: cfg.RateLimitPerMin,
		StaticDir:       staticDir,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
