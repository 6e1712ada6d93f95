package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	natsbroker "github.com/feniix/family-gallery-sub000/internal/adapters/eventbroker/nats"
	"github.com/feniix/family-gallery-sub000/internal/adapters/extractor"
	"github.com/feniix/family-gallery-sub000/internal/adapters/handlers/http/chi"
	"github.com/feniix/family-gallery-sub000/internal/adapters/handlers/http/chi/v1/media"
	settingshandler "github.com/feniix/family-gallery-sub000/internal/adapters/handlers/http/chi/v1/settings"
	userhandler "github.com/feniix/family-gallery-sub000/internal/adapters/handlers/http/chi/v1/user"
	"github.com/feniix/family-gallery-sub000/internal/adapters/storage/minio"
	"github.com/feniix/family-gallery-sub000/internal/adapters/thumbnail"
	"github.com/feniix/family-gallery-sub000/internal/config"
	"github.com/feniix/family-gallery-sub000/internal/core/port"
	"github.com/feniix/family-gallery-sub000/internal/core/service/dateresolve"
	"github.com/feniix/family-gallery-sub000/internal/core/service/docstore"
	"github.com/feniix/family-gallery-sub000/internal/core/service/duplicate"
	"github.com/feniix/family-gallery-sub000/internal/core/service/gallery"
	"github.com/feniix/family-gallery-sub000/internal/core/service/index"
	"github.com/feniix/family-gallery-sub000/internal/core/service/lock"
	"github.com/feniix/family-gallery-sub000/internal/core/service/settings"
	"github.com/feniix/family-gallery-sub000/internal/core/service/upload"
	"github.com/feniix/family-gallery-sub000/internal/core/service/user"
)

func main() {

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	//storage
	minioAdapter, err := minio.NewAdapter(ctx, cfg.Minio, logger)
	if err != nil {
		logger.Error("failed to init minio", "error", err)
		os.Exit(1)
	}
	logger.Info("object storage connected", "endpoint", cfg.Minio.Endpoint, "bucket", cfg.Minio.BucketName)

	//event publisher, optional
	var publisher port.EventPublisher
	if cfg.NATS.URL != "" {
		natsPublisher, err := natsbroker.NewPublisher(ctx, cfg.NATS, logger)
		if err != nil {
			logger.Error("failed to init NATS publisher", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := natsPublisher.Close(); err != nil {
				logger.Error("failed to close NATS publisher", "error", err)
			}
		}()
		publisher = natsPublisher
		logger.Info("ingest event publishing enabled", "subject", cfg.NATS.Subject)
	}

	//document store over object storage
	locks := lock.NewManager(cfg.Lock, logger)
	store := docstore.NewStore(minioAdapter, locks, cfg.Store, logger)

	//services
	indexService := index.NewService(store, logger)
	uploadService := upload.NewService(
		store,
		minioAdapter,
		extractor.NewExtractor(logger),
		thumbnail.NewGenerator(cfg.Thumbnail),
		duplicate.NewDetector(store, cfg.Ingest.DuplicateScanFrom, logger),
		dateresolve.NewResolver(),
		indexService,
		publisher,
		cfg.Ingest,
		logger,
	)
	galleryService := gallery.NewService(store, logger)
	settingsService := settings.NewService(store, logger)
	userService := user.NewService(store, logger)

	//http
	mediaHandler := media.NewMediaHandlerV1(uploadService, galleryService, cfg.Ingest.MaxUploadBytes, logger)
	settingsHandler := settingshandler.NewSettingsHandlerV1(settingsService, logger)
	userHandler := userhandler.NewUserHandlerV1(userService, logger)

	router := chi.NewRouter(logger, mediaHandler, settingsHandler, userHandler, cfg.Env.Env, cfg.Ingest.MaxUploadBytes)
	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("starting server", "host", cfg.Server.Host, "port", cfg.Server.Port)
		servErr := server.ListenAndServe()
		if servErr != nil && !errors.Is(servErr, http.ErrServerClosed) {
			logger.Error("failed to start server", "error", servErr)
			stop()
		}
	}()

	// init index reconciliation task
	wg.Add(1)
	go func() {
		defer wg.Done()
		initRecountTask(ctx, indexService, cfg.Ingest.RecountEvery, logger)
	}()

	//wait for context cancel
	<-ctx.Done()
	logger.Info("gracefully shutting down app")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "error", err)
	} else {
		logger.Info("server gracefully shutdown complete")
	}

	wg.Wait()
	logger.Info("app shutdown complete")

}

// initRecountTask periodically re-sums the media index so drift from
// failed uploads never accumulates
func initRecountTask(ctx context.Context, indexer port.MediaIndexer, every time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	logger.Info("index recount task initialized", "interval", every)

	for {
		select {
		case <-ticker.C:
			total, err := indexer.Recount(ctx)
			if err != nil {
				logger.Error("failed to recount media index", "error", err)
			} else {
				logger.Info("media index recounted", "total", total)
			}
		case <-ctx.Done():
			logger.Info("index recount task stopped")
			return
		}
	}

}
