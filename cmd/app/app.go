package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"postboard/internal/config"
	"postboard/internal/database"
	handlers "postboard/internal/handler"
	"postboard/internal/middleware"
	"postboard/internal/repository"
	"postboard/internal/service"
	"postboard/internal/storage"
)

type App struct {
	Cfg      *config.Config
	Logger   *zap.Logger
	DB       *database.DB
	Services *service.Service
	Handler  http.Handler
}

// New connects to the database and object storage and wires every layer.
// The caller must Close the returned App.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if cfg.JWTSecretKey == "" {
		return nil, errors.New("JWT_SECRET_KEY is not set")
	}

	db, err := database.ConnectDB(cfg.DB, logger)
	if err != nil {
		return nil, err
	}

	// left as a nil interface when attachments are disabled
	var store storage.Storage
	if cfg.MinIO.Enabled {
		minioClient, err := storage.NewMinIOClient(ctx, cfg.MinIO)
		if err != nil {
			db.CloseDB()
			return nil, fmt.Errorf("init minio: %w", err)
		}
		store = minioClient
		logger.Info("image storage enabled", zap.String("endpoint", cfg.MinIO.Endpoint), zap.String("bucket", cfg.MinIO.BucketName))
	}

	repo := repository.NewRepository(db.DB)
	services := service.NewService(repo, cfg, store, service.RealClock{}, logger)
	h := handlers.NewHandlers(services, db, cfg, logger.Named("http"))

	handler := middleware.Chain(
		h.Router(middleware.AuthMiddleware(services.Tokens)),
		middleware.LoggingMiddleware(logger.Named("http")),
		middleware.CORSMiddleware,
	)

	return &App{
		Cfg:      cfg,
		Logger:   logger,
		DB:       db,
		Services: services,
		Handler:  handler,
	}, nil
}

func (a *App) Close() error {
	return a.DB.CloseDB()
}

// Serve runs the HTTP server until ctx is cancelled, then drains it within
// the configured shutdown timeout.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.Cfg.ServerPort),
		Handler:           a.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("listening", zap.String("addr", srv.Addr), zap.String("db", a.Cfg.DB.Name))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.Logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
