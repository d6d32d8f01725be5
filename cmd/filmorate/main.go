// cmd/filmorate/main.go
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"filmorate/internal/api"
	"filmorate/internal/config"
	"filmorate/internal/service"
	"filmorate/internal/store"
	"filmorate/internal/validation"
)

func logLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	// .env необязателен; в контейнере конфигурация приходит из окружения.
	_ = godotenv.Load()
	cfg := config.New()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)}))
	validate := validation.New()

	// --- Выбор хранилища ---
	var (
		filmStorage store.FilmStore
		userStorage store.UserStore
	)
	switch cfg.Storage {
	case config.StorageMemory:
		logger.Warn("Using in-memory storage, all data will be lost on shutdown")
		filmStorage = store.NewMemoryFilmStore(logger)
		userStorage = store.NewMemoryUserStore(logger)
	default:
		db, err := store.ConnectPostgres(cfg.DatabaseURL, logger)
		if err != nil {
			logger.Error("Failed to initialize PostgreSQL connection", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Error("Failed to close PostgreSQL connection", slog.String("error", err.Error()))
			} else {
				logger.Info("PostgreSQL connection closed.")
			}
		}()

		filmStorage, err = store.NewPostgresFilmStore(db, logger)
		if err != nil {
			logger.Error("Failed to initialize PostgreSQL film store", slog.String("error", err.Error()))
			os.Exit(1)
		}
		userStorage, err = store.NewPostgresUserStore(db, logger)
		if err != nil {
			logger.Error("Failed to initialize PostgreSQL user store", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}
	logger.Info("Storage initialized", slog.String("kind", cfg.Storage))

	// --- Сервисы и HTTP сервер ---
	userService := service.NewUserService(userStorage, filmStorage, validate, logger)
	filmService := service.NewFilmService(filmStorage, userService, validate, logger)

	httpHandler := api.NewHTTPHandler(filmService, userService, logger)
	httpRouter := api.NewHTTPRouter(httpHandler)
	httpSrv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      httpRouter,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("Filmorate HTTP service starting", slog.String("port", cfg.HTTPPort))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Filmorate HTTP service ListenAndServe() failed", slog.String("error", err.Error()))
		}
	}()

	// Ожидание сигнала для graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Filmorate shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown failed", slog.String("error", err.Error()))
	} else {
		logger.Info("HTTP server gracefully stopped.")
	}
}
