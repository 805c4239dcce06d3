package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/gigflow/internal/app"
	"github.com/ignatzorin/gigflow/internal/config"
	"github.com/ignatzorin/gigflow/internal/db"
	"github.com/ignatzorin/gigflow/internal/domain/event"
	"github.com/ignatzorin/gigflow/internal/goroutine"
	"github.com/ignatzorin/gigflow/internal/logger"
	"github.com/ignatzorin/gigflow/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	logger.Init(cfg.LogLevel, !cfg.IsProduction())

	var storage app.Storage
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		logger.Log.Warn("main: данные хранятся в памяти и будут потеряны при перезапуске")
		storage = app.NewMemoryStorage()
	default:
		dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Log.WithError(err).Fatal("main: ошибка подключения к базе")
		}
		defer safeClose(dbConn)

		if err := db.RunMigrations(dbConn, cfg.DatabaseName); err != nil {
			logger.Log.WithError(err).Fatal("main: ошибка миграций")
		}
		storage = app.NewPostgresStorage(dbConn, cfg.DBStatementTimeout)
	}

	hub := ws.NewHub()
	goroutine.SafeGoWithContext(ctx, hub.Run)

	var dispatcher event.Dispatcher = hub
	if cfg.RedisURL != "" {
		redisClient, err := ws.NewRedisClient(cfg.RedisURL)
		if err != nil {
			logger.Log.WithError(err).Fatal("main: ошибка настройки redis")
		}
		defer redisClient.Close()

		relay := ws.NewRedisRelay(redisClient, ws.DefaultRelayChannel, hub)
		goroutine.SafeGoWithContext(ctx, func(ctx context.Context) {
			if err := relay.Run(ctx); err != nil {
				logger.Log.WithError(err).Error("main: ретранслятор redis остановлен")
			}
		})
		dispatcher = relay
	}

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           app.NewServer(cfg, storage, dispatcher, hub).Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.WithError(err).Error("main: ошибка остановки http сервера")
		}
	}()

	logger.Log.WithFields(map[string]interface{}{
		"port":    cfg.HTTPPort,
		"storage": storage.Name,
		"redis":   cfg.RedisURL != "",
	}).Info("main: HTTP сервер запущен")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.WithError(err).Fatal("main: сервер завершился с ошибкой")
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		logger.Log.WithError(err).Error("main: ошибка закрытия базы")
	}
}
