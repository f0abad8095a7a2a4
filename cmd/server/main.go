package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/studio-backend/internal/config"
	"github.com/ignatzorin/studio-backend/internal/db"
	"github.com/ignatzorin/studio-backend/internal/feed"
	"github.com/ignatzorin/studio-backend/internal/goroutine"
	httpHandlers "github.com/ignatzorin/studio-backend/internal/http/handlers"
	httpRouter "github.com/ignatzorin/studio-backend/internal/http/router"
	"github.com/ignatzorin/studio-backend/internal/logger"
	"github.com/ignatzorin/studio-backend/internal/repository"
	"github.com/ignatzorin/studio-backend/internal/service"
	"github.com/ignatzorin/studio-backend/internal/storage"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	logLevel := "info"
	if cfg.Env == "development" {
		logLevel = "debug"
		logger.Init(logLevel)
		logger.SetTextFormatter()
	} else {
		logger.Init(logLevel)
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Инициализируем вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	imageStorage, err := storage.NewImageStorage(cfg.MediaStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	quoteRepo := repository.NewQuoteRepository(dbConn)
	catalogRepo := repository.NewCatalogRepository(dbConn)
	mediaRepo := repository.NewMediaRepository(dbConn)

	// Сервисы.
	authService := service.NewAuthService(userRepo, tokenManager)
	quoteService := service.NewQuoteService(quoteRepo)
	catalogService := service.NewCatalogService(catalogRepo)

	// Первичный администратор, если задан в конфигурации.
	if err := authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("main: не удалось создать администратора: %v", err)
	}

	// Фид синхронизации заявок.
	hub := feed.NewHub(ctx, quoteRepo)
	go hub.Run()
	quoteService.SetFeed(hub)

	// Периодическая очистка истёкших refresh-сессий.
	goroutine.SafeGoWithContext(ctx, func(ctx context.Context) {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := userRepo.DeleteExpiredSessions(ctx); err != nil {
					log.Printf("main: не удалось очистить истёкшие сессии: %v", err)
				}
			}
		}
	})

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(authService)
	quoteHandler := httpHandlers.NewQuoteHandler(quoteService)
	catalogHandler := httpHandlers.NewCatalogHandler(catalogService)
	mediaHandler := httpHandlers.NewMediaHandler(mediaRepo, imageStorage)
	wsHandler := httpHandlers.NewWSHandler(quoteService, tokenManager)
	healthHandler := httpHandlers.NewHealthHandler(dbConn, hub)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, authHandler, quoteHandler, catalogHandler, mediaHandler, wsHandler, healthHandler, tokenManager)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
