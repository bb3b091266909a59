package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adilzhk/tournament-badges/config"
	"github.com/adilzhk/tournament-badges/db"
	"github.com/adilzhk/tournament-badges/handlers"
	"github.com/adilzhk/tournament-badges/mint"
	"github.com/adilzhk/tournament-badges/notify"
	"github.com/adilzhk/tournament-badges/repositories"
	api "github.com/adilzhk/tournament-badges/routes"
	"github.com/adilzhk/tournament-badges/services"
	"github.com/adilzhk/tournament-badges/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("network", cfg.SolanaNetwork))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	// Инициализация загрузчика файлов (Cloudflare R2)
	uploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Cloudflare R2 uploader initialized")

	// Хаб уведомлений (websocket)
	hub := notify.NewHub(logger)
	go hub.Run()
	logger.Info("notification hub started")

	// Инициализация репозиториев
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	winnerRepo := repositories.NewPostgresWinnerRepository(dbConn)
	logger.Info("repositories initialized")

	// Клиент внешнего минтера и оркестратор. Клиент собирается один раз
	// из валидированной конфигурации и прокидывается явно — никакого
	// глобального синглтона.
	minter := mint.NewScriptMinter(cfg.MintScriptPath, cfg.MintKeypairPath, cfg.MintTimeout)
	endpoint := mint.EndpointForNetwork(cfg.SolanaNetwork)
	orchestrator := mint.NewOrchestrator(
		winnerRepo, tournamentRepo, teamRepo,
		minter, endpoint, hub, cfg.MintWorkers, logger,
	)

	// Инициализация сервисов
	authService := services.NewAuthService(cfg.AdminPasswordHash, cfg.JWTSecretKey)
	tournamentService := services.NewTournamentService(tournamentRepo, uploader)
	teamService := services.NewTeamService(teamRepo, tournamentRepo)
	matchService := services.NewMatchService(dbConn, matchRepo, tournamentRepo)
	winnerService := services.NewWinnerService(dbConn, winnerRepo, tournamentRepo, teamRepo, orchestrator, hub, logger)
	logger.Info("services initialized")

	// Инициализация обработчиков HTTP
	authHandler := handlers.NewAuthHandler(authService)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	teamHandler := handlers.NewTeamHandler(teamService)
	matchHandler := handlers.NewMatchHandler(matchService)
	winnerHandler := handlers.NewWinnerHandler(winnerService, matchService)
	nftHandler := handlers.NewNFTHandler(orchestrator, winnerService)
	webSocketHandler := handlers.NewWebSocketHandler(hub, logger)

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		authHandler,
		tournamentHandler,
		teamHandler,
		matchHandler,
		winnerHandler,
		nftHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout: 10 * time.Second,
		// Ручной ретрай минта отвечает синхронно и может занять весь
		// таймаут внешнего минтера.
		WriteTimeout: cfg.MintTimeout + 15*time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
		}

		// Дожидаемся фоновых минтов: внешний вызов может идти до двух минут,
		// но бросать его на полпути при рестарте не хочется без нужды.
		drainCtx, cancelDrain := context.WithTimeout(context.Background(), cfg.MintTimeout)
		defer cancelDrain()
		if err := orchestrator.Shutdown(drainCtx); err != nil {
			logger.Warn("mint orchestrator drain incomplete", slog.Any("error", err))
		}
	}
	logger.Info("application exited")
}
