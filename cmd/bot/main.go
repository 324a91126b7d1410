package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"go-acs-bot/internal/bot"
	"go-acs-bot/internal/config"
	"go-acs-bot/internal/database"
	"go-acs-bot/internal/handlers"
	"go-acs-bot/internal/logger"
	"go-acs-bot/internal/scheduler"
	"go-acs-bot/internal/store"
)

const shutdownTimeout = 30 * time.Second

func main() {
	printBanner()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	if err := logger.Init(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty}); err != nil {
		logger.Fatal().Err(err).Msg("invalid LOG_LEVEL")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error().Err(err).Msg("bot exited with error")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	docStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer docStore.Close()

	repo := config.NewRepository(docStore)
	if err := repo.Load(ctx); err != nil {
		return fmt.Errorf("failed to load bot configuration: %w", err)
	}
	logger.Info().Int("servers", len(repo.ServerIDs())).Str("backend", cfg.StoreBackend).Msg("✓ Configuration loaded")

	db, err := database.InitDB(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	if err := db.EnsureDefaultAdmin(cfg.AdminUser, cfg.AdminPass); err != nil {
		return err
	}
	logger.Info().Msg("✓ Database initialized successfully")

	manager := bot.NewManager(repo, bot.ManagerOptions{
		TransportMode:  cfg.TransportMode,
		WebhookURL:     cfg.WebhookURL,
		WebhookSecret:  cfg.WebhookSecret,
		TelegramAPIURL: cfg.TelegramAPIURL,
		ACSTimeout:     cfg.ACSTimeout,
		PollTimeout:    cfg.PollTimeout,
	}, db)
	if err := manager.Start(ctx); err != nil {
		return err
	}

	sched := scheduler.New(db, cfg.AuditRetention, cfg.AuditPruneInterval)
	sched.Start(ctx)
	logger.Info().Msg("✓ Scheduler started")

	h := handlers.NewHandler(manager, db, db, cfg.JWTSecret)
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           c.Handler(handlers.NewRouter(h)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Int("port", cfg.ServerPort).Msg("✓ HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("🛑 Shutting down...")
	case err := <-serveErr:
		if err != nil {
			logger.Error().Err(err).Msg("HTTP server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// stop accepting webhooks before waiting on in-flight commands
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("HTTP server shutdown")
	}
	sched.Stop()
	if err := manager.Stop(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("bots did not stop cleanly")
	}
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.StoreBackend == config.BackendRedis {
		s, err := store.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisKey)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return s, nil
	}
	return store.NewFileStore(cfg.ConfigPath), nil
}

func printBanner() {
	banner := `
   ██████╗ ███████╗███╗   ██╗██╗███████╗     ██████╗  ██████╗ ████████╗
  ██╔════╝ ██╔════╝████╗  ██║██║██╔════╝     ██╔══██╗██╔═══██╗╚══██╔══╝
  ██║  ███╗█████╗  ██╔██╗ ██║██║█████╗       ██████╔╝██║   ██║   ██║
  ██║   ██║██╔══╝  ██║╚██╗██║██║██╔══╝       ██╔══██╗██║   ██║   ██║
  ╚██████╔╝███████╗██║ ╚████║██║███████╗     ██████╔╝╚██████╔╝   ██║
   ╚═════╝ ╚══════╝╚═╝  ╚═══╝╚═╝╚══════╝     ╚═════╝  ╚═════╝    ╚═╝

  Telegram front end for GenieACS
  Version: 1.0.0
━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━
`
	fmt.Println(banner)
}
