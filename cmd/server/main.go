package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/vkarpovich/docvault/internal/auth"
	"github.com/vkarpovich/docvault/internal/config"
	"github.com/vkarpovich/docvault/internal/docs"
	"github.com/vkarpovich/docvault/internal/files"
	"github.com/vkarpovich/docvault/internal/server"
	"github.com/vkarpovich/docvault/internal/server/handlers"
	sessionboltdb "github.com/vkarpovich/docvault/internal/session/boltdb"
	"github.com/vkarpovich/docvault/internal/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	logger := newLogger(cfg.LogLevel)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	store, err := sqlite.New(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	sessions, err := sessionboltdb.New(ctx, cfg.SessionDBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}
	defer sessions.Close()

	fileStore, err := files.NewStore(cfg.UploadDir)
	if err != nil {
		return fmt.Errorf("failed to initialize file store: %w", err)
	}

	authService := auth.NewService(logger, store)
	if err := authService.Bootstrap(ctx, cfg.Bootstrap.Username, cfg.Bootstrap.Password); err != nil {
		return fmt.Errorf("failed to bootstrap users: %w", err)
	}

	docService := docs.NewService(logger, store, fileStore)

	authHandler := handlers.NewAuthHandler(logger, authService, sessions, store, cfg.SessionTTL)
	docHandler := handlers.NewDocumentHandler(logger, docService, fileStore, cfg.MaxUploadBytes)
	healthHandler := handlers.NewHealthHandler(logger, Version)

	router := server.NewRouter(logger, authHandler, docHandler, healthHandler, sessions, store)
	srv := server.New(logger, cfg.Addr, router)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := srv.Start(); err != nil {
			logger.Error("failed to start server", slog.Any("error", err))
		}
	}()

	// periodic sweep of expired sessions
	wg.Add(1)
	go func() {
		defer wg.Done()
		sweepSessions(ctx, logger, sessions)
	}()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", slog.Any("error", err))
	}

	wg.Wait()
	logger.Info("shutdown complete")

	return nil
}

// sweepSessions removes expired sessions hourly until ctx is done.
func sweepSessions(ctx context.Context, logger *slog.Logger, sessions *sessionboltdb.Store) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			deleted, err := sessions.DeleteExpired(ctx)
			if err != nil {
				logger.Warn("session sweep failed", slog.Any("error", err))
				continue
			}
			if deleted > 0 {
				logger.Info("removed expired sessions", slog.Int("count", deleted))
			}
		case <-ctx.Done():
			return
		}
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func printVersion() {
	fmt.Printf("DocVault Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
