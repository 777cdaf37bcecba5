package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/Pk1316/slot-swapper-backend/auth"
	"github.com/Pk1316/slot-swapper-backend/httpapi"
	"github.com/Pk1316/slot-swapper-backend/internal"
	"github.com/Pk1316/slot-swapper-backend/notify"
	"github.com/Pk1316/slot-swapper-backend/repositories"
	"github.com/Pk1316/slot-swapper-backend/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting, so every defer (database cleanup included)
// executes before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load() // a missing .env is fine, the environment wins anyway
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := internal.LoggerFromString(config.LogLevel)
	auth.SetSigningKey(config.JWTSecret)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Repositories & Services
	store := repositories.NewStore(db, log)
	slotRepo := repositories.NewSlotRepository(store, log)
	swapRepo := repositories.NewSwapRequestRepository(store, log)
	userRepo := repositories.NewUserRepository(store)

	var mailer notify.Mailer = notify.NopMailer{}
	if config.SMTPAddr != "" {
		mailer = notify.NewSMTPMailer(config.SMTPAddr, config.SMTPFrom, config.SMTPUsername, config.SMTPPassword)
	}
	fanout := notify.NewFanout(log, mailer)

	coordinator := services.NewSwapCoordinator(store, slotRepo, swapRepo, userRepo, fanout, log)
	slotService := services.NewSlotService(slotRepo, log)
	authService := services.NewAuthService(userRepo, config.AuthTokenDuration)

	// 4. Rate limiting, with optional Redis-backed decision counters
	limiter := httpapi.NewLimiterStore(config.RateLimitRPS, config.RateLimitBurst)
	var stats httpapi.StatsStore
	if config.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: config.RedisAddr})
		stats = httpapi.NewRedisStatsStore(rdb)
		defer func() { _ = rdb.Close() }()
	}

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 6. HTTP Server
	api := httpapi.NewServer(log, authService, slotService, coordinator, fanout)
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{
		Addr:              address,
		Handler:           api.Handler(limiter, stats),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info("Program stopped cleanly")

	return nil
}
