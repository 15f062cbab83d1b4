package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	v1 "github.com/litforge/progression-api/internal/handlers/api/v1"
	"github.com/litforge/progression-api/internal/orchestrators/session"
	redisclient "github.com/litforge/progression-api/internal/redis"
	charrepo "github.com/litforge/progression-api/internal/repositories/character"
)

var (
	httpAddr  string
	redisAddr string
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the progression HTTP server",
	Long:  `Starts the HTTP server that manages character records and their progression state.`,
	RunE:  runServer,
}

func init() {
	serverCmd.Flags().StringVar(&httpAddr, "addr", "", "HTTP listen address (overrides HTTP_ADDR)")
	serverCmd.Flags().StringVar(&redisAddr, "redis", "", "Redis address (overrides REDIS_ADDR)")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func runServer(cmd *cobra.Command, args []string) error {
	// Best effort; in production config comes from real env vars.
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment variables")
	}

	if httpAddr == "" {
		httpAddr = envOr("HTTP_ADDR", ":8080")
	}
	if redisAddr == "" {
		redisAddr = envOr("REDIS_ADDR", "localhost:6379")
	}

	client, err := redisclient.NewClient(redisAddr, nil)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			slog.Error("Failed to close redis client", "error", cerr)
		}
	}()

	repo, err := charrepo.NewRedis(&charrepo.RedisConfig{Client: client})
	if err != nil {
		return err
	}

	svc, err := session.NewOrchestrator(&session.Config{CharacterRepo: repo})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              httpAddr,
		Handler:           v1.NewRouter(v1.RouterConfig{Service: svc}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		slog.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	errChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "addr", httpAddr, "redis", redisAddr)
		if serveErr := srv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errChan <- serveErr
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutting down HTTP server")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Graceful shutdown failed, closing", "error", err)
			return srv.Close()
		}
		slog.Info("Server stopped")
		return nil
	case err := <-errChan:
		return err
	}
}
