// File: cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iyunix/go-onyom/internal/app"
	"github.com/iyunix/go-onyom/internal/config"
	"github.com/iyunix/go-onyom/internal/handlers"
	"github.com/iyunix/go-onyom/internal/ratelimit"
	"github.com/iyunix/go-onyom/internal/repository"
	"github.com/iyunix/go-onyom/internal/services"
)

const clientIdleTimeout = 30 * time.Minute

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config Error: %v", err)
	}
	logger := services.NewLogger("onyom")

	db, err := repository.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("DB Error: %v", err)
	}

	rt, err := app.NewRuntime(cfg, logger, db)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize application: %v", err)
	}

	authLimiter := ratelimit.NewKeyedLimiter(ratelimit.DefaultAuthConfig())
	defer authLimiter.Close()
	chatLimiter := ratelimit.NewKeyedLimiter(ratelimit.DefaultChatConfig())
	defer chatLimiter.Close()

	router := handlers.NewRouter(rt, handlers.Limiters{Auth: authLimiter, Chat: chatLimiter})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// --- Idle client sweeper ---
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go func() {
		ticker := time.NewTicker(clientIdleTimeout / 2)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rt.Clients.Sweep(clientIdleTimeout)
			case <-sweepCtx.Done():
				return
			}
		}
	}()

	logger.Info("server starting", "port", cfg.ServerPort, "environment", cfg.Environment, "model", cfg.CompletionModel)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server startup failed: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down server gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	logger.Info("server stopped")
}
