package main

import (
	"context"
	"errors"
	"ferreteria_server/api"
	"ferreteria_server/config"
	"ferreteria_server/database"
	"ferreteria_server/services"
	"ferreteria_server/structs"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/MonkyMars/gecho"
	"github.com/joho/godotenv"
)

var logger *gecho.Logger
var cfg *structs.Config

// init function to load environment variables and initialize logger and database
func init() {
	envErr := godotenv.Load()

	cfg = config.GetConfig()
	logger = config.InitializeLogger()

	if envErr != nil {
		logger.Warn("No .env file found or error loading .env file, proceeding with system environment variables")
	}

	if err := database.Initialize(); err != nil {
		logger.Fatal("Failed to initialize database", gecho.Field("error", err))
	}
}

func main() {
	redisClient := services.NewRedisClient(cfg.Cache)
	sm := services.NewServiceManager(logger, cfg, database.GetInstance(), redisClient)

	if err := sm.CacheService.Ping(context.Background()); err != nil {
		logger.Warn("Redis is not reachable, rate limiting and the supplier cache will fail open", gecho.Field("error", err))
	}

	if err := sm.SessionService.StartSweeper(); err != nil {
		logger.Fatal("Failed to start session sweeper", gecho.Field("error", err))
	}

	server := &http.Server{
		Addr:           cfg.Server.Port,
		Handler:        api.App(cfg, sm),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	// Setup graceful shutdown BEFORE starting the server
	done := setupGracefulShutdown(logger, server, sm)

	logger.Info(fmt.Sprintf("Starting server (%s) on %s", cfg.Server.AppName, cfg.Server.Port))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Failed to start server", gecho.Field("error", err))
	}

	<-done
}

// setupGracefulShutdown drains HTTP traffic, ends the clerk sessions and
// closes the pools when the process is signalled.
func setupGracefulShutdown(logger *gecho.Logger, server *http.Server, sm *services.ServiceManager) <-chan struct{} {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})

	logger.Info("Graceful shutdown handler initialized")

	go func() {
		defer close(done)
		sig := <-c
		logger.Info("Received shutdown signal", gecho.Field("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Ending sessions closes the SSE streams so Shutdown can drain
		sm.SessionService.Shutdown(ctx)

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("HTTP server shutdown failed", gecho.Field("error", err))
		}
		if err := sm.CacheService.Close(); err != nil {
			logger.Error("Failed to close redis client", gecho.Field("error", err))
		}
		if err := database.CloseInstance(); err != nil {
			logger.Error("Failed to close database", gecho.Field("error", err))
		}
		logger.Info("Server stopped")
	}()

	return done
}
