package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fortio.org/log"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"codegen_server/config"
	"codegen_server/internal/ai"
	"codegen_server/internal/api"
	"codegen_server/internal/catalog"
)

func main() {
	// --- Load .env file ---
	// Must happen before viper reads the environment.
	err := godotenv.Load()
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warnf("Error loading .env file: %v", err)
		} else {
			log.Infof(".env file not found, relying on system environment variables.")
		}
	} else {
		log.Infof("Loaded environment variables from .env file.")
	}

	// --- Configuration Loading ---
	cfg, err := config.LoadConfig(viper.New(), ".")
	if err != nil {
		log.Fatalf("Cannot load config: %v", err)
	}
	if err := log.SetLogLevelStr(cfg.LogLevel); err != nil {
		log.Warnf("Invalid LOG_LEVEL %q, keeping default: %v", cfg.LogLevel, err)
	}

	// --- Dependency Initialization ---
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	model, err := ai.NewModel(ctx, cfg)
	if err != nil {
		log.Fatalf("Cannot create model client: %v", err)
	}
	cat, err := catalog.Default()
	if err != nil {
		log.Fatalf("Cannot load option catalog: %v", err)
	}
	aiGenerator := ai.NewGenerator(model, cat)
	apiHandler := api.NewAPIHandler(aiGenerator)
	log.Infof("Using model %s", aiGenerator.ModelName())

	// --- Start API Server ---
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
		log.Infof("Running in Gin Debug Mode")
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	api.RegisterRoutes(router, apiHandler)

	server := &http.Server{
		Addr:        cfg.ServerAddress,
		Handler:     router,
		BaseContext: func(net.Listener) context.Context { return ctx },
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
		// No WriteTimeout: streamed generations last as long as the model does.
	}

	go func() {
		log.Infof("Starting API server on %s", cfg.ServerAddress)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("API server listen error: %v", err)
		}
		log.Infof("API server has stopped listening.")
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Infof("Received signal: %s. Shutting down server...", sig)

	shutdownCtx, serverCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer serverCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warnf("API server forced shutdown error: %v", err)
		// In-flight generations see their request context cancelled.
		cancel()
	} else {
		log.Infof("API server gracefully stopped.")
	}

	log.Infof("Application exiting.")
}
