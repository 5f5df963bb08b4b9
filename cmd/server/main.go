package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/BerylCAtieno/image-analyzer/internal/config"
	"github.com/BerylCAtieno/image-analyzer/internal/db"
	"github.com/BerylCAtieno/image-analyzer/internal/handlers"
	"github.com/BerylCAtieno/image-analyzer/internal/llm"
	"github.com/BerylCAtieno/image-analyzer/internal/prompts"
	"github.com/BerylCAtieno/image-analyzer/internal/repository"
	"github.com/BerylCAtieno/image-analyzer/internal/router"
	"github.com/BerylCAtieno/image-analyzer/internal/services"
	"github.com/BerylCAtieno/image-analyzer/internal/utils"
	"github.com/BerylCAtieno/image-analyzer/internal/validator"
)

func main() {
	configPath := flag.String("config", "config/model_config.yaml", "model configuration file")
	promptsPath := flag.String("prompts", "config/prompt_templates.yaml", "prompt templates file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := utils.NewLogger(cfg.Log.Level, cfg.Log.File)
	defer logger.Close()

	catalog, err := prompts.Load(*promptsPath)
	if err != nil {
		logger.Fatal("Failed to load prompt templates", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The model client is built once and shared by every request.
	client, err := llm.New(ctx, llm.Config{
		Provider: cfg.Model.Provider,
		APIKey:   cfg.APIKey,
		Model:    cfg.Model.Name,
		BaseURL:  cfg.Model.BaseURL,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize model client", "error", err)
	}

	var repo repository.Repository
	if cfg.Database.Path != "" {
		database, err := db.NewSQLiteDB(cfg.Database.Path)
		if err != nil {
			logger.Fatal("Failed to open event database", "error", err)
		}
		defer database.Close()
		repo = repository.NewRepository(database)
	}

	imageValidator := validator.NewImageValidator(cfg.Policy())
	service := services.NewService(client, imageValidator, catalog, repo, logger)

	handler := router.NewRouter(service, handlers.PageInfo{
		Title:       cfg.App.Title,
		Description: cfg.App.Description,
		Icon:        cfg.App.PageIcon,
	}, cfg.CORS.AllowedOrigins, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting server", "port", cfg.Server.Port, "model", cfg.Model.Name, "provider", cfg.Model.Provider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("Server failed", "error", err)
	}

	logger.Info("Server exited")
}
