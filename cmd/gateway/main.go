package main

import (
	"context"
	"flag"
	"log"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	internalMiddleware "github.com/thecontrarian/image-gateway/internal/middleware"
	"github.com/thecontrarian/image-gateway/internal/server"
	"github.com/thecontrarian/image-gateway/pkg/cache"
	"github.com/thecontrarian/image-gateway/pkg/config"
	"github.com/thecontrarian/image-gateway/pkg/logging"
	"github.com/thecontrarian/image-gateway/pkg/objstore"
)

func main() {
	// Parse flags
	var configPath string
	flag.StringVar(&configPath, "config-path", "gateway.yaml", "Path to configuration file")
	flag.Parse()

	// Load gateway configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Printf("Configuration loaded from %s", configPath)

	// Initialize structured logging
	if err := logging.InitLogger(cfg.Logging.Level, "json"); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	logging.Logger.Info("Structured logging initialized",
		zap.String("level", cfg.Logging.Level),
		zap.String("format", "json"))

	// Initialize the backing object store
	ctx := context.Background()
	store, err := objstore.New(ctx, cfg.Storage)
	if err != nil {
		logging.Logger.Fatal("Failed to create object store", zap.Error(err))
	}

	// Initialize the rendered-document cache
	docCache := cache.NewDocumentCache(cfg.Cache)

	// Per-process gateway instance ID
	instanceID := uuid.New().String()
	logging.Logger.Info("Gateway instance ID initialized", zap.String("id", instanceID))

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Add global middleware
	e.Use(internalMiddleware.LoggerMiddleware())
	e.Use(internalMiddleware.RecoverMiddleware())
	e.Use(internalMiddleware.InstanceIDMiddleware(instanceID))

	// Initialize and start server
	srv := server.New(e, cfg, store, docCache, instanceID)
	logging.Logger.Info("Server initialized",
		zap.String("cdn_origin", cfg.Site.CDNOrigin),
		zap.String("cdn_host", cfg.Site.CDNHost))

	if err := srv.Start(); err != nil {
		logging.Logger.Fatal("Server error", zap.Error(err))
	}
}
