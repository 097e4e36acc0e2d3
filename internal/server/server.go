package server

import (
	"os"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/thecontrarian/image-gateway/internal/api/library"
	"github.com/thecontrarian/image-gateway/pkg/cache"
	"github.com/thecontrarian/image-gateway/pkg/config"
	"github.com/thecontrarian/image-gateway/pkg/intent"
	"github.com/thecontrarian/image-gateway/pkg/lightbox"
	"github.com/thecontrarian/image-gateway/pkg/logging"
	"github.com/thecontrarian/image-gateway/pkg/metadata"
	"github.com/thecontrarian/image-gateway/pkg/objstore"
)

// Server represents the image gateway server
type Server struct {
	echo       *echo.Echo
	config     *config.Config
	instanceID string
}

// New creates a new gateway server instance and wires the request flow:
// path resolver → intent classifier → raw image or cached lightbox.
func New(
	e *echo.Echo,
	cfg *config.Config,
	store objstore.Store,
	docCache cache.Cache,
	instanceID string,
) *Server {
	srv := &Server{
		echo:       e,
		config:     cfg,
		instanceID: instanceID,
	}

	classifier := intent.NewClassifier(cfg.Site.AllowedReferers, cfg.Site.CDNHost)
	aggregator := metadata.NewAggregator(cfg.Metadata.BaseURL, cfg.MetadataTimeout())
	builder := lightbox.NewBuilder(cfg.Site.SiteName, cfg.Site.SiteURL, cfg.Metadata.BaseURL)

	handler := library.NewHandler(cfg, store, docCache, classifier, aggregator, builder)

	// Health check (no auth required - for load balancers/probes)
	// Supports ?info=true to return gateway information
	e.GET("/health", srv.handleHealth)

	// Catch-all image routing; must come after the static routes
	library.RegisterRoutes(e, handler)

	return srv
}

// handleHealth handles the health check endpoint
func (s *Server) handleHealth(c echo.Context) error {
	if c.QueryParam("info") == "true" {
		info := map[string]string{
			"public_url": s.config.Server.PublicURL,
			"gateway_id": s.instanceID,
		}
		return c.JSON(200, info)
	}

	return c.NoContent(200)
}

// Start starts the gateway server
func (s *Server) Start() error {
	port := os.Getenv("PORT")
	if port == "" {
		port = strconv.Itoa(s.config.Server.Port)
	}
	port = ":" + port
	logging.Logger.Info("Starting server", zap.String("port", port))
	return s.echo.Start(port)
}
