package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"ffbridge/internal/api/handlers"
	"ffbridge/internal/api/middleware"
	"ffbridge/internal/config"
	"ffbridge/internal/logger"
	"ffbridge/internal/status"
	"ffbridge/internal/worker/messages"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies are the collaborators the HTTP handlers call into.
type Dependencies struct {
	Configs   handlers.ConfigStore
	Tokens    handlers.TokenRemover
	Publisher messages.Publisher
	Tracker   status.Tracker
	Shopify   handlers.ShopLookup
	Transfer  handlers.TransferTester
	Pinger    handlers.PingerFactory
}

type Server struct {
	config *config.Config
	logger *logger.Logger
	router *gin.Engine
	server *http.Server
}

func New(cfg *config.Config, logger *logger.Logger, deps Dependencies) *Server {
	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	// Initialize handlers
	exportHandler := handlers.NewExportHandler(deps.Configs, deps.Publisher, deps.Tracker, logger)
	shopifyHandler := handlers.NewShopifyHandler(deps.Shopify, logger)
	configHandler := handlers.NewConfigHandler(deps.Configs, deps.Transfer, deps.Pinger, logger)
	webhookHandler := handlers.NewWebhookHandler(deps.Configs, deps.Tokens, cfg.ShopifyAPISecret, logger)

	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/exports/:id", exportHandler.Status)

		shopify := v1.Group("/shopify")
		{
			shopify.POST("/export", exportHandler.Start)
			shopify.GET("/sales-channels", shopifyHandler.SalesChannels)
			shopify.GET("/locales", shopifyHandler.Locales)

			shopify.GET("/config", configHandler.Get)
			shopify.PUT("/config", configHandler.Save)
			shopify.POST("/config/test-transfer", configHandler.TestTransfer)
			shopify.POST("/config/test-api", configHandler.TestAPI)

			shopify.POST("/webhooks/app/uninstalled", webhookHandler.AppUninstalled)
		}
	}

	return &Server{
		config: cfg,
		logger: logger,
		router: router,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server on %s", addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router exposes the engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
