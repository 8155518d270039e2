// internal/interfaces/http/server.go
package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/marketplace-backend/internal/config"
	"github.com/your-org/marketplace-backend/internal/domain/delivery"
	"github.com/your-org/marketplace-backend/internal/domain/inventory"
	"github.com/your-org/marketplace-backend/internal/domain/order"
	"github.com/your-org/marketplace-backend/internal/domain/payment"
	"github.com/your-org/marketplace-backend/internal/domain/product"
	"github.com/your-org/marketplace-backend/internal/domain/store"
	"github.com/your-org/marketplace-backend/internal/domain/user"
	redisdb "github.com/your-org/marketplace-backend/internal/infrastructure/database/redis"
	"github.com/your-org/marketplace-backend/internal/interfaces/http/handlers"
	"github.com/your-org/marketplace-backend/internal/interfaces/http/middleware"
	"github.com/your-org/marketplace-backend/internal/interfaces/http/routes"
	"github.com/your-org/marketplace-backend/internal/pkg/geo"
	"gorm.io/gorm"
)

// Server represents the HTTP server
type Server struct {
	config      *config.Config
	gin         *gin.Engine
	httpServer  *http.Server
	db          *gorm.DB
	redisClient *redisdb.Client
	logger      *logrus.Logger
}

// NewServer creates a new HTTP server instance
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redisdb.Client, logger *logrus.Logger) *Server {
	return &Server{
		config:      cfg,
		db:          db,
		redisClient: redisClient,
		logger:      logger,
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	if s.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	s.gin = gin.New()

	if len(s.config.Security.TrustedProxies) > 0 {
		if err := s.gin.SetTrustedProxies(s.config.Security.TrustedProxies); err != nil {
			return fmt.Errorf("failed to set trusted proxies: %w", err)
		}
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.gin,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	log.Printf("🚀 HTTP Server starting on port %s", s.config.Server.Port)
	log.Printf("🌐 API Base URL: http://localhost:%s/api/v1", s.config.Server.Port)
	log.Printf("📊 Health Check: http://localhost:%s/health", s.config.Server.Port)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	log.Println("🛑 Shutting down HTTP server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	log.Println("✅ HTTP server stopped gracefully")
	return nil
}

// setupMiddleware configures the middleware stack
func (s *Server) setupMiddleware() {
	s.gin.Use(gin.Recovery())
	s.gin.Use(middleware.RequestID())
	s.gin.Use(middleware.Logger(s.logger))
	s.gin.Use(middleware.CORS(s.config))
	s.gin.Use(middleware.Timeout(s.config.Server.WriteTimeout))
}

// setupRoutes wires services, event hooks and handlers, then registers
// the route tree
func (s *Server) setupRoutes() {
	geoClient := geo.NewClient(s.config, s.redisClient.GetClient(), s.logger.WithField("component", "geo"))

	userService := user.NewService(s.db, s.config)
	storeService := store.NewService(s.db, s.config)
	productService := product.NewService(s.db, s.config)
	inventoryService := inventory.NewService(s.db, s.config)
	orderService := order.NewService(s.db, s.config, inventoryService, s.logger)
	paymentService := payment.NewService(s.db, s.config, orderService, s.logger)
	deliveryService := delivery.NewService(
		s.db, s.config,
		orderService, userService, storeService, paymentService,
		geoClient, geoClient,
		s.logger,
	)

	// Event wiring: dispatch runs when an order becomes ready for
	// pickup; a verified payment retries dispatch for orders that are
	// already waiting.
	orderService.SetReadyForPickupHook(func(orderID uint) {
		go deliveryService.HandleOrderReadyForPickup(orderID)
	})
	paymentService.OnCompleted(func(orderID uint) {
		go deliveryService.HandlePaymentCompleted(orderID)
	})

	h := &routes.Handlers{
		Auth:      handlers.NewAuthHandler(userService, s.config),
		Store:     handlers.NewStoreHandler(storeService, s.config),
		Product:   handlers.NewProductHandler(productService, s.config),
		Inventory: handlers.NewInventoryHandler(inventoryService, s.config),
		Order:     handlers.NewOrderHandler(orderService, s.config),
		Payment:   handlers.NewPaymentHandler(paymentService, s.config),
		Delivery:  handlers.NewDeliveryHandler(deliveryService, s.config),
	}

	// Health check endpoint
	s.gin.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"service":   s.config.App.Name,
			"version":   s.config.App.Version,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	routes.Setup(s.gin, h, s.config)
}
