// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/marketplace-backend/internal/config"
	"github.com/your-org/marketplace-backend/internal/domain/user"
	"github.com/your-org/marketplace-backend/internal/interfaces/http/handlers"
	"github.com/your-org/marketplace-backend/internal/interfaces/http/middleware"
)

// Handlers bundles the wired HTTP handlers
type Handlers struct {
	Auth      *handlers.AuthHandler
	Store     *handlers.StoreHandler
	Product   *handlers.ProductHandler
	Inventory *handlers.InventoryHandler
	Order     *handlers.OrderHandler
	Payment   *handlers.PaymentHandler
	Delivery  *handlers.DeliveryHandler
}

// Setup registers all API routes
func Setup(router *gin.Engine, h *Handlers, cfg *config.Config) {
	v1 := router.Group("/api/v1")

	SetupAuthRoutes(v1, h, cfg)
	SetupStoreRoutes(v1, h, cfg)
	SetupProductRoutes(v1, h, cfg)
	SetupInventoryRoutes(v1, h, cfg)
	SetupOrderRoutes(v1, h, cfg)
	SetupPaymentRoutes(v1, h, cfg)
	SetupDeliveryRoutes(v1, h, cfg)
}

// SetupAuthRoutes sets up authentication related routes
func SetupAuthRoutes(rg *gin.RouterGroup, h *Handlers, cfg *config.Config) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)

		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.GET("/me", h.Auth.Me)
			protected.POST("/me/addresses", h.Auth.AddAddress)
		}
	}

	drivers := rg.Group("/drivers")
	drivers.Use(middleware.AuthMiddleware(cfg), middleware.RequireRole(string(user.RoleDriver)))
	{
		drivers.PATCH("/me/availability", h.Auth.SetAvailability)
	}
}

// SetupStoreRoutes sets up store directory routes
func SetupStoreRoutes(rg *gin.RouterGroup, h *Handlers, cfg *config.Config) {
	stores := rg.Group("/stores")
	{
		stores.GET("", h.Store.GetStores)
		stores.GET("/:id", h.Store.GetStore)

		matched := stores.Group("")
		matched.Use(middleware.AuthMiddleware(cfg),
			middleware.RequireRole(string(user.RoleAdmin), string(user.RoleStore)))
		{
			matched.GET("/:id/best-driver", h.Delivery.FindBestDriver)
		}
	}

	admin := rg.Group("/admin/stores")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RequireRole(string(user.RoleAdmin)))
	{
		admin.POST("", h.Store.CreateStore)
		admin.PATCH("/:id/delivery-fee", h.Store.UpdateDeliveryFee)
	}
}

// SetupProductRoutes sets up catalog routes
func SetupProductRoutes(rg *gin.RouterGroup, h *Handlers, cfg *config.Config) {
	products := rg.Group("/products")
	{
		products.GET("", h.Product.GetProducts)
		products.GET("/:id", h.Product.GetProduct)
	}

	rg.GET("/categories", h.Product.GetCategories)

	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RequireRole(string(user.RoleAdmin)))
	{
		admin.POST("/products", h.Product.CreateProduct)
		admin.POST("/categories", h.Product.CreateCategory)
	}
}

// SetupInventoryRoutes sets up inventory ledger routes
func SetupInventoryRoutes(rg *gin.RouterGroup, h *Handlers, cfg *config.Config) {
	inventory := rg.Group("/inventory")
	inventory.Use(middleware.AuthMiddleware(cfg))
	{
		inventory.GET("", h.Inventory.GetInventories)
		inventory.GET("/low-stock", h.Inventory.GetLowStock)
		inventory.GET("/out-of-stock", h.Inventory.GetOutOfStock)
		inventory.GET("/stats", h.Inventory.GetStats)
		inventory.GET("/:id", h.Inventory.GetInventory)

		managed := inventory.Group("")
		managed.Use(middleware.RequireRole(string(user.RoleAdmin), string(user.RoleStore)))
		{
			managed.POST("", h.Inventory.CreateInventory)
			managed.POST("/:id/reserve", h.Inventory.Reserve)
			managed.POST("/:id/release", h.Inventory.Release)
			managed.POST("/:id/confirm-sale", h.Inventory.ConfirmSale)
			managed.POST("/:id/adjust", h.Inventory.AdjustStock)
			managed.POST("/:id/products/:productId", h.Inventory.AddProduct)
			managed.DELETE("/:id/products/:productId", h.Inventory.RemoveProduct)
			managed.DELETE("/:id", h.Inventory.DeleteInventory)
		}
	}
}

// SetupOrderRoutes sets up order workflow routes
func SetupOrderRoutes(rg *gin.RouterGroup, h *Handlers, cfg *config.Config) {
	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(cfg))
	{
		orders.POST("", h.Order.CreateOrder)
		orders.GET("", h.Order.GetOrders)
		orders.GET("/:id", h.Order.GetOrder)
		orders.GET("/number/:orderNumber", h.Order.GetOrderByNumber)
		orders.POST("/:id/cancel", h.Order.CancelOrder)
		orders.POST("/:id/rate", h.Order.RateOrder)
		orders.GET("/:id/payments", h.Payment.GetPaymentsByOrder)
		orders.GET("/:id/delivery", h.Delivery.GetDeliveryByOrder)

		staff := orders.Group("")
		staff.Use(middleware.RequireRole(string(user.RoleAdmin), string(user.RoleStore)))
		{
			staff.GET("/stats", h.Order.GetStats)
			staff.PATCH("/:id/status", h.Order.UpdateStatus)
		}

		admin := orders.Group("")
		admin.Use(middleware.RequireRole(string(user.RoleAdmin)))
		{
			admin.DELETE("/:id", h.Order.DeleteOrder)
		}
	}
}

// SetupPaymentRoutes sets up payment bridge routes. The confirm/fail
// endpoints are webhook targets for the external gateway and carry the
// unguessable payment reference instead of a session token.
func SetupPaymentRoutes(rg *gin.RouterGroup, h *Handlers, cfg *config.Config) {
	payments := rg.Group("/payments")
	{
		payments.POST("/:reference/confirm", h.Payment.ConfirmPayment)
		payments.POST("/:reference/fail", h.Payment.FailPayment)

		authed := payments.Group("")
		authed.Use(middleware.AuthMiddleware(cfg))
		{
			authed.POST("", h.Payment.InitiatePayment)
		}
	}
}

// SetupDeliveryRoutes sets up delivery dispatch routes
func SetupDeliveryRoutes(rg *gin.RouterGroup, h *Handlers, cfg *config.Config) {
	deliveries := rg.Group("/deliveries")
	deliveries.Use(middleware.AuthMiddleware(cfg))
	{
		deliveries.GET("", h.Delivery.GetDeliveries)
		deliveries.GET("/:id", h.Delivery.GetDelivery)

		staff := deliveries.Group("")
		staff.Use(middleware.RequireRole(string(user.RoleAdmin), string(user.RoleStore)))
		{
			staff.POST("/workflow/:orderId", h.Delivery.CreateWorkflow)
		}

		runners := deliveries.Group("")
		runners.Use(middleware.RequireRole(string(user.RoleAdmin), string(user.RoleDriver)))
		{
			runners.PATCH("/:id/status", h.Delivery.UpdateStatus)
		}

		admin := deliveries.Group("")
		admin.Use(middleware.RequireRole(string(user.RoleAdmin)))
		{
			admin.DELETE("/:id", h.Delivery.RemoveDelivery)
		}
	}
}
