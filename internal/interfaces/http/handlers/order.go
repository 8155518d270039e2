// internal/interfaces/http/handlers/order.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/marketplace-backend/internal/config"
	"github.com/your-org/marketplace-backend/internal/domain/order"
	"github.com/your-org/marketplace-backend/internal/domain/user"
	"github.com/your-org/marketplace-backend/internal/interfaces/http/middleware"
)

// OrderHandler handles order workflow endpoints
type OrderHandler struct {
	orderService *order.Service
	config       *config.Config
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *order.Service, cfg *config.Config) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		config:       cfg,
	}
}

// CreateOrder handles POST /orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req order.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	// Customers order for themselves; staff can order on behalf of a user
	if userID, ok := middleware.GetUserIDFromContext(c); ok {
		if role, _ := middleware.GetUserRoleFromContext(c); role == string(user.RoleCustomer) {
			req.UserID = userID
		}
	}

	o, err := h.orderService.Create(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order created successfully",
		"data":    o,
	})
}

// GetOrders handles GET /orders
func (h *OrderHandler) GetOrders(c *gin.Context) {
	userID, ok := parseOptionalUintQuery(c, "user_id")
	if !ok {
		return
	}
	storeID, ok := parseOptionalUintQuery(c, "store_id")
	if !ok {
		return
	}

	var status *order.Status
	if raw := c.Query("status"); raw != "" {
		st := order.Status(raw)
		if !st.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid status filter",
			})
			return
		}
		status = &st
	}

	limit, offset, ok := parsePagination(c)
	if !ok {
		return
	}

	// Customers only see their own orders
	if authUserID, authOK := middleware.GetUserIDFromContext(c); authOK {
		if role, _ := middleware.GetUserRoleFromContext(c); role == string(user.RoleCustomer) {
			userID = &authUserID
		}
	}

	orders, total, err := h.orderService.FindAll(userID, storeID, status, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Orders retrieved successfully",
		"data":    orders,
		"pagination": gin.H{
			"total":  total,
			"limit":  limit,
			"offset": offset,
		},
	})
}

// GetStats handles GET /orders/stats
func (h *OrderHandler) GetStats(c *gin.Context) {
	storeID, ok := parseOptionalUintQuery(c, "store_id")
	if !ok {
		return
	}

	stats, err := h.orderService.GetStats(storeID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order statistics retrieved successfully",
		"data":    stats,
	})
}

// GetOrder handles GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	o, err := h.orderService.FindByID(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order retrieved successfully",
		"data":    o,
	})
}

// GetOrderByNumber handles GET /orders/number/:orderNumber
func (h *OrderHandler) GetOrderByNumber(c *gin.Context) {
	orderNumber := c.Param("orderNumber")
	if orderNumber == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid order number",
		})
		return
	}

	o, err := h.orderService.FindByNumber(orderNumber)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order retrieved successfully",
		"data":    o,
	})
}

// UpdateStatus handles PATCH /orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status order.Status `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	o, report, err := h.orderService.UpdateStatus(id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{
		"message": "Order status updated successfully",
		"data":    o,
	}
	if report != nil {
		resp["release_report"] = report
	}
	c.JSON(http.StatusOK, resp)
}

// CancelOrder handles POST /orders/:id/cancel
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	o, report, err := h.orderService.CancelOrder(id, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Order cancelled successfully",
		"data":           o,
		"release_report": report,
	})
}

// RateOrder handles POST /orders/:id/rate
func (h *OrderHandler) RateOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Rating int    `json:"rating" binding:"required,min=1,max=5"`
		Review string `json:"review"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	o, err := h.orderService.RateOrder(id, req.Rating, req.Review)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order rated successfully",
		"data":    o,
	})
}

// DeleteOrder handles DELETE /orders/:id
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.orderService.Remove(id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order deleted successfully",
	})
}
