// internal/interfaces/http/handlers/delivery.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/marketplace-backend/internal/config"
	"github.com/your-org/marketplace-backend/internal/domain/delivery"
)

// DeliveryHandler handles delivery dispatch endpoints
type DeliveryHandler struct {
	deliveryService *delivery.Service
	config          *config.Config
}

// NewDeliveryHandler creates a new delivery handler
func NewDeliveryHandler(deliveryService *delivery.Service, cfg *config.Config) *DeliveryHandler {
	return &DeliveryHandler{
		deliveryService: deliveryService,
		config:          cfg,
	}
}

// CreateWorkflow handles POST /deliveries/workflow/:orderId
func (h *DeliveryHandler) CreateWorkflow(c *gin.Context) {
	orderID, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}

	result, err := h.deliveryService.CreateWorkflow(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	message := "Delivery workflow completed successfully"
	if result.AlreadyExisted {
		status = http.StatusOK
		message = "Delivery already exists for this order"
	}

	c.JSON(status, gin.H{
		"message": message,
		"data":    result,
	})
}

// GetDeliveries handles GET /deliveries
func (h *DeliveryHandler) GetDeliveries(c *gin.Context) {
	driverID, ok := parseOptionalUintQuery(c, "driver_id")
	if !ok {
		return
	}

	var status *delivery.Status
	if raw := c.Query("status"); raw != "" {
		st := delivery.Status(raw)
		if !st.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid status filter",
			})
			return
		}
		status = &st
	}

	deliveries, err := h.deliveryService.FindAll(driverID, status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Deliveries retrieved successfully",
		"data":    deliveries,
	})
}

// GetDelivery handles GET /deliveries/:id
func (h *DeliveryHandler) GetDelivery(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	details, err := h.deliveryService.GetDetails(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Delivery retrieved successfully",
		"data":    details,
	})
}

// GetDeliveryByOrder handles GET /orders/:id/delivery
func (h *DeliveryHandler) GetDeliveryByOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	d, err := h.deliveryService.FindByOrder(orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Delivery retrieved successfully",
		"data":    d,
	})
}

// UpdateStatus handles PATCH /deliveries/:id/status
func (h *DeliveryHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status delivery.Status `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	d, err := h.deliveryService.UpdateStatus(id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Delivery status updated successfully",
		"data":    d,
	})
}

// RemoveDelivery handles DELETE /deliveries/:id
func (h *DeliveryHandler) RemoveDelivery(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.deliveryService.Remove(id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Delivery removed successfully",
	})
}

// FindBestDriver handles GET /stores/:id/best-driver
func (h *DeliveryHandler) FindBestDriver(c *gin.Context) {
	storeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	match, err := h.deliveryService.FindBestDriverForStore(c.Request.Context(), storeID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Driver matched successfully",
		"data":    match,
	})
}
