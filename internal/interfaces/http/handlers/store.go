// internal/interfaces/http/handlers/store.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/marketplace-backend/internal/config"
	"github.com/your-org/marketplace-backend/internal/domain/store"
)

// StoreHandler handles store directory endpoints
type StoreHandler struct {
	storeService *store.Service
	config       *config.Config
}

// NewStoreHandler creates a new store handler
func NewStoreHandler(storeService *store.Service, cfg *config.Config) *StoreHandler {
	return &StoreHandler{
		storeService: storeService,
		config:       cfg,
	}
}

// CreateStore handles POST /admin/stores
func (h *StoreHandler) CreateStore(c *gin.Context) {
	var req store.CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	st, err := h.storeService.Create(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Store created successfully",
		"data":    st,
	})
}

// GetStores handles GET /stores
func (h *StoreHandler) GetStores(c *gin.Context) {
	stores, err := h.storeService.FindAll()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stores retrieved successfully",
		"data":    stores,
	})
}

// GetStore handles GET /stores/:id
func (h *StoreHandler) GetStore(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	st, err := h.storeService.FindByID(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Store retrieved successfully",
		"data":    st,
	})
}

// UpdateDeliveryFee handles PATCH /admin/stores/:id/delivery-fee
func (h *StoreHandler) UpdateDeliveryFee(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		DeliveryFee *int64 `json:"delivery_fee" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if err := h.storeService.UpdateDeliveryFee(id, *req.DeliveryFee); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Delivery fee updated successfully",
	})
}
