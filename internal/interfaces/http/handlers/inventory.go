// internal/interfaces/http/handlers/inventory.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/marketplace-backend/internal/config"
	"github.com/your-org/marketplace-backend/internal/domain/inventory"
)

// InventoryHandler handles inventory ledger endpoints
type InventoryHandler struct {
	inventoryService *inventory.Service
	config           *config.Config
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(inventoryService *inventory.Service, cfg *config.Config) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
		config:           cfg,
	}
}

// quantityRequest carries a reserve/release/confirm amount
type quantityRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// CreateInventory handles POST /inventory
func (h *InventoryHandler) CreateInventory(c *gin.Context) {
	var req inventory.CreateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	inv, err := h.inventoryService.Create(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Inventory created successfully",
		"data":    inv,
	})
}

// GetInventories handles GET /inventory
func (h *InventoryHandler) GetInventories(c *gin.Context) {
	storeID, ok := parseOptionalUintQuery(c, "store_id")
	if !ok {
		return
	}

	records, err := h.inventoryService.FindAll(storeID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Inventories retrieved successfully",
		"data":    records,
	})
}

// GetInventory handles GET /inventory/:id
func (h *InventoryHandler) GetInventory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	inv, err := h.inventoryService.FindOne(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Inventory retrieved successfully",
		"data":    inv,
	})
}

// GetLowStock handles GET /inventory/low-stock
func (h *InventoryHandler) GetLowStock(c *gin.Context) {
	storeID, ok := parseOptionalUintQuery(c, "store_id")
	if !ok {
		return
	}

	records, err := h.inventoryService.FindLowStock(storeID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Low stock records retrieved successfully",
		"data":    records,
	})
}

// GetOutOfStock handles GET /inventory/out-of-stock
func (h *InventoryHandler) GetOutOfStock(c *gin.Context) {
	storeID, ok := parseOptionalUintQuery(c, "store_id")
	if !ok {
		return
	}

	records, err := h.inventoryService.FindOutOfStock(storeID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Out of stock records retrieved successfully",
		"data":    records,
	})
}

// GetStats handles GET /inventory/stats
func (h *InventoryHandler) GetStats(c *gin.Context) {
	storeID, ok := parseOptionalUintQuery(c, "store_id")
	if !ok {
		return
	}

	stats, err := h.inventoryService.GetStats(storeID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Inventory stats retrieved successfully",
		"data":    stats,
	})
}

// Reserve handles POST /inventory/:id/reserve
func (h *InventoryHandler) Reserve(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	inv, err := h.inventoryService.Reserve(id, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock reserved successfully",
		"data":    inv,
	})
}

// Release handles POST /inventory/:id/release
func (h *InventoryHandler) Release(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	inv, err := h.inventoryService.Release(id, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock released successfully",
		"data":    inv,
	})
}

// ConfirmSale handles POST /inventory/:id/confirm-sale
func (h *InventoryHandler) ConfirmSale(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	inv, err := h.inventoryService.ConfirmSale(id, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Sale confirmed successfully",
		"data":    inv,
	})
}

// AdjustStock handles POST /inventory/:id/adjust
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req inventory.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	inv, err := h.inventoryService.AdjustStock(id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock adjusted successfully",
		"data":    inv,
	})
}

// AddProduct handles POST /inventory/:id/products/:productId
func (h *InventoryHandler) AddProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}

	inv, err := h.inventoryService.AddProduct(id, productID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product added to inventory successfully",
		"data":    inv,
	})
}

// RemoveProduct handles DELETE /inventory/:id/products/:productId
func (h *InventoryHandler) RemoveProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}

	inv, err := h.inventoryService.RemoveProduct(id, productID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product removed from inventory successfully",
		"data":    inv,
	})
}

// DeleteInventory handles DELETE /inventory/:id
func (h *InventoryHandler) DeleteInventory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.inventoryService.Remove(id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Inventory deleted successfully",
	})
}
