// internal/interfaces/http/handlers/common.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/marketplace-backend/internal/domain/delivery"
	"github.com/your-org/marketplace-backend/internal/domain/inventory"
	"github.com/your-org/marketplace-backend/internal/domain/order"
	"github.com/your-org/marketplace-backend/internal/domain/payment"
	"github.com/your-org/marketplace-backend/internal/domain/product"
	"github.com/your-org/marketplace-backend/internal/domain/store"
	"github.com/your-org/marketplace-backend/internal/domain/user"
)

// respondError maps domain sentinel errors onto HTTP status codes
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, user.ErrNotFound),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, inventory.ErrNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, payment.ErrNotFound),
		errors.Is(err, delivery.ErrNotFound):
		status = http.StatusNotFound

	case errors.Is(err, inventory.ErrInsufficientStock),
		errors.Is(err, inventory.ErrInvalidRelease),
		errors.Is(err, inventory.ErrInvalidConfirm),
		errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, order.ErrInvalidState),
		errors.Is(err, payment.ErrInvalidState),
		errors.Is(err, delivery.ErrInvalidTransition),
		errors.Is(err, user.ErrEmailTaken):
		status = http.StatusConflict

	case errors.Is(err, delivery.ErrPaymentNotVerified):
		status = http.StatusPaymentRequired

	case errors.Is(err, delivery.ErrNoDriverAvailable),
		errors.Is(err, delivery.ErrLocationUnavailable),
		errors.Is(err, delivery.ErrRouteUnavailable):
		status = http.StatusUnprocessableEntity
	}

	c.JSON(status, gin.H{
		"error": err.Error(),
	})
}

// parseIDParam parses a numeric path parameter
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + name,
		})
		return 0, false
	}
	return uint(id), true
}

// parsePagination parses limit/offset query parameters with bounds
func parsePagination(c *gin.Context) (limit, offset int, ok bool) {
	limit = 20
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 100 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid limit",
			})
			return 0, 0, false
		}
		limit = v
	}
	if raw := c.Query("offset"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid offset",
			})
			return 0, 0, false
		}
		offset = v
	}
	return limit, offset, true
}

// parseOptionalUintQuery parses an optional numeric query parameter
func parseOptionalUintQuery(c *gin.Context, name string) (*uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + name,
		})
		return nil, false
	}
	u := uint(v)
	return &u, true
}
