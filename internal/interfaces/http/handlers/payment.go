// internal/interfaces/http/handlers/payment.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/marketplace-backend/internal/config"
	"github.com/your-org/marketplace-backend/internal/domain/payment"
)

// PaymentHandler handles payment bridge endpoints
type PaymentHandler struct {
	paymentService *payment.Service
	config         *config.Config
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *payment.Service, cfg *config.Config) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		config:         cfg,
	}
}

// InitiatePayment handles POST /payments
func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	var req payment.InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	p, err := h.paymentService.Initiate(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Payment initiated successfully",
		"data":    p,
	})
}

// ConfirmPayment handles POST /payments/:reference/confirm. This is the
// endpoint the external gateway's webhook hits on verification.
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	reference := c.Param("reference")
	if reference == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid payment reference",
		})
		return
	}

	result, err := h.paymentService.ConfirmPayment(reference)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": result.Message,
		"data":    result,
	})
}

// FailPayment handles POST /payments/:reference/fail
func (h *PaymentHandler) FailPayment(c *gin.Context) {
	reference := c.Param("reference")
	if reference == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid payment reference",
		})
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	p, err := h.paymentService.FailPayment(reference, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment marked as failed",
		"data":    p,
	})
}

// GetPaymentsByOrder handles GET /orders/:id/payments
func (h *PaymentHandler) GetPaymentsByOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	payments, err := h.paymentService.FindByOrder(orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payments retrieved successfully",
		"data":    payments,
	})
}
