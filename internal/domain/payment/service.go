// internal/domain/payment/service.go
package payment

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/marketplace-backend/internal/config"
	"github.com/your-org/marketplace-backend/internal/domain/order"
	"gorm.io/gorm"
)

// Sentinel errors for payment operations
var (
	ErrNotFound     = errors.New("payment not found")
	ErrInvalidState = errors.New("operation not allowed in current payment state")
)

// CompletedListener is notified after a payment is verified. Registered
// at wiring time so dispatch can react without a package cycle.
type CompletedListener func(orderID uint)

// Service handles payment records and bridges verified payments into
// order confirmation
type Service struct {
	db     *gorm.DB
	config *config.Config
	orders *order.Service
	logger *logrus.Entry

	completedListeners []CompletedListener
}

// NewService creates a new payment service
func NewService(db *gorm.DB, cfg *config.Config, orders *order.Service, logger *logrus.Logger) *Service {
	return &Service{
		db:     db,
		config: cfg,
		orders: orders,
		logger: logger.WithField("component", "payments"),
	}
}

// OnCompleted registers a listener fired after successful verification
func (s *Service) OnCompleted(listener CompletedListener) {
	s.completedListeners = append(s.completedListeners, listener)
}

// InitiatePaymentRequest represents payment initiation data
type InitiatePaymentRequest struct {
	OrderID uint   `json:"order_id" binding:"required"`
	Method  string `json:"method"`
}

// ConfirmResult reports what the verification bridge did
type ConfirmResult struct {
	Payment        *Payment `json:"payment"`
	OrderConfirmed bool     `json:"order_confirmed"`
	Message        string   `json:"message"`
}

// Initiate creates a pending payment record for an order and hands back
// the reference the external gateway will echo on verification
func (s *Service) Initiate(req *InitiatePaymentRequest) (*Payment, error) {
	o, err := s.orders.FindByID(req.OrderID)
	if err != nil {
		return nil, err
	}
	if o.Status != order.StatusPending {
		return nil, fmt.Errorf("%w: order %d is %s, payment only valid while pending",
			ErrInvalidState, o.ID, o.Status)
	}

	p := &Payment{
		OrderID:   o.ID,
		UserID:    o.UserID,
		Amount:    o.TotalAmount,
		Status:    StatusPending,
		Reference: uuid.New().String(),
		Method:    req.Method,
	}
	if err := s.db.Create(p).Error; err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"payment_id": p.ID,
		"order_id":   p.OrderID,
		"reference":  p.Reference,
	}).Info("Payment initiated")

	return p, nil
}

// FindByReference retrieves a payment by its gateway reference
func (s *Service) FindByReference(reference string) (*Payment, error) {
	var p Payment
	err := s.db.Where("reference = ?", reference).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("payment %s: %w", reference, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve payment: %w", err)
	}
	return &p, nil
}

// FindByOrder retrieves payments recorded against an order
func (s *Service) FindByOrder(orderID uint) ([]Payment, error) {
	var payments []Payment
	err := s.db.Where("order_id = ?", orderID).Order("created_at DESC").Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve payments: %w", err)
	}
	return payments, nil
}

// HasCompletedPayment reports whether a verified payment exists for the order
func (s *Service) HasCompletedPayment(orderID uint) (bool, error) {
	var count int64
	err := s.db.Model(&Payment{}).
		Where("order_id = ? AND status = ?", orderID, StatusCompleted).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check payment status: %w", err)
	}
	return count > 0, nil
}

// ConfirmPayment processes a "payment verified" signal from the gateway.
// Idempotent: a reference already verified, or an order already past
// PENDING, results in a no-op success rather than a double confirmation.
// A failure to confirm the order is surfaced but does not roll back the
// payment record itself.
func (s *Service) ConfirmPayment(reference string) (*ConfirmResult, error) {
	p, err := s.FindByReference(reference)
	if err != nil {
		return nil, err
	}

	if p.Status == StatusCompleted {
		return &ConfirmResult{
			Payment: p,
			Message: "payment already verified",
		}, nil
	}
	if p.Status != StatusPending {
		return nil, fmt.Errorf("%w: payment %s is %s", ErrInvalidState, reference, p.Status)
	}

	// Conditional update: the pending check lives in the WHERE clause so
	// two concurrent webhooks for the same reference cannot both complete
	// the payment and double-fire the listeners.
	now := time.Now().UTC()
	update := s.db.Model(&Payment{}).
		Where("id = ? AND status = ?", p.ID, StatusPending).
		Updates(map[string]interface{}{
			"status":  StatusCompleted,
			"paid_at": &now,
		})
	if update.Error != nil {
		return nil, fmt.Errorf("failed to mark payment completed: %w", update.Error)
	}
	if update.RowsAffected == 0 {
		p, err = s.FindByReference(reference)
		if err != nil {
			return nil, err
		}
		if p.Status == StatusCompleted {
			return &ConfirmResult{
				Payment: p,
				Message: "payment already verified",
			}, nil
		}
		return nil, fmt.Errorf("%w: payment %s is %s", ErrInvalidState, reference, p.Status)
	}
	p.Status = StatusCompleted
	p.PaidAt = &now

	result := &ConfirmResult{Payment: p, Message: "payment verified"}

	o, err := s.orders.FindByID(p.OrderID)
	if err != nil {
		s.logger.WithField("order_id", p.OrderID).WithError(err).
			Error("Payment verified but order lookup failed")
		result.Message = fmt.Sprintf("payment verified, order confirmation failed: %v", err)
		return result, nil
	}

	if o.Status == order.StatusPending {
		if _, err := s.orders.ConfirmOrder(o.ID); err != nil {
			s.logger.WithField("order_id", o.ID).WithError(err).
				Error("Payment verified but order confirmation failed")
			result.Message = fmt.Sprintf("payment verified, order confirmation failed: %v", err)
			return result, nil
		}
		result.OrderConfirmed = true
	} else {
		s.logger.WithFields(logrus.Fields{
			"order_id": o.ID,
			"status":   o.Status,
		}).Info("Payment verified for order already past pending, skipping confirmation")
	}

	for _, listener := range s.completedListeners {
		listener(p.OrderID)
	}

	return result, nil
}

// FailPayment records a gateway failure against a pending payment
func (s *Service) FailPayment(reference, reason string) (*Payment, error) {
	p, err := s.FindByReference(reference)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusPending {
		return nil, fmt.Errorf("%w: payment %s is %s", ErrInvalidState, reference, p.Status)
	}

	if err := s.db.Model(p).Updates(map[string]interface{}{
		"status":         StatusFailed,
		"failure_reason": reason,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to mark payment failed: %w", err)
	}
	return p, nil
}

// RecordDeliveryOutcome writes the dispatch result back onto the most
// recent completed payment for the order
func (s *Service) RecordDeliveryOutcome(orderID uint, initiated bool, deliveryRef, deliveryErr string) error {
	result := s.db.Model(&Payment{}).
		Where("order_id = ? AND status = ?", orderID, StatusCompleted).
		Updates(map[string]interface{}{
			"delivery_initiated": initiated,
			"delivery_reference": deliveryRef,
			"delivery_error":     deliveryErr,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to record delivery outcome: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("no completed payment for order %d: %w", orderID, ErrNotFound)
	}
	return nil
}
