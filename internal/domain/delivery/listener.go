// internal/domain/delivery/listener.go
package delivery

import (
	"context"
	"errors"
	"fmt"

	"github.com/your-org/marketplace-backend/internal/domain/order"
)

// HandleOrderReadyForPickup reacts to an order reaching READY_FOR_PICKUP
// by running the dispatch workflow and writing the outcome back onto the
// order's payment record. Wired as the order ready hook at startup.
// Failures are recorded, never propagated — the order stays ready and
// dispatch can be retried through the workflow endpoint.
func (s *Service) HandleOrderReadyForPickup(orderID uint) {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Geo.RequestTimeout*3)
	defer cancel()

	result, err := s.CreateWorkflow(ctx, orderID)
	if err != nil {
		s.logger.WithField("order_id", orderID).WithError(err).
			Warn("Dispatch on ready-for-pickup failed")
		if recErr := s.payments.RecordDeliveryOutcome(orderID, false, "", err.Error()); recErr != nil {
			s.logger.WithField("order_id", orderID).WithError(recErr).
				Warn("Failed to record dispatch failure on payment")
		}
		return
	}

	ref := fmt.Sprintf("DLV-%d", result.Delivery.ID)
	if err := s.payments.RecordDeliveryOutcome(orderID, true, ref, ""); err != nil {
		s.logger.WithField("order_id", orderID).WithError(err).
			Warn("Failed to record dispatch outcome on payment")
	}
}

// HandlePaymentCompleted reacts to a verified payment. In the normal flow
// the order is still being prepared at this point, so an order that is
// not yet ready for pickup is expected and simply logged; a ready order
// (e.g. a retried webhook after a failed dispatch) is dispatched.
func (s *Service) HandlePaymentCompleted(orderID uint) {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Geo.RequestTimeout*3)
	defer cancel()

	result, err := s.CreateWorkflow(ctx, orderID)
	if err != nil {
		if errors.Is(err, order.ErrInvalidState) {
			s.logger.WithField("order_id", orderID).
				Debug("Payment verified, order not yet ready for dispatch")
			return
		}
		s.logger.WithField("order_id", orderID).WithError(err).
			Warn("Dispatch after payment failed")
		if recErr := s.payments.RecordDeliveryOutcome(orderID, false, "", err.Error()); recErr != nil {
			s.logger.WithField("order_id", orderID).WithError(recErr).
				Warn("Failed to record dispatch failure on payment")
		}
		return
	}

	if result.AlreadyExisted {
		return
	}

	ref := fmt.Sprintf("DLV-%d", result.Delivery.ID)
	if err := s.payments.RecordDeliveryOutcome(orderID, true, ref, ""); err != nil {
		s.logger.WithField("order_id", orderID).WithError(err).
			Warn("Failed to record dispatch outcome on payment")
	}
}
