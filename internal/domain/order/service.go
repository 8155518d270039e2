// internal/domain/order/service.go
package order

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/marketplace-backend/internal/config"
	"github.com/your-org/marketplace-backend/internal/domain/inventory"
	"github.com/your-org/marketplace-backend/internal/domain/product"
	"github.com/your-org/marketplace-backend/internal/domain/store"
	"github.com/your-org/marketplace-backend/internal/domain/user"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sentinel errors for order workflow operations
var (
	ErrNotFound          = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidState      = errors.New("operation not allowed in current order state")
)

// ReadyForPickupHook is invoked after an order reaches READY_FOR_PICKUP.
// Registered at wiring time so dispatch can react without a package cycle.
type ReadyForPickupHook func(orderID uint)

// Service handles order workflow business logic
type Service struct {
	db        *gorm.DB
	config    *config.Config
	inventory *inventory.Service
	logger    *logrus.Entry

	onReadyForPickup ReadyForPickupHook
}

// NewService creates a new order service
func NewService(db *gorm.DB, cfg *config.Config, inv *inventory.Service, logger *logrus.Logger) *Service {
	return &Service{
		db:        db,
		config:    cfg,
		inventory: inv,
		logger:    logger.WithField("component", "orders"),
	}
}

// SetReadyForPickupHook registers the dispatch callback
func (s *Service) SetReadyForPickupHook(hook ReadyForPickupHook) {
	s.onReadyForPickup = hook
}

// ReleasedItem records one line item whose reservation was given back
// during cancellation
type ReleasedItem struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// ReleaseFailure records one line item whose reservation could not be
// given back during cancellation
type ReleaseFailure struct {
	ProductID uint   `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Reason    string `json:"reason"`
}

// ReleaseReport is the per-item outcome of the compensating stock
// release that runs when an order is cancelled. The cancellation itself
// succeeds regardless; callers inspect Failed to reconcile stock.
type ReleaseReport struct {
	Released []ReleasedItem   `json:"released"`
	Failed   []ReleaseFailure `json:"failed"`
}

// CreateOrderItemRequest represents one requested line item
type CreateOrderItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// CreateOrderRequest represents order creation data
type CreateOrderRequest struct {
	UserID          uint                     `json:"user_id" binding:"required"`
	StoreID         uint                     `json:"store_id" binding:"required"`
	DeliveryMethod  DeliveryMethod           `json:"delivery_method" binding:"required"`
	DeliveryAddress string                   `json:"delivery_address"`
	DiscountAmount  int64                    `json:"discount_amount"`
	Items           []CreateOrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// ComputeTax derives the tax amount in cents from a subtotal and rate
func ComputeTax(subtotal int64, taxRate float64) int64 {
	return int64(math.Round(float64(subtotal) * taxRate))
}

// ComputeTotal composes the final order amount from its parts
func ComputeTotal(subtotal, deliveryFee, taxAmount, discountAmount int64) int64 {
	return subtotal + deliveryFee + taxAmount - discountAmount
}

// MonthPrefix builds the month-scoped numbering prefix, e.g. ORD202608
func MonthPrefix(prefix string, t time.Time) string {
	return fmt.Sprintf("%s%d%02d", prefix, t.Year(), int(t.Month()))
}

// FormatOrderNumber renders a full order number, e.g. ORD2026080042
func FormatOrderNumber(monthPrefix string, seq int64) string {
	return fmt.Sprintf("%s%04d", monthPrefix, seq)
}

// nextOrderNumber allocates the next number for the current month via an
// atomic upsert on the sequence row, so two concurrent creations in the
// same month can never draw the same value.
func (s *Service) nextOrderNumber(tx *gorm.DB, now time.Time) (string, error) {
	prefix := MonthPrefix(s.config.Order.OrderNumPrefix, now)

	var value int64
	err := tx.Raw(`
		INSERT INTO order_sequences (prefix, value, updated_at)
		VALUES (?, 1, NOW())
		ON CONFLICT (prefix)
		DO UPDATE SET value = order_sequences.value + 1, updated_at = NOW()
		RETURNING value`, prefix).Scan(&value).Error
	if err != nil {
		return "", fmt.Errorf("failed to allocate order number: %w", err)
	}

	return FormatOrderNumber(prefix, value), nil
}

// Create builds an order with its line items, computes totals and
// reserves stock for every item. The whole flow runs in one transaction:
// any failure rolls back the order, its items and all reservations.
func (s *Service) Create(req *CreateOrderRequest) (*Order, error) {
	var created *Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var u user.User
		if err := tx.Preload("Profile.Addresses").First(&u, req.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("user %d: %w", req.UserID, user.ErrNotFound)
			}
			return fmt.Errorf("failed to load user: %w", err)
		}

		var st store.Store
		if err := tx.Preload("Address").First(&st, req.StoreID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("store %d: %w", req.StoreID, store.ErrNotFound)
			}
			return fmt.Errorf("failed to load store: %w", err)
		}

		var subtotal int64
		items := make([]OrderItem, 0, len(req.Items))
		for _, line := range req.Items {
			if line.Quantity <= 0 {
				return fmt.Errorf("quantity for product %d must be positive", line.ProductID)
			}

			var p product.Product
			if err := tx.First(&p, line.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("product %d: %w", line.ProductID, product.ErrNotFound)
				}
				return fmt.Errorf("failed to load product: %w", err)
			}

			available, err := s.inventory.TotalProductStockTx(tx, p.ID, st.ID)
			if err != nil {
				return err
			}
			if available < line.Quantity {
				return fmt.Errorf("product %d: %w: available %d, requested %d",
					p.ID, inventory.ErrInsufficientStock, available, line.Quantity)
			}

			lineTotal := p.Price * int64(line.Quantity)
			subtotal += lineTotal
			items = append(items, OrderItem{
				ProductID:  p.ID,
				Quantity:   line.Quantity,
				UnitPrice:  p.Price,
				TotalPrice: lineTotal,
			})
		}

		var deliveryFee int64
		if req.DeliveryMethod != MethodPickup {
			deliveryFee = st.DeliveryFee
		}
		taxAmount := ComputeTax(subtotal, s.config.Order.TaxRate)
		totalAmount := ComputeTotal(subtotal, deliveryFee, taxAmount, req.DiscountAmount)

		deliveryAddress := req.DeliveryAddress
		if deliveryAddress == "" && req.DeliveryMethod == MethodDelivery {
			if addr := u.DefaultAddress(); addr != nil {
				deliveryAddress = addr.FreeText()
			}
		}

		now := time.Now().UTC()
		orderNumber, err := s.nextOrderNumber(tx, now)
		if err != nil {
			return err
		}

		o := &Order{
			OrderNumber:     orderNumber,
			UserID:          u.ID,
			StoreID:         st.ID,
			Status:          StatusPending,
			DeliveryMethod:  req.DeliveryMethod,
			DeliveryAddress: deliveryAddress,
			SubtotalAmount:  subtotal,
			DeliveryFee:     deliveryFee,
			TaxAmount:       taxAmount,
			DiscountAmount:  req.DiscountAmount,
			TotalAmount:     totalAmount,
			Items:           items,
		}
		if err := tx.Create(o).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for _, item := range o.Items {
			if err := s.inventory.ReserveForProductTx(tx, item.ProductID, item.Quantity, st.ID); err != nil {
				return err
			}
		}

		created = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":     created.ID,
		"order_number": created.OrderNumber,
		"store_id":     created.StoreID,
		"total_amount": created.TotalAmount,
	}).Info("Order created")

	return s.FindByID(created.ID)
}

// FindByID retrieves an order with its items and relations
func (s *Service) FindByID(id uint) (*Order, error) {
	var o Order
	err := s.db.
		Preload("Items.Product").
		Preload("User.Profile.Addresses").
		Preload("Store.Address").
		Preload("Driver.Profile").
		First(&o, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return &o, nil
}

// FindByNumber retrieves an order by its human-readable number
func (s *Service) FindByNumber(orderNumber string) (*Order, error) {
	var o Order
	err := s.db.
		Preload("Items.Product").
		Preload("User.Profile").
		Preload("Store.Address").
		Where("order_number = ?", orderNumber).
		First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %s: %w", orderNumber, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return &o, nil
}

// FindAll retrieves orders newest first, optionally filtered by user,
// store or status, paged by limit/offset. The second return value is
// the total matching count before paging.
func (s *Service) FindAll(userID, storeID *uint, status *Status, limit, offset int) ([]Order, int64, error) {
	query := s.db.Model(&Order{})
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	if storeID != nil {
		query = query.Where("store_id = ?", *storeID)
	}
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []Order
	err := query.
		Preload("Items.Product").
		Preload("Store").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve orders: %w", err)
	}
	return orders, total, nil
}

// Stats summarizes the order book, optionally scoped to one store
type Stats struct {
	TotalOrders     int64 `json:"total_orders"`
	PendingOrders   int64 `json:"pending_orders"`
	ActiveOrders    int64 `json:"active_orders"`
	DeliveredOrders int64 `json:"delivered_orders"`
	CancelledOrders int64 `json:"cancelled_orders"`
	TotalRevenue    int64 `json:"total_revenue"` // In cents, delivered orders only
}

// GetStats computes order counts per lifecycle bucket and delivered
// revenue
func (s *Service) GetStats(storeID *uint) (*Stats, error) {
	scoped := func() *gorm.DB {
		q := s.db.Model(&Order{})
		if storeID != nil {
			q = q.Where("store_id = ?", *storeID)
		}
		return q
	}

	stats := &Stats{}
	if err := scoped().Count(&stats.TotalOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	if err := scoped().Where("status = ?", StatusPending).Count(&stats.PendingOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to count pending orders: %w", err)
	}
	active := []Status{StatusConfirmed, StatusPreparing, StatusReadyForPickup, StatusInTransit}
	if err := scoped().Where("status IN ?", active).Count(&stats.ActiveOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to count active orders: %w", err)
	}
	if err := scoped().Where("status = ?", StatusDelivered).Count(&stats.DeliveredOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to count delivered orders: %w", err)
	}
	if err := scoped().Where("status = ?", StatusCancelled).Count(&stats.CancelledOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to count cancelled orders: %w", err)
	}
	if err := scoped().
		Where("status = ?", StatusDelivered).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&stats.TotalRevenue).Error; err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}
	return stats, nil
}

// FindByDriver retrieves orders assigned to a driver
func (s *Service) FindByDriver(driverID uint) ([]Order, error) {
	var orders []Order
	err := s.db.
		Preload("Items.Product").
		Preload("Store.Address").
		Where("driver_id = ?", driverID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve driver orders: %w", err)
	}
	return orders, nil
}

// releaseOrderItems applies release to each line item and collects the
// per-item outcome. A release failure never aborts the walk; the
// remaining items are still attempted.
func releaseOrderItems(items []OrderItem, release func(productID uint, quantity int) error) *ReleaseReport {
	report := &ReleaseReport{}
	for _, item := range items {
		if err := release(item.ProductID, item.Quantity); err != nil {
			report.Failed = append(report.Failed, ReleaseFailure{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Reason:    err.Error(),
			})
			continue
		}
		report.Released = append(report.Released, ReleasedItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return report
}

// UpdateStatus moves an order to newStatus if the transition table allows
// it, applying the per-status side effects. The order row is locked for
// the duration so concurrent transitions serialize per order. The report
// is non-nil only for cancellations.
func (s *Service) UpdateStatus(id uint, newStatus Status) (*Order, *ReleaseReport, error) {
	return s.updateStatus(id, newStatus, nil, "")
}

func (s *Service) updateStatus(id uint, newStatus Status, driverID *uint, reason string) (*Order, *ReleaseReport, error) {
	if !newStatus.IsValid() {
		return nil, nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, newStatus)
	}

	var released *Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var o Order
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Items").
			First(&o, id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("order %d: %w", id, ErrNotFound)
			}
			return fmt.Errorf("failed to load order: %w", err)
		}

		if !o.Status.CanTransitionTo(newStatus) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, newStatus)
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{"status": newStatus}

		switch newStatus {
		case StatusConfirmed:
			updates["confirmed_at"] = &now
		case StatusPreparing:
			updates["prepared_at"] = &now
		case StatusInTransit:
			if driverID != nil {
				updates["driver_id"] = *driverID
			} else if o.DriverID == nil {
				return fmt.Errorf("%w: cannot move to IN_TRANSIT without a driver", ErrInvalidState)
			}
			updates["picked_up_at"] = &now
		case StatusDelivered:
			updates["delivered_at"] = &now
		case StatusCancelled:
			updates["cancelled_at"] = &now
			updates["cancellation_reason"] = reason
		}

		if err := tx.Model(&o).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}

		if newStatus == StatusCancelled {
			released = &o
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	// Stock release on cancellation is best-effort: one failed item is
	// logged and the rest still get released. The per-item outcome goes
	// back to the caller so partial failures stay observable.
	var report *ReleaseReport
	if released != nil {
		report = releaseOrderItems(released.Items, func(productID uint, quantity int) error {
			err := s.inventory.ReleaseForProduct(productID, quantity, released.StoreID)
			if err != nil {
				s.logger.WithFields(logrus.Fields{
					"order_id":   released.ID,
					"product_id": productID,
					"quantity":   quantity,
				}).WithError(err).Warn("Failed to release reservation on cancellation")
			}
			return err
		})
	}

	s.logger.WithFields(logrus.Fields{
		"order_id": id,
		"status":   newStatus,
	}).Info("Order status updated")

	if newStatus == StatusReadyForPickup && s.onReadyForPickup != nil {
		s.onReadyForPickup(id)
	}

	o, err := s.FindByID(id)
	if err != nil {
		return nil, report, err
	}
	return o, report, nil
}

// ConfirmOrder converts every line item's reservation into a confirmed
// sale and moves the order to CONFIRMED. Only valid from PENDING; a
// repeat call finds the order already past PENDING and fails, so the
// payment bridge can retry without double-confirming.
func (s *Service) ConfirmOrder(id uint) (*Order, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var o Order
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Items").
			First(&o, id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("order %d: %w", id, ErrNotFound)
			}
			return fmt.Errorf("failed to load order: %w", err)
		}

		if o.Status != StatusPending {
			return fmt.Errorf("%w: cannot confirm order in status %s", ErrInvalidState, o.Status)
		}

		for _, item := range o.Items {
			if err := s.inventory.ConfirmSaleForProductTx(tx, item.ProductID, item.Quantity, o.StoreID); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		if err := tx.Model(&o).Updates(map[string]interface{}{
			"status":       StatusConfirmed,
			"confirmed_at": &now,
		}).Error; err != nil {
			return fmt.Errorf("failed to confirm order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithField("order_id", id).Info("Order confirmed")
	return s.FindByID(id)
}

// CancelOrder cancels an order with a reason; disallowed once delivered
// or already cancelled. The report lists which reservations were
// released and which failed.
func (s *Service) CancelOrder(id uint, reason string) (*Order, *ReleaseReport, error) {
	o, err := s.FindByID(id)
	if err != nil {
		return nil, nil, err
	}
	if !o.CanBeCancelled() {
		return nil, nil, fmt.Errorf("%w: cannot cancel order in status %s", ErrInvalidState, o.Status)
	}
	return s.updateStatus(id, StatusCancelled, nil, reason)
}

// AssignDriver sets the driver and dispatches the order into transit.
// Invoked by delivery workflow once a driver and route are resolved.
func (s *Service) AssignDriver(id, driverID uint) (*Order, error) {
	o, _, err := s.updateStatus(id, StatusInTransit, &driverID, "")
	return o, err
}

// MarkDelivered finalizes the order once the delivery run completes
func (s *Service) MarkDelivered(id uint) (*Order, error) {
	o, _, err := s.updateStatus(id, StatusDelivered, nil, "")
	return o, err
}

// RateOrder attaches a post-delivery rating and optional review
func (s *Service) RateOrder(id uint, rating int, review string) (*Order, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5")
	}

	o, err := s.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !o.CanBeRated() {
		return nil, fmt.Errorf("%w: only delivered orders can be rated", ErrInvalidState)
	}

	if err := s.db.Model(o).Updates(map[string]interface{}{
		"rating": rating,
		"review": review,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to rate order: %w", err)
	}
	return s.FindByID(id)
}

// Remove deletes an order; only permitted from terminal states
func (s *Service) Remove(id uint) error {
	o, err := s.FindByID(id)
	if err != nil {
		return err
	}
	if !o.CanBeRemoved() {
		return fmt.Errorf("%w: only cancelled or delivered orders can be removed", ErrInvalidState)
	}
	if err := s.db.Select("Items").Delete(o).Error; err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return nil
}
