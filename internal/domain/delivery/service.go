// internal/domain/delivery/service.go
package delivery

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/marketplace-backend/internal/config"
	"github.com/your-org/marketplace-backend/internal/domain/order"
	"github.com/your-org/marketplace-backend/internal/domain/payment"
	"github.com/your-org/marketplace-backend/internal/domain/store"
	"github.com/your-org/marketplace-backend/internal/domain/user"
	"github.com/your-org/marketplace-backend/internal/pkg/geo"
	"gorm.io/gorm"
)

// Sentinel errors for delivery dispatch operations
var (
	ErrNotFound            = errors.New("delivery not found")
	ErrInvalidTransition   = errors.New("invalid delivery status transition")
	ErrPaymentNotVerified  = errors.New("no completed payment for order")
	ErrNoDriverAvailable   = errors.New("no driver available")
	ErrLocationUnavailable = errors.New("location could not be resolved")
	ErrRouteUnavailable    = errors.New("route could not be computed")
)

// Service handles delivery dispatch business logic
type Service struct {
	db       *gorm.DB
	config   *config.Config
	orders   *order.Service
	users    *user.Service
	stores   *store.Service
	payments *payment.Service
	geocoder geo.Geocoder
	router   geo.Router
	logger   *logrus.Entry
}

// NewService creates a new delivery service
func NewService(
	db *gorm.DB,
	cfg *config.Config,
	orders *order.Service,
	users *user.Service,
	stores *store.Service,
	payments *payment.Service,
	geocoder geo.Geocoder,
	router geo.Router,
	logger *logrus.Logger,
) *Service {
	return &Service{
		db:       db,
		config:   cfg,
		orders:   orders,
		users:    users,
		stores:   stores,
		payments: payments,
		geocoder: geocoder,
		router:   router,
		logger:   logger.WithField("component", "deliveries"),
	}
}

// WorkflowResult composes everything dispatch resolved for a delivery run
type WorkflowResult struct {
	Delivery       *Delivery  `json:"delivery"`
	AlreadyExisted bool       `json:"already_existed"`
	RouteSummary   string     `json:"route_summary,omitempty"`
	DriverName     string     `json:"driver_name,omitempty"`
	DriverPhone    string     `json:"driver_phone,omitempty"`
	EstimatedAt    *time.Time `json:"estimated_at,omitempty"`
}

// EstimateArrival computes the ETA as now plus the route duration rounded
// up to whole minutes
func EstimateArrival(now time.Time, durationSeconds float64) time.Time {
	minutes := int(math.Ceil(durationSeconds / 60))
	return now.Add(time.Duration(minutes) * time.Minute)
}

// RouteSummary renders a human-readable route description
func RouteSummary(distanceMeters, durationSeconds float64) string {
	return fmt.Sprintf("%.1f km, ~%d min",
		distanceMeters/1000, int(math.Ceil(durationSeconds/60)))
}

// CreateWorkflow runs the full dispatch flow for an order: verify
// payment, match a driver, resolve positions, compute a route and ETA,
// persist the delivery and move the order into transit. Idempotent per
// order: a repeat call returns the existing delivery unchanged.
func (s *Service) CreateWorkflow(ctx context.Context, orderID uint) (*WorkflowResult, error) {
	if existing, err := s.findByOrder(orderID); err == nil {
		s.logger.WithFields(logrus.Fields{
			"order_id":    orderID,
			"delivery_id": existing.ID,
		}).Info("Delivery already exists for order, returning existing record")
		return &WorkflowResult{
			Delivery:       existing,
			AlreadyExisted: true,
			EstimatedAt:    existing.EstimatedDeliveryTime,
		}, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	paid, err := s.payments.HasCompletedPayment(orderID)
	if err != nil {
		return nil, err
	}
	if !paid {
		return nil, fmt.Errorf("order %d: %w", orderID, ErrPaymentNotVerified)
	}

	o, err := s.orders.FindByID(orderID)
	if err != nil {
		return nil, err
	}

	// Dispatch moves the order into IN_TRANSIT, which is only reachable
	// from READY_FOR_PICKUP.
	if o.Status != order.StatusReadyForPickup {
		return nil, fmt.Errorf("%w: order %d is %s, dispatch requires %s",
			order.ErrInvalidState, o.ID, o.Status, order.StatusReadyForPickup)
	}

	match, err := s.FindBestDriverForStore(ctx, o.StoreID)
	if err != nil {
		return nil, err
	}

	storeCoords, err := s.resolveStoreCoordinates(ctx, o.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve store position: %w", err)
	}
	if storeCoords == nil {
		return nil, fmt.Errorf("store %d: %w", o.StoreID, ErrLocationUnavailable)
	}

	customerCoords, err := s.resolveUserCoordinates(ctx, o.User)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve customer position: %w", err)
	}
	if customerCoords == nil {
		return nil, fmt.Errorf("customer %d: %w", o.UserID, ErrLocationUnavailable)
	}

	route, err := s.router.Directions(ctx, *storeCoords, *customerCoords)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRouteUnavailable, err)
	}
	if route == nil {
		return nil, fmt.Errorf("order %d: %w", orderID, ErrRouteUnavailable)
	}

	eta := EstimateArrival(time.Now().UTC(), route.DurationSeconds)

	d := &Delivery{
		OrderID:               o.ID,
		DriverID:              match.Driver.ID,
		UserID:                o.UserID,
		StoreID:               o.StoreID,
		DeliveryAddress:       o.DeliveryAddress,
		Status:                StatusAssigned,
		EstimatedDeliveryTime: &eta,
		DeliveryFee:           o.DeliveryFee,
		RouteDistanceM:        route.DistanceMeters,
		RouteDurationS:        route.DurationSeconds,
	}
	if err := d.SetRouteCoordinates(route.Coordinates); err != nil {
		return nil, fmt.Errorf("failed to serialize route: %w", err)
	}
	persisted, existed, err := s.persistRun(d)
	if err != nil {
		return nil, err
	}
	if existed {
		s.logger.WithFields(logrus.Fields{
			"order_id":    o.ID,
			"delivery_id": persisted.ID,
		}).Info("Concurrent dispatch already created delivery, returning existing record")
		return &WorkflowResult{
			Delivery:       persisted,
			AlreadyExisted: true,
			EstimatedAt:    persisted.EstimatedDeliveryTime,
		}, nil
	}

	if _, err := s.orders.AssignDriver(o.ID, match.Driver.ID); err != nil {
		return nil, fmt.Errorf("delivery %d created but order dispatch failed: %w", d.ID, err)
	}

	s.logger.WithFields(logrus.Fields{
		"delivery_id": d.ID,
		"order_id":    o.ID,
		"driver_id":   match.Driver.ID,
		"eta":         eta,
	}).Info("Delivery workflow completed")

	return &WorkflowResult{
		Delivery:     d,
		RouteSummary: RouteSummary(route.DistanceMeters, route.DurationSeconds),
		DriverName:   match.Driver.GetDisplayName(),
		DriverPhone:  match.Driver.GetPhoneNumber(),
		EstimatedAt:  &eta,
	}, nil
}

// persistRun inserts a delivery row. The unique index on order_id is the
// backstop for concurrent dispatch: if the insert loses that race, the
// winner's row is re-read and returned instead of surfacing the conflict.
func (s *Service) persistRun(d *Delivery) (*Delivery, bool, error) {
	if err := s.db.Create(d).Error; err != nil {
		if existing, ferr := s.findByOrder(d.OrderID); ferr == nil {
			return existing, true, nil
		}
		return nil, false, fmt.Errorf("failed to create delivery: %w", err)
	}
	return d, false, nil
}

func (s *Service) findByOrder(orderID uint) (*Delivery, error) {
	var d Delivery
	err := s.db.Where("order_id = ?", orderID).First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("delivery for order %d: %w", orderID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve delivery: %w", err)
	}
	return &d, nil
}

// FindByOrder retrieves the delivery for an order, if any
func (s *Service) FindByOrder(orderID uint) (*Delivery, error) {
	return s.findByOrder(orderID)
}

// FindByID retrieves a delivery with its relations
func (s *Service) FindByID(id uint) (*Delivery, error) {
	var d Delivery
	err := s.db.
		Preload("Order.Items.Product").
		Preload("Driver.Profile").
		Preload("User.Profile").
		Preload("Store.Address").
		First(&d, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("delivery %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve delivery: %w", err)
	}
	return &d, nil
}

// FindAll retrieves deliveries, optionally filtered by driver or status
func (s *Service) FindAll(driverID *uint, status *Status) ([]Delivery, error) {
	query := s.db.
		Preload("Order").
		Preload("Driver.Profile").
		Order("created_at DESC")
	if driverID != nil {
		query = query.Where("driver_id = ?", *driverID)
	}
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var deliveries []Delivery
	if err := query.Find(&deliveries).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve deliveries: %w", err)
	}
	return deliveries, nil
}

// DeliveryDetails is the composed read view of one delivery run
type DeliveryDetails struct {
	Delivery         *Delivery   `json:"delivery"`
	RouteCoordinates [][]float64 `json:"route_coordinates,omitempty"`
	RouteSummary     string      `json:"route_summary"`
	DriverName       string      `json:"driver_name,omitempty"`
	DriverPhone      string      `json:"driver_phone,omitempty"`
}

// GetDetails composes the delivery with its decoded route and driver info
func (s *Service) GetDetails(id uint) (*DeliveryDetails, error) {
	d, err := s.FindByID(id)
	if err != nil {
		return nil, err
	}

	points, err := d.GetRouteCoordinates()
	if err != nil {
		s.logger.WithField("delivery_id", d.ID).WithError(err).
			Warn("Failed to decode stored route coordinates")
	}

	details := &DeliveryDetails{
		Delivery:         d,
		RouteCoordinates: points,
		RouteSummary:     RouteSummary(d.RouteDistanceM, d.RouteDurationS),
	}
	if d.Driver != nil {
		details.DriverName = d.Driver.GetDisplayName()
		details.DriverPhone = d.Driver.GetPhoneNumber()
	}
	return details, nil
}

// UpdateStatus moves the delivery through its state machine. DELIVERED
// additionally stamps delivered_at and finalizes the linked order.
func (s *Service) UpdateStatus(id uint, newStatus Status) (*Delivery, error) {
	if !newStatus.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, newStatus)
	}

	d, err := s.findByID(id)
	if err != nil {
		return nil, err
	}

	if !d.Status.CanTransitionTo(newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, d.Status, newStatus)
	}

	updates := map[string]interface{}{"status": newStatus}
	if newStatus == StatusDelivered {
		now := time.Now().UTC()
		updates["delivered_at"] = &now
	}

	if err := s.db.Model(d).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update delivery status: %w", err)
	}

	if newStatus == StatusDelivered {
		if _, err := s.orders.MarkDelivered(d.OrderID); err != nil {
			s.logger.WithFields(logrus.Fields{
				"delivery_id": d.ID,
				"order_id":    d.OrderID,
			}).WithError(err).Error("Delivery completed but order finalization failed")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"delivery_id": id,
		"status":      newStatus,
	}).Info("Delivery status updated")

	return s.FindByID(id)
}

// Remove deletes a delivery run; only permitted once terminal
func (s *Service) Remove(id uint) error {
	d, err := s.findByID(id)
	if err != nil {
		return err
	}
	if !d.Status.IsTerminal() {
		return fmt.Errorf("%w: cannot remove delivery in status %s", ErrInvalidTransition, d.Status)
	}
	if err := s.db.Delete(d).Error; err != nil {
		return fmt.Errorf("failed to delete delivery: %w", err)
	}
	return nil
}

func (s *Service) findByID(id uint) (*Delivery, error) {
	var d Delivery
	if err := s.db.First(&d, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("delivery %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve delivery: %w", err)
	}
	return &d, nil
}
