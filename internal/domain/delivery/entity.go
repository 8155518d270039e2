// internal/domain/delivery/entity.go
package delivery

import (
	"encoding/json"
	"time"

	"github.com/your-org/marketplace-backend/internal/domain/order"
	"github.com/your-org/marketplace-backend/internal/domain/store"
	"github.com/your-org/marketplace-backend/internal/domain/user"
	"gorm.io/gorm"
)

// Status represents the delivery run status, separate from the order's
// own state machine
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusAssigned  Status = "ASSIGNED"
	StatusPickedUp  Status = "PICKED_UP"
	StatusInTransit Status = "IN_TRANSIT"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

// allowedTransitions is the delivery status graph. CANCELLED is reachable
// from every non-terminal state.
var allowedTransitions = map[Status][]Status{
	StatusPending:   {StatusAssigned, StatusCancelled},
	StatusAssigned:  {StatusPickedUp, StatusCancelled},
	StatusPickedUp:  {StatusInTransit, StatusCancelled},
	StatusInTransit: {StatusDelivered, StatusCancelled},
	StatusDelivered: {},
	StatusCancelled: {},
}

// CanTransitionTo reports whether moving from s to target is allowed
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range allowedTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status has no outgoing transitions
func (s Status) IsTerminal() bool {
	return len(allowedTransitions[s]) == 0
}

// IsValid reports whether the status is a known state
func (s Status) IsValid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// Delivery represents the fulfillment run for one order. The unique
// index on OrderID enforces at most one delivery per order.
type Delivery struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	OrderID         uint   `gorm:"uniqueIndex;not null" json:"order_id"`
	DriverID        uint   `gorm:"not null;index" json:"driver_id"`
	UserID          uint   `gorm:"not null;index" json:"user_id"`
	StoreID         uint   `gorm:"not null;index" json:"store_id"`
	DeliveryAddress string `gorm:"size:500" json:"delivery_address"`
	Status          Status `gorm:"size:20;default:'PENDING';index" json:"status"`

	EstimatedDeliveryTime *time.Time `json:"estimated_delivery_time,omitempty"`
	DeliveryFee           int64      `gorm:"default:0" json:"delivery_fee"` // In cents
	RouteDistanceM        float64    `json:"route_distance_m"`
	RouteDurationS        float64    `json:"route_duration_s"`
	RouteCoordinates      string     `gorm:"type:text" json:"-"`
	DeliveredAt           *time.Time `json:"delivered_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Order  *order.Order `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	Driver *user.User   `gorm:"foreignKey:DriverID" json:"driver,omitempty"`
	User   *user.User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Store  *store.Store `gorm:"foreignKey:StoreID" json:"store,omitempty"`
}

// TableName overrides the table name for Delivery
func (Delivery) TableName() string {
	return "deliveries"
}

// SetRouteCoordinates serializes polyline points onto the record
func (d *Delivery) SetRouteCoordinates(points [][]float64) error {
	if len(points) == 0 {
		d.RouteCoordinates = ""
		return nil
	}
	raw, err := json.Marshal(points)
	if err != nil {
		return err
	}
	d.RouteCoordinates = string(raw)
	return nil
}

// GetRouteCoordinates deserializes the stored polyline points
func (d *Delivery) GetRouteCoordinates() ([][]float64, error) {
	if d.RouteCoordinates == "" {
		return nil, nil
	}
	var points [][]float64
	if err := json.Unmarshal([]byte(d.RouteCoordinates), &points); err != nil {
		return nil, err
	}
	return points, nil
}
