// internal/domain/order/entity.go
package order

import (
	"time"

	"github.com/your-org/marketplace-backend/internal/domain/product"
	"github.com/your-org/marketplace-backend/internal/domain/store"
	"github.com/your-org/marketplace-backend/internal/domain/user"
	"gorm.io/gorm"
)

// Status represents the order fulfillment status
type Status string

const (
	StatusPending        Status = "PENDING"
	StatusConfirmed      Status = "CONFIRMED"
	StatusPreparing      Status = "PREPARING"
	StatusReadyForPickup Status = "READY_FOR_PICKUP"
	StatusInTransit      Status = "IN_TRANSIT"
	StatusDelivered      Status = "DELIVERED"
	StatusCancelled      Status = "CANCELLED"
	StatusRefunded       Status = "REFUNDED"
)

// DeliveryMethod represents how the order reaches the customer
type DeliveryMethod string

const (
	MethodPickup   DeliveryMethod = "pickup"
	MethodDelivery DeliveryMethod = "delivery"
)

// allowedTransitions is the forward-only status graph. Terminal states
// (DELIVERED, CANCELLED, REFUNDED) have no outgoing edges.
var allowedTransitions = map[Status][]Status{
	StatusPending:        {StatusConfirmed, StatusCancelled},
	StatusConfirmed:      {StatusPreparing, StatusCancelled},
	StatusPreparing:      {StatusReadyForPickup, StatusCancelled},
	StatusReadyForPickup: {StatusInTransit, StatusCancelled},
	StatusInTransit:      {StatusDelivered},
	StatusDelivered:      {},
	StatusCancelled:      {},
	StatusRefunded:       {},
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

// Order represents one purchase transaction
type Order struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	OrderNumber     string         `gorm:"uniqueIndex;not null;size:20" json:"order_number"`
	UserID          uint           `gorm:"not null;index" json:"user_id"`
	StoreID         uint           `gorm:"not null;index" json:"store_id"`
	Status          Status         `gorm:"size:20;default:'PENDING';index" json:"status"`
	DeliveryMethod  DeliveryMethod `gorm:"size:20;default:'delivery'" json:"delivery_method"`
	DeliveryAddress string         `gorm:"size:500" json:"delivery_address"`
	SubtotalAmount  int64          `gorm:"not null" json:"subtotal_amount"` // In cents
	DeliveryFee     int64          `gorm:"default:0" json:"delivery_fee"`   // In cents
	TaxAmount       int64          `gorm:"default:0" json:"tax_amount"`     // In cents
	DiscountAmount  int64          `gorm:"default:0" json:"discount_amount"`
	TotalAmount     int64          `gorm:"not null" json:"total_amount"` // In cents
	DriverID        *uint          `gorm:"index" json:"driver_id,omitempty"`

	ConfirmedAt        *time.Time `json:"confirmed_at,omitempty"`
	PreparedAt         *time.Time `json:"prepared_at,omitempty"`
	PickedUpAt         *time.Time `json:"picked_up_at,omitempty"`
	DeliveredAt        *time.Time `json:"delivered_at,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason string     `gorm:"size:500" json:"cancellation_reason,omitempty"`

	Rating *int   `json:"rating,omitempty"`
	Review string `gorm:"size:1000" json:"review,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Items  []OrderItem  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	User   *user.User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Store  *store.Store `gorm:"foreignKey:StoreID" json:"store,omitempty"`
	Driver *user.User   `gorm:"foreignKey:DriverID" json:"driver,omitempty"`
}

// OrderItem represents a single line item; immutable once created
type OrderItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OrderID    uint      `gorm:"not null;index" json:"order_id"`
	ProductID  uint      `gorm:"not null;index" json:"product_id"`
	Quantity   int       `gorm:"not null" json:"quantity"`
	UnitPrice  int64     `gorm:"not null" json:"unit_price"`  // In cents
	TotalPrice int64     `gorm:"not null" json:"total_price"` // In cents
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Product *product.Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// Sequence backs month-scoped order numbering. One row per prefix,
// incremented atomically via upsert.
type Sequence struct {
	Prefix    string    `gorm:"primaryKey;size:12" json:"prefix"`
	Value     int64     `gorm:"not null;default:0" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name for Order
func (Order) TableName() string {
	return "orders"
}

// TableName overrides the table name for OrderItem
func (OrderItem) TableName() string {
	return "order_items"
}

// TableName overrides the table name for Sequence
func (Sequence) TableName() string {
	return "order_sequences"
}

// CanBeCancelled checks if cancellation is still permitted
func (o *Order) CanBeCancelled() bool {
	return o.Status != StatusDelivered && o.Status != StatusCancelled && o.Status != StatusRefunded
}

// CanBeRemoved checks if deletion is permitted (terminal states only)
func (o *Order) CanBeRemoved() bool {
	return o.Status == StatusCancelled || o.Status == StatusDelivered
}

// CanBeRated checks if a rating can be attached
func (o *Order) CanBeRated() bool {
	return o.Status == StatusDelivered
}
