// internal/domain/inventory/entity.go
package inventory

import (
	"time"

	"github.com/your-org/marketplace-backend/internal/domain/product"
	"gorm.io/gorm"
)

// Action represents the last stock-affecting action on a record
type Action string

const (
	ActionRestock    Action = "restock"
	ActionSale       Action = "sale"
	ActionAdjustment Action = "adjustment"
	ActionExpired    Action = "expired"
	ActionDamaged    Action = "damaged"
)

// Inventory represents a per-store stock pool holding one or more products.
// AvailableQuantity and ReservedQuantity are mutated only through atomic
// conditional updates so that concurrent reservations cannot oversell.
type Inventory struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	Name              string         `gorm:"not null;size:255" json:"name"`
	StoreID           uint           `gorm:"not null;index" json:"store_id"`
	AvailableQuantity int            `gorm:"not null;default:0" json:"available_quantity"`
	ReservedQuantity  int            `gorm:"not null;default:0" json:"reserved_quantity"`
	ReorderLevel      int            `gorm:"default:5" json:"reorder_level"`
	MaxStockLevel     int            `gorm:"default:100" json:"max_stock_level"`
	CostPrice         int64          `gorm:"default:0" json:"cost_price"` // In cents
	LastRestockedAt   *time.Time     `json:"last_restocked_at,omitempty"`
	LastAction        Action         `gorm:"size:20;default:'restock'" json:"last_action"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Products []product.Product `gorm:"many2many:inventory_products;" json:"products,omitempty"`
}

// TableName overrides the table name for Inventory
func (Inventory) TableName() string {
	return "inventories"
}

// TotalQuantity returns stock on hand including reservations
func (i *Inventory) TotalQuantity() int {
	return i.AvailableQuantity + i.ReservedQuantity
}

// IsLowStock checks if available stock is at or below the reorder level
func (i *Inventory) IsLowStock() bool {
	return i.AvailableQuantity <= i.ReorderLevel
}

// IsOutOfStock checks if no stock is available
func (i *Inventory) IsOutOfStock() bool {
	return i.AvailableQuantity == 0
}

// CanReserve checks if there's enough available stock for a reservation
func (i *Inventory) CanReserve(quantity int) bool {
	return quantity > 0 && i.AvailableQuantity >= quantity
}
