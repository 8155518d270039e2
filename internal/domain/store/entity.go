// internal/domain/store/entity.go
package store

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Store represents a seller storefront
type Store struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	OwnerID      uint           `gorm:"uniqueIndex;not null" json:"owner_id"`
	Name         string         `gorm:"not null;size:255" json:"name"`
	Description  string         `gorm:"type:text" json:"description"`
	ContactInfo  string         `gorm:"size:255" json:"contact_info"`
	StoreCode    string         `gorm:"uniqueIndex;not null;size:50" json:"store_code"`
	DeliveryFee  int64          `gorm:"default:0" json:"delivery_fee"` // In cents
	Rating       float64        `gorm:"default:0" json:"rating"`
	TotalReviews int            `gorm:"default:0" json:"total_reviews"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	IsVerified   bool           `gorm:"default:false" json:"is_verified"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Address *Address `gorm:"foreignKey:StoreID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"address,omitempty"`
}

// Address is the physical location of a store. Latitude/Longitude are nil
// until the address has been geocoded.
type Address struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	StoreID    uint      `gorm:"uniqueIndex;not null" json:"store_id"`
	Area       string    `gorm:"size:255;not null" json:"area"`
	Town       string    `gorm:"size:100" json:"town"`
	County     string    `gorm:"size:100" json:"county"`
	Country    string    `gorm:"size:100" json:"country"`
	PostalCode string    `gorm:"size:20" json:"postal_code"`
	Latitude   *float64  `json:"latitude,omitempty"`
	Longitude  *float64  `json:"longitude,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName overrides the table name for Store
func (Store) TableName() string {
	return "stores"
}

// TableName overrides the table name for Address
func (Address) TableName() string {
	return "store_addresses"
}

// FreeText renders the address as a single line suitable for geocoding
func (a *Address) FreeText() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{a.Area, a.Town, a.County, a.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// HasCoordinates reports whether the address already carries coordinates
func (a *Address) HasCoordinates() bool {
	return a.Latitude != nil && a.Longitude != nil
}
