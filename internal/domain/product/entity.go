// internal/domain/product/entity.go
package product

import (
	"time"

	"gorm.io/gorm"
)

// Category represents a product category
type Category struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null;size:100;uniqueIndex" json:"name"`
	Slug        string         `gorm:"uniqueIndex;not null;size:120" json:"slug"`
	Description string         `gorm:"type:text" json:"description"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Product represents a catalog item
type Product struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null;size:255;index" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	SKU         string         `gorm:"uniqueIndex;size:100" json:"sku"`
	Price       int64          `gorm:"not null" json:"price"` // In cents
	CategoryID  *uint          `gorm:"index" json:"category_id"`
	ImageURL    string         `gorm:"size:500" json:"image_url"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// TableName overrides the table name for Category
func (Category) TableName() string {
	return "categories"
}

// TableName overrides the table name for Product
func (Product) TableName() string {
	return "products"
}
