// internal/domain/product/service.go
package product

import (
	"errors"
	"fmt"

	"github.com/your-org/marketplace-backend/internal/config"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a referenced product or category does not exist
var ErrNotFound = errors.New("product not found")

// Service handles catalog business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new product service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CreateProductRequest represents product creation data
type CreateProductRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	SKU         string `json:"sku"`
	Price       int64  `json:"price" binding:"required"` // In cents
	CategoryID  *uint  `json:"category_id"`
	ImageURL    string `json:"image_url"`
}

// Create adds a product to the catalog
func (s *Service) Create(req *CreateProductRequest) (*Product, error) {
	if req.Price <= 0 {
		return nil, fmt.Errorf("product price must be positive")
	}

	if req.CategoryID != nil {
		var category Category
		if err := s.db.First(&category, *req.CategoryID).Error; err != nil {
			return nil, fmt.Errorf("category %d not found: %w", *req.CategoryID, ErrNotFound)
		}
	}

	p := &Product{
		Name:        req.Name,
		Description: req.Description,
		SKU:         req.SKU,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		ImageURL:    req.ImageURL,
		IsActive:    true,
	}

	if err := s.db.Create(p).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return p, nil
}

// FindByID retrieves a single product
func (s *Service) FindByID(id uint) (*Product, error) {
	var p Product
	err := s.db.Preload("Category").First(&p, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}
	return &p, nil
}

// FindAll retrieves active products, optionally filtered by category
func (s *Service) FindAll(categoryID *uint) ([]Product, error) {
	query := s.db.Preload("Category").Where("is_active = ?", true)
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}

	var products []Product
	if err := query.Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}
	return products, nil
}

// CreateCategory adds a category
func (s *Service) CreateCategory(name, slug, description string) (*Category, error) {
	category := &Category{
		Name:        name,
		Slug:        slug,
		Description: description,
		IsActive:    true,
	}
	if err := s.db.Create(category).Error; err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

// FindCategories retrieves all active categories
func (s *Service) FindCategories() ([]Category, error) {
	var categories []Category
	if err := s.db.Where("is_active = ?", true).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve categories: %w", err)
	}
	return categories, nil
}
