// internal/domain/store/service.go
package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/your-org/marketplace-backend/internal/config"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a referenced store does not exist
var ErrNotFound = errors.New("store not found")

// Service handles store directory business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new store service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CreateStoreRequest represents store creation data
type CreateStoreRequest struct {
	OwnerID     uint   `json:"owner_id" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	ContactInfo string `json:"contact_info"`
	StoreCode   string `json:"store_code" binding:"required"`
	DeliveryFee int64  `json:"delivery_fee"` // In cents

	Area       string   `json:"area"`
	Town       string   `json:"town"`
	County     string   `json:"county"`
	Country    string   `json:"country"`
	PostalCode string   `json:"postal_code"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
}

// Create registers a new store with its address
func (s *Service) Create(req *CreateStoreRequest) (*Store, error) {
	var existing Store
	if err := s.db.Where("store_code = ?", req.StoreCode).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("store with code '%s' already exists", req.StoreCode)
	}

	st := &Store{
		OwnerID:     req.OwnerID,
		Name:        req.Name,
		Description: req.Description,
		ContactInfo: req.ContactInfo,
		StoreCode:   strings.ToUpper(req.StoreCode),
		DeliveryFee: req.DeliveryFee,
		IsActive:    true,
	}

	if req.Area != "" || req.Latitude != nil {
		st.Address = &Address{
			Area:       req.Area,
			Town:       req.Town,
			County:     req.County,
			Country:    req.Country,
			PostalCode: req.PostalCode,
			Latitude:   req.Latitude,
			Longitude:  req.Longitude,
		}
	}

	if err := s.db.Create(st).Error; err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	return st, nil
}

// FindByID retrieves a store with its address
func (s *Service) FindByID(id uint) (*Store, error) {
	var st Store
	err := s.db.Preload("Address").First(&st, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve store: %w", err)
	}
	return &st, nil
}

// FindAll retrieves all active stores
func (s *Service) FindAll() ([]Store, error) {
	var stores []Store
	if err := s.db.Preload("Address").Where("is_active = ?", true).Find(&stores).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve stores: %w", err)
	}
	return stores, nil
}

// UpdateDeliveryFee changes the configured delivery fee for a store
func (s *Service) UpdateDeliveryFee(id uint, fee int64) error {
	if fee < 0 {
		return fmt.Errorf("delivery fee cannot be negative")
	}
	result := s.db.Model(&Store{}).Where("id = ?", id).Update("delivery_fee", fee)
	if result.Error != nil {
		return fmt.Errorf("failed to update delivery fee: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
