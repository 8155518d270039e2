// internal/domain/user/service.go
package user

import (
	"errors"
	"fmt"

	"github.com/your-org/marketplace-backend/internal/config"
	"github.com/your-org/marketplace-backend/internal/pkg/auth"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a referenced user or address does not exist
var ErrNotFound = errors.New("user not found")

// ErrEmailTaken is returned when registering with an email that is in use
var ErrEmailTaken = errors.New("email already registered")

// Service handles user directory business logic
type Service struct {
	db        *gorm.DB
	config    *config.Config
	passwords *auth.PasswordManager
}

// NewService creates a new user service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:        db,
		config:    cfg,
		passwords: auth.NewPasswordManager(cfg),
	}
}

// CreateUserRequest represents registration data
type CreateUserRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	Role        Role   `json:"role"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
}

// CreateAddressRequest represents address creation data
type CreateAddressRequest struct {
	Area       string   `json:"area" binding:"required"`
	Town       string   `json:"town"`
	County     string   `json:"county"`
	Country    string   `json:"country"`
	PostalCode string   `json:"postal_code"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	IsDefault  bool     `json:"is_default"`
}

// Create registers a new user with an attached profile
func (s *Service) Create(req *CreateUserRequest) (*User, error) {
	var existing User
	if err := s.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	}

	hashed, err := s.passwords.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := req.Role
	if role == "" {
		role = RoleCustomer
	}

	u := &User{
		Email:    req.Email,
		Password: hashed,
		Role:     role,
		IsActive: true,
		Profile: &Profile{
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			PhoneNumber: req.PhoneNumber,
		},
	}

	if err := s.db.Create(u).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return u, nil
}

// FindByID retrieves a user with profile and addresses
func (s *Service) FindByID(id uint) (*User, error) {
	var u User
	err := s.db.Preload("Profile").Preload("Profile.Addresses").First(&u, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return &u, nil
}

// FindByEmail retrieves a user by email address
func (s *Service) FindByEmail(email string) (*User, error) {
	var u User
	err := s.db.Preload("Profile").Where("email = ?", email).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return &u, nil
}

// VerifyCredentials checks an email/password pair and returns the user
func (s *Service) VerifyCredentials(email, password string) (*User, error) {
	u, err := s.FindByEmail(email)
	if err != nil {
		return nil, err
	}
	if err := s.passwords.VerifyPassword(password, u.Password); err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}
	return u, nil
}

// FindDrivers returns every active user with the driver role, with
// profile and addresses preloaded for coordinate resolution.
func (s *Service) FindDrivers() ([]User, error) {
	var drivers []User
	err := s.db.
		Preload("Profile").
		Preload("Profile.Addresses").
		Where("role = ? AND is_active = ?", RoleDriver, true).
		Find(&drivers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list drivers: %w", err)
	}
	return drivers, nil
}

// AddAddress attaches an address to a user's profile
func (s *Service) AddAddress(userID uint, req *CreateAddressRequest) (*Address, error) {
	u, err := s.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if u.Profile == nil {
		return nil, fmt.Errorf("user %d has no profile", userID)
	}

	// Only one default address per profile
	if req.IsDefault {
		if err := s.db.Model(&Address{}).
			Where("profile_id = ? AND is_default = ?", u.Profile.ID, true).
			Update("is_default", false).Error; err != nil {
			return nil, fmt.Errorf("failed to reset default address: %w", err)
		}
	}

	addr := &Address{
		ProfileID:  u.Profile.ID,
		Area:       req.Area,
		Town:       req.Town,
		County:     req.County,
		Country:    req.Country,
		PostalCode: req.PostalCode,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		IsDefault:  req.IsDefault,
	}

	if err := s.db.Create(addr).Error; err != nil {
		return nil, fmt.Errorf("failed to create address: %w", err)
	}

	return addr, nil
}

// FindDefaultAddress returns the default (or first) address of a user
func (s *Service) FindDefaultAddress(userID uint) (*Address, error) {
	u, err := s.FindByID(userID)
	if err != nil {
		return nil, err
	}
	addr := u.DefaultAddress()
	if addr == nil {
		return nil, fmt.Errorf("no address found for user %d: %w", userID, ErrNotFound)
	}
	return addr, nil
}

// SetAvailability toggles the driver availability flag
func (s *Service) SetAvailability(userID uint, available bool) error {
	result := s.db.Model(&User{}).Where("id = ?", userID).Update("is_available", available)
	if result.Error != nil {
		return fmt.Errorf("failed to update availability: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
