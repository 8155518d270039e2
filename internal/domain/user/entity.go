// internal/domain/user/entity.go
package user

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Role represents the capability a user account carries. A user's role
// decides which optional relations are meaningful: drivers are matched by
// their default address, store owners have stores, customers place orders.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
	RoleStore    Role = "store"
	RoleDriver   Role = "driver"
)

// User represents a marketplace account
type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Email       string         `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Password    string         `gorm:"not null;size:255" json:"-"`
	Role        Role           `gorm:"not null;size:20;index" json:"role"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	IsAvailable bool           `gorm:"default:true" json:"is_available"`
	LastLoginAt *time.Time     `json:"last_login_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Profile *Profile `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"profile,omitempty"`
}

// Profile holds the personal details attached to a user account
type Profile struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	FirstName   string    `gorm:"size:100" json:"first_name"`
	LastName    string    `gorm:"size:100" json:"last_name"`
	PhoneNumber string    `gorm:"size:20" json:"phone_number"`
	Avatar      string    `gorm:"size:500" json:"avatar"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relationships
	Addresses []Address `gorm:"foreignKey:ProfileID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"addresses,omitempty"`
}

// Address represents a profile address. Latitude/Longitude are nil until
// the address has been geocoded.
type Address struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ProfileID  uint      `gorm:"not null;index" json:"profile_id"`
	Area       string    `gorm:"size:255;not null" json:"area"`
	Town       string    `gorm:"size:100" json:"town"`
	County     string    `gorm:"size:100" json:"county"`
	Country    string    `gorm:"size:100" json:"country"`
	PostalCode string    `gorm:"size:20" json:"postal_code"`
	Latitude   *float64  `json:"latitude,omitempty"`
	Longitude  *float64  `json:"longitude,omitempty"`
	IsDefault  bool      `gorm:"default:false" json:"is_default"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// TableName overrides the table name for Profile
func (Profile) TableName() string {
	return "profiles"
}

// TableName overrides the table name for Address
func (Address) TableName() string {
	return "addresses"
}

// BeforeCreate hook to handle business logic before user creation
func (u *User) BeforeCreate(tx *gorm.DB) error {
	// Email should be lowercase
	u.Email = strings.ToLower(u.Email)
	return nil
}

// IsDriver reports whether this account can be assigned deliveries
func (u *User) IsDriver() bool {
	return u.Role == RoleDriver
}

// IsAdminRole reports whether this account has admin capability
func (u *User) IsAdminRole() bool {
	return u.Role == RoleAdmin
}

// GetFullName returns the user's full name from the profile
func (u *User) GetFullName() string {
	if u.Profile == nil {
		return ""
	}
	return strings.TrimSpace(u.Profile.FirstName + " " + u.Profile.LastName)
}

// GetDisplayName returns display name (full name or email)
func (u *User) GetDisplayName() string {
	fullName := u.GetFullName()
	if fullName != "" {
		return fullName
	}
	return u.Email
}

// GetPhoneNumber returns the profile phone number, if any
func (u *User) GetPhoneNumber() string {
	if u.Profile == nil {
		return ""
	}
	return u.Profile.PhoneNumber
}

// DefaultAddress returns the default address of the profile, falling back
// to the first address when none is marked default.
func (u *User) DefaultAddress() *Address {
	if u.Profile == nil || len(u.Profile.Addresses) == 0 {
		return nil
	}
	for i := range u.Profile.Addresses {
		if u.Profile.Addresses[i].IsDefault {
			return &u.Profile.Addresses[i]
		}
	}
	return &u.Profile.Addresses[0]
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
