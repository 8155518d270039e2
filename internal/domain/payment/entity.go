// internal/domain/payment/entity.go
package payment

import (
	"time"

	"gorm.io/gorm"
)

// Status represents the payment lifecycle status
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
)

// Payment represents one payment attempt against an order. The core only
// consumes the verified signal and writes back delivery-dispatch outcome
// fields; the charge itself happens at an external gateway.
type Payment struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	OrderID   uint   `gorm:"not null;index" json:"order_id"`
	UserID    uint   `gorm:"not null;index" json:"user_id"`
	Amount    int64  `gorm:"not null" json:"amount"` // In cents
	Status    Status `gorm:"size:20;default:'pending';index" json:"status"`
	Reference string `gorm:"uniqueIndex;not null;size:64" json:"reference"`
	Method    string `gorm:"size:50" json:"method"`

	PaidAt        *time.Time `json:"paid_at,omitempty"`
	FailureReason string     `gorm:"size:500" json:"failure_reason,omitempty"`

	// Dispatch outcome written back by the delivery listener
	DeliveryInitiated bool   `gorm:"default:false" json:"delivery_initiated"`
	DeliveryReference string `gorm:"size:100" json:"delivery_reference,omitempty"`
	DeliveryError     string `gorm:"size:500" json:"delivery_error,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name for Payment
func (Payment) TableName() string {
	return "payments"
}

// IsCompleted reports whether the payment has been verified
func (p *Payment) IsCompleted() bool {
	return p.Status == StatusCompleted
}
