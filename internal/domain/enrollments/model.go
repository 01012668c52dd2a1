package enrollments

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("enrollment not found")

type Status string

const (
	StatusActive    Status = "active"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

type Enrollment struct {
	// {purchaserId}_{itemId}
	ID          string `gorm:"primaryKey;type:varchar(255)" json:"id"`
	PurchaserID string `gorm:"not null;index" json:"purchaser_id"`
	ItemID      string `gorm:"not null;index" json:"item_id"`

	EnrolledAt time.Time `gorm:"not null" json:"enrolled_at"`
	Status     Status    `gorm:"type:varchar(20);not null;default:'active'" json:"status"`

	PaymentID string  `gorm:"not null" json:"payment_id"`
	OrderID   string  `gorm:"not null" json:"order_id"`
	Amount    float64 `gorm:"not null" json:"amount"`

	// nil means lifetime access
	AccessExpiresAt *time.Time `json:"access_expires_at"`
	DeviceCount     int        `gorm:"not null;default:0" json:"device_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Key returns the deterministic enrollment id for a purchaser/item pair.
func Key(purchaserID, itemID string) string {
	return purchaserID + "_" + itemID
}
