package billing

import (
	"errors"
	"time"
)

// ErrPaymentConflict means the gateway order/payment pair is already
// recorded for a different purchaser or item.
var ErrPaymentConflict = errors.New("gateway payment already recorded for another purchase")

const (
	StatusCompleted = "completed"
	StatusPending   = "pending"
	StatusFailed    = "failed"
)

// Payment is an append-only audit row written after a verified callback.
// The gateway order/payment pair is unique so a replayed callback does not
// produce a second row.
type Payment struct {
	ID          string `gorm:"type:uuid;primaryKey" json:"id"`
	PurchaserID string `gorm:"not null;index" json:"purchaser_id"`
	ItemID      string `gorm:"not null;index" json:"item_id"`

	Amount   float64 `gorm:"not null" json:"amount"`
	Currency string  `gorm:"type:varchar(10);not null;default:'INR'" json:"currency"`

	GatewayOrderID   string `gorm:"not null;uniqueIndex:idx_payments_gateway_ref,priority:1" json:"gateway_order_id"`
	GatewayPaymentID string `gorm:"not null;uniqueIndex:idx_payments_gateway_ref,priority:2" json:"gateway_payment_id"`
	GatewaySignature string `json:"-"`

	Status    string    `gorm:"type:varchar(20);not null" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
