package payments

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultCurrency     = "INR"
	DefaultPurchaseType = "course"
)

// Gateway creates orders with the external payment processor.
type Gateway interface {
	CreateOrder(ctx context.Context, req GatewayOrderRequest) (GatewayOrder, error)
}

type GatewayOrderRequest struct {
	// minor currency units
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]string
}

type GatewayOrder struct {
	ID       string
	Amount   int64
	Currency string
}

type CreateOrderInput struct {
	ItemID       string
	Amount       float64
	Currency     string
	PurchaseType string
	PurchaserID  string
}

type Order struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type OrderService struct {
	gateway Gateway
	log     *zap.Logger
	now     func() time.Time
}

// NewOrderService accepts a nil gateway; Create then fails with ErrConfiguration.
func NewOrderService(gateway Gateway, log *zap.Logger) *OrderService {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderService{
		gateway: gateway,
		log:     log,
		now:     time.Now,
	}
}

func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (Order, error) {
	itemID := strings.TrimSpace(in.ItemID)
	if itemID == "" {
		return Order{}, invalid("itemId is required")
	}
	if math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) || in.Amount <= 0 {
		return Order{}, invalid("amount must be greater than zero")
	}
	minor := int64(math.Round(in.Amount * 100))
	if minor <= 0 {
		return Order{}, invalid("amount is below the smallest currency unit")
	}

	if s.gateway == nil {
		s.log.Error("payment gateway credentials missing",
			zap.String("kind", "configuration"),
			zap.String("item_id", itemID),
		)
		return Order{}, ErrConfiguration
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	purchaseType := strings.TrimSpace(in.PurchaseType)
	if purchaseType == "" {
		purchaseType = DefaultPurchaseType
	}

	notes := map[string]string{
		"itemId":       itemID,
		"purchaseType": purchaseType,
	}
	if in.PurchaserID != "" {
		notes["purchaserId"] = in.PurchaserID
	}

	req := GatewayOrderRequest{
		Amount:   minor,
		Currency: currency,
		Receipt:  fmt.Sprintf("%s_%s_%d", purchaseType, itemID, s.now().UnixMilli()),
		Notes:    notes,
	}

	order, err := s.gateway.CreateOrder(ctx, req)
	if err != nil {
		if !errors.Is(err, ErrGateway) {
			err = &GatewayError{Err: err}
		}
		s.log.Error("gateway order creation failed",
			zap.String("kind", "gateway"),
			zap.String("item_id", itemID),
			zap.String("receipt", req.Receipt),
			zap.Error(err),
		)
		return Order{}, err
	}

	s.log.Info("gateway order created",
		zap.String("order_id", order.ID),
		zap.String("item_id", itemID),
		zap.Int64("amount", order.Amount),
	)

	return Order{
		OrderID:  order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
	}, nil
}
