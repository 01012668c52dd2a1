package billing

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"academy-app/internal/app/http/middleware"
	"academy-app/internal/infra/metrics"
	"academy-app/internal/services/payments"
)

type createOrderRequest struct {
	ItemID       string  `json:"itemId"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
	PurchaseType string  `json:"purchaseType"`
	PurchaserID  string  `json:"purchaserId"`
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var body createOrderRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		metrics.Inc(h.metrics.Orders, "invalid")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	purchaserID := body.PurchaserID
	if id := middleware.PurchaserID(c); id != "" {
		purchaserID = id
	}

	order, err := h.orders.Create(c.Request.Context(), payments.CreateOrderInput{
		ItemID:       body.ItemID,
		Amount:       body.Amount,
		Currency:     body.Currency,
		PurchaseType: body.PurchaseType,
		PurchaserID:  purchaserID,
	})
	if err != nil {
		var gwErr *payments.GatewayError
		switch {
		case errors.Is(err, payments.ErrInvalidRequest):
			metrics.Inc(h.metrics.Orders, "invalid")
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: itemId, amount", "details": err.Error()})
		case errors.Is(err, payments.ErrConfiguration):
			metrics.Inc(h.metrics.Orders, "not_configured")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment gateway not configured"})
		case errors.As(err, &gwErr):
			metrics.Inc(h.metrics.Orders, "gateway_error")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order", "details": gwErr.Error()})
		default:
			metrics.Inc(h.metrics.Orders, "error")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order", "details": err.Error()})
		}
		return
	}

	metrics.Inc(h.metrics.Orders, "ok")
	c.JSON(http.StatusOK, order)
}
