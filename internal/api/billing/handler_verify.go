package billing

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"academy-app/internal/infra/metrics"
	"academy-app/internal/services/payments"
)

type verifyRequest struct {
	OrderID     string   `json:"orderId"`
	PaymentID   string   `json:"paymentId"`
	Signature   string   `json:"signature"`
	PurchaserID string   `json:"purchaserId"`
	ItemID      string   `json:"itemId"`
	Amount      *float64 `json:"amount"`
	Currency    string   `json:"currency"`
}

// VerifyPayment checks the gateway callback signature and enrolls the
// purchaser. Nothing is written unless the signature matches.
func (h *Handler) VerifyPayment(c *gin.Context) {
	var body verifyRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		metrics.Inc(h.metrics.Verifications, "invalid")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	res, err := h.verifier.VerifyAndEnroll(c.Request.Context(), payments.VerifyInput{
		OrderID:     body.OrderID,
		PaymentID:   body.PaymentID,
		Signature:   body.Signature,
		PurchaserID: body.PurchaserID,
		ItemID:      body.ItemID,
		Amount:      body.Amount,
		Currency:    body.Currency,
	})
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrInvalidRequest):
			metrics.Inc(h.metrics.Verifications, "invalid")
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required payment details", "details": err.Error()})
		case errors.Is(err, payments.ErrSignatureInvalid):
			metrics.Inc(h.metrics.Verifications, "signature_invalid")
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment signature"})
		case errors.Is(err, payments.ErrConfiguration):
			metrics.Inc(h.metrics.Verifications, "not_configured")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment verification not configured"})
		default:
			metrics.Inc(h.metrics.Verifications, "error")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record enrollment", "details": err.Error()})
		}
		return
	}

	metrics.Inc(h.metrics.Verifications, "ok")
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"enrollmentId": res.EnrollmentID,
		"paymentId":    res.PaymentID,
	})
}
