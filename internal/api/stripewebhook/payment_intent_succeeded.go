package stripewebhooks

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	"go.uber.org/zap"

	"academy-app/internal/domain/billing"
	stripeinfra "academy-app/internal/infra/stripe"
	"academy-app/internal/services/payments"
)

var errPermanent = errors.New("unprocessable payment intent")

func isPermanent(err error) bool {
	return errors.Is(err, errPermanent) ||
		errors.Is(err, payments.ErrInvalidRequest) ||
		errors.Is(err, billing.ErrPaymentConflict)
}

// handlePaymentIntentSucceeded enrolls the purchaser recorded in the intent
// metadata. The webhook signature stands in for the HMAC callback check.
func (h *Handler) handlePaymentIntentSucceeded(c *gin.Context, eventID string, pi *stripe.PaymentIntent) error {
	if status := stripeinfra.NormalizeIntentStatus(string(pi.Status)); status != billing.StatusCompleted {
		return fmt.Errorf("%w: intent %s is %s", errPermanent, pi.ID, status)
	}

	purchaserID := strings.TrimSpace(pi.Metadata["purchaserId"])
	itemID := strings.TrimSpace(pi.Metadata["itemId"])
	if purchaserID == "" || itemID == "" {
		return fmt.Errorf("%w: intent %s lacks purchaserId/itemId metadata", errPermanent, pi.ID)
	}

	// A charge id identifies the captured payment; fall back to the intent.
	paymentID := pi.ID
	if pi.LatestCharge != nil && pi.LatestCharge.ID != "" {
		paymentID = pi.LatestCharge.ID
	}

	res, err := h.verifier.EnrollVerified(c.Request.Context(), payments.VerifiedPayment{
		OrderID:     pi.ID,
		PaymentID:   paymentID,
		Signature:   "stripe:" + eventID,
		PurchaserID: purchaserID,
		ItemID:      itemID,
		Amount:      stripeinfra.MajorAmount(pi.AmountReceived, string(pi.Currency)),
		Currency:    strings.ToUpper(string(pi.Currency)),
	})
	if err != nil {
		return err
	}

	h.log.Info("stripe payment enrolled",
		zap.String("event_id", eventID),
		zap.String("intent_id", pi.ID),
		zap.String("enrollment_id", res.EnrollmentID),
	)
	return nil
}
