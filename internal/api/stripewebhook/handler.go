package stripewebhooks

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/webhook"
	"go.uber.org/zap"

	"academy-app/internal/infra/metrics"
	"academy-app/internal/services/payments"
)

const maxBodyBytes = 65536

type Handler struct {
	endpointSecret string
	verifier       *payments.Verifier
	metrics        *metrics.Metrics
	log            *zap.Logger
}

func NewHandler(endpointSecret string, verifier *payments.Verifier, m *metrics.Metrics, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	if m == nil {
		m = &metrics.Metrics{}
	}
	return &Handler{endpointSecret: endpointSecret, verifier: verifier, metrics: m, log: log}
}

func (h *Handler) StripeWebhook(c *gin.Context) {
	if h.endpointSecret == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "STRIPE_WEBHOOK_SECRET not configured"})
		return
	}

	payload, err := readStripeBody(c, maxBodyBytes)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Error reading request body"})
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		c.GetHeader("Stripe-Signature"),
		h.endpointSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		h.log.Warn("stripe signature verification failed",
			zap.String("security", "signature_mismatch"),
			zap.Error(err),
		)
		metrics.Inc(h.metrics.Webhooks, "unknown", "signature_invalid")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Signature verification failed"})
		return
	}

	switch event.Type {
	case "payment_intent.succeeded":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			metrics.Inc(h.metrics.Webhooks, string(event.Type), "invalid")
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse payment intent"})
			return
		}
		if err := h.handlePaymentIntentSucceeded(c, event.ID, &intent); err != nil {
			metrics.Inc(h.metrics.Webhooks, string(event.Type), "error")
			if isPermanent(err) {
				// acknowledged so Stripe stops redelivering
				c.JSON(http.StatusOK, gin.H{"status": "ignored", "reason": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		metrics.Inc(h.metrics.Webhooks, string(event.Type), "ok")
		c.JSON(http.StatusOK, gin.H{"status": "received"})

	default:
		metrics.Inc(h.metrics.Webhooks, string(event.Type), "ignored")
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
	}
}

func readStripeBody(c *gin.Context, maxBytes int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	return io.ReadAll(c.Request.Body)
}
