package stripe

import (
	"strings"

	"academy-app/internal/domain/billing"
)

// NormalizeIntentStatus maps a PaymentIntent status onto the payment status
// stored in the payments table.
func NormalizeIntentStatus(s string) string {
	switch strings.TrimSpace(s) {
	case "succeeded":
		return billing.StatusCompleted
	case "processing", "requires_payment_method", "requires_confirmation", "requires_action", "requires_capture":
		return billing.StatusPending
	case "canceled":
		return billing.StatusFailed
	case "":
		return "none"
	default:
		return strings.TrimSpace(s)
	}
}
