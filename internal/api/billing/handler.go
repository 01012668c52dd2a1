package billing

import (
	"context"

	"go.uber.org/zap"

	"academy-app/internal/domain/billing"
	"academy-app/internal/infra/metrics"
	"academy-app/internal/services/payments"
)

type PaymentLister interface {
	ListPaymentsByPurchaser(ctx context.Context, purchaserID string) ([]billing.Payment, error)
}

// Handler serves the order, verification and payment-history routes.
type Handler struct {
	orders   *payments.OrderService
	verifier *payments.Verifier
	payments PaymentLister
	metrics  *metrics.Metrics
	log      *zap.Logger
}

func NewHandler(orders *payments.OrderService, verifier *payments.Verifier, lister PaymentLister, m *metrics.Metrics, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	if m == nil {
		m = &metrics.Metrics{}
	}
	return &Handler{orders: orders, verifier: verifier, payments: lister, metrics: m, log: log}
}
