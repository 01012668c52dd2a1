package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the payment and media counters on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	Orders        *prometheus.CounterVec
	Verifications *prometheus.CounterVec
	SignedURLs    *prometheus.CounterVec
	Webhooks      *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Orders: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "academy",
			Name:      "payment_orders_total",
			Help:      "Gateway order creation attempts by result.",
		}, []string{"result"}),
		Verifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "academy",
			Name:      "payment_verifications_total",
			Help:      "Payment verification attempts by result.",
		}, []string{"result"}),
		SignedURLs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "academy",
			Name:      "media_signed_urls_total",
			Help:      "Signed URL requests by result.",
		}, []string{"result"}),
		Webhooks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "academy",
			Name:      "stripe_webhook_events_total",
			Help:      "Stripe webhook events by type and result.",
		}, []string{"type", "result"}),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Inc is nil-safe so handlers can run without metrics in tests.
func Inc(vec *prometheus.CounterVec, labels ...string) {
	if vec == nil {
		return
	}
	vec.WithLabelValues(labels...).Inc()
}
