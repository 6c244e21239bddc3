package metrics

import "github.com/prometheus/client_golang/prometheus"

// WebhookMetrics counts payment webhook deliveries by outcome. The replayed
// counter tracks deliveries short-circuited by the idempotency check, which
// is the signal to watch during provider retry storms.
type WebhookMetrics struct {
	processed *prometheus.CounterVec
	replayed  prometheus.Counter
	rejected  prometheus.Counter
}

// NewWebhookMetrics registers webhook counters on the provided registerer.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	if reg == nil {
		return &WebhookMetrics{}
	}
	processed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_processed_total",
		Help: "Payment webhooks processed, by resulting donation status.",
	}, []string{"status"})
	replayed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "webhook_replayed_total",
		Help: "Payment webhooks ignored as duplicates of a terminal state.",
	})
	rejected := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "webhook_rejected_total",
		Help: "Payment webhooks rejected before processing (bad signature or payload).",
	})
	reg.MustRegister(processed, replayed, rejected)
	return &WebhookMetrics{processed: processed, replayed: replayed, rejected: rejected}
}

// IncProcessed records a webhook that transitioned a donation to status.
func (w *WebhookMetrics) IncProcessed(status string) {
	if w == nil || w.processed == nil {
		return
	}
	w.processed.WithLabelValues(normalizeLabel(status)).Inc()
}

// IncReplayed records a duplicate delivery that was safely ignored.
func (w *WebhookMetrics) IncReplayed() {
	if w == nil || w.replayed == nil {
		return
	}
	w.replayed.Inc()
}

// IncRejected records a delivery rejected before touching state.
func (w *WebhookMetrics) IncRejected() {
	if w == nil || w.rejected == nil {
		return
	}
	w.rejected.Inc()
}
