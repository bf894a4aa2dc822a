package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry groups the counters for the public scan/view pipeline and the
// billing webhook. Telemetry failures are counted here instead of surfacing
// to callers.
type Registry struct {
	ScansRecorded prometheus.Counter
	ScanFailures  prometheus.Counter
	MenuViews     prometheus.Counter
	ViewFailures  prometheus.Counter
	WebhookEvents *prometheus.CounterVec
	GateDenials   *prometheus.CounterVec
	promRegistry  *prometheus.Registry
}

func New() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Registry{
		ScansRecorded: factory.NewCounter(prometheus.CounterOpts{
			Name: "menuhub_qr_scans_recorded_total",
			Help: "QR scan events recorded successfully.",
		}),
		ScanFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "menuhub_qr_scan_failures_total",
			Help: "QR scan recordings dropped due to errors.",
		}),
		MenuViews: factory.NewCounter(prometheus.CounterOpts{
			Name: "menuhub_menu_views_recorded_total",
			Help: "Public menu views rolled into daily analytics.",
		}),
		ViewFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "menuhub_menu_view_failures_total",
			Help: "Menu view recordings dropped due to errors.",
		}),
		WebhookEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "menuhub_billing_webhook_events_total",
			Help: "Billing webhook deliveries by outcome.",
		}, []string{"outcome"}),
		GateDenials: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "menuhub_subscription_gate_denials_total",
			Help: "Requests denied by the subscription gate, by reason.",
		}, []string{"reason"}),
		promRegistry: reg,
	}
}

// Prometheus exposes the underlying registry for the /metrics handler.
func (r *Registry) Prometheus() *prometheus.Registry { return r.promRegistry }
