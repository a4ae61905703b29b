package metrics

import (
	"time"

	"gig-marketplace/internal/core/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

const namespace = "gigmarket"

// PaymentCollector implements ports.PaymentMetrics with Prometheus collectors.
type PaymentCollector struct {
	started   prometheus.Counter
	rejected  *prometheus.CounterVec
	cancelled *prometheus.CounterVec
	settled   *prometheus.HistogramVec
	failed    *prometheus.CounterVec
	completed prometheus.Counter
	volume    prometheus.Counter
}

// NewPaymentCollector creates the collectors and registers them with reg.
func NewPaymentCollector(reg prometheus.Registerer) (*PaymentCollector, error) {
	c := &PaymentCollector{
		started: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payment",
			Name:      "started_total",
			Help:      "Payments that entered provider selection.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payment",
			Name:      "rejected_total",
			Help:      "Payments rejected before or at completion, by reason.",
		}, []string{"reason"}),
		cancelled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payment",
			Name:      "cancelled_total",
			Help:      "Payments cancelled by the user, by stage.",
		}, []string{"stage"}),
		settled: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "payment",
			Name:      "settlement_seconds",
			Help:      "Time from entering processing to confirmed settlement.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"provider"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payment",
			Name:      "settlement_failures_total",
			Help:      "Failed settlement attempts, by provider.",
		}, []string{"provider"}),
		completed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payment",
			Name:      "completed_total",
			Help:      "Payments debited and recorded in a conversation.",
		}),
		volume: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payment",
			Name:      "completed_amount_total",
			Help:      "Sum of completed payment amounts.",
		}),
	}

	for _, col := range []prometheus.Collector{
		c.started, c.rejected, c.cancelled, c.settled, c.failed, c.completed, c.volume,
	} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *PaymentCollector) Started() {
	c.started.Inc()
}

func (c *PaymentCollector) Rejected(reason string) {
	c.rejected.WithLabelValues(reason).Inc()
}

func (c *PaymentCollector) Cancelled(stage domain.FlowStage) {
	c.cancelled.WithLabelValues(string(stage)).Inc()
}

func (c *PaymentCollector) Settled(provider string, latency time.Duration) {
	c.settled.WithLabelValues(provider).Observe(latency.Seconds())
}

func (c *PaymentCollector) Failed(provider string) {
	c.failed.WithLabelValues(provider).Inc()
}

func (c *PaymentCollector) Completed(amount decimal.Decimal) {
	c.completed.Inc()
	c.volume.Add(amount.InexactFloat64())
}
