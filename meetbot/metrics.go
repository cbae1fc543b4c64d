package meetbot

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records request counts and latencies per client operation
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg when reg is not nil
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meetbot",
			Name:      "requests_total",
			Help:      "Total number of meeting bot API requests by operation and HTTP status.",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "meetbot",
			Name:      "request_duration_seconds",
			Help:      "Meeting bot API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		}, []string{"operation"}),
	}

	if reg != nil {
		for _, collector := range []prometheus.Collector{m.requests, m.duration} {
			if err := reg.Register(collector); err != nil {
				return nil, fmt.Errorf("failed to register meetbot metrics: %w", err)
			}
		}
	}

	return m, nil
}

// observe is a no-op on a nil receiver so clients without metrics need no checks
func (m *Metrics) observe(operation, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(operation, status).Inc()
	m.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}
