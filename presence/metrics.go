package presence

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	probes   *prometheus.CounterVec
	duration prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		probes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bvscore_probe_total",
			Help: "The number of probed domains partitioned by outcome.",
		}, []string{"outcome"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "bvscore_probe_duration_seconds",
			Help:    "The time spent probing a single domain.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}),
	}
}

func (m *metrics) observe(rec Record, took time.Duration) {
	outcome := "reachable"
	switch {
	case rec.Reachable:
	case rec.HTTPStatus != 0:
		outcome = "http_error"
	case rec.Error != "":
		outcome = strings.ReplaceAll(rec.Error, " ", "_")
	default:
		outcome = "unreachable"
	}
	m.probes.WithLabelValues(outcome).Inc()
	m.duration.Observe(took.Seconds())
}
