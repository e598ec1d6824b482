package lookup

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records per-endpoint request counts and latency.
type Metrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
	Results  *prometheus.HistogramVec
}

// NewMetrics registers the lookup collectors with reg. Collectors already
// registered under the same names are reused, so several components can
// share one registry. A nil reg uses prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "formflow",
			Subsystem: "lookup",
			Name:      "requests_total",
			Help:      "Total number of lookup requests by endpoint and status code",
		},
		[]string{"endpoint", "code"},
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "formflow",
			Subsystem: "lookup",
			Name:      "request_duration_seconds",
			Help:      "Duration of lookup requests in seconds, artificial delay included",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
	results := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "formflow",
			Subsystem: "lookup",
			Name:      "results",
			Help:      "Number of items returned per lookup request",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50},
		},
		[]string{"endpoint"},
	)

	var err error
	if requests, err = register(reg, requests); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	if results, err = register(reg, results); err != nil {
		return nil, err
	}
	return &Metrics{Requests: requests, Duration: duration, Results: results}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, collector C) (C, error) {
	if err := reg.Register(collector); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, err
	}
	return collector, nil
}

func (m *Metrics) observe(endpoint string, code, results int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(endpoint, strconv.Itoa(code)).Inc()
	m.Duration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
	if code == 200 {
		m.Results.WithLabelValues(endpoint).Observe(float64(results))
	}
}
