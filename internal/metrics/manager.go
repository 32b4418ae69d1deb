package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation results recorded in CounterOperations
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

type Manager struct {
	// counters
	CounterOperations *prometheus.CounterVec
	CounterRecomputes prometheus.Counter

	// gauges
	GaugeConnected prometheus.Gauge

	// histograms
	HistFetchDuration prometheus.Histogram

	gatherer prometheus.Gatherer
}

func NewTestManager() *Manager {
	return NewManager("fitdash", "test", prometheus.NewRegistry())
}

// NewManager registers the dashboard metrics on reg. reg is also used as the
// gatherer for WriteTextfile.
func NewManager(namespace, subsystem string, reg *prometheus.Registry) *Manager {
	factory := promauto.With(reg)

	counterOperations := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "operations",
		Help:      "The total number of session operations by name and result",
	}, []string{"operation", "result"})
	counterRecomputes := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "recomputes",
		Help:      "The total number of derived view recomputes",
	})

	gaugeConnected := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "connected",
		Help:      "1 when the Google Fit session is connected",
	})

	histFetchDuration := factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets: []float64{
				0.01, 0.05, 0.1, 0.25, 0.5,
				1, 2.5, 5, 10, 30,
			},
			Name: "fetch_duration_seconds",
			Help: "Duration of a single aggregate fetch in seconds",
		},
	)

	return &Manager{
		CounterOperations: counterOperations,
		CounterRecomputes: counterRecomputes,
		GaugeConnected:    gaugeConnected,
		HistFetchDuration: histFetchDuration,
		gatherer:          reg,
	}
}

// ObserveOperation counts one finished operation
func (m *Manager) ObserveOperation(operation string, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	m.CounterOperations.WithLabelValues(operation, result).Inc()
}

// SetConnected mirrors the session's connected flag
func (m *Manager) SetConnected(connected bool) {
	if connected {
		m.GaugeConnected.Set(1)
		return
	}
	m.GaugeConnected.Set(0)
}

// WriteTextfile dumps all metrics in the node-exporter text file format
func (m *Manager) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.gatherer); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
