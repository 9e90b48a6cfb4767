package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Run outcomes.
const (
	OutcomeOK = "ok"
)

// Registry holds all Prometheus metrics of one run.
type Registry struct {
	*prometheus.Registry

	// Provider metrics
	providerRequests *prometheus.CounterVec
	providerDuration *prometheus.HistogramVec

	// Run metrics
	runsTotal   *prometheus.CounterVec
	runDuration prometheus.Histogram
	sections    prometheus.Gauge
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		Registry: reg,

		providerRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deepvalue_provider_requests_total",
				Help: "Total number of data provider requests",
			},
			[]string{"provider", "code", "method"},
		),

		providerDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "deepvalue_provider_request_duration_seconds",
				Help:    "Data provider request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider", "code", "method"},
		),
	}

	r.runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deepvalue_runs_total",
			Help: "Total number of analysis runs by outcome",
		},
		[]string{"outcome"},
	)
	r.runDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "deepvalue_run_duration_seconds",
			Help:    "Analysis run duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
	)
	r.sections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "deepvalue_report_sections",
			Help: "Number of report sections produced by the last run",
		},
	)

	reg.MustRegister(r.providerRequests)
	reg.MustRegister(r.providerDuration)
	reg.MustRegister(r.runsTotal)
	reg.MustRegister(r.runDuration)
	reg.MustRegister(r.sections)

	return r
}

// RecordRun records a finished run. outcome is OutcomeOK or an error code.
func (r *Registry) RecordRun(outcome string, sections int, duration float64) {
	r.runsTotal.WithLabelValues(outcome).Inc()
	r.runDuration.Observe(duration)
	r.sections.Set(float64(sections))
}

// WriteTextfile writes every metric in the text exposition format, for the
// node exporter textfile collector.
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.Registry)
}
