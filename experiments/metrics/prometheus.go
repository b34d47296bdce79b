package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// prometheusCollector forwards to an inner collector and mirrors every event
// into Prometheus instruments.
type prometheusCollector struct {
	Collector
	simulations    prometheus.Counter
	expansions     prometheus.Counter
	searches       prometheus.Counter
	depth          prometheus.Histogram
	duration       prometheus.Histogram
	lastExpansions prometheus.Gauge
}

// NewPrometheusCollector registers the planner instruments on reg and wraps inner.
func NewPrometheusCollector(reg prometheus.Registerer, inner Collector) Collector {
	factory := promauto.With(reg)
	return &prometheusCollector{
		Collector: inner,
		simulations: factory.NewCounter(prometheus.CounterOpts{
			Name: "pomcp_simulations_total",
			Help: "Total number of simulations run from a root history",
		}),
		expansions: factory.NewCounter(prometheus.CounterOpts{
			Name: "pomcp_expansions_total",
			Help: "Total number of histories expanded in the search tree",
		}),
		searches: factory.NewCounter(prometheus.CounterOpts{
			Name: "pomcp_searches_total",
			Help: "Total number of completed searches",
		}),
		depth: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "pomcp_simulation_depth",
			Help:    "Depth reached by each simulation",
			Buckets: prometheus.LinearBuckets(0, 2, 16),
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "pomcp_search_duration_seconds",
			Help:    "Duration of searches",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		lastExpansions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "pomcp_last_search_expansions",
			Help: "Number of histories expanded by the last search",
		}),
	}
}

func (m *prometheusCollector) AddEpisode() {
	m.Collector.AddEpisode()
	m.simulations.Inc()
}

func (m *prometheusCollector) AddExpansion() {
	m.Collector.AddExpansion()
	m.expansions.Inc()
}

func (m *prometheusCollector) ObserveDepth(depth int) {
	m.Collector.ObserveDepth(depth)
	m.depth.Observe(float64(depth))
}

func (m *prometheusCollector) Complete() SearchMetric {
	metric := m.Collector.Complete()
	m.searches.Inc()
	m.duration.Observe(metric.Duration.Seconds())
	m.lastExpansions.Set(float64(metric.Expansions))
	return metric
}
