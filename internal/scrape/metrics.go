package scrape

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Metrics bundles Prometheus collectors for the scrape job.
type Metrics struct {
	Registry            *prometheus.Registry
	PagesTotal          prometheus.Counter
	OffersTotal         *prometheus.CounterVec
	OffersAppendedTotal *prometheus.CounterVec
	ErrorsTotal         *prometheus.CounterVec
	FetchDuration       prometheus.Histogram
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	pages := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scrape_listing_pages_total",
			Help: "Total listing pages crawled.",
		},
	)
	offers := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scrape_offers_total",
			Help: "Total offer observations ingested, by store.",
		},
		[]string{"store"},
	)
	appended := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scrape_offers_appended_total",
			Help: "Total observations that produced a new history row, by store.",
		},
		[]string{"store"},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scrape_errors_total",
			Help: "Total fetch or ingest failures, by store.",
		},
		[]string{"store"},
	)
	fetchDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scrape_fetch_duration_seconds",
			Help:    "Product page fetch latency.",
			Buckets: prometheus.DefBuckets,
		},
	)

	registry.MustRegister(pages, offers, appended, errorsTotal, fetchDuration)

	return &Metrics{
		Registry:            registry,
		PagesTotal:          pages,
		OffersTotal:         offers,
		OffersAppendedTotal: appended,
		ErrorsTotal:         errorsTotal,
		FetchDuration:       fetchDuration,
	}
}

// AddPages adds the number of listing pages crawled in one store pass.
func (m *Metrics) AddPages(n int) {
	if m == nil {
		return
	}
	m.PagesTotal.Add(float64(n))
}

// IncOffers increments the ingested observations counter for a store.
func (m *Metrics) IncOffers(store string) {
	if m == nil {
		return
	}
	m.OffersTotal.WithLabelValues(store).Inc()
}

// IncAppended increments the appended-rows counter for a store.
func (m *Metrics) IncAppended(store string) {
	if m == nil {
		return
	}
	m.OffersAppendedTotal.WithLabelValues(store).Inc()
}

// IncErrors increments the error counter for a store.
func (m *Metrics) IncErrors(store string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(store).Inc()
}

// ObserveFetch records one product page fetch duration.
func (m *Metrics) ObserveFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
}

// LogSummary gathers the registry and writes one log line per metric, so the
// counters of a finished run survive in the job logs. The scrape job is a
// short-lived process with no HTTP surface to scrape, which makes the log the
// delivery channel.
func (m *Metrics) LogSummary(logger *zap.Logger) {
	if m == nil {
		return
	}

	families, err := m.Registry.Gather()
	if err != nil {
		logger.Warn("Failed to gather scrape metrics", zap.Error(err))
		return
	}

	for _, family := range families {
		for _, metric := range family.GetMetric() {
			fields := []zap.Field{zap.String("metric", family.GetName())}
			for _, label := range metric.GetLabel() {
				fields = append(fields, zap.String(label.GetName(), label.GetValue()))
			}
			switch {
			case metric.GetCounter() != nil:
				fields = append(fields, zap.Float64("value", metric.GetCounter().GetValue()))
			case metric.GetHistogram() != nil:
				h := metric.GetHistogram()
				fields = append(fields,
					zap.Uint64("count", h.GetSampleCount()),
					zap.Float64("sum_seconds", h.GetSampleSum()),
				)
			}
			logger.Info("Scrape metric", fields...)
		}
	}
}
