package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kirillkom/context-store/internal/core/domain"
	"github.com/kirillkom/context-store/internal/core/ports"
)

type SearchMetrics struct {
	service string

	requestsTotal *prometheus.CounterVec
	degradedTotal *prometheus.CounterVec
	results       *prometheus.HistogramVec
	duration      *prometheus.HistogramVec
}

func newSearchMetrics(registry *prometheus.Registry, service string) *SearchMetrics {
	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Total searches by search type.",
		},
		[]string{"service", "search_type"},
	)
	degradedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "degraded_total",
			Help:      "Searches answered empty because a stage failed.",
		},
		[]string{"service", "search_type"},
	)
	results := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "results",
			Help:      "Distribution of matching items per search.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100, 200},
		},
		[]string{"service", "search_type"},
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Search execution duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "search_type"},
	)

	registry.MustRegister(requestsTotal, degradedTotal, results, duration)

	return &SearchMetrics{
		service:       service,
		requestsTotal: requestsTotal,
		degradedTotal: degradedTotal,
		results:       results,
		duration:      duration,
	}
}

func (m *SearchMetrics) Observe(result *domain.SearchResult) {
	searchType := string(result.SearchType)
	if searchType == "" {
		searchType = "unknown"
	}
	m.requestsTotal.WithLabelValues(m.service, searchType).Inc()
	m.results.WithLabelValues(m.service, searchType).Observe(float64(result.Total))
	m.duration.WithLabelValues(m.service, searchType).Observe(result.ExecutionTimeMs / 1000)
	if result.Degraded {
		m.degradedTotal.WithLabelValues(m.service, searchType).Inc()
	}
}

// Instrument wraps next so every answered search is recorded.
func (m *SearchMetrics) Instrument(next ports.SearchService) ports.SearchService {
	return &instrumentedSearch{next: next, metrics: m}
}

type instrumentedSearch struct {
	next    ports.SearchService
	metrics *SearchMetrics
}

func (s *instrumentedSearch) Search(ctx context.Context, query domain.SearchQuery) (*domain.SearchResult, error) {
	start := time.Now()
	result, err := s.next.Search(ctx, query)
	if err != nil {
		searchType := string(query.SearchType)
		if searchType == "" {
			searchType = string(domain.SearchHybrid)
		}
		s.metrics.requestsTotal.WithLabelValues(s.metrics.service, searchType).Inc()
		s.metrics.duration.WithLabelValues(s.metrics.service, searchType).Observe(time.Since(start).Seconds())
		return nil, err
	}
	s.metrics.Observe(result)
	return result, nil
}
