package observability

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~20s
		},
		[]string{"method", "route", "status"},
	)

	upstreamLatencySeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_latency_seconds",
			Help:    "Latency of upstream feed calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"feed", "outcome"},
	)

	blockedDomainAlerts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "blocked_domain_alerts_total",
			Help: "Sessions alerted about a content blocker hiding an upstream domain.",
		},
	)

	searchResults = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "search_result_facilities",
			Help:    "Facilities per merged radius search.",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100, 200},
		},
		[]string{"source"},
	)

	searchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radius_searches_total",
			Help: "Radius searches by outcome (applied, stale, duplicate, error).",
		},
		[]string{"outcome"},
	)

	sideCacheResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "side_cache_results_total",
			Help: "Side cache lookups by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	searchCacheResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_cache_results_total",
			Help: "Shared search cache lookups by outcome.",
		},
		[]string{"outcome"},
	)

	redisOpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_operation_duration_seconds",
			Help:    "Latency of redis operations.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"op", "result"},
	)

	kafkaEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_events_total",
			Help: "Kafka events produced or consumed, by topic role and outcome.",
		},
		[]string{"role", "outcome"},
	)

	kafkaConsumerErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_consumer_errors_total",
			Help: "Kafka consumer errors by kind.",
		},
		[]string{"kind"},
	)

	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_sessions",
			Help: "Sessions currently held by the registry.",
		},
	)

	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_build_info",
			Help: "Build information for the binary.",
		},
		[]string{"version"},
	)
)

func collectors() []prometheus.Collector {
	return []prometheus.Collector{
		httpRequestsTotal, httpRequestDurationSeconds, upstreamLatencySeconds,
		blockedDomainAlerts, searchResults, searchesTotal, sideCacheResults,
		searchCacheResults, redisOpDuration, kafkaEvents, kafkaConsumerErrors,
		activeSessions,
	}
}

func init() {
	mustRegister(prometheus.DefaultRegisterer, buildInfo)
	mustRegister(prometheus.DefaultRegisterer, collectors()...)
}

// Init additionally registers the application collectors on reg, used when the
// metrics listener runs on its own registry.
func Init(reg prometheus.Registerer) {
	if reg == nil || reg == prometheus.DefaultRegisterer {
		return
	}
	mustRegister(reg, collectors()...)
}

func mustRegister(reg prometheus.Registerer, cs ...prometheus.Collector) {
	for _, c := range cs {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			panic(err)
		}
	}
}

func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	st := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, st).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, st).Observe(durationSeconds)
}

func ObserveUpstream(feed string, err error, durationSeconds float64) {
	upstreamLatencySeconds.WithLabelValues(feed, outcome(err)).Observe(durationSeconds)
}

func IncBlockedDomainAlert() { blockedDomainAlerts.Inc() }

func ObserveSearch(source string, facilities int) {
	searchResults.WithLabelValues(source).Observe(float64(facilities))
}

func IncSearch(outcome string) { searchesTotal.WithLabelValues(outcome).Inc() }

func IncSideCacheHit(kind string)  { sideCacheResults.WithLabelValues(kind, "hit").Inc() }
func IncSideCacheMiss(kind string) { sideCacheResults.WithLabelValues(kind, "miss").Inc() }

func IncSearchCacheHit()  { searchCacheResults.WithLabelValues("hit").Inc() }
func IncSearchCacheMiss() { searchCacheResults.WithLabelValues("miss").Inc() }

func ObserveRedisOp(op string, err error, durationSeconds float64) {
	redisOpDuration.WithLabelValues(op, outcome(err)).Observe(durationSeconds)
}

func IncKafkaEvent(role, outcome string) { kafkaEvents.WithLabelValues(role, outcome).Inc() }

func IncKafkaConsumerError(kind string) { kafkaConsumerErrors.WithLabelValues(kind).Inc() }

func SetActiveSessions(n int) { activeSessions.Set(float64(n)) }

func ExposeBuildInfo(version string) {
	if version == "" {
		version = "dev"
	}
	buildInfo.WithLabelValues(version).Set(1)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
