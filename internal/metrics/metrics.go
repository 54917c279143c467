package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "corekit"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	HTTPResponseSizeBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_response_size_bytes",
			Help:      "Response size in bytes",
			Buckets:   []float64{100, 500, 1_000, 5_000, 10_000, 50_000, 100_000},
		},
		[]string{"method", "route", "status"},
	)

	IDsGeneratedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ids_generated_total",
			Help:      "Total number of snowflake ids handed out",
		},
	)

	// IDErrorsTotal is labelled by failure kind: clock_rollback,
	// timestamp_overflow, before_epoch, poisoned, invalid_id or other.
	IDErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "id_errors_total",
			Help:      "Total number of failed id generations or decodes",
		},
		[]string{"reason"},
	)

	TokensIssuedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_issued_total",
			Help:      "Total number of tokens issued",
		},
	)

	TokenVerificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_verifications_total",
			Help:      "Total number of token verifications by result",
		},
		[]string{"result"},
	)
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal, HTTPDurationSeconds, HTTPResponseSizeBytes,
		IDsGeneratedTotal, IDErrorsTotal,
		TokensIssuedTotal, TokenVerificationsTotal,
	)
}
