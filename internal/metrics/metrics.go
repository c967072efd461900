// Package metrics holds the Prometheus collectors for query execution and
// the HTTP service.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vegasq/minisql/internal/query"
)

// Query outcomes
const (
	OutcomeOK             = "ok"
	OutcomeParseError     = "parse_error"
	OutcomeExecutionError = "execution_error"
	OutcomeRejected       = "rejected"
	OutcomeInternal       = "internal_error"
)

var (
	// QueriesTotal counts queries by outcome.
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minisql_queries_total",
			Help: "Total number of queries",
		},
		[]string{"outcome"},
	)
	// QueryDuration is the time spent parsing and executing a query.
	QueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "minisql_query_duration_seconds",
			Help:    "Query latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
	)
	// RowsReturned is the size of successful results.
	RowsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "minisql_rows_returned",
			Help:    "Rows returned per successful query",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
	)
	// RequestTotal counts HTTP requests by method, route and status.
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minisql_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	// RequestDuration is the latency of HTTP requests.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "minisql_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Outcome classifies the error returned by parsing or execution
func Outcome(err error) string {
	var parseErr *query.ParseError
	var execErr *query.ExecutionError
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, query.ErrEmptyQuery), errors.As(err, &parseErr):
		return OutcomeParseError
	case errors.As(err, &execErr):
		return OutcomeExecutionError
	}
	return OutcomeInternal
}

// ObserveQuery records one finished query
func ObserveQuery(err error, elapsed time.Duration, rows int) {
	outcome := Outcome(err)
	QueriesTotal.WithLabelValues(outcome).Inc()
	QueryDuration.Observe(elapsed.Seconds())
	if outcome == OutcomeOK {
		RowsReturned.Observe(float64(rows))
	}
}
