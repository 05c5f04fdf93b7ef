package query

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trackerql",
		Name:      "queries_total",
		Help:      "Number of evaluated queries by outcome.",
	}, []string{"outcome"})
	queryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "trackerql",
		Name:      "query_duration_seconds",
		Help:      "Wall time of a query evaluation.",
		Buckets:   prometheus.DefBuckets,
	})
)

func observeQuery(begin time.Time, err error) {
	queryDuration.Observe(time.Since(begin).Seconds())
	switch {
	case err == nil:
		queriesTotal.WithLabelValues("ok").Inc()
	case IsFetchError(err):
		queriesTotal.WithLabelValues("fetch_error").Inc()
	case IsEvaluationError(err):
		queriesTotal.WithLabelValues("evaluation_error").Inc()
	default:
		queriesTotal.WithLabelValues("error").Inc()
	}
}
