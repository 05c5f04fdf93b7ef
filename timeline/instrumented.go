package timeline

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK       = "ok"
	outcomeError    = "error"
	outcomeUnusable = "unusable"
)

var (
	fetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trackerql",
		Name:      "timeline_fetches_total",
		Help:      "Number of metrics timeline fetches by outcome.",
	}, []string{"outcome"})
	fetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "trackerql",
		Name:      "timeline_fetch_duration_seconds",
		Help:      "Time spent waiting for the metrics timeline backend.",
		Buckets:   prometheus.DefBuckets,
	})
)

var _ Fetcher = (*Instrumented)(nil)

// Instrumented records fetch outcomes and latency
type Instrumented struct {
	Fetcher Fetcher
}

func (receiver Instrumented) FetchTimeline(ctx context.Context, backend Backend, component string, metrics []string, instances []string, start, end int64) (*RawResponse, error) {
	begin := time.Now()
	resp, err := receiver.Fetcher.FetchTimeline(ctx, backend, component, metrics, instances, start, end)
	fetchDuration.Observe(time.Since(begin).Seconds())
	switch {
	case err != nil:
		fetchTotal.WithLabelValues(outcomeError).Inc()
	case !resp.Usable():
		fetchTotal.WithLabelValues(outcomeUnusable).Inc()
	default:
		fetchTotal.WithLabelValues(outcomeOK).Inc()
	}
	return resp, err
}
