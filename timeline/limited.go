package timeline

import (
	"context"
	"time"

	"github.com/slok/goresilience"
	"github.com/slok/goresilience/bulkhead"
)

var _ Fetcher = (*Limited)(nil)

// Limited caps the number of concurrent calls to the backend. Callers over the cap
// wait up to MaxWait for a slot and fail afterwards.
type Limited struct {
	Fetcher Fetcher
	runner  goresilience.Runner
}

func NewLimited(fetcher Fetcher, workers int, maxWait time.Duration) *Limited {
	return &Limited{
		Fetcher: fetcher,
		runner: bulkhead.New(bulkhead.Config{
			Workers:     workers,
			MaxWaitTime: maxWait,
		}),
	}
}

func (receiver *Limited) FetchTimeline(ctx context.Context, backend Backend, component string, metrics []string, instances []string, start, end int64) (*RawResponse, error) {
	var resp *RawResponse
	err := receiver.runner.Run(ctx, func(ctx context.Context) error {
		var err error
		resp, err = receiver.Fetcher.FetchTimeline(ctx, backend, component, metrics, instances, start, end)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
