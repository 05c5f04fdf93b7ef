package timeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

var _ Fetcher = (*Dedup)(nil)

// Dedup collapses identical fetches that are in flight at the same time,
// e.g. the same TS leaf appearing twice in one operator tree.
// Nothing is kept once the shared call returns.
//
// The shared call does not belong to any caller: it runs on a context that keeps the
// first caller's values but none of its cancellation, bounded by Timeout when set.
// Each caller stops waiting when its own ctx ends.
type Dedup struct {
	Fetcher Fetcher
	Timeout time.Duration
	group   singleflight.Group
}

func NewDedup(fetcher Fetcher, timeout time.Duration) *Dedup {
	return &Dedup{
		Fetcher: fetcher,
		Timeout: timeout,
	}
}

// dedupKey covers every input the fetch depends on
func dedupKey(backend Backend, component string, metrics []string, instances []string, start, end int64) string {
	var tmaster TMaster
	if backend.TMaster != nil {
		tmaster = *backend.TMaster
	}
	return fmt.Sprintf("%q|%q|%q|%q|%+v|%q|%q|%q|%d|%d",
		backend.Cluster, backend.Environ, backend.Role, backend.Topology, tmaster,
		component, strings.Join(metrics, "\x00"), strings.Join(instances, "\x00"), start, end)
}

func (receiver *Dedup) FetchTimeline(ctx context.Context, backend Backend, component string, metrics []string, instances []string, start, end int64) (*RawResponse, error) {
	key := dedupKey(backend, component, metrics, instances, start, end)
	ch := receiver.group.DoChan(key, func() (interface{}, error) {
		shared := context.WithoutCancel(ctx)
		if receiver.Timeout > 0 {
			var cancel context.CancelFunc
			shared, cancel = context.WithTimeout(shared, receiver.Timeout)
			defer cancel()
		}
		return receiver.Fetcher.FetchTimeline(shared, backend, component, metrics, instances, start, end)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*RawResponse), nil
	}
}
