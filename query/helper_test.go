package query

import (
	"context"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/wubin1989/trackerql/timeline"
)

var testBackend = timeline.Backend{
	Cluster:  "local",
	Environ:  "default",
	Topology: "a",
}

// stubNode answers Execute with canned series and records the requested range
type stubNode struct {
	series []Series
	err    error
	// delay postpones the answer. A cancelled context interrupts it unless stubborn is set.
	delay    time.Duration
	stubborn bool

	calls    int32
	gotStart int64
	gotEnd   int64
}

func (n *stubNode) node() {}

func (n *stubNode) Kind() Kind { return "STUB" }

func (n *stubNode) String() string { return "STUB()" }

func (n *stubNode) Execute(ctx context.Context, _ timeline.Backend, start, end int64) ([]Series, error) {
	atomic.AddInt32(&n.calls, 1)
	atomic.StoreInt64(&n.gotStart, start)
	atomic.StoreInt64(&n.gotEnd, end)
	if n.delay > 0 {
		timer := time.NewTimer(n.delay)
		defer timer.Stop()
		if n.stubborn {
			<-timer.C
		} else {
			select {
			case <-timer.C:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	if n.err != nil {
		return nil, n.err
	}
	return n.series, nil
}

func (n *stubNode) requested() (int64, int64) {
	return atomic.LoadInt64(&n.gotStart), atomic.LoadInt64(&n.gotEnd)
}

func stub(series ...Series) *stubNode {
	return &stubNode{series: series}
}

func failing(msg string) *stubNode {
	return &stubNode{err: errors.New(msg)}
}

func instance(name string, tl map[int64]float64) Series {
	return Series{
		ComponentName: "a",
		MetricName:    "c",
		Instance:      name,
		Start:         100,
		End:           300,
		Timeline:      tl,
	}
}

// timelines indexes series timelines by instance
func timelines(series []Series) map[string]map[int64]float64 {
	out := make(map[string]map[int64]float64, len(series))
	for _, s := range series {
		out[s.Instance] = s.Timeline
	}
	return out
}

func instances(series []Series) []string {
	var out []string
	for _, s := range series {
		out = append(out, s.Instance)
	}
	sort.Strings(out)
	return out
}

func mustNode(t *testing.T) func(n Node, err error) Node {
	return func(n Node, err error) Node {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
		return n
	}
}
