// Package testinghelper only for testing purpose
package testinghelper

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/wubin1989/trackerql/timeline"
)

// Call records the arguments of one FetchTimeline invocation
type Call struct {
	Backend   timeline.Backend
	Component string
	Metrics   []string
	Instances []string
	Start     int64
	End       int64
}

// Fetcher is a timeline.Fetcher answering with Respond and recording every call
type Fetcher struct {
	Respond func(ctx context.Context, call Call) (*timeline.RawResponse, error)

	mu    sync.Mutex
	calls []Call
}

func (f *Fetcher) FetchTimeline(ctx context.Context, backend timeline.Backend, component string, metrics []string, instances []string, start, end int64) (*timeline.RawResponse, error) {
	call := Call{
		Backend:   backend,
		Component: component,
		Metrics:   metrics,
		Instances: instances,
		Start:     start,
		End:       end,
	}
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
	return f.Respond(ctx, call)
}

// Calls returns the calls seen so far
func (f *Fetcher) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// StaticFetcher always answers with resp and err
func StaticFetcher(resp *timeline.RawResponse, err error) *Fetcher {
	return &Fetcher{
		Respond: func(context.Context, Call) (*timeline.RawResponse, error) {
			return resp, err
		},
	}
}

// BlockingFetcher waits for ctx to end and returns its error
func BlockingFetcher() *Fetcher {
	return &Fetcher{
		Respond: func(ctx context.Context, _ Call) (*timeline.RawResponse, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
}

// Samples encodes values keyed by unix seconds the way the tracker does, as strings
func Samples(values map[int64]float64) map[string]json.Number {
	raw := make(map[string]json.Number, len(values))
	for t, v := range values {
		raw[timeline.Stamp(t)] = timeline.Number(v)
	}
	return raw
}

// Response builds a successful payload for one metric of component
func Response(component, metric string, instances map[string]map[int64]float64) *timeline.RawResponse {
	byInstance := make(map[string]map[string]json.Number, len(instances))
	for instance, values := range instances {
		byInstance[instance] = Samples(values)
	}
	return &timeline.RawResponse{
		Component: component,
		Timeline: timeline.Timeline{
			metric: byInstance,
		},
	}
}

// Failure builds the payload of a backend that reports an error
func Failure(message string) *timeline.RawResponse {
	return &timeline.RawResponse{
		Message: message,
	}
}
