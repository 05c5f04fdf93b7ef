package timeline

import "context"

// Fetcher reads metrics timelines from a remote store.
// instances empty means every instance of the component.
type Fetcher interface {
	FetchTimeline(ctx context.Context, backend Backend, component string, metrics []string, instances []string, start, end int64) (*RawResponse, error)
}

// FetcherFunc adapts a plain function to Fetcher
type FetcherFunc func(ctx context.Context, backend Backend, component string, metrics []string, instances []string, start, end int64) (*RawResponse, error)

func (f FetcherFunc) FetchTimeline(ctx context.Context, backend Backend, component string, metrics []string, instances []string, start, end int64) (*RawResponse, error) {
	return f(ctx, backend, component, metrics, instances, start, end)
}
