package query

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/unionj-cloud/go-doudou/v2/toolkit/stringutils"
	"github.com/wubin1989/trackerql/timeline"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Wildcard selects every instance of a component
const Wildcard = "*"

var _ Node = (*TS)(nil)

// TS fetches one metric of one component, for one instance or for all of them.
type TS struct {
	Fetcher   timeline.Fetcher
	Component string
	Instance  string
	Metric    string
}

// NewTS builds a leaf. instance is an instance name or Wildcard.
func NewTS(fetcher timeline.Fetcher, component, instance, metric string) (*TS, error) {
	if fetcher == nil {
		return nil, evaluationErrorf(KindTS, "no timeline fetcher")
	}
	if stringutils.IsEmpty(component) || stringutils.IsEmpty(instance) || stringutils.IsEmpty(metric) {
		return nil, evaluationErrorf(KindTS, "component, instance and metric are all required, got (%q, %q, %q)", component, instance, metric)
	}
	return &TS{
		Fetcher:   fetcher,
		Component: component,
		Instance:  instance,
		Metric:    metric,
	}, nil
}

func (n *TS) node() {}

func (n *TS) Kind() Kind { return KindTS }

func (n *TS) String() string {
	return fmt.Sprintf("%s(%s, %s, %s)", KindTS, n.Component, n.Instance, n.Metric)
}

func (n *TS) wildcard() bool {
	return n.Instance == Wildcard
}

func (n *TS) fetchError(message string, err error) *FetchError {
	return &FetchError{
		Component: n.Component,
		Metric:    n.Metric,
		Instance:  n.Instance,
		Message:   message,
		Err:       err,
	}
}

// Execute fetches one bucket beyond each side of the range so the edge buckets see every
// sample of their window, then aligns each instance over (start, end].
func (n *TS) Execute(ctx context.Context, backend timeline.Backend, start, end int64) (result []Series, err error) {
	ctx, span := startSpan(ctx, KindTS, start, end)
	defer func() {
		endSpan(span, result, err)
	}()
	instances := []string{}
	if !n.wildcard() {
		instances = []string{n.Instance}
	}
	resp, err := n.Fetcher.FetchTimeline(ctx, backend, n.Component, []string{n.Metric}, instances, start-BucketWidth, end+BucketWidth)
	if err != nil {
		return nil, n.fetchError("", err)
	}
	if !resp.Usable() {
		message := "response carries no timeline"
		if resp != nil && stringutils.IsNotEmpty(resp.Message) {
			message = resp.Message
		}
		return nil, n.fetchError(message, nil)
	}
	byInstance := resp.Timeline[n.Metric]
	names := maps.Keys(byInstance)
	slices.Sort(names)
	for _, instance := range names {
		if !n.wildcard() && instance != n.Instance {
			continue
		}
		samples, err := timeline.ParseSamples(byInstance[instance])
		if err != nil {
			return nil, n.fetchError("unusable payload", errors.Wrap(err, instance))
		}
		aligned, err := Align(samples, start, end)
		if err != nil {
			return nil, err
		}
		result = append(result, Series{
			ComponentName: n.Component,
			MetricName:    n.Metric,
			Instance:      instance,
			Start:         start,
			End:           end,
			Timeline:      aligned,
		})
	}
	return result, nil
}
