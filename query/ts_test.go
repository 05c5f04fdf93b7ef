package query

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/wubin1989/trackerql/query/testinghelper"
	"github.com/wubin1989/trackerql/timeline"
)

func everyMinute(from, to int64, v float64) map[int64]float64 {
	tl := make(map[int64]float64)
	for t := from; t <= to; t += 60 {
		tl[t] = v
	}
	return tl
}

func TestNewTS(t *testing.T) {
	fetcher := testinghelper.StaticFetcher(nil, nil)
	tests := []struct {
		name      string
		fetcher   timeline.Fetcher
		component string
		instance  string
		metric    string
		wantErr   bool
	}{
		{name: "literal instance", fetcher: fetcher, component: "a", instance: "b", metric: "c"},
		{name: "wildcard", fetcher: fetcher, component: "a", instance: Wildcard, metric: "c"},
		{name: "no component", fetcher: fetcher, component: "", instance: "b", metric: "c", wantErr: true},
		{name: "no instance", fetcher: fetcher, component: "a", instance: "", metric: "c", wantErr: true},
		{name: "no metric", fetcher: fetcher, component: "a", instance: "b", metric: "", wantErr: true},
		{name: "no fetcher", fetcher: nil, component: "a", instance: "b", metric: "c", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTS(tt.fetcher, tt.component, tt.instance, tt.metric)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewTS() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				require.True(t, IsEvaluationError(err))
				return
			}
			require.Equal(t, "TS(a, "+tt.instance+", c)", got.String())
		})
	}
}

func TestTS_Execute_Request(t *testing.T) {
	fetcher := testinghelper.StaticFetcher(testinghelper.Response("a", "c", map[string]map[int64]float64{
		"b": everyMinute(40, 340, 1),
	}), nil)
	n, err := NewTS(fetcher, "a", "b", "c")
	require.NoError(t, err)

	got, err := n.Execute(context.Background(), testBackend, 100, 300)
	require.NoError(t, err)
	require.Equal(t, []Series{
		{
			ComponentName: "a",
			MetricName:    "c",
			Instance:      "b",
			Start:         100,
			End:           300,
			Timeline:      map[int64]float64{120: 1, 180: 1, 240: 1, 300: 1},
		},
	}, got)

	calls := fetcher.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, testinghelper.Call{
		Backend:   testBackend,
		Component: "a",
		Metrics:   []string{"c"},
		Instances: []string{"b"},
		Start:     40,
		End:       360,
	}, calls[0])
}

func TestTS_Execute(t *testing.T) {
	sparse := everyMinute(40, 340, 1)
	delete(sparse, 160)
	type fields struct {
		resp     *timeline.RawResponse
		err      error
		instance string
	}
	tests := []struct {
		name          string
		fields        fields
		want          map[string]map[int64]float64
		wantErr       bool
	}{
		{
			name: "wildcard returns every instance",
			fields: fields{
				resp: testinghelper.Response("a", "c", map[string]map[int64]float64{
					"d": everyMinute(40, 340, 2),
					"b": sparse,
				}),
				instance: Wildcard,
			},
			want: map[string]map[int64]float64{
				"b": {120: 1, 240: 1, 300: 1},
				"d": {120: 2, 180: 2, 240: 2, 300: 2},
			},
		},
		{
			name: "literal instance ignores other instances of the payload",
			fields: fields{
				resp: testinghelper.Response("a", "c", map[string]map[int64]float64{
					"b": everyMinute(40, 340, 1),
					"d": everyMinute(40, 340, 2),
				}),
				instance: "b",
			},
			want: map[string]map[int64]float64{
				"b": {120: 1, 180: 1, 240: 1, 300: 1},
			},
		},
		{
			name: "metric missing from payload",
			fields: fields{
				resp: testinghelper.Response("a", "other", map[string]map[int64]float64{
					"b": everyMinute(40, 340, 1),
				}),
				instance: "b",
			},
			want: map[string]map[int64]float64{},
		},
		{
			name: "backend reports failure",
			fields: fields{
				resp:     testinghelper.Failure("some_exception"),
				instance: "b",
			},
			wantErr: true,
		},
		{
			name: "transport failure",
			fields: fields{
				err:      errors.New("connection refused"),
				instance: "b",
			},
			wantErr: true,
		},
		{
			name: "nil response",
			fields: fields{
				instance: "b",
			},
			wantErr: true,
		},
		{
			name: "unparsable value",
			fields: fields{
				resp: &timeline.RawResponse{
					Timeline: timeline.Timeline{
						"c": {"b": {"120": json.Number("abc")}},
					},
				},
				instance: "b",
			},
			wantErr: true,
		},
		{
			name: "unparsable timestamp",
			fields: fields{
				resp: &timeline.RawResponse{
					Timeline: timeline.Timeline{
						"c": {"b": {"noon": json.Number("1")}},
					},
				},
				instance: "b",
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := NewTS(testinghelper.StaticFetcher(tt.fields.resp, tt.fields.err), "a", tt.fields.instance, "c")
			require.NoError(t, err)
			got, err := n.Execute(context.Background(), testBackend, 100, 300)
			if (err != nil) != tt.wantErr {
				t.Errorf("Execute() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				require.True(t, IsFetchError(err))
				require.Nil(t, got)
				return
			}
			require.Equal(t, tt.want, timelines(got))
			for _, s := range got {
				require.Equal(t, "a", s.ComponentName)
				require.Equal(t, "c", s.MetricName)
			}
		})
	}
}

func TestTS_Execute_SortedByInstance(t *testing.T) {
	fetcher := testinghelper.StaticFetcher(testinghelper.Response("a", "c", map[string]map[int64]float64{
		"z": everyMinute(40, 340, 1),
		"m": everyMinute(40, 340, 1),
		"b": everyMinute(40, 340, 1),
	}), nil)
	n, err := NewTS(fetcher, "a", Wildcard, "c")
	require.NoError(t, err)
	got, err := n.Execute(context.Background(), testBackend, 100, 300)
	require.NoError(t, err)
	require.Equal(t, []string{"b", "m", "z"}, []string{got[0].Instance, got[1].Instance, got[2].Instance})
	require.Equal(t, []string{}, fetcher.Calls()[0].Instances)
}

func TestTS_Execute_FailureMessage(t *testing.T) {
	n, err := NewTS(testinghelper.StaticFetcher(testinghelper.Failure("some_exception"), nil), "a", "b", "c")
	require.NoError(t, err)
	_, err = n.Execute(context.Background(), testBackend, 100, 300)
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	require.Equal(t, "some_exception", fetchErr.Message)
	require.Equal(t, "a", fetchErr.Component)
	require.Equal(t, "c", fetchErr.Metric)
	require.Equal(t, "b", fetchErr.Instance)
	require.Contains(t, err.Error(), "some_exception")
}
