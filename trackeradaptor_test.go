package trackerql

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/prometheus/prometheus/model/labels"
	"github.com/prometheus/prometheus/promql"
	"github.com/stretchr/testify/require"
	"github.com/unionj-cloud/go-doudou/v2/toolkit/copier"
	"github.com/wubin1989/trackerql/command"
	"github.com/wubin1989/trackerql/config"
	"github.com/wubin1989/trackerql/query"
	"github.com/wubin1989/trackerql/query/testinghelper"
	"github.com/wubin1989/trackerql/timeline"
	"github.com/wubin1989/trackerql/timeline/tracker"
)

var testBackend = timeline.Backend{
	Cluster:  "local",
	Environ:  "default",
	Topology: "wordcount",
}

func MustParseDuration(s string, t *testing.T) time.Duration {
	result, err := time.ParseDuration(s)
	if err != nil {
		t.Fatal(err)
	}
	return result
}

func everyMinute(from, to int64, v float64) map[int64]float64 {
	tl := make(map[int64]float64)
	for t := from; t <= to; t += 60 {
		tl[t] = v
	}
	return tl
}

func TestTrackerAdaptor_Query(t *testing.T) {
	fetcher := testinghelper.StaticFetcher(testinghelper.Response("bolt", "__emit-count/default", map[string]map[int64]float64{
		"container_1_bolt_1": everyMinute(40, 340, 1),
	}), nil)

	expectedJson := `{"Result":[{"ComponentName":"bolt","MetricName":"__emit-count/default","Instance":"container_1_bolt_1","Start":100,"End":300,"Timeline":{"120":11,"180":11,"240":11,"300":11}}],"ResultType":"series"}`
	var expected map[string]interface{}
	if err := json.Unmarshal([]byte(expectedJson), &expected); err != nil {
		t.Fatal(err)
	}

	type fields struct {
		_       [0]int
		Cfg     config.Config
		Fetcher timeline.Fetcher
	}
	type args struct {
		ctx context.Context
		cmd command.Command
	}
	tests := []struct {
		name    string
		fields  fields
		args    args
		want    interface{}
		wantErr bool
	}{
		{
			name: "sum of a leaf and a constant",
			fields: fields{
				Cfg: config.Config{
					Timeout: MustParseDuration("1m", t),
					Verbose: true,
				},
				Fetcher: fetcher,
			},
			args: args{
				ctx: context.Background(),
				cmd: command.Command{
					Cmd:      `{"op": "SUM", "args": [{"op": "TS", "args": ["bolt", "*", "__emit-count/default"]}, 10]}`,
					Dialect:  query.TREE_DIALECT,
					Backend:  testBackend,
					Start:    100,
					End:      300,
					DataType: command.TABLE_DATA,
				},
			},
			want:    expected,
			wantErr: false,
		},
		{
			name: "unknown dialect",
			fields: fields{
				Cfg:     config.NewConfig(),
				Fetcher: fetcher,
			},
			args: args{
				ctx: context.Background(),
				cmd: command.Command{
					Cmd:     `rate(emit_count[1m])`,
					Dialect: "promql",
				},
			},
			want:    map[string]interface{}{"Result": nil, "ResultType": ""},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			receiver := &TrackerAdaptor{
				Cfg:     tt.fields.Cfg,
				Fetcher: tt.fields.Fetcher,
			}
			got, err := receiver.Query(tt.args.ctx, tt.args.cmd)
			if (err != nil) != tt.wantErr {
				t.Errorf("Query() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			var gotCopy map[string]interface{}
			copier.DeepCopy(got, &gotCopy)
			if !reflect.DeepEqual(gotCopy, tt.want) {
				t.Errorf("Query() got = %v, want %v", gotCopy, tt.want)
			}
		})
	}
}

func TestTrackerAdaptor_Query_DialectNotSupported(t *testing.T) {
	adaptor := NewTrackerAdaptor(config.NewConfig(), testinghelper.StaticFetcher(nil, nil))
	_, err := adaptor.Query(context.Background(), command.Command{Cmd: "up", Dialect: "promql"})
	require.ErrorIs(t, err, command.ErrDialectNotSupported)
}

func TestNewTrackerAdaptor(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
	}{
		{name: "with bulkhead", cfg: config.NewConfig()},
		{name: "without bulkhead", cfg: config.Config{Timeout: time.Minute}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := testinghelper.StaticFetcher(testinghelper.Response("bolt", "c", map[string]map[int64]float64{
				"container_1_bolt_1": everyMinute(40, 340, 2),
			}), nil)
			adaptor := NewTrackerAdaptor(tt.cfg, fetcher)
			got, err := adaptor.Query(context.Background(), command.Command{
				Cmd:      `{"op": "DIVIDE", "args": [{"op": "TS", "args": ["bolt", "*", "c"]}, {"op": "TS", "args": ["bolt", "*", "c"]}]}`,
				Dialect:  query.TREE_DIALECT,
				Backend:  testBackend,
				Start:    100,
				End:      300,
				DataType: command.TABLE_DATA,
			})
			require.NoError(t, err)
			series := got.Result.([]query.Series)
			require.Len(t, series, 1)
			require.Equal(t, map[int64]float64{120: 1, 180: 1, 240: 1, 300: 1}, series[0].Timeline)
			calls := fetcher.Calls()
			require.NotEmpty(t, calls)
			require.LessOrEqual(t, len(calls), 2)
		})
	}
}

func TestNewHTTPTrackerAdaptor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, tracker.MetricsTimelinePath, r.URL.Path)
		require.Equal(t, "b", r.URL.Query().Get("instance"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "success",
			"result": {
				"component": "a",
				"timeline": {
					"c": {"b": {"40": "1.0", "100": "2.0", "160": "3.0", "220": "4.0", "280": "5.0", "340": "6.0"}}
				}
			}
		}`))
	}))
	defer server.Close()

	cfg := config.NewConfig()
	cfg.TrackerURL = server.URL
	adaptor := NewHTTPTrackerAdaptor(cfg)
	got, err := adaptor.Query(context.Background(), command.Command{
		Cmd:      `{"op": "TS", "args": ["a", "b", "c"]}`,
		Dialect:  query.TREE_DIALECT,
		Backend:  testBackend,
		Start:    100,
		End:      300,
		DataType: command.GRAPH_DATA,
	})
	require.NoError(t, err)
	require.Equal(t, promql.Matrix{
		{
			Metric: labels.FromStrings("__name__", "c", "component", "a", "instance", "b"),
			Points: []promql.Point{{T: 120000, V: 2}, {T: 180000, V: 3}, {T: 240000, V: 4}, {T: 300000, V: 5}},
		},
	}, got.Result)
}

func TestNewHTTPTrackerAdaptor_Failure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "failure", "message": "some_exception"}`))
	}))
	defer server.Close()

	cfg := config.NewConfig()
	cfg.TrackerURL = server.URL
	_, err := NewHTTPTrackerAdaptor(cfg).Query(context.Background(), command.Command{
		Cmd:     `{"op": "TS", "args": ["a", "b", "c"]}`,
		Dialect: query.TREE_DIALECT,
		Backend: testBackend,
		Start:   100,
		End:     300,
	})
	require.True(t, query.IsFetchError(err))
	require.Contains(t, err.Error(), "some_exception")
}

func TestNewInfluxDBTrackerAdaptor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/query", r.URL.Path)
		require.Equal(t, "metrics", r.FormValue("db"))
		require.Contains(t, r.FormValue("q"), "instance = 'b'")
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Influxdb-Version", "1.8.10")
		_, _ = w.Write([]byte(`{"results": [{"statement_id": 0, "series": [{
			"name": "c",
			"tags": {"instance": "b"},
			"columns": ["time", "value"],
			"values": [[100, 2], [160, 3], [220, 4], [280, 5]]
		}]}]}`))
	}))
	defer server.Close()

	cfg := config.NewConfig()
	cfg.InfluxDBAddr = server.URL
	cfg.InfluxDBDatabase = "metrics"
	adaptor, err := NewInfluxDBTrackerAdaptor(cfg)
	require.NoError(t, err)
	defer adaptor.Close()

	got, err := adaptor.Query(context.Background(), command.Command{
		Cmd:      `{"op": "TS", "args": ["a", "b", "c"]}`,
		Dialect:  query.TREE_DIALECT,
		Backend:  testBackend,
		Start:    100,
		End:      300,
		DataType: command.TABLE_DATA,
	})
	require.NoError(t, err)
	series := got.Result.([]query.Series)
	require.Len(t, series, 1)
	require.Equal(t, "b", series[0].Instance)
	require.Equal(t, map[int64]float64{120: 2, 180: 3, 240: 4, 300: 5}, series[0].Timeline)
}

func TestNewInfluxDBTrackerAdaptor_BadAddr(t *testing.T) {
	cfg := config.NewConfig()
	cfg.InfluxDBAddr = "udp://localhost:8089"
	_, err := NewInfluxDBTrackerAdaptor(cfg)
	require.Error(t, err)
}

func TestTrackerAdaptor_Close(t *testing.T) {
	require.NoError(t, NewHTTPTrackerAdaptor(config.NewConfig()).Close())
}
