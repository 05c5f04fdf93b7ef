package trackerql

import (
	"context"
	"io"

	client "github.com/influxdata/influxdb1-client/v2"
	"github.com/pkg/errors"
	"github.com/wubin1989/trackerql/command"
	"github.com/wubin1989/trackerql/config"
	_ "github.com/wubin1989/trackerql/query" // registers the tree dialect
	"github.com/wubin1989/trackerql/timeline"
	"github.com/wubin1989/trackerql/timeline/influxdb"
	"github.com/wubin1989/trackerql/timeline/tracker"
)

var _ IAdaptor = (*TrackerAdaptor)(nil)

// TrackerAdaptor evaluates operator trees against a metrics timeline backend
type TrackerAdaptor struct {
	_       [0]int
	Cfg     config.Config
	Fetcher timeline.Fetcher
	// closer releases the backend client, if the adaptor created one
	closer io.Closer
}

func (receiver *TrackerAdaptor) Query(ctx context.Context, c command.Command) (command.CommandResult, error) {
	factory, ok := command.CommandRunnerFactoryRegistry.Factory(command.CommandType{
		OperationType: command.QUERY_OPERATION,
		DialectType:   c.Dialect,
	})
	if !ok {
		return command.CommandResult{}, command.ErrDialectNotSupported
	}
	runner := factory.Build(receiver.Fetcher, receiver.Cfg)
	if reusableRunner, ok := runner.(command.IReusableCommandRunner); ok {
		defer reusableRunner.Recycle()
	}
	return runner.Run(ctx, c)
}

// Close releases the backend client created by NewInfluxDBTrackerAdaptor. It is a no-op otherwise.
func (receiver *TrackerAdaptor) Close() error {
	if receiver.closer == nil {
		return nil
	}
	return receiver.closer.Close()
}

// NewTrackerAdaptor wraps fetcher so that identical in-flight fetches are shared,
// backend concurrency is capped by cfg.MaxFetchConcurrency and every call is measured.
// A shared fetch is bounded by cfg.Timeout rather than by the query that started it.
func NewTrackerAdaptor(cfg config.Config, fetcher timeline.Fetcher) *TrackerAdaptor {
	var wrapped timeline.Fetcher = timeline.NewDedup(fetcher, cfg.Timeout)
	if cfg.MaxFetchConcurrency > 0 {
		wrapped = timeline.NewLimited(wrapped, cfg.MaxFetchConcurrency, cfg.FetchWaitTime)
	}
	adaptor := TrackerAdaptor{
		Cfg:     cfg,
		Fetcher: timeline.Instrumented{Fetcher: wrapped},
	}
	return &adaptor
}

// NewHTTPTrackerAdaptor reads from the tracker at cfg.TrackerURL
func NewHTTPTrackerAdaptor(cfg config.Config) *TrackerAdaptor {
	return NewTrackerAdaptor(cfg, tracker.NewFetcher(tracker.Config{
		BaseURL: cfg.TrackerURL,
		Timeout: cfg.TrackerTimeout,
		Verbose: cfg.Verbose,
	}))
}

// NewInfluxDBTrackerAdaptor reads from the InfluxDB 1.x database cfg.InfluxDBDatabase at cfg.InfluxDBAddr.
// Call Close when done with it.
func NewInfluxDBTrackerAdaptor(cfg config.Config) (*TrackerAdaptor, error) {
	influxClient, err := client.NewHTTPClient(client.HTTPConfig{
		Addr:    cfg.InfluxDBAddr,
		Timeout: cfg.TrackerTimeout,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create influxdb client fail")
	}
	adaptor := NewTrackerAdaptor(cfg, influxdb.NewFetcher(influxdb.Config{
		Database:      cfg.InfluxDBDatabase,
		ValueFieldKey: cfg.InfluxDBValueFieldKey,
		Verbose:       cfg.Verbose,
	}, influxClient))
	adaptor.closer = influxClient
	return adaptor, nil
}
