package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/unionj-cloud/go-doudou/v2/toolkit/stringutils"
	"github.com/unionj-cloud/go-doudou/v2/toolkit/zlogger"
	trackerql "github.com/wubin1989/trackerql"
	"github.com/wubin1989/trackerql/command"
	"github.com/wubin1989/trackerql/config"
	"github.com/wubin1989/trackerql/query"
	"github.com/wubin1989/trackerql/timeline"
)

var flags struct {
	tree       string
	treeFile   string
	cluster    string
	environ    string
	role       string
	topology   string
	start      int64
	end        int64
	last       time.Duration
	graph      bool
	trackerURL string
	backend    string
	verbose    bool
}

var rootCmd = &cobra.Command{
	Use:   "trackerql",
	Short: "Evaluate metric operator trees against a Heron tracker",
	Long: `Evaluate a JSON operator tree over a time range and print the aligned series.

A tree is nested {"op": ..., "args": [...]} objects. Leaves are
{"op": "TS", "args": [component, instance or "*", metric]}.

Examples:
  # Emit rate of every bolt instance over the last hour
  trackerql --cluster local --environ default --topology wordcount --last 1h \
    --tree '{"op": "RATE", "args": [{"op": "TS", "args": ["bolt", "*", "__emit-count/default"]}]}'

  # Same query read from a file, printed as a Prometheus matrix
  trackerql --cluster local --environ default --topology wordcount --tree-file rate.json --graph`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	fs := rootCmd.Flags()
	fs.StringVar(&flags.tree, "tree", "", "operator tree as JSON")
	fs.StringVar(&flags.treeFile, "tree-file", "", "file holding the operator tree")
	fs.StringVar(&flags.cluster, "cluster", "", "cluster of the topology")
	fs.StringVar(&flags.environ, "environ", "", "environment of the topology")
	fs.StringVar(&flags.role, "role", "", "role of the topology owner")
	fs.StringVar(&flags.topology, "topology", "", "topology name")
	fs.Int64Var(&flags.start, "start", 0, "range start, unix seconds, exclusive")
	fs.Int64Var(&flags.end, "end", 0, "range end, unix seconds, inclusive")
	fs.DurationVar(&flags.last, "last", time.Hour, "range ending now, used when --start and --end are not set")
	fs.BoolVar(&flags.graph, "graph", false, "print a Prometheus matrix as JSON instead of a table")
	fs.StringVar(&flags.trackerURL, "tracker-url", "", "tracker root URL, overrides TRACKERQL_TRACKER_URL")
	fs.StringVar(&flags.backend, "backend", backendTracker, "timeline source, tracker or influxdb")
	fs.BoolVarP(&flags.verbose, "verbose", "v", false, "log every request")
	rootCmd.MarkFlagsMutuallyExclusive("tree", "tree-file")
	_ = rootCmd.MarkFlagRequired("topology")
}

const (
	backendTracker  = "tracker"
	backendInfluxDB = "influxdb"
)

// newAdaptor picks the timeline source named by --backend
func newAdaptor(cfg config.Config) (*trackerql.TrackerAdaptor, error) {
	switch flags.backend {
	case backendTracker, "":
		return trackerql.NewHTTPTrackerAdaptor(cfg), nil
	case backendInfluxDB:
		return trackerql.NewInfluxDBTrackerAdaptor(cfg)
	default:
		return nil, errors.Errorf("unknown backend %q, want %s or %s", flags.backend, backendTracker, backendInfluxDB)
	}
}

func loadTree() (string, error) {
	if stringutils.IsNotEmpty(flags.tree) {
		return flags.tree, nil
	}
	if stringutils.IsEmpty(flags.treeFile) {
		return "", errors.New("one of --tree or --tree-file is required")
	}
	data, err := os.ReadFile(flags.treeFile)
	if err != nil {
		return "", errors.Wrap(err, "read tree file")
	}
	return string(data), nil
}

func timeRange() (int64, int64) {
	if flags.start != 0 || flags.end != 0 {
		return flags.start, flags.end
	}
	end := time.Now().Unix()
	return end - int64(flags.last.Seconds()), end
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}
	if stringutils.IsNotEmpty(flags.trackerURL) {
		cfg.TrackerURL = flags.trackerURL
	}
	cfg.Verbose = cfg.Verbose || flags.verbose
	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
	tree, err := loadTree()
	if err != nil {
		return err
	}
	start, end := timeRange()
	dataType := command.TABLE_DATA
	if flags.graph {
		dataType = command.GRAPH_DATA
	}
	adaptor, err := newAdaptor(cfg)
	if err != nil {
		return err
	}
	defer adaptor.Close()
	result, err := adaptor.Query(context.Background(), command.Command{
		Cmd:     tree,
		Dialect: query.TREE_DIALECT,
		Backend: timeline.Backend{
			Cluster:  flags.cluster,
			Environ:  flags.environ,
			Role:     flags.role,
			Topology: flags.topology,
		},
		Start:    start,
		End:      end,
		DataType: dataType,
	})
	if err != nil {
		zlogger.Error().Err(err).Msg("query failed")
		return err
	}
	if flags.graph {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result.Result)
	}
	series, ok := result.Result.([]query.Series)
	if !ok {
		return errors.Errorf("unexpected result type %s", result.ResultType)
	}
	return printSeries(cmd, series, start, end)
}

// printSeries prints one row per bucket of every series
func printSeries(cmd *cobra.Command, series []query.Series, start, end int64) error {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header([]string{"Component", "Instance", "Metric", "Time", "Value"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	var data [][]string
	for _, s := range series {
		for _, t := range s.Timestamps() {
			data = append(data, []string{
				s.ComponentName,
				s.Instance,
				s.MetricName,
				time.Unix(t, 0).UTC().Format(time.RFC3339),
				strconv.FormatFloat(s.Timeline[t], 'f', -1, 64),
			})
		}
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%d series over (%d, %d]\n", len(series), start, end)
	return nil
}
