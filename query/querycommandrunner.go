package query

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/prometheus/promql/parser"
	"github.com/unionj-cloud/go-doudou/v2/toolkit/caller"
	"github.com/unionj-cloud/go-doudou/v2/toolkit/stringutils"
	"github.com/unionj-cloud/go-doudou/v2/toolkit/zlogger"
	"github.com/wubin1989/trackerql/command"
	"github.com/wubin1989/trackerql/config"
	"github.com/wubin1989/trackerql/timeline"
)

const (
	TREE_DIALECT command.DialectType = "tree"

	// SeriesResultType tags command.TABLE_DATA results
	SeriesResultType = "series"
)

var queryCommandRunnerFactory *QueryCommandRunnerFactory

// init registers QueryCommandRunnerFactory to global registry.
func init() {
	queryCommandRunnerFactory = NewQueryCommandRunnerFactory()
	command.CommandRunnerFactoryRegistry.Register(command.CommandType{
		OperationType: command.QUERY_OPERATION,
		DialectType:   TREE_DIALECT,
	}, queryCommandRunnerFactory)
}

var _ command.ICommandRunnerFactory = (*QueryCommandRunnerFactory)(nil)

// QueryCommandRunnerFactory hands out pooled QueryCommandRunner instances
type QueryCommandRunnerFactory struct {
	pool sync.Pool
}

// Build returns a command.ICommandRunner instance
func (receiver *QueryCommandRunnerFactory) Build(fetcher timeline.Fetcher, cfg config.Config) command.ICommandRunner {
	runner := receiver.pool.Get().(*QueryCommandRunner)
	runner.ApplyOpts(QueryCommandRunnerOpts{
		Cfg:     cfg,
		Fetcher: fetcher,
		Factory: receiver,
	})
	return runner
}

// Recycle puts *QueryCommandRunner back to object pool
func (receiver *QueryCommandRunnerFactory) Recycle(runner *QueryCommandRunner) {
	runner.Fetcher = nil
	receiver.pool.Put(runner)
}

func NewQueryCommandRunnerFactory() *QueryCommandRunnerFactory {
	return &QueryCommandRunnerFactory{
		pool: sync.Pool{
			New: func() interface{} {
				return &QueryCommandRunner{}
			},
		},
	}
}

type QueryCommandRunnerOpts struct {
	Cfg     config.Config
	Fetcher timeline.Fetcher
	Factory *QueryCommandRunnerFactory
}

var _ command.ICommandRunner = (*QueryCommandRunner)(nil)
var _ command.IReusableCommandRunner = (*QueryCommandRunner)(nil)

// QueryCommandRunner decodes a serialized operator tree, evaluates it and shapes the result per command.DataType.
// It also implements command.IReusableCommandRunner to put itself back to the factory from which it was born
type QueryCommandRunner struct {
	Cfg     config.Config
	Fetcher timeline.Fetcher
	Factory *QueryCommandRunnerFactory
}

func (receiver *QueryCommandRunner) ApplyOpts(opts QueryCommandRunnerOpts) {
	receiver.Cfg = opts.Cfg
	receiver.Fetcher = opts.Fetcher
	receiver.Factory = opts.Factory
}

// RunResult wraps query result and possible error
type RunResult struct {
	command.CommandResult
	Error error
}

// runCommand only touches the cfg and fetcher it is given, the runner may be recycled while it is still running
func runCommand(ctx context.Context, cfg config.Config, fetcher timeline.Fetcher, cmd command.Command) (command.CommandResult, error) {
	if stringutils.IsEmpty(cmd.Cmd) {
		return command.CommandResult{}, command.ErrEmptyCommand
	}
	tree, err := Decode([]byte(cmd.Cmd), fetcher)
	if err != nil {
		return command.CommandResult{}, errors.Wrap(err, "command parse fail")
	}
	if cfg.Verbose {
		zlogger.Info().Str("tree", tree.String()).Str("topology", cmd.Backend.String()).
			Int64("start", cmd.Start).Int64("end", cmd.End).Msg("evaluating")
	}
	series, err := tree.Execute(ctx, cmd.Backend, cmd.Start, cmd.End)
	if err != nil {
		return command.CommandResult{}, errors.Wrap(err, "command execute fail")
	}
	if cfg.Verbose {
		zlogger.Info().Str("tree", tree.String()).Int("series", len(series)).Msg("evaluated")
	}
	switch cmd.DataType {
	case command.GRAPH_DATA:
		return command.CommandResult{
			Result:     ToMatrix(series),
			ResultType: string(parser.ValueTypeMatrix),
		}, nil
	default:
		return command.CommandResult{
			Result:     series,
			ResultType: SeriesResultType,
		}, nil
	}
}

// Run executes command.Command and returns final results
func (receiver *QueryCommandRunner) Run(ctx context.Context, cmd command.Command) (result command.CommandResult, err error) {
	// check whether context.Context has been ended or not.
	// If yes, return immediately for saving resources.
	select {
	case <-ctx.Done():
		return command.CommandResult{}, ctx.Err()
	default:

	}
	begin := time.Now()
	defer func() {
		observeQuery(begin, err)
	}()
	cfg, fetcher := receiver.Cfg, receiver.Fetcher
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout, _ = time.ParseDuration(config.DefaultQueryTimeout)
	}
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	resultChan := make(chan RunResult, 1)
	go func() {
		res, err := runCommand(timeoutCtx, cfg, fetcher, cmd)
		resultChan <- RunResult{
			CommandResult: res,
			Error:         err,
		}
	}()
	select {
	case <-timeoutCtx.Done():
		return command.CommandResult{}, errors.Wrap(timeoutCtx.Err(), caller.NewCaller().String())
	case runResult := <-resultChan:
		if runResult.Error != nil {
			return command.CommandResult{}, runResult.Error
		}
		return runResult.CommandResult, nil
	}
}

// Recycle puts callee back to its factory
func (receiver *QueryCommandRunner) Recycle() {
	receiver.Factory.Recycle(receiver)
}
