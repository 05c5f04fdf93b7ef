package command

import (
	"context"

	"github.com/wubin1989/trackerql/config"
	"github.com/wubin1989/trackerql/timeline"
)

// ICommandRunner is an interface for query engine
type ICommandRunner interface {
	Run(ctx context.Context, cmd Command) (CommandResult, error)
}

// IReusableCommandRunner is an interface for query engine and supporting reuse itself
type IReusableCommandRunner interface {
	ICommandRunner
	Recycle()
}

// ICommandRunnerFactory is an interface for query engine factory
type ICommandRunnerFactory interface {
	Build(fetcher timeline.Fetcher, cfg config.Config) ICommandRunner
}

// CommandRunnerFactoryRegistry is the global query engine factory registry
var CommandRunnerFactoryRegistry *commandRunnerFactoryRegistry

func init() {
	CommandRunnerFactoryRegistry = &commandRunnerFactoryRegistry{
		Runners: make(map[CommandType]ICommandRunnerFactory),
	}
}

type commandRunnerFactoryRegistry struct {
	Runners map[CommandType]ICommandRunnerFactory
}

// Register registers new singleton query engine factory into each CommandType buckets
func (receiver *commandRunnerFactoryRegistry) Register(commandType CommandType, factory ICommandRunnerFactory) {
	receiver.Runners[commandType] = factory
}

// Factory returns a query engine factory from registry
func (receiver *commandRunnerFactoryRegistry) Factory(commandType CommandType) (factory ICommandRunnerFactory, ok bool) {
	factory, ok = receiver.Runners[commandType]
	return
}
