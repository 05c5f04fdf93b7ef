package trackerql

import (
	"context"

	"github.com/wubin1989/trackerql/command"
)

type IAdaptor interface {
	Query(ctx context.Context, cmd command.Command) (command.CommandResult, error)
}
