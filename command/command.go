package command

import (
	"github.com/wubin1989/trackerql/timeline"
)

// OperationType indicates a Command is for writing or for querying
type OperationType int

const (
	QUERY_OPERATION OperationType = iota + 1
	WRITE_OPERATION               = iota + 1
)

// DialectType is alias of string type and indicates how Command.Cmd is encoded
type DialectType string

// CommandType indicates the type of Command in business meaning
type CommandType struct {
	OperationType OperationType
	DialectType   DialectType
}

// DataType indicates a Command is for table display or for graph display in data visualization platform like Grafana
// Basically,
//   - TABLE_DATA returns the evaluated series as they are
//   - GRAPH_DATA returns a Prometheus-style matrix ready for plotting
type DataType int

const (
	TABLE_DATA DataType = iota + 1
	GRAPH_DATA
)

// Command wraps a serialized operator tree with several related attributes
type Command struct {
	// Cmd is the operator tree, encoded per Dialect
	Cmd     string
	Dialect DialectType
	// Backend locates the topology whose metrics are queried
	Backend timeline.Backend
	// Start and End are unix seconds. The evaluated range is (Start, End].
	Start int64
	End   int64

	DataType DataType
}

// CommandResult wraps query result and its type
type CommandResult struct {
	Result     interface{}
	ResultType string
}
