package timeline

import "fmt"

// TMaster locates the topology master that serves metrics for one topology.
type TMaster struct {
	Name           string `json:"name"`
	Host           string `json:"host"`
	ControllerPort int    `json:"controller_port"`
	MasterPort     int    `json:"master_port"`
	StatsPort      int    `json:"stats_port"`
}

// Backend wraps the handles a query needs to reach the metrics store.
// It is read-only and shared by every branch of an evaluation.
type Backend struct {
	Cluster  string
	Environ  string
	Role     string
	Topology string
	TMaster  *TMaster
}

func (receiver Backend) String() string {
	return fmt.Sprintf("%s/%s/%s", receiver.Cluster, receiver.Environ, receiver.Topology)
}
