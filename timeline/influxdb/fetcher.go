// Package influxdb reads metrics timelines from InfluxDB 1.x, where every metric is
// a measurement tagged with topology, component and instance.
package influxdb

import (
	"context"
	"encoding/json"
	"time"

	_ "github.com/influxdata/influxdb1-client" // this is important because of the bug in go mod
	"github.com/influxdata/influxdb1-client/models"
	influxdb "github.com/influxdata/influxdb1-client/v2"
	"github.com/influxdata/influxql"
	"github.com/pkg/errors"
	"github.com/unionj-cloud/go-doudou/v2/toolkit/stringutils"
	"github.com/unionj-cloud/go-doudou/v2/toolkit/zlogger"
	"github.com/wubin1989/trackerql/timeline"
)

const (
	TopologyTagKey  = "topology"
	ComponentTagKey = "component"
	InstanceTagKey  = "instance"

	defaultValueFieldKey = "value"
	precisionSeconds     = "s"
)

// Config configures Fetcher
type Config struct {
	Database string
	// ValueFieldKey is the field holding the sample value. Default is ```value```.
	ValueFieldKey string
	Verbose       bool
}

var _ timeline.Fetcher = (*Fetcher)(nil)

// Fetcher is a timeline.Fetcher backed by influxdb.Client
type Fetcher struct {
	Cfg    Config
	Client influxdb.Client
}

func NewFetcher(cfg Config, client influxdb.Client) *Fetcher {
	return &Fetcher{
		Cfg:    cfg,
		Client: client,
	}
}

func tagEquals(key, value string) *influxql.BinaryExpr {
	return &influxql.BinaryExpr{
		Op:  influxql.EQ,
		LHS: &influxql.VarRef{Val: key},
		RHS: &influxql.StringLiteral{Val: value},
	}
}

func and(lhs, rhs influxql.Expr) influxql.Expr {
	if lhs == nil {
		return rhs
	}
	return &influxql.BinaryExpr{Op: influxql.AND, LHS: lhs, RHS: rhs}
}

// Statement builds the InfluxQL select for one fetch. Time bounds follow the
// tracker's (start, end] convention.
func (receiver *Fetcher) Statement(backend timeline.Backend, component string, metrics []string, instances []string, start, end int64) *influxql.SelectStatement {
	valueField := receiver.Cfg.ValueFieldKey
	if stringutils.IsEmpty(valueField) {
		valueField = defaultValueFieldKey
	}
	var sources influxql.Sources
	for _, metric := range metrics {
		sources = append(sources, &influxql.Measurement{Name: metric})
	}
	var cond influxql.Expr
	if stringutils.IsNotEmpty(backend.Topology) {
		cond = and(cond, tagEquals(TopologyTagKey, backend.Topology))
	}
	cond = and(cond, tagEquals(ComponentTagKey, component))
	var instanceCond influxql.Expr
	for _, instance := range instances {
		if instanceCond == nil {
			instanceCond = tagEquals(InstanceTagKey, instance)
			continue
		}
		instanceCond = &influxql.BinaryExpr{Op: influxql.OR, LHS: instanceCond, RHS: tagEquals(InstanceTagKey, instance)}
	}
	if instanceCond != nil {
		cond = and(cond, &influxql.ParenExpr{Expr: instanceCond})
	}
	cond = and(cond, &influxql.BinaryExpr{
		Op:  influxql.GT,
		LHS: &influxql.VarRef{Val: "time"},
		RHS: &influxql.TimeLiteral{Val: time.Unix(start, 0).UTC()},
	})
	cond = and(cond, &influxql.BinaryExpr{
		Op:  influxql.LTE,
		LHS: &influxql.VarRef{Val: "time"},
		RHS: &influxql.TimeLiteral{Val: time.Unix(end, 0).UTC()},
	})
	return &influxql.SelectStatement{
		Fields:     influxql.Fields{{Expr: &influxql.VarRef{Val: valueField}}},
		Sources:    sources,
		Condition:  cond,
		Dimensions: influxql.Dimensions{{Expr: &influxql.VarRef{Val: InstanceTagKey}}},
	}
}

// FetchTimeline implements timeline.Fetcher
func (receiver *Fetcher) FetchTimeline(ctx context.Context, backend timeline.Backend, component string, metrics []string, instances []string, start, end int64) (*timeline.RawResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	influxCmd := receiver.Statement(backend, component, metrics, instances, start, end).String()
	resp, err := receiver.Client.Query(influxdb.NewQuery(influxCmd, receiver.Cfg.Database, precisionSeconds))
	if err != nil {
		return nil, errors.Wrap(err, "error from influxdb api")
	}
	if receiver.Cfg.Verbose {
		jsonResp, _ := json.Marshal(resp)
		zlogger.Info().RawJSON("response", jsonResp).Str("influxql", influxCmd).Msg("response from InfluxDB")
	}
	if respErr := resp.Error(); respErr != nil {
		return &timeline.RawResponse{Message: respErr.Error()}, nil
	}
	result := &timeline.RawResponse{
		StartTime: start,
		EndTime:   end,
		Component: component,
		Timeline:  make(timeline.Timeline, len(metrics)),
	}
	for _, metric := range metrics {
		result.Timeline[metric] = make(map[string]map[string]json.Number)
	}
	for _, res := range resp.Results {
		for _, row := range res.Series {
			if err = receiver.populate(result.Timeline, row); err != nil {
				return &timeline.RawResponse{Message: err.Error()}, nil
			}
		}
	}
	return result, nil
}

// populate copies one InfluxDB row, which is one measurement and one instance, into tl
func (receiver *Fetcher) populate(tl timeline.Timeline, row models.Row) error {
	instance := row.Tags[InstanceTagKey]
	if stringutils.IsEmpty(instance) {
		return errors.Errorf("series %s has no %s tag", row.Name, InstanceTagKey)
	}
	instances, ok := tl[row.Name]
	if !ok {
		instances = make(map[string]map[string]json.Number)
		tl[row.Name] = instances
	}
	samples, ok := instances[instance]
	if !ok {
		samples = make(map[string]json.Number, len(row.Values))
		instances[instance] = samples
	}
	for _, item := range row.Values {
		if len(item) < 2 || item[len(item)-1] == nil {
			continue
		}
		ts, err := toNumber(item[0])
		if err != nil {
			return errors.Wrap(err, "parse time fail")
		}
		value, err := toNumber(item[len(item)-1])
		if err != nil {
			return errors.Wrap(err, "parse value fail")
		}
		samples[string(ts)] = value
	}
	return nil
}

func toNumber(v interface{}) (json.Number, error) {
	switch number := v.(type) {
	case json.Number:
		return number, nil
	case float64:
		return timeline.Number(number), nil
	case int64:
		return json.Number(timeline.Stamp(number)), nil
	default:
		return "", errors.Errorf("unexpected %T", v)
	}
}
