package query

import (
	"sort"
	"time"

	"github.com/prometheus/common/model"
	"github.com/prometheus/prometheus/model/labels"
	"github.com/prometheus/prometheus/model/timestamp"
	"github.com/prometheus/prometheus/promql"
	"github.com/unionj-cloud/go-doudou/v2/toolkit/stringutils"
)

const (
	ComponentLabel = "component"
	InstanceLabel  = "instance"
)

// ToMatrix renders series the way the Prometheus HTTP API returns a range query:
// one labelled series per instance with millisecond points in time order.
// Empty identity fields are left out of the label set.
func ToMatrix(series []Series) promql.Matrix {
	matrix := make(promql.Matrix, 0, len(series))
	for _, s := range series {
		kvs := make(map[string]string)
		if stringutils.IsNotEmpty(s.MetricName) {
			kvs[model.MetricNameLabel] = s.MetricName
		}
		if stringutils.IsNotEmpty(s.ComponentName) {
			kvs[ComponentLabel] = s.ComponentName
		}
		if stringutils.IsNotEmpty(s.Instance) {
			kvs[InstanceLabel] = s.Instance
		}
		var points []promql.Point
		for _, t := range s.Timestamps() {
			points = append(points, promql.Point{
				T: timestamp.FromTime(time.Unix(t, 0)),
				V: s.Timeline[t],
			})
		}
		matrix = append(matrix, promql.Series{
			Metric: labels.FromMap(kvs),
			Points: points,
		})
	}
	sort.Sort(matrix)
	return matrix
}
