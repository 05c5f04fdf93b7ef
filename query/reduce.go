package query

import (
	"context"
	"math"

	"github.com/wubin1989/trackerql/timeline"
	"golang.org/x/exp/slices"
)

// reducer picks one value out of the samples present at a bucket. samples is never empty.
type reducer func(samples []float64) float64

// reduction collapses every series of its operands, whatever their instance, into one
// series. A bucket is computed from the series that have it and is absent only when none do.
type reduction struct {
	kind     Kind
	reduce   reducer
	Operands []Operand
	// nodes are the operands that are evaluated
	nodes []Operand
}

func (n *reduction) node() {}

func (n *reduction) Kind() Kind { return n.kind }

func (n *reduction) String() string { return format(n.kind, n.Operands) }

func (n *reduction) Execute(ctx context.Context, backend timeline.Backend, start, end int64) (result []Series, err error) {
	ctx, span := startSpan(ctx, n.kind, start, end)
	defer func() {
		endSpan(span, result, err)
	}()
	values, err := evaluate(ctx, backend, n.nodes, start, end)
	if err != nil {
		return nil, err
	}
	var contributors []Series
	for _, v := range values {
		contributors = append(contributors, v.series...)
	}
	samples := make(map[int64][]float64)
	for _, s := range contributors {
		for t, v := range s.Timeline {
			samples[t] = append(samples[t], v)
		}
	}
	tl := make(map[int64]float64, len(samples))
	for t, vs := range samples {
		tl[t] = n.reduce(vs)
	}
	out := Series{
		Start:    start,
		End:      end,
		Timeline: tl,
	}
	if len(contributors) > 0 {
		out.ComponentName = contributors[0].ComponentName
		out.MetricName = contributors[0].MetricName
		for _, s := range contributors[1:] {
			if s.ComponentName != out.ComponentName {
				out.ComponentName = ""
			}
			if s.MetricName != out.MetricName {
				out.MetricName = ""
			}
		}
	}
	return []Series{out}, nil
}

var (
	_ Node = (*Max)(nil)
	_ Node = (*Percentile)(nil)
)

// Max keeps the largest value present at each bucket
type Max struct{ reduction }

// NewMax expects one or more sub-trees
func NewMax(ops ...Operand) (*Max, error) {
	if len(ops) == 0 {
		return nil, evaluationErrorf(KindMax, "expects at least one sub-tree operand")
	}
	if countNodes(ops) != len(ops) {
		return nil, evaluationErrorf(KindMax, "constant operands are not supported")
	}
	return &Max{reduction{
		kind:     KindMax,
		reduce:   maxOf,
		Operands: ops,
		nodes:    ops,
	}}, nil
}

func maxOf(samples []float64) float64 {
	m := samples[0]
	for _, v := range samples[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// Percentile keeps, at each bucket, the sample at index floor(n*p/100)-1 of the ascending
// samples. The index is clamped to [0, n-1], so a bucket with fewer than 100/p samples
// yields its smallest value.
type Percentile struct {
	reduction
	P float64
}

// NewPercentile expects a constant percentile in [0, 100] followed by one or more sub-trees
func NewPercentile(ops ...Operand) (*Percentile, error) {
	if len(ops) < 2 {
		return nil, evaluationErrorf(KindPercentile, "expects a percentile and at least one sub-tree, got %d operands", len(ops))
	}
	if !ops[0].IsConstant() {
		return nil, evaluationErrorf(KindPercentile, "first operand must be the percentile")
	}
	p := ops[0].Constant()
	if math.IsNaN(p) || p < 0 || p > 100 {
		return nil, evaluationErrorf(KindPercentile, "percentile %v is outside [0, 100]", p)
	}
	if countNodes(ops[1:]) != len(ops)-1 {
		return nil, evaluationErrorf(KindPercentile, "only the first operand may be a constant")
	}
	return &Percentile{
		reduction: reduction{
			kind:     KindPercentile,
			reduce:   percentileOf(p),
			Operands: ops,
			nodes:    ops[1:],
		},
		P: p,
	}, nil
}

func percentileOf(p float64) reducer {
	return func(samples []float64) float64 {
		sorted := slices.Clone(samples)
		slices.Sort(sorted)
		return sorted[percentileIndex(len(sorted), p)]
	}
}

func percentileIndex(n int, p float64) int {
	index := int(math.Floor(float64(n)*p/100)) - 1
	if index < 0 {
		return 0
	}
	if index > n-1 {
		return n - 1
	}
	return index
}
