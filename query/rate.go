package query

import (
	"context"

	"github.com/wubin1989/trackerql/timeline"
)

var _ Node = (*Rate)(nil)

// Rate is the per-bucket backward difference of its operand, instance by instance
type Rate struct {
	Operands []Operand
}

// NewRate expects exactly one sub-tree
func NewRate(ops ...Operand) (*Rate, error) {
	if len(ops) != 1 || ops[0].IsConstant() {
		return nil, evaluationErrorf(KindRate, "expects exactly one sub-tree operand")
	}
	return &Rate{Operands: ops}, nil
}

func (n *Rate) node() {}

func (n *Rate) Kind() Kind { return KindRate }

func (n *Rate) String() string { return format(KindRate, n.Operands) }

// Execute asks its operand for one more bucket at the front so that the first bucket
// of (start, end] has a predecessor.
func (n *Rate) Execute(ctx context.Context, backend timeline.Backend, start, end int64) (result []Series, err error) {
	ctx, span := startSpan(ctx, KindRate, start, end)
	defer func() {
		endSpan(span, result, err)
	}()
	values, err := evaluate(ctx, backend, n.Operands, start-BucketWidth, end)
	if err != nil {
		return nil, err
	}
	grid := Grid(start, end)
	result = make([]Series, 0, len(values[0].series))
	for _, s := range values[0].series {
		tl := make(map[int64]float64, len(grid))
		for _, t := range grid {
			cur, ok := s.Timeline[t]
			if !ok {
				continue
			}
			prev, ok := s.Timeline[t-BucketWidth]
			if !ok {
				continue
			}
			tl[t] = cur - prev
		}
		result = append(result, s.derive(start, end, tl))
	}
	return result, nil
}
