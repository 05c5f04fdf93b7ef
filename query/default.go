package query

import (
	"context"

	"github.com/wubin1989/trackerql/timeline"
)

var _ Node = (*Default)(nil)

// Default fills every empty bucket of its operand's series with a constant
type Default struct {
	Operands []Operand
}

// NewDefault expects exactly a constant followed by a sub-tree
func NewDefault(ops ...Operand) (*Default, error) {
	if len(ops) != 2 {
		return nil, evaluationErrorf(KindDefault, "expects 2 operands, got %d", len(ops))
	}
	if !ops[0].IsConstant() || ops[1].IsConstant() {
		return nil, evaluationErrorf(KindDefault, "expects a constant followed by a sub-tree")
	}
	return &Default{Operands: ops}, nil
}

func (n *Default) node() {}

func (n *Default) Kind() Kind { return KindDefault }

func (n *Default) String() string { return format(KindDefault, n.Operands) }

func (n *Default) Execute(ctx context.Context, backend timeline.Backend, start, end int64) (result []Series, err error) {
	ctx, span := startSpan(ctx, KindDefault, start, end)
	defer func() {
		endSpan(span, result, err)
	}()
	values, err := evaluate(ctx, backend, n.Operands, start, end)
	if err != nil {
		return nil, err
	}
	fill := values[0].constant
	grid := Grid(start, end)
	result = make([]Series, 0, len(values[1].series))
	for _, s := range values[1].series {
		dense := make(map[int64]float64, len(grid))
		for _, t := range grid {
			if v, ok := s.Timeline[t]; ok {
				dense[t] = v
			} else {
				dense[t] = fill
			}
		}
		result = append(result, s.derive(start, end, dense))
	}
	return result, nil
}
