package query

import (
	"context"

	"github.com/wubin1989/trackerql/timeline"
)

// binaryOp combines two numbers; ok false drops the bucket
type binaryOp func(lhs, rhs float64) (v float64, ok bool)

func add(lhs, rhs float64) (float64, bool) { return lhs + rhs, true }

func mul(lhs, rhs float64) (float64, bool) { return lhs * rhs, true }

func sub(lhs, rhs float64) (float64, bool) { return lhs - rhs, true }

// div drops buckets whose divisor is zero instead of emitting Inf or NaN
func div(lhs, rhs float64) (float64, bool) {
	if rhs == 0 {
		return 0, false
	}
	return lhs / rhs, true
}

// arithmetic folds its operands left to right with op.
// A constant applies to every bucket of every series on the other side; two series
// lists match by instance and keep only the buckets both sides have.
type arithmetic struct {
	kind     Kind
	op       binaryOp
	Operands []Operand
}

func newArithmetic(kind Kind, op binaryOp, ops []Operand) (arithmetic, error) {
	if len(ops) < 2 {
		return arithmetic{}, evaluationErrorf(kind, "expects at least 2 operands, got %d", len(ops))
	}
	if countNodes(ops) == 0 {
		return arithmetic{}, evaluationErrorf(kind, "expects at least one sub-tree operand")
	}
	return arithmetic{kind: kind, op: op, Operands: ops}, nil
}

func (n *arithmetic) node() {}

func (n *arithmetic) Kind() Kind { return n.kind }

func (n *arithmetic) String() string { return format(n.kind, n.Operands) }

func (n *arithmetic) Execute(ctx context.Context, backend timeline.Backend, start, end int64) (result []Series, err error) {
	ctx, span := startSpan(ctx, n.kind, start, end)
	defer func() {
		endSpan(span, result, err)
	}()
	values, err := evaluate(ctx, backend, n.Operands, start, end)
	if err != nil {
		return nil, err
	}
	acc := values[0]
	for _, next := range values[1:] {
		if acc, err = n.combine(acc, next, start, end); err != nil {
			return nil, err
		}
	}
	return acc.series, nil
}

func (n *arithmetic) combine(lhs, rhs value, start, end int64) (value, error) {
	switch {
	case lhs.isConst && rhs.isConst:
		v, ok := n.op(lhs.constant, rhs.constant)
		if !ok {
			return value{}, evaluationErrorf(n.kind, "constant operands %v and %v cannot be combined", lhs.constant, rhs.constant)
		}
		return value{constant: v, isConst: true}, nil
	case lhs.isConst:
		return value{series: n.scalar(rhs.series, start, end, func(v float64) (float64, bool) {
			return n.op(lhs.constant, v)
		})}, nil
	case rhs.isConst:
		return value{series: n.scalar(lhs.series, start, end, func(v float64) (float64, bool) {
			return n.op(v, rhs.constant)
		})}, nil
	default:
		return value{series: n.pairwise(lhs.series, rhs.series, start, end)}, nil
	}
}

func (n *arithmetic) scalar(series []Series, start, end int64, apply func(v float64) (float64, bool)) []Series {
	result := make([]Series, 0, len(series))
	for _, s := range series {
		tl := make(map[int64]float64, len(s.Timeline))
		for t, v := range s.Timeline {
			if out, ok := apply(v); ok {
				tl[t] = out
			}
		}
		result = append(result, s.derive(start, end, tl))
	}
	return result
}

func (n *arithmetic) pairwise(lhs, rhs []Series, start, end int64) []Series {
	byInstance := make(map[string]Series, len(rhs))
	for _, s := range rhs {
		byInstance[s.Instance] = s
	}
	result := make([]Series, 0, len(lhs))
	for _, l := range lhs {
		r, ok := byInstance[l.Instance]
		if !ok {
			continue
		}
		tl := make(map[int64]float64, len(l.Timeline))
		for t, lv := range l.Timeline {
			rv, ok := r.Timeline[t]
			if !ok {
				continue
			}
			if out, ok := n.op(lv, rv); ok {
				tl[t] = out
			}
		}
		result = append(result, l.derive(start, end, tl))
	}
	return result
}

var (
	_ Node = (*Sum)(nil)
	_ Node = (*Multiply)(nil)
	_ Node = (*Subtract)(nil)
	_ Node = (*Divide)(nil)
)

// Sum adds its operands
type Sum struct{ arithmetic }

func NewSum(ops ...Operand) (*Sum, error) {
	a, err := newArithmetic(KindSum, add, ops)
	if err != nil {
		return nil, err
	}
	return &Sum{a}, nil
}

// Multiply multiplies its operands
type Multiply struct{ arithmetic }

func NewMultiply(ops ...Operand) (*Multiply, error) {
	a, err := newArithmetic(KindMultiply, mul, ops)
	if err != nil {
		return nil, err
	}
	return &Multiply{a}, nil
}

// Subtract computes first minus the rest, in order
type Subtract struct{ arithmetic }

func NewSubtract(ops ...Operand) (*Subtract, error) {
	a, err := newArithmetic(KindSubtract, sub, ops)
	if err != nil {
		return nil, err
	}
	return &Subtract{a}, nil
}

// Divide computes first divided by the rest, in order
type Divide struct{ arithmetic }

func NewDivide(ops ...Operand) (*Divide, error) {
	a, err := newArithmetic(KindDivide, div, ops)
	if err != nil {
		return nil, err
	}
	return &Divide{a}, nil
}
