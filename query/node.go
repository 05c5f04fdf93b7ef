package query

import (
	"context"
	"strconv"
	"strings"

	"github.com/wubin1989/trackerql/timeline"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Kind names an operator
type Kind string

const (
	KindTS         Kind = "TS"
	KindDefault    Kind = "DEFAULT"
	KindSum        Kind = "SUM"
	KindMax        Kind = "MAX"
	KindPercentile Kind = "PERCENTILE"
	KindDivide     Kind = "DIVIDE"
	KindMultiply   Kind = "MULTIPLY"
	KindSubtract   Kind = "SUBTRACT"
	KindRate       Kind = "RATE"
)

// Node is one operator of an evaluation tree. The set of node types is closed:
// only this package implements it.
//
// Execute evaluates the subtree over (start, end]. It is safe to call concurrently and
// keeps no state between calls. ctx bounds the whole evaluation; backend is passed
// untouched to every leaf fetch.
type Node interface {
	Execute(ctx context.Context, backend timeline.Backend, start, end int64) ([]Series, error)
	Kind() Kind
	String() string
	node()
}

// Operand is either a constant or a sub-tree
type Operand struct {
	constant float64
	sub      Node
}

// Const returns a constant operand
func Const(v float64) Operand {
	return Operand{constant: v}
}

// Sub returns a sub-tree operand
func Sub(n Node) Operand {
	return Operand{sub: n}
}

func (o Operand) IsConstant() bool {
	return o.sub == nil
}

func (o Operand) Constant() float64 {
	return o.constant
}

func (o Operand) Node() Node {
	return o.sub
}

func (o Operand) String() string {
	if o.IsConstant() {
		return strconv.FormatFloat(o.constant, 'f', -1, 64)
	}
	return o.sub.String()
}

func countNodes(ops []Operand) int {
	var n int
	for _, op := range ops {
		if !op.IsConstant() {
			n++
		}
	}
	return n
}

func format(kind Kind, ops []Operand) string {
	args := make([]string, 0, len(ops))
	for _, op := range ops {
		args = append(args, op.String())
	}
	return string(kind) + "(" + strings.Join(args, ", ") + ")"
}

var tracer = otel.Tracer("github.com/wubin1989/trackerql/query")

func startSpan(ctx context.Context, kind Kind, start, end int64) (context.Context, trace.Span) {
	return tracer.Start(ctx, string(kind), trace.WithAttributes(
		attribute.Int64("query.start", start),
		attribute.Int64("query.end", end),
	))
}

func endSpan(span trace.Span, result []Series, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Int("query.series", len(result)))
	}
	span.End()
}
