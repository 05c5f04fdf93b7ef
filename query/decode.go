package query

import (
	"bytes"
	"encoding/json"

	"github.com/iancoleman/strcase"
	"github.com/pkg/errors"
	"github.com/wubin1989/trackerql/timeline"
)

// rawNode is the wire form of a node: {"op": "RATE", "args": [...]}.
// An argument is a number (constant), a nested node, or, for TS only, a string.
type rawNode struct {
	Op   string            `json:"op"`
	Args []json.RawMessage `json:"args"`
}

// Decode rebuilds an operator tree serialized as JSON, e.g.
//
//	{"op": "RATE", "args": [{"op": "TS", "args": ["bolt", "*", "__emit-count/default"]}]}
//
// Operator names are case-insensitive. Every TS leaf reads through fetcher.
func Decode(data []byte, fetcher timeline.Fetcher) (Node, error) {
	var raw rawNode
	if err := strictUnmarshal(data, &raw); err != nil {
		return nil, &EvaluationError{Reason: errors.Wrap(err, "decode node").Error()}
	}
	return build(raw, fetcher)
}

func strictUnmarshal(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func build(raw rawNode, fetcher timeline.Fetcher) (Node, error) {
	kind := Kind(strcase.ToScreamingSnake(raw.Op))
	if kind == KindTS {
		return buildTS(raw.Args, fetcher)
	}
	ops := make([]Operand, 0, len(raw.Args))
	for i, arg := range raw.Args {
		op, err := buildOperand(kind, i, arg, fetcher)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	switch kind {
	case KindDefault:
		return asNode(NewDefault(ops...))
	case KindSum:
		return asNode(NewSum(ops...))
	case KindMultiply:
		return asNode(NewMultiply(ops...))
	case KindSubtract:
		return asNode(NewSubtract(ops...))
	case KindDivide:
		return asNode(NewDivide(ops...))
	case KindMax:
		return asNode(NewMax(ops...))
	case KindPercentile:
		return asNode(NewPercentile(ops...))
	case KindRate:
		return asNode(NewRate(ops...))
	default:
		return nil, evaluationErrorf(kind, "unknown operator %q", raw.Op)
	}
}

func buildOperand(kind Kind, i int, arg json.RawMessage, fetcher timeline.Fetcher) (Operand, error) {
	trimmed := bytes.TrimSpace(arg)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var raw rawNode
		if err := strictUnmarshal(trimmed, &raw); err != nil {
			return Operand{}, evaluationErrorf(kind, "operand %d: %s", i, err)
		}
		n, err := build(raw, fetcher)
		if err != nil {
			return Operand{}, err
		}
		return Sub(n), nil
	}
	var constant float64
	if isNull(trimmed) {
		return Operand{}, evaluationErrorf(kind, "operand %d must be a number or a node, got null", i)
	}
	if err := json.Unmarshal(trimmed, &constant); err != nil {
		return Operand{}, evaluationErrorf(kind, "operand %d must be a number or a node, got %s", i, string(trimmed))
	}
	return Const(constant), nil
}

// isNull reports a JSON null, which json.Unmarshal would otherwise turn into a zero value
func isNull(data []byte) bool {
	return bytes.Equal(data, []byte("null"))
}

func buildTS(args []json.RawMessage, fetcher timeline.Fetcher) (Node, error) {
	if len(args) != 3 {
		return nil, evaluationErrorf(KindTS, "expects component, instance and metric, got %d arguments", len(args))
	}
	parts := make([]string, 3)
	for i, arg := range args {
		if isNull(bytes.TrimSpace(arg)) {
			return nil, evaluationErrorf(KindTS, "argument %d must be a string, got null", i)
		}
		if err := json.Unmarshal(arg, &parts[i]); err != nil {
			return nil, evaluationErrorf(KindTS, "argument %d must be a string, got %s", i, string(arg))
		}
	}
	return asNode(NewTS(fetcher, parts[0], parts[1], parts[2]))
}

// asNode keeps a failed constructor from leaking a typed nil
func asNode[T Node](n T, err error) (Node, error) {
	if err != nil {
		return nil, err
	}
	return n, nil
}
