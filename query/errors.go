package query

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/unionj-cloud/go-doudou/v2/toolkit/stringutils"
)

// FetchError means the backend failed or returned a payload the engine cannot use.
// It is fatal to the whole evaluation and never retried.
type FetchError struct {
	Component string
	Metric    string
	Instance  string
	// Message is what the backend reported, if anything
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	target := fmt.Sprintf("%s/%s/%s", e.Component, e.Instance, e.Metric)
	switch {
	case e.Err != nil && stringutils.IsNotEmpty(e.Message):
		return fmt.Sprintf("fetch %s: %s: %s", target, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("fetch %s: %s", target, e.Err)
	default:
		return fmt.Sprintf("fetch %s: %s", target, e.Message)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Cause() error { return e.Err }

// EvaluationError reports a malformed operator tree
type EvaluationError struct {
	Kind   Kind
	Reason string
}

func (e *EvaluationError) Error() string {
	if e.Kind == "" {
		return "malformed operator tree: " + e.Reason
	}
	return fmt.Sprintf("malformed %s: %s", e.Kind, e.Reason)
}

func evaluationErrorf(kind Kind, format string, args ...interface{}) *EvaluationError {
	return &EvaluationError{
		Kind:   kind,
		Reason: fmt.Sprintf(format, args...),
	}
}

// AlignmentError reports a range the aligner cannot work with
type AlignmentError struct {
	Start int64
	End   int64
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("cannot align range (%d, %d]: start is after end", e.Start, e.End)
}

// IsFetchError reports whether err is or wraps a *FetchError
func IsFetchError(err error) bool {
	var target *FetchError
	return errors.As(err, &target)
}

// IsEvaluationError reports whether err is or wraps an *EvaluationError
func IsEvaluationError(err error) bool {
	var target *EvaluationError
	return errors.As(err, &target)
}
