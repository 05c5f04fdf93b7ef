package query

import (
	"context"

	"github.com/wubin1989/trackerql/timeline"
	"golang.org/x/sync/errgroup"
)

// value is an evaluated operand
type value struct {
	constant float64
	isConst  bool
	series   []Series
}

// evaluate runs every sub-tree operand concurrently over (start, end] and returns the
// values in operand order. It returns as soon as one branch fails or ctx ends; branches
// still running then see a cancelled context and their results are dropped. Nothing is
// returned unless every branch succeeded.
func evaluate(ctx context.Context, backend timeline.Backend, ops []Operand, start, end int64) ([]value, error) {
	values := make([]value, len(ops))
	nodes := countNodes(ops)
	if nodes == 0 {
		for i, op := range ops {
			values[i] = value{constant: op.Constant(), isConst: true}
		}
		return values, nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(nodes)
	failed := make(chan error, 1)
	results := make([][]Series, len(ops))
	for i, op := range ops {
		if op.IsConstant() {
			continue
		}
		i, sub := i, op.Node()
		g.Go(func() error {
			series, err := sub.Execute(gctx, backend, start, end)
			if err != nil {
				select {
				case failed <- err:
				default:
				}
				return err
			}
			results[i] = series
			return nil
		})
	}
	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()
	if err := wait(ctx, failed, done); err != nil {
		return nil, err
	}
	for i, op := range ops {
		if op.IsConstant() {
			values[i] = value{constant: op.Constant(), isConst: true}
			continue
		}
		values[i] = value{series: results[i]}
	}
	return values, nil
}

// wait returns the outcome of the branches. A finished outcome wins over ctx ending at the
// same time, ctx only decides when the branches are still running.
func wait(ctx context.Context, failed, done <-chan error) error {
	select {
	case err := <-done:
		return err
	case err := <-failed:
		return err
	default:
	}
	select {
	case err := <-failed:
		return err
	case err := <-done:
		return err
	case <-ctx.Done():
		select {
		case err := <-done:
			return err
		case err := <-failed:
			return err
		default:
			return ctx.Err()
		}
	}
}
