package batch

import (
	"context"

	"github.com/Injng/boxi/internal/expression"
	"github.com/Injng/boxi/internal/rosetta"
	"github.com/Injng/boxi/internal/types"
	"golang.org/x/sync/errgroup"
)

const DefaultJobs = 4

type Result struct {
	Entry
	Value int64
	Err   error
}

type Report struct {
	Name       string                  `json:"name,omitempty"`
	Expression string                  `json:"expression"`
	Result     *rosetta.Representation `json:"result,omitempty"`
	Error      any                     `json:"error,omitempty"`
}

func (r Result) Report() Report {
	report := Report{
		Name:       r.Name,
		Expression: r.Expression,
	}
	if r.Err != nil {
		report.Error = types.ExceptionOf(r.Err)
	} else {
		v := rosetta.New(r.Value).Representation()
		report.Result = &v
	}
	return report
}

// Run evaluates entries on at most jobs goroutines and returns the results
// in entry order. Evaluation failures are kept in Result.Err; only context
// cancellation is returned as an error.
func Run(ctx context.Context, entries []Entry, jobs int) ([]Result, error) {
	if jobs <= 0 {
		jobs = DefaultJobs
	}

	results := make([]Result, len(entries))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(jobs)
	for i, entry := range entries {
		i := i
		entry := entry
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			v, err := expression.Evaluate(entry.Expression)
			results[i] = Result{Entry: entry, Value: v, Err: err}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
