package assess

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"floorsense/internal/layout"
)

// Job is one layout to assess, with its optional supplied links.
type Job struct {
	Layout layout.Layout
	Links  []layout.CollaborationLink
}

// Batch assesses jobs concurrently with at most limit in flight (limit <= 0
// means unbounded). Reports are returned in job order. The first failure
// cancels the remaining jobs.
func (e *Engine) Batch(ctx context.Context, jobs []Job, limit int) ([]Report, error) {
	reports := make([]Report, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := e.Assess(ctx, job.Layout, job.Links)
			if err != nil {
				return fmt.Errorf("layout %s: %w", job.Layout.Name, err)
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
