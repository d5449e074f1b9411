// Package workpool runs independent tasks across a bounded number of
// goroutines. It is unrelated to the request engine's own control flow, which
// is strictly sequential per logical request; use it to run several logical
// requests concurrently.
package workpool

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Run executes every task, at most limit at a time (0 means unbounded). The
// first error cancels the shared context and is returned after all started
// tasks finish.
func Run(ctx context.Context, limit int, tasks []func(context.Context) error) error {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, task := range tasks {
		g.Go(func() error {
			return task(ctx)
		})
	}
	return g.Wait()
}
