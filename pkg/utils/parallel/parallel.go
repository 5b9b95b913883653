// Package parallel runs per-item work under a bounded worker pool with
// panic recovery. Unlike errgroup's own error handling, a failing item never
// cancels its siblings; each item's outcome is reported separately.
package parallel

import (
	"context"
	"runtime/debug"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"
)

// ForEach applies fn to every item with at most limit workers running at
// once. The returned slice holds one error per item, aligned by index; a
// panic inside fn is recovered, logged with its stack, and reported as that
// item's error.
func ForEach[T any](ctx context.Context, limit int, items []T, fn func(ctx context.Context, item T) error) []error {
	if limit <= 0 {
		limit = 1
	}

	errs := make([]error, len(items))

	var g errgroup.Group
	g.SetLimit(limit)

	for i, item := range items {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					stack := debug.Stack()
					ctxlog.From(ctx).Error("panic in parallel worker",
						"recover", r,
						"stack", string(stack))
					errs[i] = goerr.New("panic in parallel worker", goerr.V("recover", r))
				}
			}()

			errs[i] = fn(ctx, item)
			return nil
		})
	}

	// Workers never return errors through the group; Wait only joins them.
	_ = g.Wait()

	return errs
}
