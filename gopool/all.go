package gopool

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// AllWithLimit runs every fn with at most max of them in flight and returns
// the first error. max <= 0 means no limit.
func AllWithLimit(max int, fns ...func() (e error)) (e error) {
	var g errgroup.Group
	g.SetLimit(limit(max))
	for _, v := range fns {
		g.Go(v)
	}
	return g.Wait()
}

func All(fns ...func() (e error)) (e error) {
	return AllWithLimit(-1, fns...)
}

// AllWithContext is AllWithLimit for fns that watch a context. The context
// handed to them is cancelled once any fn fails or ctx is done.
func AllWithContext(ctx context.Context, max int, fns ...func(ctx context.Context) (e error)) (e error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit(max))
	for _, v := range fns {
		fn := v
		g.Go(func() error {
			if e := gctx.Err(); e != nil {
				return e
			}
			return fn(gctx)
		})
	}
	return g.Wait()
}

func limit(max int) int {
	if max <= 0 {
		return -1
	}
	return max
}
