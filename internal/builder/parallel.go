package builder

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"tabgen/internal/schema"
)

// BuildAll builds sheets concurrently, at most jobs at a time (unbounded
// when jobs < 1). The result is in input order; a sheet that failed has a
// nil entry and its error is part of the joined error. Failures do not stop
// the other sheets, cancellation of ctx does.
func (b *Builder) BuildAll(ctx context.Context, sheets []Sheet, jobs int) ([]*schema.Struct, error) {
	out := make([]*schema.Struct, len(sheets))
	errs := make([]error, len(sheets))

	g, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}

	for i := range sheets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			out[i], errs[i] = b.Build(sheets[i])

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return out, err
	}

	return out, errors.Join(errs...)
}
