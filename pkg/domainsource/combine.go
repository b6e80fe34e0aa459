package domainsource

import (
	"context"
	stderrors "errors"

	"mailguard/pkg/domain"

	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"
)

// Union merges the lists of all its sources, fetched concurrently. It fails as
// soon as any source fails so that a refresh never installs a list missing one
// of its parts; the remaining fetches are cancelled.
type Union []Source

// Fetch implements Source.
func (u Union) Fetch(ctx context.Context) (*domain.DomainSet, error) {
	if len(u) == 0 {
		return nil, ErrEmptyList
	}

	sets := make([]*domain.DomainSet, len(u))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range u {
		g.Go(func() error {
			set, err := src.Fetch(gctx)
			if err != nil {
				return errors.Wrapf(err, "source %d", i)
			}
			sets[i] = set

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err //nolint: wrapcheck
	}

	merged := domain.EmptyDomainSet().Union(sets...)
	if merged.Len() == 0 {
		return nil, ErrEmptyList
	}

	return merged, nil
}

// Fallback returns the list of the first source that succeeds.
type Fallback []Source

// Fetch implements Source. When every source fails the returned error joins
// all failures.
func (f Fallback) Fetch(ctx context.Context) (*domain.DomainSet, error) {
	if len(f) == 0 {
		return nil, ErrEmptyList
	}

	var errs []error
	for i, src := range f {
		set, err := src.Fetch(ctx)
		if err == nil {
			return set, nil
		}
		if ctx.Err() != nil {
			return nil, errors.Wrap(ctx.Err(), "fetch cancelled")
		}
		errs = append(errs, errors.Wrapf(err, "source %d", i))
	}

	return nil, stderrors.Join(errs...)
}
