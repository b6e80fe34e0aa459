// Package filelist provides a domainsource.Source reading a list from the
// local filesystem. It is mostly used as an offline fallback for a remote list.
package filelist

import (
	"context"
	"os"

	"mailguard/pkg/domain"
	"mailguard/pkg/domainsource"

	"github.com/go-faster/errors"
)

// Source reads the list at Path on every Fetch.
type Source struct {
	Path   string
	Format domainsource.Format
}

// New returns a Source for path.
func New(path string, format domainsource.Format) *Source {
	return &Source{Path: path, Format: format}
}

// Fetch implements domainsource.Source.
func (s *Source) Fetch(ctx context.Context) (*domain.DomainSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.Path)
	if err != nil {
		return nil, errors.Wrap(err, "open list")
	}
	defer func() {
		_ = f.Close()
	}()

	set, err := domainsource.Parse(f, s.Format)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", s.Path)
	}

	return set, nil
}

var _ domainsource.Source = (*Source)(nil)
