// Package domainsource defines where disposable domain lists come from. A
// Source yields a complete DomainSet or fails; it never returns a partial list.
// Concrete sources live in sub packages (httplist, filelist).
package domainsource

import (
	"context"
	"strings"

	"mailguard/pkg/domain"

	"github.com/go-faster/errors"
)

// ErrEmptyList is returned when a source produced no domains at all.
var ErrEmptyList = errors.New("domain list is empty")

// Source fetches the current list of disposable domains.
//
//go:generate mockgen -package mockdomainsource -source=interface.go -destination=mock/mockdomainsource.go *
type Source interface {
	// Fetch returns the full set of domains. Implementations must honour ctx
	// cancellation and return ErrEmptyList instead of an empty set.
	Fetch(ctx context.Context) (*domain.DomainSet, error)
}

// Validate checks email directly against a freshly fetched list, bypassing any
// cache. It returns true when the address does not belong to a disposable
// domain. Addresses without a domain part are reported as invalid.
func Validate(ctx context.Context, src Source, email string) (bool, error) {
	at := strings.LastIndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return false, nil
	}

	set, err := src.Fetch(ctx)
	if err != nil {
		return false, errors.Wrap(err, "fetch domain list")
	}

	return !set.Contains(domain.NormalizeDomain(email[at+1:])), nil
}
