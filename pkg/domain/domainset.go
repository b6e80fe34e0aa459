package domain

import (
	"sort"
	"strings"
)

// DomainSet is an immutable set of lowercase, normalized disposable domains.
// A DomainSet is never mutated after construction; refreshing the list always
// builds a new set and swaps it in as a whole.
type DomainSet struct {
	domains map[string]struct{}
}

// NormalizeDomain lowercases and trims a domain. A leading "@" and a trailing
// dot are dropped so that "@Mailinator.COM." and "mailinator.com" compare equal.
func NormalizeDomain(d string) string {
	d = strings.ToLower(strings.TrimSpace(d))
	d = strings.TrimPrefix(d, "@")

	return strings.TrimSuffix(d, ".")
}

// NewDomainSet builds a DomainSet from the given domains. Entries are
// normalized with NormalizeDomain and empty entries are skipped. The input
// slice is not retained.
func NewDomainSet(domains ...string) *DomainSet {
	set := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		if n := NormalizeDomain(d); n != "" {
			set[n] = struct{}{}
		}
	}

	return &DomainSet{domains: set}
}

// EmptyDomainSet returns a set without any domains.
func EmptyDomainSet() *DomainSet {
	return &DomainSet{domains: map[string]struct{}{}}
}

// Contains reports whether the already-normalized domain is a member of the set.
func (s *DomainSet) Contains(domain string) bool {
	if s == nil {
		return false
	}
	_, ok := s.domains[domain]

	return ok
}

// Len returns the number of domains in the set.
func (s *DomainSet) Len() int {
	if s == nil {
		return 0
	}

	return len(s.domains)
}

// Domains returns the members of the set in lexical order. The returned slice
// is a copy and may be modified by the caller.
func (s *DomainSet) Domains() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.domains))
	for d := range s.domains {
		out = append(out, d)
	}
	sort.Strings(out)

	return out
}

// Union returns a new set holding the members of s and all others.
func (s *DomainSet) Union(others ...*DomainSet) *DomainSet {
	merged := make(map[string]struct{}, s.Len())
	for d := range s.domainsOrNil() {
		merged[d] = struct{}{}
	}
	for _, o := range others {
		for d := range o.domainsOrNil() {
			merged[d] = struct{}{}
		}
	}

	return &DomainSet{domains: merged}
}

func (s *DomainSet) domainsOrNil() map[string]struct{} {
	if s == nil {
		return nil
	}

	return s.domains
}
