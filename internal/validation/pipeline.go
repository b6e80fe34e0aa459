// Package validation rejects registration and profile emails whose domain is
// a known disposable domain.
package validation

import (
	"context"
	"net/url"
	"strings"

	"mailguard/internal/disposable"
	"mailguard/pkg/domain"
	"mailguard/pkg/logger"

	"go.uber.org/zap"
)

// EmailField is the form field inspected by ValidateForm.
const EmailField = "email"

const (
	// MessageEmailRequired is shown when the email is missing or malformed.
	MessageEmailRequired = "Email is required."
	// MessageInvalidDomain is shown when the email domain is disposable.
	MessageInvalidDomain = "Invalid email domain."
)

// Options configures a Pipeline.
type Options struct {
	// MatchSubdomains makes a listed domain also match its subdomains, so that
	// "mx.mailinator.com" is rejected when "mailinator.com" is listed.
	MatchSubdomains bool
}

// Pipeline checks emails against a domain cache. It performs no I/O and is
// safe for concurrent use.
type Pipeline struct {
	lookup  disposable.Lookuper
	options Options
}

// New returns a Pipeline reading from lookup.
func New(lookup disposable.Lookuper, options Options) *Pipeline {
	return &Pipeline{lookup: lookup, options: options}
}

// SplitEmail returns the local and domain part of email. ok is false unless
// the address holds exactly one "@" with non-empty parts on both sides. The
// domain part is normalized.
func SplitEmail(email string) (local, domainPart string, ok bool) {
	email = strings.TrimSpace(email)
	if strings.Count(email, "@") != 1 {
		return "", "", false
	}
	local, domainPart, _ = strings.Cut(email, "@")
	domainPart = domain.NormalizeDomain(domainPart)
	if local == "" || domainPart == "" {
		return "", "", false
	}

	return local, domainPart, true
}

// Check decides whether email may be used.
func (p *Pipeline) Check(email string) domain.EmailCheckResult {
	_, d, ok := SplitEmail(email)
	if !ok {
		return domain.Rejected(domain.RejectEmailRequired)
	}
	if p.isDisposable(d) {
		return domain.Rejected(domain.RejectDisposableDomain)
	}

	return domain.Accepted()
}

func (p *Pipeline) isDisposable(d string) bool {
	if p.lookup.Lookup(d) {
		return true
	}
	if !p.options.MatchSubdomains {
		return false
	}
	// walk up parents that still have at least two labels
	for {
		_, parent, found := strings.Cut(d, ".")
		if !found || !strings.Contains(parent, ".") {
			return false
		}
		if p.lookup.Lookup(parent) {
			return true
		}
		d = parent
	}
}

// FieldError is a message attached to one form field.
type FieldError struct {
	Field   string
	Message string
}

// FormResult is the outcome of ValidateForm.
type FormResult struct {
	Valid  bool
	Errors []FieldError
}

// ValidateForm runs Check on the email field of a submitted registration or
// profile form and converts a rejection into a field-scoped message.
func (p *Pipeline) ValidateForm(ctx context.Context, form url.Values) FormResult {
	res := p.Check(form.Get(EmailField))
	if res.Accepted {
		return FormResult{Valid: true}
	}

	msg := MessageEmailRequired
	if res.Reason == domain.RejectDisposableDomain {
		msg = MessageInvalidDomain
	}
	if logger.IsDebug(ctx) {
		logger.Debug(ctx, "email rejected", zap.String("reason", string(res.Reason)))
	}

	return FormResult{Errors: []FieldError{{Field: EmailField, Message: msg}}}
}
