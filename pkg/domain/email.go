package domain

// RejectReason explains why an email was rejected.
type RejectReason string

const (
	// RejectEmailRequired indicates the email was empty or not a syntactically valid address.
	RejectEmailRequired RejectReason = "EMAIL_REQUIRED"
	// RejectDisposableDomain indicates the email domain is a known disposable domain.
	RejectDisposableDomain RejectReason = "DISPOSABLE_DOMAIN"
)

// EmailCheckResult is the outcome of validating a single email address.
type EmailCheckResult struct {
	// Accepted is true when the email may be used.
	Accepted bool
	// Reason is set when Accepted is false.
	Reason RejectReason
}

// Accepted returns an accepting result.
func Accepted() EmailCheckResult {
	return EmailCheckResult{Accepted: true}
}

// Rejected returns a rejecting result for the given reason.
func Rejected(reason RejectReason) EmailCheckResult {
	return EmailCheckResult{Reason: reason}
}
