package domain

// DenyReason is the closed set of reasons an AuthorizationDecision may deny a caller.
type DenyReason string

const (
	// DenyNotAuthenticated indicates no verified caller identity was present.
	DenyNotAuthenticated DenyReason = "NOT_AUTHENTICATED"
	// DenyNotServiceAccount indicates the calling client is not a service account.
	DenyNotServiceAccount DenyReason = "NOT_SERVICE_ACCOUNT"
	// DenyMalformedRequest indicates the transport context of the request was unavailable.
	DenyMalformedRequest DenyReason = "MALFORMED_REQUEST"
	// DenyMissingToken indicates the Authorization header was absent, empty or not a bearer credential.
	DenyMissingToken DenyReason = "MISSING_TOKEN"
	// DenyInsufficientRole indicates the token does not grant the administrative role.
	DenyInsufficientRole DenyReason = "INSUFFICIENT_ROLE"
)

// AuthorizationDecision is the result of evaluating a caller against the
// refresh authorization rules. The zero value denies with an empty reason.
type AuthorizationDecision struct {
	// Admitted is true when the caller may invoke the refresh operation.
	Admitted bool
	// Reason is set when Admitted is false.
	Reason DenyReason
}

// Admit returns an admitting decision.
func Admit() AuthorizationDecision {
	return AuthorizationDecision{Admitted: true}
}

// Deny returns a denying decision for the given reason.
func Deny(reason DenyReason) AuthorizationDecision {
	return AuthorizationDecision{Reason: reason}
}
