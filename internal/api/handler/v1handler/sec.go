package v1handler

import (
	"net/http"

	"mailguard/internal/authz"
	"mailguard/pkg/domain"
)

// Authenticator resolves the verified caller of a request.
type Authenticator interface {
	// Identify returns nil when the request carries no valid credential.
	Identify(r *http.Request) *authz.Identity
}

// SecHandler authenticates callers from a bearer token in the Authorization
// header or, failing that, from the session cookie.
type SecHandler struct {
	verifier      authz.TokenVerifier
	sessionCookie string
}

func NewSecHandler(verifier authz.TokenVerifier, sessionCookie string) *SecHandler {
	return &SecHandler{verifier: verifier, sessionCookie: sessionCookie}
}

var _ Authenticator = (*SecHandler)(nil)

func (s *SecHandler) Identify(r *http.Request) *authz.Identity {
	if raw, ok := authz.BearerToken(r.Header.Get("Authorization")); ok {
		if id := s.identify(raw); id != nil {
			return id
		}
	}
	if s.sessionCookie == "" {
		return nil
	}
	c, err := r.Cookie(s.sessionCookie)
	if err != nil || c.Value == "" {
		return nil
	}

	return s.identify(c.Value)
}

func (s *SecHandler) identify(raw string) *authz.Identity {
	claims, err := s.verifier.Verify(raw)
	if err != nil {
		return nil
	}

	return &authz.Identity{Subject: claims.Subject, ClientID: claims.Client()}
}

// transportOf returns the transport context read by the authorization rules,
// or nil when the Authorization header is ambiguous.
func transportOf(r *http.Request) *authz.Transport {
	values := r.Header.Values("Authorization")
	if len(values) > 1 {
		return nil
	}

	return &authz.Transport{Authorization: r.Header.Get("Authorization")}
}

// authorize identifies the caller and evaluates the request against the gate.
func (h *Handler) authorize(r *http.Request) (*authz.Identity, domain.AuthorizationDecision) {
	id := h.deps.Authenticator.Identify(r)

	return id, h.deps.Gate.Evaluate(r.Context(), authz.Request{Identity: id, Transport: transportOf(r)})
}
