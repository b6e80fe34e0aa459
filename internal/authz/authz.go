// Package authz decides whether a caller may trigger a refresh of the
// disposable domain list. Only service-account clients presenting a bearer
// token that grants the realm administrator role are admitted; the decision is
// re-derived from the raw token on every request and never from session state.
package authz

import (
	"context"
	"strings"

	"mailguard/pkg/domain"
	"mailguard/pkg/logger"
	"mailguard/pkg/token"

	"go.uber.org/zap"
)

const (
	// DefaultAdminClient is the client whose role grants are inspected.
	DefaultAdminClient = "realm-management"
	// DefaultAdminRole is the role required on DefaultAdminClient.
	DefaultAdminRole = "realm-admin"

	bearerPrefix = "bearer "
)

// Identity is a caller whose credential has already been verified.
type Identity struct {
	// Subject is the verified subject of the credential.
	Subject string
	// ClientID is the non-secret identifier of the calling client.
	ClientID string
}

// Transport carries the parts of the transport-level request the rules read.
type Transport struct {
	// Authorization is the raw value of the Authorization header.
	Authorization string
}

// Request is the input of Evaluate. A nil Identity means the caller is not
// authenticated; a nil Transport means the request context was unavailable.
type Request struct {
	Identity  *Identity
	Transport *Transport
}

// TokenVerifier turns a raw bearer token into verified claims.
//
//go:generate mockgen -package mockauthz -source=authz.go -destination=mock/mockauthz.go *
type TokenVerifier interface {
	Verify(raw string) (*token.Claims, error)
}

// ClientRegistry knows which clients are configured as service accounts.
type ClientRegistry interface {
	IsServiceAccount(clientID string) bool
}

// StaticClients is a ClientRegistry backed by a fixed list of client ids.
type StaticClients map[string]struct{}

// NewStaticClients returns a registry containing ids.
func NewStaticClients(ids ...string) StaticClients {
	s := make(StaticClients, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			s[id] = struct{}{}
		}
	}

	return s
}

// IsServiceAccount implements ClientRegistry.
func (s StaticClients) IsServiceAccount(clientID string) bool {
	_, ok := s[clientID]

	return ok
}

// Options configure the role requirement of a Gate.
type Options struct {
	// AdminClient is the resource_access key inspected in the token.
	AdminClient string
	// AdminRole is the role that must be granted on AdminClient.
	AdminRole string
}

// Gate evaluates refresh requests.
type Gate struct {
	verifier TokenVerifier
	clients  ClientRegistry
	options  Options
}

// New returns a Gate. Empty option fields fall back to the defaults.
func New(verifier TokenVerifier, clients ClientRegistry, options Options) *Gate {
	if options.AdminClient == "" {
		options.AdminClient = DefaultAdminClient
	}
	if options.AdminRole == "" {
		options.AdminRole = DefaultAdminRole
	}

	return &Gate{verifier: verifier, clients: clients, options: options}
}

// Evaluate runs the checks in order and stops at the first unmet condition:
//  1. a verified identity must be present
//  2. the client must be a service account, and the transport context must be available
//  3. a non-empty bearer token must be present in the Authorization header
//  4. the token must grant AdminRole on AdminClient
//
// Every denial is logged with its reason and the caller's client id.
func (g *Gate) Evaluate(ctx context.Context, req Request) domain.AuthorizationDecision {
	decision, clientID := g.evaluate(req)
	if !decision.Admitted {
		logger.Warn(ctx, "Unauthorized attempt to refresh disposable email domains",
			zap.String("reason", string(decision.Reason)),
			zap.String("client_id", clientID))
	}

	return decision
}

func (g *Gate) evaluate(req Request) (domain.AuthorizationDecision, string) {
	if req.Identity == nil {
		return domain.Deny(domain.DenyNotAuthenticated), ""
	}
	clientID := req.Identity.ClientID

	if !g.clients.IsServiceAccount(clientID) {
		return domain.Deny(domain.DenyNotServiceAccount), clientID
	}
	if req.Transport == nil {
		return domain.Deny(domain.DenyMalformedRequest), clientID
	}

	raw, ok := BearerToken(req.Transport.Authorization)
	if !ok {
		return domain.Deny(domain.DenyMissingToken), clientID
	}

	claims, err := g.verifier.Verify(raw)
	if err != nil {
		return domain.Deny(domain.DenyNotAuthenticated), clientID
	}
	if !RoleGranted(claims, g.options.AdminClient, g.options.AdminRole) {
		return domain.Deny(domain.DenyInsufficientRole), clientID
	}

	return domain.Admit(), clientID
}

// BearerToken extracts the token from an Authorization header value. The
// scheme is matched case-insensitively; ok is false when the header is empty,
// uses another scheme or carries an empty token.
func BearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	raw := strings.TrimSpace(header[len(bearerPrefix):])

	return raw, raw != ""
}

// RoleGranted reports whether claims grant role on client through resource_access.
func RoleGranted(claims *token.Claims, client string, role string) bool {
	if claims == nil || claims.ResourceAccess == nil {
		return false
	}
	access, ok := claims.ResourceAccess[client]
	if !ok {
		return false
	}

	return access.HasRole(role)
}
