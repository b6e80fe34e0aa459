// Package token verifies and issues the RS256 access tokens presented to the
// admin endpoints. Verification yields the parsed claims consumed by the
// authorization rules; issuing is used by the CLI and tests.
package token

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for tokens that fail parsing, signature or
// time-based validation.
var ErrInvalidToken = errors.New("invalid token")

// Access lists the roles granted to a token for one client.
type Access struct {
	Roles []string `json:"roles"`
}

// HasRole reports whether role is among the granted roles.
func (a *Access) HasRole(role string) bool {
	if a == nil {
		return false
	}

	return slices.Contains(a.Roles, role)
}

// Claims are the access token claims. ResourceAccess maps a client identifier
// to the roles granted on that client.
type Claims struct {
	// AuthorizedParty is the client the token was issued to.
	AuthorizedParty string `json:"azp,omitempty"`
	// ClientID is set by some issuers for client-credential grants instead of azp.
	ClientID string `json:"client_id,omitempty"`
	// ResourceAccess holds per-client role grants.
	ResourceAccess map[string]Access `json:"resource_access,omitempty"`

	jwt.RegisteredClaims
}

// Client returns the identifier of the client the token was issued to.
func (c *Claims) Client() string {
	if c.AuthorizedParty != "" {
		return c.AuthorizedParty
	}

	return c.ClientID
}

// Verifier validates RS256 tokens against a single public key.
type Verifier struct {
	parser *jwt.Parser
	key    any
}

// VerifierOptions configure a Verifier.
type VerifierOptions struct {
	// PublicKey is the PEM encoded RSA public key used to check signatures.
	PublicKey string
	// Issuer, when set, must match the iss claim.
	Issuer string
	// Leeway is the allowed clock skew for exp/nbf/iat checks.
	Leeway time.Duration
}

// NewVerifier parses the public key and returns a Verifier.
func NewVerifier(opts VerifierOptions) (*Verifier, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(opts.PublicKey))
	if err != nil {
		return nil, fmt.Errorf("could not parse RSA public key: %w", err)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(opts.Leeway),
	}
	if opts.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(opts.Issuer))
	}

	return &Verifier{
		parser: jwt.NewParser(parserOpts...),
		key:    key,
	}, nil
}

// Verify parses raw, checks its signature and time claims and returns the claims.
// All failures wrap ErrInvalidToken.
func (v *Verifier) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := v.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !tkn.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
