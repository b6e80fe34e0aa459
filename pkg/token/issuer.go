package token

import (
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Issuer signs RS256 tokens carrying client role grants.
type Issuer struct {
	key    *rsa.PrivateKey
	issuer string
	now    func() time.Time
}

// NewIssuer parses the PEM encoded RSA private key and returns an Issuer.
func NewIssuer(privateKeyPEM string, issuer string) (*Issuer, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(privateKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("could not parse RSA private key: %w", err)
	}

	return NewIssuerFromKey(key, issuer), nil
}

// NewIssuerFromKey returns an Issuer signing with key.
func NewIssuerFromKey(key *rsa.PrivateKey, issuer string) *Issuer {
	return &Issuer{key: key, issuer: issuer, now: time.Now}
}

// Grant describes the token to sign.
type Grant struct {
	// Subject is the sub claim, typically the service-account user id.
	Subject string
	// ClientID is written to azp.
	ClientID string
	// Roles maps a client identifier to the roles granted on it.
	Roles map[string][]string
	// TTL is the lifetime of the token.
	TTL time.Duration
}

// Sign returns the compact serialized token for g.
func (i *Issuer) Sign(g Grant) (string, error) {
	now := i.now()
	access := make(map[string]Access, len(g.Roles))
	for client, roles := range g.Roles {
		access[client] = Access{Roles: roles}
	}

	claims := Claims{
		AuthorizedParty: g.ClientID,
		ResourceAccess:  access,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    i.issuer,
			Subject:   g.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.TTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("could not sign JWT: %w", err)
	}

	return signed, nil
}
