// Package auth verifies bearer credentials issued by the platform's auth service
// and mints equivalent tokens for local development.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kailas-cloud/semdocs/internal/domain"
)

// DefaultAudience is the audience the platform stamps on signed-in user tokens.
const DefaultAudience = "authenticated"

// Client-facing authentication messages.
const (
	msgMissingHeader = "Missing authorization header"
	msgInvalidToken  = "Invalid authentication token"
)

// Claims is the subset of platform JWT claims the service relies on.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Verifier validates HS256 bearer tokens and yields the caller identity.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewVerifier creates a verifier. Empty audience or issuer disables that check.
func NewVerifier(secret, audience, issuer string) *Verifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30 * time.Second),
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	return &Verifier{secret: []byte(secret), parser: jwt.NewParser(opts...)}
}

// Verify parses and validates a raw token. Any failure is a domain.ErrAuthentication.
func (v *Verifier) Verify(raw string) (domain.Identity, error) {
	claims := &Claims{}
	_, err := v.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %w", domain.Authenticationf(msgInvalidToken), err)
	}
	if claims.Subject == "" {
		return domain.Identity{}, domain.Authenticationf(msgInvalidToken)
	}
	return domain.Identity{UserID: claims.Subject, Email: claims.Email, Role: claims.Role}, nil
}

// Authenticate extracts and verifies the bearer token of r.
func (v *Verifier) Authenticate(r *http.Request) (domain.Identity, error) {
	raw, err := FromRequest(r)
	if err != nil {
		return domain.Identity{}, err
	}
	return v.Verify(raw)
}

// FromRequest returns the bearer token from the Authorization header.
func FromRequest(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", domain.Authenticationf(msgMissingHeader)
	}

	const bearerPrefix = "Bearer "
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", domain.Authenticationf(msgInvalidToken)
	}
	return strings.TrimSpace(header[len(bearerPrefix):]), nil
}

// Issuer mints HS256 tokens shaped like the platform's, for development and tests.
type Issuer struct {
	secret   []byte
	audience string
	issuer   string
	now      func() time.Time
}

// NewIssuer creates a token issuer sharing the verifier's secret.
func NewIssuer(secret, audience, issuer string) *Issuer {
	return &Issuer{secret: []byte(secret), audience: audience, issuer: issuer, now: time.Now}
}

// Issue mints a token for identity valid for ttl.
func (i *Issuer) Issue(id domain.Identity, ttl time.Duration) (string, error) {
	if id.UserID == "" {
		return "", errors.New("subject is required")
	}
	if ttl <= 0 {
		return "", errors.New("ttl must be positive")
	}

	now := i.now()
	claims := Claims{
		Email: id.Email,
		Role:  id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if i.audience != "" {
		claims.Audience = jwt.ClaimStrings{i.audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
