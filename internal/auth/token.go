// Package auth verifies bearer credentials issued by the platform backend.
// Tokens are consumed here, never issued.
package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mentorhub/signaling/internal/domain"
)

var (
	// ErrInvalidToken is returned when a token is missing, malformed, expired,
	// or signed with the wrong key.
	ErrInvalidToken = errors.New("invalid token")
)

// Claims holds the subset of the platform's access-token claims we need.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid,omitempty"`
}

// Verifier checks HS256 access tokens against the shared platform secret.
type Verifier struct {
	secret   []byte
	issuer   string
	audience string
}

func NewVerifier(secret, issuer, audience string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer, audience: audience}
}

// Verify parses and validates the token and extracts the user identity.
// The uid claim wins; sub is the fallback.
func (v *Verifier) Verify(token string) (domain.UserID, error) {
	if token == "" {
		return "", ErrInvalidToken
	}

	var claims Claims
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return "", ErrInvalidToken
	}

	uid := claims.UserID
	if uid == "" {
		uid = claims.Subject
	}
	if uid == "" || len(uid) > domain.MaxUserIDLen {
		return "", ErrInvalidToken
	}
	return domain.UserID(uid), nil
}
