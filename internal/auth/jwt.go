// Package auth verifies Supabase access tokens and resolves the signed-in user.
package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/cuongbtq/fieldservice-be/internal/domain"
)

// SupabaseClaims are the claims Supabase puts on its access tokens
type SupabaseClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Verifier validates HS256 tokens signed with the project's JWT secret
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
	}
}

// Verify parses the token and returns its claims. Every failure wraps domain.ErrUnauthorized.
func (v *Verifier) Verify(tokenString string) (*SupabaseClaims, error) {
	if tokenString == "" {
		return nil, errors.Wrap(domain.ErrUnauthorized, "missing token")
	}

	claims := &SupabaseClaims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, errors.Wrapf(domain.ErrUnauthorized, "invalid token: %v", err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errors.Wrap(domain.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}
