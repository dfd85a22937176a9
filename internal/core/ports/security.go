package ports

import "github.com/aueb-cf/users-api/internal/core/domain"

// PasswordHasher hashes and checks passwords with a one-way salted function.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare returns nil when password matches hash.
	Compare(hash, password string) error
}

// TokenIssuer signs identity claims into a bearer token.
type TokenIssuer interface {
	Issue(claims domain.Claims) (string, error)
}

// TokenVerifier checks a bearer token and decodes its claims. It fails with
// domain.ErrTokenExpired or domain.ErrTokenInvalid.
type TokenVerifier interface {
	Verify(token string) (*domain.Claims, error)
}
