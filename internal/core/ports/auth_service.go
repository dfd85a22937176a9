package ports

import (
	"context"

	"github.com/aueb-cf/users-api/internal/core/domain"
)

type AuthService interface {
	// VerifyCredentials answers domain.ErrInvalidCredentials for an unknown
	// username and for a wrong password alike.
	VerifyCredentials(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}
