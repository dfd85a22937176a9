package ports

import (
	"context"

	"github.com/aueb-cf/users-api/internal/core/domain"
)

// CreateUserInput carries the data needed to create a user. Password is plaintext.
type CreateUserInput struct {
	Username  string
	Password  string
	Firstname string
	Lastname  string
	Email     string
	Address   *domain.Address
	Phones    []domain.Phone
	Roles     []string
}

// UpdateUserInput carries a partial update. Nil fields are left untouched;
// a non-nil Password is re-hashed before it is stored.
type UpdateUserInput struct {
	Username  *string
	Password  *string
	Firstname *string
	Lastname  *string
	Email     *string
	Address   *domain.Address
	Phones    *[]domain.Phone
	Roles     *[]string
}

// UserService defines the use cases behind the /users resource.
type UserService interface {
	ListUsers(ctx context.Context) ([]*domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error)
	UpdateUser(ctx context.Context, id string, input UpdateUserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
}
