package ports

import (
	"context"

	"github.com/aueb-cf/users-api/internal/core/domain"
)

// UserRepository defines persistence operations for users.
// Lookups that match nothing return domain.ErrUserNotFound; a username clash
// on Create or Update returns domain.ErrUserExists.
type UserRepository interface {
	List(ctx context.Context) ([]*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// Update applies patch and returns the user as stored afterwards.
	Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}

// UserCache is a read-through cache in front of UserRepository.FindByID.
// Get returns (nil, nil) on a miss.
type UserCache interface {
	Get(ctx context.Context, id string) (*domain.User, error)
	Set(ctx context.Context, user *domain.User) error
	Invalidate(ctx context.Context, id string) error
}
