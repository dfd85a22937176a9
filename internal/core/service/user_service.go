package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aueb-cf/users-api/internal/core/domain"
	"github.com/aueb-cf/users-api/internal/core/ports"
)

type UserService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	cache  ports.UserCache
	logger zerolog.Logger
}

// NewUserService wires the user use cases. cache may be nil, in which case
// every read goes to the repository.
func NewUserService(repo ports.UserRepository, hasher ports.PasswordHasher, cache ports.UserCache, logger zerolog.Logger) *UserService {
	if cache == nil {
		cache = noopCache{}
	}
	return &UserService{repo: repo, hasher: hasher, cache: cache, logger: logger}
}

func (s *UserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []*domain.User{}
	}
	return users, nil
}

// GetUser reads through the cache. Cache failures are logged and the
// repository answers instead.
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	id = canonicalID(id)
	cached, err := s.cache.Get(ctx, id)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", id).Msg("user cache read failed")
	} else if cached != nil {
		return cached, nil
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, user); err != nil {
		s.logger.Warn().Err(err).Str("user_id", id).Msg("user cache write failed")
	}
	return user, nil
}

// CreateUser hashes the password and stores the new user.
func (s *UserService) CreateUser(ctx context.Context, input ports.CreateUserInput) (*domain.User, error) {
	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	roles := input.Roles
	if roles == nil {
		roles = []string{}
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:     input.Username,
		PasswordHash: hash,
		Firstname:    input.Firstname,
		Lastname:     input.Lastname,
		Email:        input.Email,
		Address:      input.Address,
		Phones:       input.Phones,
		Roles:        roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("user created")
	return created, nil
}

// UpdateUser applies a partial update, re-hashing the password when one is given.
func (s *UserService) UpdateUser(ctx context.Context, id string, input ports.UpdateUserInput) (*domain.User, error) {
	id = canonicalID(id)
	patch := domain.UserPatch{
		Username:  input.Username,
		Firstname: input.Firstname,
		Lastname:  input.Lastname,
		Email:     input.Email,
		Address:   input.Address,
		Phones:    input.Phones,
		Roles:     input.Roles,
	}
	if input.Password != nil {
		hash, err := s.hasher.Hash(*input.Password)
		if err != nil {
			return nil, err
		}
		patch.PasswordHash = &hash
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	s.logger.Info().Str("user_id", id).Bool("password_changed", patch.PasswordHash != nil).Msg("user updated")
	return updated, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	id = canonicalID(id)
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, id)
	s.logger.Info().Str("user_id", id).Msg("user deleted")
	return nil
}

// EnsureUser creates input unless a user with the same username already
// exists. It reports whether a user was created. Used to seed an admin
// account at startup.
func (s *UserService) EnsureUser(ctx context.Context, input ports.CreateUserInput) (bool, error) {
	_, err := s.repo.FindByUsername(ctx, input.Username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return false, fmt.Errorf("ensure user %s: %w", input.Username, err)
	}

	if _, err := s.CreateUser(ctx, input); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return false, nil
		}
		return false, fmt.Errorf("ensure user %s: %w", input.Username, err)
	}
	return true, nil
}

func (s *UserService) invalidate(ctx context.Context, id string) {
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("user_id", id).Msg("user cache invalidation failed")
	}
}

// canonicalID lowercases a hex id so cache keys match the stored form,
// which the database accepts in either case.
func canonicalID(id string) string {
	return strings.ToLower(id)
}

type noopCache struct{}

func (noopCache) Get(context.Context, string) (*domain.User, error) { return nil, nil }
func (noopCache) Set(context.Context, *domain.User) error           { return nil }
func (noopCache) Invalidate(context.Context, string) error          { return nil }
