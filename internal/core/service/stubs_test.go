package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aueb-cf/users-api/internal/core/domain"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// In-memory stub repository
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users   map[string]*domain.User // keyed by ID
	nextID  int
	findErr error // if set, every lookup returns this error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Roles = append([]string(nil), u.Roles...)
	return &clone
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	return out, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == user.Username {
			return nil, domain.ErrUserExists
		}
	}
	r.nextID++
	stored := cloneUser(user)
	stored.ID = fmt.Sprintf("%024x", r.nextID)
	r.users[stored.ID] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) Update(_ context.Context, id string, p domain.UserPatch) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	if p.Firstname != nil {
		u.Firstname = *p.Firstname
	}
	if p.Lastname != nil {
		u.Lastname = *p.Lastname
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Address != nil {
		u.Address = p.Address
	}
	if p.Phones != nil {
		u.Phones = *p.Phones
	}
	if p.Roles != nil {
		u.Roles = *p.Roles
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

// ---------------------------------------------------------------------------
// Hasher / token stubs
// ---------------------------------------------------------------------------

// prefixHasher "hashes" by prefixing; it counts comparisons so tests can see
// that both login failure paths pay for one.
type prefixHasher struct {
	compares int
}

func (h *prefixHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (h *prefixHasher) Compare(hash, password string) error {
	h.compares++
	if hash != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type stubIssuer struct {
	last domain.Claims
	err  error
}

func (s *stubIssuer) Issue(c domain.Claims) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.last = c
	return "token-for-" + c.Username + ":" + strings.Join(c.Roles, ","), nil
}

// ---------------------------------------------------------------------------
// Cache stub
// ---------------------------------------------------------------------------

type stubCache struct {
	items       map[string]*domain.User
	gets        int
	invalidated []string
	getErr      error
}

func newStubCache() *stubCache {
	return &stubCache{items: make(map[string]*domain.User)}
}

func (c *stubCache) Get(_ context.Context, id string) (*domain.User, error) {
	c.gets++
	if c.getErr != nil {
		return nil, c.getErr
	}
	return cloneUser(c.items[id]), nil
}

func (c *stubCache) Set(_ context.Context, u *domain.User) error {
	c.items[u.ID] = cloneUser(u)
	return nil
}

func (c *stubCache) Invalidate(_ context.Context, id string) error {
	delete(c.items, id)
	c.invalidated = append(c.invalidated, id)
	return nil
}
