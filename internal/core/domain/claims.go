package domain

import "time"

// Claims is the identity carried by a verified bearer token.
// It is rebuilt from the token on every request and never persisted.
type Claims struct {
	Subject   string
	Username  string
	Email     string
	Roles     []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// ClaimsFor builds the claims a login issues for u.
func ClaimsFor(u *User) Claims {
	roles := make([]string, len(u.Roles))
	copy(roles, u.Roles)
	return Claims{
		Subject:  u.ID,
		Username: u.Username,
		Email:    u.Email,
		Roles:    roles,
	}
}

// HasRole reports whether the token grants role.
func (c *Claims) HasRole(role string) bool {
	return hasRole(c.Roles, role)
}
