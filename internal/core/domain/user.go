package domain

import "time"

// RoleAdmin gates destructive user operations.
const RoleAdmin = "ADMIN"

// Address is the optional postal address of a user.
type Address struct {
	Area   string `json:"area,omitempty"`
	Street string `json:"street,omitempty"`
	Number string `json:"number,omitempty"`
}

// Phone is one labelled phone number ("mobile", "home", ...).
type Phone struct {
	Type   string `json:"type,omitempty"`
	Number string `json:"number"`
}

// User models an account managed by the service.
// PasswordHash always holds a bcrypt hash once the user has been stored.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Firstname    string    `json:"firstname,omitempty"`
	Lastname     string    `json:"lastname,omitempty"`
	Email        string    `json:"email,omitempty"`
	Address      *Address  `json:"address,omitempty"`
	Phones       []Phone   `json:"phone,omitempty"`
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserPatch describes a partial update. Nil fields are left untouched.
type UserPatch struct {
	Username     *string
	PasswordHash *string
	Firstname    *string
	Lastname     *string
	Email        *string
	Address      *Address
	Phones       *[]Phone
	Roles        *[]string
}

func hasRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
