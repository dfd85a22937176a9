package handler

import (
	"bytes"
	"encoding/json"
	"time"
)

// --- Request types ---

type AddressRequest struct {
	Area   string `json:"area" validate:"max=100"`
	Street string `json:"street" validate:"max=100"`
	Number string `json:"number" validate:"max=100"`
}

type PhoneRequest struct {
	Type   string `json:"type" validate:"max=30"`
	Number string `json:"number" validate:"required,max=30"`
}

// CreateUserRequest is the body of POST /users.
type CreateUserRequest struct {
	Username  string          `json:"username" validate:"required,min=3,max=50"`
	Password  string          `json:"password" validate:"required,min=6,maxbytes=72"`
	Firstname string          `json:"firstname" validate:"max=100"`
	Lastname  string          `json:"lastname" validate:"max=100"`
	Email     string          `json:"email" validate:"omitempty,email"`
	Address   *AddressRequest `json:"address" validate:"omitempty"`
	Phone     []PhoneRequest  `json:"phone" validate:"omitempty,dive"`
	Roles     RoleList        `json:"roles" validate:"omitempty,dive,required,max=50"`
}

// UpdateUserRequest is the body of PUT /users/{id}. Absent fields are kept;
// present ones must satisfy the same rules as on create.
type UpdateUserRequest struct {
	Username  *string         `json:"username" validate:"omitnil,min=3,max=50"`
	Password  *string         `json:"password" validate:"omitnil,min=6,maxbytes=72"`
	Firstname *string         `json:"firstname" validate:"omitnil,max=100"`
	Lastname  *string         `json:"lastname" validate:"omitnil,max=100"`
	Email     *string         `json:"email" validate:"omitnil,email"`
	Address   *AddressRequest `json:"address" validate:"omitnil"`
	Phone     *[]PhoneRequest `json:"phone" validate:"omitnil,dive"`
	Roles     *RoleList       `json:"roles" validate:"omitnil,dive,required,max=50"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RoleList accepts either a single role string or an array of roles.
type RoleList []string

func (r *RoleList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		*r = RoleList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*r = many
	return nil
}

// --- Response types ---

type AddressResponse struct {
	Area   string `json:"area,omitempty"`
	Street string `json:"street,omitempty"`
	Number string `json:"number,omitempty"`
}

type PhoneResponse struct {
	Type   string `json:"type,omitempty"`
	Number string `json:"number"`
}

// UserResponse is the public view of a user. It never carries the password.
type UserResponse struct {
	ID        string           `json:"id"`
	Username  string           `json:"username"`
	Firstname string           `json:"firstname,omitempty"`
	Lastname  string           `json:"lastname,omitempty"`
	Email     string           `json:"email,omitempty"`
	Address   *AddressResponse `json:"address,omitempty"`
	Phone     []PhoneResponse  `json:"phone"`
	Roles     []string         `json:"roles"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresIn int          `json:"expires_in"`
	User      UserResponse `json:"user"`
}

// ErrorResponse documents the error envelope rendered by the API error handler.
type ErrorResponse struct {
	Message string       `json:"message"`
	Errors  []FieldIssue `json:"errors,omitempty"`
}

type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

