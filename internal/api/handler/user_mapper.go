package handler

import (
	"github.com/aueb-cf/users-api/internal/core/domain"
	"github.com/aueb-cf/users-api/internal/core/ports"
)

// --- Request → Service input ---

func toCreateUserInput(req *CreateUserRequest) ports.CreateUserInput {
	return ports.CreateUserInput{
		Username:  req.Username,
		Password:  req.Password,
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Email:     req.Email,
		Address:   toAddress(req.Address),
		Phones:    toPhones(req.Phone),
		Roles:     []string(req.Roles),
	}
}

func toUpdateUserInput(req *UpdateUserRequest) ports.UpdateUserInput {
	in := ports.UpdateUserInput{
		Username:  req.Username,
		Password:  req.Password,
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Email:     req.Email,
		Address:   toAddress(req.Address),
	}
	if req.Phone != nil {
		phones := toPhones(*req.Phone)
		if phones == nil {
			phones = []domain.Phone{}
		}
		in.Phones = &phones
	}
	if req.Roles != nil {
		roles := []string(*req.Roles)
		if roles == nil {
			roles = []string{}
		}
		in.Roles = &roles
	}
	return in
}

func toAddress(a *AddressRequest) *domain.Address {
	if a == nil {
		return nil
	}
	return &domain.Address{Area: a.Area, Street: a.Street, Number: a.Number}
}

func toPhones(in []PhoneRequest) []domain.Phone {
	if in == nil {
		return nil
	}
	out := make([]domain.Phone, 0, len(in))
	for _, p := range in {
		out = append(out, domain.Phone{Type: p.Type, Number: p.Number})
	}
	return out
}

// --- Domain → Response ---

func toUserResponse(u *domain.User) UserResponse {
	resp := UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		Email:     u.Email,
		Phone:     make([]PhoneResponse, 0, len(u.Phones)),
		Roles:     u.Roles,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if resp.Roles == nil {
		resp.Roles = []string{}
	}
	if u.Address != nil {
		resp.Address = &AddressResponse{Area: u.Address.Area, Street: u.Address.Street, Number: u.Address.Number}
	}
	for _, p := range u.Phones {
		resp.Phone = append(resp.Phone, PhoneResponse{Type: p.Type, Number: p.Number})
	}
	return resp
}

func toUserResponses(users []*domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}
