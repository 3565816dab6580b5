package dto

import "github.com/talenttune/talenttune-api/internal/models"

// UserCreateRequest is the payload for administrator-driven user creation.
type UserCreateRequest struct {
	Name     string `json:"name" validate:"required,min=1"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
	NIP      string `json:"nip" validate:"omitempty,max=64"`
	Role     string `json:"role" validate:"omitempty"`
	Jabatan  string `json:"jabatan" validate:"omitempty,max=255"`
	Bidang   string `json:"bidang" validate:"omitempty,max=255"`
}

// UserUpdateRequest is a partial update; nil fields are left untouched.
type UserUpdateRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=2"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=6"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
	NIP      *string `json:"nip" validate:"omitempty,max=64"`
	Role     *string `json:"role" validate:"omitempty"`
	Jabatan  *string `json:"jabatan" validate:"omitempty,max=255"`
	Bidang   *string `json:"bidang" validate:"omitempty,max=255"`
}

// Empty reports whether the update carries no changes at all.
func (r UserUpdateRequest) Empty() bool {
	return r.Name == nil && r.Email == nil && r.Password == nil &&
		r.Phone == nil && r.NIP == nil && r.Role == nil &&
		r.Jabatan == nil && r.Bidang == nil
}

// UserResponse is the public profile shape; it never carries the password hash.
type UserResponse struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	NIP     string `json:"nip,omitempty"`
	Role    string `json:"role"`
	Jabatan string `json:"jabatan,omitempty"`
	Bidang  string `json:"bidang,omitempty"`
}

// NewUserResponse maps a user model to its public shape.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		Phone:   user.Phone,
		NIP:     user.NIP,
		Role:    user.Role.String(),
		Jabatan: user.Jabatan,
		Bidang:  user.Bidang,
	}
}

// NewUserResponseSlice maps a slice of users.
func NewUserResponseSlice(users []models.User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, NewUserResponse(user))
	}
	return responses
}
