package dto

// LoginRequest carries the credentials posted to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SessionUser is the identity slice exposed to the client after login.
type SessionUser struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	Name  string `json:"name"`
}

// LoginResponse is the login success payload.
type LoginResponse struct {
	Success bool        `json:"success"`
	User    SessionUser `json:"user"`
}
