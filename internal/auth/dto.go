package auth

import (
	"time"

	"github.com/angelmondragon/posadmin-backend/internal/users"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse contains the access token and the authenticated user.
type LoginResponse struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	ExpiresAt   time.Time      `json:"expires_at"`
	User        *users.UserDTO `json:"user"`
}

// RegisterRequest contains the payload required to create a staff account.
type RegisterRequest struct {
	FullName    string     `json:"full_name" validate:"required,max=120"`
	Username    string     `json:"username" validate:"required,min=3,max=50"`
	Password    string     `json:"password" validate:"required,min=8"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Address     *string    `json:"address,omitempty"`
}
