package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/posadmin-backend/pkg/db/models"
	"github.com/angelmondragon/posadmin-backend/pkg/enums"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID          uuid.UUID      `json:"id"`
	FullName    string         `json:"full_name"`
	Username    string         `json:"username"`
	Role        enums.UserRole `json:"role"`
	DateOfBirth *time.Time     `json:"date_of_birth,omitempty"`
	Address     *string        `json:"address,omitempty"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	FullName     string
	Username     string
	PasswordHash string
	Role         enums.UserRole
	DateOfBirth  *time.Time
	Address      *string
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:          u.ID,
		FullName:    u.FullName,
		Username:    u.Username,
		Role:        u.Role,
		DateOfBirth: u.DateOfBirth,
		Address:     u.Address,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	role := c.Role
	if role == "" {
		role = enums.UserRoleStaff
	}
	return &models.User{
		FullName:     c.FullName,
		Username:     c.Username,
		PasswordHash: c.PasswordHash,
		Role:         role,
		DateOfBirth:  c.DateOfBirth,
		Address:      c.Address,
	}
}
