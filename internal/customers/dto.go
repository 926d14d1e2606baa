package customers

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/posadmin-backend/pkg/db/models"
	"github.com/angelmondragon/posadmin-backend/pkg/pagination"
)

type CustomerDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     *string   `json:"email,omitempty"`
	Address   *string   `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CustomerList struct {
	Customers  []CustomerDTO `json:"customers"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

type CreateCustomerInput struct {
	Name    string
	Phone   string
	Email   *string
	Address *string
}

// UpdateCustomerInput applies only the non-nil fields.
type UpdateCustomerInput struct {
	Name    *string
	Phone   *string
	Email   *string
	Address *string
}

type ListCustomersInput struct {
	Query      string
	Pagination pagination.Params
}

// FromModel maps a customer row to its API shape.
func FromModel(c *models.Customer) *CustomerDTO {
	if c == nil {
		return nil
	}
	return &CustomerDTO{
		ID:        c.ID,
		Name:      c.Name,
		Phone:     c.Phone,
		Email:     c.Email,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
