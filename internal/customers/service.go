package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/posadmin-backend/pkg/db"
	"github.com/angelmondragon/posadmin-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/posadmin-backend/pkg/errors"
	"github.com/angelmondragon/posadmin-backend/pkg/pagination"
)

const phoneUniqueConstraint = "customers_phone_key"

// Service manages the customer book.
type Service interface {
	Create(ctx context.Context, input CreateCustomerInput) (*CustomerDTO, error)
	List(ctx context.Context, input ListCustomersInput) (*CustomerList, error)
	Get(ctx context.Context, id uuid.UUID) (*CustomerDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateCustomerInput) (*CustomerDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type service struct {
	repo     *Repository
	tx       *db.Client
	validate *validator.Validate
}

// NewService builds the customer service.
func NewService(repo *Repository, tx *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, tx: tx, validate: validator.New()}, nil
}

func (s *service) Create(ctx context.Context, input CreateCustomerInput) (*CustomerDTO, error) {
	customer := &models.Customer{
		Name:    strings.TrimSpace(input.Name),
		Phone:   strings.TrimSpace(input.Phone),
		Email:   trimOptional(input.Email),
		Address: trimOptional(input.Address),
	}
	if err := s.validateCustomer(customer); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, mapWriteError(err, "db: insert customer")
	}
	return FromModel(customer), nil
}

func (s *service) List(ctx context.Context, input ListCustomersInput) (*CustomerList, error) {
	if _, err := pagination.ParseCursor(input.Pagination.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, next, err := s.repo.List(ctx, input.Pagination, input.Query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list customers")
	}
	list := &CustomerList{Customers: make([]CustomerDTO, 0, len(rows)), NextCursor: next}
	for i := range rows {
		list.Customers = append(list.Customers, *FromModel(&rows[i]))
	}
	return list, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*CustomerDTO, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err)
	}
	return FromModel(customer), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateCustomerInput) (*CustomerDTO, error) {
	var updated *models.Customer
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		customer, err := repo.FindByID(ctx, id)
		if err != nil {
			return mapLookupError(err)
		}
		if input.Name != nil {
			customer.Name = strings.TrimSpace(*input.Name)
		}
		if input.Phone != nil {
			customer.Phone = strings.TrimSpace(*input.Phone)
		}
		if input.Email != nil {
			customer.Email = trimOptional(input.Email)
		}
		if input.Address != nil {
			customer.Address = trimOptional(input.Address)
		}
		if err := s.validateCustomer(customer); err != nil {
			return err
		}
		if err := repo.Save(ctx, customer); err != nil {
			return mapWriteError(err, "db: update customer")
		}
		updated = customer
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(updated), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindByID(ctx, id); err != nil {
			return mapLookupError(err)
		}
		orders, err := repo.CountOrders(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count customer orders")
		}
		if orders > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "customer has orders and cannot be deleted")
		}
		if err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete customer")
		}
		return nil
	})
}

func (s *service) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	ok, err := s.repo.Exists(ctx, id)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check customer")
	}
	return ok, nil
}

func (s *service) validateCustomer(c *models.Customer) error {
	if c.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if c.Phone == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "phone is required")
	}
	if err := s.validate.Var(c.Phone, "max=20,e164|numeric"); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "phone must be digits, optionally in E.164 form")
	}
	if c.Email != nil {
		if err := s.validate.Var(*c.Email, "email"); err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "email is invalid")
		}
	}
	return nil
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func mapLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load customer")
}

func mapWriteError(err error, msg string) error {
	if db.IsUniqueViolation(err, phoneUniqueConstraint) {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "phone already registered")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}
