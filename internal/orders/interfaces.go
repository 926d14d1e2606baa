package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	product "github.com/angelmondragon/posadmin-backend/internal/products"
	"github.com/angelmondragon/posadmin-backend/pkg/db/models"
	"github.com/angelmondragon/posadmin-backend/pkg/outbox"
	"github.com/angelmondragon/posadmin-backend/pkg/pagination"
)

// Repository defines persistence operations for the order tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateLineItems(ctx context.Context, items []models.OrderLineItem) error
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Order, string, error)
}

// ProductStore is the transaction-scoped slice of the catalog the placement
// algorithm needs.
type ProductStore interface {
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Product, error)
	UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error
}

// ProductStoreFactory binds a ProductStore to a transaction.
type ProductStoreFactory func(tx *gorm.DB) ProductStore

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ListFilters narrows the order list.
type ListFilters struct {
	CustomerID *uuid.UUID
	From       *time.Time
	To         *time.Time
}

// ProductStoresFrom adapts the catalog repository to a ProductStoreFactory.
func ProductStoresFrom(repo *product.Repository) ProductStoreFactory {
	return func(tx *gorm.DB) ProductStore {
		return repo.WithTx(tx)
	}
}
