package stats

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/posadmin-backend/pkg/db/models"
)

// Repository runs the dashboard aggregate queries.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Count(ctx context.Context, model any) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(model).Count(&n).Error
	return n, err
}

type orderTotals struct {
	Orders  int64
	Revenue decimal.NullDecimal
}

// OrderTotals returns the number of orders and their summed totals created
// at or after since. A zero since covers every order.
func (r *Repository) OrderTotals(ctx context.Context, since time.Time) (int64, decimal.Decimal, error) {
	qb := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("COUNT(*) AS orders, SUM(total_amount) AS revenue")
	if !since.IsZero() {
		qb = qb.Where("created_at >= ?", since)
	}
	var totals orderTotals
	if err := qb.Scan(&totals).Error; err != nil {
		return 0, decimal.Zero, err
	}
	revenue := decimal.Zero
	if totals.Revenue.Valid {
		revenue = totals.Revenue.Decimal
	}
	return totals.Orders, revenue, nil
}

// LowStock lists products with 0 < stock < threshold, lowest first.
func (r *Repository) LowStock(ctx context.Context, threshold int) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("stock_quantity > 0 AND stock_quantity < ?", threshold).
		Order("stock_quantity ASC").
		Order("name ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) OutOfStock(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("stock_quantity = 0").
		Order("name ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) FindCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var c models.Customer
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// CustomerOrders returns every order for the customer, newest first, with
// line items and product names.
func (r *Repository) CustomerOrders(ctx context.Context, customerID uuid.UUID) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Preload("LineItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("LineItems.Product").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	return rows, err
}
