package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/posadmin-backend/internal/customers"
	"github.com/angelmondragon/posadmin-backend/internal/orders"
	"github.com/angelmondragon/posadmin-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/posadmin-backend/pkg/errors"
)

type Overview struct {
	Customers    int64           `json:"customers"`
	Products     int64           `json:"products"`
	Orders       int64           `json:"orders"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TodayOrders  int64           `json:"today_orders"`
	TodayRevenue decimal.Decimal `json:"today_revenue"`
}

type StockItem struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	StockQuantity int             `json:"stock_quantity"`
	Price         decimal.Decimal `json:"price"`
}

type Inventory struct {
	Threshold       int         `json:"threshold"`
	LowStock        []StockItem `json:"low_stock"`
	LowStockCount   int         `json:"low_stock_count"`
	OutOfStock      []StockItem `json:"out_of_stock"`
	OutOfStockCount int         `json:"out_of_stock_count"`
}

type CustomerHistory struct {
	Customer   customers.CustomerDTO `json:"customer"`
	Orders     []orders.OrderDTO     `json:"orders"`
	OrderCount int                   `json:"order_count"`
	TotalSpent decimal.Decimal       `json:"total_spent"`
}

// Service serves the dashboard.
type Service interface {
	Overview(ctx context.Context) (*Overview, error)
	Inventory(ctx context.Context, threshold int) (*Inventory, error)
	CustomerHistory(ctx context.Context, customerID uuid.UUID) (*CustomerHistory, error)
}

type service struct {
	repo             *Repository
	defaultThreshold int
	now              func() time.Time
}

// NewService builds the stats service; defaultThreshold applies when a
// caller passes a non-positive threshold.
func NewService(repo *Repository, defaultThreshold int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stats repository required")
	}
	if defaultThreshold <= 0 {
		return nil, fmt.Errorf("low stock threshold must be positive")
	}
	return &service{repo: repo, defaultThreshold: defaultThreshold, now: time.Now}, nil
}

func (s *service) Overview(ctx context.Context) (*Overview, error) {
	var out Overview
	var err error

	if out.Customers, err = s.repo.Count(ctx, &models.Customer{}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count customers")
	}
	if out.Products, err = s.repo.Count(ctx, &models.Product{}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count products")
	}
	if out.Orders, out.TotalRevenue, err = s.repo.OrderTotals(ctx, time.Time{}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: sum orders")
	}
	if out.TodayOrders, out.TodayRevenue, err = s.repo.OrderTotals(ctx, startOfDay(s.now())); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: sum today's orders")
	}
	return &out, nil
}

func (s *service) Inventory(ctx context.Context, threshold int) (*Inventory, error) {
	if threshold <= 0 {
		threshold = s.defaultThreshold
	}
	low, err := s.repo.LowStock(ctx, threshold)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: low stock")
	}
	out, err := s.repo.OutOfStock(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: out of stock")
	}
	return &Inventory{
		Threshold:       threshold,
		LowStock:        toStockItems(low),
		LowStockCount:   len(low),
		OutOfStock:      toStockItems(out),
		OutOfStockCount: len(out),
	}, nil
}

func (s *service) CustomerHistory(ctx context.Context, customerID uuid.UUID) (*CustomerHistory, error) {
	customer, err := s.repo.FindCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load customer")
	}
	rows, err := s.repo.CustomerOrders(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: customer orders")
	}

	history := &CustomerHistory{
		Customer:   *customers.FromModel(customer),
		Orders:     make([]orders.OrderDTO, 0, len(rows)),
		OrderCount: len(rows),
		TotalSpent: decimal.Zero,
	}
	for i := range rows {
		history.Orders = append(history.Orders, *orders.NewOrderDTO(&rows[i]))
		history.TotalSpent = history.TotalSpent.Add(rows[i].TotalAmount)
	}
	return history, nil
}

func toStockItems(rows []models.Product) []StockItem {
	items := make([]StockItem, 0, len(rows))
	for _, p := range rows {
		items = append(items, StockItem{ID: p.ID, Name: p.Name, StockQuantity: p.StockQuantity, Price: p.Price})
	}
	return items
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
