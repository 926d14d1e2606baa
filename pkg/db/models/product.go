package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/posadmin-backend/pkg/enums"
)

// Product is a sellable catalog entry with its on-hand stock.
type Product struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	Name          string              `gorm:"column:name;not null"`
	Description   *string             `gorm:"column:description"`
	Price         decimal.Decimal     `gorm:"column:price;type:numeric(15,2);not null"`
	StockQuantity int                 `gorm:"column:stock_quantity;not null;default:0;check:chk_products_stock_quantity,stock_quantity >= 0"`
	Status        enums.ProductStatus `gorm:"column:status;type:text;not null;default:'active'"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	if p.Status == "" {
		p.Status = enums.ProductStatusActive
	}
	return nil
}

// IsSellable reports whether the product may appear on a new order.
func (p Product) IsSellable() bool {
	return p.Status == enums.ProductStatusActive
}
