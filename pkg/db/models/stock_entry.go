package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StockEntry is a goods-received receipt that increments product stock.
type StockEntry struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Code      string           `gorm:"column:code;not null;uniqueIndex:stock_entries_code_key"`
	Note      *string          `gorm:"column:note"`
	CreatedBy *uuid.UUID       `gorm:"column:created_by;type:uuid"`
	Items     []StockEntryItem `gorm:"foreignKey:StockEntryID"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (e *StockEntry) BeforeCreate(*gorm.DB) error {
	ensureID(&e.ID)
	return nil
}

// StockEntryItem is one received product line.
type StockEntryItem struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	StockEntryID uuid.UUID       `gorm:"column:stock_entry_id;type:uuid;not null;index"`
	ProductID    uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index"`
	Quantity     int             `gorm:"column:quantity;not null"`
	CostPrice    decimal.Decimal `gorm:"column:cost_price;type:numeric(15,2);not null"`
	Product      *Product        `gorm:"foreignKey:ProductID"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (i *StockEntryItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}
