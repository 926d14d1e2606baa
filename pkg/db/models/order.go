package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is the header of a completed sale. TotalAmount always equals the sum
// of its line items' quantity times price at purchase.
type Order struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID  uuid.UUID       `gorm:"column:customer_id;type:uuid;not null;index"`
	CreatedBy   *uuid.UUID      `gorm:"column:created_by;type:uuid"`
	TotalAmount decimal.Decimal `gorm:"column:total_amount;type:numeric(15,2);not null"`
	LineItems   []OrderLineItem `gorm:"foreignKey:OrderID"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}
