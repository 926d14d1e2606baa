package outbox

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderCreatedEvent is published once per committed order.
type OrderCreatedEvent struct {
	OrderID     uuid.UUID          `json:"orderId"`
	CustomerID  uuid.UUID          `json:"customerId"`
	TotalAmount decimal.Decimal    `json:"totalAmount"`
	Lines       []OrderCreatedLine `json:"lines"`
}

// OrderCreatedLine mirrors one persisted order line.
type OrderCreatedLine struct {
	ProductID       uuid.UUID       `json:"productId"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"priceAtPurchase"`
}

// StockReceivedEvent is published once per stock-in receipt.
type StockReceivedEvent struct {
	StockEntryID uuid.UUID           `json:"stockEntryId"`
	Code         string              `json:"code"`
	Items        []StockReceivedItem `json:"items"`
}

// StockReceivedItem reports the stock level after the receipt was applied.
type StockReceivedItem struct {
	ProductID     uuid.UUID       `json:"productId"`
	Quantity      int             `json:"quantity"`
	CostPrice     decimal.Decimal `json:"costPrice"`
	StockQuantity int             `json:"stockQuantity"`
}
