package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/posadmin-backend/pkg/db/models"
	"github.com/angelmondragon/posadmin-backend/pkg/enums"
	"github.com/angelmondragon/posadmin-backend/pkg/pagination"
)

// LineRequest is one requested (product, quantity) pair. Lines are processed
// in the order given and duplicates stay separate.
type LineRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

// PlaceOrderInput carries a validated placement request and its actor.
type PlaceOrderInput struct {
	CustomerID  uuid.UUID
	Lines       []LineRequest
	ActorUserID uuid.UUID
	ActorRole   enums.UserRole
}

// OrderDTO is the API representation of an order.
type OrderDTO struct {
	ID          uuid.UUID       `json:"id"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	CreatedBy   *uuid.UUID      `json:"created_by,omitempty"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	LineItems   []LineItemDTO   `json:"line_items"`
	CreatedAt   time.Time       `json:"created_at"`
}

// LineItemDTO is one persisted order line.
type LineItemDTO struct {
	ID              uuid.UUID       `json:"id"`
	ProductID       uuid.UUID       `json:"product_id"`
	ProductName     string          `json:"product_name,omitempty"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
	LineTotal       decimal.Decimal `json:"line_total"`
}

// ListOrdersInput captures filter and paging parameters.
type ListOrdersInput struct {
	Filters    ListFilters
	Pagination pagination.Params
}

// OrderList is a cursor page of orders.
type OrderList struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// InsufficientStockDetails is attached to INSUFFICIENT_STOCK errors.
type InsufficientStockDetails struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Requested   int       `json:"requested"`
	Available   int       `json:"available"`
}

// ProductUnavailableDetails is attached to PRODUCT_UNAVAILABLE errors.
type ProductUnavailableDetails struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name,omitempty"`
}

// NewOrderDTO maps an order and its preloaded lines.
func NewOrderDTO(order *models.Order) *OrderDTO {
	if order == nil {
		return nil
	}
	dto := &OrderDTO{
		ID:          order.ID,
		CustomerID:  order.CustomerID,
		CreatedBy:   order.CreatedBy,
		TotalAmount: order.TotalAmount,
		LineItems:   make([]LineItemDTO, 0, len(order.LineItems)),
		CreatedAt:   order.CreatedAt,
	}
	for _, item := range order.LineItems {
		line := LineItemDTO{
			ID:              item.ID,
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			PriceAtPurchase: item.PriceAtPurchase,
			LineTotal:       item.LineTotal(),
		}
		if item.Product != nil {
			line.ProductName = item.Product.Name
		}
		dto.LineItems = append(dto.LineItems, line)
	}
	return dto
}
