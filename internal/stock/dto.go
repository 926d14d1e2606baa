package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/posadmin-backend/pkg/db/models"
	"github.com/angelmondragon/posadmin-backend/pkg/enums"
)

// ItemInput is one received product line.
type ItemInput struct {
	ProductID uuid.UUID       `json:"product_id" validate:"required"`
	Quantity  int             `json:"quantity" validate:"required,gt=0"`
	CostPrice decimal.Decimal `json:"cost_price"`
}

type CreateEntryInput struct {
	Note        *string
	Items       []ItemInput
	ActorUserID uuid.UUID
	ActorRole   enums.UserRole
}

type EntryDTO struct {
	ID        uuid.UUID       `json:"id"`
	Code      string          `json:"code"`
	Note      *string         `json:"note,omitempty"`
	CreatedBy *uuid.UUID      `json:"created_by,omitempty"`
	Items     []ItemDTO       `json:"items"`
	TotalCost decimal.Decimal `json:"total_cost"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type ItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	CostPrice   decimal.Decimal `json:"cost_price"`
}

type EntryList struct {
	Entries    []EntryDTO `json:"entries"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

func newEntryDTO(entry *models.StockEntry) *EntryDTO {
	dto := &EntryDTO{
		ID:        entry.ID,
		Code:      entry.Code,
		Note:      entry.Note,
		CreatedBy: entry.CreatedBy,
		Items:     make([]ItemDTO, 0, len(entry.Items)),
		TotalCost: decimal.Zero,
		CreatedAt: entry.CreatedAt,
		UpdatedAt: entry.UpdatedAt,
	}
	for _, item := range entry.Items {
		out := ItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			CostPrice: item.CostPrice,
		}
		if item.Product != nil {
			out.ProductName = item.Product.Name
		}
		dto.Items = append(dto.Items, out)
		dto.TotalCost = dto.TotalCost.Add(item.CostPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return dto
}
