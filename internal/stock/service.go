package stock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	product "github.com/angelmondragon/posadmin-backend/internal/products"
	"github.com/angelmondragon/posadmin-backend/pkg/db"
	"github.com/angelmondragon/posadmin-backend/pkg/db/models"
	"github.com/angelmondragon/posadmin-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/posadmin-backend/pkg/errors"
	"github.com/angelmondragon/posadmin-backend/pkg/outbox"
	"github.com/angelmondragon/posadmin-backend/pkg/pagination"
)

const (
	codePrefix      = "PN"
	codeGenAttempts = 5
	codeRandomBytes = 2
	codeDateLayout  = "20060102"
)

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service records stock-in receipts.
type Service interface {
	Create(ctx context.Context, input CreateEntryInput) (*EntryDTO, error)
	List(ctx context.Context, params pagination.Params) (*EntryList, error)
	Get(ctx context.Context, id uuid.UUID) (*EntryDTO, error)
	UpdateNote(ctx context.Context, id uuid.UUID, note *string) (*EntryDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo     *Repository
	products *product.Repository
	tx       *db.Client
	outbox   outboxPublisher
	now      func() time.Time
}

// NewService wires the stock entry service.
func NewService(repo *Repository, products *product.Repository, tx *db.Client, outbox outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stock repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("db client required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:     repo,
		products: products,
		tx:       tx,
		outbox:   outbox,
		now:      time.Now,
	}, nil
}

// Create stores the receipt and adds every item's quantity to its product.
func (s *service) Create(ctx context.Context, input CreateEntryInput) (*EntryDTO, error) {
	if err := validateItems(input.Items); err != nil {
		return nil, err
	}

	var entryID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		products := s.products.WithTx(tx)

		code, err := s.uniqueCode(ctx, repo)
		if err != nil {
			return err
		}

		entry := &models.StockEntry{Code: code, Note: normalizeNote(input.Note)}
		if input.ActorUserID != uuid.Nil {
			actor := input.ActorUserID
			entry.CreatedBy = &actor
		}
		if err := repo.CreateEntry(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert stock entry")
		}

		items := make([]models.StockEntryItem, 0, len(input.Items))
		received := make([]outbox.StockReceivedItem, 0, len(input.Items))
		for _, in := range input.Items {
			p, err := products.FindByIDForUpdate(ctx, in.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
						WithDetails(map[string]any{"product_id": in.ProductID})
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: lock product")
			}
			next := p.StockQuantity + in.Quantity
			if err := products.UpdateQuantity(ctx, p.ID, next); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: increment stock")
			}
			items = append(items, models.StockEntryItem{
				StockEntryID: entry.ID,
				ProductID:    p.ID,
				Quantity:     in.Quantity,
				CostPrice:    in.CostPrice.Round(2),
			})
			received = append(received, outbox.StockReceivedItem{
				ProductID:     p.ID,
				Quantity:      in.Quantity,
				CostPrice:     in.CostPrice.Round(2),
				StockQuantity: next,
			})
		}
		if err := repo.CreateItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert stock entry items")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventStockReceived,
			AggregateType: enums.AggregateStockEntry,
			AggregateID:   entry.ID,
			Version:       1,
			Data: outbox.StockReceivedEvent{
				StockEntryID: entry.ID,
				Code:         entry.Code,
				Items:        received,
			},
		}
		if input.ActorUserID != uuid.Nil {
			event.Actor = &outbox.ActorRef{UserID: input.ActorUserID, Role: string(input.ActorRole)}
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "outbox: emit stock_received")
		}

		entryID = entry.ID
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) == nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: create stock entry")
		}
		return nil, err
	}
	return s.Get(ctx, entryID)
}

func (s *service) List(ctx context.Context, params pagination.Params) (*EntryList, error) {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, next, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list stock entries")
	}
	list := &EntryList{Entries: make([]EntryDTO, 0, len(rows)), NextCursor: next}
	for i := range rows {
		list.Entries = append(list.Entries, *newEntryDTO(&rows[i]))
	}
	return list, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*EntryDTO, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err)
	}
	return newEntryDTO(entry), nil
}

func (s *service) UpdateNote(ctx context.Context, id uuid.UUID, note *string) (*EntryDTO, error) {
	if err := s.repo.UpdateNote(ctx, id, normalizeNote(note)); err != nil {
		return nil, mapLookupError(err)
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		return mapLookupError(err)
	}
	return nil
}

func (s *service) uniqueCode(ctx context.Context, repo *Repository) (string, error) {
	for i := 0; i < codeGenAttempts; i++ {
		code, err := generateCode(s.now())
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate stock entry code")
		}
		taken, err := repo.CodeExists(ctx, code)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check stock entry code")
		}
		if !taken {
			return code, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeConflict, "could not allocate a unique stock entry code")
}

// generateCode returns PN-YYYYMMDD-XXXX with four upper-case hex digits.
func generateCode(now time.Time) (string, error) {
	buf := make([]byte, codeRandomBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%s", codePrefix, now.Format(codeDateLayout), strings.ToUpper(hex.EncodeToString(buf))), nil
}

func validateItems(items []ItemInput) error {
	if len(items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}
	for i, item := range items {
		if item.ProductID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "product_id is required").
				WithDetails(map[string]any{"item": i})
		}
		if item.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than zero").
				WithDetails(map[string]any{"item": i})
		}
		if item.CostPrice.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "cost_price must be >= 0").
				WithDetails(map[string]any{"item": i})
		}
	}
	return nil
}

func normalizeNote(note *string) *string {
	if note == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*note)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func mapLookupError(err error) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "stock entry not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: stock entry")
}
