package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/posadmin-backend/pkg/db"
	"github.com/angelmondragon/posadmin-backend/pkg/db/models"
	"github.com/angelmondragon/posadmin-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/posadmin-backend/pkg/errors"
	"github.com/angelmondragon/posadmin-backend/pkg/logger"
	"github.com/angelmondragon/posadmin-backend/pkg/metrics"
	"github.com/angelmondragon/posadmin-backend/pkg/outbox"
	"github.com/angelmondragon/posadmin-backend/pkg/pagination"
)

// Service places orders and serves the order read models.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*OrderDTO, error)
	ListOrders(ctx context.Context, input ListOrdersInput) (*OrderList, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error)
}

// Options tunes the placement transaction.
type Options struct {
	PlacementTimeout time.Duration
}

type service struct {
	repo     Repository
	products ProductStoreFactory
	tx       txRunner
	outbox   outboxPublisher
	logg     *logger.Logger
	metrics  *metrics.OrderMetrics
	timeout  time.Duration
}

// NewService wires the order service. metrics may be nil.
func NewService(repo Repository, products ProductStoreFactory, tx txRunner, outbox outboxPublisher, logg *logger.Logger, m *metrics.OrderMetrics, opts Options) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product store required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		products: products,
		tx:       tx,
		outbox:   outbox,
		logg:     logg,
		metrics:  m,
		timeout:  opts.PlacementTimeout,
	}, nil
}

// PlaceOrder validates the lines, then locks, checks and decrements each
// product in caller order and persists the order with one line item per
// request line. Nothing is written unless every line succeeds.
func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*OrderDTO, error) {
	start := time.Now()

	if err := validatePlaceOrder(input); err != nil {
		s.recordOutcome(ctx, start, err)
		return nil, err
	}

	placeCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		placeCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var created *models.Order
	err := s.tx.WithTx(placeCtx, func(tx *gorm.DB) error {
		products := s.products(tx)
		repo := s.repo.WithTx(tx)

		total := decimal.Zero
		items := make([]models.OrderLineItem, 0, len(input.Lines))

		for i, line := range input.Lines {
			product, err := products.FindByIDForUpdate(placeCtx, line.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return productUnavailable(line.ProductID, "")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: lock product")
			}
			if !product.IsSellable() {
				return productUnavailable(product.ID, product.Name)
			}
			if product.StockQuantity < line.Quantity {
				return pkgerrors.New(pkgerrors.CodeInsufficientStock, fmt.Sprintf("insufficient stock for %s", product.Name)).
					WithDetails(InsufficientStockDetails{
						ProductID:   product.ID,
						ProductName: product.Name,
						Requested:   line.Quantity,
						Available:   product.StockQuantity,
					})
			}

			total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
			items = append(items, models.OrderLineItem{
				ProductID:       product.ID,
				Position:        i,
				Quantity:        line.Quantity,
				PriceAtPurchase: product.Price,
				Product:         product,
			})

			if err := products.UpdateQuantity(placeCtx, product.ID, product.StockQuantity-line.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: decrement stock")
			}
		}

		order := &models.Order{
			CustomerID:  input.CustomerID,
			TotalAmount: total,
		}
		if input.ActorUserID != uuid.Nil {
			actor := input.ActorUserID
			order.CreatedBy = &actor
		}
		if err := repo.CreateOrder(placeCtx, order); err != nil {
			if isForeignKeyError(err) {
				return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "customer not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order")
		}

		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := repo.CreateLineItems(placeCtx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order line items")
		}
		order.LineItems = items

		if err := s.outbox.Emit(placeCtx, tx, orderCreatedEvent(order, input)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "outbox: emit order_created")
		}

		created = order
		return nil
	})
	if err != nil {
		err = normalizePlacementError(placeCtx, err)
		s.recordOutcome(ctx, start, err)
		return nil, err
	}

	s.metrics.AddLineItems(len(created.LineItems))
	s.recordOutcome(s.logg.WithOrderID(ctx, created.ID.String()), start, nil)
	return NewOrderDTO(created), nil
}

func (s *service) ListOrders(ctx context.Context, input ListOrdersInput) (*OrderList, error) {
	if _, err := pagination.ParseCursor(input.Pagination.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if input.Filters.From != nil && input.Filters.To != nil && input.Filters.To.Before(*input.Filters.From) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "to must not be before from")
	}

	rows, next, err := s.repo.ListOrders(ctx, input.Pagination, input.Filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list orders")
	}
	list := &OrderList{
		Orders:     make([]OrderDTO, 0, len(rows)),
		NextCursor: next,
	}
	for i := range rows {
		list.Orders = append(list.Orders, *NewOrderDTO(&rows[i]))
	}
	return list, nil
}

func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
	}
	return NewOrderDTO(order), nil
}

func validatePlaceOrder(input PlaceOrderInput) error {
	if input.CustomerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer_id is required")
	}
	if len(input.Lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one line is required")
	}
	for i, line := range input.Lines {
		if line.ProductID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "product_id is required").
				WithDetails(map[string]any{"line": i})
		}
		if line.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than zero").
				WithDetails(map[string]any{"line": i, "quantity": line.Quantity})
		}
	}
	return nil
}

func productUnavailable(productID uuid.UUID, name string) error {
	return pkgerrors.New(pkgerrors.CodeProductUnavailable, "product is not available for sale").
		WithDetails(ProductUnavailableDetails{ProductID: productID, ProductName: name})
}

// normalizePlacementError keeps business errors intact and reports every
// other failure, including cancellation, as a retryable dependency error.
func normalizePlacementError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && !isBusinessError(err) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, ctxErr, "order placement aborted")
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: place order")
}

func isBusinessError(err error) bool {
	typed := pkgerrors.As(err)
	if typed == nil {
		return false
	}
	switch typed.Code() {
	case pkgerrors.CodeProductUnavailable, pkgerrors.CodeInsufficientStock, pkgerrors.CodeNotFound:
		return true
	}
	return false
}

func isForeignKeyError(err error) bool {
	return errors.Is(err, gorm.ErrForeignKeyViolated) || db.IsForeignKeyViolation(err)
}

func (s *service) recordOutcome(ctx context.Context, start time.Time, err error) {
	outcome := outcomeFor(err)
	s.metrics.ObservePlacement(outcome, time.Since(start))

	ctx = s.logg.WithFields(ctx, map[string]any{
		"outcome":     outcome,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	switch outcome {
	case metrics.OutcomePlaced:
		s.logg.Info(ctx, "order.placed")
	case metrics.OutcomeStorageFailure:
		s.logg.Error(ctx, "order.failed", err)
	default:
		s.logg.Warn(s.logg.WithField(ctx, "reason", string(pkgerrors.As(err).Code())), "order.rejected")
	}
}

func outcomeFor(err error) string {
	if err == nil {
		return metrics.OutcomePlaced
	}
	switch pkgerrors.As(err).Code() {
	case pkgerrors.CodeValidation, pkgerrors.CodeNotFound:
		return metrics.OutcomeInvalid
	case pkgerrors.CodeProductUnavailable:
		return metrics.OutcomeProductUnavailable
	case pkgerrors.CodeInsufficientStock:
		return metrics.OutcomeInsufficientStock
	default:
		return metrics.OutcomeStorageFailure
	}
}

func orderCreatedEvent(order *models.Order, input PlaceOrderInput) outbox.DomainEvent {
	lines := make([]outbox.OrderCreatedLine, 0, len(order.LineItems))
	for _, item := range order.LineItems {
		lines = append(lines, outbox.OrderCreatedLine{
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			PriceAtPurchase: item.PriceAtPurchase,
		})
	}
	event := outbox.DomainEvent{
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Version:       1,
		Data: outbox.OrderCreatedEvent{
			OrderID:     order.ID,
			CustomerID:  order.CustomerID,
			TotalAmount: order.TotalAmount,
			Lines:       lines,
		},
	}
	if input.ActorUserID != uuid.Nil {
		event.Actor = &outbox.ActorRef{UserID: input.ActorUserID, Role: string(input.ActorRole)}
	}
	return event
}
