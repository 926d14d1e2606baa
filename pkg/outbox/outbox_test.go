package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/posadmin-backend/pkg/config"
	"github.com/angelmondragon/posadmin-backend/pkg/db/models"
	"github.com/angelmondragon/posadmin-backend/pkg/enums"
)

func openOutboxDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:outbox_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.OutboxEvent{}))
	return conn
}

func TestEmitStoresEnvelopeWithinTransaction(t *testing.T) {
	conn := openOutboxDB(t)
	svc := NewService(NewRepository(conn), nil)
	orderID := uuid.New()
	actor := &ActorRef{UserID: uuid.New(), Role: "staff"}

	err := conn.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Actor:         actor,
			Data: OrderCreatedEvent{
				OrderID:     orderID,
				TotalAmount: decimal.NewFromInt(300000),
			},
		})
	})
	require.NoError(t, err)

	var rows []models.OutboxEvent
	require.NoError(t, conn.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, orderID, rows[0].AggregateID)
	assert.Nil(t, rows[0].PublishedAt)

	var envelope PayloadEnvelope
	require.NoError(t, json.Unmarshal(rows[0].Payload, &envelope))
	assert.Equal(t, 1, envelope.Version)
	assert.NotEmpty(t, envelope.EventID)
	require.NotNil(t, envelope.Actor)
	assert.Equal(t, actor.UserID, envelope.Actor.UserID)
}

func TestEmitRollsBackWithTransaction(t *testing.T) {
	conn := openOutboxDB(t)
	svc := NewService(NewRepository(conn), nil)

	err := conn.Transaction(func(tx *gorm.DB) error {
		if err := svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventStockReceived,
			AggregateType: enums.AggregateStockEntry,
			AggregateID:   uuid.New(),
			Data:          StockReceivedEvent{Code: "PN-1"},
		}); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, conn.Model(&models.OutboxEvent{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestEmitValidatesInput(t *testing.T) {
	conn := openOutboxDB(t)
	svc := NewService(NewRepository(conn), nil)

	require.Error(t, svc.Emit(context.Background(), nil, DomainEvent{}))
	require.Error(t, svc.Emit(context.Background(), conn, DomainEvent{EventType: "bogus", AggregateType: enums.AggregateOrder}))
	require.Error(t, svc.Emit(context.Background(), conn, DomainEvent{EventType: enums.EventOrderCreated, AggregateType: "bogus"}))
}

func TestRepositoryFetchAndMark(t *testing.T) {
	conn := openOutboxDB(t)
	repo := NewRepository(conn)
	svc := NewService(repo, nil)

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Emit(context.Background(), conn, DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   uuid.New(),
			Data:          OrderCreatedEvent{},
		}))
	}

	rows, err := repo.FetchUnpublishedForPublish(conn, 10, 5)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	require.NoError(t, repo.MarkPublishedTx(conn, rows[0].ID))
	require.NoError(t, repo.MarkFailedTx(conn, rows[1].ID, errors.New("timeout")))
	require.NoError(t, repo.MarkTerminalTx(conn, rows[2].ID, errors.New("bad payload"), 5))

	pending, err := repo.FetchUnpublishedForPublish(conn, 10, 5)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, rows[1].ID, pending[0].ID)
	assert.Equal(t, 1, pending[0].AttemptCount)
	require.NotNil(t, pending[0].LastError)
	assert.Equal(t, "timeout", *pending[0].LastError)

	count, err := repo.CountPending()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestRegistryResolve(t *testing.T) {
	reg, err := NewEventRegistry(config.PubSubConfig{OrdersTopic: "orders", StockTopic: "stock"})
	require.NoError(t, err)

	orderID := uuid.New()
	data, err := json.Marshal(OrderCreatedEvent{OrderID: orderID, TotalAmount: decimal.RequireFromString("12.50")})
	require.NoError(t, err)
	payload, err := json.Marshal(PayloadEnvelope{Version: 1, EventID: "evt-1", Data: data})
	require.NoError(t, err)

	resolved, err := reg.Resolve(models.OutboxEvent{
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   orderID,
		Payload:       payload,
	})
	require.NoError(t, err)
	assert.Equal(t, "orders", resolved.Descriptor.Topic)
	event, ok := resolved.Payload.(*OrderCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, orderID, event.OrderID)
	assert.True(t, event.TotalAmount.Equal(decimal.RequireFromString("12.5")))
}

func TestRegistryResolveFailuresAreNonRetryable(t *testing.T) {
	reg, err := NewEventRegistry(config.PubSubConfig{OrdersTopic: "orders", StockTopic: "stock"})
	require.NoError(t, err)

	cases := []models.OutboxEvent{
		{EventType: "unknown", AggregateType: enums.AggregateOrder},
		{EventType: enums.EventOrderCreated, AggregateType: enums.AggregateStockEntry, Payload: []byte(`{}`)},
		{EventType: enums.EventOrderCreated, AggregateType: enums.AggregateOrder, Payload: []byte(`not-json`)},
		{EventType: enums.EventOrderCreated, AggregateType: enums.AggregateOrder, Payload: []byte(`{"data":{}}`)},
	}
	for _, tc := range cases {
		_, err := reg.Resolve(tc)
		var nonRetry NonRetryableError
		require.ErrorAs(t, err, &nonRetry, "event %+v", tc)
	}

	_, err = NewEventRegistry(config.PubSubConfig{OrdersTopic: "orders"})
	require.Error(t, err)
}
