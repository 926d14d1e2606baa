package product

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/posadmin-backend/pkg/db"
	"github.com/angelmondragon/posadmin-backend/pkg/db/dbtest"
	"github.com/angelmondragon/posadmin-backend/pkg/db/models"
	"github.com/angelmondragon/posadmin-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/posadmin-backend/pkg/errors"
	"github.com/angelmondragon/posadmin-backend/pkg/pagination"
)

func newTestService(t *testing.T) (Service, *db.Client) {
	t.Helper()
	client := dbtest.Open(t)
	svc, err := NewService(NewRepository(client.DB()), client)
	require.NoError(t, err)
	return svc, client
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(nil, nil)
	require.Error(t, err)
}

func TestCreateProductDefaultsToActive(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:          "  Espresso beans ",
		Price:         decimal.RequireFromString("125000.456"),
		StockQuantity: 12,
	})
	require.NoError(t, err)
	assert.Equal(t, "Espresso beans", created.Name)
	assert.Equal(t, enums.ProductStatusActive, created.Status)
	assert.True(t, created.Price.Equal(decimal.RequireFromString("125000.46")))
	assert.NotEqual(t, uuid.Nil, created.ID)
}

func TestCreateProductValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := map[string]CreateProductInput{
		"blank name":     {Name: " ", Price: decimal.NewFromInt(1)},
		"negative price": {Name: "A", Price: decimal.NewFromInt(-1)},
		"negative stock": {Name: "A", Price: decimal.NewFromInt(1), StockQuantity: -1},
		"bad status":     {Name: "A", Price: decimal.NewFromInt(1), Status: "archived"},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateProduct(ctx, input)
			require.Error(t, err)
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
		})
	}
}

func TestUpdateProductPartial(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, CreateProductInput{Name: "Tea", Price: decimal.NewFromInt(5000), StockQuantity: 3})
	require.NoError(t, err)

	price := decimal.NewFromInt(6000)
	stock := 9
	updated, err := svc.UpdateProduct(ctx, created.ID, UpdateProductInput{Price: &price, StockQuantity: &stock})
	require.NoError(t, err)
	assert.Equal(t, "Tea", updated.Name)
	assert.True(t, updated.Price.Equal(price))
	assert.Equal(t, 9, updated.StockQuantity)

	negative := -2
	_, err = svc.UpdateProduct(ctx, created.ID, UpdateProductInput{StockQuantity: &negative})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.UpdateProduct(ctx, uuid.New(), UpdateProductInput{Price: &price})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestToggleStatusAndVisibility(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, CreateProductInput{Name: "Mug", Price: decimal.NewFromInt(90000)})
	require.NoError(t, err)

	hidden, err := svc.ToggleStatus(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ProductStatusHidden, hidden.Status)

	_, err = svc.GetProduct(ctx, created.ID, false)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	got, err := svc.GetProduct(ctx, created.ID, true)
	require.NoError(t, err)
	assert.Equal(t, enums.ProductStatusHidden, got.Status)

	active, err := svc.ToggleStatus(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ProductStatusActive, active.Status)
}

func TestListProductsFiltersHiddenForStaff(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, CreateProductInput{Name: "Green tea", Price: decimal.NewFromInt(1)})
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, CreateProductInput{Name: "Black tea", Price: decimal.NewFromInt(1), Status: enums.ProductStatusHidden})
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, CreateProductInput{Name: "Coffee", Price: decimal.NewFromInt(1)})
	require.NoError(t, err)

	staff, err := svc.ListProducts(ctx, ListProductsInput{Query: "TEA"})
	require.NoError(t, err)
	require.Len(t, staff.Products, 1)
	assert.Equal(t, "Green tea", staff.Products[0].Name)

	admin, err := svc.ListProducts(ctx, ListProductsInput{Query: "tea", IncludeHidden: true})
	require.NoError(t, err)
	assert.Len(t, admin.Products, 2)

	firstPage, err := svc.ListProducts(ctx, ListProductsInput{IncludeHidden: true, Pagination: pagination.Params{Limit: 2}})
	require.NoError(t, err)
	require.Len(t, firstPage.Products, 2)
	require.NotEmpty(t, firstPage.NextCursor)

	_, err = svc.ListProducts(ctx, ListProductsInput{Pagination: pagination.Params{Cursor: "not-base64!"}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDeleteProductConflictsWhenReferenced(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	free, err := svc.CreateProduct(ctx, CreateProductInput{Name: "Free", Price: decimal.NewFromInt(1)})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteProduct(ctx, free.ID))

	sold, err := svc.CreateProduct(ctx, CreateProductInput{Name: "Sold", Price: decimal.NewFromInt(1), StockQuantity: 1})
	require.NoError(t, err)

	customer := &models.Customer{Name: "Ana", Phone: "0900000001"}
	require.NoError(t, client.DB().Create(customer).Error)
	order := &models.Order{CustomerID: customer.ID, TotalAmount: decimal.NewFromInt(1)}
	require.NoError(t, client.DB().Create(order).Error)
	require.NoError(t, client.DB().Create(&models.OrderLineItem{
		OrderID:         order.ID,
		ProductID:       sold.ID,
		Position:        0,
		Quantity:        1,
		PriceAtPurchase: decimal.NewFromInt(1),
	}).Error)

	err = svc.DeleteProduct(ctx, sold.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	err = svc.DeleteProduct(ctx, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
