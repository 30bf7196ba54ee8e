package order

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/cafe-pos/internal/apperr"
	"github.com/MikeMC777/cafe-pos/internal/db/dbtest"
)

func newPGOrder(shopID string, items ...Item) *Order {
	return &Order{
		ShopID:      shopID,
		OrderNumber: NewNumber("ORD", time.Now()),
		Type:        TypeTakeaway,
		Status:      StatusPending,
		Subtotal:    d("30000"),
		TotalAmount: d("30000"),
		Items:       items,
	}
}

func TestPGRepo_CreateWritesNothingOnFailure(t *testing.T) {
	pool := dbtest.Pool(t)
	ctx := context.Background()
	shopID := dbtest.Shop(t, pool)
	repo := NewPGRepo(pool)

	missing := uuid.NewString()
	o := newPGOrder(shopID, Item{
		ProductID: &missing, ProductName: "Ghost", ProductPrice: d("30000"),
		Quantity: 1, UnitPrice: d("30000"), Subtotal: d("30000"), Status: ItemPending,
	})
	err := repo.Create(ctx, o)
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	assert.Zero(t, dbtest.Count(t, pool, `SELECT COUNT(*) FROM orders WHERE shop_id=$1`, shopID))
	assert.Zero(t, dbtest.Count(t, pool, `SELECT COUNT(*) FROM orders WHERE order_number=$1`, o.OrderNumber))
}

func TestPGRepo_CreateReportsNumberCollision(t *testing.T) {
	pool := dbtest.Pool(t)
	ctx := context.Background()
	shopID := dbtest.Shop(t, pool)
	repo := NewPGRepo(pool)

	first := newPGOrder(shopID)
	require.NoError(t, repo.Create(ctx, first))

	dup := newPGOrder(shopID)
	dup.OrderNumber = first.OrderNumber
	assert.ErrorIs(t, repo.Create(ctx, dup), ErrNumberTaken)
	assert.Equal(t, 1, dbtest.Count(t, pool, `SELECT COUNT(*) FROM orders WHERE shop_id=$1`, shopID))
}

func TestPGRepo_SetStatusStampsPaidOnce(t *testing.T) {
	pool := dbtest.Pool(t)
	ctx := context.Background()
	repo := NewPGRepo(pool)

	o := newPGOrder(dbtest.Shop(t, pool))
	require.NoError(t, repo.Create(ctx, o))

	allow := func(Status) error { return nil }
	paid, err := repo.SetStatus(ctx, o.ID, StatusChange{Target: StatusPaid}, allow)
	require.NoError(t, err)
	require.NotNil(t, paid.PaidAt)

	again, err := repo.SetStatus(ctx, o.ID, StatusChange{Target: StatusPaid}, allow)
	require.NoError(t, err)
	assert.True(t, paid.PaidAt.Equal(*again.PaidAt))
	assert.Equal(t, 3, dbtest.Count(t, pool, `SELECT COUNT(*) FROM order_status_logs WHERE order_id=$1`, o.ID))
}
