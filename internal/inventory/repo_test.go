package inventory

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/cafe-pos/internal/db/dbtest"
)

func TestPGRepo_Record(t *testing.T) {
	pool := dbtest.Pool(t)
	ctx := context.Background()
	shopID := dbtest.Shop(t, pool)

	var ingID string
	require.NoError(t, pool.QueryRow(ctx, `
		INSERT INTO ingredients (shop_id, name, unit, current_stock, min_stock_level) VALUES ($1,'Milk','l',50,10) RETURNING id
	`, shopID).Scan(&ingID))
	repo := NewPGRepo(pool)

	ledger := func() int {
		return dbtest.Count(t, pool, `SELECT COUNT(*) FROM inventory_transactions WHERE ingredient_id=$1`, ingID)
	}
	stock := func() string {
		var s string
		require.NoError(t, pool.QueryRow(ctx, `SELECT current_stock::text FROM ingredients WHERE id=$1`, ingID).Scan(&s))
		return s
	}

	_, err := repo.Record(ctx, &Transaction{ShopID: shopID, IngredientID: ingID, Type: TypeOut, Quantity: d("60")})
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Zero(t, ledger())
	assert.True(t, d(stock()).Equal(d("50")))

	st, err := repo.Record(ctx, &Transaction{ShopID: strings.ToUpper(shopID), IngredientID: ingID, Type: TypeOut, Quantity: d("20")})
	require.NoError(t, err)
	assert.True(t, st.CurrentStock.Equal(d("30")))
	assert.Equal(t, 1, ledger())

	_, err = repo.Record(ctx, &Transaction{ShopID: dbtest.Shop(t, pool), IngredientID: ingID, Type: TypeIn, Quantity: d("1")})
	assert.ErrorIs(t, err, ErrIngredientNotFound)
}

func TestPGRepo_RecordSerializesWithdrawals(t *testing.T) {
	pool := dbtest.Pool(t)
	ctx := context.Background()
	shopID := dbtest.Shop(t, pool)

	var ingID string
	require.NoError(t, pool.QueryRow(ctx, `
		INSERT INTO ingredients (shop_id, name, unit, current_stock) VALUES ($1,'Beans','kg',50) RETURNING id
	`, shopID).Scan(&ingID))
	repo := NewPGRepo(pool)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.Record(ctx, &Transaction{ShopID: shopID, IngredientID: ingID, Type: TypeOut, Quantity: d("30")})
		}(i)
	}
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, ErrInsufficientStock)
			failed++
		}
	}
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, dbtest.Count(t, pool, `SELECT COUNT(*) FROM inventory_transactions WHERE ingredient_id=$1`, ingID))
}
