package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/cafe-pos/internal/apperr"
	"github.com/MikeMC777/cafe-pos/internal/events"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestApply(t *testing.T) {
	cases := []struct {
		name    string
		current string
		typ     Type
		qty     string
		want    string
		err     error
	}{
		{"in adds", "50", TypeIn, "12.5", "62.5", nil},
		{"out subtracts", "50", TypeOut, "20", "30", nil},
		{"auto deduct to zero", "50", TypeAutoDeduct, "50", "0", nil},
		{"out beyond stock", "50", TypeOut, "60", "50", ErrInsufficientStock},
		{"auto deduct beyond stock", "0.5", TypeAutoDeduct, "0.501", "0.5", ErrInsufficientStock},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Apply(d(tc.current), tc.typ, d(tc.qty))
			assert.ErrorIs(t, err, tc.err)
			assert.True(t, d(tc.want).Equal(got), "got %s", got)
		})
	}
}

func TestNewTransaction(t *testing.T) {
	price := d("12000")
	tx, err := NewTransaction(CreateTransactionRequest{
		ShopID: "s", IngredientID: "i", Type: TypeIn, Quantity: d("2.5"), UnitPrice: &price, Reason: " delivery ",
	}, "emp-1")
	require.NoError(t, err)
	assert.True(t, tx.TotalAmount.Valid)
	assert.Equal(t, "30000", tx.TotalAmount.Decimal.String())
	assert.Equal(t, "delivery", tx.Reason)
	require.NotNil(t, tx.CreatedBy)
	assert.Equal(t, "emp-1", *tx.CreatedBy)

	tx, err = NewTransaction(CreateTransactionRequest{ShopID: "s", IngredientID: "i", Type: TypeOut, Quantity: d("1")}, "")
	require.NoError(t, err)
	assert.False(t, tx.TotalAmount.Valid)
	assert.False(t, tx.UnitPrice.Valid)
	assert.Nil(t, tx.CreatedBy)

	for _, req := range []CreateTransactionRequest{
		{Type: "transfer", Quantity: d("1")},
		{Type: TypeIn, Quantity: d("0")},
		{Type: TypeIn, Quantity: d("-3")},
		{Type: TypeIn, Quantity: d("1"), UnitPrice: func() *decimal.Decimal { v := d("-1"); return &v }()},
		{Type: TypeOut, Quantity: d("0.0004")},
		{Type: TypeIn, Quantity: d("0.0006")},
		{Type: TypeIn, Quantity: d("1"), UnitPrice: func() *decimal.Decimal { v := d("0.005"); return &v }()},
	} {
		_, err := NewTransaction(req, "")
		assert.True(t, errors.Is(err, apperr.ErrBadRequest), "%+v", req)
	}
}

func TestNewTransaction_StorageScale(t *testing.T) {
	price := d("12000.50")
	tx, err := NewTransaction(CreateTransactionRequest{Type: TypeIn, Quantity: d("0.125"), UnitPrice: &price}, "")
	require.NoError(t, err)
	// trailing zeros beyond the scale are fine
	_, err = NewTransaction(CreateTransactionRequest{Type: TypeIn, Quantity: d("1.5000")}, "")
	require.NoError(t, err)

	assert.True(t, tx.TotalAmount.Decimal.Equal(price.Mul(tx.Quantity).Round(MoneyPlaces)))
	assert.True(t, tx.Quantity.Equal(tx.Quantity.Round(QuantityPlaces)))

	_, err = NewTransaction(CreateTransactionRequest{Type: TypeOut, Quantity: d("0.0004")}, "")
	assert.ErrorIs(t, err, apperr.ErrBadRequest)
	assert.ErrorContains(t, err, "decimal places")
}

// memRepo mimics the PG repository's transactional behaviour: the ledger
// row and the stock change are applied together or not at all.
type memRepo struct {
	shopID string
	stock  map[string]*Stock
	ledger []Transaction
}

func (m *memRepo) Record(_ context.Context, t *Transaction) (Stock, error) {
	st, ok := m.stock[t.IngredientID]
	if !ok || t.ShopID != m.shopID {
		return Stock{}, ErrIngredientNotFound
	}
	after, err := Apply(st.CurrentStock, t.Type, t.Quantity)
	if err != nil {
		return Stock{}, err
	}
	t.ID = "tx"
	t.StockBefore, t.StockAfter = st.CurrentStock, after
	st.CurrentStock = after
	m.ledger = append(m.ledger, *t)
	return *st, nil
}

func (m *memRepo) GetByID(context.Context, string) (*Transaction, error) { return nil, ErrNotFound }
func (m *memRepo) List(context.Context, Query) ([]Transaction, int, error) {
	return m.ledger, len(m.ledger), nil
}

type recorder struct{ got []events.Event }

func (r *recorder) Publish(_ context.Context, ev events.Event) error {
	r.got = append(r.got, ev)
	return nil
}

func newTestService() (*Service, *memRepo, *recorder) {
	repo := &memRepo{
		shopID: "shop-1",
		stock: map[string]*Stock{
			"milk": {IngredientID: "milk", Name: "Milk", Unit: "l", CurrentStock: d("50"), MinStockLevel: d("10")},
		},
	}
	rec := &recorder{}
	log, _ := test.NewNullLogger()
	return NewService(repo, rec, log), repo, rec
}

func TestCreate_RejectsOverdraw(t *testing.T) {
	svc, repo, rec := newTestService()

	_, err := svc.Create(context.Background(), CreateTransactionRequest{
		ShopID: "shop-1", IngredientID: "milk", Type: TypeOut, Quantity: d("60"),
	}, "")
	require.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, "insufficient stock", err.Error())
	assert.True(t, d("50").Equal(repo.stock["milk"].CurrentStock))
	assert.Empty(t, repo.ledger)
	assert.Empty(t, rec.got)
}

func TestCreate_AdjustsStockAndFlagsLow(t *testing.T) {
	svc, repo, rec := newTestService()
	ctx := context.Background()

	in, err := svc.Create(ctx, CreateTransactionRequest{ShopID: "shop-1", IngredientID: "milk", Type: TypeIn, Quantity: d("5")}, "")
	require.NoError(t, err)
	assert.Equal(t, "55", in.StockAfter.String())
	assert.Equal(t, "Milk", in.IngredientName)
	assert.Empty(t, rec.got)

	out, err := svc.Create(ctx, CreateTransactionRequest{ShopID: "shop-1", IngredientID: "milk", Type: TypeOut, Quantity: d("45")}, "")
	require.NoError(t, err)
	assert.Equal(t, "55", out.StockBefore.String())
	assert.Equal(t, "10", out.StockAfter.String())
	assert.True(t, d("10").Equal(repo.stock["milk"].CurrentStock))
	assert.Len(t, repo.ledger, 2)

	require.Len(t, rec.got, 1)
	assert.Equal(t, events.LowStock, rec.got[0].Type)
	assert.Equal(t, "shop-1", rec.got[0].ShopID)
}

func TestCreate_OtherShopIngredient(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Create(context.Background(), CreateTransactionRequest{
		ShopID: "shop-2", IngredientID: "milk", Type: TypeIn, Quantity: d("1"),
	}, "")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}
