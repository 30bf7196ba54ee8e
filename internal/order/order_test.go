package order

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/cafe-pos/internal/apperr"
	"github.com/MikeMC777/cafe-pos/internal/events"
	"github.com/MikeMC777/cafe-pos/internal/product"
	"github.com/MikeMC777/cafe-pos/internal/seating"
	"github.com/MikeMC777/cafe-pos/internal/shop"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeTotals_Scenario(t *testing.T) {
	sub := LineSubtotal(d("30000"), 2)
	got := ComputeTotals(sub, decimal.Zero, d("10"), d("5"))
	assert.Equal(t, "60000", got.Subtotal.String())
	assert.Equal(t, "6000", got.VATAmount.String())
	assert.Equal(t, "3000", got.ServiceFee.String())
	assert.Equal(t, "69000", got.Total.String())
}

func TestComputeTotals_Rounding(t *testing.T) {
	got := ComputeTotals(d("10.01"), d("2.50"), d("8.25"), d("0"))
	// (10.01 + 2.50) * 8.25% = 1.032075
	assert.Equal(t, "1.03", got.VATAmount.String())
	assert.Equal(t, "13.54", got.Total.String())
	assert.True(t, got.Total.Equal(got.Subtotal.Add(got.DeliveryFee).Add(got.VATAmount).Add(got.ServiceFee)))
}

func TestCheckTransition(t *testing.T) {
	assert.NoError(t, CheckTransition(StatusPending, StatusPreparing))
	assert.NoError(t, CheckTransition(StatusServed, StatusPaid))
	assert.NoError(t, CheckTransition(StatusReady, StatusCancelled))
	assert.ErrorIs(t, CheckTransition(StatusPaid, StatusCancelled), ErrAlreadyPaid)
	assert.ErrorIs(t, CheckTransition(StatusCancelled, StatusCancelled), ErrAlreadyCancelled)
	assert.True(t, errors.Is(CheckTransition(StatusPending, "archived"), apperr.ErrBadRequest))
}

func TestEntersPaid(t *testing.T) {
	assert.True(t, EntersPaid(StatusServed, StatusPaid))
	assert.False(t, EntersPaid(StatusPaid, StatusPaid))
	assert.False(t, EntersPaid(StatusPending, StatusReady))
}

func TestNewNumber(t *testing.T) {
	n := NewNumber("ORD", time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC))
	assert.Regexp(t, regexp.MustCompile(`^ORD-20240309140507-\d{4}$`), n)
}

// memRepo keeps orders in memory. Create is all-or-nothing like the PG transaction.
type memRepo struct {
	orders      map[string]*Order
	creates     int
	collisions  int
	statusCalls int
}

func newMemRepo() *memRepo { return &memRepo{orders: map[string]*Order{}} }

func (m *memRepo) Create(_ context.Context, o *Order) error {
	m.creates++
	if m.collisions > 0 {
		m.collisions--
		return ErrNumberTaken
	}
	o.ID = "ord-" + o.OrderNumber
	for i := range o.Items {
		o.Items[i].ID = o.ID + "-item"
		o.Items[i].OrderID = o.ID
	}
	cp := *o
	cp.Items = append([]Item(nil), o.Items...)
	m.orders[o.ID] = &cp
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id string) (*Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	cp.Items = append([]Item(nil), o.Items...)
	return &cp, nil
}

func (m *memRepo) List(context.Context, Query) ([]Order, int, error) { return nil, 0, nil }

func (m *memRepo) Update(_ context.Context, o *Order) error {
	cur, ok := m.orders[o.ID]
	if !ok {
		return ErrNotFound
	}
	cur.TableID, cur.CustomerName, cur.Notes = o.TableID, o.CustomerName, o.Notes
	return nil
}

func (m *memRepo) SetStatus(ctx context.Context, id string, ch StatusChange, check func(Status) error) (*Order, error) {
	m.statusCalls++
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	if err := check(o.Status); err != nil {
		return nil, err
	}
	now := time.Now()
	if EntersPaid(o.Status, ch.Target) {
		o.PaidAt = &now
	}
	o.Status = ch.Target
	switch ch.Target {
	case StatusCancelled:
		o.CancelledAt = &now
		reason := ch.Reason
		o.CancelledReason = &reason
	}
	return m.GetByID(ctx, id)
}

func (m *memRepo) Stats(context.Context, Query) (Stats, error) { return Stats{}, nil }

type fakeShops map[string]*shop.Shop

func (f fakeShops) GetByID(_ context.Context, id string) (*shop.Shop, error) {
	if s, ok := f[id]; ok {
		return s, nil
	}
	return nil, shop.ErrNotFound
}

type fakeProducts map[string]*product.Product

func (f fakeProducts) GetByID(_ context.Context, id string) (*product.Product, error) {
	if p, ok := f[id]; ok {
		return p, nil
	}
	return nil, product.ErrNotFound
}

type fakeTables map[string]*seating.Table

func (f fakeTables) GetTable(_ context.Context, id string) (*seating.Table, error) {
	if t, ok := f[id]; ok {
		return t, nil
	}
	return nil, seating.ErrTableNotFound
}

type recorder struct{ got []events.Event }

func (r *recorder) Publish(_ context.Context, ev events.Event) error {
	r.got = append(r.got, ev)
	return nil
}

func fixture() (*Service, *memRepo, *recorder) {
	repo := newMemRepo()
	shops := fakeShops{
		"shop-1": {ID: "shop-1", VATRate: d("10"), ServiceFeeRate: d("5")},
		"shop-2": {ID: "shop-2"},
	}
	products := fakeProducts{
		"latte":   {ID: "latte", ShopID: "shop-1", Name: "Latte", Price: d("30000"), IsAvailable: true},
		"cake":    {ID: "cake", ShopID: "shop-1", Name: "Cake", Price: d("25000"), IsAvailable: false},
		"foreign": {ID: "foreign", ShopID: "shop-2", Name: "Tea", Price: d("10000"), IsAvailable: true},
	}
	tables := fakeTables{
		"t1": {ID: "t1", ShopID: "shop-1", Number: "T1"},
		"t9": {ID: "t9", ShopID: "shop-2", Number: "T9"},
	}
	rec := &recorder{}
	log, _ := test.NewNullLogger()
	return NewService(repo, shops, products, tables, rec, log), repo, rec
}

func TestCreate_PricesAndPersists(t *testing.T) {
	svc, repo, rec := fixture()
	table := "t1"

	o, err := svc.Create(context.Background(), CreateOrderRequest{
		ShopID:  "shop-1",
		TableID: &table,
		Type:    TypeDineIn,
		Items: []CreateOrderItem{{
			ProductID: "latte", Quantity: 2, Notes: " no ice ",
			SelectedOptions: []SelectedOption{{OptionID: "opt-size-l", Name: "Large"}},
		}},
	}, "emp-1")
	require.NoError(t, err)

	assert.Equal(t, StatusPending, o.Status)
	assert.Regexp(t, `^ORD-\d{14}-\d{4}$`, o.OrderNumber)
	assert.Equal(t, "60000", o.Subtotal.String())
	assert.Equal(t, "6000", o.VATAmount.String())
	assert.Equal(t, "3000", o.ServiceFee.String())
	assert.Equal(t, "0", o.DeliveryFee.String())
	assert.Equal(t, "69000", o.TotalAmount.String())
	require.NotNil(t, o.CreatedBy)
	assert.Equal(t, "emp-1", *o.CreatedBy)

	require.Len(t, o.Items, 1)
	it := o.Items[0]
	assert.Equal(t, "Latte", it.ProductName)
	assert.Equal(t, "30000", it.UnitPrice.String())
	assert.Equal(t, "60000", it.Subtotal.String())
	assert.Equal(t, "no ice", it.Notes)
	assert.Len(t, it.SelectedOptions, 1)
	require.NotNil(t, it.Product)
	require.NotNil(t, o.Table)
	assert.Equal(t, "T1", o.Table.Number)

	assert.Len(t, repo.orders, 1)
	require.Len(t, rec.got, 1)
	assert.Equal(t, events.OrderCreated, rec.got[0].Type)
}

func TestCreate_SnapshotSurvivesPriceChange(t *testing.T) {
	svc, _, _ := fixture()
	o, err := svc.Create(context.Background(), CreateOrderRequest{
		ShopID: "shop-1", Type: TypeTakeaway, Items: []CreateOrderItem{{ProductID: "latte", Quantity: 1}},
	}, "")
	require.NoError(t, err)

	svc.products.(fakeProducts)["latte"].Price = d("35000")
	got, err := svc.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, "30000", got.Items[0].ProductPrice.String())
	assert.Equal(t, "34500", got.TotalAmount.String())
}

func TestCreate_DeliveryFeeIsTaxed(t *testing.T) {
	svc, _, _ := fixture()
	fee := d("20000")
	o, err := svc.Create(context.Background(), CreateOrderRequest{
		ShopID: "shop-1", Type: TypeDelivery, DeliveryFee: &fee,
		Items: []CreateOrderItem{{ProductID: "latte", Quantity: 1}},
	}, "")
	require.NoError(t, err)
	// (30000 + 20000) * 1.15
	assert.Equal(t, "57500", o.TotalAmount.String())
}

func TestCreate_FailuresWriteNothing(t *testing.T) {
	table9 := "t9"
	cases := []struct {
		name string
		req  CreateOrderRequest
		kind error
	}{
		{"missing shop", CreateOrderRequest{ShopID: "nope", Type: TypeTakeaway, Items: []CreateOrderItem{{ProductID: "latte", Quantity: 1}}}, apperr.ErrNotFound},
		{"missing product", CreateOrderRequest{ShopID: "shop-1", Type: TypeTakeaway, Items: []CreateOrderItem{{ProductID: "latte", Quantity: 1}, {ProductID: "ghost", Quantity: 1}}}, apperr.ErrNotFound},
		{"product of another shop", CreateOrderRequest{ShopID: "shop-1", Type: TypeTakeaway, Items: []CreateOrderItem{{ProductID: "foreign", Quantity: 1}}}, apperr.ErrNotFound},
		{"unavailable product", CreateOrderRequest{ShopID: "shop-1", Type: TypeTakeaway, Items: []CreateOrderItem{{ProductID: "cake", Quantity: 1}}}, apperr.ErrBadRequest},
		{"table of another shop", CreateOrderRequest{ShopID: "shop-1", TableID: &table9, Type: TypeDineIn, Items: []CreateOrderItem{{ProductID: "latte", Quantity: 1}}}, apperr.ErrNotFound},
		{"no items", CreateOrderRequest{ShopID: "shop-1", Type: TypeTakeaway}, apperr.ErrBadRequest},
		{"quantity too large", CreateOrderRequest{ShopID: "shop-1", Type: TypeTakeaway, Items: []CreateOrderItem{{ProductID: "latte", Quantity: 1000}}}, apperr.ErrBadRequest},
		{"bad type", CreateOrderRequest{ShopID: "shop-1", Type: "drive_thru", Items: []CreateOrderItem{{ProductID: "latte", Quantity: 1}}}, apperr.ErrBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, repo, rec := fixture()
			_, err := svc.Create(context.Background(), tc.req, "")
			assert.True(t, errors.Is(err, tc.kind), "got %v", err)
			assert.Zero(t, repo.creates)
			assert.Empty(t, repo.orders)
			assert.Empty(t, rec.got)
		})
	}
}

func TestCreate_RetriesNumberCollision(t *testing.T) {
	svc, repo, _ := fixture()
	repo.collisions = 2
	_, err := svc.Create(context.Background(), CreateOrderRequest{
		ShopID: "shop-1", Type: TypeTakeaway, Items: []CreateOrderItem{{ProductID: "latte", Quantity: 1}},
	}, "")
	require.NoError(t, err)
	assert.Equal(t, 3, repo.creates)

	repo.collisions = MaxNumberAttempts
	repo.creates = 0
	_, err = svc.Create(context.Background(), CreateOrderRequest{
		ShopID: "shop-1", Type: TypeTakeaway, Items: []CreateOrderItem{{ProductID: "latte", Quantity: 1}},
	}, "")
	assert.ErrorIs(t, err, ErrNumberTaken)
	assert.Equal(t, MaxNumberAttempts, repo.creates)
}

func createOne(t *testing.T, svc *Service) *Order {
	t.Helper()
	o, err := svc.Create(context.Background(), CreateOrderRequest{
		ShopID: "shop-1", Type: TypeTakeaway, Items: []CreateOrderItem{{ProductID: "latte", Quantity: 1}},
	}, "")
	require.NoError(t, err)
	return o
}

func TestCancel(t *testing.T) {
	svc, repo, rec := fixture()
	ctx := context.Background()
	o := createOne(t, svc)

	got, err := svc.Cancel(ctx, o.ID, " out of milk ", "emp-2")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
	assert.NotNil(t, got.CancelledAt)
	require.NotNil(t, got.CancelledReason)
	assert.Equal(t, "out of milk", *got.CancelledReason)
	assert.Equal(t, events.OrderCancelled, rec.got[len(rec.got)-1].Type)

	_, err = svc.Cancel(ctx, o.ID, "again", "")
	assert.ErrorIs(t, err, ErrAlreadyCancelled)

	paid := createOne(t, svc)
	repo.orders[paid.ID].Status = StatusPaid
	_, err = svc.Cancel(ctx, paid.ID, "too late", "")
	assert.ErrorIs(t, err, ErrAlreadyPaid)
	assert.Equal(t, StatusPaid, repo.orders[paid.ID].Status)

	_, err = svc.Cancel(ctx, "missing", "", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatus(t *testing.T) {
	svc, repo, rec := fixture()
	ctx := context.Background()
	o := createOne(t, svc)

	got, err := svc.UpdateStatus(ctx, o.ID, StatusPreparing, "")
	require.NoError(t, err)
	assert.Equal(t, StatusPreparing, got.Status)
	assert.Nil(t, got.PaidAt)
	assert.Equal(t, events.OrderStatusChanged, rec.got[len(rec.got)-1].Type)

	got, err = svc.UpdateStatus(ctx, o.ID, StatusPaid, "")
	require.NoError(t, err)
	assert.NotNil(t, got.PaidAt)
	assert.Equal(t, events.OrderPaid, rec.got[len(rec.got)-1].Type)

	paidAt := *got.PaidAt

	got, err = svc.UpdateStatus(ctx, o.ID, StatusPaid, "")
	require.NoError(t, err)
	assert.Equal(t, paidAt, *got.PaidAt, "paid_at is stamped once")

	_, err = svc.UpdateStatus(ctx, o.ID, StatusCancelled, "")
	assert.ErrorIs(t, err, ErrAlreadyPaid)

	calls := repo.statusCalls
	_, err = svc.UpdateStatus(ctx, o.ID, "archived", "")
	assert.True(t, errors.Is(err, apperr.ErrBadRequest))
	assert.Equal(t, calls, repo.statusCalls)
}

func TestUpdate_MergesWithoutRepricing(t *testing.T) {
	svc, _, _ := fixture()
	ctx := context.Background()
	o := createOne(t, svc)

	name, notes, table := "Mai", "window seat", "t1"
	got, err := svc.Update(ctx, o.ID, UpdateOrderRequest{CustomerName: &name, Notes: &notes, TableID: &table})
	require.NoError(t, err)
	assert.Equal(t, "Mai", got.CustomerName)
	assert.Equal(t, "window seat", got.Notes)
	require.NotNil(t, got.TableID)
	assert.True(t, o.TotalAmount.Equal(got.TotalAmount))

	foreign := "t9"
	_, err = svc.Update(ctx, o.ID, UpdateOrderRequest{TableID: &foreign})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	none := ""
	got, err = svc.Update(ctx, o.ID, UpdateOrderRequest{TableID: &none})
	require.NoError(t, err)
	assert.Nil(t, got.TableID)
}
