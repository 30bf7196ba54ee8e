package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/cafe-pos/internal/apperr"
	"github.com/MikeMC777/cafe-pos/internal/cache"
)

type memCache struct {
	cache.Nop
	data map[string][]byte
}

func (m *memCache) Set(_ context.Context, k string, v []byte, _ time.Duration) error {
	m.data[k] = v
	return nil
}

func (m *memCache) Get(_ context.Context, k string) ([]byte, error) { return m.data[k], nil }

type countingSource struct {
	calls    map[string]int
	topLimit int
}

func (c *countingSource) SalesSummary(context.Context, Filter) (SalesSummary, error) {
	c.calls["summary"]++
	return SalesSummary{TotalOrders: 3, PaidOrders: 2, GrossRevenue: decimal.NewFromInt(138000)}, nil
}

func (c *countingSource) DailyRevenue(context.Context, Filter) ([]DailyRevenue, error) {
	c.calls["daily"]++
	return []DailyRevenue{{Date: "2024-03-09", Orders: 2, Revenue: decimal.NewFromInt(138000)}}, nil
}

func (c *countingSource) TopProducts(_ context.Context, f Filter) ([]TopProduct, error) {
	c.calls["top"]++
	c.topLimit = f.Limit
	return []TopProduct{}, nil
}

func (c *countingSource) PaymentBreakdown(context.Context, Filter) ([]MethodTotal, error) {
	c.calls["methods"]++
	return []MethodTotal{{Method: "cash", Count: 2, Amount: decimal.NewFromInt(138000)}}, nil
}

func (c *countingSource) LowStock(context.Context, string) ([]LowStockItem, error) {
	c.calls["low"]++
	return []LowStockItem{}, nil
}

func newTestService() (*Service, *countingSource, *memCache) {
	src := &countingSource{calls: map[string]int{}}
	c := &memCache{Nop: cache.Nop{Namespace: "pos"}, data: map[string][]byte{}}
	return NewService(src, c, time.Minute), src, c
}

func TestSalesSummary_Cached(t *testing.T) {
	svc, src, c := newTestService()
	ctx := context.Background()
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	f := Filter{ShopID: "shop-1", From: &from}

	for i := 0; i < 2; i++ {
		got, err := svc.SalesSummary(ctx, f)
		require.NoError(t, err)
		assert.Equal(t, 2, got.PaidOrders)
		assert.Equal(t, "138000", got.GrossRevenue.String())
	}
	assert.Equal(t, 1, src.calls["summary"])
	assert.Contains(t, c.data, "pos:sales-summary:shop-1|2024-03-01T00:00:00Z|-|0")

	_, err := svc.SalesSummary(ctx, Filter{ShopID: "shop-2"})
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls["summary"])
}

func TestTopProducts_ClampsLimit(t *testing.T) {
	svc, src, _ := newTestService()
	ctx := context.Background()

	_, err := svc.TopProducts(ctx, Filter{ShopID: "s"})
	require.NoError(t, err)
	assert.Equal(t, DefaultTopLimit, src.topLimit)

	_, err = svc.TopProducts(ctx, Filter{ShopID: "s", Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, MaxTopLimit, src.topLimit)
}

func TestLowStock_NotCached(t *testing.T) {
	svc, src, _ := newTestService()
	for i := 0; i < 2; i++ {
		_, err := svc.LowStock(context.Background(), "s")
		require.NoError(t, err)
	}
	assert.Equal(t, 2, src.calls["low"])
}

func TestReports_RequireShop(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.SalesSummary(ctx, Filter{})
	assert.True(t, errors.Is(err, apperr.ErrBadRequest))
	_, err = svc.DailyRevenue(ctx, Filter{})
	assert.True(t, errors.Is(err, apperr.ErrBadRequest))
	_, err = svc.PaymentBreakdown(ctx, Filter{})
	assert.True(t, errors.Is(err, apperr.ErrBadRequest))
	_, err = svc.LowStock(ctx, "")
	assert.True(t, errors.Is(err, apperr.ErrBadRequest))
}
