// Package report computes read-only aggregates over orders, payments and
// ingredients. Results are cached for a short TTL.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/cafe-pos/internal/apperr"
	"github.com/MikeMC777/cafe-pos/internal/cache"
)

const (
	DefaultTopLimit = 10
	MaxTopLimit     = 50
)

// Filter scopes a report to one shop and an optional [From, To) window.
type Filter struct {
	ShopID string
	From   *time.Time
	To     *time.Time
	Limit  int
}

func (f Filter) key() string {
	ts := func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return t.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("%s|%s|%s|%d", f.ShopID, ts(f.From), ts(f.To), f.Limit)
}

type SalesSummary struct {
	TotalOrders     int             `json:"total_orders"`
	PaidOrders      int             `json:"paid_orders"`
	CancelledOrders int             `json:"cancelled_orders"`
	GrossRevenue    decimal.Decimal `json:"gross_revenue"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	VATAmount       decimal.Decimal `json:"vat_amount"`
	ServiceFee      decimal.Decimal `json:"service_fee"`
	DeliveryFee     decimal.Decimal `json:"delivery_fee"`
	AverageTicket   decimal.Decimal `json:"average_ticket"`
}

type DailyRevenue struct {
	Date    string          `json:"date"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

type TopProduct struct {
	ProductID   *string         `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
}

type MethodTotal struct {
	Method string          `json:"payment_method"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type LowStockItem struct {
	IngredientID  string          `json:"ingredient_id"`
	Name          string          `json:"name"`
	Unit          string          `json:"unit"`
	CurrentStock  decimal.Decimal `json:"current_stock"`
	MinStockLevel decimal.Decimal `json:"min_stock_level"`
}

// Source runs the aggregate queries.
type Source interface {
	SalesSummary(ctx context.Context, f Filter) (SalesSummary, error)
	DailyRevenue(ctx context.Context, f Filter) ([]DailyRevenue, error)
	TopProducts(ctx context.Context, f Filter) ([]TopProduct, error)
	PaymentBreakdown(ctx context.Context, f Filter) ([]MethodTotal, error)
	LowStock(ctx context.Context, shopID string) ([]LowStockItem, error)
}

type Service struct {
	src   Source
	cache cache.Cache
	ttl   time.Duration
}

func NewService(src Source, c cache.Cache, ttl time.Duration) *Service {
	if c == nil {
		c = cache.Nop{}
	}
	return &Service{src: src, cache: c, ttl: ttl}
}

func requireShop(f Filter) error {
	if f.ShopID == "" {
		return apperr.BadRequest("shop_id is required")
	}
	return nil
}

func (s *Service) SalesSummary(ctx context.Context, f Filter) (SalesSummary, error) {
	if err := requireShop(f); err != nil {
		return SalesSummary{}, err
	}
	return cache.Remember(ctx, s.cache, s.cache.GenerateKey("sales-summary", f.key()), s.ttl, func(ctx context.Context) (SalesSummary, error) {
		return s.src.SalesSummary(ctx, f)
	})
}

func (s *Service) DailyRevenue(ctx context.Context, f Filter) ([]DailyRevenue, error) {
	if err := requireShop(f); err != nil {
		return nil, err
	}
	return cache.Remember(ctx, s.cache, s.cache.GenerateKey("daily-revenue", f.key()), s.ttl, func(ctx context.Context) ([]DailyRevenue, error) {
		return s.src.DailyRevenue(ctx, f)
	})
}

func (s *Service) TopProducts(ctx context.Context, f Filter) ([]TopProduct, error) {
	if err := requireShop(f); err != nil {
		return nil, err
	}
	switch {
	case f.Limit <= 0:
		f.Limit = DefaultTopLimit
	case f.Limit > MaxTopLimit:
		f.Limit = MaxTopLimit
	}
	return cache.Remember(ctx, s.cache, s.cache.GenerateKey("top-products", f.key()), s.ttl, func(ctx context.Context) ([]TopProduct, error) {
		return s.src.TopProducts(ctx, f)
	})
}

func (s *Service) PaymentBreakdown(ctx context.Context, f Filter) ([]MethodTotal, error) {
	if err := requireShop(f); err != nil {
		return nil, err
	}
	return cache.Remember(ctx, s.cache, s.cache.GenerateKey("payment-methods", f.key()), s.ttl, func(ctx context.Context) ([]MethodTotal, error) {
		return s.src.PaymentBreakdown(ctx, f)
	})
}

// LowStock is not cached; it backs restocking decisions and must be current.
func (s *Service) LowStock(ctx context.Context, shopID string) ([]LowStockItem, error) {
	if shopID == "" {
		return nil, apperr.BadRequest("shop_id is required")
	}
	return s.src.LowStock(ctx, shopID)
}
