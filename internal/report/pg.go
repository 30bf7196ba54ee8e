package report

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/cafe-pos/internal/db"
)

type PGSource struct{ db *pgxpool.Pool }

func NewPGSource(pool *pgxpool.Pool) *PGSource { return &PGSource{db: pool} }

const orderWindow = `
	o.shop_id = $1
	AND ($2::timestamptz IS NULL OR o.created_at >= $2)
	AND ($3::timestamptz IS NULL OR o.created_at < $3)`

func (s *PGSource) SalesSummary(ctx context.Context, f Filter) (SalesSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	var out SalesSummary
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE o.status = 'paid'),
		       COUNT(*) FILTER (WHERE o.status = 'cancelled'),
		       COALESCE(SUM(o.total_amount) FILTER (WHERE o.status = 'paid'), 0)::text,
		       COALESCE(SUM(o.subtotal) FILTER (WHERE o.status = 'paid'), 0)::text,
		       COALESCE(SUM(o.vat_amount) FILTER (WHERE o.status = 'paid'), 0)::text,
		       COALESCE(SUM(o.service_fee) FILTER (WHERE o.status = 'paid'), 0)::text,
		       COALESCE(SUM(o.delivery_fee) FILTER (WHERE o.status = 'paid'), 0)::text,
		       COALESCE(ROUND(AVG(o.total_amount) FILTER (WHERE o.status = 'paid'), 2), 0)::text
		FROM orders o
		WHERE `+orderWindow,
		f.ShopID, f.From, f.To,
	).Scan(&out.TotalOrders, &out.PaidOrders, &out.CancelledOrders, &out.GrossRevenue, &out.Subtotal,
		&out.VATAmount, &out.ServiceFee, &out.DeliveryFee, &out.AverageTicket)
	if err != nil {
		return SalesSummary{}, fmt.Errorf("sales summary: %w", err)
	}
	return out, nil
}

func (s *PGSource) DailyRevenue(ctx context.Context, f Filter) ([]DailyRevenue, error) {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	rows, err := s.db.Query(ctx, `
		SELECT to_char(date_trunc('day', o.paid_at), 'YYYY-MM-DD') AS day,
		       COUNT(*), SUM(o.total_amount)::text
		FROM orders o
		WHERE o.status = 'paid' AND `+orderWindow+`
		GROUP BY day
		ORDER BY day
	`, f.ShopID, f.From, f.To)
	if err != nil {
		return nil, fmt.Errorf("daily revenue: %w", err)
	}
	defer rows.Close()

	out := []DailyRevenue{}
	for rows.Next() {
		var d DailyRevenue
		if err := rows.Scan(&d.Date, &d.Orders, &d.Revenue); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *PGSource) TopProducts(ctx context.Context, f Filter) ([]TopProduct, error) {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	rows, err := s.db.Query(ctx, `
		SELECT i.product_id, i.product_name, SUM(i.quantity), SUM(i.subtotal)::text
		FROM order_items i
		JOIN orders o ON o.id = i.order_id
		WHERE o.status <> 'cancelled' AND `+orderWindow+`
		GROUP BY i.product_id, i.product_name
		ORDER BY SUM(i.quantity) DESC, i.product_name
		LIMIT $4
	`, f.ShopID, f.From, f.To, f.Limit)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	defer rows.Close()

	out := []TopProduct{}
	for rows.Next() {
		var p TopProduct
		if err := rows.Scan(&p.ProductID, &p.ProductName, &p.Quantity, &p.Revenue); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PGSource) PaymentBreakdown(ctx context.Context, f Filter) ([]MethodTotal, error) {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	rows, err := s.db.Query(ctx, `
		SELECT p.payment_method, COUNT(*), SUM(p.amount)::text
		FROM payments p
		WHERE p.shop_id = $1 AND p.status = 'completed'
		  AND ($2::timestamptz IS NULL OR p.paid_at >= $2)
		  AND ($3::timestamptz IS NULL OR p.paid_at < $3)
		GROUP BY p.payment_method
		ORDER BY SUM(p.amount) DESC
	`, f.ShopID, f.From, f.To)
	if err != nil {
		return nil, fmt.Errorf("payment breakdown: %w", err)
	}
	defer rows.Close()

	out := []MethodTotal{}
	for rows.Next() {
		var m MethodTotal
		if err := rows.Scan(&m.Method, &m.Count, &m.Amount); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PGSource) LowStock(ctx context.Context, shopID string) ([]LowStockItem, error) {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	rows, err := s.db.Query(ctx, `
		SELECT id, name, unit, current_stock::text, min_stock_level::text
		FROM ingredients
		WHERE shop_id = $1 AND deleted_at IS NULL AND current_stock <= min_stock_level
		ORDER BY current_stock - min_stock_level, name
	`, shopID)
	if err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}
	defer rows.Close()

	out := []LowStockItem{}
	for rows.Next() {
		var it LowStockItem
		if err := rows.Scan(&it.IngredientID, &it.Name, &it.Unit, &it.CurrentStock, &it.MinStockLevel); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
