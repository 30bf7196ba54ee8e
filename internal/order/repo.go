package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/cafe-pos/internal/apperr"
	"github.com/MikeMC777/cafe-pos/internal/db"
)

// ErrNumberTaken reports a collision on order_number; callers retry with a new number.
var ErrNumberTaken = errors.New("order number already taken")

type Repository interface {
	// Create writes the order, its items and the initial status log in one transaction.
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, q Query) ([]Order, int, error)
	Update(ctx context.Context, o *Order) error
	// SetStatus locks the order, runs check against its current status and
	// applies ch when check passes.
	SetStatus(ctx context.Context, id string, ch StatusChange, check func(current Status) error) (*Order, error)
	Stats(ctx context.Context, q Query) (Stats, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(pool *pgxpool.Pool) *PGRepo { return &PGRepo{db: pool} }

func (r *PGRepo) Create(ctx context.Context, o *Order) error {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	return db.InTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO orders (shop_id, order_number, table_id, order_type, customer_name,
				subtotal, vat_amount, service_fee, delivery_fee, total_amount, status, notes, created_by)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
			RETURNING id, created_at, updated_at
		`, o.ShopID, o.OrderNumber, o.TableID, string(o.Type), o.CustomerName,
			o.Subtotal, o.VATAmount, o.ServiceFee, o.DeliveryFee, o.TotalAmount,
			string(o.Status), o.Notes, o.CreatedBy).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
		if db.IsUniqueViolation(err) {
			return ErrNumberTaken
		}
		if err != nil {
			return fmt.Errorf("insert order: %w", mapWriteErr(err))
		}

		for i := range o.Items {
			it := &o.Items[i]
			it.OrderID = o.ID
			if it.SelectedOptions == nil {
				it.SelectedOptions = []SelectedOption{}
			}
			if err := tx.QueryRow(ctx, `
				INSERT INTO order_items (order_id, product_id, product_name, product_price, quantity,
					unit_price, subtotal, selected_options, notes, status)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
				RETURNING id, created_at
			`, o.ID, it.ProductID, it.ProductName, it.ProductPrice, it.Quantity,
				it.UnitPrice, it.Subtotal, it.SelectedOptions, it.Notes, string(it.Status)).
				Scan(&it.ID, &it.CreatedAt); err != nil {
				return fmt.Errorf("insert order item: %w", mapWriteErr(err))
			}
		}
		return insertLog(ctx, tx, o.ID, o.Status, o.CreatedBy, "")
	})
}

func insertLog(ctx context.Context, tx pgx.Tx, orderID string, s Status, actor *string, note string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO order_status_logs (order_id, status, changed_by, note) VALUES ($1,$2,$3,$4)
	`, orderID, string(s), actor, note)
	if err != nil {
		return fmt.Errorf("insert status log: %w", err)
	}
	return nil
}

const orderColumns = `id, shop_id, order_number, table_id, order_type, customer_name,
	subtotal::text, vat_amount::text, service_fee::text, delivery_fee::text, total_amount::text,
	status, notes, created_by, cancelled_reason, created_at, updated_at, paid_at, cancelled_at`

func scanOrder(row interface{ Scan(...any) error }, o *Order) error {
	return row.Scan(&o.ID, &o.ShopID, &o.OrderNumber, &o.TableID, &o.Type, &o.CustomerName,
		&o.Subtotal, &o.VATAmount, &o.ServiceFee, &o.DeliveryFee, &o.TotalAmount,
		&o.Status, &o.Notes, &o.CreatedBy, &o.CancelledReason, &o.CreatedAt, &o.UpdatedAt, &o.PaidAt, &o.CancelledAt)
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	var o Order
	err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id), &o)
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, product_id, product_name, product_price::text, quantity,
		       unit_price::text, subtotal::text, selected_options, notes, status, created_at
		FROM order_items WHERE order_id=$1
		ORDER BY created_at, id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.ProductPrice, &it.Quantity,
			&it.UnitPrice, &it.Subtotal, &it.SelectedOptions, &it.Notes, &it.Status, &it.CreatedAt); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	return &o, rows.Err()
}

const listWhere = `
	WHERE ($1 = '' OR shop_id::text = $1)
	  AND ($2 = '' OR status = $2)
	  AND ($3 = '' OR order_type = $3)
	  AND ($4 = '' OR table_id::text = $4)
	  AND ($5::timestamptz IS NULL OR created_at >= $5)
	  AND ($6::timestamptz IS NULL OR created_at < $6)`

func (q Query) args() []any {
	return []any{q.ShopID, q.Status, q.Type, q.TableID, q.From, q.To}
}

func (r *PGRepo) List(ctx context.Context, q Query) ([]Order, int, error) {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders `+listWhere, q.args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+orderColumns+` FROM orders `+listWhere+`
		ORDER BY created_at DESC LIMIT $7 OFFSET $8
	`, append(q.args(), q.Limit, q.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	return out, total, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, o *Order) error {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		UPDATE orders SET table_id=$2, customer_name=$3, notes=$4, updated_at=NOW()
		WHERE id=$1
		RETURNING updated_at
	`, o.ID, o.TableID, o.CustomerName, o.Notes).Scan(&o.UpdatedAt)
	if db.IsNoRows(err) {
		return ErrNotFound
	}
	return mapWriteErr(err)
}

func (r *PGRepo) SetStatus(ctx context.Context, id string, ch StatusChange, check func(Status) error) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	err := db.InTx(ctx, r.db, func(tx pgx.Tx) error {
		var current Status
		err := tx.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1 FOR UPDATE`, id).Scan(&current)
		if db.IsNoRows(err) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lock order: %w", err)
		}
		if err := check(current); err != nil {
			return err
		}

		var reason *string
		if ch.Target == StatusCancelled {
			reason = &ch.Reason
		}
		if _, err := tx.Exec(ctx, `
			UPDATE orders
			SET status=$2,
			    paid_at = CASE WHEN $4 THEN NOW() ELSE paid_at END,
			    cancelled_at = CASE WHEN $2 = 'cancelled' THEN NOW() ELSE cancelled_at END,
			    cancelled_reason = COALESCE($3, cancelled_reason),
			    updated_at = NOW()
			WHERE id=$1
		`, id, string(ch.Target), reason, EntersPaid(current, ch.Target)); err != nil {
			return fmt.Errorf("update order status: %w", err)
		}

		var actor *string
		if ch.ActorID != "" {
			actor = &ch.ActorID
		}
		return insertLog(ctx, tx, id, ch.Target, actor, ch.Reason)
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *PGRepo) Stats(ctx context.Context, q Query) (Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	q.Status = ""
	rows, err := r.db.Query(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(total_amount), 0)::text
		FROM orders `+listWhere+`
		GROUP BY status
	`, q.args()...)
	if err != nil {
		return Stats{}, fmt.Errorf("order stats: %w", err)
	}
	defer rows.Close()

	st := Stats{ByStatus: map[Status]int{}}
	for _, s := range Statuses {
		st.ByStatus[s] = 0
	}
	for rows.Next() {
		var (
			s   Status
			n   int
			sum decimal.Decimal
		)
		if err := rows.Scan(&s, &n, &sum); err != nil {
			return Stats{}, err
		}
		st.ByStatus[s] = n
		st.TotalOrders += n
		if s == StatusPaid {
			st.Revenue = sum
		}
	}
	return st, rows.Err()
}

// mapWriteErr turns constraint failures on order writes into client errors.
func mapWriteErr(err error) error {
	if db.IsForeignKeyViolation(err) {
		return apperr.BadRequest("referenced shop, table or product does not exist")
	}
	return db.RejectedValue(err)
}
