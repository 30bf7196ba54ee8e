package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/cafe-pos/internal/db"
	"github.com/MikeMC777/cafe-pos/internal/order"
)

// ErrReceiptTaken reports a receipt_number collision; callers retry with a new number.
var ErrReceiptTaken = errors.New("receipt number already taken")

type Repository interface {
	// Settle locks the order, rejects paid or cancelled orders, inserts p
	// and marks the order paid, all in one transaction.
	Settle(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id string) (*Payment, error)
	List(ctx context.Context, q Query) ([]Payment, int, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(pool *pgxpool.Pool) *PGRepo { return &PGRepo{db: pool} }

func (r *PGRepo) Settle(ctx context.Context, p *Payment) error {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	return db.InTx(ctx, r.db, func(tx pgx.Tx) error {
		var status order.Status
		err := tx.QueryRow(ctx, `
			SELECT shop_id, order_number, status FROM orders WHERE id=$1 FOR UPDATE
		`, p.OrderID).Scan(&p.ShopID, &p.OrderNumber, &status)
		if db.IsNoRows(err) {
			return order.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lock order: %w", err)
		}
		if err := order.CheckCancel(status); err != nil {
			return err
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO payments (shop_id, order_id, receipt_number, payment_method, amount,
				received_amount, change_amount, status, notes, created_by)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
			RETURNING id, paid_at, created_at
		`, p.ShopID, p.OrderID, p.ReceiptNumber, string(p.Method), p.Amount,
			p.ReceivedAmount, p.ChangeAmount, p.Status, p.Notes, p.CreatedBy).
			Scan(&p.ID, &p.PaidAt, &p.CreatedAt)
		if db.IsUniqueViolation(err) {
			return ErrReceiptTaken
		}
		if err != nil {
			return fmt.Errorf("insert payment: %w", db.RejectedValue(err))
		}

		if _, err := tx.Exec(ctx, `
			UPDATE orders SET status='paid', paid_at=$2, updated_at=NOW() WHERE id=$1
		`, p.OrderID, p.PaidAt); err != nil {
			return fmt.Errorf("mark order paid: %w", err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO order_status_logs (order_id, status, changed_by, note) VALUES ($1,'paid',$2,$3)
		`, p.OrderID, p.CreatedBy, "payment "+p.ReceiptNumber)
		return err
	})
}

const paymentColumns = `p.id, p.shop_id, p.order_id, o.order_number, p.receipt_number, p.payment_method,
	p.amount::text, p.received_amount::text, p.change_amount::text, p.status, p.notes, p.created_by, p.paid_at, p.created_at`

func scanPayment(row interface{ Scan(...any) error }, p *Payment) error {
	return row.Scan(&p.ID, &p.ShopID, &p.OrderID, &p.OrderNumber, &p.ReceiptNumber, &p.Method,
		&p.Amount, &p.ReceivedAmount, &p.ChangeAmount, &p.Status, &p.Notes, &p.CreatedBy, &p.PaidAt, &p.CreatedAt)
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	var p Payment
	err := scanPayment(r.db.QueryRow(ctx, `
		SELECT `+paymentColumns+` FROM payments p JOIN orders o ON o.id = p.order_id WHERE p.id=$1
	`, id), &p)
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return &p, nil
}

func (r *PGRepo) List(ctx context.Context, q Query) ([]Payment, int, error) {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	const where = `
		WHERE ($1 = '' OR p.shop_id::text = $1)
		  AND ($2 = '' OR p.order_id::text = $2)
		  AND ($3 = '' OR p.payment_method = $3)
		  AND ($4::timestamptz IS NULL OR p.paid_at >= $4)
		  AND ($5::timestamptz IS NULL OR p.paid_at < $5)`
	args := []any{q.ShopID, q.OrderID, q.Method, q.From, q.To}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM payments p `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+paymentColumns+` FROM payments p JOIN orders o ON o.id = p.order_id
		`+where+`
		ORDER BY p.paid_at DESC LIMIT $6 OFFSET $7
	`, append(args, q.Limit, q.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		var p Payment
		if err := scanPayment(rows, &p); err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}
