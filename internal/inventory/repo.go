package inventory

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/cafe-pos/internal/db"
)

type Repository interface {
	// Record locks the ingredient, applies t to its stock and appends t to
	// the ledger in one transaction. t is filled with its id and stock levels.
	Record(ctx context.Context, t *Transaction) (Stock, error)
	GetByID(ctx context.Context, id string) (*Transaction, error)
	List(ctx context.Context, q Query) ([]Transaction, int, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(pool *pgxpool.Pool) *PGRepo { return &PGRepo{db: pool} }

func (r *PGRepo) Record(ctx context.Context, t *Transaction) (Stock, error) {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	var st Stock
	err := db.InTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			SELECT id, name, unit, current_stock::text, min_stock_level::text
			FROM ingredients
			WHERE id=$1 AND shop_id=$2 AND deleted_at IS NULL
			FOR UPDATE
		`, t.IngredientID, t.ShopID).Scan(&st.IngredientID, &st.Name, &st.Unit, &st.CurrentStock, &st.MinStockLevel)
		if db.IsNoRows(err) {
			return ErrIngredientNotFound
		}
		if err != nil {
			return fmt.Errorf("lock ingredient: %w", err)
		}

		after, err := Apply(st.CurrentStock, t.Type, t.Quantity)
		if err != nil {
			return err
		}
		t.StockBefore, t.StockAfter = st.CurrentStock, after

		if err := Insert(ctx, tx, t); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			UPDATE ingredients SET current_stock=$2, updated_at=NOW() WHERE id=$1
		`, t.IngredientID, after); err != nil {
			return fmt.Errorf("update stock: %w", err)
		}
		st.CurrentStock = after
		return nil
	})
	return st, db.RejectedValue(err)
}

// Insert appends t to the ledger inside tx. StockBefore and StockAfter must be set.
func Insert(ctx context.Context, tx pgx.Tx, t *Transaction) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO inventory_transactions
			(shop_id, ingredient_id, transaction_type, quantity, unit_price, total_amount,
			 stock_before, stock_after, reason, notes, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING id, created_at
	`, t.ShopID, t.IngredientID, string(t.Type), t.Quantity, t.UnitPrice, t.TotalAmount,
		t.StockBefore, t.StockAfter, t.Reason, t.Notes, t.CreatedBy).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert inventory transaction: %w", err)
	}
	return nil
}

const txColumns = `t.id, t.shop_id, t.ingredient_id, t.transaction_type, t.quantity::text, t.unit_price::text,
	t.total_amount::text, t.stock_before::text, t.stock_after::text, t.reason, t.notes, t.created_by, t.created_at, i.name`

func scanTransaction(row interface{ Scan(...any) error }, t *Transaction) error {
	return row.Scan(&t.ID, &t.ShopID, &t.IngredientID, &t.Type, &t.Quantity, &t.UnitPrice,
		&t.TotalAmount, &t.StockBefore, &t.StockAfter, &t.Reason, &t.Notes, &t.CreatedBy, &t.CreatedAt, &t.IngredientName)
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	var t Transaction
	err := scanTransaction(r.db.QueryRow(ctx, `
		SELECT `+txColumns+`
		FROM inventory_transactions t JOIN ingredients i ON i.id = t.ingredient_id
		WHERE t.id=$1
	`, id), &t)
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get inventory transaction: %w", err)
	}
	return &t, nil
}

func (r *PGRepo) List(ctx context.Context, q Query) ([]Transaction, int, error) {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	const where = `
		WHERE ($1 = '' OR t.shop_id::text = $1)
		  AND ($2 = '' OR t.ingredient_id::text = $2)
		  AND ($3 = '' OR t.transaction_type = $3)
		  AND ($4::timestamptz IS NULL OR t.created_at >= $4)
		  AND ($5::timestamptz IS NULL OR t.created_at < $5)`
	args := []any{q.ShopID, q.IngredientID, q.Type, q.From, q.To}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM inventory_transactions t `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count inventory transactions: %w", err)
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+txColumns+`
		FROM inventory_transactions t JOIN ingredients i ON i.id = t.ingredient_id
		`+where+`
		ORDER BY t.created_at DESC LIMIT $6 OFFSET $7
	`, append(args, q.Limit, q.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list inventory transactions: %w", err)
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var t Transaction
		if err := scanTransaction(rows, &t); err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	return out, total, rows.Err()
}
