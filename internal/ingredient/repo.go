package ingredient

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/cafe-pos/internal/apperr"
	"github.com/MikeMC777/cafe-pos/internal/db"
	"github.com/MikeMC777/cafe-pos/internal/inventory"
)

type Repository interface {
	// Create inserts in and, when in.CurrentStock is positive, books the
	// opening balance as an "in" ledger row in the same transaction.
	Create(ctx context.Context, in *Ingredient, createdBy string) error
	GetByID(ctx context.Context, id string) (*Ingredient, error)
	List(ctx context.Context, q Query) ([]Ingredient, int, error)
	Update(ctx context.Context, in *Ingredient) error
	Delete(ctx context.Context, id string) (bool, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(pool *pgxpool.Pool) *PGRepo { return &PGRepo{db: pool} }

const ingredientColumns = `id, shop_id, name, unit, current_stock::text, min_stock_level::text, unit_price::text, created_at, updated_at`

func scanIngredient(row interface{ Scan(...any) error }, in *Ingredient) error {
	err := row.Scan(&in.ID, &in.ShopID, &in.Name, &in.Unit, &in.CurrentStock, &in.MinStockLevel, &in.UnitPrice, &in.CreatedAt, &in.UpdatedAt)
	if err == nil {
		in.refreshLowStock()
	}
	return err
}

func (r *PGRepo) Create(ctx context.Context, in *Ingredient, createdBy string) error {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	return db.InTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO ingredients (shop_id, name, unit, current_stock, min_stock_level, unit_price)
			VALUES ($1,$2,$3,$4,$5,$6)
			RETURNING id, created_at, updated_at
		`, in.ShopID, in.Name, in.Unit, in.CurrentStock, in.MinStockLevel, in.UnitPrice).
			Scan(&in.ID, &in.CreatedAt, &in.UpdatedAt)
		if err != nil {
			return mapWriteErr(err, in.Name)
		}
		if !in.CurrentStock.IsPositive() {
			return nil
		}

		t := &inventory.Transaction{
			ShopID:       in.ShopID,
			IngredientID: in.ID,
			Type:         inventory.TypeIn,
			Quantity:     in.CurrentStock,
			StockBefore:  decimal.Zero,
			StockAfter:   in.CurrentStock,
			Reason:       inventory.OpeningBalanceReason,
		}
		if in.UnitPrice.IsPositive() {
			t.UnitPrice = decimal.NullDecimal{Decimal: in.UnitPrice, Valid: true}
			t.TotalAmount = decimal.NullDecimal{Decimal: in.UnitPrice.Mul(in.CurrentStock).Round(2), Valid: true}
		}
		if createdBy != "" {
			t.CreatedBy = &createdBy
		}
		return inventory.Insert(ctx, tx, t)
	})
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Ingredient, error) {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	var in Ingredient
	err := scanIngredient(r.db.QueryRow(ctx, `
		SELECT `+ingredientColumns+` FROM ingredients WHERE id=$1 AND deleted_at IS NULL
	`, id), &in)
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get ingredient: %w", err)
	}
	return &in, nil
}

func (r *PGRepo) List(ctx context.Context, q Query) ([]Ingredient, int, error) {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	const where = `
		WHERE deleted_at IS NULL
		  AND ($1 = '' OR shop_id::text = $1)
		  AND ($2 = '' OR name ILIKE '%'||$2||'%')
		  AND (NOT $3 OR current_stock <= min_stock_level)`
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM ingredients `+where, q.ShopID, q.Q, q.LowStock).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count ingredients: %w", err)
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+ingredientColumns+` FROM ingredients `+where+`
		ORDER BY name LIMIT $4 OFFSET $5
	`, q.ShopID, q.Q, q.LowStock, q.Limit, q.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list ingredients: %w", err)
	}
	defer rows.Close()

	var out []Ingredient
	for rows.Next() {
		var in Ingredient
		if err := scanIngredient(rows, &in); err != nil {
			return nil, 0, err
		}
		out = append(out, in)
	}
	return out, total, rows.Err()
}

// Update writes the descriptive fields. current_stock is left to the ledger.
func (r *PGRepo) Update(ctx context.Context, in *Ingredient) error {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		UPDATE ingredients
		SET name=$2, unit=$3, min_stock_level=$4, unit_price=$5, updated_at=NOW()
		WHERE id=$1 AND deleted_at IS NULL
		RETURNING current_stock::text, updated_at
	`, in.ID, in.Name, in.Unit, in.MinStockLevel, in.UnitPrice).Scan(&in.CurrentStock, &in.UpdatedAt)
	if db.IsNoRows(err) {
		return ErrNotFound
	}
	if err != nil {
		return mapWriteErr(err, in.Name)
	}
	in.refreshLowStock()
	return nil
}

func (r *PGRepo) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `
		UPDATE ingredients SET deleted_at=NOW(), updated_at=NOW() WHERE id=$1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func mapWriteErr(err error, name string) error {
	switch {
	case db.IsUniqueViolation(err):
		return apperr.Conflict("ingredient %q already exists", name)
	case db.IsForeignKeyViolation(err):
		return apperr.BadRequest("shop does not exist")
	}
	return db.RejectedValue(err)
}
