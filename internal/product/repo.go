// Package product provides the catalog product model and its PostgreSQL repository.
package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/cafe-pos/internal/apperr"
	"github.com/MikeMC777/cafe-pos/internal/db"
)

type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, q Query) ([]Product, int, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) (bool, error)

	ListOptions(ctx context.Context, productID string) ([]Option, error)
	AddOption(ctx context.Context, o *Option) error
	DeleteOption(ctx context.Context, productID, optionID string) (bool, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(pool *pgxpool.Pool) *PGRepo { return &PGRepo{db: pool} }

const productColumns = `id, shop_id, category_id, name, description, price::text, image_url, is_available, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner, p *Product) error {
	return row.Scan(&p.ID, &p.ShopID, &p.CategoryID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.IsAvailable, &p.CreatedAt, &p.UpdatedAt)
}

func (r *PGRepo) Create(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO products (shop_id, category_id, name, description, price, image_url, is_available)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, created_at, updated_at
	`, p.ShopID, p.CategoryID, p.Name, p.Description, p.Price, p.ImageURL, p.IsAvailable).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if db.IsForeignKeyViolation(err) {
		return apperr.BadRequest("shop or category does not exist")
	}
	return db.RejectedValue(err)
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	var p Product
	err := scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id), &p)
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

func (r *PGRepo) List(ctx context.Context, q Query) ([]Product, int, error) {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	search := strings.TrimSpace(q.Q)
	const where = `
		WHERE ($1 = '' OR shop_id::text = $1)
		  AND ($2 = '' OR category_id::text = $2)
		  AND ($3 = '' OR name ILIKE '%'||$3||'%' OR description ILIKE '%'||$3||'%')
		  AND ($4::boolean IS NULL OR is_available = $4)`
	args := []any{q.ShopID, q.CategoryID, search, q.Available}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+productColumns+` FROM products `+where+`
		ORDER BY name
		LIMIT $5 OFFSET $6
	`, append(args, q.Limit, q.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		UPDATE products
		SET category_id = $2,
		    name = $3,
		    description = $4,
		    price = $5,
		    image_url = $6,
		    is_available = $7,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, p.ID, p.CategoryID, p.Name, p.Description, p.Price, p.ImageURL, p.IsAvailable).Scan(&p.UpdatedAt)
	if db.IsNoRows(err) {
		return ErrNotFound
	}
	if db.IsForeignKeyViolation(err) {
		return apperr.BadRequest("category does not exist")
	}
	return db.RejectedValue(err)
}

// Delete removes the product. Historical order items keep their snapshot;
// their product_id is set to NULL by the foreign key.
func (r *PGRepo) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *PGRepo) ListOptions(ctx context.Context, productID string) ([]Option, error) {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, product_id, name, price_adjustment::text, is_default, created_at
		FROM product_options WHERE product_id=$1
		ORDER BY created_at
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("list options: %w", err)
	}
	defer rows.Close()

	out := []Option{}
	for rows.Next() {
		var o Option
		if err := rows.Scan(&o.ID, &o.ProductID, &o.Name, &o.PriceAdjustment, &o.IsDefault, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *PGRepo) AddOption(ctx context.Context, o *Option) error {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO product_options (product_id, name, price_adjustment, is_default)
		VALUES ($1,$2,$3,$4)
		RETURNING id, created_at
	`, o.ProductID, o.Name, o.PriceAdjustment, o.IsDefault).Scan(&o.ID, &o.CreatedAt)
	switch {
	case db.IsForeignKeyViolation(err):
		return ErrNotFound
	case db.IsUniqueViolation(err):
		return apperr.Conflict("option %q already exists", o.Name)
	}
	return db.RejectedValue(err)
}

func (r *PGRepo) DeleteOption(ctx context.Context, productID, optionID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM product_options WHERE id=$1 AND product_id=$2`, optionID, productID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}
