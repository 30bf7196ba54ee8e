// Package category groups catalog products per shop.
package category

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/cafe-pos/internal/apperr"
	"github.com/MikeMC777/cafe-pos/internal/db"
)

var ErrNotFound = apperr.NotFound("category")

type Category struct {
	ID          string    `json:"id"`
	ShopID      string    `json:"shop_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	SortOrder   int       `json:"sort_order"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateCategoryRequest payload of creation.
// swagger:model CreateCategoryRequest
type CreateCategoryRequest struct {
	ShopID      string `json:"shop_id" binding:"required,uuid"`
	Name        string `json:"name" binding:"required,max=255" example:"Coffee"`
	Description string `json:"description"`
	SortOrder   int    `json:"sort_order"`
}

// UpdateCategoryRequest payload of partial update.
// swagger:model UpdateCategoryRequest
type UpdateCategoryRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	SortOrder   *int    `json:"sort_order"`
	IsActive    *bool   `json:"is_active"`
}

func NewFromRequest(req CreateCategoryRequest) (*Category, error) {
	c := &Category{
		ShopID:      req.ShopID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		SortOrder:   req.SortOrder,
		IsActive:    true,
	}
	if c.Name == "" {
		return nil, apperr.BadRequest("name is required")
	}
	return c, nil
}

func (c *Category) Apply(req UpdateCategoryRequest) error {
	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.SortOrder != nil {
		c.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	if c.Name == "" {
		return apperr.BadRequest("name is required")
	}
	return nil
}

type Query struct {
	ShopID string
	Limit  int
	Offset int
}

type Repository interface {
	Create(ctx context.Context, c *Category) error
	GetByID(ctx context.Context, id string) (*Category, error)
	List(ctx context.Context, q Query) ([]Category, int, error)
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id string) (bool, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(pool *pgxpool.Pool) *PGRepo { return &PGRepo{db: pool} }

const columns = `id, shop_id, name, description, sort_order, is_active, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, c *Category) error {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO categories (shop_id, name, description, sort_order, is_active)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at, updated_at
	`, c.ShopID, c.Name, c.Description, c.SortOrder, c.IsActive).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return mapWriteErr(err, c.Name)
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Category, error) {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	var c Category
	err := r.db.QueryRow(ctx, `SELECT `+columns+` FROM categories WHERE id=$1`, id).
		Scan(&c.ID, &c.ShopID, &c.Name, &c.Description, &c.SortOrder, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

func (r *PGRepo) List(ctx context.Context, q Query) ([]Category, int, error) {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	const where = `WHERE ($1 = '' OR shop_id::text = $1)`
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM categories `+where, q.ShopID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count categories: %w", err)
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+columns+` FROM categories `+where+`
		ORDER BY sort_order, name LIMIT $2 OFFSET $3
	`, q.ShopID, q.Limit, q.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.ShopID, &c.Name, &c.Description, &c.SortOrder, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, c *Category) error {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		UPDATE categories
		SET name=$2, description=$3, sort_order=$4, is_active=$5, updated_at=NOW()
		WHERE id=$1
		RETURNING updated_at
	`, c.ID, c.Name, c.Description, c.SortOrder, c.IsActive).Scan(&c.UpdatedAt)
	if db.IsNoRows(err) {
		return ErrNotFound
	}
	return mapWriteErr(err, c.Name)
}

func (r *PGRepo) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func mapWriteErr(err error, name string) error {
	switch {
	case err == nil:
		return nil
	case db.IsUniqueViolation(err):
		return apperr.Conflict("category %q already exists", name)
	case db.IsForeignKeyViolation(err):
		return apperr.BadRequest("shop does not exist")
	}
	return db.RejectedValue(err)
}
