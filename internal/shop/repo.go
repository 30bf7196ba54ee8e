// Package shop provides the tenant model and its PostgreSQL repository.
package shop

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/cafe-pos/internal/apperr"
	"github.com/MikeMC777/cafe-pos/internal/db"
)

type Query struct {
	Q      string
	Limit  int
	Offset int
}

type Repository interface {
	Create(ctx context.Context, s *Shop) error
	GetByID(ctx context.Context, id string) (*Shop, error)
	List(ctx context.Context, q Query) ([]Shop, int, error)
	Update(ctx context.Context, s *Shop) error
	Delete(ctx context.Context, id string) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(pool *pgxpool.Pool) *PGRepo { return &PGRepo{db: pool} }

const shopColumns = `id, name, address, phone, vat_rate::text, service_fee_rate::text, currency, is_active, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, s *Shop) error {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO shops (name, address, phone, vat_rate, service_fee_rate, currency, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, created_at, updated_at
	`, s.Name, s.Address, s.Phone, s.VATRate, s.ServiceFeeRate, s.Currency, s.IsActive).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	return db.RejectedValue(err)
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Shop, error) {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	var s Shop
	err := r.db.QueryRow(ctx, `SELECT `+shopColumns+` FROM shops WHERE id=$1`, id).
		Scan(&s.ID, &s.Name, &s.Address, &s.Phone, &s.VATRate, &s.ServiceFeeRate, &s.Currency, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get shop: %w", err)
	}
	return &s, nil
}

func (r *PGRepo) List(ctx context.Context, q Query) ([]Shop, int, error) {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	const where = `WHERE ($1 = '' OR name ILIKE '%'||$1||'%')`
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM shops `+where, q.Q).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count shops: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+shopColumns+` FROM shops `+where+`
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, q.Q, q.Limit, q.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list shops: %w", err)
	}
	defer rows.Close()

	var out []Shop
	for rows.Next() {
		var s Shop
		if err := rows.Scan(&s.ID, &s.Name, &s.Address, &s.Phone, &s.VATRate, &s.ServiceFeeRate, &s.Currency, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, s *Shop) error {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		UPDATE shops
		SET name=$2, address=$3, phone=$4, vat_rate=$5, service_fee_rate=$6, currency=$7, is_active=$8, updated_at=NOW()
		WHERE id=$1
		RETURNING updated_at
	`, s.ID, s.Name, s.Address, s.Phone, s.VATRate, s.ServiceFeeRate, s.Currency, s.IsActive).Scan(&s.UpdatedAt)
	if db.IsNoRows(err) {
		return ErrNotFound
	}
	return db.RejectedValue(err)
}

func (r *PGRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM shops WHERE id=$1`, id)
	if db.IsForeignKeyViolation(err) {
		return apperr.BadRequest("shop still has orders or other records")
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
