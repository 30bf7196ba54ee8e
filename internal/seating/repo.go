package seating

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/cafe-pos/internal/apperr"
	"github.com/MikeMC777/cafe-pos/internal/db"
)

type Repository interface {
	CreateArea(ctx context.Context, a *Area) error
	GetArea(ctx context.Context, id string) (*Area, error)
	ListAreas(ctx context.Context, shopID string) ([]Area, error)
	RenameArea(ctx context.Context, id, name string) (*Area, error)
	DeleteArea(ctx context.Context, id string) (bool, error)

	CreateTable(ctx context.Context, t *Table) error
	GetTable(ctx context.Context, id string) (*Table, error)
	ListTables(ctx context.Context, q TableQuery) ([]Table, int, error)
	UpdateTable(ctx context.Context, t *Table) error
	DeleteTable(ctx context.Context, id string) (bool, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(pool *pgxpool.Pool) *PGRepo { return &PGRepo{db: pool} }

func (r *PGRepo) CreateArea(ctx context.Context, a *Area) error {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO areas (shop_id, name) VALUES ($1,$2)
		RETURNING id, created_at
	`, a.ShopID, a.Name).Scan(&a.ID, &a.CreatedAt)
	return mapWriteErr(err, "area", a.Name)
}

func (r *PGRepo) GetArea(ctx context.Context, id string) (*Area, error) {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	var a Area
	err := r.db.QueryRow(ctx, `SELECT id, shop_id, name, created_at FROM areas WHERE id=$1`, id).
		Scan(&a.ID, &a.ShopID, &a.Name, &a.CreatedAt)
	if db.IsNoRows(err) {
		return nil, ErrAreaNotFound
	}
	return &a, err
}

func (r *PGRepo) ListAreas(ctx context.Context, shopID string) ([]Area, error) {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, shop_id, name, created_at FROM areas
		WHERE ($1 = '' OR shop_id::text = $1)
		ORDER BY name
	`, shopID)
	if err != nil {
		return nil, fmt.Errorf("list areas: %w", err)
	}
	defer rows.Close()

	out := []Area{}
	for rows.Next() {
		var a Area
		if err := rows.Scan(&a.ID, &a.ShopID, &a.Name, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PGRepo) RenameArea(ctx context.Context, id, name string) (*Area, error) {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	var a Area
	err := r.db.QueryRow(ctx, `
		UPDATE areas SET name=$2 WHERE id=$1
		RETURNING id, shop_id, name, created_at
	`, id, name).Scan(&a.ID, &a.ShopID, &a.Name, &a.CreatedAt)
	if db.IsNoRows(err) {
		return nil, ErrAreaNotFound
	}
	if err := mapWriteErr(err, "area", name); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *PGRepo) DeleteArea(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM areas WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

const tableColumns = `id, shop_id, area_id, number, capacity, status, created_at, updated_at`

func scanTable(row interface{ Scan(...any) error }, t *Table) error {
	return row.Scan(&t.ID, &t.ShopID, &t.AreaID, &t.Number, &t.Capacity, &t.Status, &t.CreatedAt, &t.UpdatedAt)
}

func (r *PGRepo) CreateTable(ctx context.Context, t *Table) error {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO tables (shop_id, area_id, number, capacity, status)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at, updated_at
	`, t.ShopID, t.AreaID, t.Number, t.Capacity, string(t.Status)).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	return mapWriteErr(err, "table", t.Number)
}

func (r *PGRepo) GetTable(ctx context.Context, id string) (*Table, error) {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	var t Table
	err := scanTable(r.db.QueryRow(ctx, `SELECT `+tableColumns+` FROM tables WHERE id=$1`, id), &t)
	if db.IsNoRows(err) {
		return nil, ErrTableNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get table: %w", err)
	}
	return &t, nil
}

func (r *PGRepo) ListTables(ctx context.Context, q TableQuery) ([]Table, int, error) {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	const where = `
		WHERE ($1 = '' OR shop_id::text = $1)
		  AND ($2 = '' OR area_id::text = $2)
		  AND ($3 = '' OR status = $3)`
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tables `+where, q.ShopID, q.AreaID, q.Status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tables: %w", err)
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+tableColumns+` FROM tables `+where+`
		ORDER BY number LIMIT $4 OFFSET $5
	`, q.ShopID, q.AreaID, q.Status, q.Limit, q.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var out []Table
	for rows.Next() {
		var t Table
		if err := scanTable(rows, &t); err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	return out, total, rows.Err()
}

func (r *PGRepo) UpdateTable(ctx context.Context, t *Table) error {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		UPDATE tables
		SET area_id=$2, number=$3, capacity=$4, status=$5, updated_at=NOW()
		WHERE id=$1
		RETURNING updated_at
	`, t.ID, t.AreaID, t.Number, t.Capacity, string(t.Status)).Scan(&t.UpdatedAt)
	if db.IsNoRows(err) {
		return ErrTableNotFound
	}
	return mapWriteErr(err, "table", t.Number)
}

func (r *PGRepo) DeleteTable(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM tables WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func mapWriteErr(err error, kind, name string) error {
	switch {
	case err == nil:
		return nil
	case db.IsUniqueViolation(err):
		return apperr.Conflict("%s %q already exists", kind, name)
	case db.IsForeignKeyViolation(err):
		return apperr.BadRequest("referenced shop or area does not exist")
	}
	return db.RejectedValue(err)
}
