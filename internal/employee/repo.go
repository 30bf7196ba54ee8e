package employee

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/cafe-pos/internal/apperr"
	"github.com/MikeMC777/cafe-pos/internal/db"
)

type Repository interface {
	Create(ctx context.Context, e *Employee) error
	GetByID(ctx context.Context, id string) (*Employee, error)
	GetByEmail(ctx context.Context, email string) (*Employee, error)
	List(ctx context.Context, q Query) ([]Employee, int, error)
	Update(ctx context.Context, e *Employee, updatePassword bool) error
	Delete(ctx context.Context, id string) (bool, error)
	SetPermissions(ctx context.Context, id string, codes []string) error
	ListPermissions(ctx context.Context) ([]Permission, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(pool *pgxpool.Pool) *PGRepo { return &PGRepo{db: pool} }

const employeeColumns = `e.id, e.shop_id, e.full_name, e.email, e.phone, e.role, e.password_hash, e.is_active, e.created_at, e.updated_at,
	COALESCE((SELECT array_agg(ep.permission_code ORDER BY ep.permission_code)
	          FROM employee_permissions ep WHERE ep.employee_id = e.id), '{}')`

func scanEmployee(row interface{ Scan(...any) error }, e *Employee) error {
	return row.Scan(&e.ID, &e.ShopID, &e.FullName, &e.Email, &e.Phone, &e.Role, &e.PasswordHash,
		&e.IsActive, &e.CreatedAt, &e.UpdatedAt, &e.Permissions)
}

// Create inserts the employee and its initial permissions in one transaction.
func (r *PGRepo) Create(ctx context.Context, e *Employee) error {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	return db.InTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO employees (shop_id, full_name, email, phone, role, password_hash, is_active)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
			RETURNING id, created_at, updated_at
		`, e.ShopID, e.FullName, e.Email, e.Phone, string(e.Role), e.PasswordHash, e.IsActive).
			Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
		if err != nil {
			return mapWriteErr(err)
		}
		return replacePermissions(ctx, tx, e.ID, e.Permissions)
	})
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Employee, error) {
	return r.getOne(ctx, `e.id = $1`, id)
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (*Employee, error) {
	return r.getOne(ctx, `e.email = $1`, email)
}

func (r *PGRepo) getOne(ctx context.Context, cond string, arg string) (*Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	var e Employee
	err := scanEmployee(r.db.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees e WHERE `+cond, arg), &e)
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get employee: %w", err)
	}
	return &e, nil
}

func (r *PGRepo) List(ctx context.Context, q Query) ([]Employee, int, error) {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	const where = `
		WHERE ($1 = '' OR e.shop_id::text = $1)
		  AND ($2 = '' OR e.role = $2)
		  AND ($3 = '' OR e.full_name ILIKE '%'||$3||'%' OR e.email ILIKE '%'||$3||'%')`
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM employees e `+where, q.ShopID, q.Role, q.Q).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count employees: %w", err)
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+employeeColumns+` FROM employees e `+where+`
		ORDER BY e.full_name LIMIT $4 OFFSET $5
	`, q.ShopID, q.Role, q.Q, q.Limit, q.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		var e Employee
		if err := scanEmployee(rows, &e); err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, e *Employee, updatePassword bool) error {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	var err error
	if updatePassword {
		err = r.db.QueryRow(ctx, `
			UPDATE employees
			SET full_name=$2, email=$3, phone=$4, role=$5, is_active=$6, password_hash=$7, updated_at=NOW()
			WHERE id=$1
			RETURNING updated_at
		`, e.ID, e.FullName, e.Email, e.Phone, string(e.Role), e.IsActive, e.PasswordHash).Scan(&e.UpdatedAt)
	} else {
		err = r.db.QueryRow(ctx, `
			UPDATE employees
			SET full_name=$2, email=$3, phone=$4, role=$5, is_active=$6, updated_at=NOW()
			WHERE id=$1
			RETURNING updated_at
		`, e.ID, e.FullName, e.Email, e.Phone, string(e.Role), e.IsActive).Scan(&e.UpdatedAt)
	}
	if db.IsNoRows(err) {
		return ErrNotFound
	}
	return mapWriteErr(err)
}

func (r *PGRepo) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM employees WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *PGRepo) SetPermissions(ctx context.Context, id string, codes []string) error {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	return db.InTx(ctx, r.db, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM employees WHERE id=$1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM employee_permissions WHERE employee_id=$1`, id); err != nil {
			return err
		}
		return replacePermissions(ctx, tx, id, codes)
	})
}

func replacePermissions(ctx context.Context, tx pgx.Tx, id string, codes []string) error {
	for _, code := range codes {
		_, err := tx.Exec(ctx, `
			INSERT INTO employee_permissions (employee_id, permission_code) VALUES ($1,$2)
			ON CONFLICT DO NOTHING
		`, id, code)
		if db.IsForeignKeyViolation(err) {
			return apperr.BadRequest("unknown permission %q", code)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *PGRepo) ListPermissions(ctx context.Context) ([]Permission, error) {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT code, description FROM permissions ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Permission{}
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.Code, &p.Description); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func mapWriteErr(err error) error {
	switch {
	case err == nil:
		return nil
	case db.IsUniqueViolation(err):
		return ErrAlreadyExist
	case db.IsForeignKeyViolation(err):
		return apperr.BadRequest("shop does not exist")
	}
	return db.RejectedValue(err)
}
