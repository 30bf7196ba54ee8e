// Package employee holds shop staff, their permissions and login.
package employee

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/MikeMC777/cafe-pos/internal/apperr"
)

var (
	ErrNotFound           = apperr.NotFound("employee")
	ErrAlreadyExist       = apperr.Conflict("employee email already exists")
	ErrInvalidCredentials = apperr.Unauthorized("invalid credentials")
)

type Role string

const (
	RoleOwner   Role = "owner"
	RoleManager Role = "manager"
	RoleCashier Role = "cashier"
	RoleBarista Role = "barista"
	RoleWaiter  Role = "waiter"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleManager, RoleCashier, RoleBarista, RoleWaiter:
		return true
	}
	return false
}

type Employee struct {
	ID           string    `json:"id"`
	ShopID       string    `json:"shop_id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	Permissions  []string  `json:"permissions"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Permission struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// CreateEmployeeRequest payload of creation.
// swagger:model CreateEmployeeRequest
type CreateEmployeeRequest struct {
	ShopID      string   `json:"shop_id" binding:"required,uuid"`
	FullName    string   `json:"full_name" binding:"required,max=255" example:"Nguyen Van A"`
	Email       string   `json:"email" binding:"required,email" example:"a@cafe.vn"`
	Phone       string   `json:"phone" binding:"omitempty,max=32"`
	Role        Role     `json:"role" binding:"required" example:"cashier"`
	Password    string   `json:"password" binding:"required,min=6"`
	Permissions []string `json:"permissions"`
}

// UpdateEmployeeRequest payload of partial update. An empty password keeps the current one.
// swagger:model UpdateEmployeeRequest
type UpdateEmployeeRequest struct {
	FullName *string `json:"full_name" binding:"omitempty,min=1,max=255"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Phone    *string `json:"phone" binding:"omitempty,max=32"`
	Role     *Role   `json:"role"`
	Password string  `json:"password" binding:"omitempty,min=6"`
	IsActive *bool   `json:"is_active"`
}

// SetPermissionsRequest replaces the employee's permission set.
// swagger:model SetPermissionsRequest
type SetPermissionsRequest struct {
	Permissions []string `json:"permissions" binding:"required"`
}

// LoginRequest payload of login.
// swagger:model LoginRequest
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Employee  *Employee `json:"employee"`
}

type Query struct {
	ShopID string
	Role   string
	Q      string
	Limit  int
	Offset int
}

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func (e *Employee) Apply(req UpdateEmployeeRequest) error {
	if req.FullName != nil {
		e.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Email != nil {
		e.Email = normalizeEmail(*req.Email)
	}
	if req.Phone != nil {
		e.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Role != nil {
		if !req.Role.Valid() {
			return apperr.BadRequest("invalid role %q", *req.Role)
		}
		e.Role = *req.Role
	}
	if req.IsActive != nil {
		e.IsActive = *req.IsActive
	}
	if e.FullName == "" {
		return apperr.BadRequest("full_name is required")
	}
	return nil
}
