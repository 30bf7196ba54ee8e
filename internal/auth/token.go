// Package auth issues and verifies the JWTs handed to employees at login.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Permission codes understood by the API.
const (
	PermOrders    = "orders.manage"
	PermPayments  = "payments.manage"
	PermInventory = "inventory.manage"
	PermCatalog   = "catalog.manage"
	PermReports   = "reports.view"
	PermStaff     = "staff.manage"
)

// AllPermissions lists every known permission code in display order.
var AllPermissions = []string{PermOrders, PermPayments, PermInventory, PermCatalog, PermReports, PermStaff}

const RoleOwner = "owner"

var ErrInvalidToken = errors.New("invalid token")

// Principal is the authenticated employee attached to a request.
type Principal struct {
	EmployeeID  string   `json:"employee_id"`
	ShopID      string   `json:"shop_id"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// Can reports whether p holds perm. Owners hold everything.
func (p Principal) Can(perm string) bool {
	if p.Role == RoleOwner {
		return true
	}
	for _, have := range p.Permissions {
		if have == perm {
			return true
		}
	}
	return false
}

type claims struct {
	ShopID      string   `json:"shop_id"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs an HS256 token for p and returns it with its expiry.
func (t *Tokens) Issue(p Principal) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		ShopID:      p.ShopID,
		Role:        p.Role,
		Permissions: p.Permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.EmployeeID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := tok.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

func (t *Tokens) Verify(raw string) (Principal, error) {
	var c claims
	tok, err := jwt.ParseWithClaims(raw, &c, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil || !tok.Valid {
		return Principal{}, ErrInvalidToken
	}
	return Principal{
		EmployeeID:  c.Subject,
		ShopID:      c.ShopID,
		Role:        c.Role,
		Permissions: c.Permissions,
	}, nil
}
