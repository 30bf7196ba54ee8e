// Package inventory is the ingredient stock ledger. Every stock change is an
// append-only transaction row written together with the new stock level.
package inventory

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/cafe-pos/internal/apperr"
)

var (
	ErrNotFound           = apperr.NotFound("inventory transaction")
	ErrIngredientNotFound = apperr.NotFound("ingredient")
	ErrInsufficientStock  = apperr.BadRequest("insufficient stock")
)

type Type string

const (
	TypeIn         Type = "in"
	TypeOut        Type = "out"
	TypeAutoDeduct Type = "auto_deduct"
)

func (t Type) Valid() bool {
	switch t {
	case TypeIn, TypeOut, TypeAutoDeduct:
		return true
	}
	return false
}

// Withdraws reports whether t lowers stock.
func (t Type) Withdraws() bool { return t == TypeOut || t == TypeAutoDeduct }

// Decimal places kept by the ledger columns.
const (
	QuantityPlaces = 3
	MoneyPlaces    = 2
)

// FitsScale reports whether d has at most places digits after the point.
func FitsScale(d decimal.Decimal, places int32) bool { return d.Equal(d.Round(places)) }

// OpeningBalanceReason marks the ledger row written when an ingredient is created with stock.
const OpeningBalanceReason = "opening balance"

type Transaction struct {
	ID             string              `json:"id"`
	ShopID         string              `json:"shop_id"`
	IngredientID   string              `json:"ingredient_id"`
	Type           Type                `json:"transaction_type"`
	Quantity       decimal.Decimal     `json:"quantity"`
	UnitPrice      decimal.NullDecimal `json:"unit_price"`
	TotalAmount    decimal.NullDecimal `json:"total_amount"`
	StockBefore    decimal.Decimal     `json:"stock_before"`
	StockAfter     decimal.Decimal     `json:"stock_after"`
	Reason         string              `json:"reason"`
	Notes          string              `json:"notes"`
	CreatedBy      *string             `json:"created_by"`
	CreatedAt      time.Time           `json:"created_at"`
	IngredientName string              `json:"ingredient_name,omitempty"`
}

// Stock is the ingredient state after a recorded transaction.
type Stock struct {
	IngredientID  string          `json:"ingredient_id"`
	Name          string          `json:"name"`
	Unit          string          `json:"unit"`
	CurrentStock  decimal.Decimal `json:"current_stock"`
	MinStockLevel decimal.Decimal `json:"min_stock_level"`
}

func (s Stock) IsLow() bool { return s.CurrentStock.LessThanOrEqual(s.MinStockLevel) }

// CreateTransactionRequest payload of POST /inventory-transactions.
// swagger:model CreateTransactionRequest
type CreateTransactionRequest struct {
	ShopID       string           `json:"shop_id" binding:"required,uuid"`
	IngredientID string           `json:"ingredient_id" binding:"required,uuid"`
	Type         Type             `json:"transaction_type" binding:"required" example:"in"`
	Quantity     decimal.Decimal  `json:"quantity" swaggertype:"string" example:"5.5"`
	UnitPrice    *decimal.Decimal `json:"unit_price" swaggertype:"string" example:"12000"`
	Reason       string           `json:"reason" binding:"max=255" example:"weekly delivery"`
	Notes        string           `json:"notes"`
}

type Query struct {
	ShopID       string
	IngredientID string
	Type         string
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
}

// NewTransaction validates req and builds the ledger row to record.
// total_amount is unit_price × quantity when a unit price is given.
func NewTransaction(req CreateTransactionRequest, createdBy string) (*Transaction, error) {
	if !req.Type.Valid() {
		return nil, apperr.BadRequest("invalid transaction_type %q", req.Type)
	}
	if !req.Quantity.IsPositive() {
		return nil, apperr.BadRequest("quantity must be greater than 0")
	}
	if !FitsScale(req.Quantity, QuantityPlaces) {
		return nil, apperr.BadRequest("quantity allows at most %d decimal places", QuantityPlaces)
	}
	t := &Transaction{
		ShopID:       req.ShopID,
		IngredientID: req.IngredientID,
		Type:         req.Type,
		Quantity:     req.Quantity,
		Reason:       strings.TrimSpace(req.Reason),
		Notes:        strings.TrimSpace(req.Notes),
	}
	if req.UnitPrice != nil {
		if req.UnitPrice.IsNegative() {
			return nil, apperr.BadRequest("unit_price must be >= 0")
		}
		if !FitsScale(*req.UnitPrice, MoneyPlaces) {
			return nil, apperr.BadRequest("unit_price allows at most %d decimal places", MoneyPlaces)
		}
		t.UnitPrice = decimal.NullDecimal{Decimal: *req.UnitPrice, Valid: true}
		t.TotalAmount = decimal.NullDecimal{Decimal: req.UnitPrice.Mul(req.Quantity).Round(2), Valid: true}
	}
	if createdBy != "" {
		t.CreatedBy = &createdBy
	}
	return t, nil
}

// Apply returns the stock level after moving qty of kind t. Withdrawals that
// would take stock below zero fail with ErrInsufficientStock.
func Apply(current decimal.Decimal, t Type, qty decimal.Decimal) (decimal.Decimal, error) {
	if !t.Withdraws() {
		return current.Add(qty), nil
	}
	if current.LessThan(qty) {
		return current, ErrInsufficientStock
	}
	return current.Sub(qty), nil
}
