// Package payment settles orders.
package payment

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/cafe-pos/internal/apperr"
)

var (
	ErrNotFound             = apperr.NotFound("payment")
	ErrInsufficientReceived = apperr.BadRequest("received amount is less than amount due")
)

type Method string

const (
	MethodCash         Method = "cash"
	MethodCard         Method = "card"
	MethodBankTransfer Method = "bank_transfer"
	MethodEWallet      Method = "e_wallet"
)

func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodCard, MethodBankTransfer, MethodEWallet:
		return true
	}
	return false
}

const StatusCompleted = "completed"

type Payment struct {
	ID             string              `json:"id"`
	ShopID         string              `json:"shop_id"`
	OrderID        string              `json:"order_id"`
	OrderNumber    string              `json:"order_number,omitempty"`
	ReceiptNumber  string              `json:"receipt_number"`
	Method         Method              `json:"payment_method"`
	Amount         decimal.Decimal     `json:"amount"`
	ReceivedAmount decimal.NullDecimal `json:"received_amount"`
	ChangeAmount   decimal.Decimal     `json:"change_amount"`
	Status         string              `json:"status"`
	Notes          string              `json:"notes"`
	CreatedBy      *string             `json:"created_by"`
	PaidAt         time.Time           `json:"paid_at"`
	CreatedAt      time.Time           `json:"created_at"`
}

// CreatePaymentRequest payload of POST /payments.
// swagger:model CreatePaymentRequest
type CreatePaymentRequest struct {
	OrderID        string           `json:"order_id" binding:"required,uuid"`
	Method         Method           `json:"payment_method" binding:"required" example:"cash"`
	Amount         decimal.Decimal  `json:"amount" swaggertype:"string" example:"69000"`
	ReceivedAmount *decimal.Decimal `json:"received_amount" swaggertype:"string" example:"100000"`
	Notes          string           `json:"notes"`
}

type Query struct {
	ShopID  string
	OrderID string
	Method  string
	From    *time.Time
	To      *time.Time
	Limit   int
	Offset  int
}

// NewPayment validates req and computes the change. For cash the received
// amount defaults to the amount and may not fall short of it.
func NewPayment(req CreatePaymentRequest, createdBy string) (*Payment, error) {
	if !req.Method.Valid() {
		return nil, apperr.BadRequest("invalid payment_method %q", req.Method)
	}
	if req.Amount.IsNegative() {
		return nil, apperr.BadRequest("amount must be >= 0")
	}
	p := &Payment{
		OrderID:      req.OrderID,
		Method:       req.Method,
		Amount:       req.Amount.Round(2),
		ChangeAmount: decimal.Zero,
		Status:       StatusCompleted,
		Notes:        strings.TrimSpace(req.Notes),
	}
	received := req.ReceivedAmount
	if received == nil && req.Method == MethodCash {
		received = &p.Amount
	}
	if received != nil {
		r := received.Round(2)
		if r.LessThan(p.Amount) {
			return nil, ErrInsufficientReceived
		}
		p.ReceivedAmount = decimal.NullDecimal{Decimal: r, Valid: true}
		p.ChangeAmount = r.Sub(p.Amount)
	}
	if createdBy != "" {
		p.CreatedBy = &createdBy
	}
	return p, nil
}
