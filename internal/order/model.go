package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/cafe-pos/internal/apperr"
	"github.com/MikeMC777/cafe-pos/internal/product"
	"github.com/MikeMC777/cafe-pos/internal/seating"
)

var (
	ErrNotFound         = apperr.NotFound("order")
	ErrAlreadyPaid      = apperr.BadRequest("order already paid")
	ErrAlreadyCancelled = apperr.BadRequest("order already cancelled")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusServed    Status = "served"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every order status in lifecycle order.
var Statuses = []Status{StatusPending, StatusPreparing, StatusReady, StatusServed, StatusPaid, StatusCancelled}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

type Type string

const (
	TypeDineIn   Type = "dine_in"
	TypeTakeaway Type = "takeaway"
	TypeDelivery Type = "delivery"
)

func (t Type) Valid() bool {
	switch t {
	case TypeDineIn, TypeTakeaway, TypeDelivery:
		return true
	}
	return false
}

type ItemStatus string

const ItemPending ItemStatus = "pending"

// Order totals are computed once at creation and never recomputed.
type Order struct {
	ID              string          `json:"id"`
	ShopID          string          `json:"shop_id"`
	OrderNumber     string          `json:"order_number"`
	TableID         *string         `json:"table_id"`
	Type            Type            `json:"order_type"`
	CustomerName    string          `json:"customer_name"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	VATAmount       decimal.Decimal `json:"vat_amount"`
	ServiceFee      decimal.Decimal `json:"service_fee"`
	DeliveryFee     decimal.Decimal `json:"delivery_fee"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Status          Status          `json:"status"`
	Notes           string          `json:"notes"`
	CreatedBy       *string         `json:"created_by"`
	CancelledReason *string         `json:"cancelled_reason"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	PaidAt          *time.Time      `json:"paid_at"`
	CancelledAt     *time.Time      `json:"cancelled_at"`

	Table *seating.Table `json:"table,omitempty"`
	Items []Item         `json:"items,omitempty"`
}

// Item snapshots the product name and price at order time.
type Item struct {
	ID              string           `json:"id"`
	OrderID         string           `json:"order_id"`
	ProductID       *string          `json:"product_id"`
	ProductName     string           `json:"product_name"`
	ProductPrice    decimal.Decimal  `json:"product_price"`
	Quantity        int              `json:"quantity"`
	UnitPrice       decimal.Decimal  `json:"unit_price"`
	Subtotal        decimal.Decimal  `json:"subtotal"`
	SelectedOptions []SelectedOption `json:"selected_options"`
	Notes           string           `json:"notes"`
	Status          ItemStatus       `json:"status"`
	CreatedAt       time.Time        `json:"created_at"`

	Product *product.Product `json:"product,omitempty"`
}

// SelectedOption is stored with the item for the kitchen; it does not change the price.
type SelectedOption struct {
	OptionID string `json:"option_id"`
	Name     string `json:"name,omitempty"`
}

type Query struct {
	ShopID  string
	Status  string
	Type    string
	TableID string
	From    *time.Time
	To      *time.Time
	Limit   int
	Offset  int
}

// StatusChange is one transition written to the order and its status log.
type StatusChange struct {
	Target  Status
	Reason  string
	ActorID string
}

type Stats struct {
	TotalOrders int             `json:"total_orders"`
	ByStatus    map[Status]int  `json:"by_status"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// CheckCancel allows cancelling anything that is neither paid nor already cancelled.
func CheckCancel(current Status) error {
	switch current {
	case StatusPaid:
		return ErrAlreadyPaid
	case StatusCancelled:
		return ErrAlreadyCancelled
	}
	return nil
}

// EntersPaid reports whether moving from current to target is the transition
// that stamps paid_at.
func EntersPaid(current, target Status) bool {
	return target == StatusPaid && current != StatusPaid
}

// CheckTransition validates a status update. Ordering of the forward
// statuses is up to the caller; only cancellation is guarded.
func CheckTransition(current, target Status) error {
	if !target.Valid() {
		return apperr.BadRequest("invalid status %q", target)
	}
	if target == StatusCancelled {
		return CheckCancel(current)
	}
	return nil
}
