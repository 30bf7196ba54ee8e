package order

import "github.com/shopspring/decimal"

// CreateOrderItem item payload.
// swagger:model CreateOrderItem
type CreateOrderItem struct {
	ProductID       string           `json:"product_id" binding:"required,uuid" example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
	Quantity        int              `json:"quantity" binding:"required,min=1,max=999" example:"2"`
	SelectedOptions []SelectedOption `json:"selected_options"`
	Notes           string           `json:"notes" example:"less sugar"`
}

// CreateOrderRequest order creation payload.
// swagger:model CreateOrderRequest
type CreateOrderRequest struct {
	ShopID       string            `json:"shop_id" binding:"required,uuid" example:"b2f5ff47-2b1e-4f22-8a96-5f3c1f2f2e7b"`
	TableID      *string           `json:"table_id" binding:"omitempty,uuid"`
	Type         Type              `json:"order_type" binding:"required" example:"dine_in"`
	CustomerName string            `json:"customer_name" binding:"max=255"`
	Items        []CreateOrderItem `json:"items" binding:"required,min=1,dive"`
	DeliveryFee  *decimal.Decimal  `json:"delivery_fee" swaggertype:"string" example:"0"`
	Notes        string            `json:"notes"`
}

// UpdateOrderRequest merges descriptive fields only; totals stay as created.
// swagger:model UpdateOrderRequest
type UpdateOrderRequest struct {
	TableID      *string `json:"table_id" binding:"omitempty,uuid"`
	CustomerName *string `json:"customer_name" binding:"omitempty,max=255"`
	Notes        *string `json:"notes"`
}

// UpdateStatusRequest status change payload.
// swagger:model UpdateStatusRequest
type UpdateStatusRequest struct {
	Status Status `json:"status" binding:"required" example:"preparing"`
}

// CancelOrderRequest cancellation payload.
// swagger:model CancelOrderRequest
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"max=500" example:"customer left"`
}
