// Package ingredient manages stock items. Stock levels only change through
// the inventory ledger.
package ingredient

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/cafe-pos/internal/apperr"
	"github.com/MikeMC777/cafe-pos/internal/inventory"
)

var ErrNotFound = apperr.NotFound("ingredient")

type Ingredient struct {
	ID            string          `json:"id"`
	ShopID        string          `json:"shop_id"`
	Name          string          `json:"name"`
	Unit          string          `json:"unit"`
	CurrentStock  decimal.Decimal `json:"current_stock"`
	MinStockLevel decimal.Decimal `json:"min_stock_level"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	IsLowStock    bool            `json:"is_low_stock"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (i *Ingredient) refreshLowStock() {
	i.IsLowStock = i.CurrentStock.LessThanOrEqual(i.MinStockLevel)
}

// CreateIngredientRequest payload of creation. A positive current_stock is
// booked as an opening balance in the ledger.
// swagger:model CreateIngredientRequest
type CreateIngredientRequest struct {
	ShopID        string          `json:"shop_id" binding:"required,uuid"`
	Name          string          `json:"name" binding:"required,max=255" example:"Fresh milk"`
	Unit          string          `json:"unit" binding:"required,max=32" example:"l"`
	CurrentStock  decimal.Decimal `json:"current_stock" swaggertype:"string" example:"20"`
	MinStockLevel decimal.Decimal `json:"min_stock_level" swaggertype:"string" example:"5"`
	UnitPrice     decimal.Decimal `json:"unit_price" swaggertype:"string" example:"32000"`
}

// UpdateIngredientRequest payload of partial update. Stock is not writable here.
// swagger:model UpdateIngredientRequest
type UpdateIngredientRequest struct {
	Name          *string          `json:"name" binding:"omitempty,min=1,max=255"`
	Unit          *string          `json:"unit" binding:"omitempty,min=1,max=32"`
	MinStockLevel *decimal.Decimal `json:"min_stock_level" swaggertype:"string"`
	UnitPrice     *decimal.Decimal `json:"unit_price" swaggertype:"string"`
}

type Query struct {
	ShopID   string
	Q        string
	LowStock bool
	Limit    int
	Offset   int
}

func NewFromRequest(req CreateIngredientRequest) (*Ingredient, error) {
	in := &Ingredient{
		ShopID:        req.ShopID,
		Name:          strings.TrimSpace(req.Name),
		Unit:          strings.TrimSpace(req.Unit),
		CurrentStock:  req.CurrentStock,
		MinStockLevel: req.MinStockLevel,
		UnitPrice:     req.UnitPrice,
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	in.refreshLowStock()
	return in, nil
}

func (i *Ingredient) Apply(req UpdateIngredientRequest) error {
	if req.Name != nil {
		i.Name = strings.TrimSpace(*req.Name)
	}
	if req.Unit != nil {
		i.Unit = strings.TrimSpace(*req.Unit)
	}
	if req.MinStockLevel != nil {
		i.MinStockLevel = *req.MinStockLevel
	}
	if req.UnitPrice != nil {
		i.UnitPrice = *req.UnitPrice
	}
	if err := i.validate(); err != nil {
		return err
	}
	i.refreshLowStock()
	return nil
}

func (i *Ingredient) validate() error {
	switch {
	case i.Name == "":
		return apperr.BadRequest("name is required")
	case i.Unit == "":
		return apperr.BadRequest("unit is required")
	case i.CurrentStock.IsNegative():
		return apperr.BadRequest("current_stock must be >= 0")
	case i.MinStockLevel.IsNegative():
		return apperr.BadRequest("min_stock_level must be >= 0")
	case i.UnitPrice.IsNegative():
		return apperr.BadRequest("unit_price must be >= 0")
	case !inventory.FitsScale(i.CurrentStock, inventory.QuantityPlaces):
		return apperr.BadRequest("current_stock allows at most %d decimal places", inventory.QuantityPlaces)
	case !inventory.FitsScale(i.MinStockLevel, inventory.QuantityPlaces):
		return apperr.BadRequest("min_stock_level allows at most %d decimal places", inventory.QuantityPlaces)
	case !inventory.FitsScale(i.UnitPrice, inventory.MoneyPlaces):
		return apperr.BadRequest("unit_price allows at most %d decimal places", inventory.MoneyPlaces)
	}
	return nil
}
