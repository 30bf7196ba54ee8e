package product

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/cafe-pos/internal/apperr"
)

var (
	ErrNotFound       = apperr.NotFound("product")
	ErrOptionNotFound = apperr.NotFound("product option")
)

type Product struct {
	ID          string  `json:"id"`
	ShopID      string  `json:"shop_id"`
	CategoryID  *string `json:"category_id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	// NUMERIC(12,2) in Postgres; serialized as a string to avoid rounding errors
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url,omitempty"`
	IsAvailable bool            `json:"is_available"`
	Options     []Option        `json:"options,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Option is a selectable variation (size, milk, extra shot). The adjustment
// may be negative.
type Option struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"product_id"`
	Name            string          `json:"name"`
	PriceAdjustment decimal.Decimal `json:"price_adjustment"`
	IsDefault       bool            `json:"is_default"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ListResponse-style filters for GET /products.
type Query struct {
	ShopID     string
	CategoryID string
	Q          string
	Available  *bool
	Limit      int
	Offset     int
}

// CreateProductRequest payload of creation.
// swagger:model CreateProductRequest
type CreateProductRequest struct {
	ShopID      string          `json:"shop_id" binding:"required,uuid" example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
	CategoryID  *string         `json:"category_id" binding:"omitempty,uuid"`
	Name        string          `json:"name" binding:"required,max=255" example:"Ca phe sua da"`
	Description string          `json:"description" example:"Iced coffee with condensed milk"`
	Price       decimal.Decimal `json:"price" swaggertype:"string" example:"30000"`
	ImageURL    string          `json:"image_url" binding:"omitempty,url"`
	IsAvailable *bool           `json:"is_available"`
}

// UpdateProductRequest payload of partial update.
// swagger:model UpdateProductRequest
type UpdateProductRequest struct {
	CategoryID  *string          `json:"category_id" binding:"omitempty,uuid"`
	Name        *string          `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price" swaggertype:"string"`
	ImageURL    *string          `json:"image_url" binding:"omitempty,url"`
	IsAvailable *bool            `json:"is_available"`
}

// CreateOptionRequest payload for POST /products/:id/options.
// swagger:model CreateOptionRequest
type CreateOptionRequest struct {
	Name            string          `json:"name" binding:"required,max=255" example:"Large"`
	PriceAdjustment decimal.Decimal `json:"price_adjustment" swaggertype:"string" example:"5000"`
	IsDefault       bool            `json:"is_default"`
}

func NewFromRequest(req CreateProductRequest) (*Product, error) {
	p := &Product{
		ShopID:      req.ShopID,
		CategoryID:  req.CategoryID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		IsAvailable: true,
	}
	if req.IsAvailable != nil {
		p.IsAvailable = *req.IsAvailable
	}
	return p, p.validate()
}

func (p *Product) Apply(req UpdateProductRequest) error {
	if req.CategoryID != nil {
		if *req.CategoryID == "" {
			p.CategoryID = nil
		} else {
			p.CategoryID = req.CategoryID
		}
	}
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.ImageURL != nil {
		p.ImageURL = *req.ImageURL
	}
	if req.IsAvailable != nil {
		p.IsAvailable = *req.IsAvailable
	}
	return p.validate()
}

func (p *Product) validate() error {
	if p.Name == "" {
		return apperr.BadRequest("name is required")
	}
	if p.Price.IsNegative() {
		return apperr.BadRequest("price must be non-negative")
	}
	return nil
}
