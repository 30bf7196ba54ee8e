package shop

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/cafe-pos/internal/apperr"
)

var ErrNotFound = apperr.NotFound("shop")

var hundred = decimal.NewFromInt(100)

// Shop is a tenant. VAT and service-fee rates are percentages in [0,100].
type Shop struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Address        string          `json:"address"`
	Phone          string          `json:"phone"`
	VATRate        decimal.Decimal `json:"vat_rate"`
	ServiceFeeRate decimal.Decimal `json:"service_fee_rate"`
	Currency       string          `json:"currency"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// CreateShopRequest payload of creation.
// swagger:model CreateShopRequest
type CreateShopRequest struct {
	Name           string           `json:"name" binding:"required,max=255" example:"Cafe Sai Gon"`
	Address        string           `json:"address" example:"12 Le Loi, District 1"`
	Phone          string           `json:"phone" example:"0901234567"`
	VATRate        *decimal.Decimal `json:"vat_rate" swaggertype:"string" example:"10"`
	ServiceFeeRate *decimal.Decimal `json:"service_fee_rate" swaggertype:"string" example:"5"`
	Currency       string           `json:"currency" binding:"omitempty,len=3" example:"VND"`
}

// UpdateShopRequest payload of partial update.
// swagger:model UpdateShopRequest
type UpdateShopRequest struct {
	Name           *string          `json:"name" binding:"omitempty,min=1,max=255"`
	Address        *string          `json:"address"`
	Phone          *string          `json:"phone"`
	VATRate        *decimal.Decimal `json:"vat_rate" swaggertype:"string"`
	ServiceFeeRate *decimal.Decimal `json:"service_fee_rate" swaggertype:"string"`
	Currency       *string          `json:"currency" binding:"omitempty,len=3"`
	IsActive       *bool            `json:"is_active"`
}

func ValidateRate(name string, r decimal.Decimal) error {
	if r.IsNegative() || r.GreaterThan(hundred) {
		return apperr.BadRequest("%s must be between 0 and 100", name)
	}
	return nil
}

// NewFromRequest builds a shop with defaults applied and rates checked.
func NewFromRequest(req CreateShopRequest) (*Shop, error) {
	s := &Shop{
		Name:     strings.TrimSpace(req.Name),
		Address:  req.Address,
		Phone:    req.Phone,
		Currency: strings.ToUpper(req.Currency),
		IsActive: true,
	}
	if s.Currency == "" {
		s.Currency = "VND"
	}
	if req.VATRate != nil {
		s.VATRate = *req.VATRate
	}
	if req.ServiceFeeRate != nil {
		s.ServiceFeeRate = *req.ServiceFeeRate
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Apply merges a partial update into s.
func (s *Shop) Apply(req UpdateShopRequest) error {
	if req.Name != nil {
		s.Name = strings.TrimSpace(*req.Name)
	}
	if req.Address != nil {
		s.Address = *req.Address
	}
	if req.Phone != nil {
		s.Phone = *req.Phone
	}
	if req.VATRate != nil {
		s.VATRate = *req.VATRate
	}
	if req.ServiceFeeRate != nil {
		s.ServiceFeeRate = *req.ServiceFeeRate
	}
	if req.Currency != nil {
		s.Currency = strings.ToUpper(*req.Currency)
	}
	if req.IsActive != nil {
		s.IsActive = *req.IsActive
	}
	return s.validate()
}

func (s *Shop) validate() error {
	if s.Name == "" {
		return apperr.BadRequest("name is required")
	}
	if err := ValidateRate("vat_rate", s.VATRate); err != nil {
		return err
	}
	return ValidateRate("service_fee_rate", s.ServiceFeeRate)
}
