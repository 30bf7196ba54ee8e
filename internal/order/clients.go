package order

import (
	"context"

	"github.com/MikeMC777/cafe-pos/internal/product"
	"github.com/MikeMC777/cafe-pos/internal/seating"
	"github.com/MikeMC777/cafe-pos/internal/shop"
)

// Shops resolves the shop whose rates price an order.
type Shops interface {
	GetByID(ctx context.Context, id string) (*shop.Shop, error)
}

// Products resolves ordered products.
type Products interface {
	GetByID(ctx context.Context, id string) (*product.Product, error)
}

// Tables resolves the table an order is seated at.
type Tables interface {
	GetTable(ctx context.Context, id string) (*seating.Table, error)
}
