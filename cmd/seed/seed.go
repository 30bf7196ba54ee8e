package main

import (
	"context"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/MikeMC777/cafe-pos/internal/category"
	"github.com/MikeMC777/cafe-pos/internal/employee"
	"github.com/MikeMC777/cafe-pos/internal/ingredient"
	"github.com/MikeMC777/cafe-pos/internal/product"
	"github.com/MikeMC777/cafe-pos/internal/seating"
	"github.com/MikeMC777/cafe-pos/internal/shop"
)

// File is the seed document. Money and quantities are strings so they keep
// their exact decimal value.
type File struct {
	Shops []ShopSeed `yaml:"shops"`
}

type ShopSeed struct {
	Name           string           `yaml:"name"`
	Address        string           `yaml:"address"`
	Phone          string           `yaml:"phone"`
	Currency       string           `yaml:"currency"`
	VATRate        string           `yaml:"vat_rate"`
	ServiceFeeRate string           `yaml:"service_fee_rate"`
	Categories     []CategorySeed   `yaml:"categories"`
	Areas          []AreaSeed       `yaml:"areas"`
	Ingredients    []IngredientSeed `yaml:"ingredients"`
	Employees      []EmployeeSeed   `yaml:"employees"`
}

type CategorySeed struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Products    []ProductSeed `yaml:"products"`
}

type ProductSeed struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Price       string       `yaml:"price"`
	Options     []OptionSeed `yaml:"options"`
}

type OptionSeed struct {
	Name            string `yaml:"name"`
	PriceAdjustment string `yaml:"price_adjustment"`
	IsDefault       bool   `yaml:"is_default"`
}

type AreaSeed struct {
	Name   string      `yaml:"name"`
	Tables []TableSeed `yaml:"tables"`
}

type TableSeed struct {
	Number   string `yaml:"number"`
	Capacity int    `yaml:"capacity"`
}

type IngredientSeed struct {
	Name          string `yaml:"name"`
	Unit          string `yaml:"unit"`
	CurrentStock  string `yaml:"current_stock"`
	MinStockLevel string `yaml:"min_stock_level"`
	UnitPrice     string `yaml:"unit_price"`
}

type EmployeeSeed struct {
	FullName    string   `yaml:"full_name"`
	Email       string   `yaml:"email"`
	Phone       string   `yaml:"phone"`
	Role        string   `yaml:"role"`
	Password    string   `yaml:"password"`
	Permissions []string `yaml:"permissions"`
}

// Parse decodes a seed document, rejecting unknown keys.
func Parse(r io.Reader) (File, error) {
	var f File
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	if err := d.Decode(&f); err != nil {
		return File{}, fmt.Errorf("decode seed: %w", err)
	}
	if len(f.Shops) == 0 {
		return File{}, fmt.Errorf("seed has no shops")
	}
	return f, nil
}

// dec parses an optional decimal; empty means zero.
func dec(field, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", field, err)
	}
	return d, nil
}

// Targets are the write paths the seeder goes through.
type Targets struct {
	Shops interface {
		Create(ctx context.Context, s *shop.Shop) error
	}
	Categories interface {
		Create(ctx context.Context, c *category.Category) error
	}
	Products interface {
		Create(ctx context.Context, p *product.Product) error
		AddOption(ctx context.Context, o *product.Option) error
	}
	Seating interface {
		CreateArea(ctx context.Context, a *seating.Area) error
		CreateTable(ctx context.Context, t *seating.Table) error
	}
	Ingredients interface {
		Create(ctx context.Context, in *ingredient.Ingredient, createdBy string) error
	}
	Employees interface {
		Create(ctx context.Context, req employee.CreateEmployeeRequest) (*employee.Employee, error)
	}
}

// Counts tallies the rows written by Apply.
type Counts struct {
	Shops, Categories, Products, Options, Areas, Tables, Ingredients, Employees int
}

// Apply writes every row of f through t. It stops at the first error; rows
// already written stay.
func Apply(ctx context.Context, t Targets, f File, log logrus.FieldLogger) (Counts, error) {
	var n Counts
	for _, ss := range f.Shops {
		vat, err := dec("vat_rate", ss.VATRate)
		if err != nil {
			return n, err
		}
		svc, err := dec("service_fee_rate", ss.ServiceFeeRate)
		if err != nil {
			return n, err
		}
		s, err := shop.NewFromRequest(shop.CreateShopRequest{
			Name: ss.Name, Address: ss.Address, Phone: ss.Phone, Currency: ss.Currency,
			VATRate: &vat, ServiceFeeRate: &svc,
		})
		if err != nil {
			return n, fmt.Errorf("shop %q: %w", ss.Name, err)
		}
		if err := t.Shops.Create(ctx, s); err != nil {
			return n, fmt.Errorf("shop %q: %w", ss.Name, err)
		}
		n.Shops++
		entry := log.WithField("shop", s.Name)

		for i, cs := range ss.Categories {
			if err := seedCategory(ctx, t, s.ID, i, cs, &n); err != nil {
				return n, fmt.Errorf("shop %q: %w", ss.Name, err)
			}
		}
		for _, as := range ss.Areas {
			a := &seating.Area{ShopID: s.ID, Name: as.Name}
			if err := t.Seating.CreateArea(ctx, a); err != nil {
				return n, fmt.Errorf("area %q: %w", as.Name, err)
			}
			n.Areas++
			for _, ts := range as.Tables {
				tbl := seating.NewTable(seating.CreateTableRequest{ShopID: s.ID, AreaID: &a.ID, Number: ts.Number, Capacity: ts.Capacity})
				if err := t.Seating.CreateTable(ctx, tbl); err != nil {
					return n, fmt.Errorf("table %q: %w", ts.Number, err)
				}
				n.Tables++
			}
		}
		for _, is := range ss.Ingredients {
			if err := seedIngredient(ctx, t, s.ID, is); err != nil {
				return n, fmt.Errorf("ingredient %q: %w", is.Name, err)
			}
			n.Ingredients++
		}
		for _, es := range ss.Employees {
			_, err := t.Employees.Create(ctx, employee.CreateEmployeeRequest{
				ShopID: s.ID, FullName: es.FullName, Email: es.Email, Phone: es.Phone,
				Role: employee.Role(es.Role), Password: es.Password, Permissions: es.Permissions,
			})
			if err != nil {
				return n, fmt.Errorf("employee %q: %w", es.Email, err)
			}
			n.Employees++
		}
		entry.Info("shop seeded")
	}
	return n, nil
}

func seedCategory(ctx context.Context, t Targets, shopID string, sort int, cs CategorySeed, n *Counts) error {
	c, err := category.NewFromRequest(category.CreateCategoryRequest{ShopID: shopID, Name: cs.Name, Description: cs.Description, SortOrder: sort})
	if err != nil {
		return fmt.Errorf("category %q: %w", cs.Name, err)
	}
	if err := t.Categories.Create(ctx, c); err != nil {
		return fmt.Errorf("category %q: %w", cs.Name, err)
	}
	n.Categories++

	for _, ps := range cs.Products {
		price, err := dec("price", ps.Price)
		if err != nil {
			return fmt.Errorf("product %q: %w", ps.Name, err)
		}
		p, err := product.NewFromRequest(product.CreateProductRequest{
			ShopID: shopID, CategoryID: &c.ID, Name: ps.Name, Description: ps.Description, Price: price,
		})
		if err != nil {
			return fmt.Errorf("product %q: %w", ps.Name, err)
		}
		if err := t.Products.Create(ctx, p); err != nil {
			return fmt.Errorf("product %q: %w", ps.Name, err)
		}
		n.Products++
		for _, opt := range ps.Options {
			adj, err := dec("price_adjustment", opt.PriceAdjustment)
			if err != nil {
				return fmt.Errorf("option %q: %w", opt.Name, err)
			}
			o := &product.Option{ProductID: p.ID, Name: opt.Name, PriceAdjustment: adj, IsDefault: opt.IsDefault}
			if err := t.Products.AddOption(ctx, o); err != nil {
				return fmt.Errorf("option %q: %w", opt.Name, err)
			}
			n.Options++
		}
	}
	return nil
}

func seedIngredient(ctx context.Context, t Targets, shopID string, is IngredientSeed) error {
	stock, err := dec("current_stock", is.CurrentStock)
	if err != nil {
		return err
	}
	lvl, err := dec("min_stock_level", is.MinStockLevel)
	if err != nil {
		return err
	}
	price, err := dec("unit_price", is.UnitPrice)
	if err != nil {
		return err
	}
	in, err := ingredient.NewFromRequest(ingredient.CreateIngredientRequest{
		ShopID: shopID, Name: is.Name, Unit: is.Unit, CurrentStock: stock, MinStockLevel: lvl, UnitPrice: price,
	})
	if err != nil {
		return err
	}
	return t.Ingredients.Create(ctx, in, "")
}
