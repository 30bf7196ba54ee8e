package main

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/cafe-pos/internal/apperr"
	"github.com/MikeMC777/cafe-pos/internal/category"
	"github.com/MikeMC777/cafe-pos/internal/httpx"
	"github.com/MikeMC777/cafe-pos/internal/product"
	"github.com/MikeMC777/cafe-pos/internal/shop"
)

// ===== shops =====

// listShopsHandler godoc
// @Summary  List shops
// @Tags     shops
// @Produce  json
// @Param    q     query string false "name contains"
// @Param    page  query int    false "page"  default(1)
// @Param    limit query int    false "limit" default(20)
// @Success  200 {object} httpx.Envelope{data=httpx.Page[shop.Shop]}
// @Router   /shops [get]
func listShopsHandler(repo shop.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		pq := httpx.ParsePage(c)
		items, total, err := repo.List(c.Request.Context(), shop.Query{
			Q: strings.TrimSpace(c.Query("q")), Limit: pq.Limit, Offset: pq.Offset(),
		})
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, httpx.NewPage(items, pq, total))
	}
}

// getShopHandler godoc
// @Summary  Get a shop
// @Tags     shops
// @Produce  json
// @Param    id path string true "shop id"
// @Success  200 {object} httpx.Envelope{data=shop.Shop}
// @Failure  404 {object} httpx.Envelope
// @Router   /shops/{id} [get]
func getShopHandler(repo shop.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, s)
	}
}

// createShopHandler godoc
// @Summary  Create a shop
// @Tags     shops
// @Accept   json
// @Produce  json
// @Param    body body shop.CreateShopRequest true "shop"
// @Success  201 {object} httpx.Envelope{data=shop.Shop}
// @Failure  400 {object} httpx.Envelope
// @Router   /shops [post]
func createShopHandler(repo shop.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req shop.CreateShopRequest
		if !httpx.BindJSON(c, &req) {
			return
		}
		s, err := shop.NewFromRequest(req)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		if err := repo.Create(c.Request.Context(), s); err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.Created(c, s)
	}
}

// updateShopHandler godoc
// @Summary  Update a shop
// @Tags     shops
// @Accept   json
// @Produce  json
// @Param    id   path string                 true "shop id"
// @Param    body body shop.UpdateShopRequest true "fields to change"
// @Success  200 {object} httpx.Envelope{data=shop.Shop}
// @Router   /shops/{id} [put]
func updateShopHandler(repo shop.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req shop.UpdateShopRequest
		if !httpx.BindJSON(c, &req) {
			return
		}
		ctx := c.Request.Context()
		s, err := repo.GetByID(ctx, c.Param("id"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		if err := s.Apply(req); err != nil {
			httpx.Fail(c, err)
			return
		}
		if err := repo.Update(ctx, s); err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, s)
	}
}

// deleteShopHandler godoc
// @Summary  Delete a shop without orders
// @Tags     shops
// @Param    id path string true "shop id"
// @Success  200 {object} httpx.Envelope
// @Failure  400 {object} httpx.Envelope
// @Router   /shops/{id} [delete]
func deleteShopHandler(repo shop.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := repo.Delete(c.Request.Context(), c.Param("id")); err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.Message(c, "shop deleted")
	}
}

// ===== categories =====

// @Summary  List categories of a shop
// @Tags     categories
// @Produce  json
// @Param    shop_id query string false "shop id"
// @Success  200 {object} httpx.Envelope{data=httpx.Page[category.Category]}
// @Router   /categories [get]
func listCategoriesHandler(repo category.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		pq := httpx.ParsePage(c)
		items, total, err := repo.List(c.Request.Context(), category.Query{
			ShopID: c.Query("shop_id"), Limit: pq.Limit, Offset: pq.Offset(),
		})
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, httpx.NewPage(items, pq, total))
	}
}

func getCategoryHandler(repo category.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		cat, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, cat)
	}
}

// @Summary  Create a category
// @Tags     categories
// @Accept   json
// @Produce  json
// @Param    body body category.CreateCategoryRequest true "category"
// @Success  201 {object} httpx.Envelope{data=category.Category}
// @Failure  409 {object} httpx.Envelope
// @Router   /categories [post]
func createCategoryHandler(repo category.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req category.CreateCategoryRequest
		if !httpx.BindJSON(c, &req) {
			return
		}
		cat, err := category.NewFromRequest(req)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		if err := repo.Create(c.Request.Context(), cat); err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.Created(c, cat)
	}
}

func updateCategoryHandler(repo category.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req category.UpdateCategoryRequest
		if !httpx.BindJSON(c, &req) {
			return
		}
		ctx := c.Request.Context()
		cat, err := repo.GetByID(ctx, c.Param("id"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		if err := cat.Apply(req); err != nil {
			httpx.Fail(c, err)
			return
		}
		if err := repo.Update(ctx, cat); err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, cat)
	}
}

func deleteCategoryHandler(repo category.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := repo.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		if !ok {
			httpx.Fail(c, category.ErrNotFound)
			return
		}
		httpx.Message(c, "category deleted")
	}
}

// ===== products =====

// listProductsHandler godoc
// @Summary  List products
// @Tags     products
// @Produce  json
// @Param    shop_id     query string false "shop id"
// @Param    category_id query string false "category id"
// @Param    q           query string false "name contains"
// @Param    available   query bool   false "only available products"
// @Param    page        query int    false "page"  default(1)
// @Param    limit       query int    false "limit" default(20)
// @Success  200 {object} httpx.Envelope{data=httpx.Page[product.Product]}
// @Router   /products [get]
func listProductsHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		pq := httpx.ParsePage(c)
		q := product.Query{
			ShopID:     c.Query("shop_id"),
			CategoryID: c.Query("category_id"),
			Q:          strings.TrimSpace(c.Query("q")),
			Limit:      pq.Limit,
			Offset:     pq.Offset(),
		}
		if _, ok := c.GetQuery("available"); ok {
			v := httpx.QueryBool(c, "available")
			q.Available = &v
		}
		items, total, err := repo.List(c.Request.Context(), q)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, httpx.NewPage(items, pq, total))
	}
}

// getProductHandler godoc
// @Summary  Get a product with its options
// @Tags     products
// @Produce  json
// @Param    id path string true "product id"
// @Success  200 {object} httpx.Envelope{data=product.Product}
// @Failure  404 {object} httpx.Envelope
// @Router   /products/{id} [get]
func getProductHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		p, err := repo.GetByID(ctx, c.Param("id"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		if p.Options, err = repo.ListOptions(ctx, p.ID); err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, p)
	}
}

// createProductHandler godoc
// @Summary  Create a product
// @Tags     products
// @Accept   json
// @Produce  json
// @Param    body body product.CreateProductRequest true "product"
// @Success  201 {object} httpx.Envelope{data=product.Product}
// @Failure  400 {object} httpx.Envelope
// @Router   /products [post]
func createProductHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req product.CreateProductRequest
		if !httpx.BindJSON(c, &req) {
			return
		}
		p, err := product.NewFromRequest(req)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		if err := repo.Create(c.Request.Context(), p); err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.Created(c, p)
	}
}

// updateProductHandler godoc
// @Summary  Update a product. Existing orders keep their price snapshot.
// @Tags     products
// @Accept   json
// @Produce  json
// @Param    id   path string                       true "product id"
// @Param    body body product.UpdateProductRequest true "fields to change"
// @Success  200 {object} httpx.Envelope{data=product.Product}
// @Router   /products/{id} [put]
func updateProductHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req product.UpdateProductRequest
		if !httpx.BindJSON(c, &req) {
			return
		}
		ctx := c.Request.Context()
		p, err := repo.GetByID(ctx, c.Param("id"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		if err := p.Apply(req); err != nil {
			httpx.Fail(c, err)
			return
		}
		if err := repo.Update(ctx, p); err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, p)
	}
}

func deleteProductHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := repo.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		if !ok {
			httpx.Fail(c, product.ErrNotFound)
			return
		}
		httpx.Message(c, "product deleted")
	}
}

func listOptionsHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if _, err := repo.GetByID(ctx, c.Param("id")); err != nil {
			httpx.Fail(c, err)
			return
		}
		opts, err := repo.ListOptions(ctx, c.Param("id"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, opts)
	}
}

// addOptionHandler godoc
// @Summary  Add an option to a product
// @Tags     products
// @Accept   json
// @Produce  json
// @Param    id   path string                      true "product id"
// @Param    body body product.CreateOptionRequest true "option"
// @Success  201 {object} httpx.Envelope{data=product.Option}
// @Router   /products/{id}/options [post]
func addOptionHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req product.CreateOptionRequest
		if !httpx.BindJSON(c, &req) {
			return
		}
		o := &product.Option{
			ProductID:       c.Param("id"),
			Name:            strings.TrimSpace(req.Name),
			PriceAdjustment: req.PriceAdjustment,
			IsDefault:       req.IsDefault,
		}
		if o.Name == "" {
			httpx.Fail(c, apperr.BadRequest("name is required"))
			return
		}
		if err := repo.AddOption(c.Request.Context(), o); err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.Created(c, o)
	}
}

func deleteOptionHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := repo.DeleteOption(c.Request.Context(), c.Param("id"), c.Param("optionId"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		if !ok {
			httpx.Fail(c, product.ErrOptionNotFound)
			return
		}
		httpx.Message(c, "option deleted")
	}
}
