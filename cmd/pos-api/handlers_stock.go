package main

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/cafe-pos/internal/apperr"
	"github.com/MikeMC777/cafe-pos/internal/httpx"
	"github.com/MikeMC777/cafe-pos/internal/ingredient"
	"github.com/MikeMC777/cafe-pos/internal/inventory"
)

// ===== ingredients =====

// listIngredientsHandler godoc
// @Summary  List ingredients
// @Tags     ingredients
// @Produce  json
// @Param    shop_id   query string false "shop id"
// @Param    q         query string false "name contains"
// @Param    low_stock query bool   false "only ingredients at or below their minimum"
// @Success  200 {object} httpx.Envelope{data=httpx.Page[ingredient.Ingredient]}
// @Router   /ingredients [get]
func listIngredientsHandler(repo ingredient.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		pq := httpx.ParsePage(c)
		items, total, err := repo.List(c.Request.Context(), ingredient.Query{
			ShopID:   c.Query("shop_id"),
			Q:        strings.TrimSpace(c.Query("q")),
			LowStock: httpx.QueryBool(c, "low_stock"),
			Limit:    pq.Limit,
			Offset:   pq.Offset(),
		})
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, httpx.NewPage(items, pq, total))
	}
}

func getIngredientHandler(repo ingredient.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		in, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, in)
	}
}

// createIngredientHandler godoc
// @Summary  Create an ingredient. A positive current_stock is booked as an opening "in" transaction.
// @Tags     ingredients
// @Accept   json
// @Produce  json
// @Param    body body ingredient.CreateIngredientRequest true "ingredient"
// @Success  201 {object} httpx.Envelope{data=ingredient.Ingredient}
// @Failure  400 {object} httpx.Envelope
// @Router   /ingredients [post]
func createIngredientHandler(repo ingredient.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ingredient.CreateIngredientRequest
		if !httpx.BindJSON(c, &req) {
			return
		}
		in, err := ingredient.NewFromRequest(req)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		if err := repo.Create(c.Request.Context(), in, httpx.ActorID(c)); err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.Created(c, in)
	}
}

func updateIngredientHandler(repo ingredient.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ingredient.UpdateIngredientRequest
		if !httpx.BindJSON(c, &req) {
			return
		}
		ctx := c.Request.Context()
		in, err := repo.GetByID(ctx, c.Param("id"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		if err := in.Apply(req); err != nil {
			httpx.Fail(c, err)
			return
		}
		if err := repo.Update(ctx, in); err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, in)
	}
}

func deleteIngredientHandler(repo ingredient.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := repo.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		if !ok {
			httpx.Fail(c, ingredient.ErrNotFound)
			return
		}
		httpx.Message(c, "ingredient deleted")
	}
}

// ===== inventory transactions =====

// createTransactionHandler godoc
// @Summary  Record a stock movement and adjust the ingredient's stock
// @Tags     inventory
// @Accept   json
// @Produce  json
// @Param    body body inventory.CreateTransactionRequest true "transaction"
// @Success  201 {object} httpx.Envelope{data=inventory.Transaction}
// @Failure  400 {object} httpx.Envelope "insufficient stock or invalid payload"
// @Failure  404 {object} httpx.Envelope "ingredient not found"
// @Security BearerAuth
// @Router   /inventory-transactions [post]
func createTransactionHandler(svc inventoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req inventory.CreateTransactionRequest
		if !httpx.BindJSON(c, &req) {
			return
		}
		t, err := svc.Create(c.Request.Context(), req, httpx.ActorID(c))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.Created(c, t)
	}
}

// listTransactionsHandler godoc
// @Summary  List inventory transactions, newest first
// @Tags     inventory
// @Produce  json
// @Param    shop_id          query string false "shop id"
// @Param    ingredient_id    query string false "ingredient id"
// @Param    transaction_type query string false "in, out or auto_deduct"
// @Param    from             query string false "RFC3339 or YYYY-MM-DD"
// @Param    to               query string false "RFC3339 or YYYY-MM-DD (inclusive day)"
// @Success  200 {object} httpx.Envelope{data=httpx.Page[inventory.Transaction]}
// @Router   /inventory-transactions [get]
func listTransactionsHandler(svc inventoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		typ := c.Query("transaction_type")
		if typ != "" && !inventory.Type(typ).Valid() {
			httpx.Fail(c, apperr.BadRequest("invalid transaction_type %q", typ))
			return
		}
		tr, err := httpx.ParseTimeRange(c)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		pq := httpx.ParsePage(c)
		items, total, err := svc.List(c.Request.Context(), inventory.Query{
			ShopID:       c.Query("shop_id"),
			IngredientID: c.Query("ingredient_id"),
			Type:         typ,
			From:         tr.From,
			To:           tr.To,
			Limit:        pq.Limit,
			Offset:       pq.Offset(),
		})
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, httpx.NewPage(items, pq, total))
	}
}

func getTransactionHandler(svc inventoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, t)
	}
}
