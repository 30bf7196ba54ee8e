package main

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/cafe-pos/internal/apperr"
	"github.com/MikeMC777/cafe-pos/internal/httpx"
	"github.com/MikeMC777/cafe-pos/internal/seating"
)

// pageOf slices an already loaded list into the requested page.
func pageOf[T any](items []T, pq httpx.PageQuery) httpx.Page[T] {
	total := len(items)
	start := pq.Offset()
	if start > total {
		start = total
	}
	end := start + pq.Limit
	if end > total {
		end = total
	}
	return httpx.NewPage(items[start:end], pq, total)
}

// listAreasHandler godoc
// @Summary  List the areas of a shop
// @Tags     seating
// @Produce  json
// @Param    shop_id query string true "shop id"
// @Success  200 {object} httpx.Envelope{data=httpx.Page[seating.Area]}
// @Router   /areas [get]
func listAreasHandler(repo seating.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		shopID := c.Query("shop_id")
		if shopID == "" {
			httpx.Fail(c, apperr.BadRequest("shop_id is required"))
			return
		}
		items, err := repo.ListAreas(c.Request.Context(), shopID)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, pageOf(items, httpx.ParsePage(c)))
	}
}

func getAreaHandler(repo seating.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		a, err := repo.GetArea(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, a)
	}
}

// createAreaHandler godoc
// @Summary  Create an area
// @Tags     seating
// @Accept   json
// @Produce  json
// @Param    body body seating.CreateAreaRequest true "area"
// @Success  201 {object} httpx.Envelope{data=seating.Area}
// @Router   /areas [post]
func createAreaHandler(repo seating.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req seating.CreateAreaRequest
		if !httpx.BindJSON(c, &req) {
			return
		}
		a := &seating.Area{ShopID: req.ShopID, Name: strings.TrimSpace(req.Name)}
		if a.Name == "" {
			httpx.Fail(c, apperr.BadRequest("name is required"))
			return
		}
		if err := repo.CreateArea(c.Request.Context(), a); err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.Created(c, a)
	}
}

func renameAreaHandler(repo seating.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req seating.UpdateAreaRequest
		if !httpx.BindJSON(c, &req) {
			return
		}
		name := strings.TrimSpace(req.Name)
		if name == "" {
			httpx.Fail(c, apperr.BadRequest("name is required"))
			return
		}
		a, err := repo.RenameArea(c.Request.Context(), c.Param("id"), name)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, a)
	}
}

func deleteAreaHandler(repo seating.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := repo.DeleteArea(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		if !ok {
			httpx.Fail(c, seating.ErrAreaNotFound)
			return
		}
		httpx.Message(c, "area deleted")
	}
}

// listTablesHandler godoc
// @Summary  List tables
// @Tags     seating
// @Produce  json
// @Param    shop_id query string false "shop id"
// @Param    area_id query string false "area id"
// @Param    status  query string false "available, occupied or reserved"
// @Success  200 {object} httpx.Envelope{data=httpx.Page[seating.Table]}
// @Router   /tables [get]
func listTablesHandler(repo seating.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := c.Query("status")
		if status != "" && !seating.TableStatus(status).Valid() {
			httpx.Fail(c, apperr.BadRequest("invalid status %q", status))
			return
		}
		pq := httpx.ParsePage(c)
		items, total, err := repo.ListTables(c.Request.Context(), seating.TableQuery{
			ShopID: c.Query("shop_id"),
			AreaID: c.Query("area_id"),
			Status: status,
			Limit:  pq.Limit,
			Offset: pq.Offset(),
		})
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, httpx.NewPage(items, pq, total))
	}
}

func getTableHandler(repo seating.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, err := repo.GetTable(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, t)
	}
}

// createTableHandler godoc
// @Summary  Create a table
// @Tags     seating
// @Accept   json
// @Produce  json
// @Param    body body seating.CreateTableRequest true "table"
// @Success  201 {object} httpx.Envelope{data=seating.Table}
// @Failure  409 {object} httpx.Envelope
// @Router   /tables [post]
func createTableHandler(repo seating.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req seating.CreateTableRequest
		if !httpx.BindJSON(c, &req) {
			return
		}
		t := seating.NewTable(req)
		if t.Number == "" {
			httpx.Fail(c, apperr.BadRequest("number is required"))
			return
		}
		if err := repo.CreateTable(c.Request.Context(), t); err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.Created(c, t)
	}
}

// updateTableHandler godoc
// @Summary  Update a table (area, number, capacity or status)
// @Tags     seating
// @Accept   json
// @Produce  json
// @Param    id   path string                     true "table id"
// @Param    body body seating.UpdateTableRequest true "fields to change"
// @Success  200 {object} httpx.Envelope{data=seating.Table}
// @Router   /tables/{id} [put]
func updateTableHandler(repo seating.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req seating.UpdateTableRequest
		if !httpx.BindJSON(c, &req) {
			return
		}
		ctx := c.Request.Context()
		t, err := repo.GetTable(ctx, c.Param("id"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		if err := t.Apply(req); err != nil {
			httpx.Fail(c, err)
			return
		}
		if err := repo.UpdateTable(ctx, t); err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, t)
	}
}

func deleteTableHandler(repo seating.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := repo.DeleteTable(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		if !ok {
			httpx.Fail(c, seating.ErrTableNotFound)
			return
		}
		httpx.Message(c, "table deleted")
	}
}
