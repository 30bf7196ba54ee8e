package main

import (
	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/cafe-pos/internal/apperr"
	"github.com/MikeMC777/cafe-pos/internal/httpx"
	"github.com/MikeMC777/cafe-pos/internal/order"
	"github.com/MikeMC777/cafe-pos/internal/payment"
)

// ===== orders =====

// createOrderHandler godoc
// @Summary  Create an order. Prices are snapshotted and totals computed from the shop's rates.
// @Tags     orders
// @Accept   json
// @Produce  json
// @Param    body body order.CreateOrderRequest true "order"
// @Success  201 {object} httpx.Envelope{data=order.Order}
// @Failure  400 {object} httpx.Envelope "invalid payload or unavailable product"
// @Failure  404 {object} httpx.Envelope "shop, table or product not found"
// @Security BearerAuth
// @Router   /orders [post]
func createOrderHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.CreateOrderRequest
		if !httpx.BindJSON(c, &req) {
			return
		}
		o, err := svc.Create(c.Request.Context(), req, httpx.ActorID(c))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.Created(c, o)
	}
}

// getOrderHandler godoc
// @Summary  Get an order with its table and items
// @Tags     orders
// @Produce  json
// @Param    id path string true "order id"
// @Success  200 {object} httpx.Envelope{data=order.Order}
// @Failure  404 {object} httpx.Envelope
// @Router   /orders/{id} [get]
func getOrderHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, o)
	}
}

func orderQuery(c *gin.Context) (order.Query, error) {
	tr, err := httpx.ParseTimeRange(c)
	if err != nil {
		return order.Query{}, err
	}
	return order.Query{
		ShopID:  c.Query("shop_id"),
		Status:  c.Query("status"),
		Type:    c.Query("order_type"),
		TableID: c.Query("table_id"),
		From:    tr.From,
		To:      tr.To,
	}, nil
}

// listOrdersHandler godoc
// @Summary  List orders, newest first
// @Tags     orders
// @Produce  json
// @Param    shop_id    query string false "shop id"
// @Param    status     query string false "status"
// @Param    order_type query string false "dine_in, takeaway or delivery"
// @Param    table_id   query string false "table id"
// @Param    from       query string false "RFC3339 or YYYY-MM-DD"
// @Param    to         query string false "RFC3339 or YYYY-MM-DD (inclusive day)"
// @Param    page       query int    false "page"  default(1)
// @Param    limit      query int    false "limit" default(20)
// @Success  200 {object} httpx.Envelope{data=httpx.Page[order.Order]}
// @Router   /orders [get]
func listOrdersHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := orderQuery(c)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		pq := httpx.ParsePage(c)
		q.Limit, q.Offset = pq.Limit, pq.Offset()
		items, total, err := svc.List(c.Request.Context(), q)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, httpx.NewPage(items, pq, total))
	}
}

// @Summary  Order counts per status and paid revenue
// @Tags     orders
// @Produce  json
// @Param    shop_id query string true  "shop id"
// @Param    from    query string false "RFC3339 or YYYY-MM-DD"
// @Param    to      query string false "RFC3339 or YYYY-MM-DD"
// @Success  200 {object} httpx.Envelope{data=order.Stats}
// @Router   /orders/stats [get]
func orderStatsHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := orderQuery(c)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		if q.ShopID == "" {
			httpx.Fail(c, apperr.BadRequest("shop_id is required"))
			return
		}
		st, err := svc.Stats(c.Request.Context(), q)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, st)
	}
}

// updateOrderHandler godoc
// @Summary  Update table, customer name or notes. Totals are not recomputed.
// @Tags     orders
// @Accept   json
// @Produce  json
// @Param    id   path string                   true "order id"
// @Param    body body order.UpdateOrderRequest true "fields to change"
// @Success  200 {object} httpx.Envelope{data=order.Order}
// @Router   /orders/{id} [patch]
func updateOrderHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.UpdateOrderRequest
		if !httpx.BindJSON(c, &req) {
			return
		}
		o, err := svc.Update(c.Request.Context(), c.Param("id"), req)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, o)
	}
}

// updateOrderStatusHandler godoc
// @Summary  Move an order to another status
// @Tags     orders
// @Accept   json
// @Produce  json
// @Param    id   path string                    true "order id"
// @Param    body body order.UpdateStatusRequest true "target status"
// @Success  200 {object} httpx.Envelope{data=order.Order}
// @Failure  400 {object} httpx.Envelope "unknown status or order already paid/cancelled"
// @Router   /orders/{id}/status [patch]
func updateOrderStatusHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.UpdateStatusRequest
		if !httpx.BindJSON(c, &req) {
			return
		}
		o, err := svc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, httpx.ActorID(c))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, o)
	}
}

// cancelOrderHandler godoc
// @Summary  Cancel an order that is neither paid nor cancelled
// @Tags     orders
// @Accept   json
// @Produce  json
// @Param    id   path string                   true  "order id"
// @Param    body body order.CancelOrderRequest false "reason"
// @Success  200 {object} httpx.Envelope{data=order.Order}
// @Failure  400 {object} httpx.Envelope
// @Router   /orders/{id}/cancel [post]
func cancelOrderHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.CancelOrderRequest
		// the body is optional
		if c.Request.ContentLength != 0 && !httpx.BindJSON(c, &req) {
			return
		}
		o, err := svc.Cancel(c.Request.Context(), c.Param("id"), req.Reason, httpx.ActorID(c))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, o)
	}
}

// ===== payments =====

// createPaymentHandler godoc
// @Summary  Pay an order in full. The order becomes paid in the same transaction.
// @Tags     payments
// @Accept   json
// @Produce  json
// @Param    body body payment.CreatePaymentRequest true "payment"
// @Success  201 {object} httpx.Envelope{data=payment.Payment}
// @Failure  400 {object} httpx.Envelope "order already paid/cancelled or received amount too low"
// @Failure  404 {object} httpx.Envelope "order not found"
// @Security BearerAuth
// @Router   /payments [post]
func createPaymentHandler(svc paymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req payment.CreatePaymentRequest
		if !httpx.BindJSON(c, &req) {
			return
		}
		p, err := svc.Create(c.Request.Context(), req, httpx.ActorID(c))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.Created(c, p)
	}
}

// listPaymentsHandler godoc
// @Summary  List payments, newest first
// @Tags     payments
// @Produce  json
// @Param    shop_id        query string false "shop id"
// @Param    payment_method query string false "cash, card, bank_transfer or e_wallet"
// @Param    from           query string false "RFC3339 or YYYY-MM-DD"
// @Param    to             query string false "RFC3339 or YYYY-MM-DD"
// @Success  200 {object} httpx.Envelope{data=httpx.Page[payment.Payment]}
// @Router   /payments [get]
func listPaymentsHandler(svc paymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Query("payment_method")
		if method != "" && !payment.Method(method).Valid() {
			httpx.Fail(c, apperr.BadRequest("invalid payment_method %q", method))
			return
		}
		tr, err := httpx.ParseTimeRange(c)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		pq := httpx.ParsePage(c)
		items, total, err := svc.List(c.Request.Context(), payment.Query{
			ShopID:  c.Query("shop_id"),
			OrderID: c.Query("order_id"),
			Method:  method,
			From:    tr.From,
			To:      tr.To,
			Limit:   pq.Limit,
			Offset:  pq.Offset(),
		})
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, httpx.NewPage(items, pq, total))
	}
}

func getPaymentHandler(svc paymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, p)
	}
}

func listOrderPaymentsHandler(svc paymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		pq := httpx.ParsePage(c)
		items, total, err := svc.ListByOrder(c.Request.Context(), c.Param("id"), pq.Limit, pq.Offset())
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, httpx.NewPage(items, pq, total))
	}
}
