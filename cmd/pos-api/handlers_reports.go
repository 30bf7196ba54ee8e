package main

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/cafe-pos/internal/httpx"
	"github.com/MikeMC777/cafe-pos/internal/report"
)

func reportFilter(c *gin.Context) (report.Filter, error) {
	tr, err := httpx.ParseTimeRange(c)
	if err != nil {
		return report.Filter{}, err
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	return report.Filter{ShopID: c.Query("shop_id"), From: tr.From, To: tr.To, Limit: limit}, nil
}

// salesSummaryHandler godoc
// @Summary  Order counts and revenue for a shop and period
// @Tags     reports
// @Produce  json
// @Param    shop_id query string true  "shop id"
// @Param    from    query string false "RFC3339 or YYYY-MM-DD"
// @Param    to      query string false "RFC3339 or YYYY-MM-DD"
// @Success  200 {object} httpx.Envelope{data=report.SalesSummary}
// @Security BearerAuth
// @Router   /reports/sales-summary [get]
func salesSummaryHandler(svc reportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		f, err := reportFilter(c)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		res, err := svc.SalesSummary(c.Request.Context(), f)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, res)
	}
}

// @Summary  Paid revenue per day
// @Tags     reports
// @Produce  json
// @Param    shop_id query string true "shop id"
// @Success  200 {object} httpx.Envelope{data=[]report.DailyRevenue}
// @Security BearerAuth
// @Router   /reports/daily-revenue [get]
func dailyRevenueHandler(svc reportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		f, err := reportFilter(c)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		res, err := svc.DailyRevenue(c.Request.Context(), f)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, res)
	}
}

// @Summary  Best selling products by quantity
// @Tags     reports
// @Produce  json
// @Param    shop_id query string true  "shop id"
// @Param    limit   query int    false "max rows" default(10)
// @Success  200 {object} httpx.Envelope{data=[]report.TopProduct}
// @Security BearerAuth
// @Router   /reports/top-products [get]
func topProductsHandler(svc reportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		f, err := reportFilter(c)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		res, err := svc.TopProducts(c.Request.Context(), f)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, res)
	}
}

func paymentBreakdownHandler(svc reportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		f, err := reportFilter(c)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		res, err := svc.PaymentBreakdown(c.Request.Context(), f)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, res)
	}
}

func lowStockHandler(svc reportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := svc.LowStock(c.Request.Context(), c.Query("shop_id"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, res)
	}
}
