package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/MikeMC777/cafe-pos/docs"
	"github.com/MikeMC777/cafe-pos/internal/auth"
	"github.com/MikeMC777/cafe-pos/internal/category"
	"github.com/MikeMC777/cafe-pos/internal/employee"
	"github.com/MikeMC777/cafe-pos/internal/httpx"
	"github.com/MikeMC777/cafe-pos/internal/ingredient"
	"github.com/MikeMC777/cafe-pos/internal/inventory"
	"github.com/MikeMC777/cafe-pos/internal/order"
	"github.com/MikeMC777/cafe-pos/internal/payment"
	"github.com/MikeMC777/cafe-pos/internal/product"
	"github.com/MikeMC777/cafe-pos/internal/report"
	"github.com/MikeMC777/cafe-pos/internal/seating"
	"github.com/MikeMC777/cafe-pos/internal/shop"
)

// Service surfaces consumed by the handlers. The concrete types live in
// internal/*; tests substitute stubs.
type (
	employeeService interface {
		Create(ctx context.Context, req employee.CreateEmployeeRequest) (*employee.Employee, error)
		Get(ctx context.Context, id string) (*employee.Employee, error)
		List(ctx context.Context, q employee.Query) ([]employee.Employee, int, error)
		Update(ctx context.Context, id string, req employee.UpdateEmployeeRequest) (*employee.Employee, error)
		Delete(ctx context.Context, id string) error
		SetPermissions(ctx context.Context, id string, codes []string) (*employee.Employee, error)
		Permissions(ctx context.Context) ([]employee.Permission, error)
		Login(ctx context.Context, req employee.LoginRequest) (*employee.LoginResponse, error)
	}

	inventoryService interface {
		Create(ctx context.Context, req inventory.CreateTransactionRequest, actorID string) (*inventory.Transaction, error)
		Get(ctx context.Context, id string) (*inventory.Transaction, error)
		List(ctx context.Context, q inventory.Query) ([]inventory.Transaction, int, error)
	}

	orderService interface {
		Create(ctx context.Context, req order.CreateOrderRequest, actorID string) (*order.Order, error)
		Get(ctx context.Context, id string) (*order.Order, error)
		List(ctx context.Context, q order.Query) ([]order.Order, int, error)
		Update(ctx context.Context, id string, req order.UpdateOrderRequest) (*order.Order, error)
		UpdateStatus(ctx context.Context, id string, target order.Status, actorID string) (*order.Order, error)
		Cancel(ctx context.Context, id, reason, actorID string) (*order.Order, error)
		Stats(ctx context.Context, q order.Query) (order.Stats, error)
	}

	paymentService interface {
		Create(ctx context.Context, req payment.CreatePaymentRequest, actorID string) (*payment.Payment, error)
		Get(ctx context.Context, id string) (*payment.Payment, error)
		List(ctx context.Context, q payment.Query) ([]payment.Payment, int, error)
		ListByOrder(ctx context.Context, orderID string, limit, offset int) ([]payment.Payment, int, error)
	}

	reportService interface {
		SalesSummary(ctx context.Context, f report.Filter) (report.SalesSummary, error)
		DailyRevenue(ctx context.Context, f report.Filter) ([]report.DailyRevenue, error)
		TopProducts(ctx context.Context, f report.Filter) ([]report.TopProduct, error)
		PaymentBreakdown(ctx context.Context, f report.Filter) ([]report.MethodTotal, error)
		LowStock(ctx context.Context, shopID string) ([]report.LowStockItem, error)
	}
)

type api struct {
	log         logrus.FieldLogger
	ping        func(ctx context.Context) error
	tokens      httpx.Verifier
	authEnabled bool
	origins     []string
	hub         interface{ Handle(c *gin.Context) }

	shops       shop.Repository
	categories  category.Repository
	products    product.Repository
	seating     seating.Repository
	ingredients ingredient.Repository

	employees employeeService
	inventory inventoryService
	orders    orderService
	payments  paymentService
	reports   reportService
}

// @title       Cafe POS API
// @version     1.0
// @description Point-of-sale backend for coffee shops.
// @BasePath    /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func (a *api) router() *gin.Engine {
	r := gin.New()
	r.Use(httpx.RequestID(), httpx.Logger(a.log), httpx.Recovery(a.log), httpx.CORS(a.origins))

	r.GET("/healthz", healthHandler(a.ping))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.POST("/auth/login", loginHandler(a.employees))
	if a.hub != nil {
		r.GET("/ws/kitchen", httpx.CanonicalIDs(), httpx.AuthenticateWS(a.tokens, a.authEnabled), a.hub.Handle)
	}

	g := r.Group("/", httpx.Authenticate(a.tokens, a.authEnabled), httpx.CanonicalIDs())
	catalog := httpx.Require(auth.PermCatalog)
	staff := httpx.Require(auth.PermStaff)
	stock := httpx.Require(auth.PermInventory)
	orders := httpx.Require(auth.PermOrders)
	pays := httpx.Require(auth.PermPayments)
	reports := httpx.Require(auth.PermReports)

	g.GET("/shops", listShopsHandler(a.shops))
	g.GET("/shops/:id", getShopHandler(a.shops))
	g.POST("/shops", staff, createShopHandler(a.shops))
	g.PUT("/shops/:id", staff, updateShopHandler(a.shops))
	g.DELETE("/shops/:id", staff, deleteShopHandler(a.shops))

	g.GET("/categories", listCategoriesHandler(a.categories))
	g.GET("/categories/:id", getCategoryHandler(a.categories))
	g.POST("/categories", catalog, createCategoryHandler(a.categories))
	g.PUT("/categories/:id", catalog, updateCategoryHandler(a.categories))
	g.DELETE("/categories/:id", catalog, deleteCategoryHandler(a.categories))

	g.GET("/products", listProductsHandler(a.products))
	g.GET("/products/:id", getProductHandler(a.products))
	g.POST("/products", catalog, createProductHandler(a.products))
	g.PUT("/products/:id", catalog, updateProductHandler(a.products))
	g.DELETE("/products/:id", catalog, deleteProductHandler(a.products))
	g.GET("/products/:id/options", listOptionsHandler(a.products))
	g.POST("/products/:id/options", catalog, addOptionHandler(a.products))
	g.DELETE("/products/:id/options/:optionId", catalog, deleteOptionHandler(a.products))

	g.GET("/areas", listAreasHandler(a.seating))
	g.GET("/areas/:id", getAreaHandler(a.seating))
	g.POST("/areas", catalog, createAreaHandler(a.seating))
	g.PUT("/areas/:id", catalog, renameAreaHandler(a.seating))
	g.DELETE("/areas/:id", catalog, deleteAreaHandler(a.seating))

	g.GET("/tables", listTablesHandler(a.seating))
	g.GET("/tables/:id", getTableHandler(a.seating))
	g.POST("/tables", catalog, createTableHandler(a.seating))
	g.PUT("/tables/:id", orders, updateTableHandler(a.seating))
	g.DELETE("/tables/:id", catalog, deleteTableHandler(a.seating))

	g.GET("/permissions", staff, listPermissionsHandler(a.employees))
	g.GET("/employees", staff, listEmployeesHandler(a.employees))
	g.GET("/employees/:id", staff, getEmployeeHandler(a.employees))
	g.POST("/employees", staff, createEmployeeHandler(a.employees))
	g.PUT("/employees/:id", staff, updateEmployeeHandler(a.employees))
	g.DELETE("/employees/:id", staff, deleteEmployeeHandler(a.employees))
	g.PUT("/employees/:id/permissions", staff, setPermissionsHandler(a.employees))

	g.GET("/ingredients", listIngredientsHandler(a.ingredients))
	g.GET("/ingredients/:id", getIngredientHandler(a.ingredients))
	g.POST("/ingredients", stock, createIngredientHandler(a.ingredients))
	g.PUT("/ingredients/:id", stock, updateIngredientHandler(a.ingredients))
	g.DELETE("/ingredients/:id", stock, deleteIngredientHandler(a.ingredients))

	g.GET("/inventory-transactions", listTransactionsHandler(a.inventory))
	g.GET("/inventory-transactions/:id", getTransactionHandler(a.inventory))
	g.POST("/inventory-transactions", stock, createTransactionHandler(a.inventory))

	g.GET("/orders", listOrdersHandler(a.orders))
	g.GET("/orders/stats", reports, orderStatsHandler(a.orders))
	g.GET("/orders/:id", getOrderHandler(a.orders))
	g.GET("/orders/:id/payments", listOrderPaymentsHandler(a.payments))
	g.POST("/orders", orders, createOrderHandler(a.orders))
	g.PATCH("/orders/:id", orders, updateOrderHandler(a.orders))
	g.PATCH("/orders/:id/status", orders, updateOrderStatusHandler(a.orders))
	g.POST("/orders/:id/cancel", orders, cancelOrderHandler(a.orders))

	g.GET("/payments", pays, listPaymentsHandler(a.payments))
	g.GET("/payments/:id", pays, getPaymentHandler(a.payments))
	g.POST("/payments", pays, createPaymentHandler(a.payments))

	rg := g.Group("/reports", reports)
	rg.GET("/sales-summary", salesSummaryHandler(a.reports))
	rg.GET("/daily-revenue", dailyRevenueHandler(a.reports))
	rg.GET("/top-products", topProductsHandler(a.reports))
	rg.GET("/payment-methods", paymentBreakdownHandler(a.reports))
	rg.GET("/low-stock", lowStockHandler(a.reports))

	return r
}

// healthHandler godoc
// @Summary  Liveness and database check
// @Tags     platform
// @Produce  json
// @Success  200 {object} httpx.Envelope
// @Failure  503 {object} httpx.Envelope
// @Router   /healthz [get]
func healthHandler(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, httpx.Envelope{Message: "database unavailable"})
				return
			}
		}
		httpx.Message(c, "ok")
	}
}
