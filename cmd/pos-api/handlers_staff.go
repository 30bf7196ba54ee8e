package main

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/cafe-pos/internal/employee"
	"github.com/MikeMC777/cafe-pos/internal/httpx"
)

// loginHandler godoc
// @Summary  Exchange email and password for a bearer token
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body employee.LoginRequest true "credentials"
// @Success  200 {object} httpx.Envelope{data=employee.LoginResponse}
// @Failure  401 {object} httpx.Envelope
// @Router   /auth/login [post]
func loginHandler(svc employeeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req employee.LoginRequest
		if !httpx.BindJSON(c, &req) {
			return
		}
		res, err := svc.Login(c.Request.Context(), req)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, res)
	}
}

func listPermissionsHandler(svc employeeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		perms, err := svc.Permissions(c.Request.Context())
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, perms)
	}
}

// listEmployeesHandler godoc
// @Summary  List employees
// @Tags     employees
// @Produce  json
// @Param    shop_id query string false "shop id"
// @Param    role    query string false "role"
// @Param    q       query string false "name or email contains"
// @Success  200 {object} httpx.Envelope{data=httpx.Page[employee.Employee]}
// @Security BearerAuth
// @Router   /employees [get]
func listEmployeesHandler(svc employeeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		pq := httpx.ParsePage(c)
		items, total, err := svc.List(c.Request.Context(), employee.Query{
			ShopID: c.Query("shop_id"),
			Role:   c.Query("role"),
			Q:      strings.TrimSpace(c.Query("q")),
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

func getEmployeeHandler(svc employeeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		e, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, e)
	}
}

// createEmployeeHandler godoc
// @Summary  Create an employee
// @Tags     employees
// @Accept   json
// @Produce  json
// @Param    body body employee.CreateEmployeeRequest true "employee"
// @Success  201 {object} httpx.Envelope{data=employee.Employee}
// @Failure  409 {object} httpx.Envelope
// @Security BearerAuth
// @Router   /employees [post]
func createEmployeeHandler(svc employeeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req employee.CreateEmployeeRequest
		if !httpx.BindJSON(c, &req) {
			return
		}
		e, err := svc.Create(c.Request.Context(), req)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.Created(c, e)
	}
}

func updateEmployeeHandler(svc employeeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req employee.UpdateEmployeeRequest
		if !httpx.BindJSON(c, &req) {
			return
		}
		e, err := svc.Update(c.Request.Context(), c.Param("id"), req)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, e)
	}
}

func deleteEmployeeHandler(svc employeeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.Message(c, "employee deleted")
	}
}

// setPermissionsHandler godoc
// @Summary  Replace an employee's permissions
// @Tags     employees
// @Accept   json
// @Produce  json
// @Param    id   path string                         true "employee id"
// @Param    body body employee.SetPermissionsRequest true "permission codes"
// @Success  200 {object} httpx.Envelope{data=employee.Employee}
// @Failure  400 {object} httpx.Envelope
// @Security BearerAuth
// @Router   /employees/{id}/permissions [put]
func setPermissionsHandler(svc employeeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req employee.SetPermissionsRequest
		if !httpx.BindJSON(c, &req) {
			return
		}
		e, err := svc.SetPermissions(c.Request.Context(), c.Param("id"), req.Permissions)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, e)
	}
}
