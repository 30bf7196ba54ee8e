// Package docs registers the OpenAPI description served at /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["auth"], "summary": "Employee login",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {"200": {"description": "token"}, "401": {"description": "invalid credentials"}}
            }
        },
        "/shops": {
            "get": {"tags": ["shops"], "summary": "List shops", "responses": {"200": {"description": "page of shops"}}},
            "post": {
                "tags": ["shops"], "summary": "Create shop",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/CreateShopRequest"}}],
                "responses": {"201": {"description": "created"}}
            }
        },
        "/products": {
            "get": {"tags": ["catalog"], "summary": "List products", "responses": {"200": {"description": "page of products"}}},
            "post": {
                "tags": ["catalog"], "summary": "Create product",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/CreateProductRequest"}}],
                "responses": {"201": {"description": "created"}}
            }
        },
        "/orders": {
            "get": {"tags": ["orders"], "summary": "List orders", "responses": {"200": {"description": "page of orders"}}},
            "post": {
                "tags": ["orders"], "summary": "Create order",
                "description": "Prices every line from the current product price and applies the shop's VAT and service-fee rates.",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/CreateOrderRequest"}}],
                "responses": {"201": {"description": "created"}, "400": {"description": "invalid request"}, "404": {"description": "shop, table or product not found"}}
            }
        },
        "/orders/{id}/status": {
            "patch": {
                "tags": ["orders"], "summary": "Change order status",
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStatusRequest"}}
                ],
                "responses": {"200": {"description": "updated"}, "400": {"description": "invalid transition"}}
            }
        },
        "/orders/{id}/cancel": {
            "post": {
                "tags": ["orders"], "summary": "Cancel order",
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "body", "name": "body", "schema": {"$ref": "#/definitions/CancelOrderRequest"}}
                ],
                "responses": {"200": {"description": "cancelled"}, "400": {"description": "already paid or cancelled"}}
            }
        },
        "/inventory-transactions": {
            "get": {"tags": ["inventory"], "summary": "List stock movements", "responses": {"200": {"description": "page of transactions"}}},
            "post": {
                "tags": ["inventory"], "summary": "Record stock movement",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTransactionRequest"}}],
                "responses": {"201": {"description": "created"}, "400": {"description": "insufficient stock"}}
            }
        },
        "/payments": {
            "get": {"tags": ["payments"], "summary": "List payments", "responses": {"200": {"description": "page of payments"}}},
            "post": {
                "tags": ["payments"], "summary": "Pay an order",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/CreatePaymentRequest"}}],
                "responses": {"201": {"description": "created"}, "400": {"description": "already paid or received amount too low"}}
            }
        },
        "/reports/sales-summary": {
            "get": {
                "tags": ["reports"], "summary": "Sales summary",
                "parameters": [
                    {"in": "query", "name": "shop_id", "required": true, "type": "string"},
                    {"in": "query", "name": "from", "type": "string"},
                    {"in": "query", "name": "to", "type": "string"}
                ],
                "responses": {"200": {"description": "summary"}}
            }
        },
        "/healthz": {
            "get": {"tags": ["platform"], "summary": "Liveness and database check", "responses": {"200": {"description": "ok"}, "503": {"description": "database unreachable"}}}
        }
    },
    "definitions": {
        "LoginRequest": {"type": "object", "required": ["email", "password"], "properties": {"email": {"type": "string"}, "password": {"type": "string"}}},
        "CreateShopRequest": {"type": "object", "required": ["name"], "properties": {
            "name": {"type": "string"}, "address": {"type": "string"}, "phone": {"type": "string"},
            "vat_rate": {"type": "string", "example": "10"}, "service_fee_rate": {"type": "string", "example": "5"},
            "currency": {"type": "string", "example": "VND"}}},
        "CreateProductRequest": {"type": "object", "required": ["shop_id", "name"], "properties": {
            "shop_id": {"type": "string"}, "category_id": {"type": "string"}, "name": {"type": "string"},
            "description": {"type": "string"}, "price": {"type": "string", "example": "30000"},
            "image_url": {"type": "string"}, "is_available": {"type": "boolean"}}},
        "CreateOrderItem": {"type": "object", "required": ["product_id", "quantity"], "properties": {
            "product_id": {"type": "string"}, "quantity": {"type": "integer", "minimum": 1, "maximum": 999},
            "selected_options": {"type": "array", "items": {"type": "object", "properties": {"option_id": {"type": "string"}, "name": {"type": "string"}}}},
            "notes": {"type": "string"}}},
        "CreateOrderRequest": {"type": "object", "required": ["shop_id", "order_type", "items"], "properties": {
            "shop_id": {"type": "string"}, "table_id": {"type": "string"},
            "order_type": {"type": "string", "enum": ["dine_in", "takeaway", "delivery"]},
            "customer_name": {"type": "string"},
            "items": {"type": "array", "items": {"$ref": "#/definitions/CreateOrderItem"}},
            "delivery_fee": {"type": "string", "example": "0"}, "notes": {"type": "string"}}},
        "UpdateStatusRequest": {"type": "object", "required": ["status"], "properties": {
            "status": {"type": "string", "enum": ["pending", "preparing", "ready", "served", "paid", "cancelled"]}}},
        "CancelOrderRequest": {"type": "object", "properties": {"reason": {"type": "string"}}},
        "CreateTransactionRequest": {"type": "object", "required": ["shop_id", "ingredient_id", "transaction_type", "quantity"], "properties": {
            "shop_id": {"type": "string"}, "ingredient_id": {"type": "string"},
            "transaction_type": {"type": "string", "enum": ["in", "out", "auto_deduct"]},
            "quantity": {"type": "string", "example": "5.5"}, "unit_price": {"type": "string"},
            "reason": {"type": "string"}, "notes": {"type": "string"}}},
        "CreatePaymentRequest": {"type": "object", "required": ["order_id", "payment_method", "amount"], "properties": {
            "order_id": {"type": "string"},
            "payment_method": {"type": "string", "enum": ["cash", "card", "bank_transfer", "e_wallet"]},
            "amount": {"type": "string", "example": "69000"}, "received_amount": {"type": "string", "example": "100000"},
            "notes": {"type": "string"}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Cafe POS API",
	Description:      "Point-of-sale backend for coffee shops: catalog, orders, payments and ingredient stock.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
