// Package docs holds the OpenAPI description served at /swagger.
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
    "paths": {
        "/api/v1/products": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "products"
                ],
                "summary": "Create a product",
                "description": "Registers a catalog item. Opening stock is booked as an \"in\" movement.",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Acting user id (uuid)",
                        "name": "X-Actor-ID",
                        "in": "header",
                        "required": true
                    },
                    {
                        "description": "Product data",
                        "name": "product",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.CreateProductRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/dto.ProductResponse"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "401": {
                        "description": "Missing or invalid actor",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "409": {
                        "description": "Conflict with current state",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "503": {
                        "description": "Storage unavailable",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    }
                }
            },
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "products"
                ],
                "summary": "List products",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Matches SKU or name",
                        "name": "q",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "active, inactive or discontinued",
                        "name": "status",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Page size (default 50, max 200)",
                        "name": "limit",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Rows to skip",
                        "name": "offset",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.ListResponse-dto_ProductResponse"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "503": {
                        "description": "Storage unavailable",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    }
                }
            }
        },
        "/api/v1/products/{id}": {
            "patch": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "products"
                ],
                "summary": "Update catalog fields",
                "description": "Changes catalog fields only. Stock is never touched here.",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Acting user id (uuid)",
                        "name": "X-Actor-ID",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Product id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Fields to change",
                        "name": "patch",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.UpdateProductRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.ProductResponse"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "401": {
                        "description": "Missing or invalid actor",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "409": {
                        "description": "Conflict with current state",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "503": {
                        "description": "Storage unavailable",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    }
                }
            },
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "products"
                ],
                "summary": "Get a product",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Product id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.ProductResponse"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "503": {
                        "description": "Storage unavailable",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    }
                }
            }
        },
        "/api/v1/stock/low": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "products"
                ],
                "summary": "List low-stock products",
                "description": "Active products whose stock is at or below the minimum.",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Page size (default 50, max 200)",
                        "name": "limit",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Rows to skip",
                        "name": "offset",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.ListResponse-dto_ProductResponse"
                        }
                    },
                    "503": {
                        "description": "Storage unavailable",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    }
                }
            }
        },
        "/api/v1/products/{id}/movements": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "products"
                ],
                "summary": "List stock movements",
                "description": "Newest first.",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Product id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "in, out, adjustment or return",
                        "name": "type",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Only movements of this repair order",
                        "name": "repair_order_id",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Page size (default 50, max 200)",
                        "name": "limit",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Rows to skip",
                        "name": "offset",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.ListResponse-dto_MovementResponse"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "503": {
                        "description": "Storage unavailable",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    }
                }
            }
        },
        "/api/v1/products/{id}/verify": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "products"
                ],
                "summary": "Verify a product's ledger",
                "description": "Replays the movement chain from zero and compares it with the stored stock.",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Product id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/service.StockReport"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "503": {
                        "description": "Storage unavailable",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    }
                }
            }
        },
        "/api/v1/products/{id}/adjustments": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "products"
                ],
                "summary": "Adjust stock",
                "description": "Manual correction with a mandatory note. Stock can never go negative.",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Acting user id (uuid)",
                        "name": "X-Actor-ID",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Client key that makes the posting safe to retry",
                        "name": "Idempotency-Key",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Product id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Signed delta and note",
                        "name": "adjustment",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.AdjustStockRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/dto.MovementResponse"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "401": {
                        "description": "Missing or invalid actor",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "409": {
                        "description": "Conflict with current state",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "503": {
                        "description": "Storage unavailable",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    }
                }
            }
        },
        "/api/v1/orders": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "orders"
                ],
                "summary": "Open a repair order",
                "description": "Starts in \"received\" with a creation entry in the history.",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Acting user id (uuid)",
                        "name": "X-Actor-ID",
                        "in": "header",
                        "required": true
                    },
                    {
                        "description": "Order data",
                        "name": "order",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.CreateOrderRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/dto.OrderResponse"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "401": {
                        "description": "Missing or invalid actor",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "503": {
                        "description": "Storage unavailable",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    }
                }
            },
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "orders"
                ],
                "summary": "List repair orders",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Order status",
                        "name": "status",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Customer id",
                        "name": "customer_id",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Technician id",
                        "name": "technician_id",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Page size (default 50, max 200)",
                        "name": "limit",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Rows to skip",
                        "name": "offset",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.ListResponse-dto_OrderResponse"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "503": {
                        "description": "Storage unavailable",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    }
                }
            }
        },
        "/api/v1/orders/{id}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "orders"
                ],
                "summary": "Get a repair order",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Order id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.OrderResponse"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "503": {
                        "description": "Storage unavailable",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    }
                }
            }
        },
        "/api/v1/orders/{id}/transitions": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "orders"
                ],
                "summary": "Change order status",
                "description": "Only allowed edges are accepted. Returns the new history entry.",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Acting user id (uuid)",
                        "name": "X-Actor-ID",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Order id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Target status and note",
                        "name": "transition",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.TransitionRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.HistoryResponse"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "401": {
                        "description": "Missing or invalid actor",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "409": {
                        "description": "Conflict with current state",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "503": {
                        "description": "Storage unavailable",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    }
                }
            }
        },
        "/api/v1/orders/{id}/history": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "orders"
                ],
                "summary": "Order status history",
                "description": "Oldest first.",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Order id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/dto.HistoryResponse"
                            }
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "503": {
                        "description": "Storage unavailable",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    }
                }
            }
        },
        "/api/v1/orders/{id}/verify": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "orders"
                ],
                "summary": "Verify an order's history",
                "description": "Replays the history over the allowed edges and compares it with the stored status.",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Order id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/service.HistoryReport"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "503": {
                        "description": "Storage unavailable",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    }
                }
            }
        },
        "/api/v1/orders/{id}/costs": {
            "patch": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "orders"
                ],
                "summary": "Update order costs",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Acting user id (uuid)",
                        "name": "X-Actor-ID",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Order id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Cost fields to change",
                        "name": "costs",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.UpdateCostsRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.OrderResponse"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "401": {
                        "description": "Missing or invalid actor",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "409": {
                        "description": "Conflict with current state",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "503": {
                        "description": "Storage unavailable",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    }
                }
            }
        },
        "/api/v1/orders/{id}/technician": {
            "put": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "orders"
                ],
                "summary": "Assign a technician",
                "description": "A null technician_id clears the assignment.",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Acting user id (uuid)",
                        "name": "X-Actor-ID",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Order id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Technician",
                        "name": "technician",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.AssignTechnicianRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.OrderResponse"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "401": {
                        "description": "Missing or invalid actor",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "409": {
                        "description": "Conflict with current state",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "503": {
                        "description": "Storage unavailable",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    }
                }
            }
        },
        "/api/v1/orders/{id}/parts/{productId}": {
            "put": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "parts"
                ],
                "summary": "Set consumed quantity",
                "description": "Quantity is the order's total for the product. Stock moves by the difference.",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Acting user id (uuid)",
                        "name": "X-Actor-ID",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Order id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Product id",
                        "name": "productId",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Total quantity and unit price",
                        "name": "part",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.UseItemRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.PartResponse"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "401": {
                        "description": "Missing or invalid actor",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "409": {
                        "description": "Conflict with current state",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "503": {
                        "description": "Storage unavailable",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    }
                }
            },
            "delete": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "parts"
                ],
                "summary": "Remove a consumed part",
                "description": "Returns the whole quantity to stock.",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Acting user id (uuid)",
                        "name": "X-Actor-ID",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Order id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Product id",
                        "name": "productId",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "401": {
                        "description": "Missing or invalid actor",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "409": {
                        "description": "Conflict with current state",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "503": {
                        "description": "Storage unavailable",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    }
                }
            }
        },
        "/api/v1/orders/{id}/parts": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "parts"
                ],
                "summary": "List consumed parts",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Order id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/dto.PartResponse"
                            }
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "503": {
                        "description": "Storage unavailable",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    }
                }
            }
        },
        "/api/v1/sales": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "sales"
                ],
                "summary": "Finalize a counter sale",
                "description": "All lines commit or none do.",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Acting user id (uuid)",
                        "name": "X-Actor-ID",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Client key that makes the posting safe to retry",
                        "name": "Idempotency-Key",
                        "in": "header"
                    },
                    {
                        "description": "Sale lines",
                        "name": "sale",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.CreateSaleRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/dto.SaleResponse"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "401": {
                        "description": "Missing or invalid actor",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "409": {
                        "description": "Conflict with current state",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "503": {
                        "description": "Storage unavailable",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    }
                }
            }
        },
        "/api/v1/sales/{id}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "sales"
                ],
                "summary": "Get a sale",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Sale id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.SaleResponse"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "503": {
                        "description": "Storage unavailable",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    }
                }
            }
        },
        "/api/v1/purchase-orders": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "purchase-orders"
                ],
                "summary": "Create a purchase order",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Acting user id (uuid)",
                        "name": "X-Actor-ID",
                        "in": "header",
                        "required": true
                    },
                    {
                        "description": "Supplier and lines",
                        "name": "purchase_order",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.CreatePurchaseOrderRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/dto.PurchaseOrderResponse"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "401": {
                        "description": "Missing or invalid actor",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "503": {
                        "description": "Storage unavailable",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    }
                }
            }
        },
        "/api/v1/purchase-orders/{id}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "purchase-orders"
                ],
                "summary": "Get a purchase order",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Purchase order id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.PurchaseOrderResponse"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "503": {
                        "description": "Storage unavailable",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    }
                }
            }
        },
        "/api/v1/purchase-orders/{id}/receipts": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "purchase-orders"
                ],
                "summary": "Receive goods",
                "description": "Partial receipts are allowed; more than outstanding is rejected.",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Acting user id (uuid)",
                        "name": "X-Actor-ID",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Client key that makes the posting safe to retry",
                        "name": "Idempotency-Key",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Purchase order id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Received lines",
                        "name": "receipt",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.ReceivePurchaseRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.PurchaseOrderResponse"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "401": {
                        "description": "Missing or invalid actor",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "409": {
                        "description": "Conflict with current state",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "503": {
                        "description": "Storage unavailable",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    }
                }
            }
        },
        "/api/v1/purchase-orders/{id}/cancel": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "purchase-orders"
                ],
                "summary": "Cancel a purchase order",
                "description": "Stops further receipts. Stock already received is kept.",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Acting user id (uuid)",
                        "name": "X-Actor-ID",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Purchase order id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.PurchaseOrderResponse"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "401": {
                        "description": "Missing or invalid actor",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "409": {
                        "description": "Conflict with current state",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    },
                    "503": {
                        "description": "Storage unavailable",
                        "schema": {
                            "$ref": "#/definitions/dto.BaseError"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "dto.CreateProductRequest": {
            "type": "object",
            "properties": {
                "sku": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "initial_stock": {
                    "type": "integer"
                },
                "minimum_stock": {
                    "type": "integer"
                },
                "purchase_price": {
                    "type": "string",
                    "example": "0.00"
                },
                "sale_price": {
                    "type": "string",
                    "example": "0.00"
                }
            },
            "required": [
                "sku",
                "name"
            ]
        },
        "dto.UpdateProductRequest": {
            "type": "object",
            "properties": {
                "sku": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "minimum_stock": {
                    "type": "integer"
                },
                "purchase_price": {
                    "type": "string",
                    "example": "0.00"
                },
                "sale_price": {
                    "type": "string",
                    "example": "0.00"
                },
                "status": {
                    "type": "string"
                }
            }
        },
        "dto.ProductResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "sku": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "current_stock": {
                    "type": "integer"
                },
                "minimum_stock": {
                    "type": "integer"
                },
                "low_stock": {
                    "type": "boolean"
                },
                "purchase_price": {
                    "type": "string",
                    "example": "0.00"
                },
                "sale_price": {
                    "type": "string",
                    "example": "0.00"
                },
                "status": {
                    "type": "string"
                },
                "updated_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "dto.AdjustStockRequest": {
            "type": "object",
            "properties": {
                "delta": {
                    "type": "integer"
                },
                "note": {
                    "type": "string"
                }
            },
            "required": [
                "delta",
                "note"
            ]
        },
        "dto.MovementResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "sequence": {
                    "type": "integer"
                },
                "product_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "quantity": {
                    "type": "integer"
                },
                "type": {
                    "type": "string"
                },
                "unit_price": {
                    "type": "string",
                    "example": "0.00"
                },
                "stock_before": {
                    "type": "integer"
                },
                "stock_after": {
                    "type": "integer"
                },
                "repair_order_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "reference_type": {
                    "type": "string"
                },
                "reference_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "note": {
                    "type": "string"
                },
                "actor_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "created_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "dto.CreateOrderRequest": {
            "type": "object",
            "properties": {
                "customer_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "device_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "technician_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "priority": {
                    "type": "string"
                },
                "problem_description": {
                    "type": "string"
                },
                "diagnosis_cost": {
                    "type": "string",
                    "example": "0.00"
                },
                "advance_payment": {
                    "type": "string",
                    "example": "0.00"
                },
                "estimated_delivery": {
                    "type": "string",
                    "format": "date-time"
                }
            },
            "required": [
                "customer_id",
                "device_id",
                "problem_description"
            ]
        },
        "dto.TransitionRequest": {
            "type": "object",
            "properties": {
                "status": {
                    "type": "string"
                },
                "note": {
                    "type": "string"
                }
            },
            "required": [
                "status"
            ]
        },
        "dto.UpdateCostsRequest": {
            "type": "object",
            "properties": {
                "diagnosis_cost": {
                    "type": "string",
                    "example": "0.00"
                },
                "repair_cost": {
                    "type": "string",
                    "example": "0.00"
                },
                "total_cost": {
                    "type": "string",
                    "example": "0.00"
                },
                "advance_payment": {
                    "type": "string",
                    "example": "0.00"
                },
                "diagnosis_notes": {
                    "type": "string"
                }
            }
        },
        "dto.AssignTechnicianRequest": {
            "type": "object",
            "properties": {
                "technician_id": {
                    "type": "string",
                    "format": "uuid"
                }
            }
        },
        "dto.OrderResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "order_number": {
                    "type": "string"
                },
                "customer_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "device_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "technician_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "status": {
                    "type": "string"
                },
                "priority": {
                    "type": "string"
                },
                "problem_description": {
                    "type": "string"
                },
                "diagnosis_notes": {
                    "type": "string"
                },
                "diagnosis_cost": {
                    "type": "string",
                    "example": "0.00"
                },
                "repair_cost": {
                    "type": "string",
                    "example": "0.00"
                },
                "total_cost": {
                    "type": "string",
                    "example": "0.00"
                },
                "advance_payment": {
                    "type": "string",
                    "example": "0.00"
                },
                "pending_balance": {
                    "type": "string",
                    "example": "0.00"
                },
                "estimated_delivery": {
                    "type": "string",
                    "format": "date-time"
                },
                "delivered_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "created_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "dto.HistoryResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "previous_status": {
                    "type": "string"
                },
                "new_status": {
                    "type": "string"
                },
                "actor_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "note": {
                    "type": "string"
                },
                "created_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "dto.UseItemRequest": {
            "type": "object",
            "properties": {
                "quantity": {
                    "type": "integer"
                },
                "unit_price": {
                    "type": "string",
                    "example": "0.00"
                }
            },
            "required": [
                "quantity"
            ]
        },
        "dto.PartResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "product_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "quantity": {
                    "type": "integer"
                },
                "unit_price": {
                    "type": "string",
                    "example": "0.00"
                },
                "total_price": {
                    "type": "string",
                    "example": "0.00"
                },
                "used_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "dto.SaleLineRequest": {
            "type": "object",
            "properties": {
                "product_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "quantity": {
                    "type": "integer"
                },
                "unit_price": {
                    "type": "string",
                    "example": "0.00"
                }
            },
            "required": [
                "product_id",
                "quantity"
            ]
        },
        "dto.CreateSaleRequest": {
            "type": "object",
            "properties": {
                "customer_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "lines": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.SaleLineRequest"
                    }
                }
            },
            "required": [
                "lines"
            ]
        },
        "dto.SaleLineResponse": {
            "type": "object",
            "properties": {
                "product_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "quantity": {
                    "type": "integer"
                },
                "unit_price": {
                    "type": "string",
                    "example": "0.00"
                },
                "line_total": {
                    "type": "string",
                    "example": "0.00"
                }
            }
        },
        "dto.SaleResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "sale_number": {
                    "type": "string"
                },
                "customer_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "total": {
                    "type": "string",
                    "example": "0.00"
                },
                "status": {
                    "type": "string"
                },
                "lines": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.SaleLineResponse"
                    }
                },
                "created_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "dto.PurchaseLineRequest": {
            "type": "object",
            "properties": {
                "product_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "quantity": {
                    "type": "integer"
                },
                "unit_cost": {
                    "type": "string",
                    "example": "0.00"
                }
            },
            "required": [
                "product_id",
                "quantity"
            ]
        },
        "dto.CreatePurchaseOrderRequest": {
            "type": "object",
            "properties": {
                "supplier_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "lines": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.PurchaseLineRequest"
                    }
                }
            },
            "required": [
                "supplier_id",
                "lines"
            ]
        },
        "dto.ReceiveLineRequest": {
            "type": "object",
            "properties": {
                "product_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "quantity": {
                    "type": "integer"
                }
            },
            "required": [
                "product_id",
                "quantity"
            ]
        },
        "dto.ReceivePurchaseRequest": {
            "type": "object",
            "properties": {
                "lines": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.ReceiveLineRequest"
                    }
                }
            },
            "required": [
                "lines"
            ]
        },
        "dto.PurchaseLineResponse": {
            "type": "object",
            "properties": {
                "product_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "quantity_ordered": {
                    "type": "integer"
                },
                "quantity_received": {
                    "type": "integer"
                },
                "unit_cost": {
                    "type": "string",
                    "example": "0.00"
                }
            }
        },
        "dto.PurchaseOrderResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "supplier_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "status": {
                    "type": "string"
                },
                "lines": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.PurchaseLineResponse"
                    }
                },
                "created_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "dto.BaseError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "details": {
                    "type": "string"
                },
                "fields": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.FieldError"
                    }
                }
            }
        },
        "dto.FieldError": {
            "type": "object",
            "properties": {
                "field": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "tag": {
                    "type": "string"
                }
            }
        },
        "service.StockReport": {
            "type": "object",
            "properties": {
                "product_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "current_stock": {
                    "type": "integer"
                },
                "replayed_stock": {
                    "type": "integer"
                },
                "movements": {
                    "type": "integer"
                },
                "broken_at": {
                    "type": "integer"
                },
                "consistent": {
                    "type": "boolean"
                }
            }
        },
        "service.HistoryReport": {
            "type": "object",
            "properties": {
                "order_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "current_status": {
                    "type": "string"
                },
                "replayed_status": {
                    "type": "string"
                },
                "entries": {
                    "type": "integer"
                },
                "problems": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "consistent": {
                    "type": "boolean"
                }
            }
        },
        "dto.ListResponse-dto_ProductResponse": {
            "type": "object",
            "properties": {
                "items": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.ProductResponse"
                    }
                },
                "total": {
                    "type": "integer"
                }
            }
        },
        "dto.ListResponse-dto_MovementResponse": {
            "type": "object",
            "properties": {
                "items": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.MovementResponse"
                    }
                },
                "total": {
                    "type": "integer"
                }
            }
        },
        "dto.ListResponse-dto_OrderResponse": {
            "type": "object",
            "properties": {
                "items": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.OrderResponse"
                    }
                },
                "total": {
                    "type": "integer"
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Reparo workshop API",
	Description:      "Repair orders, parts consumption, stock ledger and commerce postings.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
