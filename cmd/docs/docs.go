// Package docs holds the OpenAPI document served at /swagger.
// Regenerate with: swag init -g cmd/bookkeeping_backend/main.go -o cmd/docs --parseDependency
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
        "/counterparties": {
            "get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["counterparties"], "summary": "List counterparties", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "consumes": ["application/json"], "produces": ["application/json"], "tags": ["counterparties"], "summary": "Create a counterparty", "responses": {"201": {"description": "Created"}}}
        },
        "/invoices": {
            "get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["invoices"], "summary": "List invoices", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "consumes": ["application/json"], "produces": ["application/json"], "tags": ["invoices"], "summary": "Create an invoice", "responses": {"201": {"description": "Created"}}}
        },
        "/products": {
            "get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["products"], "summary": "List products", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "consumes": ["application/json"], "produces": ["application/json"], "tags": ["products"], "summary": "Create a product", "responses": {"201": {"description": "Created"}}}
        },
        "/bank-statements": {
            "get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["banking"], "summary": "Build a bank statement", "responses": {"200": {"description": "OK"}}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Bookkeeping Backend API",
	Description:      "Counterparty ledgers, invoices, stock and bank statements over versioned records.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
