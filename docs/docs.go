package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/api/v1/health": {
            "get": {"tags": ["Health"], "summary": "Health check", "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}
        },
        "/api/v1/routes": {
            "get": {"tags": ["Catalog"], "summary": "List published routes", "parameters": [{"type": "string", "name": "q", "in": "query"}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/routes/{slug}": {
            "get": {"tags": ["Catalog"], "summary": "Public route page", "parameters": [{"type": "string", "name": "slug", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/api/v1/routes/{slug}/fare": {
            "get": {"tags": ["Catalog"], "summary": "Fare between two stop positions", "parameters": [{"type": "string", "name": "slug", "in": "path", "required": true}, {"type": "integer", "name": "from", "in": "query", "required": true}, {"type": "integer", "name": "to", "in": "query", "required": true}, {"type": "boolean", "name": "peak", "in": "query"}, {"type": "string", "name": "passenger_type", "in": "query"}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}}
        },
        "/api/v1/stops": {
            "get": {"tags": ["Catalog"], "summary": "List published stops", "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/stops/{slug}": {
            "get": {"tags": ["Catalog"], "summary": "Public stop page", "parameters": [{"type": "string", "name": "slug", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/api/v1/terminals": {
            "get": {"tags": ["Catalog"], "summary": "List published terminals", "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/terminals/{slug}": {
            "get": {"tags": ["Catalog"], "summary": "Public terminal page", "parameters": [{"type": "string", "name": "slug", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/api/v1/stats": {
            "get": {"tags": ["Statistics"], "summary": "Content statistics", "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/dashboard/routes": {
            "get": {"tags": ["Dashboard"], "security": [{"BearerAuth": []}], "summary": "List routes in every status", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}},
            "post": {"tags": ["Dashboard"], "security": [{"BearerAuth": []}], "summary": "Create a route", "consumes": ["application/json"], "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}, "409": {"description": "Conflict"}, "422": {"description": "Unprocessable Entity"}}}
        },
        "/api/v1/dashboard/routes/{id}": {
            "get": {"tags": ["Dashboard"], "security": [{"BearerAuth": []}], "summary": "Get a route for editing", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"tags": ["Dashboard"], "security": [{"BearerAuth": []}], "summary": "Replace a route", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}}},
            "delete": {"tags": ["Dashboard"], "security": [{"BearerAuth": []}], "summary": "Delete a route", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}}
        },
        "/api/v1/dashboard/routes/{id}/through-terminals": {
            "put": {"tags": ["Dashboard"], "security": [{"BearerAuth": []}], "summary": "Replace the terminals a route passes through", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/dashboard/{entity}/{id}/transitions": {
            "post": {"tags": ["Workflow"], "security": [{"BearerAuth": []}], "summary": "Change the workflow status", "parameters": [{"type": "string", "name": "entity", "in": "path", "required": true, "enum": ["routes", "stops", "terminals"]}, {"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}
        },
        "/api/v1/dashboard/{entity}/{id}/events": {
            "get": {"tags": ["Workflow"], "security": [{"BearerAuth": []}], "summary": "Workflow history, oldest first", "parameters": [{"type": "string", "name": "entity", "in": "path", "required": true, "enum": ["routes", "stops", "terminals"]}, {"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/dashboard/stops": {
            "get": {"tags": ["Dashboard"], "security": [{"BearerAuth": []}], "summary": "List stops in every status", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Dashboard"], "security": [{"BearerAuth": []}], "summary": "Create a stop", "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}}
        },
        "/api/v1/dashboard/stops/{id}": {
            "get": {"tags": ["Dashboard"], "security": [{"BearerAuth": []}], "summary": "Get a stop for editing", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["Dashboard"], "security": [{"BearerAuth": []}], "summary": "Update a stop", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/dashboard/terminals": {
            "get": {"tags": ["Dashboard"], "security": [{"BearerAuth": []}], "summary": "List terminals in every status", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Dashboard"], "security": [{"BearerAuth": []}], "summary": "Create a terminal", "responses": {"201": {"description": "Created"}}}
        },
        "/api/v1/dashboard/terminals/{id}": {
            "get": {"tags": ["Dashboard"], "security": [{"BearerAuth": []}], "summary": "Get a terminal for editing", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["Dashboard"], "security": [{"BearerAuth": []}], "summary": "Update a terminal", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "DaRoutes Wiki API",
	Description:      "Transit wiki for Dar es Salaam daladala routes: public read models and the editor dashboard.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
