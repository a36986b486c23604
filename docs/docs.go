// Package docs registers the OpenAPI document served at /swagger. It is
// regenerated with `swag init -g cmd/dashboard/main.go`.
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
        "/login": {
            "get": {"tags": ["auth"], "summary": "Login screen state", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["auth"], "summary": "Login", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "429": {"description": "Too Many Requests"}}}
        },
        "/logout": {"post": {"tags": ["auth"], "summary": "Logout", "responses": {"200": {"description": "OK"}}}},
        "/signup": {"post": {"tags": ["auth"], "summary": "Sign up a company", "responses": {"200": {"description": "Partially completed"}, "201": {"description": "Created"}}}},
        "/": {"get": {"tags": ["home"], "summary": "Home screen", "responses": {"200": {"description": "OK"}, "303": {"description": "Not authenticated"}}}},
        "/events": {"get": {"tags": ["home"], "summary": "Poll notifications", "responses": {"200": {"description": "OK"}}}},
        "/select-tenant": {
            "get": {"tags": ["tenants"], "summary": "Tenant selection screen", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["tenants"], "summary": "Select operating tenant", "responses": {"200": {"description": "OK"}}}
        },
        "/companies": {
            "get": {"tags": ["tenants"], "summary": "List companies", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["tenants"], "summary": "Create a company", "responses": {"201": {"description": "Created"}}}
        },
        "/companies/{id}": {
            "get": {"tags": ["tenants"], "summary": "Get a company", "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["tenants"], "summary": "Update a company", "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["tenants"], "summary": "Delete a company", "responses": {"200": {"description": "OK"}}}
        },
        "/companies/{id}/token-usage": {"get": {"tags": ["tenants"], "summary": "Token usage of a company", "responses": {"200": {"description": "OK"}}}},
        "/analytics": {"get": {"tags": ["analytics"], "summary": "Analytics dashboard", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/analytics/tenants": {"get": {"tags": ["analytics"], "summary": "Cross-tenant overview", "responses": {"200": {"description": "OK"}}}},
        "/tickets": {"get": {"tags": ["tickets"], "summary": "List tickets", "responses": {"200": {"description": "OK"}}}},
        "/tickets/{id}": {
            "get": {"tags": ["tickets"], "summary": "Ticket detail", "responses": {"200": {"description": "OK"}}},
            "patch": {"tags": ["tickets"], "summary": "Edit ticket details", "responses": {"200": {"description": "OK"}}}
        },
        "/tickets/{id}/status": {"put": {"tags": ["tickets"], "summary": "Change ticket status", "responses": {"200": {"description": "OK"}}}},
        "/tickets/{id}/department": {"put": {"tags": ["tickets"], "summary": "Reroute a ticket", "responses": {"200": {"description": "OK"}}}},
        "/tickets/{id}/notes": {"post": {"tags": ["tickets"], "summary": "Add an internal note", "responses": {"201": {"description": "Created"}}}},
        "/tickets/{id}/draft-reply": {"post": {"tags": ["tickets"], "summary": "Draft a reply with AI", "responses": {"200": {"description": "OK"}}}},
        "/tickets/{id}/reply": {"post": {"tags": ["tickets"], "summary": "Reply to the customer", "responses": {"201": {"description": "Created"}}}},
        "/departments": {
            "get": {"tags": ["departments"], "summary": "List departments", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["departments"], "summary": "Create a department", "responses": {"201": {"description": "Created"}}}
        },
        "/departments/{id}": {
            "get": {"tags": ["departments"], "summary": "Get a department", "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["departments"], "summary": "Rename a department", "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["departments"], "summary": "Delete a department", "responses": {"200": {"description": "OK"}}}
        },
        "/users": {
            "get": {"tags": ["users"], "summary": "List users", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["users"], "summary": "Register an employee", "responses": {"201": {"description": "Created"}}}
        },
        "/users/{id}": {
            "get": {"tags": ["users"], "summary": "Get a user", "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["users"], "summary": "Update a user", "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["users"], "summary": "Delete a user", "responses": {"200": {"description": "OK"}}}
        },
        "/account/password": {"post": {"tags": ["users"], "summary": "Change own password", "responses": {"200": {"description": "OK"}}}},
        "/settings": {"get": {"tags": ["settings"], "summary": "Company settings", "responses": {"200": {"description": "OK"}}}},
        "/settings/webhook": {"put": {"tags": ["settings"], "summary": "Set the company webhook", "responses": {"200": {"description": "OK"}}}},
        "/health": {"get": {"tags": ["health"], "summary": "Liveness probe", "responses": {"200": {"description": "OK"}}}},
        "/health/ready": {"get": {"tags": ["health"], "summary": "Readiness probe", "responses": {"200": {"description": "OK"}, "503": {"description": "Degraded"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Ticket dashboard gateway",
	Description:      "Session-holding gateway between the support dashboard and the ticketing backend.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
