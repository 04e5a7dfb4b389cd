// Package docs registers the portal's OpenAPI description with swag so that
// echo-swagger can serve it at /swagger/.
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
            "get": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Sign-in screen",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.sessionView"}},
                    "303": {"description": "already signed in; redirect to the landing path"},
                    "503": {"description": "session still validating"}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login",
                "parameters": [
                    {
                        "description": "Login credentials",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handler.loginRequest"}
                    }
                ],
                "responses": {
                    "303": {"description": "signed in; redirect to the landing path"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/logout": {
            "post": {
                "tags": ["auth"],
                "summary": "Logout",
                "responses": {
                    "303": {"description": "redirect to the sign-in path"}
                }
            }
        },
        "/session": {
            "get": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.sessionView"}}
                }
            }
        },
        "/dashboard": {
            "get": {
                "produces": ["application/json"],
                "tags": ["screens"],
                "summary": "Dashboard",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.sessionView"}},
                    "303": {"description": "signed out; redirect to the sign-in path"}
                }
            }
        },
        "/accounts": {
            "get": {
                "produces": ["application/json"],
                "tags": ["screens"],
                "summary": "Accounts screen",
                "parameters": [
                    {"type": "integer", "description": "Admin only: narrow to one customer", "name": "customerId", "in": "query"},
                    {"type": "string", "description": "Admin only: search by name", "name": "search", "in": "query"},
                    {"type": "integer", "description": "Admin only: page (0-based)", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Admin only: page size (max 100)", "name": "size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ports.ScreenResult"}}
                }
            }
        },
        "/cards": {
            "get": {
                "produces": ["application/json"],
                "tags": ["screens"],
                "summary": "Cards screen",
                "parameters": [
                    {"type": "integer", "description": "Admin only: narrow to one customer", "name": "customerId", "in": "query"},
                    {"type": "string", "description": "Admin only: search by name", "name": "search", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ports.ScreenResult"}}
                }
            }
        },
        "/transactions": {
            "get": {
                "produces": ["application/json"],
                "tags": ["screens"],
                "summary": "Transactions screen",
                "parameters": [
                    {"type": "integer", "description": "Admin only: narrow to one customer", "name": "customerId", "in": "query"},
                    {"type": "string", "description": "Admin only: search term", "name": "search", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ports.ScreenResult"}}
                }
            }
        },
        "/bill-payments": {
            "get": {
                "produces": ["application/json"],
                "tags": ["screens"],
                "summary": "Bill payment screen",
                "parameters": [
                    {"type": "integer", "description": "Required for admins", "name": "customerId", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ports.ScreenResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["bill-payments"],
                "summary": "Pay bill",
                "parameters": [
                    {"type": "integer", "description": "Admin only: target customer", "name": "customerId", "in": "query"},
                    {"description": "Payment", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.paymentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/bill-payments/payees": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["bill-payments"],
                "summary": "Add payee",
                "parameters": [
                    {"type": "integer", "description": "Admin only: target customer", "name": "customerId", "in": "query"},
                    {"description": "Payee", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.payeeRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/bill-payments/{id}/cancel": {
            "post": {
                "produces": ["application/json"],
                "tags": ["bill-payments"],
                "summary": "Cancel payment",
                "parameters": [
                    {"type": "integer", "description": "Payment id", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "Admin only: target customer", "name": "customerId", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/authorizations": {
            "get": {
                "produces": ["application/json"],
                "tags": ["screens"],
                "summary": "Pending authorizations screen",
                "parameters": [
                    {"type": "string", "description": "all, fraud or high-risk", "name": "view", "in": "query"},
                    {"type": "integer", "description": "Admin only: narrow to one customer", "name": "customerId", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ports.ScreenResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/reports": {
            "get": {
                "produces": ["application/json"],
                "tags": ["screens"],
                "summary": "Reports screen",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ports.ScreenResult"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "api.errorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        },
        "handler.loginRequest": {
            "type": "object",
            "required": ["password", "userId"],
            "properties": {
                "password": {"type": "string", "maxLength": 20, "minLength": 8},
                "userId": {"type": "string", "maxLength": 8}
            }
        },
        "handler.payeeRequest": {
            "type": "object",
            "required": ["payeeName", "payeeType"],
            "properties": {
                "customerId": {"type": "integer"},
                "nickname": {"type": "string", "maxLength": 50},
                "payeeAccountNumber": {"type": "string", "maxLength": 50},
                "payeeName": {"type": "string", "maxLength": 100},
                "payeeType": {"type": "string", "enum": ["UTILITY", "CREDIT_CARD", "LOAN", "INSURANCE", "TELECOM", "OTHER"]}
            }
        },
        "handler.paymentRequest": {
            "type": "object",
            "required": ["accountId", "amount", "payeeId", "paymentDate"],
            "properties": {
                "accountId": {"type": "integer"},
                "amount": {"type": "number"},
                "isRecurring": {"type": "boolean"},
                "memo": {"type": "string", "maxLength": 100},
                "payeeId": {"type": "integer"},
                "paymentDate": {"type": "string"},
                "recurringFrequency": {"type": "string", "enum": ["WEEKLY", "BIWEEKLY", "MONTHLY", "QUARTERLY", "YEARLY"]}
            }
        },
        "handler.userView": {
            "type": "object",
            "properties": {
                "customerId": {"type": "integer"},
                "firstName": {"type": "string"},
                "fullName": {"type": "string"},
                "lastName": {"type": "string"},
                "role": {"type": "string"},
                "sessionId": {"type": "string"},
                "userId": {"type": "string"},
                "userType": {"type": "string"}
            }
        },
        "handler.sessionView": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "isAdmin": {"type": "boolean"},
                "isAuthenticated": {"type": "boolean"},
                "loading": {"type": "boolean"},
                "status": {"type": "string"},
                "user": {"$ref": "#/definitions/handler.userView"}
            }
        },
        "ports.ScreenResult": {
            "type": "object",
            "properties": {
                "scope": {"type": "string"},
                "sections": {"type": "object", "additionalProperties": {}}
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
	Title:            "CardDemo Portal API",
	Description:      "Session lifecycle and role-scoped screens of the CardDemo banking portal.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
