// Package docs registers the OpenAPI description of the local mirror with
// swag so that /swagger/* can serve it.
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
        "/health": {
            "get": {"tags": ["health"], "summary": "Liveness probe", "responses": {"200": {"description": "OK"}}}
        },
        "/health/ready": {
            "get": {"tags": ["health"], "summary": "Readiness probe", "responses": {"200": {"description": "OK"}, "503": {"description": "Degraded"}}}
        },
        "/v1/logs": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["logs"],
                "summary": "List recent log events",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.logListResponse"}}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["logs"],
                "summary": "Append a log event",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"description": "Log event", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.appendLogRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.logEventResponse"}}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["logs"],
                "summary": "Destroy the local log database",
                "responses": {"204": {"description": "No Content"}, "409": {"description": "Conflict"}}
            }
        },
        "/v1/logs/prune": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["logs"],
                "summary": "Delete events older than last month",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.pruneResponse"}}, "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/handler.pruneResponse"}}}
            }
        },
        "/v1/users": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "List the account's users",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.userResponse"}}}}
            }
        },
        "/v1/session/user": {
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Select the current user",
                "parameters": [{"description": "User to select", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.selectUserRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.userResponse"}}}
            }
        },
        "/v1/snapshot": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Cached data of the current user",
                "parameters": [{"type": "boolean", "description": "Re-fetch before answering", "name": "refresh", "in": "query"}],
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "definitions": {
        "handler.appendLogRequest": {
            "type": "object",
            "required": ["level", "message"],
            "properties": {
                "level": {"type": "string", "enum": ["info", "warning", "error"]},
                "message": {"type": "string"},
                "timestamp": {"type": "string"}
            }
        },
        "handler.logEventResponse": {
            "type": "object",
            "properties": {
                "db_index": {"type": "string"},
                "id": {"type": "string"},
                "level": {"type": "string"},
                "message": {"type": "string"},
                "timestamp": {"type": "string"}
            }
        },
        "handler.logListResponse": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "events": {"type": "array", "items": {"$ref": "#/definitions/handler.logEventResponse"}}
            }
        },
        "handler.pruneResponse": {
            "type": "object",
            "properties": {
                "before": {"type": "string"},
                "removed": {"type": "integer"},
                "scheduled": {"type": "boolean"}
            }
        },
        "handler.selectUserRequest": {
            "type": "object",
            "required": ["vb_user_id"],
            "properties": {"vb_user_id": {"type": "string"}}
        },
        "handler.userResponse": {
            "type": "object",
            "properties": {
                "current_tokens": {"type": "string"},
                "id": {"type": "string"},
                "name": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Vice Bank local mirror",
	Description:      "Local event log and cached Vice Bank data.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
