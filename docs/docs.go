// Package docs registers the OpenAPI description served under /swagger.
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
        "/api/control": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Queues a command for the switch. Requests inside the quiet period replace each other; only the last one is published.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["control"],
                "summary": "Drive the switch",
                "parameters": [
                    {
                        "description": "Control payload",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handlers.ControlRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ControlResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/commands": {
            "get": {
                "description": "Published, failed and confirmed switch commands. If 'to' is date-only, it is treated as end-of-day inclusive.",
                "produces": ["application/json"],
                "tags": ["control"],
                "summary": "Switch command log",
                "parameters": [
                    {"type": "string", "name": "from", "in": "query"},
                    {"type": "string", "name": "to", "in": "query"},
                    {"enum": ["COMMAND_SENT", "COMMAND_FAILED", "STATE_CHANGED"], "type": "string", "name": "type", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "count, events", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/sensor-data": {
            "get": {
                "produces": ["application/json"],
                "tags": ["live"],
                "summary": "Live sensor snapshot",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Snapshot"}}}
            }
        },
        "/api/switch-status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["live"],
                "summary": "Switch status",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/service.SwitchStatus"}}}
            }
        },
        "/get-sensor-history": {
            "get": {
                "produces": ["application/json"],
                "tags": ["history"],
                "summary": "Sensor history",
                "parameters": [
                    {"type": "string", "name": "start", "in": "query"},
                    {"type": "string", "name": "end", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Reading"}}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/get-latest-sensor-data": {
            "get": {
                "produces": ["application/json"],
                "tags": ["history"],
                "summary": "Latest persisted reading",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Reading"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/get-available-dates": {
            "get": {
                "produces": ["application/json"],
                "tags": ["history"],
                "summary": "Days with data",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"type": "string"}}}}
            }
        },
        "/predict-power": {
            "get": {
                "produces": ["application/json"],
                "tags": ["forecast"],
                "summary": "Monthly forecast",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.ForecastResult"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            },
            "post": {
                "produces": ["application/json"],
                "tags": ["forecast"],
                "summary": "Monthly forecast",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.ForecastResult"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}}
            }
        },
        "/auth/sign-up": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register an operator",
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.operatorCredentials"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Operator"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "403": {"description": "Forbidden", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/auth/sign-in": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Obtain a bearer token",
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.operatorCredentials"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.tokenResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "403": {"description": "Forbidden", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "handlers.ControlRequest": {
            "type": "object",
            "properties": {
                "value": {"type": "integer", "example": 1},
                "device": {"type": "string", "example": "sw01"}
            }
        },
        "handlers.ControlResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean", "example": true},
                "message": {"type": "string", "example": "Control value 1 sent to ESP32 switch"},
                "status": {"type": "integer", "example": 1},
                "operator": {"type": "string", "example": "shift-lead"}
            }
        },
        "handlers.tokenResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"}
            }
        },
        "models.Operator": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "username": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "handlers.operatorCredentials": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "models.Snapshot": {
            "type": "object",
            "properties": {
                "voltage": {"type": "number"},
                "current": {"type": "number"},
                "power": {"type": "number"},
                "energy": {"type": "number"},
                "frequency": {"type": "number"},
                "pf": {"type": "number"},
                "sw01Status": {"type": "integer"}
            }
        },
        "models.Reading": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "voltage": {"type": "number"},
                "current": {"type": "number"},
                "power": {"type": "number"},
                "energy": {"type": "number"},
                "frequency": {"type": "number"},
                "pf": {"type": "number"},
                "timestamp": {"type": "string"}
            }
        },
        "service.PendingCommand": {
            "type": "object",
            "properties": {
                "value": {"type": "integer"},
                "device": {"type": "string"},
                "fire_at": {"type": "string"},
                "operator_id": {"type": "integer"},
                "operator": {"type": "string"}
            }
        },
        "service.SwitchStatus": {
            "type": "object",
            "properties": {
                "status": {"type": "integer"},
                "pending": {"$ref": "#/definitions/service.PendingCommand"}
            }
        },
        "service.ForecastResult": {
            "type": "object",
            "properties": {
                "energy": {"type": "number"},
                "cost": {"type": "number"},
                "method": {"type": "string", "enum": ["daily", "flat"]},
                "samples": {"type": "integer"},
                "days": {"type": "integer"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Power Monitor API",
	Description:      "Electrical telemetry over MQTT: live snapshot, per-minute history, debounced switch control and monthly cost forecast.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
