// Package docs holds the OpenAPI description served at /swagger. Regenerate
// with `swag init -g internal/adapters/handler/http/router.go`.
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
        "/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Create an account",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.registerRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/http.userResponse"}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Exchange credentials for a bearer token",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.loginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.loginResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/habits": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["habits"],
                "summary": "List the caller's habits",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Habit"}}}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["habits"],
                "summary": "Create a habit",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"name": "habit", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.createHabitRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Habit"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/habits/sync": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["habits"],
                "summary": "Habits changed since last_sync (RFC3339), soft-deleted ones included",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "last_sync", "in": "query"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/habits/{id}": {
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["habits"],
                "summary": "Update a habit; a stale version yields 409",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "habit", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.updateHabitRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Habit"}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/habits/{id}/completions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["completions"],
                "summary": "Completed dates of a habit, optionally within [from, to]",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "from", "in": "query"},
                    {"type": "string", "name": "to", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["completions"],
                "summary": "Flip the completion of a date (defaults to today)",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "body", "in": "body", "schema": {"$ref": "#/definitions/http.toggleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.ToggleResult"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "403": {"description": "Forbidden", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/habits/{id}/metrics": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["stats"],
                "summary": "Streaks, consistency and productivity of one habit",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "today", "in": "query"},
                    {"type": "string", "name": "window", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.HabitMetrics"}}}
            }
        },
        "/habits/{id}/heatmap": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["stats"],
                "summary": "Per-day scheduled/completed cells, at most 366 days",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "from", "in": "query", "required": true},
                    {"type": "string", "name": "to", "in": "query", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.HeatmapCell"}}}}
            }
        },
        "/habits/{id}/consistency": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["stats"],
                "summary": "Consistency of the calendar week, month or year containing date",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "period", "in": "query"},
                    {"type": "string", "name": "date", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.PeriodConsistency"}}}
            }
        },
        "/insights": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["stats"],
                "summary": "Metrics of every active habit plus the aggregate productivity",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "window", "in": "query"},
                    {"type": "string", "name": "today", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.InsightsReport"}}}
            }
        }
    },
    "definitions": {
        "domain.Schedule": {
            "type": "object",
            "properties": {
                "kind": {"type": "string", "enum": ["everyday", "weekdays", "challenge"]},
                "days": {"type": "array", "items": {"type": "string", "enum": ["mon", "tue", "wed", "thu", "fri", "sat", "sun"]}},
                "duration_days": {"type": "integer"}
            }
        },
        "domain.Habit": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "user_id": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "color": {"type": "string"},
                "icon": {"type": "string"},
                "sort_order": {"type": "integer"},
                "schedule": {"$ref": "#/definitions/domain.Schedule"},
                "challenge_completed_count": {"type": "integer"},
                "current_streak": {"type": "integer"},
                "best_streak": {"type": "integer"},
                "start_date": {"type": "string"},
                "version": {"type": "integer"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"},
                "archived_at": {"type": "string"},
                "deleted_at": {"type": "string"}
            }
        },
        "domain.ChallengeProgress": {
            "type": "object",
            "properties": {
                "completed": {"type": "integer"},
                "remaining": {"type": "integer"},
                "percent": {"type": "integer"}
            }
        },
        "domain.HabitMetrics": {
            "type": "object",
            "properties": {
                "today": {"type": "string"},
                "current_streak": {"type": "integer"},
                "best_streak": {"type": "integer"},
                "weekly_consistency": {"type": "integer"},
                "monthly_consistency": {"type": "integer"},
                "success_rate": {"type": "integer"},
                "productivity_score": {"type": "integer"},
                "scheduled_today": {"type": "boolean"},
                "completed_today": {"type": "boolean"},
                "challenge": {"$ref": "#/definitions/domain.ChallengeProgress"}
            }
        },
        "domain.HeatmapCell": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "scheduled": {"type": "boolean"},
                "completed": {"type": "boolean"}
            }
        },
        "domain.PeriodConsistency": {
            "type": "object",
            "properties": {
                "period": {"type": "string"},
                "start": {"type": "string"},
                "end": {"type": "string"},
                "consistency": {"type": "integer"}
            }
        },
        "domain.InsightsReport": {
            "type": "object",
            "properties": {
                "today": {"type": "string"},
                "window": {"type": "string"},
                "habits": {"type": "array", "items": {"type": "object"}},
                "productivity": {
                    "type": "object",
                    "properties": {
                        "score": {"type": "integer"},
                        "state": {"type": "string", "enum": ["no_data", "no_progress", "progressing"]},
                        "habit_count": {"type": "integer"}
                    }
                }
            }
        },
        "services.ToggleResult": {
            "type": "object",
            "properties": {
                "habit_id": {"type": "string"},
                "date": {"type": "string"},
                "completed": {"type": "boolean"},
                "current_streak": {"type": "integer"},
                "best_streak": {"type": "integer"},
                "challenge": {"$ref": "#/definitions/domain.ChallengeProgress"}
            }
        },
        "http.registerRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string", "minLength": 8}}
        },
        "http.loginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "http.userResponse": {
            "type": "object",
            "properties": {"id": {"type": "string"}, "email": {"type": "string"}}
        },
        "http.loginResponse": {
            "type": "object",
            "properties": {"token": {"type": "string"}, "user": {"$ref": "#/definitions/http.userResponse"}}
        },
        "http.createHabitRequest": {
            "type": "object",
            "required": ["title"],
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "color": {"type": "string"},
                "icon": {"type": "string"},
                "schedule": {"$ref": "#/definitions/domain.Schedule"},
                "start_date": {"type": "string"}
            }
        },
        "http.updateHabitRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "color": {"type": "string"},
                "icon": {"type": "string"},
                "schedule": {"$ref": "#/definitions/domain.Schedule"},
                "sort_order": {"type": "integer"},
                "version": {"type": "integer"}
            }
        },
        "http.toggleRequest": {
            "type": "object",
            "properties": {"date": {"type": "string"}, "today": {"type": "string"}}
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
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Kanso Habit Engine API",
	Description:      "Habit scheduling, completion tracking and streak metrics.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
