package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Shift Scheduler API",
        "description": "Weekly shift schedule generation, review and commit",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Schedules", "description": "Schedule generation and commit"},
        {"name": "Metrics", "description": "Operational metrics"}
    ],
    "paths": {
        "/schedules/generate": {
            "post": {
                "tags": ["Schedules"],
                "summary": "Generate a schedule preview",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "Preview", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Schedule already exists", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Generation failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/exists": {
            "get": {
                "tags": ["Schedules"],
                "summary": "Check for a committed schedule",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "departmentId", "in": "query", "required": true, "type": "string"},
                    {"name": "startDate", "in": "query", "required": true, "type": "string", "format": "date"},
                    {"name": "endDate", "in": "query", "required": true, "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/proposals/{id}": {
            "get": {
                "tags": ["Schedules"],
                "summary": "Get a stored schedule preview",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found or expired", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/commit": {
            "post": {
                "tags": ["Schedules"],
                "summary": "Commit a schedule proposal",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CommitScheduleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Committed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown proposal", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Assignment conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Overlapping schedule", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/complete": {
            "post": {
                "tags": ["Schedules"],
                "summary": "Mark past assignments completed",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "departmentId", "in": "query", "type": "string"},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/CompletePastRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/roster": {
            "get": {
                "tags": ["Schedules"],
                "summary": "Export the committed roster",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "departmentId", "in": "query", "required": true, "type": "string"},
                    {"name": "startDate", "in": "query", "required": true, "type": "string", "format": "date"},
                    {"name": "endDate", "in": "query", "required": true, "type": "string", "format": "date"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Roster document", "schema": {"type": "file"}}
                }
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": ["Metrics"],
                "summary": "Request and scheduling metrics summary",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "GenerateScheduleRequest": {
            "type": "object",
            "required": ["departmentId", "startDate", "endDate"],
            "properties": {
                "departmentId": {"type": "string"},
                "startDate": {"type": "string", "format": "date"},
                "endDate": {"type": "string", "format": "date"},
                "strict": {"type": "boolean"},
                "useOracle": {"type": "boolean"},
                "asOf": {"type": "string", "format": "date"}
            }
        },
        "AssignmentDraft": {
            "type": "object",
            "required": ["shiftId", "employeeId", "positionId"],
            "properties": {
                "shiftId": {"type": "string"},
                "employeeId": {"type": "string"},
                "positionId": {"type": "string"},
                "kind": {"type": "string", "enum": ["regular", "overtime"]},
                "status": {"type": "string", "enum": ["assigned", "confirmed"]}
            }
        },
        "CommitScheduleRequest": {
            "type": "object",
            "required": ["proposalId"],
            "properties": {
                "proposalId": {"type": "string"},
                "assignments": {"type": "array", "items": {"$ref": "#/definitions/AssignmentDraft"}},
                "asOf": {"type": "string", "format": "date"}
            }
        },
        "CompletePastRequest": {
            "type": "object",
            "properties": {
                "asOf": {"type": "string", "format": "date"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "details": {"type": "object"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
