package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "VGP Compliance API",
        "description": "Periodic inspection (VGP) scheduling, compliance classification and rental gating for fleet equipment.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "VGP Schedules", "description": "Recurring inspection obligations per asset"},
        {"name": "VGP Inspections", "description": "Recorded inspections and due-date recomputation"},
        {"name": "Compliance", "description": "Derived compliance status and the rental gate"},
        {"name": "Reports", "description": "Regulatory compliance reports"}
    ],
    "paths": {
        "/vgp/schedules": {
            "get": {
                "tags": ["VGP Schedules"],
                "summary": "List an asset's schedules",
                "parameters": [
                    {"name": "assetId", "in": "query", "required": true, "type": "string"},
                    {"name": "includeArchived", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["VGP Schedules"],
                "summary": "Create a schedule",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateScheduleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Asset not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/vgp/schedules/{id}": {
            "get": {
                "tags": ["VGP Schedules"],
                "summary": "Get a schedule with its urgency badge",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/vgp/schedules/{id}/due-date": {
            "patch": {
                "tags": ["VGP Schedules"],
                "summary": "Override the next due date",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EditDueDateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found or archived", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/vgp/schedules/{id}/archive": {
            "post": {
                "tags": ["VGP Schedules"],
                "summary": "Archive a schedule",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/vgp/schedules/{id}/inspections": {
            "post": {
                "tags": ["VGP Inspections"],
                "summary": "Record a completed inspection",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecordInspectionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Schedule not found or archived", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/vgp/assets/{assetId}/inspections": {
            "get": {
                "tags": ["VGP Inspections"],
                "summary": "List an asset's inspections, newest first",
                "parameters": [
                    {"name": "assetId", "in": "path", "required": true, "type": "string"},
                    {"name": "from", "in": "query", "type": "string", "format": "date"},
                    {"name": "to", "in": "query", "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/vgp/assets/{assetId}/compliance": {
            "get": {
                "tags": ["Compliance"],
                "summary": "Classify an asset",
                "parameters": [
                    {"name": "assetId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/vgp/assets/{assetId}/rental-check": {
            "get": {
                "tags": ["Compliance"],
                "summary": "Check whether an asset may be rented",
                "parameters": [
                    {"name": "assetId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assets/{assetId}/checkout": {
            "post": {
                "tags": ["Compliance"],
                "summary": "Check out an asset through the compliance gate",
                "parameters": [
                    {"name": "assetId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Asset not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Blocked by compliance or not available", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/vgp/reports/compliance": {
            "get": {
                "tags": ["Reports"],
                "summary": "Compliance report for a window",
                "parameters": [
                    {"name": "start", "in": "query", "required": true, "type": "string", "format": "date"},
                    {"name": "end", "in": "query", "required": true, "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/vgp/reports/compliance/export": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download the compliance report",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "start", "in": "query", "required": true, "type": "string", "format": "date"},
                    {"name": "end", "in": "query", "required": true, "type": "string", "format": "date"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Report file", "schema": {"type": "file"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CreateScheduleRequest": {
            "type": "object",
            "required": ["asset_id", "interval_months"],
            "properties": {
                "asset_id": {"type": "string"},
                "interval_months": {"type": "integer", "minimum": 1},
                "last_inspection_date": {"type": "string", "format": "date"},
                "created_by": {"type": "string"},
                "notes": {"type": "string"}
            }
        },
        "EditDueDateRequest": {
            "type": "object",
            "required": ["next_due_date", "reason"],
            "properties": {
                "next_due_date": {"type": "string", "format": "date"},
                "reason": {"type": "string"}
            }
        },
        "RecordInspectionRequest": {
            "type": "object",
            "required": ["inspection_date", "inspector_name", "inspector_company", "result"],
            "properties": {
                "inspection_date": {"type": "string", "format": "date"},
                "inspector_name": {"type": "string"},
                "inspector_company": {"type": "string"},
                "certification_number": {"type": "string"},
                "result": {"type": "string", "enum": ["passed", "conditional", "failed"]},
                "findings": {"type": "string"},
                "observations": {"type": "string"},
                "certificate_url": {"type": "string", "format": "uri"}
            }
        },
        "FieldError": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "details": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/FieldError"}
                },
                "meta": {"type": "object"}
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
