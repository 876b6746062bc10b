package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Registro Academico API",
        "description": "Course registration change requests with dean approval workflow",
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
        {"name": "Authentication", "description": "Login and token lifecycle"},
        {"name": "Requests", "description": "Student change requests (solicitudes)"},
        {"name": "Calendar", "description": "Academic calendar windows"},
        {"name": "Monitoring", "description": "Dean's office occupancy dashboard"},
        {"name": "Students", "description": "Academic progress board"},
        {"name": "Receipts", "description": "Constancia PDF downloads"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {
                    "200": {"description": "Tokens issued"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "responses": {
                    "200": {"description": "Tokens rotated"},
                    "401": {"description": "Invalid refresh token"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Revoke refresh token",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Session revoked"}
                }
            }
        },
        "/requests": {
            "post": {
                "tags": ["Requests"],
                "summary": "Submit a change request",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateRequest"}}],
                "responses": {
                    "201": {"description": "Request radicated with receipt code"},
                    "409": {"description": "Duplicate open request for subject"},
                    "422": {"description": "Outside submission window"}
                }
            },
            "get": {
                "tags": ["Requests"],
                "summary": "List change requests",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "kind", "in": "query", "type": "string"},
                    {"name": "studentId", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Requests ordered by priority then recency"}
                }
            }
        },
        "/requests/{id}": {
            "get": {
                "tags": ["Requests"],
                "summary": "Get change request detail",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Request detail"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/requests/{id}/decision": {
            "post": {
                "tags": ["Requests"],
                "summary": "Decide a change request",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DecideRequest"}}
                ],
                "responses": {
                    "200": {"description": "Decision recorded"},
                    "409": {"description": "Group full, schedule conflict or terminal status"}
                }
            }
        },
        "/requests/{id}/receipt": {
            "get": {
                "tags": ["Requests"],
                "summary": "Signed download URL for the request receipt",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Signed URL with expiry"}
                }
            }
        },
        "/receipts/download": {
            "get": {
                "tags": ["Receipts"],
                "summary": "Download a receipt PDF",
                "parameters": [{"name": "token", "in": "query", "required": true, "type": "string"}],
                "produces": ["application/pdf"],
                "responses": {
                    "200": {"description": "PDF stream"},
                    "401": {"description": "Invalid or expired token"}
                }
            }
        },
        "/calendar/windows": {
            "get": {
                "tags": ["Calendar"],
                "summary": "List configured calendar windows",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Windows with open flag"}
                }
            },
            "put": {
                "tags": ["Calendar"],
                "summary": "Configure a calendar window",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ConfigureWindow"}}],
                "responses": {
                    "200": {"description": "Window stored"},
                    "400": {"description": "Invalid range"}
                }
            }
        },
        "/monitoring/occupancy": {
            "get": {
                "tags": ["Monitoring"],
                "summary": "Group occupancy report",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "subjectCode", "in": "query", "type": "string"}],
                "responses": {
                    "200": {"description": "Occupancy with alert levels"}
                }
            }
        },
        "/monitoring/metrics": {
            "get": {
                "tags": ["Monitoring"],
                "summary": "System metrics snapshot",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Aggregated counters"}
                }
            }
        },
        "/students/me/semaforo": {
            "get": {
                "tags": ["Students"],
                "summary": "Progress board for the authenticated student",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Per-subject lights and indicators"}
                }
            }
        },
        "/students/{id}/semaforo": {
            "get": {
                "tags": ["Students"],
                "summary": "Progress board for a student (reviewer view)",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Per-subject lights and indicators"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "CreateRequest": {
            "type": "object",
            "required": ["kind", "subjectCode", "reason"],
            "properties": {
                "kind": {"type": "string", "enum": ["NEW_ENROLLMENT", "GROUP_CHANGE", "CANCELLATION"]},
                "subjectCode": {"type": "string"},
                "sourceGroupId": {"type": "string"},
                "targetGroupId": {"type": "string"},
                "reason": {"type": "string"},
                "priority": {"type": "integer"}
            }
        },
        "DecideRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["IN_REVIEW", "APPROVED", "REJECTED"]},
                "notes": {"type": "string"}
            }
        },
        "ConfigureWindow": {
            "type": "object",
            "required": ["kind", "startDate", "endDate"],
            "properties": {
                "kind": {"type": "string", "enum": ["ACADEMIC", "SUBMISSION"]},
                "startDate": {"type": "string", "format": "date"},
                "endDate": {"type": "string", "format": "date"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total": {"type": "integer"}
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
