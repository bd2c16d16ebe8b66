package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Youth Camp API",
        "description": "Registration, T-shirt orders and admin back-office for the youth leadership camp",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Registrations", "description": "Public registration form"},
        {"name": "T-shirt Orders", "description": "Public T-shirt ordering"},
        {"name": "Admin Registrations", "description": "Review, status changes, stats and exports"},
        {"name": "Editions", "description": "Yearly camp editions"},
        {"name": "Admin T-shirt Orders", "description": "Payment review and statement reconciliation"},
        {"name": "Print Batches", "description": "Participant ID card rendering"},
        {"name": "Authentication", "description": "Back-office login"}
    ],
    "paths": {
        "/registrations": {
            "post": {
                "tags": ["Registrations"],
                "summary": "Submit registration",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegistrationForm"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Registration closed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/registrations/validate": {
            "post": {
                "tags": ["Registrations"],
                "summary": "Validate one form step",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/registrations/{id}": {
            "get": {
                "tags": ["Registrations"],
                "summary": "Registration confirmation",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/editions/active": {
            "get": {
                "tags": ["Editions"],
                "summary": "Get active edition",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "No active edition", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tshirt-orders/lookup": {
            "post": {
                "tags": ["T-shirt Orders"],
                "summary": "Find registration by phone",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tshirt-orders": {
            "post": {
                "tags": ["T-shirt Orders"],
                "summary": "Place T-shirt order",
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate admin",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/registrations": {
            "get": {
                "tags": ["Admin Registrations"],
                "summary": "List registrations",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "edition", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "grade", "in": "query", "type": "string"},
                    {"name": "church", "in": "query", "type": "string"},
                    {"name": "location", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/admin/registrations/{id}/status": {
            "patch": {
                "tags": ["Admin Registrations"],
                "summary": "Change registration status",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/admin/registrations/stats": {
            "get": {
                "tags": ["Admin Registrations"],
                "summary": "Dashboard counters",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/admin/registrations/export": {
            "get": {
                "tags": ["Admin Registrations"],
                "summary": "Export registrations as CSV",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv"],
                "responses": {"200": {"description": "CSV file"}}
            }
        },
        "/admin/editions": {
            "get": {
                "tags": ["Editions"],
                "summary": "List editions",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Editions"],
                "summary": "Create edition",
                "security": [{"BearerAuth": []}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/admin/editions/{id}": {
            "put": {
                "tags": ["Editions"],
                "summary": "Update edition",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Editions"],
                "summary": "Delete edition",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "cascade", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "Deleted with registrations"},
                    "204": {"description": "Deleted"},
                    "409": {"description": "Edition has registrations", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/editions/{id}/activate": {
            "post": {
                "tags": ["Editions"],
                "summary": "Activate edition",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/admin/editions/{id}/deactivate": {
            "post": {
                "tags": ["Editions"],
                "summary": "Deactivate edition",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/admin/tshirt-orders": {
            "get": {
                "tags": ["Admin T-shirt Orders"],
                "summary": "List T-shirt orders",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "edition", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/admin/tshirt-orders/{id}/verify": {
            "post": {
                "tags": ["Admin T-shirt Orders"],
                "summary": "Verify a pending order",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Order not pending"}}
            }
        },
        "/admin/tshirt-orders/{id}/cancel": {
            "post": {
                "tags": ["Admin T-shirt Orders"],
                "summary": "Cancel a pending order",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Order not pending"}}
            }
        },
        "/admin/tshirt-orders/reconcile": {
            "post": {
                "tags": ["Admin T-shirt Orders"],
                "summary": "Reconcile payment statement",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [{"name": "file", "in": "formData", "required": true, "type": "file"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid CSV format"},
                    "413": {"description": "File too large"}
                }
            }
        },
        "/admin/tshirt-orders/export": {
            "get": {
                "tags": ["Admin T-shirt Orders"],
                "summary": "Export verified orders as CSV",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv"],
                "responses": {"200": {"description": "CSV file"}}
            }
        },
        "/admin/print-batches": {
            "post": {
                "tags": ["Print Batches"],
                "summary": "Queue ID card batch",
                "security": [{"BearerAuth": []}],
                "responses": {"202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/admin/print-batches/{id}": {
            "get": {
                "tags": ["Print Batches"],
                "summary": "Print batch status",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/print-batches/download/{token}": {
            "get": {
                "tags": ["Print Batches"],
                "summary": "Download rendered ID cards",
                "produces": ["application/pdf"],
                "parameters": [{"name": "token", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "PDF file"}, "403": {"description": "Invalid or expired link"}}
            }
        }
    },
    "definitions": {
        "RegistrationForm": {
            "type": "object",
            "properties": {
                "first_name": {"type": "string"},
                "fathers_name": {"type": "string"},
                "phone": {"type": "string"},
                "age": {"type": "string"},
                "grade": {"type": "string", "enum": ["grade-7", "grade-8", "grade-9", "grade-10", "grade-11", "grade-12"]},
                "gender": {"type": "string", "enum": ["male", "female"]},
                "church": {"type": "string"},
                "participant_location": {"type": "string", "enum": ["Hawassa", "Addis Ababa"]}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
