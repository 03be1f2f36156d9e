package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "School Finance API",
        "description": "Fee derivation, finance reporting and payroll for school administrations.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Admissions", "description": "Applicant enrollment with derived fees"},
        {"name": "Finance", "description": "Summary, debt aging and class performance reports"},
        {"name": "Payroll", "description": "Payslip generation and PAYE settings"}
    ],
    "paths": {
        "/schools/{schoolId}/applicants/{applicantId}/enroll": {
            "post": {
                "tags": ["Admissions"],
                "summary": "Enroll an applicant as a student",
                "parameters": [
                    {"name": "schoolId", "in": "path", "required": true, "type": "string"},
                    {"name": "applicantId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Applicant already enrolled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "500": {"description": "Student created but applicant not updated (ENROLLMENT_PARTIAL)", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schools/{schoolId}/finance/summary": {
            "get": {
                "tags": ["Finance"],
                "summary": "Financial summary for a time window",
                "parameters": [
                    {"name": "schoolId", "in": "path", "required": true, "type": "string"},
                    {"name": "start", "in": "query", "required": true, "type": "string", "description": "RFC3339 or YYYY-MM-DD"},
                    {"name": "end", "in": "query", "required": true, "type": "string", "description": "RFC3339 or YYYY-MM-DD; a date covers the whole day"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schools/{schoolId}/finance/aging": {
            "get": {
                "tags": ["Finance"],
                "summary": "Outstanding debt bucketed by days overdue",
                "parameters": [
                    {"name": "schoolId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schools/{schoolId}/finance/class-performance": {
            "get": {
                "tags": ["Finance"],
                "summary": "Fees billed and outstanding per class",
                "parameters": [
                    {"name": "schoolId", "in": "path", "required": true, "type": "string"},
                    {"name": "session", "in": "query", "type": "string"},
                    {"name": "term", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schools/{schoolId}/finance/exports": {
            "post": {
                "tags": ["Finance"],
                "summary": "Render a finance report to CSV or PDF",
                "parameters": [
                    {"name": "schoolId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/finance/exports/{token}": {
            "get": {
                "tags": ["Finance"],
                "summary": "Download a rendered export via signed token",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "403": {"description": "Invalid token"},
                    "410": {"description": "Link expired"}
                }
            }
        },
        "/schools/{schoolId}/payroll/members/{memberId}/payslips": {
            "post": {
                "tags": ["Payroll"],
                "summary": "Generate the payslip of one team member",
                "parameters": [
                    {"name": "schoolId", "in": "path", "required": true, "type": "string"},
                    {"name": "memberId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PayslipRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "200": {"description": "Skipped, created=false", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schools/{schoolId}/payroll/runs": {
            "post": {
                "tags": ["Payroll"],
                "summary": "Generate payslips for every team member",
                "parameters": [
                    {"name": "schoolId", "in": "path", "required": true, "type": "string"},
                    {"name": "mode", "in": "query", "type": "string", "enum": ["sync"]},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PayslipRequest"}}
                ],
                "responses": {
                    "202": {"description": "Queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "200": {"description": "Completed (mode=sync)", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schools/{schoolId}/payroll/settings": {
            "get": {
                "tags": ["Payroll"],
                "summary": "Get payroll settings",
                "parameters": [
                    {"name": "schoolId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Payroll"],
                "summary": "Replace pension rate and PAYE brackets",
                "parameters": [
                    {"name": "schoolId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PayrollSettingsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "ExportRequest": {
            "type": "object",
            "properties": {
                "report": {"type": "string", "enum": ["summary", "aging", "class-performance"]},
                "format": {"type": "string", "enum": ["csv", "pdf"]},
                "start": {"type": "string"},
                "end": {"type": "string"},
                "session": {"type": "string"},
                "term": {"type": "string"}
            },
            "required": ["report", "format"]
        },
        "PayslipRequest": {
            "type": "object",
            "properties": {
                "year": {"type": "integer"},
                "month": {"type": "integer", "minimum": 1, "maximum": 12}
            },
            "required": ["year", "month"]
        },
        "PayeBracketInput": {
            "type": "object",
            "properties": {
                "up_to": {"type": "string"},
                "rate": {"type": "string"}
            },
            "required": ["up_to", "rate"]
        },
        "PayrollSettingsRequest": {
            "type": "object",
            "properties": {
                "employee_pension_rate": {"type": "string"},
                "paye_brackets": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/PayeBracketInput"}
                }
            },
            "required": ["employee_pension_rate"]
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "details": {"type": "object", "additionalProperties": {"type": "string"}}
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
