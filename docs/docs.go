// Package docs holds the OpenAPI description served at /swagger.
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
        "/analyze": {
            "post": {
                "description": "Upload a PDF or TXT file and run either a financial statement extraction or an earnings call analysis",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["analysis"],
                "summary": "Analyze a financial document",
                "parameters": [
                    {"type": "file", "description": "PDF or TXT document (field may also be named document)", "name": "file", "in": "formData", "required": true},
                    {"enum": ["financial", "earnings"], "type": "string", "default": "earnings", "description": "financial or earnings", "name": "analysisType", "in": "formData"},
                    {"type": "string", "description": "Session id returned by a previous call", "name": "X-Session-ID", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "Analysis completed", "schema": {"$ref": "#/definitions/handler.AnalyzeResponse"}},
                    "202": {"description": "Text could not be extracted; manual review required", "schema": {"$ref": "#/definitions/handler.NeedsReviewResponse"}},
                    "400": {"description": "Missing boundary, missing file, unsupported type or too little text", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "413": {"description": "Body too large", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "500": {"description": "Unexpected failure", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/download-excel": {
            "get": {
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "tags": ["export"],
                "summary": "Download the last financial analysis as xlsx",
                "parameters": [{"type": "string", "description": "Session id", "name": "X-Session-ID", "in": "header"}],
                "responses": {
                    "200": {"description": "financial-analysis.xlsx", "schema": {"type": "file"}},
                    "404": {"description": "No financial analysis in this session", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "500": {"description": "Workbook generation failed", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/download-csv": {
            "get": {
                "produces": ["text/csv"],
                "tags": ["export"],
                "summary": "Download the last financial analysis as CSV",
                "parameters": [{"type": "string", "description": "Session id", "name": "X-Session-ID", "in": "header"}],
                "responses": {
                    "200": {"description": "Line items, one row per entry", "schema": {"type": "file"}},
                    "404": {"description": "No financial analysis in this session", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/download-ocr": {
            "get": {
                "description": "Returns the text report written for the session's most recent PDF extraction",
                "produces": ["text/plain"],
                "tags": ["export"],
                "summary": "Download the last extraction report",
                "parameters": [{"type": "string", "description": "Session id", "name": "X-Session-ID", "in": "header"}],
                "responses": {
                    "200": {"description": "Extraction report", "schema": {"type": "file"}},
                    "404": {"description": "No extraction file in this session", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/healthz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}}
            }
        },
        "/readyz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.ReadinessResponse"}}}
            }
        }
    },
    "definitions": {
        "handler.AnalyzeResponse": {
            "type": "object",
            "properties": {
                "analysis": {},
                "analysisType": {"type": "string", "example": "financial"},
                "filename": {"type": "string", "example": "q4-results.pdf"},
                "method": {"type": "string", "example": "primary-parser"},
                "ocrAvailable": {"type": "boolean", "example": true},
                "ocrFile": {"type": "string", "example": "q4-results_primary-parser_1715678400000.txt"},
                "provider": {"type": "string", "example": "groq"},
                "sessionId": {"type": "string", "example": "3f5e9c1a-6a0b-4c1e-9d8e-2b7f4a1c0d9e"},
                "source": {"type": "string", "example": "model"},
                "success": {"type": "boolean", "example": true}
            }
        },
        "handler.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "error": {"type": "string"},
                "success": {"type": "boolean"}
            }
        },
        "handler.NeedsReviewResponse": {
            "type": "object",
            "properties": {
                "filename": {"type": "string", "example": "scan.pdf"},
                "message": {"type": "string", "example": "PDF extraction needs review"},
                "needsOcr": {"type": "boolean", "example": true},
                "ocrFile": {"type": "string", "example": "scan_failed_1715678400000.txt"},
                "success": {"type": "boolean", "example": false}
            }
        },
        "handler.ReadinessResponse": {
            "type": "object",
            "properties": {
                "degraded": {"type": "boolean"},
                "ocr_available": {"type": "boolean"},
                "providers": {"type": "array", "items": {"type": "string"}},
                "status": {"type": "string", "example": "ok"}
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
	Title:            "finlens API",
	Description:      "Financial document analysis: text extraction, statement tables, model-backed structured analysis and spreadsheet export.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
