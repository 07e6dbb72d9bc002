// Package docs registers the OpenAPI description served under /swagger.
// Regenerate with: swag init -g internal/api/server/server.go
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
        "/transcribe-from-file": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["transcriptions"],
                "summary": "Transcribe an uploaded media file",
                "parameters": [
                    {"type": "file", "name": "file", "in": "formData", "required": true},
                    {"type": "string", "name": "apiKey", "in": "formData"},
                    {"type": "string", "name": "language", "in": "formData"},
                    {"type": "string", "name": "provider", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.JobResponse"}},
                    "415": {"description": "Unsupported media", "schema": {"$ref": "#/definitions/errors.APIError"}}
                }
            }
        },
        "/transcribe-from-url": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["transcriptions"],
                "summary": "Transcribe media behind a URL",
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.TranscribeURLRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.JobResponse"}},
                    "422": {"description": "Media could not be resolved", "schema": {"$ref": "#/definitions/errors.APIError"}}
                }
            }
        },
        "/job-status/{job_id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["transcriptions"],
                "summary": "Probe an asynchronous job",
                "parameters": [
                    {"type": "string", "name": "job_id", "in": "path", "required": true},
                    {"type": "string", "name": "apiKey", "in": "query"},
                    {"type": "string", "name": "provider", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.JobResponse"}},
                    "404": {"description": "Unknown job", "schema": {"$ref": "#/definitions/errors.APIError"}}
                }
            }
        },
        "/translate": {
            "post": {
                "consumes": ["application/json", "multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["translation"],
                "summary": "Translate captions",
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.TranslateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.TranslateResponse"}},
                    "502": {"description": "Model output changed the caption structure", "schema": {"$ref": "#/definitions/errors.APIError"}}
                }
            }
        },
        "/export": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/x-subrip"],
                "tags": ["export"],
                "summary": "Download captions as a subtitle file",
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.ExportRequest"}}
                ],
                "responses": {"200": {"description": "Subtitle attachment", "schema": {"type": "file"}}}
            }
        },
        "/api/v1/providers": {
            "get": {
                "produces": ["application/json"],
                "tags": ["providers"],
                "summary": "List all available providers",
                "responses": {"200": {"description": "List of providers", "schema": {"type": "object"}}}
            }
        }
    },
    "definitions": {
        "caption.Cue": {
            "type": "object",
            "properties": {
                "index": {"type": "integer"},
                "startMs": {"type": "integer"},
                "endMs": {"type": "integer"},
                "text": {"type": "string"}
            }
        },
        "dto.JobResponse": {
            "type": "object",
            "properties": {
                "job_id": {"type": "string"},
                "provider": {"type": "string"},
                "status": {"type": "string", "enum": ["running", "done", "error"]},
                "title": {"type": "string"},
                "captions": {"type": "array", "items": {"$ref": "#/definitions/caption.Cue"}},
                "error": {"type": "string"}
            }
        },
        "dto.TranscribeURLRequest": {
            "type": "object",
            "required": ["url"],
            "properties": {
                "url": {"type": "string"},
                "apiKey": {"type": "string"},
                "language": {"type": "string"},
                "provider": {"type": "string"}
            }
        },
        "dto.TranslateRequest": {
            "type": "object",
            "required": ["targetLanguage"],
            "properties": {
                "captions": {"type": "array", "items": {"$ref": "#/definitions/caption.Cue"}},
                "srt": {"type": "string"},
                "targetLanguage": {"type": "string"},
                "geminiApiKey": {"type": "string"},
                "style": {"type": "string"}
            }
        },
        "dto.TranslateResponse": {
            "type": "object",
            "properties": {
                "translated_captions": {"type": "array", "items": {"$ref": "#/definitions/caption.Cue"}},
                "provider": {"type": "string"}
            }
        },
        "dto.ExportRequest": {
            "type": "object",
            "properties": {
                "captions": {"type": "array", "items": {"$ref": "#/definitions/caption.Cue"}},
                "srt": {"type": "string"},
                "title": {"type": "string"},
                "format": {"type": "string", "enum": ["srt", "xlsx"]}
            }
        },
        "errors.APIError": {
            "type": "object",
            "properties": {
                "kind": {"type": "string"},
                "error": {"type": "string"},
                "details": {"type": "object", "additionalProperties": {"type": "string"}},
                "request_id": {"type": "string"},
                "code": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.0.1",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "captionflow API",
	Description:      "Turns media into translated, time-aligned captions.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
