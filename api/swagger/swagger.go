package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Skolaris Timetable API",
        "description": "Timetable generation and version management for school plans",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Timetables", "description": "Timetable generation, versions and entries"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "A dependency is unavailable"}
                }
            }
        },
        "/plans/{id}/timetable/generate": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Generate a timetable version for a plan",
                "description": "Runs one placement pass over the plan's classes and subject quotas. On success a new non-current version is recorded and the plan is marked GENERATED.",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/GenerateTimetableRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Plan not found"}
                }
            }
        },
        "/plans/{id}/timetable/versions": {
            "get": {
                "tags": ["Timetables"],
                "summary": "List timetable versions for a plan",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/versions/{id}/entries": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Get entries for a timetable version",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Version not found"}
                }
            }
        },
        "/timetable/versions/{id}/current": {
            "put": {
                "tags": ["Timetables"],
                "summary": "Promote a timetable version to current",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Version not found"}
                }
            }
        }
    },
    "definitions": {
        "GenerateTimetableRequest": {
            "type": "object",
            "properties": {
                "maxTeacherLessonsPerDay": {"type": "integer", "description": "Per-teacher daily lesson ceiling; 0 uses the server default"}
            }
        },
        "GenerationResult": {
            "type": "object",
            "properties": {
                "version_id": {"type": "string"},
                "placed_count": {"type": "integer"},
                "unplaced": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/UnplacedSubject"}
                },
                "detail": {"type": "string"}
            }
        },
        "UnplacedSubject": {
            "type": "object",
            "properties": {
                "class_id": {"type": "string"},
                "subject_id": {"type": "string"},
                "remaining": {"type": "integer"}
            }
        },
        "TimetableVersion": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "plan_id": {"type": "string"},
                "label": {"type": "string"},
                "is_current": {"type": "boolean"},
                "created_at": {"type": "string"}
            }
        },
        "TimetableEntry": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "version_id": {"type": "string"},
                "class_id": {"type": "string"},
                "subject_id": {"type": "string"},
                "teacher_id": {"type": "string"},
                "room_id": {"type": "string"},
                "day_of_week": {"type": "integer"},
                "slot_index": {"type": "integer"}
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
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
