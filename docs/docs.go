// Package docs registers the Swagger document served at /swagger/. Keep it
// in step with the handler annotations in internal/api.
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health check",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "object", "additionalProperties": {"type": "string"}}
                    }
                }
            }
        },
        "/sessions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Newest first, with answered count and average score.",
                "produces": ["application/json"],
                "tags": ["Sessions"],
                "summary": "List sessions",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/api.SessionListItem"}}
                    },
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Creates a session and generates question 1. num_questions defaults to the server setting.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Sessions"],
                "summary": "Start an interview session",
                "parameters": [
                    {
                        "description": "Session to start",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/api.StartSessionRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/api.StartSessionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "502": {"description": "question generation failed", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/sessions/{sessionID}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Sessions"],
                "summary": "Get a session",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "sessionID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.SessionResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/sessions/{sessionID}/answers": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Send {\"answer\": \"...\"} as JSON, or multipart/form-data with an \"audio\" file.\nThe answer is stored before grading; if the next question cannot be generated, call resume.",
                "consumes": ["application/json", "multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Sessions"],
                "summary": "Answer the current question",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "sessionID", "in": "path", "required": true},
                    {
                        "description": "Text answer",
                        "name": "body",
                        "in": "body",
                        "schema": {"$ref": "#/definitions/api.SubmitAnswerRequest"}
                    },
                    {"type": "file", "description": "Recorded answer", "name": "audio", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.RoundResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "409": {"description": "session done, no open turn or duplicate submission", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "502": {"description": "transcription or question generation failed", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/sessions/{sessionID}/resume": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Grades a stored but ungraded answer and generates the next question. An open turn is returned unchanged.",
                "produces": ["application/json"],
                "tags": ["Sessions"],
                "summary": "Resume a session",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "sessionID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.RoundResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "409": {"description": "session done", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/sessions/{sessionID}/summary": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "coaching_report is empty while the session is in progress. A coaching failure sets coaching_error.",
                "produces": ["application/json"],
                "tags": ["Sessions"],
                "summary": "Get the session summary",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "sessionID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.SummaryResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "api.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "turn already answered"},
                "kind": {"type": "string", "example": "state"}
            }
        },
        "api.EvaluationResponse": {
            "type": "object",
            "properties": {
                "feedback": {"type": "string", "example": "Good use of STAR."},
                "score": {"type": "integer", "example": 4},
                "turn_index": {"type": "integer", "example": 1}
            }
        },
        "api.RoundResponse": {
            "type": "object",
            "properties": {
                "degraded": {"type": "boolean", "example": false},
                "done": {"type": "boolean", "example": false},
                "feedback": {"type": "string", "example": "Good use of STAR."},
                "next_question": {"type": "string", "example": "How did you measure the outcome?"},
                "score": {"type": "integer", "example": 4},
                "session_id": {"type": "string", "example": "5f0c6a52-8a43-4c9e-9d2b-7a3e51f6f0aa"},
                "transcript": {"type": "array", "items": {"type": "string"}},
                "turn_index": {"type": "integer", "example": 1}
            }
        },
        "api.SessionListItem": {
            "type": "object",
            "properties": {
                "answered": {"type": "integer", "example": 5},
                "average_score": {"type": "number", "example": 3.8},
                "completed_at": {"type": "string"},
                "created_at": {"type": "string"},
                "id": {"type": "string", "example": "5f0c6a52-8a43-4c9e-9d2b-7a3e51f6f0aa"},
                "mode": {"type": "string", "example": "technical"},
                "num_questions": {"type": "integer", "example": 5},
                "status": {"type": "string", "example": "done"}
            }
        },
        "api.SessionResponse": {
            "type": "object",
            "properties": {
                "completed_at": {"type": "string"},
                "created_at": {"type": "string"},
                "id": {"type": "string", "example": "5f0c6a52-8a43-4c9e-9d2b-7a3e51f6f0aa"},
                "mode": {"type": "string", "example": "technical"},
                "num_questions": {"type": "integer", "example": 5},
                "status": {"type": "string", "example": "in_progress"},
                "transcript": {"type": "array", "items": {"type": "string"}},
                "turns": {"type": "array", "items": {"$ref": "#/definitions/api.TurnResponse"}}
            }
        },
        "api.StartSessionRequest": {
            "type": "object",
            "properties": {
                "mode": {"type": "string", "example": "behavioral"},
                "num_questions": {"type": "integer", "example": 5}
            }
        },
        "api.StartSessionResponse": {
            "type": "object",
            "properties": {
                "mode": {"type": "string", "example": "behavioral"},
                "num_questions": {"type": "integer", "example": 5},
                "question": {"type": "string", "example": "Tell me about a time you disagreed with a teammate."},
                "session_id": {"type": "string", "example": "5f0c6a52-8a43-4c9e-9d2b-7a3e51f6f0aa"},
                "transcript": {"type": "array", "items": {"type": "string"}}
            }
        },
        "api.SubmitAnswerRequest": {
            "type": "object",
            "properties": {
                "answer": {"type": "string", "example": "In my last role I..."}
            }
        },
        "api.SummaryResponse": {
            "type": "object",
            "properties": {
                "answers": {"type": "array", "items": {"type": "string"}},
                "coaching_error": {"type": "string"},
                "coaching_report": {"type": "string"},
                "evaluations": {"type": "array", "items": {"$ref": "#/definitions/api.EvaluationResponse"}},
                "questions": {"type": "array", "items": {"type": "string"}},
                "session_id": {"type": "string", "example": "5f0c6a52-8a43-4c9e-9d2b-7a3e51f6f0aa"},
                "status": {"type": "string", "example": "done"}
            }
        },
        "api.TurnResponse": {
            "type": "object",
            "properties": {
                "answer": {"type": "string"},
                "feedback": {"type": "string"},
                "index": {"type": "integer", "example": 1},
                "question": {"type": "string", "example": "What is a goroutine?"},
                "score": {"type": "integer", "example": 4}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the JWT.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Interview Coach API",
	Description:      "Multi-round mock interviews: questions, per-answer grading and an end-of-session coaching report.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
