// Package docs содержит OpenAPI описание HTTP API для Swagger UI.
// Обновляется командой swag init по аннотациям обработчиков.
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
        "/api/interview/generate": {
            "post": {
                "description": "Returns questions for the role and tech stack. Never fails: a malformed request or a generation error yields the fallback list.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["interview"],
                "summary": "Generate interview questions",
                "parameters": [
                    {
                        "description": "Interview parameters",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/interviewer.GenerateRequest"}
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/interviewer.GenerateResponse"}
                    }
                }
            }
        },
        "/api/interview/save": {
            "post": {
                "description": "Evaluates the transcript, stores the interview and its feedback.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["interview"],
                "summary": "Save interview",
                "parameters": [
                    {
                        "description": "Finished interview",
                        "name": "submission",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/domain.Submission"}
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/feedback.SaveResult"}
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {"$ref": "#/definitions/server.ErrorResponse"}
                    }
                }
            }
        },
        "/api/interview/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["interview"],
                "summary": "Get interview",
                "parameters": [
                    {"type": "string", "description": "Interview ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/storage.InterviewRecord"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/api/interview/{id}/feedback": {
            "get": {
                "description": "Returns 202 while the feedback is not ready yet.",
                "produces": ["application/json"],
                "tags": ["feedback"],
                "summary": "Get interview feedback",
                "parameters": [
                    {"type": "string", "description": "Interview ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/storage.FeedbackRecord"}},
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/server.StatusResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/api/interviews": {
            "get": {
                "description": "Newest first. Without userId returns interviews of all users.",
                "produces": ["application/json"],
                "tags": ["interview"],
                "summary": "List interviews",
                "parameters": [
                    {"type": "string", "description": "User ID", "name": "userId", "in": "query"}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/storage.InterviewRecord"}}
                    },
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/api/metrics": {
            "get": {
                "produces": ["application/json"],
                "tags": ["metrics"],
                "summary": "Application metrics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/metrics.Snapshot"}}
                }
            }
        }
    },
    "definitions": {
        "domain.Turn": {
            "type": "object",
            "properties": {
                "question": {"type": "string"},
                "answer": {"type": "string"}
            }
        },
        "domain.Submission": {
            "type": "object",
            "properties": {
                "userId": {"type": "string"},
                "role": {"type": "string"},
                "techStack": {"type": "string"},
                "transcript": {"type": "array", "items": {"$ref": "#/definitions/domain.Turn"}},
                "duration": {"type": "integer"}
            }
        },
        "domain.QuestionAssessment": {
            "type": "object",
            "properties": {
                "question": {"type": "string"},
                "userAnswer": {"type": "string"},
                "score": {"type": "integer"},
                "feedback": {"type": "string"},
                "idealAnswer": {"type": "string"}
            }
        },
        "feedback.SaveResult": {
            "type": "object",
            "properties": {
                "interviewId": {"type": "string"},
                "feedbackId": {"type": "string"}
            }
        },
        "interviewer.GenerateRequest": {
            "type": "object",
            "properties": {
                "role": {"type": "string"},
                "techStack": {"type": "string"},
                "count": {"type": "integer"}
            }
        },
        "interviewer.GenerateResponse": {
            "type": "object",
            "properties": {
                "questions": {"type": "array", "items": {"type": "string"}}
            }
        },
        "metrics.Snapshot": {
            "type": "object",
            "properties": {
                "setupsCompleted": {"type": "integer"},
                "interviewsStarted": {"type": "integer"},
                "interviewsCompleted": {"type": "integer"},
                "questionsAsked": {"type": "integer"},
                "fallbacksUsed": {"type": "integer"},
                "feedbackGenerated": {"type": "integer"},
                "apiCallsTotal": {"type": "integer"},
                "apiCallsSuccessful": {"type": "integer"},
                "lastUpdateTime": {"type": "string"}
            }
        },
        "server.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        },
        "server.StatusResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"}
            }
        },
        "storage.InterviewRecord": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "userId": {"type": "string"},
                "role": {"type": "string"},
                "techStack": {"type": "string"},
                "transcript": {"type": "array", "items": {"$ref": "#/definitions/domain.Turn"}},
                "createdAt": {"type": "string"},
                "duration": {"type": "integer"}
            }
        },
        "storage.FeedbackRecord": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "interviewId": {"type": "string"},
                "createdAt": {"type": "string"},
                "totalScore": {"type": "integer"},
                "strengths": {"type": "array", "items": {"type": "string"}},
                "weaknesses": {"type": "array", "items": {"type": "string"}},
                "feedback": {"type": "string"},
                "questions": {"type": "array", "items": {"$ref": "#/definitions/domain.QuestionAssessment"}}
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
	Title:            "Mock Interview API",
	Description:      "Voice mock interviews: question generation, interview storage and AI feedback.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
