package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SMA Rapor API",
        "description": "Report card generation, locking and end-of-term promotion",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {
            "name": "ReportCards",
            "description": "Generation, editing, locking and printing of report cards"
        },
        {
            "name": "Promotions",
            "description": "End-of-term placement"
        },
        {
            "name": "Attendance",
            "description": "Attendance summaries"
        },
        {
            "name": "Terms",
            "description": "Term resolution"
        }
    ],
    "paths": {
        "/report-cards/generate": {
            "post": {
                "tags": [
                    "ReportCards"
                ],
                "summary": "Generate report cards for a class group in a term",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/GenerateReportCardsRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Class group or term not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Locked report cards or generation already running",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/report-cards": {
            "get": {
                "tags": [
                    "ReportCards"
                ],
                "summary": "List report cards of a class ordered by rank",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "class_group_id",
                        "in": "query",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "term_id",
                        "in": "query",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/report-cards/{id}": {
            "get": {
                "tags": [
                    "ReportCards"
                ],
                "summary": "Get report card",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "patch": {
                "tags": [
                    "ReportCards"
                ],
                "summary": "Edit a draft report card",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/UpdateReportCardRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Report card locked",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/report-cards/{id}/toggle-lock": {
            "post": {
                "tags": [
                    "ReportCards"
                ],
                "summary": "Toggle report card lock",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/report-cards/{id}/lock": {
            "post": {
                "tags": [
                    "ReportCards"
                ],
                "summary": "Lock report card",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/report-cards/{id}/unlock": {
            "post": {
                "tags": [
                    "ReportCards"
                ],
                "summary": "Unlock report card",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/report-cards/{id}/export": {
            "get": {
                "tags": [
                    "ReportCards"
                ],
                "summary": "Print report card",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "format",
                        "in": "query",
                        "type": "string",
                        "enum": [
                            "pdf",
                            "csv"
                        ]
                    }
                ],
                "produces": [
                    "application/pdf",
                    "text/csv"
                ],
                "responses": {
                    "200": {
                        "description": "Rendered document",
                        "schema": {
                            "type": "file"
                        }
                    }
                }
            }
        },
        "/promotions/process": {
            "post": {
                "tags": [
                    "Promotions"
                ],
                "summary": "Record promotion decisions",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ProcessPromotionsRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/promotions/bulk": {
            "post": {
                "tags": [
                    "Promotions"
                ],
                "summary": "Apply one decision to every unprocessed student of a class",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/BulkPromoteRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/promotions": {
            "get": {
                "tags": [
                    "Promotions"
                ],
                "summary": "List promotion decisions of a class",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "class_group_id",
                        "in": "query",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/attendance/summary": {
            "get": {
                "tags": [
                    "Attendance"
                ],
                "summary": "Attendance summary of a student within a term",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "student_id",
                        "in": "query",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "term_id",
                        "in": "query",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/terms/active": {
            "get": {
                "tags": [
                    "Terms"
                ],
                "summary": "Get the active term",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/terms/{id}": {
            "get": {
                "tags": [
                    "Terms"
                ],
                "summary": "Get term",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/terms/{id}/next": {
            "get": {
                "tags": [
                    "Terms"
                ],
                "summary": "Get the term following a term",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "GenerateReportCardsRequest": {
            "type": "object",
            "required": [
                "class_group_id",
                "term_id"
            ],
            "properties": {
                "class_group_id": {
                    "type": "string"
                },
                "term_id": {
                    "type": "string"
                }
            }
        },
        "SubjectEditRequest": {
            "type": "object",
            "required": [
                "subject_id"
            ],
            "properties": {
                "subject_id": {
                    "type": "string"
                },
                "knowledge_score": {
                    "type": "number"
                },
                "knowledge_grade": {
                    "type": "string",
                    "enum": [
                        "A",
                        "B",
                        "C",
                        "D",
                        "E"
                    ]
                },
                "skill_score": {
                    "type": "number"
                },
                "skill_grade": {
                    "type": "string",
                    "enum": [
                        "A",
                        "B",
                        "C",
                        "D",
                        "E"
                    ]
                },
                "remark": {
                    "type": "string"
                }
            }
        },
        "UpdateReportCardRequest": {
            "type": "object",
            "properties": {
                "subjects": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/SubjectEditRequest"
                    }
                },
                "promotion_status": {
                    "type": "string",
                    "enum": [
                        "promoted",
                        "retained",
                        "graduated",
                        "transferred"
                    ]
                },
                "homeroom_note": {
                    "type": "string"
                }
            }
        },
        "PromotionDecision": {
            "type": "object",
            "required": [
                "enrollment_id",
                "status"
            ],
            "properties": {
                "enrollment_id": {
                    "type": "string"
                },
                "status": {
                    "type": "string",
                    "enum": [
                        "promoted",
                        "retained",
                        "graduated",
                        "transferred"
                    ]
                },
                "target_class_group_id": {
                    "type": "string"
                },
                "note": {
                    "type": "string"
                }
            }
        },
        "ProcessPromotionsRequest": {
            "type": "object",
            "required": [
                "class_group_id",
                "decisions"
            ],
            "properties": {
                "class_group_id": {
                    "type": "string"
                },
                "decisions": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/PromotionDecision"
                    }
                }
            }
        },
        "BulkPromoteRequest": {
            "type": "object",
            "required": [
                "class_group_id",
                "status"
            ],
            "properties": {
                "class_group_id": {
                    "type": "string"
                },
                "status": {
                    "type": "string",
                    "enum": [
                        "promoted",
                        "retained",
                        "graduated",
                        "transferred"
                    ]
                },
                "target_class_group_id": {
                    "type": "string"
                }
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "meta": {
                    "type": "object"
                }
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
