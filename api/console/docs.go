// Package console holds the generated Swagger documentation for the admin
// console API. Regenerate with `swag init` after changing handler
// annotations.
package console

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "ChatForge Team",
            "url": "https://github.com/chatforge/console"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/livez": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health Check Endpoint",
                "responses": {
                    "200": {"description": "status, uptime, version"}
                }
            }
        },
        "/readyz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness Check Endpoint",
                "responses": {
                    "200": {"description": "status, uptime, version, checks"},
                    "503": {"description": "service not ready"}
                }
            }
        },
        "/v1/session": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Session"],
                "summary": "Current Session Endpoint",
                "responses": {
                    "200": {"description": "user_id, email, role, client_id, expires_at"},
                    "401": {"description": "error, error_description"}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Session"],
                "summary": "Sign In Endpoint",
                "responses": {
                    "200": {"description": "token, role, expires_at, redirect_to"},
                    "401": {"description": "error, error_description"}
                }
            },
            "delete": {
                "tags": ["Session"],
                "summary": "Sign Out Endpoint",
                "responses": {
                    "204": {"description": "no content"}
                }
            }
        },
        "/v1/session/password": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "tags": ["Session"],
                "summary": "Change Password Endpoint",
                "responses": {
                    "204": {"description": "no content"},
                    "401": {"description": "error, error_description"}
                }
            }
        },
        "/v1/setup": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Setup"],
                "summary": "Verify Setup Token Endpoint",
                "parameters": [
                    {"type": "string", "name": "token", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "email, client_id"},
                    "404": {"description": "error, error_description"}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Setup"],
                "summary": "Redeem Setup Token Endpoint",
                "responses": {
                    "200": {"description": "token, role, expires_at, redirect_to"},
                    "404": {"description": "error, error_description"},
                    "409": {"description": "email already has an account"}
                }
            }
        },
        "/v1/recover": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Recovery"],
                "summary": "Recover Client Endpoint",
                "responses": {
                    "200": {"description": "the restored client"},
                    "404": {"description": "error, error_description"}
                }
            }
        },
        "/v1/clients": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Clients"],
                "summary": "List Clients Endpoint",
                "responses": {
                    "200": {"description": "clients"}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Clients"],
                "summary": "Create Client Endpoint",
                "responses": {
                    "201": {"description": "the created client"},
                    "400": {"description": "error, error_description"}
                }
            }
        },
        "/v1/clients/count": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Clients"],
                "summary": "Active Client Count Endpoint",
                "responses": {
                    "200": {"description": "active_clients"}
                }
            }
        },
        "/v1/clients/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Clients"],
                "summary": "Get Client Endpoint",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "the client"},
                    "404": {"description": "error, error_description"}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Clients"],
                "summary": "Update Client Endpoint",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "the updated client"},
                    "409": {"description": "client scheduled for deletion"}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Clients"],
                "summary": "Schedule Client Deletion Endpoint",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "the client with its deletion schedule"}
                }
            }
        },
        "/v1/clients/{id}/widget": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Widget"],
                "summary": "Get Widget Configuration Endpoint",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "the widget configuration"}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Widget"],
                "summary": "Update Widget Configuration Endpoint",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "the stored configuration"},
                    "400": {"description": "error, error_description"}
                }
            }
        },
        "/v1/clients/{id}/widget/logo": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Widget"],
                "summary": "Upload Widget Logo Endpoint",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "logo_url"},
                    "415": {"description": "unsupported content type"}
                }
            }
        },
        "/v1/clients/{id}/widget/embed": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Widget"],
                "summary": "Widget Embed Snippet Endpoint",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "snippet"}
                }
            }
        },
        "/v1/clients/{id}/sources": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Sources"],
                "summary": "List Content Sources Endpoint",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "sources"}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Sources"],
                "summary": "Add Content Source Endpoint",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "201": {"description": "the created source"},
                    "400": {"description": "error, error_description"}
                }
            }
        },
        "/v1/clients/{id}/sources/{source_id}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Sources"],
                "summary": "Remove Content Source Endpoint",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "source_id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "no content"},
                    "404": {"description": "error, error_description"}
                }
            }
        },
        "/v1/clients/{id}/stats": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Stats"],
                "summary": "Usage Statistics Endpoint",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "the metrics"}
                }
            }
        },
        "/v1/clients/{id}/activities": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Activities"],
                "summary": "Activity Log Endpoint",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "activities"}
                }
            }
        },
        "/v1/widget/interactions": {
            "post": {
                "consumes": ["application/json"],
                "tags": ["Stats"],
                "summary": "Interaction Ingest Endpoint",
                "responses": {
                    "202": {"description": "accepted"},
                    "404": {"description": "unknown agent"}
                }
            }
        },
        "/v1/invitations": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Invitations"],
                "summary": "List Invitations Endpoint",
                "parameters": [
                    {"type": "string", "name": "client_id", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "invitations"}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Invitations"],
                "summary": "Issue Invitation Endpoint",
                "responses": {
                    "201": {"description": "the invitation; the token only travels in the email"},
                    "400": {"description": "error, error_description"}
                }
            }
        },
        "/v1/invitations/{id}/resend": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Invitations"],
                "summary": "Resend Invitation Endpoint",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "the refreshed invitation"},
                    "404": {"description": "error, error_description"}
                }
            }
        },
        "/v1/users/provision": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Invitations"],
                "summary": "Provision User Endpoint",
                "responses": {
                    "201": {"description": "user_id"},
                    "409": {"description": "email already has an account"}
                }
            }
        },
        "/v1/mfa/totp/enroll": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["MFA"],
                "summary": "Begin MFA Enrollment Endpoint",
                "responses": {
                    "200": {"description": "secret, otpauth_url"},
                    "409": {"description": "already enabled"}
                }
            }
        },
        "/v1/mfa/totp/confirm": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "tags": ["MFA"],
                "summary": "Confirm MFA Enrollment Endpoint",
                "responses": {
                    "204": {"description": "no content"},
                    "400": {"description": "error, error_description"}
                }
            }
        },
        "/v1/mfa/totp": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "tags": ["MFA"],
                "summary": "Disable MFA Endpoint",
                "responses": {
                    "204": {"description": "no content"},
                    "401": {"description": "password did not match"}
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header",
            "description": "Session token. Format: \"Bearer {token}\". Browsers use the session cookie instead."
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Chatbot Admin Console API",
	Description:      "Multi-tenant administration console for AI chatbot deployments: client accounts, setup invitations, widget configuration, content sources and usage statistics.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
