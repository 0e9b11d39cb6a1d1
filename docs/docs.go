// Package docs holds the generated Swagger spec for the Avalon Core API.
//
// Normally `swag init` regenerates this file from the @-comment annotations in internal/httpapi;
// it is checked in here so the binary builds without invoking the swag CLI as a build step.
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
        "/healthz": {
            "get": {
                "description": "Liveness/readiness check. No authentication required.",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/games": {
            "post": {
                "description": "Create a new game, in GameSetup, with no players yet.",
                "produces": ["application/json"],
                "tags": ["games"],
                "summary": "Create game",
                "responses": {"201": {"description": "Created"}, "500": {"description": "Internal Server Error"}}
            }
        },
        "/api/games/{game_id}": {
            "get": {
                "description": "Read a game's public summary: status, state, config, and joined players.",
                "produces": ["application/json"],
                "tags": ["games"],
                "summary": "Get game",
                "parameters": [{"type": "string", "description": "Game id", "name": "game_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/games/{game_id}/start": {
            "post": {
                "description": "Freeze config, assign roles, and move the game into TeamSelection.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["games"],
                "summary": "Start game",
                "parameters": [{"type": "string", "description": "Game id", "name": "game_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}
            }
        },
        "/api/games/{game_id}/join": {
            "post": {
                "description": "Join a game that has not started yet. Returns the player's id and a plaintext secret that is never shown again.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["games"],
                "summary": "Join game",
                "parameters": [{"type": "string", "description": "Game id", "name": "game_id", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}
            }
        },
        "/api/games/{game_id}/players/{player_id}/events": {
            "get": {
                "description": "Returns every event visible to player_id: public events plus events naming player_id as a recipient. Requires the player's secret.",
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Read a player's event log",
                "parameters": [
                    {"type": "string", "description": "Game id", "name": "game_id", "in": "path", "required": true},
                    {"type": "string", "description": "Player id", "name": "player_id", "in": "path", "required": true},
                    {"type": "string", "description": "Player secret, returned once by JoinGame", "name": "secret", "in": "query", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Avalon Core API",
	Description:      "Action-driven game state machine for a hidden-role social deduction game.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
