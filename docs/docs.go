// Package docs registra la documentación OpenAPI que sirve /swagger.
// Se regenera con: swag init -g cmd/api/main.go -o docs
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
        "/users": {
            "get": {"tags": ["users"], "summary": "Listar usuarios", "produces": ["application/json"], "parameters": [
                {"type": "integer", "name": "first", "in": "query"},
                {"type": "string", "name": "after", "in": "query"},
                {"type": "integer", "name": "page", "in": "query"},
                {"type": "integer", "name": "pageSize", "in": "query"},
                {"type": "string", "name": "fields", "in": "query"}
            ], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.ErrorBody"}}}},
            "post": {"tags": ["users"], "summary": "Crear usuario", "consumes": ["application/json"], "produces": ["application/json"], "parameters": [
                {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/users.createUserRequest"}}
            ], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/users.userResponse"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.ErrorBody"}}}}
        },
        "/users/{userID}": {
            "get": {"tags": ["users"], "summary": "Obtener usuario", "parameters": [{"type": "integer", "name": "userID", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/users.userResponse"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.ErrorBody"}}}},
            "patch": {"tags": ["users"], "summary": "Cambiar nickname", "parameters": [{"type": "integer", "name": "userID", "in": "path", "required": true}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/users.createUserRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/users.userResponse"}}}},
            "delete": {"tags": ["users"], "summary": "Dar de baja usuario", "parameters": [{"type": "integer", "name": "userID", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.ErrorBody"}}}}
        },
        "/users/{userID}/pets": {
            "get": {"tags": ["registrations"], "summary": "Mascotas activas del usuario", "parameters": [{"type": "integer", "name": "userID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.ErrorBody"}}}}
        },
        "/users/{userID}/pets/history": {
            "get": {"tags": ["registrations"], "summary": "Historial de mascotas del usuario", "parameters": [{"type": "integer", "name": "userID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.ErrorBody"}}}}
        },
        "/pets": {
            "get": {"tags": ["pets"], "summary": "Listar mascotas", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["pets"], "summary": "Crear mascota", "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/pets.createPetRequest"}}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/pets.petResponse"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.ErrorBody"}}}}
        },
        "/pets/{petID}": {
            "get": {"tags": ["pets"], "summary": "Obtener mascota", "parameters": [{"type": "integer", "name": "petID", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/pets.petResponse"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.ErrorBody"}}}},
            "patch": {"tags": ["pets"], "summary": "Actualizar mascota", "parameters": [{"type": "integer", "name": "petID", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/pets.petResponse"}}}},
            "delete": {"tags": ["pets"], "summary": "Dar de baja mascota", "parameters": [{"type": "integer", "name": "petID", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}}}
        },
        "/pets/{petID}/registration": {
            "post": {"tags": ["registrations"], "summary": "Registrar guardián", "parameters": [{"type": "integer", "name": "petID", "in": "path", "required": true}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/registrations.guardianRequest"}}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/registrations.Registration"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.ErrorBody"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/respond.ErrorBody"}}}}
        },
        "/pets/{petID}/registration/release": {
            "post": {"tags": ["registrations"], "summary": "Liberar guardián", "parameters": [{"type": "integer", "name": "petID", "in": "path", "required": true}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/registrations.guardianRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/registrations.Registration"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.ErrorBody"}}}}
        },
        "/pets/{petID}/guardian": {
            "get": {"tags": ["registrations"], "summary": "Guardián actual", "parameters": [{"type": "integer", "name": "petID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.ErrorBody"}}}}
        },
        "/pets/{petID}/guardians": {
            "get": {"tags": ["registrations"], "summary": "Historial de guardianes", "parameters": [{"type": "integer", "name": "petID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.ErrorBody"}}}}
        },
        "/registrations": {
            "get": {"tags": ["registrations"], "summary": "Listar registraciones", "parameters": [
                {"type": "integer", "name": "pet_id", "in": "query"},
                {"type": "integer", "name": "user_id", "in": "query"},
                {"type": "boolean", "name": "released", "in": "query"}
            ], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.ErrorBody"}}}}
        }
    },
    "definitions": {
        "respond.ErrorBody": {"type": "object", "properties": {"error": {"$ref": "#/definitions/respond.ErrorPayload"}}},
        "respond.ErrorPayload": {"type": "object", "properties": {"kind": {"type": "string"}, "message": {"type": "string"}}},
        "users.createUserRequest": {"type": "object", "properties": {"nickname": {"type": "string"}}},
        "users.userResponse": {"type": "object", "properties": {"id": {"type": "integer"}, "nickname": {"type": "string"}, "deleted": {"type": "boolean"}, "created_at": {"type": "string"}, "updated_at": {"type": "string"}}},
        "pets.createPetRequest": {"type": "object", "properties": {"species": {"type": "string"}, "nickname": {"type": "string"}, "image_url": {"type": "string"}}},
        "pets.petResponse": {"type": "object", "properties": {"id": {"type": "integer"}, "species": {"type": "string"}, "nickname": {"type": "string"}, "image_url": {"type": "string"}, "deleted": {"type": "boolean"}, "created_at": {"type": "string"}, "updated_at": {"type": "string"}}},
        "registrations.guardianRequest": {"type": "object", "properties": {"user_id": {"type": "integer"}}},
        "registrations.Registration": {"type": "object", "properties": {"id": {"type": "integer"}, "user_id": {"type": "integer"}, "pet_id": {"type": "integer"}, "registered_at": {"type": "string"}, "released_at": {"type": "string"}, "released": {"type": "boolean"}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Pet Guardianship API",
	Description:      "Registro de guardianes de mascotas: usuarios, mascotas, ledger de registraciones e historial.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
