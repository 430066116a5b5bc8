package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the blog API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>blog-api - Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "blog-api", "version": "v0.1.0" },
  "components": { "securitySchemes": { "bearer": { "type": "http", "scheme": "bearer" } } },
  "paths": {
    "/posts": {
      "get": {
        "summary": "List posts",
        "parameters": [
          {"name":"page","in":"query","schema":{"type":"integer","default":1}},
          {"name":"limit","in":"query","schema":{"type":"integer","default":2}},
          {"name":"cat","in":"query","schema":{"type":"string"}},
          {"name":"author","in":"query","schema":{"type":"string"}},
          {"name":"search","in":"query","schema":{"type":"string"}},
          {"name":"featured","in":"query","schema":{"type":"boolean"}},
          {"name":"sort","in":"query","schema":{"type":"string","enum":["newest","oldest","popular","trending"]}}
        ],
        "responses": { "200": { "description": "posts and hasMore" }, "404": { "description": "unknown author" } }
      },
      "post": {
        "summary": "Create a post",
        "security": [{"bearer": []}],
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","required":["title","content"],"properties":{"title":{"type":"string"},"description":{"type":"string"},"category":{"type":"string"},"content":{"type":"string"},"img":{"type":"string"}}}}}},
        "responses": { "201": { "description": "created post with unique slug" }, "401": { "description": "not authenticated" }, "404": { "description": "no local user" }, "409": { "description": "Slug already taken, retry" } }
      }
    },
    "/posts/{slug}": {
      "get": { "summary": "Get a post by slug", "responses": { "200": { "description": "post" }, "404": { "description": "not found" } } }
    },
    "/posts/{id}": {
      "patch": { "summary": "Edit own post", "security": [{"bearer": []}], "responses": { "200": { "description": "updated post" }, "403": { "description": "not the owner" } } },
      "delete": { "summary": "Delete a post (owner or admin)", "security": [{"bearer": []}], "responses": { "200": { "description": "deleted" }, "401": { "description": "not authenticated" }, "403": { "description": "not the owner" }, "404": { "description": "not found" } } }
    },
    "/posts/feature": {
      "patch": { "summary": "Toggle featured (admin)", "security": [{"bearer": []}], "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"postId":{"type":"string"}}}}}}, "responses": { "200": { "description": "updated post" }, "403": { "description": "not an admin" } } }
    },
    "/posts/upload-auth": {
      "get": { "summary": "Upload credentials for the asset provider", "responses": { "200": { "description": "upload parameters" } } }
    },
    "/comments/{postId}": {
      "get": { "summary": "List comments of a post", "responses": { "200": { "description": "comments, newest first" } } },
      "post": { "summary": "Add a comment", "security": [{"bearer": []}], "responses": { "201": { "description": "created" } } }
    },
    "/comments/{id}": {
      "delete": { "summary": "Delete a comment (owner or admin)", "security": [{"bearer": []}], "responses": { "200": { "description": "deleted" } } }
    },
    "/users/saved": {
      "get": { "summary": "Saved post ids", "security": [{"bearer": []}], "responses": { "200": { "description": "ids" } } }
    },
    "/users/save": {
      "patch": { "summary": "Toggle a saved post", "security": [{"bearer": []}], "responses": { "200": { "description": "Post saved / Post unsaved" } } }
    },
    "/webhooks/clerk": {
      "post": { "summary": "Identity provider user events (svix signed)", "responses": { "200": { "description": "Webhook received" }, "400": { "description": "Webhook verification failed." }, "409": { "description": "user already exists, or username/email already in use" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
