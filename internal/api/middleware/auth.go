// Package middleware provides HTTP middleware for the Gin router.
//
// Go Learning Note — Middleware Pattern (Gin):
// In Gin, middleware is any function with the signature `gin.HandlerFunc`,
// which is `func(*gin.Context)`. Middleware functions form a chain: each one
// runs, optionally calls c.Next() to pass control onward, and can call
// c.Abort() to stop the chain. Middleware is applied with .Use() on a router
// or route group; common uses are authentication, logging, CORS, and rate
// limiting.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Context keys for storing authenticated client data, used with
// c.Set()/c.Get() to pass data between middleware and handlers.
const (
	ClientIDKey   = "client_id"
	ClientRoleKey = "client_role"

	// RoleIngest clients load edges into the index; RoleClient clients run
	// candidate queries. The split mirrors the index's lifecycle: a build
	// phase with one writer, then a read-mostly query phase.
	RoleIngest = "ingest"
	RoleClient = "client"
)

// MockAuth extracts client info from the Authorization header.
// Format: "Bearer <client-id>" where the ID starts with "ingest-" or
// "client-".
//
// This is a simplified mock. In production you'd validate a real JWT using
// a library like "github.com/golang-jwt/jwt/v5", verify the signature, and
// extract the role from the token's claims rather than an ID prefix.
//
// Go Learning Note — Returning Functions (Closures):
// MockAuth() returns a gin.HandlerFunc — a function returning a function.
// This pattern is common for middleware that needs configuration: the outer
// function could take parameters (a JWT secret, say) which the inner closure
// captures. No config is needed here, but the shape matches Gin's API.
func MockAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		// strings.SplitN splits into at most 2 parts, handling tokens with spaces.
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			c.Abort()
			return
		}

		clientID := parts[1]
		var role string

		switch {
		case strings.HasPrefix(clientID, "ingest-"):
			role = RoleIngest
		case strings.HasPrefix(clientID, "client-"):
			role = RoleClient
		default:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid client id format"})
			c.Abort()
			return
		}

		c.Set(ClientIDKey, clientID)
		c.Set(ClientRoleKey, role)
		c.Next()
	}
}

// RequireIngest ensures the authenticated client may write to the index.
// Must be used after MockAuth() in the chain.
func RequireIngest() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ClientRoleKey)
		if !exists || role != RoleIngest {
			c.JSON(http.StatusForbidden, gin.H{"error": "ingest access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetClientID retrieves the client ID previously set by MockAuth.
func GetClientID(c *gin.Context) string {
	clientID, _ := c.Get(ClientIDKey)
	return clientID.(string)
}

// GetClientRole retrieves the client role ("ingest" or "client").
func GetClientRole(c *gin.Context) string {
	role, _ := c.Get(ClientRoleKey)
	return role.(string)
}
