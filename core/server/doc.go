// Package server holds the HTTP server configuration.
//
// The Config struct defines the listen port, the API key checked by
// core/middleware/auth, the schema used when a request omits one and the
// graceful shutdown timeout. The server itself is assembled in cmd/start.go.
package server
